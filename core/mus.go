// Copyright 2025 Paul David Fisher
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for every record the store persists. Written by hand
// against the mus-go primitives; field order is the wire format and must
// not change. Timestamps travel as Unix microseconds.

// IDMUS serializes an ID as a varint.
var IDMUS = idMUS{}

type idMUS struct{}

func (s idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	raw, n, err := varint.Uint64.Unmarshal(bs)
	return ID(raw), n, err
}

func (s idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (s idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

// timeMUS serializes a time.Time as Unix microseconds.
var timeMUS = timeMUSSer{}

type timeMUSSer struct{}

func (s timeMUSSer) Marshal(v time.Time, bs []byte) (n int) {
	return varint.Int64.Marshal(v.UnixMicro(), bs)
}

func (s timeMUSSer) Unmarshal(bs []byte) (v time.Time, n int, err error) {
	micro, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micro).UTC(), n, nil
}

func (s timeMUSSer) Size(v time.Time) (size int) {
	return varint.Int64.Size(v.UnixMicro())
}

func (s timeMUSSer) Skip(bs []byte) (n int, err error) {
	return varint.Int64.Skip(bs)
}

// AuthorMUS serializes an Author.
var AuthorMUS = authorMUS{}

type authorMUS struct{}

func (s authorMUS) Marshal(v Author, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Name, bs[n:])
	n += ord.Bool.Marshal(v.IsSaint, bs[n:])
	n += ord.Bool.Marshal(v.IsDoctor, bs[n:])
	n += timeMUS.Marshal(v.InsertedAt, bs[n:])
	return n
}

func (s authorMUS) Unmarshal(bs []byte) (v Author, n int, err error) {
	var n1 int
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Name, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.IsSaint, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.IsDoctor, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s authorMUS) Size(v Author) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Name)
	size += ord.Bool.Size(v.IsSaint)
	size += ord.Bool.Size(v.IsDoctor)
	size += timeMUS.Size(v.InsertedAt)
	return size
}

// WorkMUS serializes a Work.
var WorkMUS = workMUS{}

type workMUS struct{}

func (s workMUS) Marshal(v Work, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.AuthorId, bs[n:])
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.URL, bs[n:])
	n += timeMUS.Marshal(v.InsertedAt, bs[n:])
	return n
}

func (s workMUS) Unmarshal(bs []byte) (v Work, n int, err error) {
	var n1 int
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.AuthorId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Title, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.URL, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s workMUS) Size(v Work) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.AuthorId)
	size += ord.String.Size(v.Title)
	size += ord.String.Size(v.URL)
	size += timeMUS.Size(v.InsertedAt)
	return size
}

// ChapterMUS serializes a Chapter.
var ChapterMUS = chapterMUS{}

type chapterMUS struct{}

func (s chapterMUS) Marshal(v Chapter, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.WorkId, bs[n:])
	n += varint.Uint32.Marshal(v.Number, bs[n:])
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.Content, bs[n:])
	n += timeMUS.Marshal(v.InsertedAt, bs[n:])
	return n
}

func (s chapterMUS) Unmarshal(bs []byte) (v Chapter, n int, err error) {
	var n1 int
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.WorkId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Number, n1, err = varint.Uint32.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Title, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Content, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s chapterMUS) Size(v Chapter) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.WorkId)
	size += varint.Uint32.Size(v.Number)
	size += ord.String.Size(v.Title)
	size += ord.String.Size(v.Content)
	size += timeMUS.Size(v.InsertedAt)
	return size
}

// TokenEntryMUS serializes a single TokenEntry.
var TokenEntryMUS = tokenEntryMUS{}

type tokenEntryMUS struct{}

func (s tokenEntryMUS) Marshal(v TokenEntry, bs []byte) (n int) {
	n = ord.String.Marshal(v.Token, bs)
	n += varint.Uint32.Marshal(v.Offset, bs[n:])
	return n
}

func (s tokenEntryMUS) Unmarshal(bs []byte) (v TokenEntry, n int, err error) {
	var n1 int
	v.Token, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Offset, n1, err = varint.Uint32.Unmarshal(bs[n:])
	n += n1
	return
}

func (s tokenEntryMUS) Size(v TokenEntry) (size int) {
	size = ord.String.Size(v.Token)
	size += varint.Uint32.Size(v.Offset)
	return size
}

// TokenIndexMUS serializes a chapter's token index as a length-prefixed
// list of entries.
var TokenIndexMUS = tokenIndexMUS{}

type tokenIndexMUS struct{}

func (s tokenIndexMUS) Marshal(v []TokenEntry, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for i := range v {
		n += TokenEntryMUS.Marshal(v[i], bs[n:])
	}
	return n
}

func (s tokenIndexMUS) Unmarshal(bs []byte) (v []TokenEntry, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 {
		return nil, n, ErrNegativeLength
	}
	var n1 int
	v = make([]TokenEntry, length)
	for i := 0; i < length; i++ {
		v[i], n1, err = TokenEntryMUS.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return v, n, nil
}

func (s tokenIndexMUS) Size(v []TokenEntry) (size int) {
	size = varint.Int.Size(len(v))
	for i := range v {
		size += TokenEntryMUS.Size(v[i])
	}
	return size
}

// PositionsMUS serializes an ascending position list.
var PositionsMUS = positionsMUS{}

type positionsMUS struct{}

func (s positionsMUS) Marshal(v []uint32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, p := range v {
		n += varint.Uint32.Marshal(p, bs[n:])
	}
	return n
}

func (s positionsMUS) Unmarshal(bs []byte) (v []uint32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 {
		return nil, n, ErrNegativeLength
	}
	var n1 int
	v = make([]uint32, length)
	for i := 0; i < length; i++ {
		v[i], n1, err = varint.Uint32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return v, n, nil
}

func (s positionsMUS) Size(v []uint32) (size int) {
	size = varint.Int.Size(len(v))
	for _, p := range v {
		size += varint.Uint32.Size(p)
	}
	return size
}

// IndexStateMUS serializes an IndexState marker.
var IndexStateMUS = indexStateMUS{}

type indexStateMUS struct{}

func (s indexStateMUS) Marshal(v IndexState, bs []byte) (n int) {
	n = IDMUS.Marshal(v.ChapterId, bs)
	n += varint.Uint32.Marshal(v.Tokens, bs[n:])
	n += varint.Uint32.Marshal(v.Phrases, bs[n:])
	n += varint.Uint32.Marshal(v.Trigrams, bs[n:])
	n += varint.Uint32.Marshal(v.Words, bs[n:])
	n += timeMUS.Marshal(v.IndexedAt, bs[n:])
	return n
}

func (s indexStateMUS) Unmarshal(bs []byte) (v IndexState, n int, err error) {
	var n1 int
	v.ChapterId, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Tokens, n1, err = varint.Uint32.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Phrases, n1, err = varint.Uint32.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Trigrams, n1, err = varint.Uint32.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Words, n1, err = varint.Uint32.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.IndexedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s indexStateMUS) Size(v IndexState) (size int) {
	size = IDMUS.Size(v.ChapterId)
	size += varint.Uint32.Size(v.Tokens)
	size += varint.Uint32.Size(v.Phrases)
	size += varint.Uint32.Size(v.Trigrams)
	size += varint.Uint32.Size(v.Words)
	size += timeMUS.Size(v.IndexedAt)
	return size
}
