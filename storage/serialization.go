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


package storage

import (
	"github.com/pauldavidfisher/church-fathers-search/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalAuthor serializes an Author to bytes.
func MarshalAuthor(author *core.Author) []byte {
	buf := make([]byte, core.AuthorMUS.Size(*author))
	core.AuthorMUS.Marshal(*author, buf)
	return buf
}

// UnmarshalAuthor deserializes an Author from bytes.
func UnmarshalAuthor(data []byte) (*core.Author, error) {
	author, _, err := core.AuthorMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &author, nil
}

// MarshalWork serializes a Work to bytes.
func MarshalWork(work *core.Work) []byte {
	buf := make([]byte, core.WorkMUS.Size(*work))
	core.WorkMUS.Marshal(*work, buf)
	return buf
}

// UnmarshalWork deserializes a Work from bytes.
func UnmarshalWork(data []byte) (*core.Work, error) {
	work, _, err := core.WorkMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &work, nil
}

// MarshalChapter serializes a Chapter to bytes.
func MarshalChapter(chapter *core.Chapter) []byte {
	buf := make([]byte, core.ChapterMUS.Size(*chapter))
	core.ChapterMUS.Marshal(*chapter, buf)
	return buf
}

// UnmarshalChapter deserializes a Chapter from bytes.
func UnmarshalChapter(data []byte) (*core.Chapter, error) {
	chapter, _, err := core.ChapterMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &chapter, nil
}

// MarshalTokenIndex serializes a token index to bytes.
func MarshalTokenIndex(entries []core.TokenEntry) []byte {
	buf := make([]byte, core.TokenIndexMUS.Size(entries))
	core.TokenIndexMUS.Marshal(entries, buf)
	return buf
}

// UnmarshalTokenIndex deserializes a token index from bytes.
func UnmarshalTokenIndex(data []byte) ([]core.TokenEntry, error) {
	entries, _, err := core.TokenIndexMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// MarshalPositions serializes a position list to bytes.
func MarshalPositions(positions []uint32) []byte {
	buf := make([]byte, core.PositionsMUS.Size(positions))
	core.PositionsMUS.Marshal(positions, buf)
	return buf
}

// UnmarshalPositions deserializes a position list from bytes.
func UnmarshalPositions(data []byte) ([]uint32, error) {
	positions, _, err := core.PositionsMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return positions, nil
}

// MarshalIndexState serializes an IndexState to bytes.
func MarshalIndexState(state *core.IndexState) []byte {
	buf := make([]byte, core.IndexStateMUS.Size(*state))
	core.IndexStateMUS.Marshal(*state, buf)
	return buf
}

// UnmarshalIndexState deserializes an IndexState from bytes.
func UnmarshalIndexState(data []byte) (*core.IndexState, error) {
	state, _, err := core.IndexStateMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &state, nil
}
