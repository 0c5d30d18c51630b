package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/pauldavidfisher/church-fathers-search/core"
)

// Key prefixes for different data types. Normalized text never contains a
// NUL byte, so 0x00 separates text components from the BigEndian chapter
// ID that follows them.
const (
	authorPrefix     = "aut"
	authorNamePrefix = "autn"
	authorIDSeq      = "autseq"

	workPrefix      = "wrk"
	workURLPrefix   = "wrku"
	workTitlePrefix = "wrkt"
	workIDSeq       = "wrkseq"

	chapterPrefix     = "chp"
	chapterWorkPrefix = "chpw"
	tokenIndexPrefix  = "chptok"
	indexStatePrefix  = "chpidx"

	phrasePrefix  = "phr"
	trigramPrefix = "tri"
	wordPrefix    = "wrd"
)

const textIDSep = byte(0x00)

// makeAuthorKey generates a key for an author by ID.
func makeAuthorKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", authorPrefix, id))
}

// makeAuthorNameKey generates a key for the unique author name index.
func makeAuthorNameKey(name string) []byte {
	return []byte(authorNamePrefix + ":" + name)
}

// makeWorkKey generates a key for a work by ID.
func makeWorkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", workPrefix, id))
}

// makeWorkURLKey generates a key for the unique work URL index.
func makeWorkURLKey(url string) []byte {
	return []byte(workURLPrefix + ":" + url)
}

// makeWorkTitleKey generates a composite key for title lookup within an
// author, for works without a URL.
// Format: prefix:authorID:title
func makeWorkTitleKey(authorID core.ID, title string) []byte {
	prefix := workTitlePrefix + ":"
	buf := make([]byte, len(prefix)+8+len(title))
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(authorID))
	offset += 8
	copy(buf[offset:], title)
	return buf
}

// makeChapterKey generates a key for a chapter by ID.
func makeChapterKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chapterPrefix, id))
}

// makeTokenIndexKey generates a key for a chapter's token index.
func makeTokenIndexKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", tokenIndexPrefix, id))
}

// makeChapterWorkKey generates a composite key for the by-work index.
// Format: prefix:workID:chapterID, both BigEndian so iteration order is
// (work, chapter) ID order.
func makeChapterWorkKey(workID, chapterID core.ID) []byte {
	prefix := chapterWorkPrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(workID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(chapterID))
	return buf
}

// makePartialChapterWorkKey generates a partial key for scanning one
// work's chapters.
func makePartialChapterWorkKey(workID core.ID) []byte {
	prefix := chapterWorkPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(workID))
	return buf
}

// makeIndexStateKey generates a key for a chapter's index marker.
// Format: prefix:chapterID BigEndian, so marker scans walk IDs ascending.
func makeIndexStateKey(id core.ID) []byte {
	prefix := indexStatePrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePhraseKey generates a composite key for a phrase posting.
// Format: prefix:phrase 0x00 chapterID, chapter ID BigEndian so one
// phrase's postings iterate in chapter ID order.
func makePhraseKey(phrase string, id core.ID) []byte {
	prefix := phrasePrefix + ":"
	buf := make([]byte, len(prefix)+len(phrase)+1+8)
	offset := copy(buf, prefix)
	offset += copy(buf[offset:], phrase)
	buf[offset] = textIDSep
	offset++
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialPhraseKey generates the scan prefix for one phrase's postings.
func makePartialPhraseKey(phrase string) []byte {
	prefix := phrasePrefix + ":"
	buf := make([]byte, len(prefix)+len(phrase)+1)
	offset := copy(buf, prefix)
	offset += copy(buf[offset:], phrase)
	buf[offset] = textIDSep
	return buf
}

// makeTrigramKey generates a composite key for a trigram posting.
// Format: prefix:gram 0x00 chapterID BigEndian.
func makeTrigramKey(gram string, id core.ID) []byte {
	prefix := trigramPrefix + ":"
	buf := make([]byte, len(prefix)+len(gram)+1+8)
	offset := copy(buf, prefix)
	offset += copy(buf[offset:], gram)
	buf[offset] = textIDSep
	offset++
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialTrigramKey generates the scan prefix for one trigram's
// postings.
func makePartialTrigramKey(gram string) []byte {
	prefix := trigramPrefix + ":"
	buf := make([]byte, len(prefix)+len(gram)+1)
	offset := copy(buf, prefix)
	offset += copy(buf[offset:], gram)
	buf[offset] = textIDSep
	return buf
}

// makeWordKey generates a composite key for the word containment index.
// Format: prefix:word 0x00 chapterID BigEndian.
func makeWordKey(word string, id core.ID) []byte {
	prefix := wordPrefix + ":"
	buf := make([]byte, len(prefix)+len(word)+1+8)
	offset := copy(buf, prefix)
	offset += copy(buf[offset:], word)
	buf[offset] = textIDSep
	offset++
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialWordKey generates the scan prefix for one word's containment
// entries.
func makePartialWordKey(word string) []byte {
	prefix := wordPrefix + ":"
	buf := make([]byte, len(prefix)+len(word)+1)
	offset := copy(buf, prefix)
	offset += copy(buf[offset:], word)
	buf[offset] = textIDSep
	return buf
}

// chapterIDFromKey extracts the trailing BigEndian chapter ID from a
// composite index key.
func chapterIDFromKey(key []byte) core.ID {
	return core.ID(binary.BigEndian.Uint64(key[len(key)-8:]))
}
