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


package search

import "errors"

var (
	// ErrChapterRepositoryRequired is returned when a chapter repository is not provided.
	ErrChapterRepositoryRequired = errors.New("chapter repository required")

	// ErrIndexRepositoryRequired is returned when an index repository is not provided.
	ErrIndexRepositoryRequired = errors.New("index repository required")
)

// Query errors
var (
	// ErrInvalidQuery indicates the query contains no searchable tokens,
	// or names an unknown search method.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrUnsupportedPhraseLength indicates an exact-phrase query whose
	// token count falls outside the indexed gram lengths.
	ErrUnsupportedPhraseLength = errors.New("phrase length outside indexed range")

	// ErrInsufficientTerms indicates a proximity query with fewer than
	// two distinct words.
	ErrInsufficientTerms = errors.New("proximity search requires at least two distinct words")

	// ErrBooleanParse indicates a malformed boolean expression.
	ErrBooleanParse = errors.New("boolean expression parse error")
)
