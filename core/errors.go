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

import "errors"

// Domain validation errors
var (
	// ErrInvalidAuthor indicates an Author failed validation.
	ErrInvalidAuthor = errors.New("invalid author")

	// ErrInvalidWork indicates a Work failed validation.
	ErrInvalidWork = errors.New("invalid work")

	// ErrInvalidChapter indicates a Chapter failed validation.
	ErrInvalidChapter = errors.New("invalid chapter")

	// ErrEmptyName indicates a required name field is empty.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrEmptyTitle indicates a required title field is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrEmptyContent indicates the chapter Content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrMissingAuthorRef indicates a work has no author reference.
	ErrMissingAuthorRef = errors.New("work must reference an author")

	// ErrMissingWorkRef indicates a chapter has no work reference.
	ErrMissingWorkRef = errors.New("chapter must reference a work")
)

// Serialization errors
var (
	// ErrNegativeLength indicates a decoded list length is negative.
	ErrNegativeLength = errors.New("negative length")
)
