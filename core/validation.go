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

import "fmt"

// ValidateAuthor validates an Author according to domain rules.
//
// Validation rules:
//   - Name must not be empty
//
// NOT validated:
//   - ID (0 is valid before a database sequence assigns one)
//   - IsSaint / IsDoctor (any combination is meaningful)
func ValidateAuthor(author *Author) error {
	if author == nil {
		return fmt.Errorf("%w: author is nil", ErrInvalidAuthor)
	}

	if author.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidAuthor, ErrEmptyName)
	}

	return nil
}

// ValidateWork validates a Work according to domain rules.
//
// Validation rules:
//   - Title must not be empty
//   - AuthorId must be set
//
// NOT validated:
//   - URL (sources without a stable location leave it empty)
//   - ID (0 is valid before a database sequence assigns one)
func ValidateWork(work *Work) error {
	if work == nil {
		return fmt.Errorf("%w: work is nil", ErrInvalidWork)
	}

	if work.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidWork, ErrEmptyTitle)
	}

	if work.AuthorId == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidWork, ErrMissingAuthorRef)
	}

	return nil
}

// ValidateChapter validates a Chapter according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//   - WorkId must be set
//
// NOT validated:
//   - Title (many chapters are untitled)
//   - Number (0 is a valid chapter number for prefatory material)
//   - ID (0 is valid before an ID is assigned)
func ValidateChapter(chapter *Chapter) error {
	if chapter == nil {
		return fmt.Errorf("%w: chapter is nil", ErrInvalidChapter)
	}

	if chapter.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChapter, ErrEmptyContent)
	}

	if chapter.WorkId == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChapter, ErrMissingWorkRef)
	}

	return nil
}
