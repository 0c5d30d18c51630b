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


// Package storage provides the storage abstraction layer for the search
// engine.
//
// This package defines repository interfaces that decouple storage
// implementation from the query engine and ingestion pipeline. It allows for
// different storage backends (BadgerDB, in-memory, etc.) to be used
// interchangeably.
//
// # Constructor Return Type Pattern
//
// This package follows a strict "return interface" pattern for all public
// constructors to enforce abstraction and enable multiple storage backend
// implementations:
//
//	repos, err := badger.NewRepositories(path)  // returns storage interfaces
//
// Internal package constructors (newChapterRepository, newBackend, etc.) may
// return concrete types since they're only used within the implementation
// package.
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - ChapterRepository: the corpus hierarchy (authors, works, chapters)
//   - IndexRepository: the phrase index (postings, trigrams, containment
//     sets, token indexes, visibility markers)
//   - Repository: transaction support and lifecycle shared by both
//
// # Visibility
//
// A document's postings become searchable only once its index marker is
// written, and the marker is always written last. Readers gate on the
// marker, so no read ever observes a partially indexed document.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support. Pass context.Background() for operations
// without specific timeout requirements.
package storage
