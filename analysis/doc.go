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


// Package analysis implements text normalization and gram generation.
//
// It is the single shared implementation used by both the indexing path and
// every query path, which is what guarantees that a query normalizes exactly
// like the content it searches. Everything here is a pure function:
//
//   - Tokenize / Normalize: lowercase, strip punctuation (internal
//     apostrophes survive), collapse whitespace
//   - WordGrams: contiguous word n-grams with start position and length
//   - CharTrigrams / TrigramSet: 3-character grams, spaces included, so
//     grams span word boundaries
package analysis
