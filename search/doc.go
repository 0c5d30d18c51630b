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


// Package search answers phrase queries over the posting index.
//
// The Searcher type exposes one strategy per query shape:
//   - Exact lookup of contiguous normalized phrases
//   - Proximity co-occurrence within a bounded token window
//   - Fuzzy matching by trigram overlap and sequence similarity
//   - Boolean AND/OR/NOT expressions over word containment
//
// Combined runs every strategy that applies to a query and reports the
// results per method. Each hit is assembled into a SearchResult with a
// raw-text excerpt and the author/work/chapter attribution chain.
package search
