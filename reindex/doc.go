// Package reindex rebuilds the phrase index for an existing corpus.
//
// A rebuild is needed after the normalization or gram rules change: stored
// postings were generated under the old rules and no longer match what
// queries produce. The Reindexer walks every chapter in batches, drops its
// document index and indexes it afresh, with retry logic for transient
// store errors and progress reporting for long corpora. Chapters whose
// index already matches their content are skipped unless the run is
// forced.
package reindex
