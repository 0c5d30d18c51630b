// Package ingestion files corpus documents into the store and the index.
//
// The Pipeline type manages the intake workflow for a document, including:
//   - Upserting its author and work
//   - Storing its chapter under a content-derived ID
//   - Writing the chapter's phrase, trigram and word postings
//
// Run processes an entire corpus source concurrently on a worker pool.
// A document that cannot be read or stored is logged and counted as a
// failure; it never aborts the rest of the run.
package ingestion
