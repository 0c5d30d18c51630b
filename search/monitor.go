package search

import (
	"log/slog"

	"github.com/pauldavidfisher/church-fathers-search/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(method core.SearchMethod, query string)
	AfterNormalize(tokens []string)
	AfterCandidates(count uint64)
	AfterScoring(kept int)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ core.SearchMethod, _ string) {}
func (n *noopMonitor) AfterNormalize(_ []string)           {}
func (n *noopMonitor) AfterCandidates(_ uint64)            {}
func (n *noopMonitor) AfterScoring(_ int)                  {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)       {}

// LoggingMonitor reports each search stage through a slog.Logger.
type LoggingMonitor struct {
	logger *slog.Logger
}

var _ SearchMonitor = (*LoggingMonitor)(nil)

// NewLoggingMonitor creates a monitor that logs at info level. A nil
// logger falls back to slog.Default().
func NewLoggingMonitor(logger *slog.Logger) *LoggingMonitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingMonitor{logger: logger}
}

func (m *LoggingMonitor) Start(method core.SearchMethod, query string) {
	m.logger.Info("search started", "method", method, "query", query)
}

func (m *LoggingMonitor) AfterNormalize(tokens []string) {
	m.logger.Info("query normalized", "tokens", tokens)
}

func (m *LoggingMonitor) AfterCandidates(count uint64) {
	m.logger.Info("candidates gathered", "count", count)
}

func (m *LoggingMonitor) AfterScoring(kept int) {
	m.logger.Info("hits scored", "kept", kept)
}

func (m *LoggingMonitor) Finish(results []*core.SearchResult) {
	m.logger.Info("search finished", "results", len(results))
}
