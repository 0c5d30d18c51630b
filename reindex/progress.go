package reindex

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker prints reindex progress to a writer, one line per
// reportInterval chapters. Safe for concurrent use.
type ProgressTracker struct {
	mu    sync.Mutex
	out   io.Writer
	total int
	every int

	done     int
	reported int
	begun    time.Time
	running  bool
}

// NewProgressTracker creates a tracker for total chapters that reports
// every reportInterval completions. Output goes to writer, typically
// os.Stderr.
func NewProgressTracker(writer io.Writer, total, reportInterval int) *ProgressTracker {
	return &ProgressTracker{
		out:   writer,
		total: total,
		every: reportInterval,
	}
}

// Start resets the counters and begins timing.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.begun = time.Now()
	p.done = 0
	p.reported = 0
	p.running = true
}

// Update sets the absolute progress.
func (p *ProgressTracker) Update(current int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advance(current)
}

// Increment adds delta to the progress.
func (p *ProgressTracker) Increment(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advance(p.done + delta)
}

// advance moves progress to n, clamped to total, and emits a report
// line once enough chapters have completed since the last one. Caller
// holds the lock.
func (p *ProgressTracker) advance(n int) {
	if !p.running {
		return
	}
	if n > p.total {
		n = p.total
	}
	p.done = n

	if p.done-p.reported >= p.every {
		p.emit()
		p.reported = p.done
	}
}

// Finish forces progress to the total and prints the final line,
// terminated with a newline.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	p.done = p.total
	p.emit()
	fmt.Fprintln(p.out)
}

// Elapsed returns the time since Start.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return 0
	}
	return time.Since(p.begun)
}

// emit writes one progress line. Caller holds the lock.
func (p *ProgressTracker) emit() {
	rate := 0.0
	if secs := time.Since(p.begun).Seconds(); secs > 0 {
		rate = float64(p.done) / secs
	}

	pct := 0.0
	if p.total > 0 {
		pct = 100 * float64(p.done) / float64(p.total)
	}

	fmt.Fprintf(p.out, "\rProgress: %d/%d (%.1f%%) - %.1f chapters/s",
		p.done, p.total, pct, rate)
}
