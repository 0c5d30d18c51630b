package reindex

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reports counts the progress lines written so far.
func reports(buf *bytes.Buffer) int {
	return strings.Count(buf.String(), "\r")
}

func TestProgressTracker_ReportingCadence(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10, 4)
	tracker.Start()

	tracker.Update(3)
	assert.Equal(t, 0, reports(&buf), "below the interval")

	tracker.Increment(1)
	assert.Equal(t, 1, reports(&buf), "interval reached")
	assert.Contains(t, buf.String(), "4/10")

	tracker.Update(7)
	assert.Equal(t, 1, reports(&buf), "three since last report")

	tracker.Update(8)
	assert.Equal(t, 2, reports(&buf), "four since last report")
}

func TestProgressTracker_FinishPrintsFinalLine(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 40, 100)
	tracker.Start()

	tracker.Update(12)
	require.Equal(t, 0, reports(&buf), "interval larger than total")

	tracker.Finish()
	output := buf.String()
	assert.Contains(t, output, "40/40")
	assert.Contains(t, output, "100.0%")
	assert.Contains(t, output, "chapters/s")
	assert.True(t, strings.HasSuffix(output, "\n"), "final line is terminated")
}

func TestProgressTracker_ClampsToTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10, 1)
	tracker.Start()

	tracker.Increment(25)
	assert.Contains(t, buf.String(), "10/10")
	assert.NotContains(t, buf.String(), "25/10")

	tracker.Update(99)
	assert.Contains(t, buf.String(), "100.0%")
}

func TestProgressTracker_ZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 0, 10)
	tracker.Start()
	tracker.Finish()

	assert.Contains(t, buf.String(), "0/0 (0.0%)")
}

func TestProgressTracker_BeforeStart(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 10)

	tracker.Update(50)
	tracker.Increment(50)
	tracker.Finish()

	assert.Empty(t, buf.String(), "nothing runs before Start")
	assert.Equal(t, time.Duration(0), tracker.Elapsed())
}

func TestProgressTracker_StartResets(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10, 5)
	tracker.Start()
	tracker.Increment(10)
	require.Equal(t, 1, reports(&buf))

	tracker.Start()
	tracker.Increment(3)
	assert.Equal(t, 1, reports(&buf), "restart clears the counters")

	tracker.Finish()
	assert.Contains(t, buf.String(), "10/10")
}

func TestProgressTracker_Elapsed(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10, 5)
	tracker.Start()

	time.Sleep(5 * time.Millisecond)
	assert.GreaterOrEqual(t, tracker.Elapsed(), 5*time.Millisecond)
}

func TestProgressTracker_LineShape(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 200, 50)
	tracker.Start()
	tracker.Update(50)

	lines := strings.Split(buf.String(), "\r")
	last := lines[len(lines)-1]
	assert.True(t, strings.HasPrefix(last, "Progress: 50/200 (25.0%)"), "got %q", last)
	assert.Contains(t, last, "chapters/s")
}
