// Package progress reports how many bytes a pipeline step has processed.
// A Tracker is owned by a single operation and logs milestones through slog
// as bytes flow through its Reader.
package progress

import (
	"io"
	"log/slog"
	"time"

	"tarz/pkg/stats"
)

// Milestones are the percentages at which progress is logged.
var Milestones = []int{25, 50, 75, 100}

// Tracker counts processed bytes against an expected total.
type Tracker struct {
	logger    *slog.Logger
	step      string
	total     uint64
	processed uint64
	next      int
	start     time.Time
}

// New creates a tracker for step expecting total bytes.
func New(logger *slog.Logger, step string, total uint64) *Tracker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if total == 0 {
		total = 1 // Avoid division by zero
	}
	logger.Debug("starting processing", "step", step, "total", stats.FormatSize(total))
	return &Tracker{
		logger: logger,
		step:   step,
		total:  total,
		start:  time.Now(),
	}
}

// Add adds processed bytes to the counter and logs any milestone crossed.
func (t *Tracker) Add(n uint64) {
	if n == 0 {
		return
	}
	t.processed += n

	pct := t.Percent()
	for t.next < len(Milestones) && pct >= float64(Milestones[t.next]) {
		t.logger.Debug("processing",
			"step", t.step,
			"percent", Milestones[t.next],
			"processed", stats.FormatSize(t.processed))
		t.next++
	}
}

// Processed returns the bytes counted so far.
func (t *Tracker) Processed() uint64 {
	return t.processed
}

// Percent returns processed bytes as a percentage of the total.
func (t *Tracker) Percent() float64 {
	return float64(t.processed) / float64(t.total) * 100
}

// Done logs the final byte count and average rate.
func (t *Tracker) Done() {
	elapsed := time.Since(t.start).Seconds()
	if elapsed < 0.001 {
		elapsed = 0.001 // Avoid division by zero
	}
	t.logger.Debug("completed processing",
		"step", t.step,
		"processed", stats.FormatSize(t.processed),
		"seconds", elapsed,
		"rate", stats.FormatSize(uint64(float64(t.processed)/elapsed))+"/s")
}

// Reader wraps r so every byte read is counted by the tracker.
func (t *Tracker) Reader(r io.Reader) *Reader {
	return &Reader{R: r, tracker: t}
}

// Reader is a reader that tracks bytes read for progress reporting
type Reader struct {
	R       io.Reader
	tracker *Tracker
}

// Read implements io.Reader and tracks bytes read
func (pr *Reader) Read(p []byte) (n int, err error) {
	n, err = pr.R.Read(p)
	if n > 0 {
		pr.tracker.Add(uint64(n))
	}
	return
}
