package sepia

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/gogpu/sepia/pixel"
)

// ErrNoResult is reported when a strategy returns neither a buffer nor an error.
var ErrNoResult = errors.New("sepia: strategy produced no result")

// Report is the outcome of one measured run.
type Report struct {
	Kind    Kind
	Output  *pixel.Buffer
	Elapsed time.Duration
	Err     error
}

// OK reports whether the run produced a buffer.
func (r Report) OK() bool {
	return r.Err == nil && r.Output != nil
}

// Millis formats Elapsed in milliseconds with two decimals.
func (r Report) Millis() string {
	return formatMillis(r.Elapsed)
}

func formatMillis(d time.Duration) string {
	return strconv.FormatFloat(float64(d)/float64(time.Millisecond), 'f', 2, 64)
}

// Measure runs s once on buf and records the wall-clock time from the call
// until the output buffer is available, including any asynchronous readback.
// time.Since reads the monotonic clock.
func Measure(ctx context.Context, s Strategy, buf *pixel.Buffer) Report {
	start := time.Now()
	out, err := s.Transform(ctx, buf)
	elapsed := time.Since(start)

	if err == nil && out == nil {
		err = ErrNoResult
	}
	if err != nil {
		out = nil
	}
	return Report{Kind: s.Kind(), Output: out, Elapsed: elapsed, Err: err}
}

// Cell is the last successful result shown for one strategy.
// The zero Cell is empty.
type Cell struct {
	Output *pixel.Buffer
	Time   time.Duration
}

// Empty reports whether the cell has never been filled or was cleared.
func (c Cell) Empty() bool {
	return c.Output == nil
}

// Millis formats the cell time like Report.Millis, or "-" when empty.
func (c Cell) Millis() string {
	if c.Empty() {
		return "-"
	}
	return formatMillis(c.Time)
}

// Board holds one result cell per strategy. It is safe for concurrent use.
type Board struct {
	mu    sync.RWMutex
	cells [kindCount]Cell
}

// Record stores a successful report in its strategy's cell and reports
// whether the cell changed. A failed report leaves the cell untouched.
func (b *Board) Record(r Report) bool {
	if !r.OK() || !r.Kind.Valid() {
		return false
	}
	b.mu.Lock()
	b.cells[r.Kind] = Cell{Output: r.Output, Time: r.Elapsed}
	b.mu.Unlock()
	return true
}

// Cell returns the current contents of kind's cell.
func (b *Board) Cell(kind Kind) Cell {
	if !kind.Valid() {
		return Cell{}
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cells[kind]
}

// Clear empties every cell, as when a new source image is loaded.
func (b *Board) Clear() {
	b.mu.Lock()
	b.cells = [kindCount]Cell{}
	b.mu.Unlock()
}
