package tensorbatch

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/born-ml/born/tensor"
)

// releaser is any born tensor, whatever its element type.
type releaser interface {
	Raw() *tensor.RawTensor
}

// Tracker counts tensors that have been tracked by a Scope and not yet
// released. It is the leak check for repeated transforms.
type Tracker struct {
	live atomic.Int64
}

// Live returns the number of tracked tensors not yet released.
func (t *Tracker) Live() int64 {
	return t.live.Load()
}

// Release frees a tensor that escaped its scope with Keep.
func (t *Tracker) Release(x releaser) {
	if x == nil {
		return
	}
	x.Raw().Release()
	t.live.Add(-1)
}

// Scope collects every tensor created inside one block and releases all of
// them, except those marked with Keep, when Close runs. A tensor tracked
// twice is released once.
type Scope struct {
	tracker *Tracker

	mu     sync.Mutex
	raws   []*tensor.RawTensor
	seen   map[*tensor.RawTensor]struct{}
	kept   map[*tensor.RawTensor]struct{}
	closed bool
}

// NewScope opens a scope that reports to tr.
func NewScope(tr *Tracker) *Scope {
	return &Scope{
		tracker: tr,
		seen:    make(map[*tensor.RawTensor]struct{}),
		kept:    make(map[*tensor.RawTensor]struct{}),
	}
}

func (s *Scope) add(raw *tensor.RawTensor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		panic("tensorbatch: track on closed scope")
	}
	if _, ok := s.seen[raw]; ok {
		return
	}
	s.seen[raw] = struct{}{}
	s.raws = append(s.raws, raw)
	s.tracker.live.Add(1)
}

// Keep marks x as the escaping result: Close leaves it alive and the caller
// must hand it to Tracker.Release once consumed.
func (s *Scope) Keep(x releaser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kept[x.Raw()] = struct{}{}
}

// Close releases every tracked tensor that was not kept, newest first.
// Close is safe to call multiple times.
func (s *Scope) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	for i := len(s.raws) - 1; i >= 0; i-- {
		raw := s.raws[i]
		if _, ok := s.kept[raw]; ok {
			continue
		}
		raw.Release()
		s.tracker.live.Add(-1)
	}
	s.raws = nil
}

// Track registers x with s and returns it, so tensor expressions can be
// wrapped inline.
func Track[X releaser](s *Scope, x X) X {
	s.add(x.Raw())
	return x
}

// Tidy runs fn inside a fresh scope. The returned tensor is kept; everything
// else fn tracked is released when Tidy returns, including when fn panics.
// A panic is converted into an error wrapping ErrBackend.
func Tidy[X releaser](tr *Tracker, fn func(s *Scope) (X, error)) (out X, err error) {
	s := NewScope(tr)
	defer s.Close()
	defer func() {
		if r := recover(); r != nil {
			var zero X
			out, err = zero, fmt.Errorf("%w: %v", ErrBackend, r)
		}
	}()

	out, err = fn(s)
	if err != nil {
		var zero X
		return zero, err
	}
	Track(s, out)
	s.Keep(out)
	return out, nil
}
