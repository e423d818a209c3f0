package tensorbatch

import (
	"context"
	"sync/atomic"

	"github.com/gogpu/sepia/pixel"
)

// Pending is an in-flight tensor transform.
type Pending struct {
	s    *Strategy
	src  *pixel.Buffer
	done chan struct{}

	// Written by the compute goroutine before done is closed.
	out result
	err error

	consumed atomic.Bool
}

// Done is closed when the computation has finished.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the computation finishes, reads the result tensor back
// into a new pixel buffer and releases the tensor. It may be called once.
//
// If ctx ends first, Wait returns ctx.Err() and the result tensor is
// released in the background as soon as the computation completes.
func (p *Pending) Wait(ctx context.Context) (*pixel.Buffer, error) {
	if !p.consumed.CompareAndSwap(false, true) {
		return nil, ErrConsumed
	}

	select {
	case <-p.done:
	case <-ctx.Done():
		p.s.log.Warn("tensorbatch: wait abandoned", "err", ctx.Err())
		go func() {
			<-p.done
			p.discard()
		}()
		return nil, ctx.Err()
	}

	if p.err != nil {
		return nil, p.err
	}
	defer p.discard()

	return p.readback(), nil
}

// readback converts the H×W×3 result into RGBA samples, filling alpha
// according to the strategy's policy.
func (p *Pending) readback() *pixel.Buffer {
	src := p.src
	dst := &pixel.Buffer{Width: src.Width, Height: src.Height, Pix: make([]uint8, len(src.Pix))}

	rgb := p.out.Data()
	for i, j := 0, 0; j+2 < len(rgb); i, j = i+pixel.Channels, j+3 {
		dst.Pix[i] = clampByte(rgb[j])
		dst.Pix[i+1] = clampByte(rgb[j+1])
		dst.Pix[i+2] = clampByte(rgb[j+2])
		if p.s.alpha == AlphaPreserve {
			dst.Pix[i+3] = src.Pix[i+3]
		} else {
			dst.Pix[i+3] = 255
		}
	}

	p.s.log.Debug("tensorbatch: transformed", "width", src.Width, "height", src.Height, "alpha", p.s.alpha)
	return dst
}

func (p *Pending) discard() {
	if p.out != nil {
		p.s.tracker.Release(p.out)
		p.out = nil
	}
}

func clampByte(v int32) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}
