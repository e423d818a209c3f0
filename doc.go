// Package sepia compares three implementations of the same sepia-tone color
// transform and measures their latency side by side.
//
// # Overview
//
// Every strategy takes a pixel.Buffer (straight RGBA, natural resolution) and
// returns a new buffer in which each pixel's RGB has been mixed by the fixed
// pixel.Sepia() matrix, clamped to [0, 255] and rounded with pixel.Quantize:
//
//   - Scalar: a direct loop over the samples, optionally striped across
//     goroutines. It is the reference and the baseline.
//   - MatrixLibrary: one N×4 by 4×4 matrix product in gonum, with explicitly
//     deleted intermediates.
//   - TensorBatch: a batched matmul over an N×3 tensor in born, with
//     scope-based disposal and an asynchronous readback.
//
// The three agree within ±1 per channel. Scalar and MatrixLibrary keep alpha
// bitwise; TensorBatch writes opaque alpha unless configured otherwise.
//
// # Quick Start
//
//	buf, _, err := pixel.Load("photo.jpg")
//	if err != nil {
//	    return err
//	}
//
//	s, err := sepia.New(sepia.MatrixLibrary)
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	r := sepia.Measure(ctx, s, buf)
//	if r.OK() {
//	    fmt.Println(r.Kind, r.Millis(), "ms")
//	}
//
// # Failures
//
// The library-backed strategies recover their own backend failures, log them
// and return no buffer. A Board records a run only when it produced a result,
// so a failed run never replaces or clears what was shown before.
package sepia
