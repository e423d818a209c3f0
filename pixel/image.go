package pixel

import (
	"image"

	"golang.org/x/image/draw"
)

// FromImage copies a decoded image into a new Buffer at its natural size.
//
// Non-NRGBA sources are converted by drawing into an *image.NRGBA with
// draw.Src, which un-premultiplies alpha and never resamples. Returns nil
// for an empty image.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil
	}

	buf := &Buffer{Width: width, Height: height, Pix: make([]uint8, width*height*Channels)}
	stride := buf.Stride()

	// Fast path: already straight RGBA.
	if src, ok := img.(*image.NRGBA); ok {
		for y := range height {
			start := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(buf.Pix[y*stride:(y+1)*stride], src.Pix[start:start+stride])
		}
		return buf
	}

	dst := &image.NRGBA{Pix: buf.Pix, Stride: stride, Rect: image.Rect(0, 0, width, height)}
	draw.Draw(dst, dst.Rect, img, bounds.Min, draw.Src)
	return buf
}

// ToImage copies the buffer into a new *image.NRGBA for rendering or encoding.
func (b *Buffer) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	copy(img.Pix, b.Pix)
	return img
}
