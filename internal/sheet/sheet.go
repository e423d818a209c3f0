// Package sheet lays out an original image and the strategy results side by
// side, each panel captioned with the strategy name and its time.
package sheet

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/sepia/pixel"
)

// Layout constants in pixels.
const (
	Gap        = 4
	CaptionH   = 18
	MinPanelW  = 112
	captionPad = 3
)

var (
	background = color.NRGBA{R: 0xf4, G: 0xf1, B: 0xea, A: 0xff}
	emptyPanel = color.NRGBA{R: 0xd8, G: 0xd4, B: 0xcc, A: 0xff}
	ink        = image.NewUniform(color.NRGBA{R: 0x2b, G: 0x22, B: 0x1a, A: 0xff})
)

// Entry is one result panel. A nil Output is drawn as an empty panel.
// Outputs larger than the original are clipped to its size.
type Entry struct {
	Label  string
	Output *pixel.Buffer
	Millis string
}

// Caption returns the text drawn under the entry's panel.
func (e Entry) Caption() string {
	if e.Output == nil || e.Millis == "" {
		return e.Label + " -"
	}
	return e.Label + " " + e.Millis + " ms"
}

// Render returns a sheet with orig in the first panel followed by one panel
// per entry. It returns nil when orig is not a valid buffer.
func Render(orig *pixel.Buffer, entries []Entry) *image.NRGBA {
	if orig.Validate() != nil {
		return nil
	}

	panelW := max(orig.Width, MinPanelW)
	panelH := orig.Height + CaptionH
	n := len(entries) + 1

	dst := image.NewNRGBA(image.Rect(0, 0, Gap+n*(panelW+Gap), 2*Gap+panelH))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	size := image.Pt(orig.Width, orig.Height)
	drawPanel(dst, panelOrigin(0, panelW), size, orig, "original")
	for i, e := range entries {
		drawPanel(dst, panelOrigin(i+1, panelW), size, e.Output, e.Caption())
	}
	return dst
}

// PanelRect returns the image area of panel i for an original of the given
// size.
func PanelRect(i, width, height int) image.Rectangle {
	at := panelOrigin(i, max(width, MinPanelW))
	return image.Rectangle{Min: at, Max: at.Add(image.Pt(width, height))}
}

func panelOrigin(i, panelW int) image.Point {
	return image.Pt(Gap+i*(panelW+Gap), Gap)
}

func drawPanel(dst *image.NRGBA, at, size image.Point, buf *pixel.Buffer, caption string) {
	r := image.Rectangle{Min: at, Max: at.Add(size)}
	if buf.Validate() == nil {
		img := buf.ToImage()
		draw.Draw(dst, r, img, img.Rect.Min, draw.Src)
	} else {
		draw.Draw(dst, r, image.NewUniform(emptyPanel), image.Point{}, draw.Src)
	}

	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  dst,
		Src:  ink,
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(r.Min.X + captionPad),
			Y: fixed.I(r.Max.Y + captionPad + face.Ascent),
		},
	}
	d.DrawString(caption)
}
