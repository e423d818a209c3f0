package parallel

// Stripe is a half-open range of rows [Y0, Y1).
type Stripe struct {
	Y0, Y1 int
}

// Rows returns the number of rows in the stripe.
func (s Stripe) Rows() int {
	return s.Y1 - s.Y0
}

// Stripes splits height rows into at most n contiguous stripes of nearly
// equal size. The stripes cover every row exactly once, in order.
func Stripes(height, n int) []Stripe {
	if height <= 0 {
		return nil
	}
	n = max(min(n, height), 1)

	out := make([]Stripe, 0, n)
	base, extra := height/n, height%n
	y := 0
	for i := range n {
		rows := base
		if i < extra {
			rows++
		}
		out = append(out, Stripe{Y0: y, Y1: y + rows})
		y += rows
	}
	return out
}
