package canvas

import (
	"errors"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// ErrDegenerateQuad is returned by Perspective when the target corners do not
// span an area.
var ErrDegenerateQuad = errors.New("perspective target is degenerate")

// CircleCorner makes the corners transparent with radius r.
func (i *Image) CircleCorner(r float64) *Image {
	out := imaging.Clone(i.img)
	w, h := i.Size()
	if r <= 0 {
		return &Image{img: out}
	}
	limit := math.Min(float64(w), float64(h)) / 2
	if r > limit {
		r = limit
	}

	corners := [4][2]float64{
		{r, r},
		{float64(w) - r, r},
		{r, float64(h) - r},
		{float64(w) - r, float64(h) - r},
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			for idx, c := range corners {
				inX := (idx%2 == 0 && px < c[0]) || (idx%2 == 1 && px > c[0])
				inY := (idx < 2 && py < c[1]) || (idx >= 2 && py > c[1])
				if !inX || !inY {
					continue
				}
				if math.Hypot(px-c[0], py-c[1]) > r {
					off := out.PixOffset(x, y)
					out.Pix[off+3] = 0
				}
			}
		}
	}
	return &Image{img: out}
}

// Circle crops to the inscribed circle of the image.
func (i *Image) Circle() *Image {
	w, h := i.Size()
	size := w
	if h < size {
		size = h
	}
	square := imaging.Fill(i.img, size, size, imaging.Center, imaging.Lanczos)
	return (&Image{img: square}).CircleCorner(float64(size) / 2)
}

// Perspective maps the image corners (top-left, top-right, bottom-right,
// bottom-left) onto the given points. The result is sized to the bounding box
// of the points, which are interpreted relative to its origin.
func (i *Image) Perspective(points [4]image.Point) (*Image, error) {
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	outW, outH := maxX-minX, maxY-minY
	if outW <= 0 || outH <= 0 {
		return nil, ErrDegenerateQuad
	}

	w, h := i.Size()
	src := [4][2]float64{{0, 0}, {float64(w), 0}, {float64(w), float64(h)}, {0, float64(h)}}
	var dst [4][2]float64
	for idx, p := range points {
		dst[idx] = [2]float64{float64(p.X - minX), float64(p.Y - minY)}
	}

	// Inverse mapping: for each output pixel find its source coordinate.
	coeffs, ok := solveHomography(dst, src)
	if !ok {
		return nil, ErrDegenerateQuad
	}

	out := image.NewNRGBA(image.Rect(0, 0, outW, outH))
	for y := 0; y < outH; y++ {
		for x := 0; x < outW; x++ {
			fx, fy := float64(x)+0.5, float64(y)+0.5
			den := coeffs[6]*fx + coeffs[7]*fy + 1
			if den == 0 {
				continue
			}
			sx := (coeffs[0]*fx + coeffs[1]*fy + coeffs[2]) / den
			sy := (coeffs[3]*fx + coeffs[4]*fy + coeffs[5]) / den
			ix, iy := int(math.Floor(sx)), int(math.Floor(sy))
			if ix < 0 || iy < 0 || ix >= w || iy >= h {
				continue
			}
			so := i.img.PixOffset(ix, iy)
			do := out.PixOffset(x, y)
			copy(out.Pix[do:do+4], i.img.Pix[so:so+4])
		}
	}
	return &Image{img: out}, nil
}

// solveHomography returns the 8 coefficients of the projective transform
// taking from[k] to to[k].
func solveHomography(from, to [4][2]float64) ([8]float64, bool) {
	var m [8][9]float64
	for k := 0; k < 4; k++ {
		x, y := from[k][0], from[k][1]
		u, v := to[k][0], to[k][1]
		m[2*k] = [9]float64{x, y, 1, 0, 0, 0, -u * x, -u * y, u}
		m[2*k+1] = [9]float64{0, 0, 0, x, y, 1, -v * x, -v * y, v}
	}

	for col := 0; col < 8; col++ {
		pivot := col
		for row := col + 1; row < 8; row++ {
			if math.Abs(m[row][col]) > math.Abs(m[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(m[pivot][col]) < 1e-12 {
			return [8]float64{}, false
		}
		m[col], m[pivot] = m[pivot], m[col]
		for row := 0; row < 8; row++ {
			if row == col {
				continue
			}
			factor := m[row][col] / m[col][col]
			for k := col; k < 9; k++ {
				m[row][k] -= factor * m[col][k]
			}
		}
	}

	var out [8]float64
	for k := 0; k < 8; k++ {
		out[k] = m[k][8] / m[k][k]
	}
	return out, true
}
