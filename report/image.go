package report

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	// CellPixels is the side of a field cell in a heatmap.
	CellPixels = 6
	// TickEvery is the spacing of the axis labels, in cells.
	TickEvery   = 35
	DefaultBins = 20

	marginLeft   = 44
	marginRight  = 8
	marginTop    = 8
	marginBottom = 24

	histWidth  = 480
	histHeight = 320
)

var (
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
	green = color.RGBA{0, 128, 0, 255}
	// The heatmap ramp runs from a pale blue-white to a dark green.
	rampLow  = color.RGBA{247, 252, 253, 255}
	rampHigh = color.RGBA{0, 68, 27, 255}
)

// Floats converts a count matrix for Heatmap.
func Floats(counts [][]int) [][]float64 {
	out := make([][]float64, len(counts))
	for x := range counts {
		out[x] = make([]float64, len(counts[x]))
		for y, c := range counts[x] {
			out[x][y] = float64(c)
		}
	}
	return out
}

// Ramp maps t in [0,1] onto the heatmap colour scale.
func Ramp(t float64) color.RGBA {
	t = math.Max(0, math.Min(1, t))
	lerp := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
	}
	return color.RGBA{
		lerp(rampLow.R, rampHigh.R),
		lerp(rampLow.G, rampHigh.G),
		lerp(rampLow.B, rampHigh.B),
		255,
	}
}

// cellOrigin is the top-left pixel of cell (x, y); y grows upward in the image.
func cellOrigin(x, y, height int) (int, int) {
	return marginLeft + x*CellPixels, marginTop + (height-1-y)*CellPixels
}

// Heatmap shades every cell of values, indexed [x][y], relative to the largest value.
// Axes are labeled in field units every TickEvery cells.
func Heatmap(values [][]float64, cellSize float64) *image.RGBA {
	width := len(values)
	height := 0
	if width > 0 {
		height = len(values[0])
	}

	img := image.NewRGBA(image.Rect(0, 0,
		marginLeft+width*CellPixels+marginRight,
		marginTop+height*CellPixels+marginBottom))
	draw.Draw(img, img.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)

	max := 0.0
	for x := range values {
		for _, v := range values[x] {
			max = math.Max(max, v)
		}
	}

	for x := range values {
		for y, v := range values[x] {
			t := 0.0
			if max > 0 {
				t = v / max
			}
			px, py := cellOrigin(x, y, height)
			fillRect(img, image.Rect(px, py, px+CellPixels, py+CellPixels), Ramp(t))
		}
	}

	bottom := marginTop + height*CellPixels
	for x := 0; x < width; x += TickEvery {
		px, _ := cellOrigin(x, 0, height)
		fillRect(img, image.Rect(px, bottom, px+1, bottom+4), black)
		drawText(img, px, bottom+16, length(float64(x)*cellSize), black)
	}
	for y := 0; y < height; y += TickEvery {
		_, py := cellOrigin(0, y, height)
		fillRect(img, image.Rect(marginLeft-4, py+CellPixels-1, marginLeft, py+CellPixels), black)
		drawText(img, 2, py+CellPixels, length(float64(y)*cellSize), black)
	}
	return img
}

// Bins histograms the positive counts into n equal-width bins over their range.
// A single distinct value spreads the bins over a unit range around it.
func Bins(counts [][]int, n int) (edges []float64, freq []int) {
	if n < 1 {
		n = 1
	}
	var values []float64
	for x := range counts {
		for _, c := range counts[x] {
			if c > 0 {
				values = append(values, float64(c))
			}
		}
	}

	lo, hi := 0.0, 1.0
	if len(values) > 0 {
		lo, hi = values[0], values[0]
		for _, v := range values {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if lo == hi {
			lo, hi = lo-0.5, hi+0.5
		}
	}

	width := (hi - lo) / float64(n)
	edges = make([]float64, n+1)
	for i := range edges {
		edges[i] = lo + float64(i)*width
	}
	freq = make([]int, n)
	for _, v := range values {
		i := int((v - lo) / width)
		if i >= n {
			i = n - 1
		}
		freq[i]++
	}
	return
}

// Histogram draws the distribution of the positive counts as green bars with black edges.
func Histogram(counts [][]int, n int, title string) *image.RGBA {
	edges, freq := Bins(counts, n)

	img := image.NewRGBA(image.Rect(0, 0, histWidth, histHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)
	drawText(img, marginLeft, 16, title, black)

	left, top := marginLeft, 28
	right, bottom := histWidth-marginRight-8, histHeight-marginBottom-8
	barWidth := (right - left) / len(freq)

	maxFreq := 0
	for _, f := range freq {
		if f > maxFreq {
			maxFreq = f
		}
	}

	for i, f := range freq {
		if f == 0 {
			continue
		}
		h := int(math.Round(float64(f) / float64(maxFreq) * float64(bottom-top)))
		bar := image.Rect(left+i*barWidth, bottom-h, left+(i+1)*barWidth, bottom)
		fillRect(img, bar, black)
		fillRect(img, bar.Inset(1), green)
	}

	// axes
	fillRect(img, image.Rect(left, bottom, right, bottom+1), black)
	fillRect(img, image.Rect(left-1, top, left, bottom), black)
	drawText(img, 2, top+10, fmt.Sprint(maxFreq), black)
	drawText(img, left, bottom+16, length(edges[0]), black)
	drawText(img, left+len(freq)*barWidth-16, bottom+16, length(math.Round(edges[len(edges)-1]*100)/100), black)
	return img
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func drawText(img *image.RGBA, x, y int, text string, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}
