// Package render draws procedural planet images.
package render

import (
	"errors"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"math/rand"
)

// ErrMissingData means the record lacks a value the image is derived from.
var ErrMissingData = errors.New("planet data missing")

// RenderError wraps a failure to draw, encode or store an image.
type RenderError struct {
	Name string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Name, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Temperature bands for the palette, in K.
const (
	IceBelow  = 250.0
	LavaAbove = 320.0
)

const noiseSize = 100

// Palette returns the color stops for a world of the given equilibrium temperature.
func Palette(eqTemp float64) []color.RGBA {
	switch {
	case eqTemp < IceBelow:
		return []color.RGBA{hex(0xffffff), hex(0xaaddff), hex(0x004488)}
	case eqTemp <= LavaAbove:
		return []color.RGBA{hex(0x004488), hex(0x228822), hex(0x88aa00), hex(0xffffff)}
	default:
		return []color.RGBA{hex(0x440000), hex(0xaa4400), hex(0xffcc00)}
	}
}

// Planet describes what gets drawn.
type Planet struct {
	Name   string
	Radius float64
	EqTemp float64
}

// Draw renders a shaded sphere on black. The noise texture is seeded from the
// name, so a planet always looks the same.
func Draw(p Planet, size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	black := color.RGBA{A: 0xff}
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = black.R, black.G, black.B, black.A
	}

	palette := Palette(p.EqTemp)
	noise := noiseGrid(p.Name)

	center := float64(size) / 2
	sphere := float64(size) * diskFraction(p.Radius)
	light := normalize(-0.5, -0.55, 0.67)

	for py := 0; py < size; py++ {
		for px := 0; px < size; px++ {
			x := (float64(px) + 0.5 - center) / sphere
			y := (float64(py) + 0.5 - center) / sphere
			d2 := x*x + y*y
			if d2 > 1 {
				continue
			}
			z := math.Sqrt(1 - d2)

			lon := math.Atan2(x, z)
			lat := math.Asin(-y)
			u := (lon + math.Pi/2) / math.Pi
			v := (lat + math.Pi/2) / math.Pi
			base := gradient(palette, sampleNoise(noise, u, v))

			shade := 0.25 + 0.75*math.Max(0, x*light[0]+y*light[1]+z*light[2])
			img.SetRGBA(px, py, color.RGBA{
				R: scale(base.R, shade),
				G: scale(base.G, shade),
				B: scale(base.B, shade),
				A: 0xff,
			})
		}
	}
	return img
}

// Encode draws the planet and writes it as PNG.
func Encode(w io.Writer, p Planet, size int) error {
	if err := png.Encode(w, Draw(p, size)); err != nil {
		return &RenderError{Name: p.Name, Err: err}
	}
	return nil
}

// diskFraction maps planet radius (Earth radii) to the sphere radius as a share of the image.
func diskFraction(radius float64) float64 {
	r := math.Min(math.Max(radius, 0), 16)
	return 0.3 + 0.15*math.Sqrt(r/16)
}

func noiseGrid(name string) [][]float64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	rnd := rand.New(rand.NewSource(int64(h.Sum64())))

	grid := make([][]float64, noiseSize)
	for i := range grid {
		grid[i] = make([]float64, noiseSize)
		for j := range grid[i] {
			grid[i][j] = rnd.Float64()
		}
	}
	return grid
}

// sampleNoise bilinearly interpolates the grid at u, v in [0,1].
func sampleNoise(grid [][]float64, u, v float64) float64 {
	fx := clamp01(u) * float64(noiseSize-1)
	fy := clamp01(v) * float64(noiseSize-1)
	x0, y0 := int(fx), int(fy)
	x1, y1 := min(x0+1, noiseSize-1), min(y0+1, noiseSize-1)
	tx, ty := fx-float64(x0), fy-float64(y0)

	top := grid[y0][x0]*(1-tx) + grid[y0][x1]*tx
	bottom := grid[y1][x0]*(1-tx) + grid[y1][x1]*tx
	return top*(1-ty) + bottom*ty
}

func gradient(stops []color.RGBA, t float64) color.RGBA {
	t = clamp01(t)
	if len(stops) == 1 {
		return stops[0]
	}
	pos := t * float64(len(stops)-1)
	i := int(pos)
	if i >= len(stops)-1 {
		return stops[len(stops)-1]
	}
	f := pos - float64(i)
	a, b := stops[i], stops[i+1]
	return color.RGBA{
		R: lerp(a.R, b.R, f),
		G: lerp(a.G, b.G, f),
		B: lerp(a.B, b.B, f),
		A: 0xff,
	}
}

func hex(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

func lerp(a, b uint8, f float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*f))
}

func scale(c uint8, f float64) uint8 {
	return uint8(math.Min(255, math.Round(float64(c)*f)))
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

func normalize(x, y, z float64) [3]float64 {
	n := math.Sqrt(x*x + y*y + z*z)
	return [3]float64{x / n, y / n, z / n}
}
