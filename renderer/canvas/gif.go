package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"

	"golang.org/x/sync/errgroup"

	"github.com/ByLCY/anchorgif/layout"
)

// maxPaletteSize is the GIF color table limit.
const maxPaletteSize = 256

func (r *Renderer) renderGIF(result *layout.Result) ([]byte, error) {
	frames := r.Rasterize(result)
	palette := buildPalette(result.Background, runColors(result))
	bounds := image.Rect(0, 0, result.Canvas.Width, result.Canvas.Height)

	anim := &gif.GIF{
		Image:     make([]*image.Paletted, len(frames)),
		Delay:     make([]int, len(frames)),
		LoopCount: 0, // 无限循环
	}
	// 量化互不依赖，按下标写回以保持帧顺序
	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, img := range frames {
		anim.Delay[i] = centiseconds(result.Frames[i].Duration)
		g.Go(func() error {
			anim.Image[i] = quantize(img, bounds, palette)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		return nil, fmt.Errorf("编码 GIF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// centiseconds converts a millisecond duration to GIF delay units, rounding
// to the nearest 10ms.
func centiseconds(ms int) int {
	if ms <= 0 {
		return 0
	}
	return (ms + 5) / 10
}

// runColors 收集所有帧中出现的文字颜色（去重，保持首次出现顺序）。
func runColors(result *layout.Result) []layout.Color {
	seen := map[layout.Color]bool{}
	var out []layout.Color
	for _, f := range result.Frames {
		for _, run := range f.Runs {
			if !seen[run.Color] {
				seen[run.Color] = true
				out = append(out, run.Color)
			}
		}
	}
	return out
}

// buildPalette 生成背景色到每种文字颜色的渐变色表，覆盖抗锯齿边缘。
// 背景色固定位于下标 0，每种文字颜色都精确出现在色表中。
func buildPalette(bg layout.Color, inks []layout.Color) color.Palette {
	base := toRGBA(bg)
	palette := color.Palette{base}
	if len(inks) == 0 {
		return palette
	}
	steps := (maxPaletteSize - 1) / len(inks)
	if steps < 1 {
		steps = 1
		inks = inks[:maxPaletteSize-1]
	}
	for _, ink := range inks {
		target := toRGBA(ink)
		for i := 1; i <= steps; i++ {
			palette = append(palette, lerp(base, target, float64(i)/float64(steps)))
		}
	}
	return palette
}

func lerp(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t + 0.5)
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 0xff}
}

func toRGBA(c layout.Color) color.RGBA {
	return color.RGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: 0xff}
}

// quantize maps img onto the palette with nearest-color matching.
func quantize(img image.Image, bounds image.Rectangle, palette color.Palette) *image.Paletted {
	dst := image.NewPaletted(bounds, palette)
	draw.Draw(dst, bounds, img, bounds.Min, draw.Src)
	return dst
}

// fitBounds returns img when it already has the wanted bounds, otherwise a
// copy cropped or padded to them. Rasterizer rounding may be off by a pixel.
func fitBounds(img *image.RGBA, bounds image.Rectangle) *image.RGBA {
	if img.Bounds() == bounds {
		return img
	}
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, img, img.Bounds().Min, draw.Src)
	return dst
}
