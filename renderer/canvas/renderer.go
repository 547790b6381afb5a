package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/anchorgif/fonts"
	"github.com/ByLCY/anchorgif/layout"
	"github.com/ByLCY/anchorgif/renderer"
)

// Format is the output container.
type Format string

const (
	FormatGIF Format = "gif"
	FormatPDF Format = "pdf"
)

// FormatFromPath picks the output format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gif", "":
		return FormatGIF, nil
	case ".pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("不支持的输出格式 %q（仅支持 .gif 与 .pdf）", filepath.Ext(path))
	}
}

// FontWarning reports that the requested font could not be used and the
// built-in Latin font was loaded instead. Rendering continues.
type FontWarning struct {
	Path string // empty when no candidate font was found
	Err  error
}

func (w *FontWarning) Error() string {
	if w.Path == "" {
		return "no suitable Japanese font found, using the built-in font (Japanese characters may not render correctly)"
	}
	return fmt.Sprintf("could not load font at %s (%v), using the built-in font", w.Path, w.Err)
}

func (w *FontWarning) Unwrap() error { return w.Err }

// Renderer draws layout results via github.com/tdewolff/canvas.
// One layout px is one pt: the canvas is sized in mm with layout.PxToMm and
// rasterized at layout.MmToPt dots per mm.
type Renderer struct {
	format   Format
	workers  int
	sizePt   float64
	fontPath string
	warning  *FontWarning

	family *canvas.FontFamily
	// measurement face; color is irrelevant for metrics
	face *canvas.FontFace

	fontMu sync.Mutex
	faces  map[layout.Color]*canvas.FontFace
}

var (
	_ renderer.Renderer  = (*Renderer)(nil)
	_ layout.InkMeasurer = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	// FontPath is the resolved font file; empty selects the built-in font.
	FontPath string
	// FontSize in px; defaults to layout.DefaultFontSize.
	FontSize float64
	Format   Format
	// Workers bounds the GIF quantization fan-out; <=0 uses GOMAXPROCS.
	Workers int
}

// NewRenderer loads the font and prepares the renderer. Failure to load
// opts.FontPath is not an error: the built-in font is used and Warning
// reports why. Only a broken built-in font fails.
func NewRenderer(opts Options) (*Renderer, error) {
	r := &Renderer{
		format:  opts.Format,
		workers: opts.Workers,
		sizePt:  opts.FontSize,
		faces:   map[layout.Color]*canvas.FontFace{},
	}
	if r.format == "" {
		r.format = FormatGIF
	}
	if r.workers <= 0 {
		r.workers = runtime.GOMAXPROCS(0)
	}
	if r.sizePt <= 0 {
		r.sizePt = layout.DefaultFontSize
	}

	if opts.FontPath != "" {
		family, err := loadFamily(opts.FontPath)
		if err == nil {
			r.family = family
			r.fontPath = opts.FontPath
		} else {
			r.warning = &FontWarning{Path: opts.FontPath, Err: err}
		}
	} else {
		r.warning = &FontWarning{}
	}
	if r.family == nil {
		family, err := fallback()
		if err != nil {
			return nil, err
		}
		r.family = family
	}
	r.face = r.faceFor(layout.Color{})
	return r, nil
}

// FontPath returns the loaded font file, or "" for the built-in font.
func (r *Renderer) FontPath() string { return r.fontPath }

// Warning returns the font fallback reason, or nil.
func (r *Renderer) Warning() error {
	if r.warning == nil {
		return nil
	}
	return r.warning
}

// Advance 返回字符串的前进宽度（px）。
func (r *Renderer) Advance(s string) float64 {
	return layout.MmToPx(r.face.TextWidth(s))
}

// LineMetrics 返回字体的上升部与下降部（px）。
func (r *Renderer) LineMetrics() (float64, float64) {
	m := r.face.Metrics()
	return layout.MmToPx(m.Ascent), layout.MmToPx(math.Abs(m.Descent))
}

// InkBounds 返回字形轮廓外框；没有可见轮廓（空白、缺字）时 ok 为 false。
func (r *Renderer) InkBounds(s string) (layout.Extent, bool) {
	text := canvas.NewTextLine(r.face, s, canvas.Left)
	b := text.OutlineBounds()
	if b.W() <= 0 || b.H() <= 0 {
		return layout.Extent{}, false
	}
	return layout.Extent{
		Width:   layout.MmToPx(b.W()),
		Height:  layout.MmToPx(b.H()),
		Ascent:  layout.MmToPx(b.Y1),
		Bearing: layout.MmToPx(b.X0),
	}, true
}

// Render renders the result into GIF or PDF bytes.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Frames) == 0 {
		return nil, layout.ErrNoFrames
	}
	switch r.format {
	case FormatPDF:
		return r.renderPDF(result)
	case FormatGIF:
		return r.renderGIF(result)
	default:
		return nil, fmt.Errorf("不支持的输出格式 %q", r.format)
	}
}

// Rasterize draws every frame at one pixel per layout px. Each image has
// exactly the bounds of result.Canvas.
func (r *Renderer) Rasterize(result *layout.Result) []*image.RGBA {
	bounds := image.Rect(0, 0, result.Canvas.Width, result.Canvas.Height)
	images := make([]*image.RGBA, 0, len(result.Frames))
	for _, frame := range result.Frames {
		c := r.drawFrame(frame, result.Canvas, result.Background)
		img := rasterizer.Draw(c, canvas.DPMM(layout.MmToPt), canvas.DefaultColorSpace)
		images = append(images, fitBounds(img, bounds))
	}
	return images
}

func (r *Renderer) renderPDF(result *layout.Result) ([]byte, error) {
	w := layout.PxToMm(float64(result.Canvas.Width))
	h := layout.PxToMm(float64(result.Canvas.Height))

	var buf bytes.Buffer
	writer := pdf.New(&buf, w, h, nil)
	r.applyMeta(writer, result.Meta)
	for i, frame := range result.Frames {
		if i > 0 {
			writer.NewPage(w, h)
		}
		c := r.drawFrame(frame, result.Canvas, result.Background)
		c.RenderTo(writer)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, "", meta.Creator)
}

// drawFrame 绘制一帧：先铺背景，再按笔位依次绘制前缀、枢轴与后缀。
func (r *Renderer) drawFrame(frame layout.Frame, cv layout.Canvas, bg layout.Color) *canvas.Canvas {
	w := layout.PxToMm(float64(cv.Width))
	h := layout.PxToMm(float64(cv.Height))
	c := canvas.New(w, h)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

	ctx.SetStrokeColor(canvas.Transparent)
	ctx.SetFillColor(colorFromLayout(bg))
	ctx.DrawPath(0, 0, canvas.Rectangle(w, h))

	baseline := layout.PxToMm(frame.Baseline)
	for _, run := range frame.Runs {
		if run.Text == "" {
			continue
		}
		textLine := canvas.NewTextLine(r.faceFor(run.Color), run.Text, canvas.Left)
		ctx.DrawText(layout.PxToMm(run.X), baseline, textLine)
	}
	return c
}

func (r *Renderer) faceFor(col layout.Color) *canvas.FontFace {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if face, ok := r.faces[col]; ok {
		return face
	}
	face := r.family.Face(r.sizePt, colorFromLayout(col), canvas.FontRegular, canvas.FontNormal)
	r.faces[col] = face
	return face
}

func loadFamily(path string) (*canvas.FontFamily, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily("anchorgif")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, err
	}
	return family, nil
}

func fallback() (*canvas.FontFamily, error) {
	family := canvas.NewFontFamily("anchorgif-fallback")
	if err := family.LoadFont(fonts.Builtin(), 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("加载内置字体失败: %w", err)
	}
	return family, nil
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}
