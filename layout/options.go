package layout

import (
	"errors"
	"fmt"
	"image/color"
)

// 默认参数。
const (
	DefaultCanvasSize = 400
	DefaultFontSize   = 50
	DefaultInterval   = 500
	DefaultStartDelay = 2000
	DefaultBreakDelay = 500
	DefaultDelimiter  = "。"

	// canvasPadding 为画布宽度在左右两侧额外预留的总宽度（每侧 50px）。
	canvasPadding = 100
)

// Config 是在构建任何帧之前就已确定的只读渲染配置。
type Config struct {
	TextColor    Color
	Background   Color
	Highlight    bool
	Interval     int // 毫秒
	StartDelay   int // 毫秒
	BreakDelay   int // 毫秒
	Delimiter    string
	PauseOnBreak bool
	CanvasHeight int
}

// DefaultConfig 返回与命令行默认值一致的配置。
func DefaultConfig() Config {
	return Config{
		TextColor:    Color{0, 0, 0},
		Background:   Color{255, 255, 255},
		Highlight:    true,
		Interval:     DefaultInterval,
		StartDelay:   DefaultStartDelay,
		BreakDelay:   DefaultBreakDelay,
		Delimiter:    DefaultDelimiter,
		CanvasHeight: DefaultCanvasSize,
	}
}

// PivotColor 返回枢轴字符使用的颜色；关闭高亮时与正文同色。
func (c Config) PivotColor() Color {
	if !c.Highlight {
		return c.TextColor
	}
	return HighlightColor
}

// Validate 检查时长等数值配置。
func (c Config) Validate() error {
	var errs []error
	if c.Interval < 0 {
		errs = append(errs, fmt.Errorf("interval 不能为负数: %d", c.Interval))
	}
	if c.StartDelay < 0 {
		errs = append(errs, fmt.Errorf("start_delay 不能为负数: %d", c.StartDelay))
	}
	if c.BreakDelay < 0 {
		errs = append(errs, fmt.Errorf("break_delay 不能为负数: %d", c.BreakDelay))
	}
	if c.PauseOnBreak && c.Delimiter == "" {
		errs = append(errs, errors.New("启用 pause_on_break 时 delimiter 不能为空"))
	}
	if c.CanvasHeight <= 0 {
		errs = append(errs, fmt.Errorf("画布高度必须为正数: %d", c.CanvasHeight))
	}
	return errors.Join(errs...)
}

// ColorFromRGBA 将像素颜色转换为布局颜色（忽略透明度）。
func ColorFromRGBA(c color.RGBA) Color {
	return Color{R: int(c.R), G: int(c.G), B: int(c.B)}
}

// Measurer 是字形度量后端的基础查询：前进宽度与行度量，单位 px。
type Measurer interface {
	Advance(s string) float64
	LineMetrics() (ascent, descent float64)
}

// InkMeasurer 是可选的更精确查询：返回字符串墨迹外框。
// ok 为 false 时（例如只有空白或缺字形）调用方回退到 Measurer 的基础查询。
type InkMeasurer interface {
	Measurer
	InkBounds(s string) (ext Extent, ok bool)
}

// BuildOptions 配置布局阶段所需的依赖，例如字形度量后端。
type BuildOptions struct {
	Measurer Measurer
	Config   Config
	Meta     DocumentMeta
}
