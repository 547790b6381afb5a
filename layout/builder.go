package layout

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

var (
	// ErrNoUnits 表示分段后没有可显示的单元；属于正常的空结果，不应视为失败。
	ErrNoUnits = errors.New("no content")
	// ErrNoFrames 表示渲染阶段没有产生任何帧。
	ErrNoFrames = errors.New("no frames generated")
)

// Split 按码点计算枢轴位置 len/2，并拆出前缀、枢轴与后缀。
// 空字符串返回零值。
func Split(unit string) PivotSplit {
	n := utf8.RuneCountInString(unit)
	if n == 0 {
		return PivotSplit{}
	}
	pivotIdx := n / 2
	// 找到第 pivotIdx 个码点的字节偏移
	start := 0
	for i := 0; i < pivotIdx; i++ {
		_, size := utf8.DecodeRuneInString(unit[start:])
		start += size
	}
	_, size := utf8.DecodeRuneInString(unit[start:])
	return PivotSplit{
		Prefix: unit[:start],
		Pivot:  unit[start : start+size],
		Suffix: unit[start+size:],
	}
}

// MeasureString 先尝试墨迹外框查询，失败时回退到前进宽度与行度量。
// 空字符串的宽高均为 0。
func MeasureString(m Measurer, s string) Extent {
	if s == "" {
		return Extent{}
	}
	if im, ok := m.(InkMeasurer); ok {
		if ext, ok := im.InkBounds(s); ok {
			return ext
		}
	}
	ascent, descent := m.LineMetrics()
	return Extent{
		Width:  m.Advance(s),
		Height: ascent + descent,
		Ascent: ascent,
	}
}

// MeasureUnit 测量单元整体以及三段文本。
func MeasureUnit(m Measurer, unit string) UnitMetrics {
	split := Split(unit)
	return UnitMetrics{
		Text:   unit,
		Split:  split,
		Prefix: MeasureString(m, split.Prefix),
		Pivot:  MeasureString(m, split.Pivot),
		Suffix: MeasureString(m, split.Suffix),
		Full:   MeasureString(m, unit),
	}
}

// Measure 是绘制前的预测量：对全部单元求左右最大伸展，得到所有帧共享的画布。
// 画布宽度在整个序列中保持不变，否则枢轴无法对齐。
func Measure(units []string, m Measurer, height int) (Canvas, []UnitMetrics) {
	metrics := make([]UnitMetrics, 0, len(units))
	maxLeft, maxRight := 0.0, 0.0
	for _, u := range units {
		um := MeasureUnit(m, u)
		maxLeft = math.Max(maxLeft, um.LeftDist())
		maxRight = math.Max(maxRight, um.RightDist())
		metrics = append(metrics, um)
	}
	return CanvasFor(maxLeft, maxRight, height), metrics
}

// CanvasFor 根据最大左右伸展计算画布：width = max(400, 2*max(left, right) + 100)。
func CanvasFor(maxLeft, maxRight float64, height int) Canvas {
	if height <= 0 {
		height = DefaultCanvasSize
	}
	required := int(2*math.Max(maxLeft, maxRight) + canvasPadding)
	width := DefaultCanvasSize
	if required > width {
		width = required
	}
	return Canvas{Width: width, Height: height}
}

// Place 计算一帧中三段文本的位置，使枢轴墨迹中心落在 canvas.CenterX()。
//
//	x = cx - prefixWidth - pivotWidth/2
//	y = (canvasHeight - textHeight) / 2
//
// 每段的笔位再减去自身 Bearing，保证墨迹（而非笔位）从计算出的位置开始。
func Place(um UnitMetrics, canvas Canvas, cfg Config) Frame {
	cx := canvas.CenterX()
	x := cx - um.Prefix.Width - um.Pivot.Width/2
	top := (float64(canvas.Height) - um.Full.Height) / 2

	frame := Frame{
		Unit:     um.Text,
		Split:    um.Split,
		Top:      top,
		Baseline: top + um.Full.Ascent,
	}
	segments := []struct {
		role  RunRole
		text  string
		ext   Extent
		inkX  float64
		color Color
	}{
		{RolePrefix, um.Split.Prefix, um.Prefix, x, cfg.TextColor},
		{RolePivot, um.Split.Pivot, um.Pivot, x + um.Prefix.Width, cfg.PivotColor()},
		{RoleSuffix, um.Split.Suffix, um.Suffix, x + um.Prefix.Width + um.Pivot.Width, cfg.TextColor},
	}
	for _, seg := range segments {
		if seg.text == "" {
			continue
		}
		frame.Runs = append(frame.Runs, Run{
			Role:  seg.role,
			Text:  seg.text,
			X:     seg.inkX - seg.ext.Bearing,
			InkX:  seg.inkX,
			Width: seg.ext.Width,
			Color: seg.color,
		})
	}
	return frame
}

// Durations 计算每帧的显示时长：默认 interval；启用 pause_on_break 且单元包含分隔符时为 break_delay；
// 第 0 帧无条件覆盖为 start_delay。
func Durations(units []string, cfg Config) []int {
	durations := make([]int, len(units))
	for i, u := range units {
		if cfg.PauseOnBreak && cfg.Delimiter != "" && strings.Contains(u, cfg.Delimiter) {
			durations[i] = cfg.BreakDelay
		} else {
			durations[i] = cfg.Interval
		}
	}
	if len(durations) > 0 {
		durations[0] = cfg.StartDelay
	}
	return durations
}

// Build 串联预测量、锚点布局与时长计算，生成与渲染器无关的布局计划。
func Build(units []string, opts BuildOptions) (*Result, error) {
	if opts.Measurer == nil {
		return nil, fmt.Errorf("layout: 缺少字形度量后端 Measurer")
	}
	if len(units) == 0 {
		return nil, ErrNoUnits
	}
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("layout: 配置无效: %w", err)
	}

	canvas, metrics := Measure(units, opts.Measurer, cfg.CanvasHeight)
	durations := Durations(units, cfg)

	frames := make([]Frame, 0, len(metrics))
	for i, um := range metrics {
		frame := Place(um, canvas, cfg)
		frame.Index = i
		frame.Duration = durations[i]
		frames = append(frames, frame)
	}
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}

	return &Result{
		Canvas:     canvas,
		Background: cfg.Background,
		Frames:     frames,
		Meta:       opts.Meta,
	}, nil
}
