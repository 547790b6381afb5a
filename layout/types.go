package layout

import "fmt"

// 该文件定义锚点布局的结果类型，供布局计算、渲染与调试 JSON 共用。
// 所有长度单位均为像素（px）。

// Result 保存一次运行的完整布局计划：共享画布、逐帧绘制指令与文档元信息。
type Result struct {
	Canvas     Canvas       `json:"canvas"`
	Background Color        `json:"background"`
	Frames     []Frame      `json:"frames"`
	Meta       DocumentMeta `json:"meta"`
}

// Durations 返回与 Frames 平行的显示时长序列（毫秒）。
func (r *Result) Durations() []int {
	if r == nil {
		return nil
	}
	out := make([]int, len(r.Frames))
	for i, f := range r.Frames {
		out[i] = f.Duration
	}
	return out
}

// Canvas 是所有帧共享的画布尺寸，只在预测量阶段计算一次。
type Canvas struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// CenterX 为枢轴字符中心在每一帧中的固定横坐标。
func (c Canvas) CenterX() float64 { return float64(c.Width) / 2 }

// PivotSplit 把一个显示单元拆成前缀、枢轴字符与后缀。
type PivotSplit struct {
	Prefix string `json:"prefix"`
	Pivot  string `json:"pivot"`
	Suffix string `json:"suffix"`
}

// Extent 是字符串在字体中的像素外框。
// Bearing 为笔位到墨迹左边缘的水平偏移；按前进宽度测量时为 0。
type Extent struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Ascent  float64 `json:"ascent"`
	Bearing float64 `json:"bearing,omitempty"`
}

// UnitMetrics 记录一个单元在预测量阶段得到的全部测量值，绘制阶段直接复用。
type UnitMetrics struct {
	Text   string     `json:"text"`
	Split  PivotSplit `json:"split"`
	Prefix Extent     `json:"prefix"`
	Pivot  Extent     `json:"pivot"`
	Suffix Extent     `json:"suffix"`
	Full   Extent     `json:"full"`
}

// LeftDist 为枢轴中心左侧所需的宽度。
func (m UnitMetrics) LeftDist() float64 { return m.Prefix.Width + m.Pivot.Width/2 }

// RightDist 为枢轴中心右侧所需的宽度。
func (m UnitMetrics) RightDist() float64 { return m.Suffix.Width + m.Pivot.Width/2 }

// RunRole 标识一段文本在单元中的位置。
type RunRole string

const (
	RolePrefix RunRole = "prefix"
	RolePivot  RunRole = "pivot"
	RoleSuffix RunRole = "suffix"
)

// Run 是一段已定位、已着色的文本。
// X 为笔位；InkX 为墨迹左边缘，等于 X + Bearing。
type Run struct {
	Role  RunRole `json:"role"`
	Text  string  `json:"text"`
	X     float64 `json:"x"`
	InkX  float64 `json:"inkX"`
	Width float64 `json:"width"`
	Color Color   `json:"color"`
}

// Frame 描述一帧：单元文本、三段文本的位置与颜色、基线以及显示时长。
type Frame struct {
	Index    int        `json:"index"`
	Unit     string     `json:"unit"`
	Split    PivotSplit `json:"split"`
	Runs     []Run      `json:"runs"`
	Top      float64    `json:"top"`
	Baseline float64    `json:"baseline"`
	Duration int        `json:"duration"` // 毫秒
}

// Run 返回指定角色的文本段；空文本段不会出现在 Runs 中。
func (f Frame) Run(role RunRole) (Run, bool) {
	for _, r := range f.Runs {
		if r.Role == role {
			return r, true
		}
	}
	return Run{}, false
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Hex 返回 #RRGGBB 形式。
func (c Color) Hex() string { return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B) }

// HighlightColor 是枢轴字符的固定高亮色。
var HighlightColor = Color{R: 255, G: 0, B: 0}

// DocumentMeta 保存输出文件的元信息（PDF 输出时写入文档信息）。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
