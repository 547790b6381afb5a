package layout

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"
)

// advanceMeasurer 只实现基础查询：ASCII 10px，其余字符 50px。
type advanceMeasurer struct{}

func (advanceMeasurer) Advance(s string) float64 {
	w := 0.0
	for _, r := range s {
		if r < utf8.RuneSelf {
			w += 10
		} else {
			w += 50
		}
	}
	return w
}

func (advanceMeasurer) LineMetrics() (float64, float64) { return 44, 12 }

// inkMeasurer 额外实现墨迹外框查询，左右各留 3px 侧隙；空白返回 ok=false。
type inkMeasurer struct {
	advanceMeasurer
	calls int
}

func (m *inkMeasurer) InkBounds(s string) (Extent, bool) {
	m.calls++
	if s == " " {
		return Extent{}, false
	}
	return Extent{Width: m.Advance(s) - 6, Height: 40, Ascent: 36, Bearing: 3}, true
}

func TestSplitReassembles(t *testing.T) {
	cases := []struct {
		in     string
		prefix string
		pivot  string
		suffix string
	}{
		{"行", "", "行", ""},
		{"東京", "東", "京", ""},
		{"東京に", "東", "京", "に"},
		{"行く。", "行", "く", "。"},
		{"abcd", "ab", "c", "d"},
		{"ありがとうございます", "ありがと", "う", "ございます"},
	}
	for _, tc := range cases {
		got := Split(tc.in)
		if got.Prefix != tc.prefix || got.Pivot != tc.pivot || got.Suffix != tc.suffix {
			t.Fatalf("Split(%q) = %#v", tc.in, got)
		}
		if got.Prefix+got.Pivot+got.Suffix != tc.in {
			t.Fatalf("Split(%q) 无法拼回原文: %#v", tc.in, got)
		}
		if idx := utf8.RuneCountInString(got.Prefix); idx != utf8.RuneCountInString(tc.in)/2 {
			t.Fatalf("Split(%q) 枢轴下标 %d", tc.in, idx)
		}
	}
	if got := Split(""); got != (PivotSplit{}) {
		t.Fatalf("空串应返回零值，实际 %#v", got)
	}
}

func TestMeasureStringFallsBackToAdvance(t *testing.T) {
	ink := &inkMeasurer{}
	if got := MeasureString(ink, "ab"); got.Width != 14 || got.Bearing != 3 {
		t.Fatalf("应使用墨迹外框，实际 %#v", got)
	}
	if got := MeasureString(ink, " "); got.Width != 10 || got.Height != 56 || got.Ascent != 44 {
		t.Fatalf("墨迹查询失败时应回退到前进宽度，实际 %#v", got)
	}
	if got := MeasureString(advanceMeasurer{}, "東"); got.Width != 50 || got.Bearing != 0 {
		t.Fatalf("基础查询结果错误: %#v", got)
	}
	before := ink.calls
	if got := MeasureString(ink, ""); got != (Extent{}) {
		t.Fatalf("空串应测得 0，实际 %#v", got)
	}
	if ink.calls != before {
		t.Fatalf("空串不应调用度量后端")
	}
}

func TestCanvasWidthMinimumAndGrowth(t *testing.T) {
	if c := CanvasFor(0, 0, 400); c.Width != 400 || c.Height != 400 {
		t.Fatalf("最小画布应为 400x400，实际 %#v", c)
	}
	prev := 0
	for _, left := range []float64{10, 150, 151, 200, 320, 1000} {
		c := CanvasFor(left, 20, 400)
		if c.Width < 400 {
			t.Fatalf("画布宽度小于 400: %d", c.Width)
		}
		if c.Width < prev {
			t.Fatalf("画布宽度应随伸展单调不减: prev=%d got=%d", prev, c.Width)
		}
		prev = c.Width
	}
	if c := CanvasFor(200, 320, 400); c.Width != 740 {
		t.Fatalf("期望 2*320+100=740，实际 %d", c.Width)
	}
}

func TestMeasureTracksWorstCaseExtents(t *testing.T) {
	units := []string{"行", "ありがとうございます", "ab"}
	canvas, metrics := Measure(units, advanceMeasurer{}, 400)
	if len(metrics) != len(units) {
		t.Fatalf("测量结果数量不符: %d", len(metrics))
	}
	// 单字符单元只贡献 pivot/2
	if metrics[0].LeftDist() != 25 || metrics[0].RightDist() != 25 {
		t.Fatalf("单字符单元伸展错误: %g %g", metrics[0].LeftDist(), metrics[0].RightDist())
	}
	// 最长单元：前缀 4 字 200 + 25，后缀 5 字 250 + 25
	if want := int(2*275.0 + 100); canvas.Width != want {
		t.Fatalf("画布宽度期望 %d，实际 %d", want, canvas.Width)
	}
}

func TestPivotCenterIsAnchored(t *testing.T) {
	cfg := DefaultConfig()
	units := []string{"行", "東京に", "ありがとうございます", "ab", " x", "。"}
	for _, m := range []Measurer{advanceMeasurer{}, &inkMeasurer{}} {
		res, err := Build(units, BuildOptions{Measurer: m, Config: cfg})
		if err != nil {
			t.Fatalf("Build 失败: %v", err)
		}
		cx := res.Canvas.CenterX()
		for _, f := range res.Frames {
			c, ok := PivotCenter(f)
			if !ok {
				t.Fatalf("帧 %d 缺少枢轴段", f.Index)
			}
			if math.Abs(c-cx) > 1e-9 {
				t.Fatalf("帧 %d 枢轴中心 %g != %g", f.Index, c, cx)
			}
		}
	}
}

func TestPlaceRunsAbutAndSkipEmpty(t *testing.T) {
	cfg := DefaultConfig()
	m := &inkMeasurer{}
	canvas := Canvas{Width: 600, Height: 400}

	f := Place(MeasureUnit(m, "東京に"), canvas, cfg)
	if len(f.Runs) != 3 {
		t.Fatalf("期望 3 段，实际 %d", len(f.Runs))
	}
	for i := 1; i < len(f.Runs); i++ {
		prev := f.Runs[i-1]
		if math.Abs(prev.InkX+prev.Width-f.Runs[i].InkX) > 1e-9 {
			t.Fatalf("第 %d 段未与前一段相接", i)
		}
		if math.Abs(f.Runs[i].X+3-f.Runs[i].InkX) > 1e-9 {
			t.Fatalf("笔位未扣除 bearing: %#v", f.Runs[i])
		}
	}
	if f.Top != 180 || f.Baseline != 216 {
		t.Fatalf("垂直居中错误: top=%g baseline=%g", f.Top, f.Baseline)
	}

	single := Place(MeasureUnit(m, "行"), canvas, cfg)
	if len(single.Runs) != 1 || single.Runs[0].Role != RolePivot {
		t.Fatalf("单字符单元只应绘制枢轴段: %#v", single.Runs)
	}
}

func TestPivotColor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TextColor = Color{R: 10, G: 20, B: 30}
	res, err := Build([]string{"東京", "に"}, BuildOptions{Measurer: advanceMeasurer{}, Config: cfg})
	if err != nil {
		t.Fatalf("Build 失败: %v", err)
	}
	for _, f := range res.Frames {
		if run, _ := f.Run(RolePivot); run.Color != HighlightColor {
			t.Fatalf("默认应高亮枢轴，实际 %#v", run.Color)
		}
	}

	cfg.Highlight = false
	res, err = Build([]string{"東京", "に"}, BuildOptions{Measurer: advanceMeasurer{}, Config: cfg})
	if err != nil {
		t.Fatalf("Build 失败: %v", err)
	}
	for _, f := range res.Frames {
		for _, run := range f.Runs {
			if run.Color != cfg.TextColor {
				t.Fatalf("关闭高亮后所有段应为正文颜色，实际 %s=%#v", run.Role, run.Color)
			}
		}
	}
}

func TestDurations(t *testing.T) {
	cfg := DefaultConfig()
	units := []string{"東京", "に", "行く", "。"}
	got := Durations(units, cfg)
	want := []int{2000, 500, 500, 500}
	assertInts(t, got, want)

	cfg.PauseOnBreak = true
	cfg.BreakDelay = 1200
	assertInts(t, Durations([]string{"東京に", "行く。", "帰る"}, cfg), []int{2000, 1200, 500})
	// 首帧即使包含分隔符也以 start_delay 为准
	assertInts(t, Durations([]string{"はい。", "行く。"}, cfg), []int{2000, 1200})

	cfg.PauseOnBreak = false
	for i, d := range Durations([]string{"はい。", "行く。", "帰る。"}, cfg) {
		if i > 0 && d == cfg.BreakDelay {
			t.Fatalf("未启用 pause_on_break 时第 %d 帧不应为 break_delay", i)
		}
	}
	if got := Durations(nil, cfg); len(got) != 0 {
		t.Fatalf("空序列应返回空时长，实际 %v", got)
	}
}

func TestBuildEmptyAndInvalid(t *testing.T) {
	if _, err := Build(nil, BuildOptions{Measurer: advanceMeasurer{}, Config: DefaultConfig()}); !errors.Is(err, ErrNoUnits) {
		t.Fatalf("空单元应返回 ErrNoUnits，实际 %v", err)
	}
	if _, err := Build([]string{"a"}, BuildOptions{Config: DefaultConfig()}); err == nil {
		t.Fatalf("缺少 Measurer 应报错")
	}
	cfg := DefaultConfig()
	cfg.Interval = -1
	if _, err := Build([]string{"a"}, BuildOptions{Measurer: advanceMeasurer{}, Config: cfg}); err == nil {
		t.Fatalf("负数 interval 应报错")
	}
}

func TestBuildSharesCanvasAcrossFrames(t *testing.T) {
	units := []string{"東京", "に", "行く", "。"}
	m := advanceMeasurer{}
	canvas, _ := Measure(units, m, DefaultCanvasSize)
	res, err := Build(units, BuildOptions{Measurer: m, Config: DefaultConfig()})
	if err != nil {
		t.Fatalf("Build 失败: %v", err)
	}
	if res.Canvas != canvas {
		t.Fatalf("预测量画布 %#v 与布局画布 %#v 不一致", canvas, res.Canvas)
	}
	if len(res.Frames) != 4 {
		t.Fatalf("期望 4 帧，实际 %d", len(res.Frames))
	}
	assertInts(t, res.Durations(), []int{2000, 500, 500, 500})
}

func TestWriteDebugJSON(t *testing.T) {
	res, err := Build([]string{"東京に", "行く。"}, BuildOptions{Measurer: advanceMeasurer{}, Config: DefaultConfig()})
	if err != nil {
		t.Fatalf("Build 失败: %v", err)
	}
	path := filepath.Join(t.TempDir(), "layout.json")
	if err := WriteDebugJSON(res, path); err != nil {
		t.Fatalf("WriteDebugJSON 失败: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取调试 JSON 失败: %v", err)
	}
	var doc struct {
		AnchorX      float64   `json:"anchorX"`
		PivotCenters []float64 `json:"pivotCenters"`
		Canvas       Canvas    `json:"canvas"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("解析调试 JSON 失败: %v", err)
	}
	if doc.Canvas != res.Canvas || len(doc.PivotCenters) != 2 {
		t.Fatalf("调试 JSON 内容不符: %#v", doc)
	}
	for _, c := range doc.PivotCenters {
		if c != doc.AnchorX {
			t.Fatalf("枢轴中心 %g != %g", c, doc.AnchorX)
		}
	}
}

func assertInts(t *testing.T, got, want []int) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("长度不符: got=%v want=%v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("第 %d 项不符: got=%v want=%v", i, got, want)
		}
	}
}
