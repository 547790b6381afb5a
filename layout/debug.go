package layout

import (
	"encoding/json"
	"fmt"
	"os"
)

// debugDocument 在布局结果之外附带每帧枢轴墨迹中心，便于核对对齐。
type debugDocument struct {
	*Result
	AnchorX      float64   `json:"anchorX"`
	PivotCenters []float64 `json:"pivotCenters"`
	Durations    []int     `json:"durations"`
}

// PivotCenter 返回一帧中枢轴墨迹的水平中心；没有枢轴段时 ok 为 false。
func PivotCenter(f Frame) (float64, bool) {
	run, ok := f.Run(RolePivot)
	if !ok {
		return 0, false
	}
	return run.InkX + run.Width/2, true
}

// WriteDebugJSON 将布局结果输出为 JSON，便于调试或可视化。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	doc := debugDocument{
		Result:       res,
		AnchorX:      res.Canvas.CenterX(),
		PivotCenters: make([]float64, 0, len(res.Frames)),
		Durations:    res.Durations(),
	}
	for _, f := range res.Frames {
		c, _ := PivotCenter(f)
		doc.PivotCenters = append(doc.PivotCenters, c)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化布局 JSON 失败: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
