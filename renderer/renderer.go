package renderer

import "github.com/ByLCY/anchorgif/layout"

// Renderer 将布局结果输出为最终文件，例如动画 GIF 或 PDF。
// Render 返回生成的二进制数据以及可能的错误；结果中没有帧时返回 layout.ErrNoFrames。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}
