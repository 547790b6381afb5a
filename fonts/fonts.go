package fonts

import (
	"os"

	"golang.org/x/image/font/gofont/goregular"
)

// candidates 为各平台常见的日文字体位置，按优先级排列。
var candidates = map[string][]string{
	"windows": {
		"C:/Windows/Fonts/msgothic.ttc",
		"C:/Windows/Fonts/msmincho.ttc",
		"C:/Windows/Fonts/meiryo.ttc",
	},
	"darwin": {
		"/System/Library/Fonts/Hiragino Sans GB.ttc",
		"/System/Library/Fonts/ヒラギノ角ゴシック W4.ttc",
	},
	"linux": {
		"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
		"/usr/share/fonts/truetype/noto/NotoSansCJK-Regular.ttc",
	},
}

// Candidates 返回平台（runtime.GOOS 取值）对应的候选字体路径；未知平台返回空。
// 纯函数，不访问文件系统。
func Candidates(goos string) []string {
	list := candidates[goos]
	out := make([]string, len(list))
	copy(out, list)
	return out
}

// Resolve 返回要使用的字体路径：显式路径优先，否则取第一个存在的候选路径；都没有时返回空串。
// exists 为 nil 时使用 Exists。
func Resolve(explicit, goos string, exists func(string) bool) string {
	if explicit != "" {
		return explicit
	}
	if exists == nil {
		exists = Exists
	}
	for _, path := range Candidates(goos) {
		if exists(path) {
			return path
		}
	}
	return ""
}

// Exists 判断路径是否为已存在的普通文件。
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Builtin 返回内置的基础字体（Go Regular），只覆盖拉丁字符。
func Builtin() []byte { return goregular.TTF }
