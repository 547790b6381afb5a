package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/ByLCY/anchorgif/colorspec"
	"github.com/ByLCY/anchorgif/fonts"
	"github.com/ByLCY/anchorgif/layout"
	"github.com/ByLCY/anchorgif/preview"
	"github.com/ByLCY/anchorgif/renderer"
	canvasrenderer "github.com/ByLCY/anchorgif/renderer/canvas"
	"github.com/ByLCY/anchorgif/segment"
)

// options 汇总命令行参数。
type options struct {
	text         string
	output       string
	fontPath     string
	dictPath     string
	userDictPath string
	debugPath    string
	preview      bool
	workers      int
	mode         segment.Mode
	config       layout.Config
}

func main() {
	log.SetFlags(0)
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	con := newConsole(os.Stdout)

	engine, code := openEngine(opts, newConsole(os.Stderr))
	if engine == nil {
		os.Exit(code)
	}
	defer engine.Close()

	format, err := canvasrenderer.FormatFromPath(opts.output)
	if err != nil {
		log.Fatalf("%v", err)
	}
	r, err := canvasrenderer.NewRenderer(canvasrenderer.Options{
		FontPath: fonts.Resolve(opts.fontPath, runtime.GOOS, nil),
		FontSize: layout.DefaultFontSize,
		Format:   format,
		Workers:  opts.workers,
	})
	if err != nil {
		log.Fatalf("初始化渲染器失败: %v", err)
	}
	if path := r.FontPath(); path != "" {
		con.infof("Using font: %s", path)
	}
	if w := r.Warning(); w != nil {
		con.warnf("Warning: %v", w)
	}

	result, err := run(opts, engine, r, con)
	switch {
	case errors.Is(err, layout.ErrNoUnits):
		con.infof("No words found in the input text.")
		return
	case errors.Is(err, layout.ErrNoFrames):
		con.infof("No frames generated.")
		return
	case err != nil:
		log.Fatalf("生成动画失败: %v", err)
	}
	con.successf("%s saved to %s", strings.ToUpper(string(format)), opts.output)

	if opts.preview {
		if !con.tty {
			con.warnf("Warning: --preview requires a terminal, skipped")
			return
		}
		if err := preview.Run(result, opts.config); err != nil {
			log.Fatalf("预览失败: %v", err)
		}
	}
}

// exitEngineInit 是分词引擎初始化失败时的退出码。
const exitEngineInit = 1

// openEngine 打开分词引擎；失败时向 errCon 输出原因与修复建议，并返回退出码。
func openEngine(opts options, errCon *console) (*segment.Engine, int) {
	engine, err := segment.Open(segment.Options{DictPath: opts.dictPath, UserDictPath: opts.userDictPath})
	if err != nil {
		errCon.errorf("初始化分词引擎失败: %v", err)
		errCon.errorf("%s", segment.Remediation)
		return nil, exitEngineInit
	}
	return engine, 0
}

// run 串联分段、布局与渲染，并一次性写出输出文件。
// 没有单元或没有帧时返回 layout.ErrNoUnits / layout.ErrNoFrames，且不写文件。
func run(opts options, a segment.Analyzer, r renderer.Renderer, con *console) (*layout.Result, error) {
	if r == nil {
		return nil, fmt.Errorf("renderer 不能为空")
	}
	m, ok := r.(layout.Measurer)
	if !ok {
		return nil, fmt.Errorf("renderer 未实现字形度量接口")
	}

	units := segment.Split(a, opts.text, opts.mode)
	if len(units) == 0 {
		return nil, layout.ErrNoUnits
	}
	con.infof("Tokenized components: %s", formatUnits(units))

	result, err := layout.Build(units, layout.BuildOptions{
		Measurer: m,
		Config:   opts.config,
		Meta:     documentMeta(opts, units),
	})
	if err != nil {
		return nil, fmt.Errorf("布局计算失败: %w", err)
	}

	if opts.debugPath != "" {
		if err := writeDebug(result, opts.debugPath); err != nil {
			return nil, err
		}
	}

	data, err := r.Render(result)
	if err != nil {
		return nil, fmt.Errorf("渲染失败: %w", err)
	}
	if dir := filepath.Dir(opts.output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("创建输出目录失败: %w", err)
		}
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return nil, fmt.Errorf("写入输出文件失败: %w", err)
	}
	return result, nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}

func documentMeta(opts options, units []string) layout.DocumentMeta {
	return layout.DocumentMeta{
		Title:    strings.Join(units, ""),
		Subject:  "anchor-aligned reading animation",
		Creator:  "anchorgif",
		Keywords: []string{string(opts.mode)},
	}
}

func formatUnits(units []string) string {
	quoted := make([]string, len(units))
	for i, u := range units {
		quoted[i] = fmt.Sprintf("%q", u)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// parseFlags 解析命令行；位置参数 text 可以出现在任意标志之前或之后。
func parseFlags(args []string) (options, error) {
	fs := flag.NewFlagSet("anchorgif", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "用法: anchorgif [flags] <text>")
		fs.PrintDefaults()
	}

	interval := fs.Int("interval", layout.DefaultInterval, "帧间隔（毫秒）")
	startDelay := fs.Int("start_delay", layout.DefaultStartDelay, "第一帧的显示时长（毫秒）")
	output := fs.String("output", "output_anchor.gif", "输出文件路径（.gif 或 .pdf）")
	fontPath := fs.String("font_path", "", "TrueType/OpenType 字体路径")
	noHighlight := fs.Bool("no_highlight", false, "关闭枢轴字符的红色高亮")
	textColor := fs.String("text_color", "black", `文字颜色（例如 "white"、"#FFFFFF"）`)
	bgColor := fs.String("bg_color", "white", `背景颜色（例如 "black"、"#000000"）`)
	spanType := fs.String("span_type", string(segment.ModeBunsetu), "分段粒度：bunsetu 或 token")
	pauseOnBreak := fs.Bool("pause_on_break", false, "在包含分隔符的单元上停顿")
	breakDelay := fs.Int("break_delay", layout.DefaultBreakDelay, "停顿时长（毫秒）")
	delimiter := fs.String("delimiter", layout.DefaultDelimiter, "停顿分隔符")
	dictPath := fs.String("dict", "", "kagome 系统词典文件（默认使用内置 IPA 词典）")
	userDictPath := fs.String("user_dict", "", "kagome 用户词典 CSV")
	debugPath := fs.String("debug", "", "布局调试 JSON 输出路径")
	showPreview := fs.Bool("preview", false, "生成后在终端中预览")
	workers := fs.Int("workers", 0, "GIF 量化并发数（0 表示 GOMAXPROCS）")

	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return options{}, err
		}
		if fs.NArg() == 0 {
			break
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
	if len(positional) != 1 {
		fs.Usage()
		return options{}, fmt.Errorf("需要且只需要一个 text 参数，实际 %d 个", len(positional))
	}

	mode, err := segment.ParseMode(*spanType)
	if err != nil {
		return options{}, err
	}
	text, err := colorspec.Parse(*textColor)
	if err != nil {
		return options{}, fmt.Errorf("text_color: %w", err)
	}
	bg, err := colorspec.Parse(*bgColor)
	if err != nil {
		return options{}, fmt.Errorf("bg_color: %w", err)
	}

	cfg := layout.DefaultConfig()
	cfg.TextColor = layout.ColorFromRGBA(text)
	cfg.Background = layout.ColorFromRGBA(bg)
	cfg.Highlight = !*noHighlight
	cfg.Interval = *interval
	cfg.StartDelay = *startDelay
	cfg.BreakDelay = *breakDelay
	cfg.Delimiter = *delimiter
	cfg.PauseOnBreak = *pauseOnBreak
	if err := cfg.Validate(); err != nil {
		return options{}, err
	}
	if *workers < 0 {
		return options{}, fmt.Errorf("workers 不能为负数: %d", *workers)
	}

	return options{
		text:         positional[0],
		output:       *output,
		fontPath:     *fontPath,
		dictPath:     *dictPath,
		userDictPath: *userDictPath,
		debugPath:    *debugPath,
		preview:      *showPreview,
		workers:      *workers,
		mode:         mode,
		config:       cfg,
	}, nil
}

// console 输出面向用户的诊断信息；终端下使用 lipgloss 着色。
type console struct {
	w       io.Writer
	tty     bool
	warn    lipgloss.Style
	success lipgloss.Style
	fail    lipgloss.Style
}

func newConsole(f *os.File) *console {
	return newConsoleTo(f, term.IsTerminal(int(f.Fd())))
}

func newConsoleTo(w io.Writer, tty bool) *console {
	c := &console{
		w:       w,
		tty:     tty,
		warn:    lipgloss.NewStyle(),
		success: lipgloss.NewStyle(),
		fail:    lipgloss.NewStyle(),
	}
	if tty {
		c.warn = c.warn.Foreground(lipgloss.Color("214"))
		c.success = c.success.Foreground(lipgloss.Color("42")).Bold(true)
		c.fail = c.fail.Foreground(lipgloss.Color("196"))
	}
	return c
}

func (c *console) infof(format string, args ...any) {
	fmt.Fprintf(c.w, format+"\n", args...)
}

func (c *console) warnf(format string, args ...any) {
	fmt.Fprintln(c.w, c.warn.Render(fmt.Sprintf(format, args...)))
}

func (c *console) successf(format string, args ...any) {
	fmt.Fprintln(c.w, c.success.Render(fmt.Sprintf(format, args...)))
}

func (c *console) errorf(format string, args ...any) {
	fmt.Fprintln(c.w, c.fail.Render(fmt.Sprintf(format, args...)))
}
