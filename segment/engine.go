package segment

import (
	"errors"
	"fmt"

	"github.com/ikawaha/kagome-dict/dict"
	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// ErrEngineInit marks a failure to load the analyzer's dictionary or build
// the tokenizer. It is fatal for the command line tool.
var ErrEngineInit = errors.New("linguistic engine unavailable")

// Remediation is printed by the CLI next to an ErrEngineInit.
const Remediation = "请确认 --dict / --user_dict 指向有效的 kagome 词典文件；省略 --dict 时使用内置 IPA 词典。"

// Options configures Open.
type Options struct {
	// DictPath points to a kagome system dictionary archive. Empty means the
	// embedded IPA dictionary.
	DictPath string
	// UserDictPath points to an optional kagome user dictionary (CSV).
	UserDictPath string
}

// Engine is an explicitly owned analyzer handle backed by kagome.
type Engine struct {
	tokenizer *tokenizer.Tokenizer
}

var _ Analyzer = (*Engine)(nil)

// Open loads the dictionary and builds the tokenizer. Every failure wraps
// ErrEngineInit.
func Open(opts Options) (engine *Engine, err error) {
	// 内置词典在加载失败时会 panic
	defer func() {
		if r := recover(); r != nil {
			engine = nil
			err = fmt.Errorf("%w: %v", ErrEngineInit, r)
		}
	}()

	var sys *dict.Dict
	if opts.DictPath != "" {
		sys, err = dict.LoadDictFile(opts.DictPath)
		if err != nil {
			return nil, fmt.Errorf("%w: 加载词典 %s 失败: %v", ErrEngineInit, opts.DictPath, err)
		}
	} else {
		sys = ipa.Dict()
	}

	tokenizerOpts := []tokenizer.Option{tokenizer.OmitBosEos()}
	if opts.UserDictPath != "" {
		udict, err := dict.NewUserDict(opts.UserDictPath)
		if err != nil {
			return nil, fmt.Errorf("%w: 加载用户词典 %s 失败: %v", ErrEngineInit, opts.UserDictPath, err)
		}
		tokenizerOpts = append(tokenizerOpts, tokenizer.UserDict(udict))
	}

	t, err := tokenizer.New(sys, tokenizerOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineInit, err)
	}
	return &Engine{tokenizer: t}, nil
}

// Analyze tokenizes text in normal mode.
func (e *Engine) Analyze(text string) []Token {
	if e == nil || e.tokenizer == nil || text == "" {
		return nil
	}
	raw := e.tokenizer.Tokenize(text)
	tokens := make([]Token, 0, len(raw))
	for _, tok := range raw {
		if tok.Class == tokenizer.DUMMY {
			continue
		}
		base, _ := tok.BaseForm()
		tokens = append(tokens, Token{Surface: tok.Surface, POS: tok.POS(), BaseForm: base})
	}
	return tokens
}

// Close releases the engine. The dictionary stays loaded for the process
// lifetime, so this only drops the reference.
func (e *Engine) Close() error {
	if e != nil {
		e.tokenizer = nil
	}
	return nil
}
