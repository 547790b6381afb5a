package segment

import "strings"

// 独立词（自立語）的词性；出现时开启新的文节。
var independentPOS = map[string]bool{
	"名詞":   true,
	"動詞":   true,
	"形容詞":  true,
	"副詞":   true,
	"連体詞":  true,
	"接続詞":  true,
	"感動詞":  true,
	"接頭詞":  true,
	"フィラー": true,
}

// Bunsetu groups tokens into clause segments.
//
// An independent word opens a new segment, except that it continues the open
// one after a prefix, an opening bracket, when it extends a noun compound, or
// when it is the する of a サ変 verb (勉強 + し). A noun that can act as an
// adverb (毎日, 今日) does not start a compound with the noun after it.
// Particles, auxiliaries, symbols, suffixes and non-independent forms attach
// to the open segment.
func Bunsetu(tokens []Token) []string {
	var (
		segments []string
		current  strings.Builder
		prev     *Token
	)
	flush := func() {
		if current.Len() > 0 {
			segments = append(segments, current.String())
			current.Reset()
		}
	}
	for i := range tokens {
		tok := &tokens[i]
		if current.Len() > 0 && opensSegment(prev, tok) {
			flush()
		}
		current.WriteString(tok.Surface)
		prev = tok
	}
	flush()
	return segments
}

func opensSegment(prev, tok *Token) bool {
	if isOpeningBracket(tok) {
		return !bindsForward(prev)
	}
	if !isIndependent(tok) {
		return false
	}
	if prev == nil {
		return true
	}
	if bindsForward(prev) {
		return false
	}
	// サ変名词 + する 构成一个动词
	if isSuru(tok) && pos(prev, 0) == "名詞" && pos(prev, 1) == "サ変接続" {
		return false
	}
	// 名词连续视为复合名词；副词可能名词（毎日、今日）除外
	if pos(tok, 0) == "名詞" && pos(prev, 0) == "名詞" && pos(prev, 1) != "副詞可能" {
		return false
	}
	return true
}

func isSuru(tok *Token) bool {
	return pos(tok, 0) == "動詞" && pos(tok, 1) == "自立" && tok.BaseForm == "する"
}

func isIndependent(tok *Token) bool {
	if !independentPOS[pos(tok, 0)] {
		return false
	}
	switch pos(tok, 1) {
	case "非自立", "接尾":
		return false
	}
	return true
}

// bindsForward 表示该词与其后的词构成同一文节（接头词、开括号）。
func bindsForward(tok *Token) bool {
	if tok == nil {
		return false
	}
	return pos(tok, 0) == "接頭詞" || isOpeningBracket(tok)
}

func isOpeningBracket(tok *Token) bool {
	return pos(tok, 0) == "記号" && pos(tok, 1) == "括弧開"
}

func pos(tok *Token, level int) string {
	if tok == nil || level >= len(tok.POS) {
		return ""
	}
	return tok.POS[level]
}
