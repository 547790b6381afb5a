// Package colorspec parses user-facing color specifications such as
// "white", "#FFFFFF", "#f00" or "rgb(255, 0, 0)" into pixel colors.
package colorspec

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"golang.org/x/image/colornames"
)

// ErrInvalidColorSpec is returned for input that is neither a known color
// name, a hex triplet nor an rgb() expression.
var ErrInvalidColorSpec = errors.New("invalid color spec")

var (
	specLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t]+`},
		{Name: "Hex", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})`},
		{Name: "Number", Pattern: `\d+`},
		{Name: "Ident", Pattern: `[A-Za-z]+`},
		{Name: "Punct", Pattern: `[(),]`},
	})

	specParser = participle.MustBuild[Spec](
		participle.Lexer(specLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)
)

// Spec is the parsed form of a color specification. Exactly one field is set.
type Spec struct {
	Hex  *string `parser:"  @Hex"`
	RGB  *RGB    `parser:"| @@"`
	Name *string `parser:"| @Ident"`
}

// RGB captures `rgb(r, g, b)`.
type RGB struct {
	R int `parser:"'rgb' '(' @Number"`
	G int `parser:"',' @Number"`
	B int `parser:"',' @Number ')'"`
}

// Parse resolves s to an opaque color.
func Parse(s string) (color.RGBA, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return color.RGBA{}, fmt.Errorf("%w: empty", ErrInvalidColorSpec)
	}
	spec, err := specParser.ParseString("", trimmed)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q: %v", ErrInvalidColorSpec, s, err)
	}
	return spec.Resolve()
}

// MustParse is like Parse but panics on error. Intended for constants.
func MustParse(s string) color.RGBA {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Resolve converts the parsed spec into a color.
func (s *Spec) Resolve() (color.RGBA, error) {
	switch {
	case s == nil:
		return color.RGBA{}, fmt.Errorf("%w: empty", ErrInvalidColorSpec)
	case s.Hex != nil:
		return parseHex(*s.Hex)
	case s.RGB != nil:
		return s.RGB.resolve()
	case s.Name != nil:
		return lookupName(*s.Name)
	default:
		return color.RGBA{}, fmt.Errorf("%w: empty", ErrInvalidColorSpec)
	}
}

func (c *RGB) resolve() (color.RGBA, error) {
	for _, v := range []int{c.R, c.G, c.B} {
		if v < 0 || v > 255 {
			return color.RGBA{}, fmt.Errorf("%w: rgb component %d out of range", ErrInvalidColorSpec, v)
		}
	}
	return color.RGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: 0xff}, nil
}

func parseHex(value string) (color.RGBA, error) {
	value = strings.TrimPrefix(value, "#")
	switch len(value) {
	case 3:
		value = strings.Repeat(value[0:1], 2) + strings.Repeat(value[1:2], 2) + strings.Repeat(value[2:3], 2)
	case 6, 8:
	default:
		return color.RGBA{}, fmt.Errorf("%w: hex color #%s", ErrInvalidColorSpec, value)
	}
	n, err := strconv.ParseUint(value, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: hex color #%s", ErrInvalidColorSpec, value)
	}
	// alpha is dropped; frames are always opaque
	if len(value) == 8 {
		n >>= 8
	}
	return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, nil
}

func lookupName(name string) (color.RGBA, error) {
	c, ok := colornames.Map[strings.ToLower(name)]
	if !ok {
		return color.RGBA{}, fmt.Errorf("%w: unknown color name %q", ErrInvalidColorSpec, name)
	}
	c.A = 0xff
	return c, nil
}
