// Package pattern implements the `%var[,width]{opts}%` text pattern
// language used to render packets to human-readable text (§4.17, §6).
package pattern

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gosmartlog/smartlog/pkg/packet"
)

// DefaultTimestampLayout is used for the `timestamp` variable when no
// `{layout}` options string is given.
const DefaultTimestampLayout = "2006-01-02 15:04:05.000"

// Context carries the fields a pattern may reference. Not every packet
// kind populates every field; the Has* flags distinguish "zero value" from
// "not applicable to this packet".
type Context struct {
	AppName  string
	Color    packet.Color
	HostName string
	Level    packet.Level

	LogEntryType    packet.LogEntryType
	HasLogEntryType bool

	Process   int
	Session   string
	Thread    uint64
	Timestamp time.Time
	Title     string

	ViewerID    packet.ViewerID
	HasViewerID bool

	// Indent is the current enter/leave-method nesting depth (§4.17); it
	// is applied as a two-space-per-level prefix on the title variable.
	Indent int
}

type tokenKind int

const (
	tokenLiteral tokenKind = iota
	tokenVariable
)

type token struct {
	kind  tokenKind
	text  string // literal text, or the lower-cased variable name
	width int
	opts  string
	raw   string // original "%...%" text, for unknown-variable passthrough
}

// Formatter renders a Context through a compiled pattern.
type Formatter struct {
	tokens []token
}

// Compile parses spec into a Formatter. Unbalanced or malformed `%...%`
// markers are treated as literal text rather than raising an error — the
// pattern language has no error mode, only best-effort rendering.
func Compile(spec string) *Formatter {
	var tokens []token
	runes := []rune(spec)
	n := len(runes)
	i := 0
	var lit strings.Builder

	flushLit := func() {
		if lit.Len() > 0 {
			tokens = append(tokens, token{kind: tokenLiteral, text: lit.String()})
			lit.Reset()
		}
	}

	for i < n {
		if runes[i] != '%' {
			lit.WriteRune(runes[i])
			i++
			continue
		}
		end := -1
		for j := i + 1; j < n; j++ {
			if runes[j] == '%' {
				end = j
				break
			}
		}
		if end < 0 {
			lit.WriteRune(runes[i])
			i++
			continue
		}
		body := string(runes[i+1 : end])
		if body == "" {
			lit.WriteRune('%')
			i = end + 1
			continue
		}
		flushLit()
		tokens = append(tokens, parseVariable(body))
		i = end + 1
	}
	flushLit()
	return &Formatter{tokens: tokens}
}

func parseVariable(body string) token {
	raw := "%" + body + "%"
	name := body
	width := 0
	opts := ""

	if idx := strings.IndexByte(name, '{'); idx >= 0 && strings.HasSuffix(name, "}") {
		opts = name[idx+1 : len(name)-1]
		name = name[:idx]
	}
	if idx := strings.IndexByte(name, ','); idx >= 0 {
		if w, err := strconv.Atoi(strings.TrimSpace(name[idx+1:])); err == nil {
			width = w
		}
		name = name[:idx]
	}
	return token{
		kind:  tokenVariable,
		text:  strings.ToLower(strings.TrimSpace(name)),
		width: width,
		opts:  opts,
		raw:   raw,
	}
}

// Format renders ctx through the compiled pattern.
func (f *Formatter) Format(ctx Context) string {
	var out strings.Builder
	for _, t := range f.tokens {
		if t.kind == tokenLiteral {
			out.WriteString(t.text)
			continue
		}
		out.WriteString(justify(resolve(t, ctx), t.width))
	}
	return out.String()
}

func resolve(t token, ctx Context) string {
	switch t.text {
	case "appname":
		return ctx.AppName
	case "color":
		if !ctx.Color.Set {
			return ""
		}
		return fmt.Sprintf("#%02X%02X%02X", ctx.Color.R, ctx.Color.G, ctx.Color.B)
	case "hostname":
		return ctx.HostName
	case "level":
		return ctx.Level.String()
	case "logentrytype":
		if !ctx.HasLogEntryType {
			return ""
		}
		return strconv.Itoa(int(ctx.LogEntryType))
	case "process":
		return strconv.Itoa(ctx.Process)
	case "session":
		return ctx.Session
	case "thread":
		return strconv.FormatUint(ctx.Thread, 10)
	case "timestamp":
		layout := t.opts
		if layout == "" {
			layout = DefaultTimestampLayout
		}
		return ctx.Timestamp.Format(layout)
	case "title":
		return strings.Repeat("  ", ctx.Indent) + ctx.Title
	case "viewerid":
		if !ctx.HasViewerID {
			return ""
		}
		return strconv.Itoa(int(ctx.ViewerID))
	default:
		return t.raw
	}
}

func justify(s string, width int) string {
	if width == 0 {
		return s
	}
	abs := width
	if abs < 0 {
		abs = -abs
	}
	if len(s) >= abs {
		return s
	}
	pad := strings.Repeat(" ", abs-len(s))
	if width > 0 {
		return pad + s
	}
	return s + pad
}
