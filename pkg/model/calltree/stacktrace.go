package calltree

import (
	"strconv"
	"strings"
)

// StackFrame is one line of a reconstructed stack trace.
type StackFrame struct {
	Name string
	File string
	Line int
	Col  int
}

// Position returns "file:line:col", omitting unknown parts. It is empty if
// the file is unknown.
func (s StackFrame) Position() string {
	if s.File == "" {
		return ""
	}
	pos := s.File
	if s.Line != 0 {
		pos += ":" + strconv.Itoa(s.Line)
		if s.Col != 0 {
			pos += ":" + strconv.Itoa(s.Col)
		}
	}
	return pos
}

func (s StackFrame) String() string {
	if pos := s.Position(); pos != "" {
		return s.Name + " (" + pos + ")"
	}
	return s.Name
}

// StackTrace walks from node up to, but excluding, the root. The leaf comes
// first.
func StackTrace(node Node) []StackFrame {
	var trace []StackFrame
	for n := node; n.Valid() && !n.IsRoot(); n = n.Parent() {
		f := n.Frame()
		trace = append(trace, StackFrame{Name: f.Name, File: f.File, Line: f.Line, Col: f.Col})
	}
	return trace
}

// FormatStackTrace renders a trace one frame per line, callers prefixed
// with "> ".
func FormatStackTrace(trace []StackFrame) string {
	var sb strings.Builder
	for i, f := range trace {
		if i > 0 {
			sb.WriteString("\n> ")
		}
		sb.WriteString(f.String())
	}
	return sb.String()
}
