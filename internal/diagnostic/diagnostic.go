// Package diagnostic renders the compiler's tagged error families (§7) as
// human-readable messages with source context, the way a command-line
// shader compiler reports them to a terminal.
package diagnostic

import (
	"fmt"
	"strings"

	"github.com/nzslang/nzslc/internal/lexer"
)

// Severity distinguishes a blocking problem from advisory output.
type Severity uint8

const (
	// Error prevents the pipeline from producing output.
	Error Severity = iota
	// Warning is reported but does not stop compilation.
	Warning
	// Note carries supplementary context for another diagnostic.
	Note
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Note:
		return "note"
	default:
		return "unknown"
	}
}

// Family identifies which stage of the pipeline raised a diagnostic (§7).
type Family string

const (
	FamilyLex        Family = "lex"
	FamilyParse      Family = "parse"
	FamilyResolve    Family = "resolve"
	FamilyConst      Family = "const"
	FamilyValidation Family = "validation"
	FamilyBackend    Family = "backend"
	FamilyIO         Family = "io"
	FamilyModule     Family = "module"
)

// RelatedInfo points at a second location relevant to a diagnostic, such
// as the site of a conflicting prior declaration.
type RelatedInfo struct {
	Loc     lexer.SourceLocation
	Message string
}

// Diagnostic is a single reported problem, tagged with the error family
// that produced it (§7) so callers can filter or group by stage.
type Diagnostic struct {
	Severity Severity
	Family   Family
	Code     string
	Message  string
	Loc      lexer.SourceLocation
	Related  []RelatedInfo
}

// Error satisfies the error interface so a Diagnostic can be returned or
// wrapped directly by callers that don't need the full List machinery.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.Loc.File.Name, d.Loc.StartLine, d.Loc.StartCol, d.Severity, d.Message)
}

// List accumulates diagnostics produced while compiling a single module
// and renders them with the offending source line and a caret, the way
// nzslc reports failures on stderr.
type List struct {
	source string
	items  []Diagnostic
}

// NewList creates an empty diagnostic list against source, used only to
// recover the text of an offending line when formatting.
func NewList(source string) *List {
	return &List{source: source}
}

// Add appends d to the list.
func (l *List) Add(d Diagnostic) {
	l.items = append(l.items, d)
}

// Errorf appends an Error-severity diagnostic in the given family.
func (l *List) Errorf(family Family, loc lexer.SourceLocation, code, format string, args ...interface{}) {
	l.Add(Diagnostic{Severity: Error, Family: family, Code: code, Message: fmt.Sprintf(format, args...), Loc: loc})
}

// Warnf appends a Warning-severity diagnostic in the given family.
func (l *List) Warnf(family Family, loc lexer.SourceLocation, code, format string, args ...interface{}) {
	l.Add(Diagnostic{Severity: Warning, Family: family, Code: code, Message: fmt.Sprintf(format, args...), Loc: loc})
}

// HasErrors reports whether any Error-severity diagnostic was recorded.
func (l *List) HasErrors() bool {
	for _, d := range l.items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Items returns every diagnostic recorded so far, in report order.
func (l *List) Items() []Diagnostic {
	return l.items
}

// Count returns the total number of diagnostics recorded.
func (l *List) Count() int {
	return len(l.items)
}

// Format renders every diagnostic as a multi-line report, one block per
// diagnostic, the way the CLI prints them before exiting non-zero.
func (l *List) Format() string {
	var sb strings.Builder
	for i := range l.items {
		sb.WriteString(l.FormatOne(&l.items[i]))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatOne renders a single diagnostic with a source-line excerpt and a
// caret under the offending column.
func (l *List) FormatOne(d *Diagnostic) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s:%d:%d: %s[%s]: %s\n",
		d.Loc.File.Name, d.Loc.StartLine, d.Loc.StartCol, d.Severity, d.Family, d.Message))

	if line := l.sourceLine(d.Loc.StartLine); line != "" {
		sb.WriteString("    ")
		sb.WriteString(line)
		sb.WriteByte('\n')
		col := d.Loc.StartCol
		if col < 1 {
			col = 1
		}
		sb.WriteString(strings.Repeat(" ", col-1+4))
		sb.WriteByte('^')
		if d.Loc.EndLine == d.Loc.StartLine && d.Loc.EndCol > d.Loc.StartCol+1 {
			sb.WriteString(strings.Repeat("~", d.Loc.EndCol-d.Loc.StartCol-1))
		}
		sb.WriteByte('\n')
	}

	for _, rel := range d.Related {
		sb.WriteString(fmt.Sprintf("  %s:%d:%d: note: %s\n", rel.Loc.File.Name, rel.Loc.StartLine, rel.Loc.StartCol, rel.Message))
	}
	return sb.String()
}

func (l *List) sourceLine(line int) string {
	if line < 1 {
		return ""
	}
	lines := strings.Split(l.source, "\n")
	if line > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[line-1], "\r")
}
