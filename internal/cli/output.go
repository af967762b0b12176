package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"
)

const rule = "----------------------------------------"

const banner = "========================================"

// palette colors terminal output. The zero value prints plain text.
type palette struct {
	enabled bool
}

var (
	styleTitle  = color.New(color.FgCyan)
	styleUser   = color.New(color.FgGreen)
	styleNotice = color.New(color.FgYellow)
	styleError  = color.New(color.FgRed)
	styleAI     = color.New(color.FgBlue)
)

func (p palette) paint(s color.Style, text string) string {
	if !p.enabled {
		return text
	}
	return s.Render(text)
}

func (p palette) title(text string) string  { return p.paint(styleTitle, text) }
func (p palette) user(text string) string   { return p.paint(styleUser, text) }
func (p palette) notice(text string) string { return p.paint(styleNotice, text) }
func (p palette) alert(text string) string  { return p.paint(styleError, text) }
func (p palette) ai(text string) string     { return p.paint(styleAI, text) }

func (p palette) printHeader(w io.Writer, languages []string, debug bool) {
	fmt.Fprintln(w, p.title(banner))
	fmt.Fprintln(w, p.title("   Multi-Language Agent Chat CLI"))
	fmt.Fprintln(w, p.title(banner))
	fmt.Fprintln(w, p.user("Supported languages: "+strings.Join(languages, ", ")))
	fmt.Fprintln(w, p.notice("Type 'exit', 'quit', or press Ctrl+C to exit"))
	if debug {
		fmt.Fprintln(w, p.alert("DEBUG MODE ENABLED"))
	}
	fmt.Fprintln(w, p.title(banner))
}

func (p palette) printRule(w io.Writer) {
	fmt.Fprintln(w, p.title(rule))
}

func (p palette) printDebug(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, p.alert("[DEBUG] "+fmt.Sprintf(format, args...)))
}

// printError reports err on w. Configuration errors carry remediation steps.
func (p palette) printError(w io.Writer, msg string, hint []string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, p.alert("Error: "+msg))
	if len(hint) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, p.notice("To fix this issue:"))
	for i, step := range hint {
		fmt.Fprintln(w, p.notice(fmt.Sprintf("%d. %s", i+1, step)))
	}
}
