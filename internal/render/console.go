package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Divider separates the run log from the printed report.
var Divider = strings.Repeat("=", 60)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	headingStyle = lipgloss.NewStyle().Bold(true)
	bulletStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// Console prints a Markdown report under a banner. With color enabled the
// headings, bullets and footer are styled.
type Console struct {
	out   io.Writer
	color bool
}

// NewConsole creates a Console writing to out.
func NewConsole(out io.Writer, color bool) *Console {
	return &Console{out: out, color: color}
}

// Report prints the banner followed by markdown.
func (c *Console) Report(title, markdown string) {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, c.style(mutedStyle, Divider))
	fmt.Fprintln(c.out, c.style(titleStyle, title))
	fmt.Fprintln(c.out, c.style(mutedStyle, Divider))

	for _, line := range strings.Split(markdown, "\n") {
		fmt.Fprintln(c.out, c.styleLine(line))
	}
}

// Line prints one plain line.
func (c *Console) Line(format string, args ...any) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

// Warn prints one highlighted line.
func (c *Console) Warn(format string, args ...any) {
	fmt.Fprintln(c.out, c.style(warnStyle, fmt.Sprintf(format, args...)))
}

func (c *Console) styleLine(line string) string {
	if !c.color {
		return line
	}
	switch {
	case strings.HasPrefix(line, "# "):
		return titleStyle.Render(line)
	case strings.HasPrefix(line, "## "):
		return headingStyle.Render(line)
	case strings.HasPrefix(line, "• "):
		return bulletStyle.Render("•") + strings.TrimPrefix(line, "•")
	case line == "---", strings.HasPrefix(line, "*") && strings.HasSuffix(line, "*") && !strings.HasPrefix(line, "**"):
		return mutedStyle.Render(line)
	}
	return line
}

func (c *Console) style(s lipgloss.Style, text string) string {
	if !c.color {
		return text
	}
	return s.Render(text)
}
