package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Out receives all status lines. Commands that speak a protocol on stdout
// point it at stderr.
var Out io.Writer = os.Stdout

var (
	okMark   = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Render("✓")
	errMark  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Render("✗")
	warnMark = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Render("!")
	infoMark = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED")).Render("ℹ")
)

func ShowHeader(title string) {
	rule := strings.Repeat("─", lipgloss.Width(title)+2)
	fmt.Fprintf(Out, " %s\n %s\n %s\n", rule, title, rule)
}

func ShowSuccess(format string, args ...interface{}) {
	fmt.Fprintf(Out, " %s %s\n", okMark, fmt.Sprintf(format, args...))
}

func ShowError(msg string, err error) {
	if err != nil {
		fmt.Fprintf(Out, " %s %s: %v\n", errMark, msg, err)
	} else {
		fmt.Fprintf(Out, " %s %s\n", errMark, msg)
	}
}

func ShowWarning(format string, args ...interface{}) {
	fmt.Fprintf(Out, " %s %s\n", warnMark, fmt.Sprintf(format, args...))
}

func ShowInfo(format string, args ...interface{}) {
	fmt.Fprintf(Out, " %s %s\n", infoMark, fmt.Sprintf(format, args...))
}
