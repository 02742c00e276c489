package cmd

import (
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"

	"github.com/philipparndt/glb2step/internal/config"
)

// renderConvertHelp renders the help text for the convert command with
// lipgloss styling
func renderConvertHelp() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginTop(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("10"))

	commandStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("14"))

	commentStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Italic(true)

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("Examples"))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Convert a single file"))
	b.WriteString("\n")
	b.WriteString("  " + commandStyle.Render("glb2step convert model.glb -o model.step"))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Convert many files concurrently into job workspaces"))
	b.WriteString("\n")
	b.WriteString("  " + commandStyle.Render("glb2step convert -j 8 parts/*.glb"))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Tune the repair passes"))
	b.WriteString("\n")
	b.WriteString("  " + commandStyle.Render("glb2step convert model.glb --component-fraction 0.05 --max-hole-edges 128"))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Exit codes"))
	b.WriteString("\n")
	b.WriteString("  " + commentStyle.Render("0 STEP produced, 1 degraded (STL only), 2 hard failure"))
	b.WriteString("\n")

	return b.String()
}

// printExampleConfig prints the example YAML with syntax highlighting
func printExampleConfig() error {
	return quick.Highlight(os.Stdout, config.Example, "yaml", "terminal256", "monokai")
}
