package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

var (
	helpTitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	helpDescStyle    = lipgloss.NewStyle().Italic(true).Foreground(warnColor)
	helpHeadingStyle = lipgloss.NewStyle().Bold(true).Foreground(warnColor)
	helpNameStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00AA00"))
	helpArgStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00AAAA"))
	helpNoteStyle    = lipgloss.NewStyle().Italic(true).Foreground(mutedColor)
)

// EnvHint describes the environment overrides in the help footer
const EnvHint = "Settings can also be given as CLICKSPLIT_* variables, e.g. CLICKSPLIT_ANALYSIS_MIN_BPM=60"

// generalGroup holds flags that carry no kong group tag
const generalGroup = "Flags"

// helpRow is one line of a help section: the left column and its description
type helpRow struct {
	name string
	help string
	def  string
}

// helpSection is a titled block of rows, rendered with aligned columns
type helpSection struct {
	title string
	style lipgloss.Style
	rows  []helpRow
}

// StyledHelpPrinter returns a kong help printer that renders arguments and
// flags in aligned, coloured columns, with each kong group in its own block.
func StyledHelpPrinter(options kong.HelpOptions) func(options kong.HelpOptions, ctx *kong.Context) error {
	return func(_ kong.HelpOptions, ctx *kong.Context) error {
		writeHelp(ctx.Stdout, ctx.Model.Name, helpSections(ctx.Model.Node))
		return nil
	}
}

func writeHelp(w io.Writer, name string, sections []helpSection) {
	fmt.Fprintln(w, helpTitleStyle.Render("Clicksplit 🥁"))
	fmt.Fprintln(w, helpDescStyle.Render("Split a live multitrack recording into songs and speaking sections using its click track"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, helpHeadingStyle.Render("Usage:"))
	fmt.Fprintf(w, "  %s [flags] <click> [<tracks> ...]\n", name)

	for _, s := range sections {
		if len(s.rows) == 0 {
			continue
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, helpHeadingStyle.Render(s.title+":"))
		for _, line := range renderRows(s.rows, s.style) {
			fmt.Fprintln(w, line)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, helpHeadingStyle.Render("Environment:"))
	fmt.Fprintf(w, "  %s\n\n", helpNoteStyle.Render(EnvHint))
}

// renderRows pads the name column to the widest entry. Padding is applied
// before styling so escape codes do not skew the alignment.
func renderRows(rows []helpRow, style lipgloss.Style) []string {
	width := 0
	for _, r := range rows {
		width = max(width, len(r.name))
	}

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		line := "  " + style.Render(fmt.Sprintf("%-*s", width, r.name))
		if r.help != "" {
			line += "  " + r.help
		}
		if r.def != "" {
			line += " " + helpNoteStyle.Render("(default: "+r.def+")")
		}
		lines = append(lines, strings.TrimRight(line, " "))
	}
	return lines
}

// helpSections splits the node into an arguments block, the ungrouped
// flags, then one block per kong group in declaration order.
func helpSections(node *kong.Node) []helpSection {
	args := helpSection{title: "Arguments", style: helpArgStyle}
	for _, arg := range node.Positional {
		args.rows = append(args.rows, helpRow{name: arg.Summary(), help: arg.Help})
	}

	general := helpSection{title: generalGroup, style: helpNameStyle}
	general.rows = append(general.rows, helpRow{name: "-h, --help", help: "Show context-sensitive help."})

	var grouped []helpSection
	index := map[string]int{}
	for _, f := range node.Flags {
		if f.Name == "help" || f.Hidden {
			continue
		}
		row := flagRow(f)
		if f.Group == nil {
			general.rows = append(general.rows, row)
			continue
		}
		i, ok := index[f.Group.Title]
		if !ok {
			i = len(grouped)
			index[f.Group.Title] = i
			grouped = append(grouped, helpSection{title: f.Group.Title, style: helpNameStyle})
		}
		grouped[i].rows = append(grouped[i].rows, row)
	}

	return append([]helpSection{args, general}, grouped...)
}

func flagRow(f *kong.Flag) helpRow {
	name := "--" + f.Name
	if f.Short != 0 {
		name = fmt.Sprintf("-%c, %s", f.Short, name)
	}
	if !f.IsBool() {
		placeholder := f.PlaceHolder
		if placeholder == "" {
			placeholder = f.Name
		}
		name += "=" + strings.ToUpper(placeholder)
	}
	return helpRow{name: name, help: f.Help, def: f.Default}
}
