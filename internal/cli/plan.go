package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mrz1836/forja/internal/domain"
)

// defaultWrap is the markdown wrap width when stdout is not a terminal.
const defaultWrap = 80

// AddPlanCommand adds the plan command to the root command.
func AddPlanCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the latest project plan",
		Long: `Show the plan produced by the last project instruction.

Examples:
  forja plan
  forja plan -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := openStore(cmd.Context(), GetLogger())
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			p, err := st.LoadPlan(cmd.Context())
			if err != nil {
				return err
			}
			return printPlan(cmd.OutOrStdout(), flags, p)
		},
	}
	root.AddCommand(cmd)
}

func printPlan(w io.Writer, flags *GlobalFlags, p *domain.Plan) error {
	if flags.JSON() {
		return writeJSON(w, p)
	}
	if p == nil {
		_, err := fmt.Fprintln(w, "Todavía no hay un plan. Ejecuta `forja run` con una instrucción de proyecto.")
		return err
	}

	md := planMarkdown(p)
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrapWidth()),
	)
	if err != nil {
		_, werr := io.WriteString(w, md)
		return werr
	}
	rendered, err := r.Render(md)
	if err != nil {
		_, werr := io.WriteString(w, md)
		return werr
	}
	_, err = io.WriteString(w, rendered)
	return err
}

// planMarkdown renders a plan as Markdown.
func planMarkdown(p *domain.Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Title)
	if p.Summary != "" {
		fmt.Fprintf(&b, "%s\n\n", p.Summary)
	}
	if len(p.Technologies) > 0 {
		fmt.Fprintf(&b, "**Tecnologías:** %s\n\n", strings.Join(p.Technologies, ", "))
	}
	b.WriteString("## Pasos\n\n")
	for i, s := range p.Steps {
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, s.Title)
		if s.Description != "" {
			fmt.Fprintf(&b, "   %s\n", s.Description)
		}
		if len(s.Files) > 0 {
			quoted := make([]string, len(s.Files))
			for j, f := range s.Files {
				quoted[j] = "`" + f + "`"
			}
			fmt.Fprintf(&b, "   Archivos: %s\n", strings.Join(quoted, ", "))
		}
	}
	return b.String()
}

// wrapWidth returns the terminal width of stdout, or defaultWrap.
func wrapWidth() int {
	if !isTerminal(os.Stdout) {
		return defaultWrap
	}
	width, _, err := term.GetSize(int(os.Stdout.Fd())) //nolint:gosec // fd fits in int
	if err != nil || width <= 0 {
		return defaultWrap
	}
	return width
}
