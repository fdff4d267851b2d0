package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/forja/internal/constants"
	"github.com/mrz1836/forja/internal/domain"
	"github.com/mrz1836/forja/internal/errors"
	"github.com/mrz1836/forja/internal/orchestrator"
	"github.com/mrz1836/forja/internal/signal"
)

// runFlags holds flags for the run command.
type runFlags struct {
	target string
	intent string
}

// AddRunCommand adds the run command to the root command.
func AddRunCommand(root *cobra.Command, flags *GlobalFlags) {
	rf := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run <instruction...>",
		Short: "Run an instruction against the project",
		Long: `Run a natural-language instruction through the agent pipeline.

The instruction is classified (project, correction, style, modify or
generate) and the matching agents run in order. Files are reconciled into
the project and saved to .forja/forja.db.

Examples:
  forja run "crea un sitio web para una cafetería"
  forja run --target file-1a2b "corrige los errores"
  forja run --intent style "usa una paleta verde"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstruction(cmd, flags, rf, strings.Join(args, " "))
		},
	}
	cmd.Flags().StringVarP(&rf.target, "target", "t", "", "id of the file to modify or correct")
	cmd.Flags().StringVar(&rf.intent, "intent", "", "force the intent instead of classifying the text")
	root.AddCommand(cmd)
}

func runInstruction(cmd *cobra.Command, flags *GlobalFlags, rf *runFlags, text string) error {
	in := orchestrator.Instruction{
		Text:         text,
		TargetFileID: rf.target,
		Intent:       orchestrator.Intent(rf.intent),
	}
	if in.Intent != "" && !in.Intent.IsValid() {
		return errors.Wrapf(errors.ErrInvalidIntent, "%q (valid: %v)", rf.intent, orchestrator.Intents())
	}

	h := signal.NewHandler(cmd.Context())
	defer h.Stop()
	ctx := h.Context()

	w := cmd.OutOrStdout()
	st := newStyles()
	opts := appOptions{}
	if !flags.JSON() && !flags.Quiet {
		opts.sink = &progressPrinter{w: w, st: st}
	}

	a, err := newApp(ctx, GetLogger(), opts)
	if err != nil {
		return err
	}
	defer a.close()

	out, err := a.orch.Submit(ctx, in)
	if err != nil && out == nil {
		return err
	}

	if flags.JSON() {
		if jerr := writeJSON(w, out); jerr != nil {
			return jerr
		}
	} else {
		printOutcome(w, st, out)
	}
	if err != nil {
		return err
	}
	if !out.Succeeded() {
		return errors.ErrInstructionFailed
	}
	return nil
}

// progressPrinter streams progress and AI chat messages while a flow runs.
type progressPrinter struct {
	w  io.Writer
	st *styles
	mu sync.Mutex
}

func (p *progressPrinter) Progress(ev domain.ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	agent := ev.AgentName
	if agent == "" {
		agent = ev.Stage
	}
	_, _ = fmt.Fprintf(p.w, "%s %s %s\n",
		p.st.dim.Render(fmt.Sprintf("[%3d%%]", ev.Percent)),
		p.st.agent.Render(agent),
		ev.Message)
}

func (p *progressPrinter) Message(msg domain.ChatMessage) {
	if msg.Sender == constants.SenderUser {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(p.w, "       %s\n", p.st.message(msg.Type).Render(msg.Content))
}

// printOutcome prints the task summary and the resulting file list.
func printOutcome(w io.Writer, st *styles, out *orchestrator.Outcome) {
	_, _ = fmt.Fprintf(w, "\n%s %s\n", st.header.Render("Instrucción:"), out.Intent)
	for _, t := range out.Tasks {
		line := fmt.Sprintf("%s %-18s %-10s %s", statusIcon(t.Status), t.Type.AgentName(), t.Status, taskDuration(t))
		_, _ = fmt.Fprintln(w, st.status(t.Status).Render(line))
		if t.Error != "" {
			_, _ = fmt.Fprintf(w, "    %s\n", st.failure.Render(t.Error))
		}
	}

	if len(out.Files) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "\n%s\n", st.header.Render("Archivos:"))
	for _, f := range out.Files {
		marker := " "
		switch {
		case f.IsNew:
			marker = st.success.Render("+")
		case f.IsModified:
			marker = st.warning.Render("~")
		}
		_, _ = fmt.Fprintf(w, "  %s %s %s\n", marker, f.Path, st.dim.Render(f.ID))
	}
}

// taskDuration formats how long a finished task took.
func taskDuration(t *domain.AgentTask) string {
	if t.EndTime == nil {
		return ""
	}
	return t.EndTime.Sub(t.StartTime).Round(time.Millisecond).String()
}
