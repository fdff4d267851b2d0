package cli

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/mrz1836/forja/internal/domain"
	"github.com/mrz1836/forja/internal/textutil"
)

// errorColumnWidth bounds the error text shown in the task table.
const errorColumnWidth = 48

// AddTasksCommand adds the tasks command to the root command.
func AddTasksCommand(root *cobra.Command, flags *GlobalFlags) {
	var limit int
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List the task history",
		Long: `List agent tasks, oldest first.

Examples:
  forja tasks
  forja tasks --limit 10
  forja tasks -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := openStore(cmd.Context(), GetLogger())
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			tasks, err := st.ListTasks(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printTasks(cmd.OutOrStdout(), flags, tasks)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show only the N most recent tasks")
	root.AddCommand(cmd)
}

func printTasks(w io.Writer, flags *GlobalFlags, tasks []*domain.AgentTask) error {
	if flags.JSON() {
		if tasks == nil {
			tasks = []*domain.AgentTask{}
		}
		return writeJSON(w, tasks)
	}
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "Todavía no hay tareas.")
		return err
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"ID", "Agent", "Status", "Started", "Duration", "Error"})
	for _, t := range tasks {
		tw.AppendRow(table.Row{
			t.ID,
			t.Type.AgentName(),
			statusIcon(t.Status) + " " + string(t.Status),
			t.StartTime.Local().Format("2006-01-02 15:04:05"),
			taskDuration(t),
			textutil.Truncate(t.Error, errorColumnWidth),
		})
	}
	tw.Render()
	return nil
}
