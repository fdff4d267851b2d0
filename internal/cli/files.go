package cli

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/mrz1836/forja/internal/domain"
	"github.com/mrz1836/forja/internal/errors"
	"github.com/mrz1836/forja/internal/reconcile"
)

// AddFilesCommand adds the files command to the root command.
func AddFilesCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "List the project files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := openStore(cmd.Context(), GetLogger())
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			files, err := st.LoadFiles(cmd.Context())
			if err != nil {
				return err
			}
			return printFiles(cmd.OutOrStdout(), flags, files)
		},
	}
	root.AddCommand(cmd)
}

func printFiles(w io.Writer, flags *GlobalFlags, files []domain.FileItem) error {
	if flags.JSON() {
		if files == nil {
			files = []domain.FileItem{}
		}
		return writeJSON(w, files)
	}
	if len(files) == 0 {
		_, err := fmt.Fprintln(w, "El proyecto no tiene archivos.")
		return err
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"ID", "Path", "Language", "Size", "Modified"})
	for _, f := range files {
		modified := ""
		if !f.LastModified.IsZero() {
			modified = f.LastModified.Local().Format("2006-01-02 15:04")
		}
		tw.AppendRow(table.Row{f.ID, f.Path, f.Language, len(f.Content), modified})
	}
	tw.Render()
	return nil
}

// AddShowCommand adds the show command to the root command.
func AddShowCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "show <id|path>",
		Short: "Print one project file",
		Long: `Print the content of a project file, looked up by id, path or name.

Examples:
  forja show file-1a2b3c
  forja show /index.html
  forja show styles.css -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd.Context(), GetLogger())
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			files, err := st.LoadFiles(cmd.Context())
			if err != nil {
				return err
			}
			f, err := lookupFile(files, args[0])
			if err != nil {
				return err
			}
			if flags.JSON() {
				return writeJSON(cmd.OutOrStdout(), f)
			}
			_, err = io.WriteString(cmd.OutOrStdout(), f.Content)
			return err
		},
	}
	root.AddCommand(cmd)
}

// lookupFile finds a file by id, normalized path or name, in that order.
func lookupFile(files []domain.FileItem, ref string) (domain.FileItem, error) {
	if i := domain.FindByID(files, ref); i >= 0 {
		return files[i], nil
	}
	path := reconcile.NormalizePath(ref)
	for _, f := range files {
		if f.Path == path {
			return f, nil
		}
	}
	if i := domain.FindByName(files, ref); i >= 0 {
		return files[i], nil
	}
	return domain.FileItem{}, errors.Wrapf(errors.ErrFileNotFound, "%s", ref)
}
