package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"docworker/internal/domain"
	"docworker/internal/export"
	"docworker/internal/service"
)

func newUploadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload FILE...",
		Short: "Upload files and queue them for processing",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				doc, err := uploadFile(cmd, a, path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				fmt.Fprintf(a.out, "%s\t%s\n", doc.ID, doc.OriginalFilename)
			}
			return nil
		},
	}
}

func uploadFile(cmd *cobra.Command, a *app, path string) (*domain.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	return a.svc.Upload(cmd.Context(), service.UploadInput{
		Filename: filepath.Base(path),
		Body:     f,
		Size:     info.Size(),
	})
}

func newListCmd(a *app) *cobra.Command {
	var (
		status string
		limit  int
		offset int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, total, err := a.svc.List(cmd.Context(), domain.DocumentStatus(status), offset, limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(a, map[string]any{"documents": docs, "total": total})
			}

			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSTATUS\tFILENAME\tCREATED\tERROR")
			for i := range docs {
				d := &docs[i]
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					d.ID, d.Status, d.OriginalFilename, d.CreatedAt.Format(time.RFC3339), truncate(d.ProcessingError, 60))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%d of %d\n", len(docs), total)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status (pending, processing, completed, error)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum rows")
	cmd.Flags().IntVar(&offset, "offset", 0, "rows to skip")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Print a document, including its text and summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid document id: %w", err)
			}
			doc, err := a.svc.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return writeJSON(a, doc)
		},
	}
}

func newRequeueCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "requeue ID...",
		Short: "Move errored or stuck documents back to pending",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				id, err := uuid.Parse(arg)
				if err != nil {
					return fmt.Errorf("invalid document id %q: %w", arg, err)
				}
				if err := a.svc.Requeue(cmd.Context(), id); err != nil {
					return fmt.Errorf("%s: %w", id, err)
				}
				fmt.Fprintf(a.out, "requeued %s\n", id)
			}
			return nil
		},
	}
}

func newResummarizeCmd(a *app) *cobra.Command {
	var (
		prompt string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "resummarize ID",
		Short: "Regenerate the summary of a completed document",
		Long:  "Regenerate the summary of a completed document from its stored text.\n" +
			"--prompt replaces the default summary instruction.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid document id: %w", err)
			}
			doc, err := a.svc.Resummarize(cmd.Context(), id, prompt)
			if err != nil {
				return fmt.Errorf("%s: %w", id, err)
			}
			if asJSON {
				return writeJSON(a, doc)
			}
			fmt.Fprintln(a.out, *doc.Summary)
			return nil
		},
	}
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "summary instruction, e.g. \"three bullet points\"")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the updated document as JSON")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete documents and their blobs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				id, err := uuid.Parse(arg)
				if err != nil {
					return fmt.Errorf("invalid document id %q: %w", arg, err)
				}
				if err := a.svc.Delete(cmd.Context(), id); err != nil {
					return fmt.Errorf("%s: %w", id, err)
				}
				fmt.Fprintf(a.out, "deleted %s\n", id)
			}
			return nil
		},
	}
}

func newBlobsCmd(a *app) *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "blobs",
		Short: "List objects in the document bucket",
		RunE: func(cmd *cobra.Command, args []string) error {
			objects, err := a.svc.ListBlobs(cmd.Context(), prefix)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tSIZE\tLAST MODIFIED")
			for _, o := range objects {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", o.Key, o.Size, o.LastModified.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "only list keys with this prefix")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var (
		format string
		out    string
		status string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export documents as CSV or XLSX",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := export.Format(format)
			if f != export.FormatCSV && f != export.FormatXLSX {
				return fmt.Errorf("unsupported export format %q", format)
			}
			if out == "" {
				out = export.BuildFilename("documents", f, time.Now())
			}

			file, err := os.Create(out)
			if err != nil {
				return err
			}
			n, err := a.svc.Export(cmd.Context(), file, f, domain.DocumentStatus(status))
			if cerr := file.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				_ = os.Remove(out)
				return err
			}

			fmt.Fprintf(a.out, "wrote %d documents to %s\n", n, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", string(export.FormatCSV), "csv or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (default: generated from the date)")
	cmd.Flags().StringVar(&status, "status", "", "only export documents with this status")
	return cmd
}

func writeJSON(a *app, v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
