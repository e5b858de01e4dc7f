package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/garyjia/process-reports/internal/application/port"
	"github.com/garyjia/process-reports/internal/application/service"
	"github.com/garyjia/process-reports/internal/domain/entity"
)

func newGenerateCmd(provider appProvider, opts *rootOptions) *cobra.Command {
	var (
		title      string
		processIDs []string
		userID     string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a report and write the PDF to the output directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, provider, opts, func(ctx context.Context, a *app) error {
				result, err := a.Reports.Generate(ctx, service.GenerateRequest{
					Title:       title,
					ProcessIDs:  processIDs,
					RequestedBy: userID,
				})
				if err != nil {
					return err
				}
				if err := a.Storage.Save(ctx, result.Report.Filename, result.PDF); err != nil {
					return fmt.Errorf("failed to write %s: %w", result.Report.Filename, err)
				}
				return printGenerated(cmd.OutOrStdout(), opts, result, a.Storage.GetFullPath(result.Report.Filename))
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "report title (required)")
	cmd.Flags().StringSliceVarP(&processIDs, "process", "p", nil, "process id to include; repeat or comma-separate (required)")
	cmd.Flags().StringVarP(&userID, "user", "u", os.Getenv("USER"), "id of the requesting user")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("process")
	return cmd
}

func newListCmd(provider appProvider, opts *rootOptions) *cobra.Command {
	var filter port.ReportFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored reports, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, provider, opts, func(ctx context.Context, a *app) error {
				reports, err := a.Reports.List(ctx, filter)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return printJSON(cmd.OutOrStdout(), reports)
				}

				tw := newTable(cmd.OutOrStdout())
				tw.AppendHeader(table.Row{"ID", "Title", "Processes", "Created By", "Created At"})
				for _, r := range reports {
					tw.AppendRow(table.Row{r.ID, r.Title, strings.Join(r.ProcessIDs, ","), r.CreatedBy, r.CreatedAt.Format(time.RFC3339)})
				}
				tw.AppendFooter(table.Row{"", "", "", "Total", len(reports)})
				tw.Render()
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&filter.CreatedBy, "created-by", "", "only reports generated by this user")
	cmd.Flags().IntVar(&filter.Limit, "limit", 20, "maximum number of reports")
	cmd.Flags().IntVar(&filter.Offset, "offset", 0, "number of reports to skip")
	return cmd
}

func newShowCmd(provider appProvider, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <report-id>",
		Short: "Show the stored metadata of a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, provider, opts, func(ctx context.Context, a *app) error {
				rec, err := a.Reports.Get(ctx, args[0])
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return printJSON(cmd.OutOrStdout(), rec)
				}
				printRecord(cmd.OutOrStdout(), rec)
				return nil
			})
		},
	}
}

func newDownloadCmd(provider appProvider, opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "download <report-id>",
		Short: "Regenerate a stored report from current data and write it to the output directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "pdf" && format != "xlsx" {
				return fmt.Errorf("unsupported format %q (want pdf or xlsx)", format)
			}

			return withApp(cmd, provider, opts, func(ctx context.Context, a *app) error {
				var filename string
				var data []byte

				if format == "xlsx" {
					export, err := a.Reports.ExportSpreadsheet(ctx, args[0])
					if err != nil {
						return err
					}
					filename, data = export.Filename, export.Data
				} else {
					result, err := a.Reports.Regenerate(ctx, args[0])
					if err != nil {
						return err
					}
					filename, data = result.Report.Filename, result.PDF
				}

				if err := a.Storage.Save(ctx, filename, data); err != nil {
					return fmt.Errorf("failed to write %s: %w", filename, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", a.Storage.GetFullPath(filename), len(data))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "pdf", "output format: pdf or xlsx")
	return cmd
}

func printGenerated(w io.Writer, opts *rootOptions, result *service.GeneratedReport, path string) error {
	if opts.jsonOutput {
		return printJSON(w, struct {
			Report   *entity.Report `json:"report"`
			Path     string         `json:"path"`
			Renderer string         `json:"renderer"`
			Pages    int            `json:"pages"`
			Fallback bool           `json:"fallback"`
		}{result.Report, path, result.Renderer, result.Pages, result.Fallback})
	}

	printRecord(w, result.Report)
	tw := newTable(w)
	tw.AppendRows([]table.Row{
		{"File", path},
		{"Renderer", result.Renderer},
		{"Pages", result.Pages},
		{"Fallback", result.Fallback},
	})
	tw.Render()
	return nil
}

func printRecord(w io.Writer, rec *entity.Report) {
	tw := newTable(w)
	tw.AppendRows([]table.Row{
		{"ID", rec.ID},
		{"Title", rec.Title},
		{"Filename", rec.Filename},
		{"Processes", strings.Join(rec.ProcessIDs, ", ")},
		{"Created By", rec.CreatedBy},
		{"Created At", rec.CreatedAt.Format(time.RFC3339)},
	})
	tw.Render()
}

func newTable(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	return tw
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
