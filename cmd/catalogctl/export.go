package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/noah-isme/media-catalog-api/internal/models"
	"github.com/noah-isme/media-catalog-api/internal/service"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var format, outDir string
	cmd := &cobra.Command{
		Use:       "export <content-requests|bugs|content|viewership>",
		Short:     "Write a CSV or PDF export of an entity to disk",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"content-requests", "bugs", "content", "viewership"},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.readServices(cmd.Context())
			if err != nil {
				return err
			}

			var file *service.ExportFile
			switch args[0] {
			case "content-requests":
				file, err = svc.exports.ContentRequests(cmd.Context(), operatorActor, format, models.ContentRequestFilter{}, service.ListQuery{})
			case "bugs":
				file, err = svc.exports.Bugs(cmd.Context(), operatorActor, format, models.BugFilter{}, service.ListQuery{})
			case "content":
				file, err = svc.exports.Content(cmd.Context(), format, models.ContentFilter{}, service.ListQuery{})
			case "viewership":
				file, err = svc.exports.Viewership(cmd.Context(), operatorActor, format)
			}
			if err != nil {
				return err
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			target := filepath.Join(outDir, file.Filename)
			if err := os.WriteFile(target, file.Body, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", target, len(file.Body))
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", service.FormatCSV, "csv or pdf")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory")
	return cmd
}
