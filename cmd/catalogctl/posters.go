package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/noah-isme/media-catalog-api/pkg/posters"
	"github.com/noah-isme/media-catalog-api/pkg/storage"
)

func newPostersCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posters",
		Short: "Manage poster artwork",
	}
	cmd.AddCommand(newPostersFetchCommand(ctx))
	return cmd
}

func newPostersFetchCommand(ctx *commandContext) *cobra.Command {
	var manifestFlag, dirFlag string
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download every poster in the manifest, skipping files already present",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			manifestPath := firstNonEmpty(manifestFlag, cfg.Posters.Manifest)
			dir := firstNonEmpty(dirFlag, cfg.Posters.Dir)

			manifest, err := posters.LoadManifest(manifestPath)
			if err != nil {
				return err
			}
			store, err := storage.NewLocalStorage(dir)
			if err != nil {
				return err
			}

			lock := flock.New(filepath.Join(dir, ".fetch.lock"))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire poster lock: %w", err)
			}
			if !locked {
				return errors.New("another poster fetch is already running")
			}
			defer lock.Unlock() //nolint:errcheck

			fetcher := posters.NewFetcher(store, posters.FetcherConfig{
				Timeout:     cfg.Posters.RequestTimeout,
				Concurrency: cfg.Posters.Concurrency,
				Logger:      ctx.logger,
			})
			results, err := fetcher.FetchAll(cmd.Context(), manifest.Posters)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(results))
			for _, r := range results {
				detail := ""
				if r.Err != nil {
					detail = r.Err.Error()
				}
				rows = append(rows, []string{r.Filename, string(r.Outcome), strconv.FormatInt(r.Bytes, 10), detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"File", "Outcome", "Bytes", "Detail"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))

			summary := posters.Summary(results)
			outcomes := make([]string, 0, len(summary))
			for o := range summary {
				outcomes = append(outcomes, string(o))
			}
			sort.Strings(outcomes)
			totals := make([][]string, len(outcomes))
			for i, o := range outcomes {
				totals[i] = []string{o, strconv.Itoa(summary[posters.Outcome(o)])}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Outcome", "Count"}, totals, []columnAlignment{alignLeft, alignRight}))

			if failed := summary[posters.OutcomeFailed]; failed > 0 {
				return fmt.Errorf("%d poster(s) failed to download", failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&manifestFlag, "manifest", "m", "", "Poster manifest (defaults to POSTERS_MANIFEST)")
	cmd.Flags().StringVarP(&dirFlag, "dir", "d", "", "Destination directory (defaults to POSTERS_DIR)")
	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
