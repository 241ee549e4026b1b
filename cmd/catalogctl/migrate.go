package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/media-catalog-api/pkg/database"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.ensureDB(cmd.Context())
			if err != nil {
				return err
			}
			if list {
				statuses, err := database.Status(cmd.Context(), db)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Version", "Name", "State", "Applied At"}, migrationRows(statuses), []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft}))
				return nil
			}

			applied, err := database.Migrate(cmd.Context(), db)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")
				return nil
			}
			for _, v := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", v)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "Show the state of each migration without applying them")
	return cmd
}

func migrationRows(statuses []database.MigrationStatus) [][]string {
	rows := make([][]string, len(statuses))
	for i, st := range statuses {
		state, appliedAt := "pending", "-"
		if st.Applied {
			state = "applied"
			appliedAt = st.AppliedAt.UTC().Format(time.RFC3339)
		}
		rows[i] = []string{strconv.FormatInt(st.Version, 10), st.Name, state, appliedAt}
	}
	return rows
}
