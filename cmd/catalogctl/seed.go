package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/noah-isme/media-catalog-api/internal/repository"
	"github.com/noah-isme/media-catalog-api/internal/seed"
	"github.com/noah-isme/media-catalog-api/pkg/database"
)

func newSeedCommand(ctx *commandContext) *cobra.Command {
	var file string
	var migrate bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo users, content, requests, subscriptions and viewership",
		RunE: func(cmd *cobra.Command, args []string) error {
			fixture, err := seed.Load(file)
			if err != nil {
				return err
			}
			db, err := ctx.ensureDB(cmd.Context())
			if err != nil {
				return err
			}
			if migrate {
				if _, err := database.Migrate(cmd.Context(), db); err != nil {
					return err
				}
			}

			seeder := seed.New(seed.Stores{
				Users:         repository.NewUserRepository(db),
				Content:       repository.NewContentRepository(db),
				Requests:      repository.NewContentRequestRepository(db),
				Subscriptions: repository.NewSubscriptionRepository(db),
				Viewership:    repository.NewViewershipRepository(db),
			}, ctx.logger)
			sum, err := seeder.Run(cmd.Context(), fixture)
			if err != nil {
				return err
			}

			rows := [][]string{
				{"users", strconv.Itoa(sum.Users)},
				{"content", strconv.Itoa(sum.Content)},
				{"content requests", strconv.Itoa(sum.ContentRequests)},
				{"subscriptions", strconv.Itoa(sum.Subscriptions)},
				{"viewership", strconv.Itoa(sum.Viewership)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Entity", "Created"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "configs/seed.yaml", "Seed fixture path")
	cmd.Flags().BoolVar(&migrate, "migrate", true, "Apply migrations before seeding")
	return cmd
}
