package cmd

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/doualaexpress/deligate/core/config"
	"github.com/doualaexpress/deligate/core/database"
	deliveryrepo "github.com/doualaexpress/deligate/delivery/repository"
	tenantrepo "github.com/doualaexpress/deligate/tenant/repository"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Run:   runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(_ *cobra.Command, _ []string) {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("[MIGRATE] failed to load config: %v", err)
	}

	adapter, err := database.Connect(cfg)
	if err != nil {
		logrus.Fatalf("[MIGRATE] failed to connect to database: %v", err)
	}
	defer adapter.Close()

	ctx := context.Background()

	if err := tenantrepo.NewAgencyRepo(adapter).InitSchema(ctx); err != nil {
		logrus.Fatalf("[MIGRATE] agencies schema: %v", err)
	}
	if err := tenantrepo.NewGroupRepo(adapter).InitSchema(ctx); err != nil {
		logrus.Fatalf("[MIGRATE] groups schema: %v", err)
	}
	if err := deliveryrepo.NewSQLRepo(adapter).InitSchema(ctx); err != nil {
		logrus.Fatalf("[MIGRATE] deliveries schema: %v", err)
	}

	logrus.Info("[MIGRATE] schema is up to date")
}
