package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/doualaexpress/deligate/auth/security"
	"github.com/doualaexpress/deligate/core/config"
	"github.com/doualaexpress/deligate/core/database"
	tenantrepo "github.com/doualaexpress/deligate/tenant/repository"
	tenant "github.com/doualaexpress/deligate/tenant/domain"
)

var seedSuperAdminEmail, seedSuperAdminPassword, seedSuperAdminName string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the first super_admin agency",
	Run:   runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().StringVar(&seedSuperAdminEmail, "email", "", "super_admin login email (required)")
	seedCmd.Flags().StringVar(&seedSuperAdminPassword, "password", "", "super_admin login password (required)")
	seedCmd.Flags().StringVar(&seedSuperAdminName, "name", "Super Admin", "super_admin display name")
}

func runSeed(_ *cobra.Command, _ []string) {
	if seedSuperAdminEmail == "" || seedSuperAdminPassword == "" {
		logrus.Fatal("[SEED] --email and --password are required")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("[SEED] failed to load config: %v", err)
	}

	adapter, err := database.Connect(cfg)
	if err != nil {
		logrus.Fatalf("[SEED] failed to connect to database: %v", err)
	}
	defer adapter.Close()

	ctx := context.Background()
	agencyRepo := tenantrepo.NewAgencyRepo(adapter)
	if err := agencyRepo.InitSchema(ctx); err != nil {
		logrus.Fatalf("[SEED] agencies schema: %v", err)
	}

	if existing, err := agencyRepo.GetByEmail(ctx, seedSuperAdminEmail); err == nil && existing != nil {
		logrus.Fatalf("[SEED] an agency with email %s already exists", seedSuperAdminEmail)
	}

	hash, err := security.HashPassword(seedSuperAdminPassword)
	if err != nil {
		logrus.Fatalf("[SEED] failed to hash password: %v", err)
	}

	agency := &tenant.Agency{
		Name:         seedSuperAdminName,
		Email:        seedSuperAdminEmail,
		PasswordHash: hash,
		Role:         tenant.RoleSuperAdmin,
		Active:       true,
	}
	if err := agencyRepo.Create(ctx, agency); err != nil {
		logrus.Fatalf("[SEED] failed to create super_admin agency: %v", err)
	}

	fmt.Printf("created super_admin agency %d (%s)\n", agency.ID, agency.Email)
}
