package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/store/sqlstore"
	waLog "go.mau.fi/whatsmeow/util/log"

	authapp "github.com/doualaexpress/deligate/auth/application"
	authinfra "github.com/doualaexpress/deligate/auth/infrastructure"
	"github.com/doualaexpress/deligate/auth/security"
	"github.com/doualaexpress/deligate/core/config"
	"github.com/doualaexpress/deligate/core/database"
	deliveryapp "github.com/doualaexpress/deligate/delivery/application"
	deliveryrepo "github.com/doualaexpress/deligate/delivery/repository"
	"github.com/doualaexpress/deligate/ingestion/pipeline"
	"github.com/doualaexpress/deligate/ingestion/resolver"
	"github.com/doualaexpress/deligate/pkg/msgworker"
	"github.com/doualaexpress/deligate/pkg/timeutils"
	"github.com/doualaexpress/deligate/reports"
	tenantapp "github.com/doualaexpress/deligate/tenant/application"
	tenantrepo "github.com/doualaexpress/deligate/tenant/repository"
	rest "github.com/doualaexpress/deligate/ui/rest"
	"github.com/doualaexpress/deligate/whatsapp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the WhatsApp listener, the scheduled-report task and the HTTP API",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("[SERVE] failed to load config: %v", err)
	}
	loc := timeutils.MustLoadLocation(cfg.App.TimeZone)

	adapter, err := database.Connect(cfg)
	if err != nil {
		logrus.Fatalf("[SERVE] failed to connect to database: %v", err)
	}
	defer adapter.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	agencyRepo := tenantrepo.NewAgencyRepo(adapter)
	groupRepo := tenantrepo.NewGroupRepo(adapter)
	deliveryRepo := deliveryrepo.NewSQLRepo(adapter)
	if err := agencyRepo.InitSchema(ctx); err != nil {
		logrus.Fatalf("[SERVE] agencies schema: %v", err)
	}
	if err := groupRepo.InitSchema(ctx); err != nil {
		logrus.Fatalf("[SERVE] groups schema: %v", err)
	}
	if err := deliveryRepo.InitSchema(ctx); err != nil {
		logrus.Fatalf("[SERVE] deliveries schema: %v", err)
	}

	deliveries := deliveryapp.NewService(deliveryRepo)
	router := tenantapp.NewService(agencyRepo, groupRepo, cfg.Auth.DefaultAgency, cfg.Ingestion.GroupIDFilter)
	updateResolver := resolver.New(deliveries)
	issuer := security.NewTokenIssuer(cfg.Auth.JWTSecret, mustParseDuration(cfg.Auth.JWTExpiresIn))

	blocklist := newBlocklist(cfg)
	authService := authapp.NewService(agencyRepo, router, issuer, blocklist)

	whatsmeowClient := connectWhatsmeow(ctx, cfg)
	outbound := whatsapp.NewOutboundSender(whatsmeowClient)

	ingestionPipeline := pipeline.New(router, deliveries, updateResolver, outbound, cfg.Ingestion.SendConfirmations)

	pool := msgworker.New(cfg.Ingestion.WorkerPoolSize, cfg.Ingestion.WorkerQueueSize)
	pool.Start(ctx)
	defer pool.Stop()

	listener := whatsapp.NewListener(whatsmeowClient, pool, ingestionPipeline)
	listener.Register()

	if whatsmeowClient.Store.ID == nil {
		qrChan, _ := whatsmeowClient.GetQRChannel(ctx)
		if err := whatsmeowClient.Connect(); err != nil {
			logrus.Fatalf("[SERVE] failed to connect whatsapp client: %v", err)
		}
		go func() {
			for evt := range qrChan {
				if evt.Event == "code" {
					logrus.Infof("[WHATSAPP] scan this QR code to link the account:\n%s", evt.Code)
				} else {
					logrus.Infof("[WHATSAPP] login event: %s", evt.Event)
				}
			}
		}()
	} else if err := whatsmeowClient.Connect(); err != nil {
		logrus.Fatalf("[SERVE] failed to connect whatsapp client: %v", err)
	}
	defer whatsmeowClient.Disconnect()

	scheduler := reports.New(deliveries, agencyRepo, groupRepo, outbound, loc, cfg.Report.Time, cfg.Report.Enabled)
	go scheduler.Run(ctx)

	app := rest.NewApp(rest.Deps{
		Config:     cfg,
		Location:   loc,
		Agencies:   agencyRepo,
		Groups:     groupRepo,
		Deliveries: deliveries,
		Auth:       authService,
		Issuer:     issuer,
		Blocklist:  blocklist,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[SERVE] reception of termination signal, shutting down gracefully...")
		cancel()
		if err := app.Shutdown(); err != nil {
			logrus.Errorf("[SERVE] error during fiber shutdown: %v", err)
		}
	}()

	logrus.Infof("[SERVE] listening on :%s", cfg.App.Port)
	if err := app.Listen(":" + cfg.App.Port); err != nil {
		logrus.Fatalf("[SERVE] failed to start: %v", err)
	}
}

func newBlocklist(cfg *config.Config) authinfra.Blocklist {
	if !cfg.Cache.ValkeyEnabled {
		return authinfra.NewMemoryBlocklist()
	}
	client, err := authinfra.NewValkeyClient(authinfra.ValkeyConfig{
		Address:        cfg.Cache.ValkeyAddress,
		Password:       cfg.Cache.ValkeyPassword,
		DB:             cfg.Cache.ValkeyDB,
		KeyPrefix:      cfg.Cache.ValkeyPrefix,
		ConnectTimeout: authinfra.DefaultConnectTimeout,
	})
	if err != nil {
		logrus.WithError(err).Warn("[SERVE] failed to connect to valkey, falling back to in-memory blocklist")
		return authinfra.NewMemoryBlocklist()
	}
	return authinfra.NewValkeyBlocklist(client)
}

// connectWhatsmeow opens the single device session this process drives, one
// sqlite file per CLIENT_ID so multiple deployments never share a session.
func connectWhatsmeow(ctx context.Context, cfg *config.Config) *whatsmeow.Client {
	if err := os.MkdirAll("storages", 0o755); err != nil {
		logrus.Fatalf("[SERVE] failed to create storage dir: %v", err)
	}
	dbPath := fmt.Sprintf("storages/whatsapp-%s.db?_foreign_keys=on", cfg.Whatsapp.ClientID)
	dbLog := waLog.Stdout("WADB", "INFO", true)

	container, err := sqlstore.New(ctx, "sqlite3", "file:"+dbPath, dbLog)
	if err != nil {
		logrus.Fatalf("[SERVE] failed to init whatsapp session store: %v", err)
	}
	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		logrus.Fatalf("[SERVE] failed to get whatsapp device: %v", err)
	}
	if device == nil {
		device = container.NewDevice()
	}

	clientLog := waLog.Stdout("WACLIENT", "INFO", true)
	client := whatsmeow.NewClient(device, clientLog)
	client.EnableAutoReconnect = true
	client.AutoTrustIdentity = true
	return client
}

func mustParseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		logrus.Fatalf("[SERVE] invalid JWT_EXPIRES_IN %q: %v", s, err)
	}
	return d
}
