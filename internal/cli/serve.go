package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/agentboard/internal/adapters/otelmetrics"
	"github.com/emiliopalmerini/agentboard/internal/adapters/sqlite"
	"github.com/emiliopalmerini/agentboard/internal/config"
	"github.com/emiliopalmerini/agentboard/internal/configadapter"
	"github.com/emiliopalmerini/agentboard/internal/database"
	"github.com/emiliopalmerini/agentboard/internal/enrich"
	"github.com/emiliopalmerini/agentboard/internal/hooks"
	"github.com/emiliopalmerini/agentboard/internal/migrate"
	"github.com/emiliopalmerini/agentboard/internal/notify"
	"github.com/emiliopalmerini/agentboard/internal/ports"
	"github.com/emiliopalmerini/agentboard/internal/server"
	"github.com/emiliopalmerini/agentboard/internal/tracker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the session tracking server",
	Long: `Start the local HTTP server that receives hook events and serves the
dashboard API.

Examples:
  agentboard serve                               # Listen on 127.0.0.1:27420
  AGENTBOARD_ADDR=127.0.0.1:9000 agentboard serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	db, err := database.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := migrate.RunAll(ctx, db.DB); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	sessions := sqlite.NewSessionRepository(db.DB)
	events := sqlite.NewEventRepository(db.DB)
	messages := sqlite.NewMessageRepository(db.DB)
	customCLIs := sqlite.NewCustomCLIRepository(db.DB)
	reader := enrich.NewReader()
	notifier := notify.NewNotifier(notify.NewSettingsStore())

	var metrics ports.MetricsRecorder = ports.NoopMetrics{}
	if cfg.OTelEndpoint != "" {
		recorder, err := otelmetrics.NewRecorder(ctx, otelmetrics.Config{
			Endpoint: cfg.OTelEndpoint,
			Insecure: cfg.OTelInsecure,
		}, sessions.CountActive)
		if err != nil {
			return fmt.Errorf("starting metrics exporter: %w", err)
		}
		defer func() {
			if err := recorder.Close(context.Background()); err != nil {
				log.Printf("closing metrics exporter: %v", err)
			}
		}()
		metrics = recorder
	}

	manager := tracker.NewManager(sessions, events, reader, notifier, metrics)

	go manager.RunHeartbeatLoop(ctx, cfg.HeartbeatCheckInterval(), cfg.HeartbeatTimeout())
	go manager.RunRetentionLoop(ctx, cfg.RetentionSweepInterval(), cfg.Retention())

	factory, err := configadapter.NewFactory()
	if err != nil {
		return err
	}
	installer, err := hooks.NewInstaller(fmt.Sprintf("http://%s/api/event", cfg.Addr))
	if err != nil {
		return err
	}
	registry, err := configadapter.NewRegistry(factory, installer.Installed)
	if err != nil {
		return err
	}

	handler := server.NewHandler(manager, messages, customCLIs, reader, registry, factory, notifier)
	httpSrv := server.NewHTTPServer(cfg.Addr, handler)

	go func() {
		log.Printf("agentboard listening on %s", cfg.Addr)
		if err := httpSrv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	return httpSrv.Shutdown(shutdownCtx)
}
