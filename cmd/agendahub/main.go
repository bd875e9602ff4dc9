package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/guilherme-santos/agendahub"
	"github.com/guilherme-santos/agendahub/calendar"
	"github.com/guilherme-santos/agendahub/calendar/google"
	"github.com/guilherme-santos/agendahub/calendar/microsoft"
	"github.com/guilherme-santos/agendahub/internal/agenda"
	"github.com/guilherme-santos/agendahub/internal/authflow"
	"github.com/guilherme-santos/agendahub/internal/config"
	"github.com/guilherme-santos/agendahub/internal/sqlite"
	"github.com/guilherme-santos/agendahub/internal/web"
)

var flags struct {
	ConfigFile string
	Database   string
	Verbose    bool
}

func init() {
	flag.StringVar(&flags.ConfigFile, "config", "agendahub.toml", "configuration file")
	flag.StringVar(&flags.Database, "db", "", "database file (overrides config)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "log provider traffic")
}

func main() {
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt)
		<-ch
		cancel()
	}()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "agendahub:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Read(flags.ConfigFile)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if flags.Database != "" {
		cfg.Database = flags.Database
	}
	if flags.Verbose {
		cfg.Verbose = true
	}

	db, err := sql.Open(sqlite.DriverName, cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	storage := sqlite.NewStorage(db)

	googleCal := google.NewClient(nil)
	googleCal.Verbose = cfg.Verbose
	microsoftCal := microsoft.NewClient(nil)
	microsoftCal.Verbose = cfg.Verbose

	providers := calendar.NewMux()
	providers.Register(agendahub.SourceGoogle, googleCal)
	providers.Register(agendahub.SourceMicrosoft, microsoftCal)

	flows := authflow.NewController(
		authflow.ProviderConfig{ClientID: cfg.Google.ClientID, Scopes: cfg.Google.Scopes},
		authflow.ProviderConfig{ClientID: cfg.Microsoft.ClientID, Scopes: cfg.Microsoft.Scopes},
		cfg.RedirectURI,
	)

	manager := agenda.NewManager(os.Stdout, storage, providers, flows)
	if err := manager.Load(ctx); err != nil {
		return err
	}

	server := &http.Server{
		Addr:    cfg.Listen,
		Handler: web.NewServer(manager, cfg).Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	fmt.Fprintf(os.Stdout, "agendahub listening on http://%s\n", cfg.Listen)
	err = server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
