package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/scholarstream/escrow/app/services/escrow/handlers"
	"github.com/scholarstream/escrow/business/core/escrow"
	"github.com/scholarstream/escrow/business/sys/metrics"
	"github.com/scholarstream/escrow/foundation/escrow/auth"
	"github.com/scholarstream/escrow/foundation/escrow/database"
	"github.com/scholarstream/escrow/foundation/escrow/database/storage/leveldb"
	"github.com/scholarstream/escrow/foundation/escrow/database/storage/memory"
	"github.com/scholarstream/escrow/foundation/escrow/progress"
	"github.com/scholarstream/escrow/foundation/escrow/state"
	"github.com/scholarstream/escrow/foundation/escrow/token"
	"github.com/scholarstream/escrow/foundation/events"
	"github.com/scholarstream/escrow/foundation/logger"
	"github.com/scholarstream/escrow/foundation/nameservice"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ESCROW")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			APIHost         string        `conf:"default:0.0.0.0:8080"`
			CORSOrigin      string        `conf:"default:*"`
		}
		DB struct {
			Backend string `conf:"default:leveldb,help:memory or leveldb"`
			Path    string `conf:"default:zescrow/"`
		}
		Escrow struct {
			RejectNonPositiveDeposits bool `conf:"default:false"`
			CapDepositsAtTotal        bool `conf:"default:false"`
		}
		Token struct {
			Admin  string `conf:"help:account or name of the token admin"`
			Name   string `conf:"default:Scholarship Token"`
			Symbol string `conf:"default:SCH"`
		}
		NameService struct {
			Folder string `conf:"default:zescrow/accounts/"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "scholarship milestone escrow",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "ESCROW"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Name Service Support

	// The names come from the key file names in the accounts folder.
	ns, err := nameservice.New(cfg.NameService.Folder)
	if err != nil {
		return fmt.Errorf("unable to load account name service: %w", err)
	}

	for account, name := range ns.Copy() {
		log.Infow("startup", "status", "nameservice", "name", name, "account", account)
	}

	// =========================================================================
	// Escrow Support

	// The escrow packages accept a function of this signature to allow the
	// application to log. These raw messages are also sent to any websocket
	// client that is connected through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.SendLine(s)
	}

	escrowStore, err := openStorage(cfg.DB.Backend, cfg.DB.Path, "escrow")
	if err != nil {
		return err
	}

	st, err := state.New(state.Config{
		Storage: escrowStore,
		Oracle:  auth.Signer{},
		Policy: state.Policy{
			RejectNonPositiveDeposits: cfg.Escrow.RejectNonPositiveDeposits,
			CapDepositsAtTotal:        cfg.Escrow.CapDepositsAtTotal,
		},
		EvHandler: ev,
	})
	if err != nil {
		return err
	}
	defer st.Shutdown()

	tokenStore, err := openStorage(cfg.DB.Backend, cfg.DB.Path, "token")
	if err != nil {
		return err
	}

	tk, err := token.New(token.Config{
		Storage:   tokenStore,
		Oracle:    auth.Signer{},
		EvHandler: ev,
	})
	if err != nil {
		return err
	}
	defer tk.Close()

	if cfg.Token.Admin != "" {
		admin, err := ns.Resolve(cfg.Token.Admin)
		if err != nil {
			return fmt.Errorf("resolving token admin: %w", err)
		}

		switch err := tk.Initialize(admin, cfg.Token.Name, cfg.Token.Symbol); {
		case errors.Is(err, token.ErrAlreadyInitialized):
			log.Infow("startup", "status", "token already initialized")
		case err != nil:
			return fmt.Errorf("initializing token: %w", err)
		}
	}

	progressStore, err := openStorage(cfg.DB.Backend, cfg.DB.Path, "progress")
	if err != nil {
		return err
	}

	pg, err := progress.New(progress.Config{
		Storage:   progressStore,
		EvHandler: ev,
	})
	if err != nil {
		return err
	}
	defer pg.Close()

	core := escrow.NewCore(st, tk, pg)

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	m := metrics.New("escrow")
	debugMux := handlers.DebugMux(build, log, m, core)

	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start API Service

	log.Infow("startup", "status", "initializing V1 API support")

	apiMux := handlers.APIMux(handlers.MuxConfig{
		Build:    build,
		Shutdown: shutdown,
		Log:      log,
		Metrics:  m,
		Core:     core,
		NS:       ns,
		Evts:     evts,
		Origin:   cfg.Web.CORSOrigin,
	})

	api := http.Server{
		Addr:         cfg.Web.APIHost,
		Handler:      apiMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	go func() {
		log.Infow("startup", "status", "api router started", "host", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

// openStorage constructs the storage backend for one of the ledgers. Each
// ledger gets its own leveldb folder under the configured path.
func openStorage(backend string, path string, name string) (database.Storage, error) {
	switch backend {
	case "memory":
		s, err := memory.New()
		if err != nil {
			return nil, err
		}
		return s, nil

	case "leveldb":
		s, err := leveldb.New(filepath.Join(path, name))
		if err != nil {
			return nil, fmt.Errorf("opening %s storage: %w", name, err)
		}
		return s, nil
	}

	return nil, fmt.Errorf("unknown storage backend %q", backend)
}
