package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	mdtransform "github.com/LoserCoderLi/markdown-transform"
	"github.com/LoserCoderLi/markdown-transform/internal/logutil"
)

func main() {
	var (
		addr       = pflag.String("addr", "", "listen address (overrides config and env)")
		dataRoot   = pflag.String("data-root", "", "session data directory")
		logDir     = pflag.String("log-dir", "", "rotating log directory")
		configPath = pflag.String("config", "", "optional YAML config file")
		envFile    = pflag.String("env-file", ".env", "env file to load before reading configuration")
	)
	pflag.Parse()

	if _, err := maxprocs.Set(maxprocs.Logger(log.Printf)); err != nil {
		log.Printf("warning: setting GOMAXPROCS: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(*envFile); err != nil {
		log.Printf("warning: loading %s: %v", *envFile, err)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}
	if *addr != "" {
		cfg.Addr = normalizeAddr(*addr)
	}
	if *dataRoot != "" {
		cfg.DataRoot = *dataRoot
	}
	if *logDir != "" {
		cfg.LogDir = *logDir
	}

	for _, dir := range []string{cfg.DataRoot, cfg.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("creating %s: %v", dir, err)
		}
	}

	svc := mdtransform.NewService(cfg.DataRoot, cfg.LogDir)

	sweeper := mdtransform.NewSweeper(cfg.DataRoot, cfg.LogDir, logutil.NewStream(cfg.LogDir, "sweep"))
	sweeper.At = cfg.SweepAt
	sweeper.LogMaxAgeDays = cfg.LogMaxAgeDays
	go sweeper.Run(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(svc, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	case <-ctx.Done():
		log.Println("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}
}
