// Command neverland is the storefront admin console.
//
// It keeps the storefront records in a local cache and mirrors changes to
// the records service while it is reachable. Without arguments it starts an
// interactive console; otherwise the arguments run as a single command.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/and161185/neverland-admin/internal/cache"
	filecache "github.com/and161185/neverland-admin/internal/cache/file"
	"github.com/and161185/neverland-admin/internal/cache/sqlite"
	"github.com/and161185/neverland-admin/internal/config"
	"github.com/and161185/neverland-admin/internal/gateway"
	"github.com/and161185/neverland-admin/internal/logging"
	"github.com/and161185/neverland-admin/internal/store"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	cfg, args, err := config.Load(os.Args[1:], os.Getenv, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		_, _ = os.Stderr.WriteString(helpText)
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if len(args) == 1 && args[0] == "version" {
		fmt.Printf("neverland %s (%s)\n", version, buildDate)
		return
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, args, logger); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, args []string, logger *zap.Logger) error {
	c, err := openCache(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}

	gw, closeGW, err := openGateway(cfg, logger)
	if err != nil {
		_ = c.Close()
		return fmt.Errorf("records service: %w", err)
	}
	defer closeGW()

	st := store.New(ctx, store.Options{
		Gateway:     gw,
		Cache:       c,
		Logger:      logger,
		VoucherSeed: cfg.VoucherSeed,
	})
	defer func() { _ = st.Close() }()

	if gw != nil {
		if _, err := st.RefreshAll(ctx); err != nil {
			logger.Warn("initial refresh", zap.Error(err))
		}
	}

	con := newConsole(st, cfg, os.Stdout)
	if len(args) > 0 {
		err := con.exec(ctx, strings.Join(args, " "))
		if errors.Is(err, errQuit) {
			return nil
		}
		return err
	}
	return con.run(ctx, os.Stdin, term.IsTerminal(int(os.Stdin.Fd())))
}

func openCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	switch cfg.CacheDriver {
	case config.CacheFile:
		return filecache.New(cfg.CachePath)
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.CachePath), 0o700); err != nil {
			return nil, err
		}
		return sqlite.Open(ctx, cfg.CachePath)
	}
}

// openGateway returns a nil gateway in offline mode.
func openGateway(cfg config.Config, logger *zap.Logger) (gateway.Gateway, func(), error) {
	if cfg.Offline {
		return nil, func() {}, nil
	}
	tok, err := cfg.ResolveToken(time.Now())
	if err != nil {
		logger.Warn("no bearer token, the records service will reject calls", zap.Error(err))
	}
	cc, err := gateway.Dial(cfg.Addr, gateway.DialOptions{
		CACert:     cfg.CACert,
		SkipVerify: cfg.Insecure,
		Plaintext:  cfg.Plaintext,
		Token:      tok,
	})
	if err != nil {
		return nil, nil, err
	}
	return gateway.NewGRPC(cc, time.Duration(cfg.Timeout)), func() { _ = cc.Close() }, nil
}
