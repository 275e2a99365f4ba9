package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/devco/docmerge/internal/server"
)

// sweeper is the part of the merger the background loop needs.
type sweeper interface {
	SweepOrphans(ctx context.Context) (int, error)
}

// runServe starts the HTTP API and, when an interval is configured, the
// periodic orphan sweep. It returns when ctx is canceled.
func runServe(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: serve takes no arguments", ErrUsage)
	}

	sess, err := openSession(&f.common, &f.store, env)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	cfg := sess.cfg
	f.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	srv := server.New(sess.merger,
		server.WithLogger(sess.log),
		server.WithTimeout(cfg.Server.Timeout),
		server.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		server.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		server.WithVersion(Version),
	)

	sess.log.Info().
		Str("backend", cfg.Store.Backend).
		Str("version", Version).
		Dur("sweep_interval", cfg.Server.SweepInterval).
		Msg("starting docmerge server")

	g, gctx := errgroup.WithContext(ctx)
	gctx, stop := context.WithCancel(gctx)
	g.Go(func() error {
		defer stop()
		return srv.Run(gctx, cfg.Server.Addr)
	})
	if cfg.Server.SweepInterval > 0 {
		g.Go(func() error {
			sweepLoop(gctx, sess.merger, cfg.Server.SweepInterval, sess.log)
			return nil
		})
	}
	return g.Wait()
}

// sweepLoop calls SweepOrphans every interval until ctx is canceled.
// Failures are logged; the next tick retries.
func sweepLoop(ctx context.Context, s sweeper, interval time.Duration, log zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		deleted, err := s.SweepOrphans(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Msg("orphan sweep failed")
			continue
		}
		log.Debug().Int("deleted", deleted).Msg("orphan sweep finished")
	}
}
