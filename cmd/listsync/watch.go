package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dshills/listsync/internal/metrics"
	"github.com/dshills/listsync/internal/source"
	"github.com/dshills/listsync/internal/store"
	"github.com/dshills/listsync/internal/tracking"
	"github.com/dshills/listsync/internal/watch"
)

func newWatchCmd(c *cli) *cobra.Command {
	var (
		idPath      string
		format      string
		metricsAddr string
		verify      bool
	)

	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Print the edit script every time FILE changes",
		Long: `Keep the JSON list in FILE in an observable store and swap in the new
contents whenever the file changes, printing the operations observers
receive. Runs until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			var m *metrics.Metrics
			if metricsAddr != "" {
				reg := prometheus.NewRegistry()
				var err error
				if m, err = metrics.New(reg, metrics.DefaultNamespace); err != nil {
					return err
				}
				stop := serveMetrics(cmd.Context(), metricsAddr, reg, c.logger)
				defer stop()
			}

			w, err := watch.New(args[0], watch.WithDelay(time.Duration(c.cfg.Watch.Delay)))
			if err != nil {
				return err
			}
			defer w.Close()

			sess := &watchSession{
				path:   args[0],
				idPath: c.idPath(idPath),
				format: format,
				verify: verify,
				out:    cmd.OutOrStdout(),
				log:    c.logger,
			}
			sess.store = store.New(source.Matcher(),
				c.cfg.StoreOptions(store.WithLogger(c.logger), store.WithMetrics(m))...)
			defer sess.store.Close()
			sess.tracker = tracking.NewTracker()
			sess.store.Subscribe(sess.tracker)

			// Initial contents are reported as insertions.
			if err := sess.reload(); err != nil {
				return err
			}

			c.logger.Info().Str("path", w.Path()).Msg("watching")
			err = watch.Run(cmd.Context(), w, sess.handle)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&idPath, "id", "", "gjson path of the item identity (default from config)")
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format (text, json)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve prometheus metrics on this address (e.g. :9090)")
	cmd.Flags().BoolVar(&verify, "verify", false, "Replay every script on a copy and check it yields the new list")
	return cmd
}

// watchSession swaps the contents of a file into a store on every change.
type watchSession struct {
	path   string
	idPath string
	format string
	verify bool
	out    io.Writer
	log    zerolog.Logger

	store   *store.Store[source.Item]
	tracker *tracking.Tracker
}

// handle reacts to one debounced file event. Unreadable or invalid
// contents are logged and skipped so a half-written file does not end
// the session.
func (s *watchSession) handle(e watch.Event) error {
	if e.Op == watch.OpRemove || e.Op == watch.OpRename {
		s.log.Warn().Str("path", e.Path).Stringer("op", e.Op).Msg("file went away, keeping last contents")
		return nil
	}
	if err := s.reload(); err != nil {
		s.log.Error().Err(err).Str("path", e.Path).Msg("reload failed")
	}
	return nil
}

// reload swaps the file contents into the store and prints the script.
func (s *watchSession) reload() error {
	items, err := source.Load(s.path, s.idPath)
	if err != nil {
		return err
	}

	var mirror *tracking.Mirror[source.Item]
	if s.verify {
		mirror = tracking.NewMirror(s.store.Items())
		sub := s.store.Subscribe(mirror)
		defer sub.Unsubscribe()
	}

	seq := s.tracker.Seq()
	rev := s.store.Revision()
	if err := s.store.Swap(items); err != nil {
		return err
	}

	events := s.tracker.EventsSince(seq)
	s.log.Debug().
		Uint64("revision", s.store.Revision()).
		Uint64("previous", rev).
		Int("items", len(items)).
		Int("operations", len(events)).
		Msg("reloaded")

	if mirror != nil {
		if err := mirror.Fill(items); err != nil {
			return err
		}
		if err := mirror.Verify(items, source.Matcher()); err != nil {
			return fmt.Errorf("replay check failed: %w", err)
		}
	}

	if len(events) == 0 {
		return nil
	}
	return writeScript(s.out, s.format, events)
}

// serveMetrics serves reg on addr until ctx is done or the returned
// function is called.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, log zerolog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	return func() { close(done) }
}
