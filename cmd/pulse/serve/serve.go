package serve

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/erfanjahi0/pulsechat/cmd"
	"github.com/erfanjahi0/pulsechat/pkg/backend"
	"github.com/spf13/cobra"
)

// NewCommand returns the serve command.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:                "serve",
		Short:              "Start the server",
		Args:               cobra.NoArgs,
		PersistentPreRunE:  cmd.InitBackendContext,
		PersistentPostRunE: cmd.CloseDBContext,
		RunE: func(c *cobra.Command, _ []string) error {
			ctx := c.Context()

			s, err := NewServer(ctx)
			if err != nil {
				return fmt.Errorf("start server: %w", err)
			}

			// Seed the reservation gauge before the first scheduled refresh.
			if _, err := backend.FromContext(ctx).RefreshReservationStats(ctx); err != nil {
				s.logger.Warn("refresh reservation stats", "err", err)
			}

			lch := make(chan error, 1)
			done, doneOnce := notifyDone(os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

			// This endpoint is added for testing purposes
			// It allows us to stop the server from the test suite.
			// This is needed since Windows doesn't support signals.
			if testRun, _ := strconv.ParseBool(os.Getenv("PULSE_TESTRUN")); testRun {
				h := s.HTTPServer.Server.Handler
				s.HTTPServer.Server.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					if r.URL.Path == "/__stop" && r.Method == http.MethodHead {
						doneOnce()
						return
					}
					h.ServeHTTP(w, r)
				})
			}

			go func() {
				lch <- s.Start()
				doneOnce()
			}()

			select {
			case err := <-lch:
				if err != nil {
					return fmt.Errorf("server error: %w", err)
				}
			case <-done:
			}

			ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			if err := s.Shutdown(ctx); err != nil {
				return err
			}

			return nil
		},
	}
}

// notifyDone returns a channel that receives the given signals and a function
// that closes it. The channel is unregistered before it is closed, so a late
// signal is dropped instead of sent on a closed channel.
func notifyDone(sigs ...os.Signal) (<-chan os.Signal, func()) {
	done := make(chan os.Signal, 1)
	signal.Notify(done, sigs...)
	return done, sync.OnceFunc(func() {
		signal.Stop(done)
		close(done)
	})
}
