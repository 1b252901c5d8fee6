package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/markscan/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/markscan/internal/adapters/driving/watch"
	"github.com/custodia-labs/markscan/internal/core/services"
	"github.com/custodia-labs/markscan/internal/logger"
)

// sessionPruneInterval is how often expired sessions are removed.
const sessionPruneInterval = 10 * time.Minute

var (
	serveAddr      string
	serveWatchDir  string
	serveMaxUpload int64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the result lookup API, the admin API and the live activity
feed. Expired admin sessions are pruned in the background.

With --watch (or watch.dir in the config file) scans dropped into that
directory are uploaded as they arrive.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
	serveCmd.Flags().StringVar(&serveWatchDir, "watch", "", "inbox directory to watch for scans")
	serveCmd.Flags().Int64Var(&serveMaxUpload, "max-upload-bytes", httpapi.DefaultMaxUploadBytes, "largest accepted upload request")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if searchService == nil || authService == nil {
		return errors.New("search and auth services not configured")
	}

	cfg := settingsOrDefault()
	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	watchDir := serveWatchDir
	if watchDir == "" {
		watchDir = cfg.WatchDir
	}

	server, err := httpapi.NewServer(&httpapi.Ports{
		Search:    searchService,
		Auth:      authService,
		Records:   recordService,
		Admins:    adminService,
		Semesters: semesterService,
		Activity:  activityService,
	}, httpapi.WithMaxUploadBytes(serveMaxUpload))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	warnIfNoAdmins(ctx)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Run(ctx, addr)
	})

	if sessionStore != nil {
		scheduler := services.NewScheduler(services.SessionPruneTask(sessionStore, sessionPruneInterval))
		g.Go(func() error {
			if err := scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if watchDir != "" && recordService != nil {
		w := watch.New(watchDir, recordService, watch.WithExisting(true))
		g.Go(func() error {
			defer w.Close() //nolint:errcheck
			return w.Run(ctx)
		})
	}

	cmd.Printf("markscan listening on %s\n", addr)
	return g.Wait()
}

func warnIfNoAdmins(ctx context.Context) {
	if adminService == nil {
		return
	}
	admins, err := adminService.List(ctx)
	if err != nil {
		logger.Warn("listing administrators: %v", err)
		return
	}
	if len(admins) == 0 {
		logger.Warn("no administrators exist; add one with 'markscan admin add <username>'")
	}
}
