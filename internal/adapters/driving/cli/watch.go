package cli

import (
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/markscan/internal/adapters/driving/watch"
)

var (
	watchExisting bool
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Upload scans dropped into a directory",
	Long: `Watches an inbox directory and uploads each new scan once writes to
it settle. Hidden files and unsupported formats are ignored. Records are
attributed to the "watcher" uploader.

The directory defaults to watch.dir from the config file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchExisting, "existing", false, "also upload scans already in the directory")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet period before a file is processed")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if recordService == nil {
		return errors.New("record service not configured")
	}

	dir := settingsOrDefault().WatchDir
	if len(args) == 1 {
		dir = args[0]
	}
	if dir == "" {
		return errors.New("no directory given and watch.dir is not set")
	}

	w := watch.New(dir, recordService,
		watch.WithExisting(watchExisting),
		watch.WithDebounce(watchDebounce),
		watch.WithNotify(func(o watch.Outcome) {
			if o.Err != nil {
				cmd.Printf("  fail  %s: %v\n", o.Path, o.Err)
				return
			}
			cmd.Printf("  ok    %s -> %s (%s, %s)\n", o.Path, o.Record.Name, o.Record.TURegd, o.Record.Result)
		}),
	)
	defer w.Close() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s (Ctrl-C to stop)\n", dir)
	return w.Run(ctx)
}
