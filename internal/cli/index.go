package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/railscope/railscope/internal/config"
	"github.com/railscope/railscope/internal/indexer"
)

var (
	quietFlag bool
	watchFlag bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build or refresh the semantic index",
	Long: `Index discovers Ruby source files under the workspace root, parses
them into the semantic graph and persists a snapshot plus a content
hash cache under .railscope/cache. A second run only reindexes files
whose content changed.

With --watch the process stays alive after the initial run and
reindexes files as they change on disk.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := workspaceRoot()
		if err != nil {
			return err
		}
		cfg, err := config.LoadConfigFromDir(root)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		var progress indexer.ProgressReporter
		if !quietFlag && !jsonFlag {
			progress = NewCLIProgressReporter()
		}

		idx, err := indexer.New(root, cfg, progress)
		if err != nil {
			return err
		}
		defer idx.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		stats, err := idx.IndexWorkspace(ctx)
		if err != nil {
			if errors.Is(err, indexer.ErrCancelled) {
				fmt.Fprintln(cmd.ErrOrStderr(), "Interrupted; partial index saved, rerun to continue")
				return nil
			}
			return err
		}
		if jsonFlag {
			if err := printJSON(cmd, stats); err != nil {
				return err
			}
		}

		if !watchFlag {
			return nil
		}

		w, err := indexer.NewWatcher(idx, root, idx.Discovery(), cfg.Indexing.WatchDebounce)
		if err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		w.Start(ctx)
		defer w.Stop()

		if !quietFlag {
			fmt.Println("Watching for changes (ctrl-c to stop)...")
		}
		<-ctx.Done()
		return nil
	},
}

func init() {
	indexCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "suppress progress output")
	indexCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "keep running and reindex on file changes")
	rootCmd.AddCommand(indexCmd)
}
