package cli

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/railscope/railscope/internal/indexer"
)

// CLIProgressReporter renders index progress as a terminal progress bar.
type CLIProgressReporter struct {
	bar *progressbar.ProgressBar
}

// NewCLIProgressReporter creates a progress reporter for interactive runs.
func NewCLIProgressReporter() *CLIProgressReporter {
	return &CLIProgressReporter{}
}

func (r *CLIProgressReporter) OnDiscoveryStart() {
	fmt.Println("Discovering source files...")
}

func (r *CLIProgressReporter) OnDiscoveryComplete(totalFiles int) {
	fmt.Printf("Found %d files\n", totalFiles)
}

func (r *CLIProgressReporter) OnIndexingStart(totalFiles int) {
	r.bar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetDescription("Indexing"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
}

func (r *CLIProgressReporter) OnFileIndexed(fileName string) {
	if r.bar != nil {
		_ = r.bar.Add(1)
	}
}

func (r *CLIProgressReporter) OnComplete(stats *indexer.Stats) {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
	fmt.Printf("Indexed %d files (%d unchanged, %d failed) in %v\n",
		stats.FilesIndexed, stats.FilesSkipped, stats.FilesFailed,
		stats.IndexingDuration.Round(time.Millisecond))
	fmt.Printf("Graph: %d classes, %d methods, %d call edges, %d associations\n",
		stats.Graph.Classes, stats.Graph.Methods, stats.Graph.CallEdges, stats.Graph.Associations)
}
