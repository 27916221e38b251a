package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load course transcripts from the docs folder into the index",
	RunE:  runIngest,
}

var ingestClear bool

func init() {
	ingestCmd.Flags().BoolVar(&ingestClear, "clear", false, "wipe the index and re-ingest everything")
}

func runIngest(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	a, err := buildApp(cfg)
	if err != nil {
		exitWith(ExitStoreFailure, "ERROR: failed to open store: "+err.Error())
	}
	defer func() { _ = a.Close() }()

	courses, chunks, err := a.ingest.AddCourseFolder(context.Background(), cfg.Paths.Docs, ingestClear)
	if err != nil {
		exitWith(ExitIngestFatal, "ERROR: ingest: "+err.Error())
	}

	if !globalFlags.Quiet {
		st := newStyles(os.Stdout)
		fmt.Println(st.Success.Render(fmt.Sprintf("Ingested %d courses (%d chunks) from %s", courses, chunks, cfg.Paths.Docs)))
	}
	return nil
}
