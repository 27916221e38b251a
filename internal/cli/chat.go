package cli

import (
	"github.com/spf13/cobra"

	"github.com/moiesk/courserag/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat over the indexed courses",
	RunE:  runChat,
}

func runChat(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	a, err := buildApp(cfg)
	if err != nil {
		exitWith(ExitStoreFailure, "ERROR: failed to open store: "+err.Error())
	}
	defer func() { _ = a.Close() }()

	return tui.Run(a.sys)
}
