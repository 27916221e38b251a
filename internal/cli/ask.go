package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer one question and print the sources",
	Args:  cobra.ExactArgs(1),
	RunE:  runAsk,
}

func runAsk(_ *cobra.Command, args []string) error {
	cfg := loadConfig()
	a, err := buildApp(cfg)
	if err != nil {
		exitWith(ExitStoreFailure, "ERROR: failed to open store: "+err.Error())
	}
	defer func() { _ = a.Close() }()

	answer, err := a.sys.Query(context.Background(), "", args[0])
	if err != nil {
		return err
	}

	if globalFlags.JSON {
		return json.NewEncoder(os.Stdout).Encode(answer)
	}

	st := newStyles(os.Stdout)
	fmt.Println(answer.Text)
	if len(answer.Sources) > 0 {
		fmt.Println()
		fmt.Println(st.Dim.Render("Sources:"))
		for _, src := range answer.Sources {
			line := "  " + src.Text
			if src.Link != "" {
				line += "  " + st.URL.Render(src.Link)
			}
			fmt.Println(line)
		}
	}
	return nil
}
