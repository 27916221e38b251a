package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the index currently holds",
	RunE:  runStatus,
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	a, err := buildApp(cfg)
	if err != nil {
		exitWith(ExitStoreFailure, "ERROR: failed to open store: "+err.Error())
	}
	defer func() { _ = a.Close() }()

	stats, err := a.sys.CourseAnalytics(context.Background())
	if err != nil {
		return err
	}

	if globalFlags.JSON {
		return json.NewEncoder(os.Stdout).Encode(stats)
	}

	st := newStyles(os.Stdout)
	fmt.Println(st.Key.Render("State:  ") + cfg.Paths.State)
	fmt.Println(st.Key.Render("Courses:") + " " + st.Value.Render(fmt.Sprintf("%d", stats.TotalCourses)))
	for _, title := range stats.CourseTitles {
		fmt.Println("  " + title)
	}
	return nil
}
