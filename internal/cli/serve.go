package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/moiesk/courserag/internal/ingest"
	"github.com/moiesk/courserag/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Ingest the course folder and serve the HTTP API",
	RunE:  runServe,
}

var (
	serveListen  string
	serveNoWatch bool
)

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "host:port to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "do not watch the course folder for changes")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	if serveListen != "" {
		cfg.Server.Listen = serveListen
	}
	if serveNoWatch {
		cfg.Server.Watch = false
	}

	a, err := buildApp(cfg)
	if err != nil {
		exitWith(ExitStoreFailure, "ERROR: failed to open store: "+err.Error())
	}
	defer func() { _ = a.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := os.Stat(cfg.Paths.Docs); err == nil {
		courses, chunks, err := a.ingest.AddCourseFolder(ctx, cfg.Paths.Docs, false)
		if err != nil {
			exitWith(ExitIngestFatal, "ERROR: ingest: "+err.Error())
		}
		if courses > 0 {
			a.log.Info().Int("courses", courses).Int("chunks", chunks).Msg("startup ingest complete")
		}
	} else {
		a.log.Warn().Str("dir", cfg.Paths.Docs).Msg("course folder not found, starting with existing index")
	}

	if cfg.Server.Watch {
		watcher := ingest.NewWatcher(a.ingest, cfg.Paths.Docs, a.log)
		go func() {
			if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
				a.log.Warn().Err(err).Msg("watcher stopped")
			}
		}()
	}

	listener, err := net.Listen("tcp", cfg.Server.Listen)
	if err != nil {
		exitWith(ExitBindFailure, "ERROR: server bind failure: "+err.Error())
	}

	if !globalFlags.Quiet {
		st := newStyles(os.Stdout)
		fmt.Println(st.Header.Render("courserag server"))
		fmt.Println(st.Key.Render("  API:    ") + st.URL.Render(fmt.Sprintf("http://%s/api/query", listener.Addr())))
		fmt.Println(st.Key.Render("  Courses:") + " " + st.URL.Render(fmt.Sprintf("http://%s/api/courses", listener.Addr())))
		fmt.Println(st.Key.Render("  Metrics:") + " " + st.URL.Render(fmt.Sprintf("http://%s/metrics", listener.Addr())))
	}

	srv := server.New(a.sys, server.NewMetrics(), a.log)
	return srv.Serve(ctx, listener)
}
