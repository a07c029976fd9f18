package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpsrv "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"guestbook/internal/config"
	"guestbook/internal/guestbook"
	mcpserver "guestbook/internal/mcp"
	"guestbook/internal/server"
)

var (
	configFile string
	debug      bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to the configuration file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging and the debug panel")
}

var rootCmd = &cobra.Command{
	Use:               "guestbook",
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	Short:             "Guestbook is a small web client for a guestbook API",
	SilenceUsage:      true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web interface (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// setup parses the configuration and builds the logger and backend client
// every command needs.
func setup() (*config.Config, *zap.SugaredLogger, *guestbook.Client, error) {
	c, err := config.Parse(configFile)
	if err != nil {
		return nil, nil, nil, err
	}
	if debug {
		c.Debug = true
	}

	log := config.NewLogger(c, os.Stderr)
	client := guestbook.NewClient(c.APIBaseURL, http.DefaultClient, log.Named("client"))
	return c, log, client, nil
}

func serve(ctx context.Context) error {
	c, log, client, err := setup()
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()

	sessions := guestbook.NewSessions(client, c.SessionTTL, log.Named("controller"))
	handler := guestbook.NewHandler(
		sessions,
		guestbook.NewDateFormatter(c.Locale),
		guestbook.NewContentRenderer(c.Markdown),
		guestbook.PageOptions{
			Title:       c.Title,
			APIBaseURL:  c.APIBaseURL,
			Environment: c.Environment,
			Version:     c.Version,
			Debug:       c.Debug,
		},
		log.Named("http"),
	)

	// One controller serves every MCP client.
	var mcp *mcpsrv.MCPServer
	if c.MCP {
		mcp = mcpserver.NewServer(guestbook.NewController(client, log.Named("mcp")), client, c.Version)
	}

	router, err := server.NewRouter(handler, mcp, log.Named("http"))
	if err != nil {
		return err
	}
	srv := server.New(c.Port, router, log.Named("server"))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	log.Infow("endpoints available",
		"api", c.APIBaseURL,
		"mcp", c.MCP,
		"debug", c.Debug,
	)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		log.Errorw("server shutdown error", "error", err)
	}
	log.Info("server stopped")
	return nil
}
