package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/beaufortfrancois/templates/internal/server"
	"github.com/beaufortfrancois/templates/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the live-reloading preview server",
	Long: `Serve loads the template store, watches it for changes, and exposes it
over HTTP: GET /templates lists templates, POST /render renders one, and
GET /ws streams reload events to connected clients.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntP("port", "p", 0, "port to listen on")
	serveCmd.Flags().String("host", "", "host to bind to")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := store.NewStore(cfg, logger)
	if err := st.Load(ctx); err != nil {
		return err
	}
	if cfg.Templates.Reload {
		if err := st.Watch(ctx); err != nil {
			return err
		}
	}

	return server.New(cfg, st, logger).Start(ctx)
}
