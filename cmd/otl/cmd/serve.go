package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceLattice/internal/server"
)

var serveAddress string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve draw passes over HTTP",
	Long: `Start the HTTP API. Each session owns one simulator process; idle
sessions are closed after server.session_idle_minutes.

Endpoints:
  GET    /health
  GET    /api/sessions
  POST   /api/sessions
  DELETE /api/sessions/:id
  GET    /api/sessions/:id/plot/:region?format=json|msgpack|png|sexp
  GET    /api/sessions/:id/params?query=...`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveAddress != "" {
			cfg.Server.Address = serveAddress
		}
		if recordPath != "" {
			return fmt.Errorf("--record is not supported by serve")
		}
		srv := server.New(cfg, version, startConn)
		fmt.Printf("Listening on %s\n", cfg.Server.Address)
		return srv.Run(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddress, "address", "a", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
