package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scenedex/scenedex/internal/mcp"
	"github.com/scenedex/scenedex/internal/storage"
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Long: `Run scenedex as an MCP (Model Context Protocol) server. Tools are
exposed over stdio; logs go to stderr so stdout stays a clean
protocol stream.

Examples:
  # Typically launched by an MCP client, not by hand
  scenedex serve

  # Client configuration:
  # {
  #   "mcpServers": {
  #     "scenedex": {
  #       "command": "scenedex",
  #       "args": ["serve"],
  #       "env": {"OPENAI_API_KEY": "sk-..."}
  #     }
  #   }
  # }`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	svc, log, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close()

	log.Infow("starting MCP server",
		"version", versionInfo.Version,
		"build", storage.BuildMode,
		"driver", storage.DriverName,
		"vector_extension", storage.VectorExtensionAvailable)

	srv := mcp.NewServer(svc, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Serve(ctx)
	}()

	select {
	case <-ctx.Done():
		log.Infow("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
