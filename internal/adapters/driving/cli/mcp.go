package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/markscan/internal/adapters/driving/mcp"
	"github.com/custodia-labs/markscan/internal/logger"
)

var mcpPort int

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol server",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose result lookup and field extraction to AI assistants",
	Long: `Serves markscan over the Model Context Protocol.

Tools:
  lookup_result   find a stored result by name and registration number
  extract_fields  run the field extractor over marksheet text

Resources:
  markscan://semesters        all semesters
  markscan://records/{id}     one stored record

JSON-RPC runs over stdio unless --port is given, in which case the
streamable HTTP transport listens on that port.

Example assistant entry:
  {"mcpServers": {"markscan": {"command": "markscan", "args": ["mcp", "serve"]}}}`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 = stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Search:    searchService,
		Records:   recordService,
		Semesters: semesterService,
		Extractor: extractor,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if mcpPort > 0 {
		addr := fmt.Sprintf(":%d", mcpPort)
		cmd.Printf("MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	// stdout carries JSON-RPC; diagnostics go to stderr.
	logger.SetOutput(cmd.ErrOrStderr())
	return server.Run(ctx)
}
