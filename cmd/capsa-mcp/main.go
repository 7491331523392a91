// capsa-mcp is a stdio MCP server exposing a running Capsa instance's HTTP
// API as tools. It is a thin client: the record store is single-process, so
// all state lives behind the serve process this binary talks to.
package main

import (
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbormodels "github.com/ternarybob/arbor/models"

	"github.com/ternarybob/capsa/internal/common"
)

const defaultServerURL = "http://localhost:8085"

func main() {
	serverURL := os.Getenv("CAPSA_URL")
	if serverURL == "" {
		serverURL = defaultServerURL
	}

	// Minimal logging to avoid cluttering MCP stdio
	logger := arbor.NewLogger().WithConsoleWriter(arbormodels.WriterConfiguration{
		Type:             arbormodels.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		TextOutput:       true,
		DisableTimestamp: false,
	}).WithLevelFromString("warn")

	client := newAPIClient(serverURL)

	mcpServer := server.NewMCPServer(
		"capsa",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createAskTool(), handleAsk(client, logger))
	mcpServer.AddTool(createIngestNoteTool(), handleIngestNote(client, logger))
	mcpServer.AddTool(createIngestURLTool(), handleIngestURL(client, logger))
	mcpServer.AddTool(createListItemsTool(), handleListItems(client, logger))
	mcpServer.AddTool(createDeleteItemTool(), handleDeleteItem(client, logger))

	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
