package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
)

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// handleAsk implements the ask tool
func handleAsk(client *apiClient, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := request.RequireString("question")
		if err != nil || question == "" {
			return errorResult("Error: question parameter is required"), nil
		}

		maxResults := request.GetInt("max_results", 0)

		answer, err := client.Ask(ctx, question, maxResults)
		if err != nil {
			logger.Error().Err(err).Msg("Ask failed")
			return errorResult(fmt.Sprintf("Query error: %v", err)), nil
		}

		return textResult(formatAnswer(question, answer)), nil
	}
}

// handleIngestNote implements the ingest_note tool
func handleIngestNote(client *apiClient, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		content, err := request.RequireString("content")
		if err != nil || content == "" {
			return errorResult("Error: content parameter is required"), nil
		}

		item, err := client.Ingest(ctx, "note", content)
		if err != nil {
			logger.Error().Err(err).Msg("Note ingest failed")
			return errorResult(fmt.Sprintf("Ingest error: %v", err)), nil
		}

		return textResult(formatItemCreated(item)), nil
	}
}

// handleIngestURL implements the ingest_url tool
func handleIngestURL(client *apiClient, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pageURL, err := request.RequireString("url")
		if err != nil || pageURL == "" {
			return errorResult("Error: url parameter is required"), nil
		}

		item, err := client.Ingest(ctx, "url", pageURL)
		if err != nil {
			logger.Error().Err(err).Str("url", pageURL).Msg("URL ingest failed")
			return errorResult(fmt.Sprintf("Ingest error: %v", err)), nil
		}

		return textResult(formatItemCreated(item)), nil
	}
}

// handleListItems implements the list_items tool
func handleListItems(client *apiClient, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		kind := request.GetString("source_kind", "")
		limit := request.GetInt("limit", 20)

		items, err := client.ListItems(ctx, kind, limit)
		if err != nil {
			logger.Error().Err(err).Msg("List failed")
			return errorResult(fmt.Sprintf("List error: %v", err)), nil
		}

		return textResult(formatItems(items)), nil
	}
}

// handleDeleteItem implements the delete_item tool
func handleDeleteItem(client *apiClient, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		itemID, err := request.RequireString("item_id")
		if err != nil || itemID == "" {
			return errorResult("Error: item_id parameter is required"), nil
		}

		if err := client.DeleteItem(ctx, itemID); err != nil {
			logger.Error().Err(err).Str("item_id", itemID).Msg("Delete failed")
			return errorResult(fmt.Sprintf("Delete error: %v", err)), nil
		}

		return textResult(fmt.Sprintf("Deleted %s and its indexed chunks.", itemID)), nil
	}
}
