package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createAskTool returns the ask tool definition
func createAskTool() mcp.Tool {
	return mcp.NewTool("ask",
		mcp.WithDescription("Ask a natural-language question answered from the Capsa knowledge inbox, with per-source relevance scores"),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question to answer"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of source chunks to retrieve (default: server config, typically 5)"),
		),
	)
}

// createIngestNoteTool returns the ingest_note tool definition
func createIngestNoteTool() mcp.Tool {
	return mcp.NewTool("ingest_note",
		mcp.WithDescription("Save a typed note into the Capsa knowledge inbox"),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("The note text (must not be empty or whitespace-only)"),
		),
	)
}

// createIngestURLTool returns the ingest_url tool definition
func createIngestURLTool() mcp.Tool {
	return mcp.NewTool("ingest_url",
		mcp.WithDescription("Fetch a web page, extract its readable text, and save it into the Capsa knowledge inbox"),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The http(s) page address"),
		),
	)
}

// createListItemsTool returns the list_items tool definition
func createListItemsTool() mcp.Tool {
	return mcp.NewTool("list_items",
		mcp.WithDescription("List stored items, newest first"),
		mcp.WithString("source_kind",
			mcp.Description("Filter by kind: note or url"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum items to return (default: 20)"),
		),
	)
}

// createDeleteItemTool returns the delete_item tool definition
func createDeleteItemTool() mcp.Tool {
	return mcp.NewTool("delete_item",
		mcp.WithDescription("Delete a stored item and its indexed chunks"),
		mcp.WithString("item_id",
			mcp.Required(),
			mcp.Description("Item ID (format: item_{uuid})"),
		),
	)
}
