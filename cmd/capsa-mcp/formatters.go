package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/capsa/internal/models"
)

// formatAnswer formats a query answer and its citations as markdown
func formatAnswer(question string, answer *models.Answer) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s\n\n", question))
	sb.WriteString(answer.Text)
	sb.WriteString("\n")

	if len(answer.Citations) > 0 {
		sb.WriteString("\n### Sources\n\n")
		for i, citation := range answer.Citations {
			source := string(citation.SourceKind)
			if citation.OriginURL != "" {
				source = citation.OriginURL
			}
			sb.WriteString(fmt.Sprintf("%d. **%s** (relevance %.2f, %s)\n", i+1, source, citation.Score, citation.ItemID))
			sb.WriteString(fmt.Sprintf("   > %s\n", citation.Snippet))
		}
	}

	sb.WriteString(fmt.Sprintf("\n_Answered by %s_\n", answer.Model))
	return sb.String()
}

// formatItemCreated formats a freshly ingested item
func formatItemCreated(item *models.Item) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Saved %s (%s)\n", item.ID, item.SourceKind))
	if item.Title != "" {
		sb.WriteString(fmt.Sprintf("**Title:** %s\n", item.Title))
	}
	if item.OriginURL != "" {
		sb.WriteString(fmt.Sprintf("**URL:** %s\n", item.OriginURL))
	}
	sb.WriteString(fmt.Sprintf("**Size:** %d characters\n", len(item.RawText)))
	return sb.String()
}

// formatItems formats a list of item summaries as markdown
func formatItems(items []listItem) string {
	if len(items) == 0 {
		return "No items stored.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Items (%d)\n\n", len(items)))

	for i, item := range items {
		label := item.Title
		if label == "" {
			label = item.ID
		}
		sb.WriteString(fmt.Sprintf("### %d. %s\n", i+1, label))
		sb.WriteString(fmt.Sprintf("**ID:** %s | **Kind:** %s", item.ID, item.SourceKind))
		if item.OriginURL != "" {
			sb.WriteString(fmt.Sprintf(" | **URL:** %s", item.OriginURL))
		}
		sb.WriteString(fmt.Sprintf("\n**Created:** %s | **Size:** %d chars\n\n", item.CreatedAt.Format(time.RFC3339), item.Chars))
		sb.WriteString(item.Preview)
		sb.WriteString("\n\n---\n\n")
	}

	return sb.String()
}
