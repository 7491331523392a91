package answer

import (
	"fmt"
	"strings"

	"github.com/ternarybob/capsa/internal/interfaces"
	"github.com/ternarybob/capsa/internal/models"
)

// systemPrompt pins the model to the supplied context. The "say so plainly"
// clause is what makes an empty or irrelevant context produce an honest
// no-answer instead of a hallucination.
const systemPrompt = `You are the answering engine of a personal knowledge inbox. Answer the question using only the context supplied with it. Be concise. If the context does not contain the information needed to answer, say so plainly instead of guessing. Never invent facts and never draw on knowledge outside the supplied context.`

// emptyContextNotice stands in for the context section when retrieval found
// nothing, so the model still sees a well-formed prompt
const emptyContextNotice = "(no stored knowledge matched this question)"

// formatContextBlock renders one retrieved chunk as a delimited source
// block: [Source n | kind | url | relevance 0.00] followed by the chunk
// text. The url segment is present only for url items.
func formatContextBlock(n int, item *models.Item, result interfaces.SearchResult) string {
	var header strings.Builder
	fmt.Fprintf(&header, "[Source %d | %s", n, item.SourceKind)
	if item.OriginURL != "" {
		header.WriteString(" | ")
		header.WriteString(item.OriginURL)
	}
	fmt.Fprintf(&header, " | relevance %.2f]", result.Score)

	return header.String() + "\n" + result.Chunk.Text
}

// buildUserPrompt assembles the full user message: context blocks, the
// question, and the citation instruction.
func buildUserPrompt(question string, contextBlocks []string) string {
	var prompt strings.Builder

	prompt.WriteString("Context:\n\n")
	if len(contextBlocks) == 0 {
		prompt.WriteString(emptyContextNotice)
		prompt.WriteString("\n")
	} else {
		for _, block := range contextBlocks {
			prompt.WriteString(block)
			prompt.WriteString("\n\n")
		}
	}

	prompt.WriteString("\nQuestion: ")
	prompt.WriteString(question)
	prompt.WriteString("\n\nAnswer from the context above. Cite the sources you used by their number.")

	return prompt.String()
}
