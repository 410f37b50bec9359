package llm

import (
	"fmt"
	"strings"

	"github.com/avanth/docuquery/internal/domain/docModel"
)

// BuildPrompt assembles the user prompt every provider sends: the retrieved
// chunks prefixed with their document of origin, then the question, then a
// fixed instruction block keeping the model grounded in the given context.
func BuildPrompt(question string, contextChunks []docModel.RetrievalResult) string {
	contextBlocks := make([]string, 0, len(contextChunks))
	for _, chunk := range contextChunks {
		contextBlocks = append(contextBlocks,
			fmt.Sprintf("From document '%s':\n%s", chunk.DocumentName, chunk.ChunkText))
	}

	return fmt.Sprintf(`Answer the user's question based only on the provided context from their documents.

Context from documents:
%s

User question: %s

Instructions:
- Only use information from the provided context
- If the context doesn't contain relevant information, say so clearly
- Be concise but comprehensive
- Mention which documents you're referencing when relevant
- If you're not certain about something, express that uncertainty

Answer:`, strings.Join(contextBlocks, "\n\n"), question)
}
