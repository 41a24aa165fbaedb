package agent

import (
	"fmt"
	"strings"
)

// systemPromptTemplate is the deterministic template BUILD_MESSAGES
// seeds every run with: the tool bullet list advertised by the registry,
// and the required-output grammar the model must follow once it has
// finished calling tools.
const systemPromptTemplate = `You are a retrieval-augmented assistant. Answer the user's question using the tools available to you when the answer requires information you do not already have.

Available tools:
%s

When you have finished gathering information and are ready to answer, respond with a JSON array of objects, each shaped as:
{"type": "text" | "image", "content": <string>, "source": <source_id or "agent-response">}

Do not wrap the JSON in prose. Do not call any more tools once you emit this final array.`

// BuildSystemPrompt renders the system prompt for a run, listing each
// advertised tool's name and description as a bullet.
func BuildSystemPrompt(tools []Tool) string {
	if len(tools) == 0 {
		return fmt.Sprintf(systemPromptTemplate, "(none available)")
	}
	var b strings.Builder
	for i, t := range tools {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s: %s", t.Name(), t.Description())
	}
	return fmt.Sprintf(systemPromptTemplate, b.String())
}
