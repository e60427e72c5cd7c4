package chat

import (
	"fmt"
	"strings"

	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/models"
)

// systemPrompt frames every answer request.
const systemPrompt = "You are a helpful AI assistant for GitLab. Answer the user's question using the provided context."

// PromptBuilder assembles generation prompts from retrieved documents and
// recent conversation history.
type PromptBuilder struct {
	cfg common.PromptConfig
}

// NewPromptBuilder returns a builder using the given prompt settings.
func NewPromptBuilder(cfg common.PromptConfig) *PromptBuilder {
	return &PromptBuilder{cfg: cfg}
}

// BuildAnswerPrompt renders the user-side prompt: the scored context block,
// a trailing window of conversation history, the question, and the answer
// guidelines.
func (b *PromptBuilder) BuildAnswerPrompt(query string, docs []models.ScoredDocument, history []models.Turn) string {
	var sb strings.Builder

	sb.WriteString("Context from GitLab documentation (with relevance scores):\n")
	for _, doc := range docs {
		fmt.Fprintf(&sb, "Source: %s (Relevance: %.2f)\nTopic: %s\nContent: %s\n\n",
			doc.Source, doc.RelevanceScore, doc.Topic, doc.Content)
	}

	if block := b.historyBlock(history); block != "" {
		sb.WriteString(block)
	}

	fmt.Fprintf(&sb, "\nCurrent User Question: %s\n", query)

	sb.WriteString(`
Guidelines:
1. Provide specific, detailed answers based on the GitLab context
2. Be helpful and professional
3. Reference conversation history if this is a follow-up question
4. Focus on GitLab-specific information
5. If context has low relevance scores, acknowledge uncertainty
6. Organize your response clearly with proper formatting

Answer:
`)

	return sb.String()
}

// historyBlock renders the trailing history window. Turns are truncated so
// long answers do not crowd out the context block. Empty when there is not
// yet a conversation to recap.
func (b *PromptBuilder) historyBlock(history []models.Turn) string {
	if len(history) < 2 {
		return ""
	}

	recent := history
	if len(recent) > b.cfg.HistoryTurns {
		recent = recent[len(recent)-b.cfg.HistoryTurns:]
	}

	var sb strings.Builder
	sb.WriteString("\nRecent conversation:\n")
	for _, turn := range recent {
		role := "Assistant"
		if turn.Role == models.RoleUser {
			role = "User"
		}
		content := turn.Content
		if truncated := common.Truncate(content, b.cfg.HistoryTruncateAt); truncated != content {
			content = truncated + "..."
		}
		fmt.Fprintf(&sb, "%s: %s\n", role, content)
	}
	return sb.String()
}

// BuildFollowupPrompt asks the model for follow-up questions grounded in the
// exchange that just happened. Only the head of the answer is echoed back.
func (b *PromptBuilder) BuildFollowupPrompt(query, answer string) string {
	const answerPreview = 300
	preview := common.Truncate(answer, answerPreview)

	return fmt.Sprintf(`Based on this GitLab-related conversation:
User asked: %q
Assistant responded: %q...

Generate %d relevant follow-up questions that a GitLab employee or someone interested in GitLab might ask.
Make the questions specific and practical.
Return only the questions, one per line, without numbering.
`, query, preview, b.cfg.MaxFollowups)
}
