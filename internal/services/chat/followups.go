package chat

import "strings"

// minFollowupLength filters out fragments and stray bullets from model
// output.
const minFollowupLength = 10

// fallbackFollowups are served when follow-up generation fails.
var fallbackFollowups = []string{
	"Can you tell me more about that?",
	"What are the practical benefits of this approach?",
	"How does this work in practice at GitLab?",
}

// retryFollowups are served alongside the apology answer when generation
// itself fails.
var retryFollowups = []string{
	"Can you try rephrasing your question?",
	"What specific aspect interests you?",
}

// parseFollowups extracts up to max questions from raw model output, one per
// line. Leading list markers and whitespace are stripped; short fragments
// are dropped.
func parseFollowups(raw string, max int) []string {
	questions := make([]string, 0, max)
	for _, line := range strings.Split(raw, "\n") {
		q := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*• "))
		if len(q) > minFollowupLength {
			questions = append(questions, q)
		}
		if len(questions) == max {
			break
		}
	}
	return questions
}
