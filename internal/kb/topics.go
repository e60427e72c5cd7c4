package kb

import "strings"

// DefaultTopic is recorded when a query matches no known topic keyword.
const DefaultTopic = "general"

// topicKeywords maps analytics topics to the query substrings that signal
// them. Checked in this order so extraction output is deterministic.
var topicKeywords = []struct {
	topic    string
	keywords []string
}{
	{"onboarding", []string{"onboarding", "new hire", "welcome", "start", "join"}},
	{"culture", []string{"culture", "values", "transparency", "collaboration"}},
	{"remote_work", []string{"remote", "work from home", "distributed", "async"}},
	{"performance", []string{"performance", "review", "feedback", "development"}},
	{"product", []string{"product", "strategy", "direction", "roadmap"}},
	{"hiring", []string{"hiring", "interview", "recruitment", "candidate"}},
	{"management", []string{"management", "manager", "leadership", "team"}},
}

// ExtractTopics classifies a user query into analytics topics. A query can
// match several topics; one that matches none yields the default topic.
func ExtractTopics(query string) []string {
	lower := strings.ToLower(query)

	var topics []string
	for _, entry := range topicKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lower, keyword) {
				topics = append(topics, entry.topic)
				break
			}
		}
	}

	if len(topics) == 0 {
		return []string{DefaultTopic}
	}
	return topics
}
