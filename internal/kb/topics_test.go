package kb

import (
	"reflect"
	"testing"
)

func TestExtractTopics(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "single topic",
			query: "How does the onboarding process work?",
			want:  []string{"onboarding"},
		},
		{
			name:  "multiple topics in table order",
			query: "How do managers give performance feedback to remote teams?",
			want:  []string{"remote_work", "performance", "management"},
		},
		{
			name:  "case insensitive",
			query: "Tell me about CULTURE",
			want:  []string{"culture"},
		},
		{
			name:  "multi word keyword",
			query: "Can I work from home?",
			want:  []string{"remote_work"},
		},
		{
			name:  "no match defaults to general",
			query: "What is the weather like?",
			want:  []string{"general"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractTopics(tt.query); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractTopics(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}
