package common

import "strings"

// DefaultPageTitle is used when a URL matches no known handbook section.
const DefaultPageTitle = "GitLab Handbook"

// TitleFromURL maps a handbook URL to a readable source title.
func TitleFromURL(url string) string {
	switch {
	case strings.Contains(url, "onboarding"):
		return "GitLab Onboarding Guide"
	case strings.Contains(url, "values"):
		return "GitLab Values & Culture"
	case strings.Contains(url, "remote"):
		return "Remote Work at GitLab"
	case strings.Contains(url, "performance"):
		return "Performance Management"
	case strings.Contains(url, "direction"):
		return "GitLab Product Direction"
	default:
		return DefaultPageTitle
	}
}
