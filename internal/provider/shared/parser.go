package shared

import (
	"fmt"
	"log"
	"regexp"
	"strings"
)

var (
	summaryRegex = regexp.MustCompile(`(?s)<summary>\s*(.*?)\s*</summary>`)
	patchRegex   = regexp.MustCompile(`(?s)<patch>\s*(.*?)\s*</patch>`)
	diffRegex    = regexp.MustCompile("(?s)```diff\\s*\\n(.*?)\\n```")

	placeholderSummaries = map[string]struct{}{
		"brief description of changes made": {},
		"the patch is ready":                {},
	}

	permissionRequestPhrases = []string{
		"would you like me to proceed",
		"would you like me to continue",
		"shall i proceed",
		"if you grant the necessary permissions",
		"if you grant me permission",
		"let me know if you want me to proceed",
		"i can proceed once you approve",
	}
)

// ParseResponse converts a raw backend response into a summary and an
// optional patch. The provider label is used for log prefixes.
//
// Backends edit files through workspace tools rather than inline file
// blocks, so a response is useful as long as it carries a real summary;
// the patch tags are extracted when present.
func ParseResponse(providerLabel, response string) (*CodeResponse, error) {
	text := strings.TrimSpace(response)
	if text == "" {
		return nil, fmt.Errorf("no content found in response")
	}

	result := &CodeResponse{Raw: response}

	if match := patchRegex.FindStringSubmatch(text); len(match) >= 2 {
		result.Patch = match[1]
	} else if match := diffRegex.FindStringSubmatch(text); len(match) >= 2 {
		result.Patch = match[1]
	}

	summary := text
	if match := summaryRegex.FindStringSubmatch(text); len(match) >= 2 {
		summary = match[1]
	}

	if isPlaceholderSummary(summary) {
		if result.Patch != "" {
			log.Printf("[%s] Placeholder summary alongside a real patch, substituting", providerLabel)
			summary = "Code changes applied"
		} else {
			return nil, fmt.Errorf("placeholder summary detected in response")
		}
	}

	if result.Patch == "" && ContainsPermissionRequest(summary) {
		return nil, fmt.Errorf("permission request detected in response")
	}

	result.Summary = summary
	return result, nil
}

// ContainsPermissionRequest reports whether the text asks the user for
// permission before proceeding instead of doing the work.
func ContainsPermissionRequest(text string) bool {
	s := strings.ToLower(text)
	for _, phrase := range permissionRequestPhrases {
		if strings.Contains(s, phrase) {
			return true
		}
	}
	return false
}

func isPlaceholderSummary(summary string) bool {
	key := strings.ToLower(strings.TrimSpace(summary))
	_, ok := placeholderSummaries[key]
	return ok
}
