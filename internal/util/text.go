package util

import (
	"regexp"
	"strings"
)

const (
	Ellipsis        = "..."
	DefaultJobTitle = "Job Position"
)

var (
	// salutation and sign-off lines the model tends to wrap a letter body in
	letterBoilerplateRegex = regexp.MustCompile(`(?i)^\s*(dear\b|to whom\b|hiring manager\b|re:|resume content:|job description:|sincerely\b|best regards\b|yours\b)`)
	blankRunRegex          = regexp.MustCompile(`\n{3,}`)

	titleLabelRegex = regexp.MustCompile(`(?i)^\s*(job title:|title:|position:|role:|here's\b|here is\b|this is\b|the\b|an\b|a\b|for\b)`)
	titleQuoteRegex = regexp.MustCompile(`["'“”‘’]`)
	titlePunctRegex = regexp.MustCompile(`[:.,!?]`)
	titleEdgeRegex  = regexp.MustCompile(`^[^\p{L}\p{N}_]+|[^\p{L}\p{N}_]+$`)

	chatCleanupRegexes = []*regexp.Regexp{
		regexp.MustCompile(`You are.*?assistant\.`),
		regexp.MustCompile(`Based on the.*?below`),
		regexp.MustCompile(`(?s)Resume:.*?Job Description:`),
		regexp.MustCompile(`(?s)Job Description:.*`),
		regexp.MustCompile(`\[.*?\]`),
		regexp.MustCompile("```.*?```"),
		regexp.MustCompile(`\{.*?\}`),
	}
	chatEdgeQuoteRegex = regexp.MustCompile(`^["']|["']$`)
	chatSpeakerRegex   = regexp.MustCompile(`^(Assistant:|Human:)`)

	jsonObjectRegex = regexp.MustCompile(`(?s)\{.*\}`)
)

// CollapseWhitespace replaces every whitespace run with one space and trims.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate keeps at most max runes of s and marks a cut with an ellipsis.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + Ellipsis
}

// Head returns the first n runes of s without any marker.
func Head(s string, n int) string {
	runes := []rune(s)
	if n <= 0 || len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// CleanCoverLetter drops salutation and closing lines from generated text.
func CleanCoverLetter(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if letterBoilerplateRegex.MatchString(line) {
			continue
		}
		kept = append(kept, strings.TrimRight(line, " \t"))
	}
	out := strings.Join(kept, "\n")
	out = blankRunRegex.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// CleanJobTitle normalizes a model answer into a bare job title, falling back
// to DefaultJobTitle when nothing usable is left.
func CleanJobTitle(raw string) string {
	title := ""
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) != "" {
			title = line
			break
		}
	}
	title = titleLabelRegex.ReplaceAllString(title, "")
	title = titleQuoteRegex.ReplaceAllString(title, "")
	title = titlePunctRegex.ReplaceAllString(title, "")
	title = titleEdgeRegex.ReplaceAllString(title, "")
	title = CollapseWhitespace(title)
	if title == "" {
		return DefaultJobTitle
	}
	return title
}

// CleanChatReply strips echoed prompt fragments, markup and boilerplate lines
// from a chat answer.
func CleanChatReply(text string) string {
	cleaned := text
	for _, re := range chatCleanupRegexes {
		cleaned = re.ReplaceAllString(cleaned, "")
	}
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimSpace(chatEdgeQuoteRegex.ReplaceAllString(cleaned, ""))
	cleaned = strings.TrimSpace(chatSpeakerRegex.ReplaceAllString(cleaned, ""))
	return CleanCoverLetter(cleaned)
}

// FirstJSONObject returns the outermost {...} block of s, or "" when there is none.
func FirstJSONObject(s string) string {
	return jsonObjectRegex.FindString(s)
}
