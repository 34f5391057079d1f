package transform

import (
	"regexp"
	"strings"
)

var (
	thinkBlock  = regexp.MustCompile(`(?s)<think>.*?</think>`)
	outerFence  = regexp.MustCompile("(?s)^```[a-zA-Z]*\\n(.*)\\n```$")
	blankLines  = regexp.MustCompile(`\n{3,}`)
	trailingWSP = regexp.MustCompile(`[ \t]+\n`)
)

// CleanAnalysis tidies model output before it is rendered as markdown.
func CleanAnalysis(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = thinkBlock.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	if m := outerFence.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	text = trailingWSP.ReplaceAllString(text, "\n")
	text = blankLines.ReplaceAllString(text, "\n\n")

	return text
}
