package ai

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// thinkBlockRegex matches the reasoning block some models (DeepSeek R1,
	// Qwen via Ollama) emit before the answer.
	thinkBlockRegex = regexp.MustCompile(`(?s)<think>.*?</think>`)

	controlCharsRegex     = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	multipleNewlinesRegex = regexp.MustCompile(`\n{3,}`)

	// metadataPrefixRegex matches a "[2025-03-06T22:30:11+01:00] NAME:" prefix
	// echoed back from a transcript.
	metadataPrefixRegex = regexp.MustCompile(`^\s*\[\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:\d{2})\]\s+[^:\n]*:\s*`)

	unicodeReplacer = strings.NewReplacer(
		"\u2060", "", // word joiner
		"\uFEFF", "", // byte order mark
		"\u00AD", "", // soft hyphen
		"\u200E", "", // left-to-right mark
		"\u200F", "", // right-to-left mark
		"\u200B", "", // zero width space
		"\u2028", "\n",
		"\u2029", "\n\n",
		"\u2009", " ",
		"\u200A", " ",
		"\u202F", " ",
		"\u3000", " ",
	)
)

// CleanReply normalizes model output before it is shown: reasoning blocks,
// echoed metadata prefixes, invisible characters and control characters are
// removed, whitespace is collapsed per line and blank runs are capped at one
// empty line. Zero-width joiners are kept so composite emoji survive.
func CleanReply(s string) string {
	s = thinkBlockRegex.ReplaceAllString(s, "")
	s = metadataPrefixRegex.ReplaceAllString(s, "")

	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = unicodeReplacer.Replace(s)
	s = controlCharsRegex.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = normalizeLineWhitespace(line)
	}
	s = strings.Join(lines, "\n")
	s = multipleNewlinesRegex.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}

// normalizeLineWhitespace collapses whitespace runs within a line.
func normalizeLineWhitespace(line string) string {
	var b strings.Builder
	space := false
	for _, r := range line {
		if unicode.IsSpace(r) {
			if !space {
				b.WriteRune(' ')
				space = true
			}
			continue
		}
		b.WriteRune(r)
		space = false
	}
	return strings.TrimSpace(b.String())
}
