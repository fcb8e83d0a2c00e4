package llm

// fallbackLimit is how many characters of the document the no-credential
// summary keeps.
const fallbackLimit = 200

// FallbackSummary is the pipeline used when no API key accompanies a PDF
// upload: the first 200 characters of the text, with an ellipsis when
// truncated. Counted in runes so multibyte text is never split.
func FallbackSummary(text string) string {
	runes := []rune(text)
	if len(runes) > fallbackLimit {
		return string(runes[:fallbackLimit]) + "..."
	}
	return text
}
