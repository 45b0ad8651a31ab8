package usecases

import (
	"regexp"
	"strings"
)

// sentenceRe matches one sentence: text up to terminal punctuation, or a
// trailing fragment without any. Abbreviations like "Dr." split wrong and
// that is accepted.
var sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]+|[^.!?]+$`)

// SplitParagraphs chops text into paragraphs of groupSize sentences each,
// splitting on terminal punctuation. Empty input yields nil.
func SplitParagraphs(text string, groupSize int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if groupSize <= 0 {
		groupSize = 2
	}

	var sentences []string
	for _, m := range sentenceRe.FindAllString(text, -1) {
		if s := strings.TrimSpace(m); s != "" {
			sentences = append(sentences, s)
		}
	}

	var paras []string
	for i := 0; i < len(sentences); i += groupSize {
		end := i + groupSize
		if end > len(sentences) {
			end = len(sentences)
		}
		paras = append(paras, strings.Join(sentences[i:end], " "))
	}
	return paras
}
