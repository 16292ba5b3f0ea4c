package embedding

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	tk     *tiktoken.Tiktoken
	tkErr  error
	tkOnce sync.Once
)

func getTokenizer() (*tiktoken.Tiktoken, error) {
	tkOnce.Do(func() {
		tk, tkErr = tiktoken.GetEncoding("cl100k_base")
	})
	return tk, tkErr
}

// Truncate limits text to maxTokens cl100k tokens. When the encoding cannot
// be loaded it falls back to a rough four runes per token.
func Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 || text == "" {
		return text
	}

	enc, err := getTokenizer()
	if err != nil {
		return truncateRunes(text, maxTokens*4)
	}

	ids := enc.Encode(text, nil, nil)
	if len(ids) <= maxTokens {
		return text
	}
	return enc.Decode(ids[:maxTokens])
}

func truncateRunes(text string, maxRunes int) string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	return string(runes[:maxRunes])
}
