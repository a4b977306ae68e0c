package tokens

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

var (
	mu        sync.Mutex
	encodings = make(map[string]*tiktoken.Tiktoken)
)

// Estimate returns the token count of text for the given model. It uses the
// model's real BPE encoding when tiktoken knows the model and falls back to
// an upper-biased heuristic otherwise, so callers always get a usable count.
func Estimate(model, text string) int {
	if text == "" {
		return 0
	}
	if enc := encodingFor(model); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return heuristic(text)
}

// EstimateAll sums Estimate over every text.
func EstimateAll(model string, texts ...string) int {
	total := 0
	for _, text := range texts {
		total += Estimate(model, text)
	}
	return total
}

func encodingFor(model string) *tiktoken.Tiktoken {
	model = strings.TrimSpace(model)
	if model == "" {
		return nil
	}
	mu.Lock()
	defer mu.Unlock()
	if enc, ok := encodings[model]; ok {
		return enc
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		encodings[model] = nil
		return nil
	}
	encodings[model] = enc
	return enc
}

// heuristic over-estimates: ~1 token per 2 runes, never below word count.
func heuristic(text string) int {
	runes := utf8.RuneCountInString(text)
	words := len(strings.Fields(text))
	byRunes := (runes + 1) / 2
	if byRunes < words {
		return words
	}
	return byRunes
}
