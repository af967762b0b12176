package assistant

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sasanktumpati/polyglot/internal/languages"
)

// Classification is the classifier's verdict on a query's language.
type Classification struct {
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
}

// ParseClassification decodes the classifier output. It accepts either a raw
// JSON object or a larger string containing the first valid JSON object
// fragment.
func ParseClassification(text string) (Classification, error) {
	candidate := strings.TrimSpace(text)
	if candidate == "" {
		return Classification{}, errors.New("empty classifier response")
	}

	var parsed Classification
	if json.Unmarshal([]byte(candidate), &parsed) == nil {
		parsed.normalize()
		return parsed, nil
	}

	fragment, ok := firstJSONObject(candidate)
	if !ok {
		return Classification{}, fmt.Errorf("classifier response is not valid JSON")
	}
	if err := json.Unmarshal([]byte(fragment), &parsed); err != nil {
		return Classification{}, fmt.Errorf("decode classifier JSON response: %w", err)
	}
	parsed.normalize()
	return parsed, nil
}

func (c *Classification) normalize() {
	c.Language = strings.Trim(strings.TrimSpace(c.Language), `."'`)
	if c.Confidence < 0 {
		c.Confidence = 0
	}
	if c.Confidence > 1 {
		c.Confidence = 1
	}
}

func firstJSONObject(s string) (string, bool) {
	start := strings.IndexRune(s, '{')
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			if escaped {
				escaped = false
				continue
			}
			if ch == '\\' {
				escaped = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}

// ResponderPrompt returns the system prompt for a language responder.
func ResponderPrompt(r languages.Responder, allowMarkdown bool) string {
	formatInstruction := "Use plain text only (no markdown formatting, headings, bullet markers, or code fences)."
	if allowMarkdown {
		formatInstruction = "Use clean Markdown where it helps (short headings, concise bullet lists, inline code). " +
			"Keep formatting readable and minimal."
	}
	return fmt.Sprintf("%s.\n%s.\n%s", r.Persona, r.Instructions, formatInstruction)
}

// ClassifierPrompt returns the system prompt asking the model to name the
// natural language of the user's message.
func ClassifierPrompt(supported []string) string {
	return "You are a language router that directs questions to the appropriate language agent. " +
		"Identify the natural language the user's message is written in. " +
		"Return only strict JSON with exactly these keys: language, confidence. " +
		"Set language to the English name of the language (for example \"English\", \"French\"). " +
		"Set confidence to a number between 0 and 1. " +
		fmt.Sprintf("Supported languages are: %s. ", strings.Join(supported, ", ")) +
		"Always report the language actually used, even when it is not supported. " +
		"Do not answer the message and do not include any text outside JSON."
}
