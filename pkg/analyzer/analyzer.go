package analyzer

import (
	"regexp"
	"strings"
)

// RequestType is a coarse classification of the request's intent.
type RequestType string

const (
	TypeGeneral        RequestType = "general"
	TypeCode           RequestType = "code"
	TypeMultimodal     RequestType = "multimodal"
	TypeMultimodalCode RequestType = "multimodal_code"
	TypeReasoning      RequestType = "reasoning"
	TypeToolUse        RequestType = "tool_use"
	TypeWebSearch      RequestType = "web_search"
)

// Profile is the capability-need profile derived from one request.
// It is immutable once built and never persisted.
type Profile struct {
	// NeedsImages is set when the payload carries image content.
	NeedsImages bool

	// NeedsCode is set when the prompt contains code-indicative tokens.
	NeedsCode bool

	// NeedsToolCalling is set when the payload declares tools.
	NeedsToolCalling bool

	// NeedsInternet is set when the prompt asks for live or grounded data.
	NeedsInternet bool

	// NeedsThinking is set when the request wants extended reasoning.
	NeedsThinking bool

	// NeedsFast is set when the caller explicitly asked for a fast model.
	NeedsFast bool

	// Type is the coarse request classification.
	Type RequestType

	// Keywords are lowercase prompt terms used for semantic scoring
	// against model descriptions. They never hard-filter models.
	Keywords []string
}

var wordPattern = regexp.MustCompile(`\b[a-z]{3,}\b`)

// Analyze derives a Profile from a decoded request payload. Both the
// generate shape (top-level "prompt") and the chat shape ("messages")
// are understood. Analyze never mutates the payload.
func Analyze(body map[string]any) Profile {
	p := Profile{Type: TypeGeneral}

	prompt := extractPrompt(body, &p)
	lower := strings.ToLower(prompt)

	if imgs, ok := body["images"].([]any); ok && len(imgs) > 0 {
		p.NeedsImages = true
	}

	for _, tok := range codeTokens {
		if strings.Contains(lower, tok) {
			p.NeedsCode = true
			break
		}
	}

	p.NeedsToolCalling = body["tools"] != nil || body["tool_choice"] != nil || anyToolCalls(body)
	p.NeedsInternet = needsInternet(body, lower)

	opts, _ := body["options"].(map[string]any)
	if opts["think"] != nil {
		p.NeedsThinking = true
	} else {
		for _, tok := range thinkingTokens {
			if strings.Contains(lower, tok) {
				p.NeedsThinking = true
				break
			}
		}
	}
	if fast, ok := opts["fast_model"].(bool); ok && fast {
		p.NeedsFast = true
	}

	p.Type = classify(p)
	p.Keywords = extractKeywords(lower)
	return p
}

// extractPrompt pulls the text to analyze from the payload. For chat
// payloads the last message carries the user's intent; multimodal
// content arrays also reveal image parts.
func extractPrompt(body map[string]any, p *Profile) string {
	if prompt, ok := body["prompt"].(string); ok {
		return prompt
	}
	msgs, ok := body["messages"].([]any)
	if !ok || len(msgs) == 0 {
		return ""
	}
	last, ok := msgs[len(msgs)-1].(map[string]any)
	if !ok {
		return ""
	}
	switch content := last["content"].(type) {
	case string:
		return content
	case []any:
		var text string
		for _, part := range content {
			pm, ok := part.(map[string]any)
			if !ok {
				continue
			}
			switch pm["type"] {
			case "text":
				if text == "" {
					text, _ = pm["text"].(string)
				}
			case "image", "image_url":
				p.NeedsImages = true
			}
		}
		return text
	}
	return ""
}

func anyToolCalls(body map[string]any) bool {
	msgs, _ := body["messages"].([]any)
	for _, m := range msgs {
		mm, ok := m.(map[string]any)
		if !ok {
			continue
		}
		if calls, ok := mm["tool_calls"].([]any); ok && len(calls) > 0 {
			return true
		}
	}
	return false
}

// needsInternet scans every message, not just the last one, since a
// system prompt can enable grounding for the whole conversation.
func needsInternet(body map[string]any, lowerPrompt string) bool {
	check := func(text string) bool {
		for _, tok := range internetTokens {
			if strings.Contains(text, tok) {
				return true
			}
		}
		if strings.Contains(text, "current") {
			for _, tok := range internetCurrentTokens {
				if strings.Contains(text, tok) {
					return true
				}
			}
		}
		return false
	}
	if check(lowerPrompt) {
		return true
	}
	msgs, _ := body["messages"].([]any)
	for _, m := range msgs {
		mm, ok := m.(map[string]any)
		if !ok {
			continue
		}
		if text, ok := mm["content"].(string); ok && check(strings.ToLower(text)) {
			return true
		}
	}
	return false
}

// classify maps the capability flags to a single request type. Order
// matters: image content dominates, then code, then the softer signals.
func classify(p Profile) RequestType {
	switch {
	case p.NeedsImages && p.NeedsCode:
		return TypeMultimodalCode
	case p.NeedsImages:
		return TypeMultimodal
	case p.NeedsCode:
		return TypeCode
	case p.NeedsThinking:
		return TypeReasoning
	case p.NeedsToolCalling:
		return TypeToolUse
	case p.NeedsInternet:
		return TypeWebSearch
	default:
		return TypeGeneral
	}
}

func extractKeywords(lower string) []string {
	words := wordPattern.FindAllString(lower, -1)
	var out []string
	for _, w := range words {
		if _, stop := stopWords[w]; stop {
			continue
		}
		out = append(out, w)
		if len(out) == maxKeywords {
			break
		}
	}
	return out
}
