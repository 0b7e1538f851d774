// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import "strings"

const (
	fenceJSON = "```json"
	fence     = "```"
)

// StripCodeFence removes a Markdown code fence wrapped around a model reply.
//
// The input is trimmed; a leading "```json" (or bare "```") and a trailing
// "```" are removed when present, and the remainder is trimmed again. Text
// without fences is returned trimmed and otherwise unchanged, so for any
// payload p with no surrounding whitespace,
// StripCodeFence("```json\n" + p + "\n```") == p.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, fenceJSON):
		s = s[len(fenceJSON):]
	case strings.HasPrefix(s, fence):
		s = s[len(fence):]
	}
	s = strings.TrimSuffix(s, fence)
	return strings.TrimSpace(s)
}
