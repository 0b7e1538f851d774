// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package label

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/pdiddy/outline-engine/pkg/types"
)

// systemPrompt is sent unchanged with every chunk.
const systemPrompt = `# Task Overview:
You are provided with a general topic and a set of scientific papers retrieved by a lexical search system using this topic as a query. Your task is to analyze how the papers relate to the topic and categorize their relevance.

# Instructions:

Evaluate Relevance: Determine if the papers are directly related to the research topic.

- If they are not related to the research domain or do not address the topic directly, mark them as "NOT RELATED."
- If they are a genuine subtopic of the main topic, mark them as "RELATED."
- If the papers would not be relevant to a user searching for the main topic, consider them not related.
- If the papers do not address an explicit relation to the topic, consider them not related.

# Output Requirements:
Output should be a JSON with the following fields:
Description: Write a summary describing the common subtopic reflected in the research theme of the papers in the group in relation to the Topic.
Subtopic: Give a title for the group of papers that represents a meaningful subtopic of the Topic.
Relatedness: Rate the relatedness on a scale from 1 to 5, where 1 means not relevant at all, and 5 indicates the papers deal directly with the topic.
Is Related: State whether the papers are "RELATED" or "NOT RELATED" based on their relevance to the original topic.
- Write nothing else`

// chunkTmpl renders the user message for one chunk. Papers are numbered
// from zero within the chunk.
var chunkTmpl = template.Must(template.New("chunk").Parse(
	"Topic: {{.Query}}\nPapers: {{range $j, $p := .Papers}}\n{{$j}}: {{$p.Title}}\nAbstract: {{$p.Abstract}}{{end}}"))

type chunkData struct {
	Query  string
	Papers []types.Paper
}

// renderChunk returns the user message for papers.
func renderChunk(query string, papers []types.Paper) (string, error) {
	var buf bytes.Buffer
	if err := chunkTmpl.Execute(&buf, chunkData{Query: query, Papers: papers}); err != nil {
		return "", fmt.Errorf("rendering chunk prompt: %w", err)
	}
	return buf.String(), nil
}
