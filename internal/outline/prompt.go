// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package outline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// systemTmpl is the outline prompt; the query is quoted into it twice.
var systemTmpl = template.Must(template.New("outline").Parse(`You are given a nested dictionary where each key is a subtopic_id and the value is a dictionary of subtopics of the topic "{{.Query}}". Reflect on the subtopics and their descriptions and define clusters of topics that group the subtopics into meaningful research clusters. Create the clusters as an outline where each cluster is a foundational chapter about "{{.Query}}". Those clusters will be used by a user to navigate between different domains of the research topic. Give each topic a clear label and describe the subtopics that the cluster is dealing with. Output must be in JSON. Do not leave any subtopic without a cluster.

## Output
- Output a JSON object with:
  - clusters: list of dictionaries with digits from '1' to 'N' containing "cluster_id", "cluster_title", and "description".
  - subtopics: dictionary with the subtopic_id as a field and the appropriate cluster id as a key for each subtopic in the input.`))

func renderSystem(query string) (string, error) {
	var buf bytes.Buffer
	if err := systemTmpl.Execute(&buf, struct{ Query string }{query}); err != nil {
		return "", fmt.Errorf("rendering outline prompt: %w", err)
	}
	return buf.String(), nil
}

func renderUser(related *orderedmap.OrderedMap[string, Entry]) (string, error) {
	data, err := json.Marshal(related)
	if err != nil {
		return "", fmt.Errorf("encoding subtopic dictionary: %w", err)
	}
	return "Subtopic dictionary: " + string(data), nil
}
