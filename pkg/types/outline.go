// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import orderedmap "github.com/wk8/go-ordered-map/v2"

// Chapter is one top-level grouping of subtopics in the outline.
type Chapter struct {
	// SubtopicIDs lists the cluster ids of the subtopics in this chapter.
	SubtopicIDs []string `json:"cluster_id" yaml:"cluster_id"`

	// Description is the model's summary of the chapter.
	Description string `json:"description" yaml:"description"`

	// Subtopics holds the label of each entry in SubtopicIDs, index for index.
	Subtopics []ClusterOutcome `json:"subtopics" yaml:"-"`
}

// Outline maps chapter title to chapter, in order of first assignment.
type Outline = orderedmap.OrderedMap[string, *Chapter]

// NewOutline returns an empty Outline.
func NewOutline() *Outline {
	return orderedmap.New[string, *Chapter]()
}
