// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ClusterSet maps cluster id to its papers in the order the clustering step
// wrote them.
type ClusterSet = orderedmap.OrderedMap[string, []Paper]

// NewClusterSet returns an empty ClusterSet.
func NewClusterSet() *ClusterSet {
	return orderedmap.New[string, []Paper]()
}

// Relatedness labels used by the chat model.
const (
	LabelRelated    = "RELATED"
	LabelNotRelated = "NOT RELATED"
)

// removedMarker is the JSON form of a removed cluster outcome.
const removedMarker = "Removed"

// Relatedness is the model's 1-5 rating of how closely a cluster relates to
// the query topic. It decodes from JSON numbers and numeric strings and keeps
// fractional ratings as given.
type Relatedness float64

// UnmarshalJSON accepts 4, 4.5 and "4".
func (r *Relatedness) UnmarshalJSON(data []byte) error {
	s := ScalarString(data)
	if s == "" {
		*r = 0
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("relatedness %s is not a number", data)
	}
	*r = Relatedness(f)
	return nil
}

// SubtopicInfo is the label the chat model assigns to a cluster.
type SubtopicInfo struct {
	Description string      `json:"Description" yaml:"description"`
	Subtopic    string      `json:"Subtopic" yaml:"subtopic"`
	Relatedness Relatedness `json:"Relatedness" yaml:"relatedness"`
	IsRelated   string      `json:"Is Related" yaml:"is_related"`
}

// ClusterOutcome is either a Labelled subtopic or Removed. The zero value is
// Removed.
type ClusterOutcome struct {
	info *SubtopicInfo
}

// Labelled returns an outcome carrying info.
func Labelled(info SubtopicInfo) ClusterOutcome {
	return ClusterOutcome{info: &info}
}

// Removed returns the outcome for a cluster that was skipped or whose every
// chunk was dropped.
func Removed() ClusterOutcome {
	return ClusterOutcome{}
}

// IsRemoved reports whether the cluster was removed.
func (o ClusterOutcome) IsRemoved() bool { return o.info == nil }

// Subtopic returns the label and true for a Labelled outcome.
func (o ClusterOutcome) Subtopic() (SubtopicInfo, bool) {
	if o.info == nil {
		return SubtopicInfo{}, false
	}
	return *o.info, true
}

// IsRelated reports whether the outcome is Labelled and marked exactly RELATED.
func (o ClusterOutcome) IsRelated() bool {
	return o.info != nil && o.info.IsRelated == LabelRelated
}

// MarshalJSON writes the SubtopicInfo object, or the string "Removed".
func (o ClusterOutcome) MarshalJSON() ([]byte, error) {
	if o.info == nil {
		return json.Marshal(removedMarker)
	}
	return json.Marshal(o.info)
}

// UnmarshalJSON reads either form written by MarshalJSON. Any string or null
// decodes as Removed.
func (o *ClusterOutcome) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] == '"' || string(data) == "null" {
		*o = Removed()
		return nil
	}
	var info SubtopicInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return fmt.Errorf("decoding subtopic: %w", err)
	}
	*o = Labelled(info)
	return nil
}

// LabelledCluster pairs a cluster's outcome with its original papers. Its
// JSON form is a two-element array.
type LabelledCluster struct {
	Outcome ClusterOutcome
	Papers  []Paper
}

// MarshalJSON writes [outcome, papers].
func (c LabelledCluster) MarshalJSON() ([]byte, error) {
	papers := c.Papers
	if papers == nil {
		papers = []Paper{}
	}
	return json.Marshal([]any{c.Outcome, papers})
}

// UnmarshalJSON reads [outcome, papers].
func (c *LabelledCluster) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("decoding labelled cluster: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("labelled cluster has %d elements, want 2", len(pair))
	}
	var out LabelledCluster
	if err := json.Unmarshal(pair[0], &out.Outcome); err != nil {
		return err
	}
	if err := json.Unmarshal(pair[1], &out.Papers); err != nil {
		return fmt.Errorf("decoding cluster papers: %w", err)
	}
	*c = out
	return nil
}

// LabelledSet maps cluster id to its labelled cluster, preserving the order
// of the input ClusterSet.
type LabelledSet = orderedmap.OrderedMap[string, LabelledCluster]

// NewLabelledSet returns an empty LabelledSet.
func NewLabelledSet() *LabelledSet {
	return orderedmap.New[string, LabelledCluster]()
}
