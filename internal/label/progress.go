// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package label

import (
	"fmt"
	"io"
)

// Progress receives the number of clusters processed so far.
type Progress interface {
	Update(processed, total int)
}

// ProgressFunc adapts a function to Progress.
type ProgressFunc func(processed, total int)

// Update calls f.
func (f ProgressFunc) Update(processed, total int) { f(processed, total) }

type writerProgress struct {
	w     io.Writer
	query string
}

// WriterProgress prints one line per processed cluster to w.
func WriterProgress(w io.Writer, query string) Progress {
	return writerProgress{w: w, query: query}
}

func (p writerProgress) Update(processed, total int) {
	fmt.Fprintf(p.w, "Generating %s subtopics: %d/%d clusters\n", p.query, processed, total)
}

type nopProgress struct{}

func (nopProgress) Update(int, int) {}
