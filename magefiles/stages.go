//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Stage targets build the CLI and run one pipeline stage for a query.
type Stage mg.Namespace

// Fetch retrieves papers for query into Data/<query>/<query>.jsonl.
func (Stage) Fetch(query string) error {
	mg.Deps(Build)
	return sh.RunV(binPath, "fetch", "--query", query)
}

// Embed embeds the fetched papers of query.
func (Stage) Embed(query string) error {
	mg.Deps(Build)
	return sh.RunV(binPath, "embed", "--query", query)
}

// Label names the clusters of query with subtopics.
func (Stage) Label(query string) error {
	mg.Deps(Build)
	return sh.RunV(binPath, "label", "--query", query)
}

// Outline assembles the chapter outline of query.
func (Stage) Outline(query string) error {
	mg.Deps(Build)
	return sh.RunV(binPath, "outline", "--query", query, "--yaml")
}

// Pipeline runs label then outline for query.
func (Stage) Pipeline(query string) error {
	mg.Deps(Build)
	return sh.RunV(binPath, "pipeline", "--query", query, "--yaml")
}
