// Package schemas embeds the JSON Schemas describing the sifter's input
// document and run result.
package schemas

import "embed"

// Schema file names
const (
	RunResult = "run_result.schema.json"
	Document  = "document.schema.json"
)

// Files holds every *.schema.json file of this directory.
//
//go:embed *.schema.json
var Files embed.FS
