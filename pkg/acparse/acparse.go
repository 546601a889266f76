// Package acparse is the public entry point for embedding the Asheron's
// Call capture dissection pipeline in another program.
package acparse

import (
	"github.com/amoeba/ac-pcap-parser/internal/entity"
	"github.com/amoeba/ac-pcap-parser/internal/fragment"
	"github.com/amoeba/ac-pcap-parser/internal/parse"
)

// Config selects the tunable parts of the pipeline.
type Config = parse.Config

// DefaultConfig returns the defaults used by the parse-capture command.
func DefaultConfig() Config {
	return parse.DefaultConfig()
}

// FragmentConfig bounds the fragment assembler's in-flight state.
type FragmentConfig = fragment.Config

// Result is everything one Capture call returns.
type Result = parse.Result

// Diagnostics counts the recoverable conditions encountered while parsing.
type Diagnostics = parse.Diagnostics

// ParsedPacket is one capture record's outcome.
type ParsedPacket = parse.ParsedPacket

// Entity is one in-world object and its extracted property bag.
type Entity = entity.Entity

// PropertyKey names one property slot on an Entity.
type PropertyKey = entity.PropertyKey

// Capture runs the full pipeline over the capture file at path: container
// iteration, transport framing, fragment reassembly, message dissection,
// and entity extraction.
func Capture(path string, cfg Config) (Result, error) {
	return parse.Capture(path, cfg)
}
