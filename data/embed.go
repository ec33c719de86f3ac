// Package data embeds the versioned JSON resource documents consumed by
// the resource store at load time.
package data

import _ "embed"

//go:embed phonology.json
var Phonology []byte

//go:embed morphology.json
var Morphology []byte

//go:embed grammar.json
var Grammar []byte

//go:embed lexicon.json
var Lexicon []byte
