// Package resolve bridges the compiler's importer protocol with a host
// module resolver: it derives candidate requests for an import url, walks
// them through the resolver and classifies the winner as inline content or
// a file reference.
package resolve

import (
	"path"
	"strings"
)

// CandidateKind names the convention a candidate request was derived under.
type CandidateKind int

const (
	// CandidateDirect is the url exactly as requested.
	CandidateDirect CandidateKind = iota
	// CandidateCSS swaps the extension for .css.
	CandidateCSS
	// CandidatePartial prefixes the base name with an underscore, the
	// naming convention for importable partial files.
	CandidatePartial
)

func (k CandidateKind) String() string {
	switch k {
	case CandidateDirect:
		return "direct"
	case CandidateCSS:
		return "css"
	case CandidatePartial:
		return "partial"
	default:
		return "unknown"
	}
}

// Candidate is a single resolution request derived from an import url.
type Candidate struct {
	Request string
	Kind    CandidateKind
}

// Candidates derives the resolution requests for url in the order they must
// be tried. The first success wins; when everything fails the last entry is
// the fallback handed back to the compiler. The directory prefix of url is
// preserved for every guess.
func Candidates(url string) []Candidate {
	dir, file := path.Split(url)
	ext := path.Ext(file)
	base := strings.TrimSuffix(file, ext)

	return []Candidate{
		{Request: url, Kind: CandidateDirect},
		{Request: dir + base + ".css", Kind: CandidateCSS},
		{Request: dir + "_" + base + ext, Kind: CandidatePartial},
	}
}
