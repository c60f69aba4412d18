package scrub

import (
	"bytes"

	"github.com/HarikrishnaNgangbam/Scrub-SVG/xmltree"
)

// Result is the outcome of one cleaning invocation. Sizes are UTF-8 byte
// lengths.
type Result struct {
	Data         string
	OriginalSize int
	CleanedSize  int
}

// Savings returns how many percent smaller the cleaned output is.
func (r Result) Savings() float64 {
	if r.OriginalSize == 0 {
		return 0
	}
	return float64(r.OriginalSize-r.CleanedSize) / float64(r.OriginalSize) * 100
}

// Scrubber cleans SVG sources. The zero value is ready to use.
type Scrubber struct {
	KeepComments bool
}

// DefaultScrubber is used by the package-level Clean functions.
var DefaultScrubber = &Scrubber{}

// Clean cleans an SVG source using the default scrubber.
func Clean(b []byte) (Result, error) {
	return DefaultScrubber.Clean(b)
}

// CleanString cleans an SVG source string using the default scrubber.
func CleanString(s string) (Result, error) {
	return DefaultScrubber.Clean([]byte(s))
}

// Clean parses the source, runs the cleaning passes in their fixed order,
// serializes the mutated tree and formats the result. A parse failure aborts
// the whole call; no partial output is ever returned. Each invocation works
// on its own tree, so a Scrubber may be shared between goroutines.
func (o *Scrubber) Clean(b []byte) (Result, error) {
	doc, err := xmltree.Parse(b)
	if err != nil {
		return Result{}, err
	}

	o.stripMetadata(doc)
	normalizeDimensions(doc)
	// identity transforms and blank styles are stripped before flattening so
	// that groups they would otherwise shield flatten in the same run
	simplifyTransforms(doc)
	cleanStyleAttrs(doc)
	flattenGroups(doc)
	pruneHidden(doc)
	cleanTextContent(doc)

	refs := buildRefIndex(doc)
	sanitizeValues(doc, refs)
	rewriteRefs(refs, sanitizeIDs(doc))

	var out bytes.Buffer
	if err := doc.Serialize(&out); err != nil {
		return Result{}, err
	}
	data := Format(out.String())
	return Result{Data: data, OriginalSize: len(b), CleanedSize: len(data)}, nil
}
