package scrub

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/HarikrishnaNgangbam/Scrub-SVG/xmltree"
)

var metadataTags = map[string]bool{
	"title":    true,
	"desc":     true,
	"metadata": true,
}

var editorNamespaceDecls = map[string]bool{
	"xmlns:inkscape": true,
	"xmlns:sodipodi": true,
	"xmlns:rdf":      true,
	"xmlns:cc":       true,
	"xmlns:dc":       true,
}

var (
	identityTranslateRE = regexp.MustCompile(`translate\(0(?:\s*,\s*|\s+)0\)`)
	whitespaceRunRE     = regexp.MustCompile(`\s+`)
)

var hiddenStyleSubstrings = []string{
	"display:none",
	"display: none",
	"visibility:hidden",
	"visibility: hidden",
}

// stripMetadata removes title, desc and metadata elements, XML comments and
// editor-specific attributes everywhere in the tree.
func (o *Scrubber) stripMetadata(doc *xmltree.Document) {
	for _, n := range doc.Nodes() {
		switch n.Type {
		case xmltree.ElementNode:
			if metadataTags[n.Data] {
				n.Remove()
				continue
			}
			removeEditorAttrs(n)
		case xmltree.CommentNode:
			if !o.KeepComments {
				n.Remove()
			}
		}
	}
}

func removeEditorAttrs(el *xmltree.Node) {
	kept := el.Attrs[:0]
	for _, a := range el.Attrs {
		if strings.HasPrefix(a.Name, "inkscape:") || a.Name == "sodipodi:docname" || editorNamespaceDecls[a.Name] {
			continue
		}
		kept = append(kept, a)
	}
	el.Attrs = kept
}

// normalizeDimensions synthesizes a viewBox from numeric width/height when
// the root svg lacks one, then drops width and height from the root either
// way.
func normalizeDimensions(doc *xmltree.Document) {
	root := doc.Root
	if root == nil {
		return
	}
	if !root.HasAttr("viewBox") {
		w, okw := root.Attr("width")
		h, okh := root.Attr("height")
		if okw && okh {
			if wn, ok := finiteNumber(w); ok {
				if hn, ok := finiteNumber(h); ok {
					root.SetAttr("viewBox", "0 0 "+wn+" "+hn)
				}
			}
		}
	}
	root.RemoveAttr("width")
	root.RemoveAttr("height")
}

// finiteNumber returns the trimmed string when it parses as a finite number.
func finiteNumber(s string) (string, bool) {
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return "", false
	}
	return s, true
}

// flattenGroups replaces every g element that carries none of transform,
// style, class or id with its children. The pre-flattening element set is
// processed once, so nested groups are judged on their original attributes.
func flattenGroups(doc *xmltree.Document) {
	for _, el := range doc.Elements() {
		if el.Data != "g" {
			continue
		}
		if el.HasAttr("transform") || el.HasAttr("style") || el.HasAttr("class") || el.HasAttr("id") {
			continue
		}
		el.ReplaceWithChildren()
	}
}

// pruneHidden removes elements that are invisible by attribute or by a
// literal display:none / visibility:hidden inside their style attribute.
// Matching is plain substring search, not CSS parsing.
func pruneHidden(doc *xmltree.Document) {
	for _, el := range doc.Elements() {
		if el.Detached() {
			continue
		}
		if isHidden(el) {
			el.Remove()
		}
	}
}

func isHidden(el *xmltree.Node) bool {
	if v, ok := el.Attr("display"); ok && v == "none" {
		return true
	}
	if v, ok := el.Attr("visibility"); ok && v == "hidden" {
		return true
	}
	if v, ok := el.Attr("style"); ok {
		for _, sub := range hiddenStyleSubstrings {
			if strings.Contains(v, sub) {
				return true
			}
		}
	}
	return false
}

// simplifyTransforms strips the identity fragments translate(0,0),
// translate(0 0) and scale(1) from transform attributes that contain one of
// them verbatim. Anything else is left byte-for-byte unchanged.
func simplifyTransforms(doc *xmltree.Document) {
	for _, el := range doc.Elements() {
		v, ok := el.Attr("transform")
		if !ok {
			continue
		}
		if !strings.Contains(v, "translate(0,0)") && !strings.Contains(v, "translate(0 0)") && !strings.Contains(v, "scale(1)") {
			continue
		}
		v = identityTranslateRE.ReplaceAllString(v, "")
		v = strings.ReplaceAll(v, "scale(1)", "")
		v = strings.TrimSpace(whitespaceRunRE.ReplaceAllString(v, " "))
		if v == "" {
			el.RemoveAttr("transform")
		} else {
			el.SetAttr("transform", v)
		}
	}
}

// cleanStyleAttrs drops style attributes whose value is blank.
func cleanStyleAttrs(doc *xmltree.Document) {
	for _, el := range doc.Elements() {
		if v, ok := el.Attr("style"); ok && strings.TrimSpace(v) == "" {
			el.RemoveAttr("style")
		}
	}
}

// cleanTextContent strips zero-width characters and surrounding whitespace
// from the direct text content of text and tspan elements.
func cleanTextContent(doc *xmltree.Document) {
	for _, el := range doc.Elements() {
		if el.Data != "text" && el.Data != "tspan" {
			continue
		}
		for _, c := range el.Children {
			if c.Type != xmltree.TextNode {
				continue
			}
			cleaned := strings.TrimSpace(stripZeroWidth(c.Data))
			if cleaned != c.Data {
				c.Data = cleaned
			}
		}
	}
}

// sanitizeValues transliterates class-like attribute values, rewrites
// url(#id) references inside attribute values that contain non-ASCII
// characters, and cleans url(#id) references and class selectors inside
// style blocks with non-ASCII content.
func sanitizeValues(doc *xmltree.Document, refs *RefIndex) {
	for _, el := range doc.Elements() {
		attrs := append([]xmltree.Attr(nil), el.Attrs...)
		for _, a := range attrs {
			if !sanitizableAttrName(a.Name) {
				continue
			}
			clean := Transliterate(a.Value)
			if clean == "" {
				el.RemoveAttr(a.Name)
			} else if clean != a.Value {
				el.SetAttr(a.Name, clean)
			}
		}
	}
	for _, site := range refs.urlAttrs {
		v, ok := site.El.Attr(site.Attr)
		if !ok || !hasNonASCII(v) || !strings.Contains(v, "url(#") {
			continue
		}
		site.El.SetAttr(site.Attr, rewriteURLRefs(v))
	}
	for _, tn := range refs.styleTexts {
		if !hasNonASCII(tn.Data) {
			continue
		}
		tn.Data = rewriteClassSelectors(rewriteURLRefs(tn.Data))
	}
}

// id is cleaned by sanitizeIDs instead, which records the old to new mapping
// that reference rewriting needs.
func sanitizableAttrName(name string) bool {
	if name == "class" || name == "inkscape:label" {
		return true
	}
	return strings.Contains(name, "aria-") || strings.Contains(name, "data-")
}

type idMapping struct {
	old string
	new string
}

// sanitizeIDs transliterates every id attribute. Changed ids are recorded as
// old to new mappings; ids that come out empty are removed without a
// mapping. When two ids collide after transliteration the last write wins.
func sanitizeIDs(doc *xmltree.Document) []idMapping {
	var maps []idMapping
	for _, el := range doc.Elements() {
		id, ok := el.Attr("id")
		if !ok {
			continue
		}
		clean := Transliterate(id)
		if clean == id {
			continue
		}
		if clean == "" {
			el.RemoveAttr("id")
			continue
		}
		el.SetAttr("id", clean)
		maps = append(maps, idMapping{id, clean})
	}
	return maps
}

// rewriteRefs applies the id mappings to every recorded reference site:
// url(#old) occurrences in attribute values and style text, and attribute
// values exactly equal to #old.
func rewriteRefs(refs *RefIndex, maps []idMapping) {
	for _, m := range maps {
		oldURL := "url(#" + m.old + ")"
		newURL := "url(#" + m.new + ")"
		for _, site := range refs.Sites(m.old) {
			if site.Text != nil {
				site.Text.Data = strings.ReplaceAll(site.Text.Data, oldURL, newURL)
				continue
			}
			v, ok := site.El.Attr(site.Attr)
			if !ok {
				continue
			}
			if strings.Contains(v, oldURL) {
				v = strings.ReplaceAll(v, oldURL, newURL)
			}
			if v == "#"+m.old {
				v = "#" + m.new
			}
			site.El.SetAttr(site.Attr, v)
		}
	}
}
