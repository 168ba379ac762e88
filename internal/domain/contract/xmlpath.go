package contract

import (
	"strings"

	"github.com/beevik/etree"
)

// fieldPath locates elements by local name, ignoring namespace prefixes.
// Notice documents mix prefix conventions (cac/cbc, eForms extensions, or
// none at all), so matching on the local tag is the only portable option.
//
// Semantics mirror the ".//a/b" XPath shape: the first segment matches any
// descendant of the search root, each following segment matches direct
// children. excludeAncestor skips matches nested under an element with that
// local name.
type fieldPath struct {
	segs            []string
	excludeAncestor string
}

func path(segs ...string) fieldPath {
	return fieldPath{segs: segs}
}

func (p fieldPath) notUnder(ancestor string) fieldPath {
	p.excludeAncestor = ancestor
	return p
}

// findAll returns all matches of p under root, in document order.
func findAll(root *etree.Element, p fieldPath) []*etree.Element {
	if root == nil || len(p.segs) == 0 {
		return nil
	}
	var heads []*etree.Element
	collectDescendants(root, p.segs[0], &heads)

	matches := heads
	for _, seg := range p.segs[1:] {
		var next []*etree.Element
		for _, e := range matches {
			for _, child := range e.ChildElements() {
				if child.Tag == seg {
					next = append(next, child)
				}
			}
		}
		matches = next
	}

	if p.excludeAncestor == "" {
		return matches
	}
	kept := matches[:0]
	for _, e := range matches {
		if !hasAncestor(e, root, p.excludeAncestor) {
			kept = append(kept, e)
		}
	}
	return kept
}

// findFirst returns the first match of p under root, nil when absent.
func findFirst(root *etree.Element, p fieldPath) *etree.Element {
	matches := findAll(root, p)
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

// firstText returns the trimmed text of the first candidate path that yields
// a non-empty element.
func firstText(root *etree.Element, candidates []fieldPath) string {
	for _, p := range candidates {
		if e := findFirst(root, p); e != nil {
			if txt := trimText(e); txt != "" {
				return txt
			}
		}
	}
	return ""
}

func collectDescendants(e *etree.Element, tag string, out *[]*etree.Element) {
	for _, child := range e.ChildElements() {
		if child.Tag == tag {
			*out = append(*out, child)
		}
		collectDescendants(child, tag, out)
	}
}

func hasAncestor(e, stop *etree.Element, tag string) bool {
	for p := e.Parent(); p != nil && p != stop; p = p.Parent() {
		if p.Tag == tag {
			return true
		}
	}
	return false
}

func trimText(e *etree.Element) string {
	if e == nil {
		return ""
	}
	return strings.TrimSpace(e.Text())
}

func attrOrText(e *etree.Element, attr string) string {
	if e == nil {
		return ""
	}
	if v := e.SelectAttrValue(attr, ""); v != "" {
		return v
	}
	return trimText(e)
}
