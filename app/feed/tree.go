package feed

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	xpp "github.com/mmcdole/goxpp"
	"golang.org/x/net/html/charset"
)

// Node is a named element of a parsed document. Name is the element name as
// the parser reports it, which may carry a "prefix:" or "{uri}" qualifier.
type Node interface {
	Name() string
	Text() string
	Attr(name string) string
	Children() []Node
}

// NameMatcher decides whether an element name stands for the wanted field
type NameMatcher func(name, field string) bool

// SuffixMatch compares the local part of name (after any "prefix:" or
// "{uri}" qualifier) with field, so "g:availability", "{uri}availability"
// and "availability" all match "availability".
func SuffixMatch(name, field string) bool {
	return LocalName(name) == field
}

// LocalName strips a namespace prefix or URI wrapper from name
func LocalName(name string) string {
	if i := strings.LastIndexAny(name, ":}"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Walk visits n and its descendants depth-first. Children of a node are
// skipped when visit returns false for it.
func Walk(n Node, visit func(Node) bool) {
	if !visit(n) {
		return
	}
	for _, child := range n.Children() {
		Walk(child, visit)
	}
}

// FindAll returns every element at any depth below root whose name matches
// field. Matched elements are not searched further.
func FindAll(root Node, field string, match NameMatcher) []Node {
	var found []Node
	for _, child := range root.Children() {
		Walk(child, func(n Node) bool {
			if match(n.Name(), field) {
				found = append(found, n)
				return false
			}
			return true
		})
	}
	return found
}

// FirstChild returns the first direct child of n whose name matches field
func FirstChild(n Node, field string, match NameMatcher) (Node, bool) {
	for _, child := range n.Children() {
		if match(child.Name(), field) {
			return child, true
		}
	}
	return nil, false
}

type element struct {
	local    string
	space    string
	attrs    []xml.Attr
	text     strings.Builder
	children []Node
}

func (e *element) Name() string {
	if e.space == "" {
		return e.local
	}
	return "{" + e.space + "}" + e.local
}

// Text returns the trimmed character data. The pull parser runs non-strict, so
// HTML named entities such as &nbsp; are passed through verbatim.
func (e *element) Text() string {
	return strings.TrimSpace(e.text.String())
}

func (e *element) Attr(name string) string {
	for _, attr := range e.attrs {
		if attr.Name.Local == name {
			return attr.Value
		}
	}
	return ""
}

func (e *element) Children() []Node {
	return e.children
}

var defaultNamespacePattern = regexp.MustCompile(`\sxmlns="[^"]*"`)

// stripDefaultNamespace removes the first default namespace declaration only.
// Documents declaring several conflicting defaults keep the later ones.
func stripDefaultNamespace(data []byte) []byte {
	loc := defaultNamespacePattern.FindIndex(data)
	if loc == nil {
		return data
	}

	stripped := make([]byte, 0, len(data)-(loc[1]-loc[0]))
	stripped = append(stripped, data[:loc[0]]...)
	return append(stripped, data[loc[1]:]...)
}

// BuildTree parses data into a node tree rooted at a synthetic document node
func BuildTree(data []byte) (Node, error) {
	p := xpp.NewXMLPullParser(bytes.NewReader(data), false, charset.NewReaderLabel)

	document := &element{local: "#document"}
	stack := []*element{document}

	for {
		event, err := p.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedFeed, err)
		}

		if event == xpp.EndDocument {
			break
		}

		top := stack[len(stack)-1]

		switch event {
		case xpp.StartTag:
			el := &element{local: p.Name, space: p.Space, attrs: p.Attrs}
			top.children = append(top.children, el)
			stack = append(stack, el)
		case xpp.EndTag:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case xpp.Text:
			top.text.WriteString(p.Text)
		}
	}

	if len(stack) != 1 {
		return nil, fmt.Errorf("%w: unexpected end of document inside <%s>", ErrMalformedFeed, stack[len(stack)-1].local)
	}
	if len(document.children) == 0 {
		return nil, fmt.Errorf("%w: document has no root element", ErrMalformedFeed)
	}

	return document, nil
}
