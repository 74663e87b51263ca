package feed

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// node is one element of the feed document.
type node struct {
	Tag      string
	Attrs    map[string]string
	Children []*node
	Line     int

	text strings.Builder
}

// Text returns the element's own character data, trimmed.
func (n *node) Text() string {
	return strings.TrimSpace(n.text.String())
}

// Attr returns the trimmed value of attribute name.
func (n *node) Attr(name string) (string, bool) {
	v, ok := n.Attrs[name]
	return strings.TrimSpace(v), ok
}

// childrenNamed returns the direct children with tag.
func (n *node) childrenNamed(tag string) []*node {
	var out []*node
	for _, c := range n.Children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

func (n *node) hasChild(tag string) bool {
	for _, c := range n.Children {
		if c.Tag == tag {
			return true
		}
	}
	return false
}

// readTree decodes the whole document into a node tree. Feeds declaring a
// non UTF-8 encoding are transcoded on the fly.
func readTree(r io.Reader) (*node, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var root *node
	var stack []*node
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line, _ := dec.InputPos()
			return nil, &ParseError{Line: line, Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			line, _ := dec.InputPos()
			n := &node{
				Tag:   t.Name.Local,
				Attrs: make(map[string]string, len(t.Attr)),
				Line:  line,
			}
			for _, a := range t.Attr {
				n.Attrs[a.Name.Local] = a.Value
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			} else if root == nil {
				root = n
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}

	if root == nil {
		return nil, &ParseError{Err: errors.New("document has no root element")}
	}
	return root, nil
}
