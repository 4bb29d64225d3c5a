package ooxml

import (
	"encoding/xml"
	"strings"

	"github.com/antchfx/xmlquery"
)

// Elem builds a namespaced element node. The name is given in prefixed form
// ("w:ins"); attributes alternate key, value.
func Elem(name string, attrs ...string) *xmlquery.Node {
	prefix, local := splitName(name)
	n := &xmlquery.Node{
		Type:   xmlquery.ElementNode,
		Prefix: prefix,
		Data:   local,
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		SetAttr(n, attrs[i], attrs[i+1])
	}
	return n
}

// Attr returns the value of an attribute, matching on the local name so
// that parsed and constructed nodes compare the same way.
func Attr(n *xmlquery.Node, name string) string {
	_, local := splitName(name)
	for _, a := range n.Attr {
		if a.Name.Local == local || a.Name.Space+":"+a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// SetAttr sets (or replaces) an attribute given in prefixed form.
func SetAttr(n *xmlquery.Node, name, value string) {
	prefix, local := splitName(name)
	for i, a := range n.Attr {
		if a.Name.Local == local && (a.Name.Space == prefix || a.Name.Space == "") {
			n.Attr[i].Value = value
			return
		}
	}
	n.Attr = append(n.Attr, xmlquery.Attr{
		Name:  xml.Name{Space: prefix, Local: local},
		Value: value,
	})
}

// AppendChild adds child as the last child of parent.
func AppendChild(parent, child *xmlquery.Node) {
	xmlquery.AddChild(parent, child)
}

// InsertBefore places n immediately before ref under the same parent.
func InsertBefore(ref, n *xmlquery.Node) {
	n.Parent = ref.Parent
	n.PrevSibling = ref.PrevSibling
	n.NextSibling = ref
	if ref.PrevSibling != nil {
		ref.PrevSibling.NextSibling = n
	} else if ref.Parent != nil {
		ref.Parent.FirstChild = n
	}
	ref.PrevSibling = n
}

// InsertAfter places n immediately after ref under the same parent.
func InsertAfter(ref, n *xmlquery.Node) {
	n.Parent = ref.Parent
	n.NextSibling = ref.NextSibling
	n.PrevSibling = ref
	if ref.NextSibling != nil {
		ref.NextSibling.PrevSibling = n
	} else if ref.Parent != nil {
		ref.Parent.LastChild = n
	}
	ref.NextSibling = n
}

// Remove detaches n from its tree.
func Remove(n *xmlquery.Node) {
	xmlquery.RemoveFromTree(n)
}

// FindOne runs an XPath query and returns the first match or nil.
func FindOne(doc *xmlquery.Node, expr string) *xmlquery.Node {
	n, err := xmlquery.Query(doc, expr)
	if err != nil {
		return nil
	}
	return n
}

// FindAll runs an XPath query and returns every match.
func FindAll(doc *xmlquery.Node, expr string) []*xmlquery.Node {
	nodes, err := xmlquery.QueryAll(doc, expr)
	if err != nil {
		return nil
	}
	return nodes
}

// Child returns the first element child with the given prefixed name.
func Child(n *xmlquery.Node, name string) *xmlquery.Node {
	prefix, local := splitName(name)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && c.Data == local && (prefix == "" || c.Prefix == prefix) {
			return c
		}
	}
	return nil
}

// Children returns all element children with the given prefixed name.
func Children(n *xmlquery.Node, name string) []*xmlquery.Node {
	prefix, local := splitName(name)
	var out []*xmlquery.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && c.Data == local && (prefix == "" || c.Prefix == prefix) {
			out = append(out, c)
		}
	}
	return out
}

// EnsureChild returns the named child, creating and appending it if absent.
func EnsureChild(n *xmlquery.Node, name string) *xmlquery.Node {
	if c := Child(n, name); c != nil {
		return c
	}
	c := Elem(name)
	AppendChild(n, c)
	return c
}

// Text builds a text node.
func Text(s string) *xmlquery.Node {
	return &xmlquery.Node{Type: xmlquery.TextNode, Data: s}
}

// InnerText returns the concatenated text content below n.
func InnerText(n *xmlquery.Node) string {
	return n.InnerText()
}

func splitName(name string) (prefix, local string) {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}
