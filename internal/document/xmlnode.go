package document

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const xmlSpaceNS = "http://www.w3.org/XML/1998/namespace"

// xmlNode kinds.
const (
	elemNode = iota
	textNode
	commentNode
	procInstNode
	directiveNode
)

// xmlNode is one node of a generic XML tree that preserves attribute
// order, child order and character data, so an unmodified tree
// serializes back to equivalent markup. Element names and namespaced
// attribute names carry the resolved namespace URI in Name.Space; the
// original prefixes are restored at serialization time from the
// xmlns declarations harvested out of the parsed document.
type xmlNode struct {
	kind     int
	name     xml.Name
	attrs    []xml.Attr
	children []*xmlNode
	data     string // text, comment and directive content; procinst body
}

// parseXMLTree decodes an XML document into prolog nodes (everything
// before the root element, typically the XML declaration) and the root
// element tree.
func parseXMLTree(data []byte) (prolog []*xmlNode, root *xmlNode, err error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var stack []*xmlNode

	appendLoose := func(n *xmlNode) {
		if len(stack) > 0 {
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, n)
		} else if root == nil {
			prolog = append(prolog, n)
		}
	}

	for {
		tok, terr := dec.Token()
		if errors.Is(terr, io.EOF) {
			break
		}
		if terr != nil {
			return nil, nil, terr
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &xmlNode{kind: elemNode, name: t.Name}
			if len(t.Attr) > 0 {
				n.attrs = make([]xml.Attr, len(t.Attr))
				copy(n.attrs, t.Attr)
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, nil, fmt.Errorf("multiple root elements")
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, nil, fmt.Errorf("unbalanced end element </%s>", t.Name.Local)
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				appendLoose(&xmlNode{kind: textNode, data: string(t)})
				continue
			}
			parent := stack[len(stack)-1]
			if k := len(parent.children); k > 0 && parent.children[k-1].kind == textNode {
				parent.children[k-1].data += string(t)
			} else {
				parent.children = append(parent.children, &xmlNode{kind: textNode, data: string(t)})
			}
		case xml.Comment:
			appendLoose(&xmlNode{kind: commentNode, data: string(t)})
		case xml.ProcInst:
			appendLoose(&xmlNode{kind: procInstNode, name: xml.Name{Local: t.Target}, data: string(t.Inst)})
		case xml.Directive:
			appendLoose(&xmlNode{kind: directiveNode, data: string(t)})
		}
	}
	if root == nil {
		return nil, nil, fmt.Errorf("no root element")
	}
	if len(stack) != 0 {
		return nil, nil, fmt.Errorf("unbalanced element tree")
	}
	return prolog, root, nil
}

// collectPrefixes walks the tree recording namespace URI → prefix from
// every xmlns declaration. The xml prefix is predeclared.
func collectPrefixes(root *xmlNode) map[string]string {
	prefixes := map[string]string{xmlSpaceNS: "xml"}
	var walk func(n *xmlNode)
	walk = func(n *xmlNode) {
		if n.kind != elemNode {
			return
		}
		for _, a := range n.attrs {
			switch {
			case a.Name.Space == "xmlns":
				prefixes[a.Value] = a.Name.Local
			case a.Name.Space == "" && a.Name.Local == "xmlns":
				prefixes[a.Value] = ""
			}
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(root)
	return prefixes
}

var (
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"\n", "&#xA;",
		"\r", "&#xD;",
		"\t", "&#x9;",
	)
)

// serializeXMLTree renders the prolog and root back to markup,
// restoring namespace prefixes from the harvested declarations.
func serializeXMLTree(prolog []*xmlNode, root *xmlNode, prefixes map[string]string) []byte {
	var buf bytes.Buffer
	for _, n := range prolog {
		writeNode(&buf, n, prefixes)
	}
	writeNode(&buf, root, prefixes)
	return buf.Bytes()
}

func writeNode(buf *bytes.Buffer, n *xmlNode, prefixes map[string]string) {
	switch n.kind {
	case textNode:
		buf.WriteString(textEscaper.Replace(n.data))
	case commentNode:
		buf.WriteString("<!--")
		buf.WriteString(n.data)
		buf.WriteString("-->")
	case procInstNode:
		buf.WriteString("<?")
		buf.WriteString(n.name.Local)
		if n.data != "" {
			buf.WriteByte(' ')
			buf.WriteString(n.data)
		}
		buf.WriteString("?>")
	case directiveNode:
		buf.WriteString("<!")
		buf.WriteString(n.data)
		buf.WriteByte('>')
	case elemNode:
		buf.WriteByte('<')
		writeElemName(buf, n.name, prefixes)
		for _, a := range n.attrs {
			buf.WriteByte(' ')
			writeAttrName(buf, a.Name, prefixes)
			buf.WriteString(`="`)
			buf.WriteString(attrEscaper.Replace(a.Value))
			buf.WriteByte('"')
		}
		if len(n.children) == 0 {
			buf.WriteString("/>")
			return
		}
		buf.WriteByte('>')
		for _, c := range n.children {
			writeNode(buf, c, prefixes)
		}
		buf.WriteString("</")
		writeElemName(buf, n.name, prefixes)
		buf.WriteByte('>')
	}
}

func writeElemName(buf *bytes.Buffer, name xml.Name, prefixes map[string]string) {
	if name.Space != "" {
		if p, ok := prefixes[name.Space]; ok && p != "" {
			buf.WriteString(p)
			buf.WriteByte(':')
		}
	}
	buf.WriteString(name.Local)
}

func writeAttrName(buf *bytes.Buffer, name xml.Name, prefixes map[string]string) {
	switch {
	case name.Space == "xmlns":
		buf.WriteString("xmlns:")
		buf.WriteString(name.Local)
	case name.Space == "" && name.Local == "xmlns":
		buf.WriteString("xmlns")
	case name.Space == "":
		buf.WriteString(name.Local)
	default:
		if p, ok := prefixes[name.Space]; ok && p != "" {
			buf.WriteString(p)
			buf.WriteByte(':')
		}
		buf.WriteString(name.Local)
	}
}

// childElems returns the direct child elements matching the given name.
func (n *xmlNode) childElems(space, local string) []*xmlNode {
	var out []*xmlNode
	for _, c := range n.children {
		if c.kind == elemNode && c.name.Space == space && c.name.Local == local {
			out = append(out, c)
		}
	}
	return out
}

// firstChild returns the first direct child element matching the given
// name, or nil.
func (n *xmlNode) firstChild(space, local string) *xmlNode {
	for _, c := range n.children {
		if c.kind == elemNode && c.name.Space == space && c.name.Local == local {
			return c
		}
	}
	return nil
}

// clone deep-copies a node.
func (n *xmlNode) clone() *xmlNode {
	cp := &xmlNode{kind: n.kind, name: n.name, data: n.data}
	if len(n.attrs) > 0 {
		cp.attrs = make([]xml.Attr, len(n.attrs))
		copy(cp.attrs, n.attrs)
	}
	if len(n.children) > 0 {
		cp.children = make([]*xmlNode, len(n.children))
		for i, c := range n.children {
			cp.children[i] = c.clone()
		}
	}
	return cp
}

// textContent concatenates the direct text children of a node.
func textContent(n *xmlNode) string {
	var sb strings.Builder
	for _, c := range n.children {
		if c.kind == textNode {
			sb.WriteString(c.data)
		}
	}
	return sb.String()
}
