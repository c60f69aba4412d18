package xmltree

import (
	"bytes"
	"io"

	"github.com/tdewolff/parse/v2/xml"
)

var (
	ltBytes           = []byte("<")
	gtBytes           = []byte(">")
	voidBytes         = []byte("/>")
	isBytes           = []byte("=")
	spaceBytes        = []byte(" ")
	endBytes          = []byte("</")
	commentStartBytes = []byte("<!--")
	commentEndBytes   = []byte("-->")
	cdataStartBytes   = []byte("<![CDATA[")
	cdataEndBytes     = []byte("]]>")
)

// Serialize writes the document back out as XML. Everything that was parsed
// and not removed is emitted; childless elements collapse to a single void
// tag.
func (d *Document) Serialize(w io.Writer) error {
	buf := make([]byte, 0, 64)
	for _, c := range d.Top.Children {
		if err := writeNode(w, c, &buf); err != nil {
			return err
		}
	}
	return nil
}

// String serializes the document to a string.
func (d *Document) String() string {
	var b bytes.Buffer
	d.Serialize(&b)
	return b.String()
}

func writeNode(w io.Writer, n *Node, buf *[]byte) error {
	switch n.Type {
	case ElementNode:
		if _, err := w.Write(ltBytes); err != nil {
			return err
		}
		if _, err := w.Write([]byte(n.Data)); err != nil {
			return err
		}
		for _, a := range n.Attrs {
			if _, err := w.Write(spaceBytes); err != nil {
				return err
			}
			if _, err := w.Write([]byte(a.Name)); err != nil {
				return err
			}
			if _, err := w.Write(isBytes); err != nil {
				return err
			}
			// prefer single or double quotes depending on what occurs more often in value
			val := xml.EscapeAttrVal(buf, []byte(a.Value))
			if _, err := w.Write(val); err != nil {
				return err
			}
		}
		if len(n.Children) == 0 {
			_, err := w.Write(voidBytes)
			return err
		}
		if _, err := w.Write(gtBytes); err != nil {
			return err
		}
		for _, c := range n.Children {
			if err := writeNode(w, c, buf); err != nil {
				return err
			}
		}
		if _, err := w.Write(endBytes); err != nil {
			return err
		}
		if _, err := w.Write([]byte(n.Data)); err != nil {
			return err
		}
		_, err := w.Write(gtBytes)
		return err
	case TextNode:
		if n.CDATA {
			// write as text when escaping is cheaper than the CDATA wrapper
			if text, useText := xml.EscapeCDATAVal(buf, []byte(n.Data)); useText {
				_, err := w.Write(text)
				return err
			}
			if _, err := w.Write(cdataStartBytes); err != nil {
				return err
			}
			if _, err := w.Write([]byte(n.Data)); err != nil {
				return err
			}
			_, err := w.Write(cdataEndBytes)
			return err
		}
		_, err := w.Write([]byte(n.Data))
		return err
	case CommentNode:
		if _, err := w.Write(commentStartBytes); err != nil {
			return err
		}
		if _, err := w.Write([]byte(n.Data)); err != nil {
			return err
		}
		_, err := w.Write(commentEndBytes)
		return err
	case DoctypeNode, ProcInstNode:
		_, err := w.Write([]byte(n.Data))
		return err
	}
	return nil
}
