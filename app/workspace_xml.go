package app

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/bvisness/blockflow/app/core"
)

// XML interchange in the Blockly dialect:
//
//	<xml>
//	  <block type="controls_if" x="10" y="20">
//	    <mutation name="foo"><arg name="n"/></mutation>
//	    <field name="NUM">5</field>
//	    <value name="A"><block .../></value>
//	    <statement name="DO0"><block .../></statement>
//	    <next><block .../></next>
//	  </block>
//	</xml>
//
// Import is lenient about document shape (xmlquery lets us pick out what we
// understand); export is a plain encoding/xml marshal of the structs below.

type xmlDoc struct {
	XMLName xml.Name   `xml:"xml"`
	Blocks  []xmlBlock `xml:"block"`
}

type xmlBlock struct {
	Type     string       `xml:"type,attr"`
	ID       string       `xml:"id,attr,omitempty"`
	X        *float32     `xml:"x,attr,omitempty"`
	Y        *float32     `xml:"y,attr,omitempty"`
	Mutation *xmlMutation `xml:"mutation,omitempty"`
	Fields   []xmlField   `xml:"field"`
	Values   []xmlChild   `xml:"value"`
	Stmts    []xmlChild   `xml:"statement"`
	Next     *xmlNext     `xml:"next,omitempty"`
}

type xmlMutation struct {
	Name      string   `xml:"name,attr"`
	HasReturn bool     `xml:"hasreturn,attr,omitempty"`
	Args      []xmlArg `xml:"arg"`
}

type xmlArg struct {
	Name string `xml:"name,attr"`
}

type xmlField struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type xmlChild struct {
	Name   string    `xml:"name,attr"`
	Block  *xmlBlock `xml:"block,omitempty"`
	Shadow *xmlBlock `xml:"shadow,omitempty"`
}

type xmlNext struct {
	Block *xmlBlock `xml:"block"`
}

// ExportXML renders the workspace's root blocks as an XML document.
func (ws *Workspace) ExportXML() ([]byte, error) {
	doc := xmlDoc{}
	for _, root := range ws.roots {
		doc.Blocks = append(doc.Blocks, *exportBlock(root, true))
	}
	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal workspace: %w", err)
	}
	return data, nil
}

func exportBlock(b *core.Block, isRoot bool) *xmlBlock {
	xb := &xmlBlock{
		Type: b.Type,
		ID:   b.ID,
	}
	if isRoot {
		x, y := b.Pos.X, b.Pos.Y
		xb.X, xb.Y = &x, &y
	}
	if b.Procedure != nil {
		xb.Mutation = &xmlMutation{
			Name:      b.Procedure.Name,
			HasReturn: b.Procedure.HasReturn,
		}
		for _, arg := range b.Procedure.Arguments {
			xb.Mutation.Args = append(xb.Mutation.Args, xmlArg{Name: arg})
		}
	}
	for _, in := range b.Inputs {
		for _, f := range in.Fields {
			xb.Fields = append(xb.Fields, xmlField{Name: f.Name, Value: f.Value})
		}
		child := in.ConnectedBlock()
		if child == nil {
			continue
		}
		xc := xmlChild{Name: in.Name}
		childXML := exportBlock(child, false)
		if child.Shadow {
			xc.Shadow = childXML
		} else {
			xc.Block = childXML
		}
		switch in.Kind {
		case core.InputValue:
			xb.Values = append(xb.Values, xc)
		case core.InputStatement:
			xb.Stmts = append(xb.Stmts, xc)
		}
	}
	if next := b.NextBlock(); next != nil {
		xb.Next = &xmlNext{Block: exportBlock(next, false)}
	}
	return xb
}

// ImportXML parses an XML document and adds every top-level block to the
// workspace as an indexed root. Returns the imported roots.
func (ws *Workspace) ImportXML(data []byte) ([]*core.Block, error) {
	doc, err := xmlquery.Parse(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}

	var roots []*core.Block
	for _, node := range xmlquery.Find(doc, "/xml/block") {
		b, err := importBlock(node, false)
		if err != nil {
			return nil, err
		}
		b.Pos = core.V2{
			X: float32(attrFloat(node, "x")),
			Y: float32(attrFloat(node, "y")),
		}
		if err := ws.AddRootBlock(b, true); err != nil {
			return nil, err
		}
		roots = append(roots, b)
	}
	return roots, nil
}

func importBlock(node *xmlquery.Node, shadow bool) (*core.Block, error) {
	typ := node.SelectAttr("type")
	def, ok := core.GetBlockDefinition(typ)
	if !ok {
		return nil, fmt.Errorf("cannot import block of unknown type %q", typ)
	}
	b, err := def.Build()
	if err != nil {
		return nil, err
	}
	if id := node.SelectAttr("id"); id != "" {
		b.ID = id
	}

	if mut := xmlquery.FindOne(node, "mutation"); mut != nil {
		info := &core.ProcedureInfo{
			Name:      mut.SelectAttr("name"),
			HasReturn: mut.SelectAttr("hasreturn") == "true",
		}
		for _, arg := range xmlquery.Find(mut, "arg") {
			info.Arguments = append(info.Arguments, arg.SelectAttr("name"))
		}
		b.Procedure = info
		if core.IsProcedureReference(b) {
			core.AttachArgInputs(b, info)
		}
	}

	for _, f := range xmlquery.Find(node, "field") {
		name := f.SelectAttr("name")
		if field := b.FieldByName(name); field != nil {
			field.Value = f.InnerText()
		}
	}

	for _, child := range xmlquery.Find(node, "value") {
		if err := importChild(b, child, core.InputValue); err != nil {
			return nil, err
		}
	}
	for _, child := range xmlquery.Find(node, "statement") {
		if err := importChild(b, child, core.InputStatement); err != nil {
			return nil, err
		}
	}

	if nextNode := xmlquery.FindOne(node, "next/block"); nextNode != nil {
		next, err := importBlock(nextNode, false)
		if err != nil {
			return nil, err
		}
		if b.Next == nil || next.Previous == nil {
			return nil, fmt.Errorf("next chain does not fit block type %q", typ)
		}
		if err := b.Next.Connect(next.Previous); err != nil {
			return nil, err
		}
	}

	if shadow {
		b.MarkShadow()
	}
	return b, nil
}

func importChild(b *core.Block, node *xmlquery.Node, kind core.InputKind) error {
	name := node.SelectAttr("name")
	in := b.InputByName(name)
	if in == nil || in.Conn == nil || in.Kind != kind {
		return fmt.Errorf("block type %q has no connectable input %q", b.Type, name)
	}

	childNode := xmlquery.FindOne(node, "block")
	isShadow := false
	if childNode == nil {
		childNode = xmlquery.FindOne(node, "shadow")
		isShadow = true
	}
	if childNode == nil {
		return nil
	}

	child, err := importBlock(childNode, isShadow)
	if err != nil {
		return err
	}
	childEnd := child.Output
	if kind == core.InputStatement {
		childEnd = child.Previous
	}
	if childEnd == nil {
		return fmt.Errorf("block %q cannot plug into input %q", child.Type, name)
	}
	return in.Conn.Connect(childEnd)
}

func attrFloat(node *xmlquery.Node, name string) float64 {
	v, _ := strconv.ParseFloat(node.SelectAttr(name), 64)
	return v
}
