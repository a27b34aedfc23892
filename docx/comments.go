package docx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/tsawler/docfmt/model"
)

// newPart is a part added to the package on save.
type newPart struct {
	name string
	data []byte
}

// Marker ranks order insertions that share an offset so that ranges nest:
// a run closes before its paragraph, a paragraph opens before its first run.
const (
	rankRunEnd = iota
	rankParaEnd
	rankParaStart
	rankRunStart
)

type marker struct {
	off  int
	rank int
	seq  int
	text string
}

type commentEntry struct {
	id int
	c  model.Comment
}

// writeComments splices comment ranges into the main part and produces the
// comments part, relationship and content type override. It returns the
// changed parts keyed by partKey and the parts to add.
func (p *Package) writeComments() (map[string][]byte, []newPart, error) {
	mainRoot, err := scanRoot(p.main)
	if err != nil {
		return nil, nil, decodeErr(p.mainPart, "malformed XML", err)
	}
	ns, wp, ok := mainRoot.wordPrefix()
	if !ok {
		return nil, nil, decodeErrf(p.mainPart, "main namespace not declared on the root element")
	}
	wn := newWordNames(ns, wp)

	rel := findRel(p.mainRels, relComments)
	commentsPart := p.commentsPart
	var existing []byte
	nextID := 0
	switch {
	case commentsPart != "":
		if existing, err = p.parts.read(commentsPart); err != nil {
			return nil, nil, err
		}
		var cx commentsXML
		if err := xml.Unmarshal(existing, &cx); err != nil {
			return nil, nil, decodeErr(commentsPart, "malformed XML", err)
		}
		for _, c := range cx.Comments {
			if id, err := strconv.Atoi(c.ID); err == nil && id >= nextID {
				nextID = id + 1
			}
		}
	case rel != nil:
		commentsPart = resolveTarget(p.mainPart, rel.Target)
	default:
		commentsPart = p.freePartName(path.Join(path.Dir(p.mainPart), "comments"), ".xml")
	}

	var markers []marker
	var entries []commentEntry
	for _, c := range p.doc.Comments {
		span, startRank, endRank, ok := p.anchor(c.Anchor)
		if !ok {
			p.warnings = append(p.warnings, fmt.Sprintf("comment on %s dropped: no anchor in %s", c.Anchor, p.mainPart))
			continue
		}
		id := nextID + len(entries)
		markers = append(markers,
			marker{off: span.Start, rank: startRank, seq: len(markers),
				text: fmt.Sprintf(`<%s%s %s="%d"/>`, wn.elem("commentRangeStart"), wn.decl, wn.attr("id"), id)},
			marker{off: span.End, rank: endRank, seq: len(markers) + 1,
				text: fmt.Sprintf(`<%s%s %s="%d"/><%s><%s%s %s="%d"/></%s>`,
					wn.elem("commentRangeEnd"), wn.decl, wn.attr("id"), id, wn.elem("r"),
					wn.elem("commentReference"), wn.decl, wn.attr("id"), id, wn.elem("r"))},
		)
		entries = append(entries, commentEntry{id: id, c: c})
	}
	if len(entries) == 0 {
		return nil, nil, nil
	}

	changed := map[string][]byte{
		partKey(p.mainPart): splice(p.main, markers),
	}
	var added []newPart

	if existing != nil {
		root, err := scanRoot(existing)
		if err != nil {
			return nil, nil, decodeErr(commentsPart, "malformed XML", err)
		}
		cns, cp, ok := root.wordPrefix()
		if !ok {
			return nil, nil, decodeErrf(commentsPart, "main namespace not declared on the root element")
		}
		changed[partKey(commentsPart)] = root.insertBeforeEnd(existing, commentElements(newWordNames(cns, cp), entries))
	} else {
		var buf bytes.Buffer
		buf.WriteString(xml.Header)
		fmt.Fprintf(&buf, `<w:comments xmlns:w="%s">`, ns)
		buf.WriteString(commentElements(newWordNames(ns, "w"), entries))
		buf.WriteString(`</w:comments>`)
		added = append(added, newPart{name: commentsPart, data: buf.Bytes()})
	}

	if rel == nil {
		data, isNew, err := p.addCommentsRelationship(commentsPart)
		if err != nil {
			return nil, nil, err
		}
		if isNew {
			added = append(added, newPart{name: relsPath(p.mainPart), data: data})
		} else {
			changed[partKey(relsPath(p.mainPart))] = data
		}
	}

	data, isNew, err := p.addCommentsOverride(commentsPart)
	if err != nil {
		return nil, nil, err
	}
	if data != nil {
		if isNew {
			added = append(added, newPart{name: "[Content_Types].xml", data: data})
		} else {
			changed[partKey("[Content_Types].xml")] = data
		}
	}

	return changed, added, nil
}

// anchor returns the span a comment on ref covers and the ranks of its
// start and end markers. Section comments go to the first paragraph of the
// section that has content, or to any such paragraph of the document.
func (p *Package) anchor(ref model.ElementRef) (model.Span, int, int, bool) {
	switch ref.Kind {
	case model.KindRun:
		if para, ok := p.doc.Paragraph(ref.Paragraph); ok && ref.Run >= 0 && ref.Run < len(para.Runs) {
			if r := para.Runs[ref.Run]; !r.Source.IsZero() {
				return r.Source, rankRunStart, rankRunEnd, true
			}
		}
		ref.Kind = model.KindParagraph
		return p.anchor(ref)
	case model.KindParagraph:
		if para, ok := p.doc.Paragraph(ref.Paragraph); ok && !para.Source.IsZero() {
			return para.Source, rankParaStart, rankParaEnd, true
		}
	case model.KindSection:
		if ref.Section >= 0 && ref.Section < len(p.doc.Sections) {
			for _, para := range p.doc.Sections[ref.Section].Paragraphs {
				if !para.Source.IsZero() {
					return para.Source, rankParaStart, rankParaEnd, true
				}
			}
		}
		for _, para := range p.doc.Paragraphs() {
			if !para.Source.IsZero() {
				return para.Source, rankParaStart, rankParaEnd, true
			}
		}
	}
	return model.Span{}, 0, 0, false
}

// splice inserts markers into data at their offsets.
func splice(data []byte, markers []marker) []byte {
	sort.SliceStable(markers, func(i, j int) bool {
		a, b := markers[i], markers[j]
		if a.off != b.off {
			return a.off < b.off
		}
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		return a.seq < b.seq
	})

	size := len(data)
	for _, m := range markers {
		size += len(m.text)
	}
	out := make([]byte, 0, size)
	last := 0
	for _, m := range markers {
		out = append(out, data[last:m.off]...)
		out = append(out, m.text...)
		last = m.off
	}
	return append(out, data[last:]...)
}

// commentElements renders <w:comment> elements, one paragraph per line of
// text.
func commentElements(wn wordNames, entries []commentEntry) string {
	var sb strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&sb, `<%s%s %s="%d" %s="%s"`, wn.elem("comment"), wn.decl, wn.attr("id"), e.id,
			wn.attr("author"), escape(e.c.Author))
		if !e.c.Date.IsZero() {
			fmt.Fprintf(&sb, ` %s="%s"`, wn.attr("date"), e.c.Date.UTC().Format("2006-01-02T15:04:05Z"))
		}
		if e.c.Initials != "" {
			fmt.Fprintf(&sb, ` %s="%s"`, wn.attr("initials"), escape(e.c.Initials))
		}
		sb.WriteByte('>')
		for _, line := range strings.Split(e.c.Text, "\n") {
			fmt.Fprintf(&sb, `<%s><%s><%s xml:space="preserve">%s</%s></%s></%s>`,
				wn.elem("p"), wn.elem("r"), wn.elem("t"), escape(line),
				wn.elem("t"), wn.elem("r"), wn.elem("p"))
		}
		fmt.Fprintf(&sb, `</%s>`, wn.elem("comment"))
	}
	return sb.String()
}

// wordNames qualifies inserted WordprocessingML names. Unprefixed
// attributes are in no namespace, so when a part binds the main namespace
// only as the default, inserted elements declare a prefix for their
// attributes.
type wordNames struct {
	elemPrefix string
	attrPrefix string
	decl       string
}

func newWordNames(ns, prefix string) wordNames {
	if prefix != "" {
		return wordNames{elemPrefix: prefix, attrPrefix: prefix}
	}
	return wordNames{attrPrefix: "w", decl: fmt.Sprintf(` xmlns:w="%s"`, ns)}
}

func (wn wordNames) elem(local string) string { return qname(wn.elemPrefix, local) }

func (wn wordNames) attr(local string) string { return qname(wn.attrPrefix, local) }

// addCommentsRelationship registers the comments part with the main part.
func (p *Package) addCommentsRelationship(commentsPart string) ([]byte, bool, error) {
	target := commentsPart
	if dir := path.Dir(p.mainPart); dir != "." {
		if rel, ok := strings.CutPrefix(commentsPart, dir+"/"); ok {
			target = rel
		} else {
			target = "/" + commentsPart
		}
	}

	maxID := 0
	used := make(map[string]bool)
	for _, r := range p.mainRels.Relationships {
		used[r.ID] = true
		if n, err := strconv.Atoi(strings.TrimPrefix(r.ID, "rId")); err == nil && n > maxID {
			maxID = n
		}
	}
	id := fmt.Sprintf("rId%d", maxID+1)
	for used[id] {
		maxID++
		id = fmt.Sprintf("rId%d", maxID+1)
	}

	attrs := fmt.Sprintf(`Id="%s" Type="%s" Target="%s"`, id, relCommentsType, escape(target))

	relsPart := relsPath(p.mainPart)
	if !p.parts.has(relsPart) {
		data := xml.Header + `<Relationships xmlns="` + nsRels + `"><Relationship ` + attrs + `/></Relationships>`
		return []byte(data), true, nil
	}

	existing, err := p.parts.read(relsPart)
	if err != nil {
		return nil, false, err
	}
	root, err := scanRoot(existing)
	if err != nil {
		return nil, false, decodeErr(relsPart, "malformed XML", err)
	}
	return root.insertBeforeEnd(existing, root.element(nsRels, "Relationship", attrs)), false, nil
}

// addCommentsOverride declares the content type of the comments part. It
// returns nil data when the declaration already exists.
func (p *Package) addCommentsOverride(commentsPart string) ([]byte, bool, error) {
	const name = "[Content_Types].xml"
	partName := "/" + commentsPart
	attrs := fmt.Sprintf(`PartName="%s" ContentType="%s"`, escape(partName), contentTypeComments)

	if !p.parts.has(name) {
		data := xml.Header + `<Types xmlns="` + nsTypes + `">` +
			`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Override ` + attrs + `/></Types>`
		return []byte(data), true, nil
	}

	existing, err := p.parts.read(name)
	if err != nil {
		return nil, false, err
	}
	var ct contentTypesXML
	if err := xml.Unmarshal(existing, &ct); err != nil {
		return nil, false, decodeErr(name, "malformed XML", err)
	}
	for _, o := range ct.Overrides {
		if strings.EqualFold(o.PartName, partName) {
			return nil, false, nil
		}
	}

	root, err := scanRoot(existing)
	if err != nil {
		return nil, false, decodeErr(name, "malformed XML", err)
	}
	return root.insertBeforeEnd(existing, root.element(nsTypes, "Override", attrs)), false, nil
}

// freePartName returns base+ext, or base+N+ext when that part exists.
func (p *Package) freePartName(base, ext string) string {
	name := base + ext
	for i := 1; p.parts.has(name); i++ {
		name = fmt.Sprintf("%s%d%s", base, i, ext)
	}
	return name
}

// rootInfo locates the root element of an XML part.
type rootInfo struct {
	rawName  string            // qualified name as written
	startEnd int               // offset just after the root start tag
	endStart int               // offset of the root end tag; -1 when self-closing
	prefixes map[string]string // namespace URI -> prefix declared on the root
}

func scanRoot(data []byte) (*rootInfo, error) {
	d := xml.NewDecoder(bytes.NewReader(data))
	ri := &rootInfo{endStart: -1, prefixes: make(map[string]string)}
	depth := 0
	for {
		off := int(d.InputOffset())
		tok, err := d.RawToken()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("no root element")
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				ri.rawName = qname(t.Name.Space, t.Name.Local)
				ri.startEnd = int(d.InputOffset())
				for _, a := range t.Attr {
					switch {
					case a.Name.Space == "xmlns":
						ri.prefixes[a.Value] = a.Name.Local
					case a.Name.Space == "" && a.Name.Local == "xmlns":
						ri.prefixes[a.Value] = ""
					}
				}
			}
			depth++
		case xml.EndElement:
			depth--
			if depth == 0 {
				if off != int(d.InputOffset()) {
					ri.endStart = off
				}
				return ri, nil
			}
		}
	}
}

// wordPrefix returns the main namespace in use and its prefix.
func (ri *rootInfo) wordPrefix() (string, string, bool) {
	for _, ns := range []string{nsW, nsWStrict} {
		if pfx, ok := ri.prefixes[ns]; ok {
			return ns, pfx, true
		}
	}
	return "", "", false
}

// element renders an empty element in namespace ns, using the prefix the
// root binds it to.
func (ri *rootInfo) element(ns, local, attrs string) string {
	return "<" + qname(ri.prefixes[ns], local) + " " + attrs + "/>"
}

// insertBeforeEnd inserts fragment as the last children of the root.
func (ri *rootInfo) insertBeforeEnd(data []byte, fragment string) []byte {
	var out bytes.Buffer
	out.Grow(len(data) + len(fragment) + len(ri.rawName) + 3)
	if ri.endStart < 0 {
		// <root .../> becomes <root ...>fragment</root>
		out.Write(data[:ri.startEnd-2])
		out.WriteByte('>')
		out.WriteString(fragment)
		out.WriteString("</" + ri.rawName + ">")
		out.Write(data[ri.startEnd:])
		return out.Bytes()
	}
	out.Write(data[:ri.endStart])
	out.WriteString(fragment)
	out.Write(data[ri.endStart:])
	return out.Bytes()
}

func qname(prefix, local string) string {
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
