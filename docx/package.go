// Package docx reads and writes word-processing packages (Office Open XML).
//
// Load decodes a package into a [model.Document], keeping the original bytes
// and the byte offsets of every paragraph and run. Save writes the document
// back: an unannotated document returns the original bytes unchanged, and
// comments are spliced into the main part without reserializing it.
package docx

import (
	"archive/zip"
	"bytes"
	"fmt"

	"github.com/tsawler/docfmt/model"
)

// DefaultMaxPartSize is the default limit on the uncompressed size of a
// single part.
const DefaultMaxPartSize = 64 << 20

// Option configures Load.
type Option func(*options)

type options struct {
	maxPartSize int64
}

// WithMaxPartSize limits the uncompressed size of every part read. A value
// of 0 or less disables the limit.
func WithMaxPartSize(n int64) Option {
	return func(o *options) {
		o.maxPartSize = n
	}
}

// Package is a loaded package together with its decoded document.
type Package struct {
	raw   []byte
	zr    *zip.Reader
	parts *partReader

	mainPart     string
	main         []byte
	mainRels     *relationshipsXML
	commentsPart string

	doc      *model.Document
	warnings []string
}

// Load decodes a package. It fails with a *DecodeError when the bytes are not
// a readable package and with a *model.IntegrityError when a style or
// numbering reference cannot be resolved.
func Load(data []byte, opts ...Option) (*Package, error) {
	o := options{maxPartSize: DefaultMaxPartSize}
	for _, opt := range opts {
		opt(&o)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, decodeErr("", "not a zip archive", err)
	}

	p := &Package{
		raw:   data,
		zr:    zr,
		parts: newPartReader(zr, o.maxPartSize),
	}

	if p.mainPart, err = p.parts.mainPart(); err != nil {
		return nil, err
	}
	if p.main, err = p.parts.read(p.mainPart); err != nil {
		return nil, err
	}
	if p.mainRels, err = p.parts.relationships(p.mainPart); err != nil {
		return nil, err
	}

	sections, err := parseBody(p.mainPart, p.main)
	if err != nil {
		return nil, err
	}

	var sx stylesXML
	ok, err := p.parts.unmarshal(p.parts.relatedPart(p.mainPart, p.mainRels, relStyles, "styles.xml"), &sx)
	if err != nil {
		return nil, err
	}
	stylesPart := &sx
	if !ok {
		stylesPart = nil
	}

	var nx numberingXML
	ok, err = p.parts.unmarshal(p.parts.relatedPart(p.mainPart, p.mainRels, relNumbering, "numbering.xml"), &nx)
	if err != nil {
		return nil, err
	}
	numberingPart := &nx
	if !ok {
		numberingPart = nil
	}

	var tx themeXML
	if _, err := p.parts.unmarshal(p.parts.relatedPart(p.mainPart, p.mainRels, relTheme, "theme/theme1.xml"), &tx); err != nil {
		return nil, err
	}

	p.commentsPart = p.parts.relatedPart(p.mainPart, p.mainRels, relComments, "")

	styles, defaults, err := buildStyles(stylesPart)
	if err != nil {
		return nil, err
	}
	numbering, err := buildNumbering(numberingPart)
	if err != nil {
		return nil, err
	}

	p.doc = &model.Document{
		Sections:  sections,
		Styles:    styles,
		Numbering: numbering,
		Defaults:  defaults,
		Theme: model.ThemeFonts{
			Major: tx.Major.Latin.Typeface,
			Minor: tx.Minor.Latin.Typeface,
		},
	}
	if err := p.doc.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Document returns the decoded document.
func (p *Package) Document() *model.Document {
	return p.doc
}

// SetDocument replaces the document written by Save, typically with an
// annotated copy of Document(). The replacement must have the same
// paragraphs and runs.
func (p *Package) SetDocument(doc *model.Document) error {
	if doc == nil {
		return fmt.Errorf("docx: nil document")
	}
	orig, repl := p.doc.Paragraphs(), doc.Paragraphs()
	if len(orig) != len(repl) {
		return fmt.Errorf("docx: document has %d paragraphs, package has %d", len(repl), len(orig))
	}
	for i := range orig {
		if len(orig[i].Runs) != len(repl[i].Runs) || orig[i].Source != repl[i].Source {
			return fmt.Errorf("docx: paragraph %d does not belong to this package", i)
		}
	}
	p.doc = doc
	return nil
}

// MainPart returns the name of the main document part.
func (p *Package) MainPart() string {
	return p.mainPart
}

// Warnings returns non-fatal problems met by the last Save, such as a
// comment whose anchor had no place in the main part.
func (p *Package) Warnings() []string {
	return append([]string(nil), p.warnings...)
}

// Save serializes the package. A document without comments is returned
// byte-for-byte as loaded.
func (p *Package) Save() ([]byte, error) {
	p.warnings = nil
	if len(p.doc.Comments) == 0 {
		return bytes.Clone(p.raw), nil
	}

	changed, added, err := p.writeComments()
	if err != nil {
		return nil, err
	}
	if changed == nil {
		return bytes.Clone(p.raw), nil
	}
	return p.rebuild(changed, added)
}

// rebuild writes a new archive. Untouched entries are copied raw, without
// recompression; changed entries keep their name and method.
func (p *Package) rebuild(changed map[string][]byte, added []newPart) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, f := range p.zr.File {
		data, ok := changed[partKey(f.Name)]
		if !ok {
			if err := zw.Copy(f); err != nil {
				return nil, fmt.Errorf("copying %s: %w", f.Name, err)
			}
			continue
		}
		hdr := &zip.FileHeader{
			Name:     f.Name,
			Method:   f.Method,
			Modified: f.Modified,
		}
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return nil, fmt.Errorf("writing %s: %w", f.Name, err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("writing %s: %w", f.Name, err)
		}
	}

	for _, np := range added {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: np.name, Method: zip.Deflate})
		if err != nil {
			return nil, fmt.Errorf("writing %s: %w", np.name, err)
		}
		if _, err := w.Write(np.data); err != nil {
			return nil, fmt.Errorf("writing %s: %w", np.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}
	return buf.Bytes(), nil
}
