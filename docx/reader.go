package docx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"
)

// partReader provides size-limited access to the parts of a zip package.
// Part names are matched case-insensitively, as OPC requires.
type partReader struct {
	files   map[string]*zip.File
	maxSize int64
}

func newPartReader(zr *zip.Reader, maxSize int64) *partReader {
	r := &partReader{
		files:   make(map[string]*zip.File, len(zr.File)),
		maxSize: maxSize,
	}
	for _, f := range zr.File {
		r.files[partKey(f.Name)] = f
	}
	return r
}

func partKey(name string) string {
	return strings.ToLower(strings.TrimPrefix(name, "/"))
}

// has reports whether the package contains the named part.
func (r *partReader) has(name string) bool {
	_, ok := r.files[partKey(name)]
	return ok
}

// file returns the zip entry of the named part.
func (r *partReader) file(name string) *zip.File {
	return r.files[partKey(name)]
}

// read returns the content of a part. The size limit is checked against the
// declared size and again while reading, since headers can lie.
func (r *partReader) read(name string) ([]byte, error) {
	f := r.file(name)
	if f == nil {
		return nil, decodeErrf(name, "part not found")
	}
	if r.maxSize > 0 && f.UncompressedSize64 > uint64(r.maxSize) {
		return nil, decodeErrf(name, "part size %d exceeds limit %d", f.UncompressedSize64, r.maxSize)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, decodeErr(name, "opening part", err)
	}
	defer rc.Close()

	var src io.Reader = rc
	if r.maxSize > 0 {
		src = io.LimitReader(rc, r.maxSize+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, decodeErr(name, "reading part", err)
	}
	if r.maxSize > 0 && int64(len(data)) > r.maxSize {
		return nil, decodeErrf(name, "part size exceeds limit %d", r.maxSize)
	}
	return data, nil
}

// unmarshal decodes an optional XML part into v. It reports false when the
// part does not exist.
func (r *partReader) unmarshal(name string, v any) (bool, error) {
	if name == "" || !r.has(name) {
		return false, nil
	}
	data, err := r.read(name)
	if err != nil {
		return false, err
	}
	if err := xml.Unmarshal(data, v); err != nil {
		return false, decodeErr(name, "malformed XML", err)
	}
	return true, nil
}

// relationships parses the relationships of a part. A part without a
// relationships file has none.
func (r *partReader) relationships(part string) (*relationshipsXML, error) {
	rels := &relationshipsXML{}
	if _, err := r.unmarshal(relsPath(part), rels); err != nil {
		return nil, err
	}
	return rels, nil
}

// relsPath returns the relationships part of a part:
// word/document.xml -> word/_rels/document.xml.rels, "" -> _rels/.rels.
func relsPath(part string) string {
	if part == "" {
		return "_rels/.rels"
	}
	return path.Join(path.Dir(part), "_rels", path.Base(part)+".rels")
}

// resolveTarget resolves a relationship target relative to the source part.
func resolveTarget(source, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	dir := ""
	if source != "" {
		dir = path.Dir(source)
	}
	return strings.TrimPrefix(path.Join(dir, target), "/")
}

// findRel returns the first internal relationship whose type ends in suffix.
func findRel(rels *relationshipsXML, suffix string) *relationshipXML {
	if rels == nil {
		return nil
	}
	for i := range rels.Relationships {
		rel := &rels.Relationships[i]
		if strings.EqualFold(rel.TargetMode, "External") {
			continue
		}
		if strings.HasSuffix(rel.Type, suffix) {
			return rel
		}
	}
	return nil
}

// relatedPart resolves the part a relationship of the given type points at,
// falling back to the conventional location next to the source part.
func (r *partReader) relatedPart(source string, rels *relationshipsXML, suffix, fallback string) string {
	if rel := findRel(rels, suffix); rel != nil {
		if target := resolveTarget(source, rel.Target); r.has(target) {
			return target
		}
	}
	if fallback == "" {
		return ""
	}
	if p := path.Join(path.Dir(source), fallback); r.has(p) {
		return p
	}
	return ""
}

// mainPart locates the main document part through the package
// relationships.
func (r *partReader) mainPart() (string, error) {
	rels, err := r.relationships("")
	if err != nil {
		return "", err
	}
	if rel := findRel(rels, relOfficeDocument); rel != nil {
		if target := resolveTarget("", rel.Target); r.has(target) {
			return target, nil
		}
	}
	if r.has("word/document.xml") {
		return "word/document.xml", nil
	}
	return "", &DecodeError{Msg: "missing main document part", Err: fmt.Errorf("no officeDocument relationship and no word/document.xml")}
}
