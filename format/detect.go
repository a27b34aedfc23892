// Package format identifies uploaded documents so that only word-processing
// packages reach the codec.
package format

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format is a document container format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// DOCX is an Office Open XML word-processing package (.docx, .docm,
	// .dotx).
	DOCX
	// DOC is the legacy binary Word format.
	DOC
	// ODT is an OpenDocument text document.
	ODT
	// PDF is a PDF document.
	PDF
	// XLSX is an Office Open XML spreadsheet.
	XLSX
	// PPTX is an Office Open XML presentation.
	PPTX
)

func (f Format) String() string {
	switch f {
	case DOCX:
		return "DOCX"
	case DOC:
		return "DOC"
	case ODT:
		return "ODT"
	case PDF:
		return "PDF"
	case XLSX:
		return "XLSX"
	case PPTX:
		return "PPTX"
	default:
		return "Unknown"
	}
}

// Extension returns the usual file extension of the format.
func (f Format) Extension() string {
	switch f {
	case DOCX:
		return ".docx"
	case DOC:
		return ".doc"
	case ODT:
		return ".odt"
	case PDF:
		return ".pdf"
	case XLSX:
		return ".xlsx"
	case PPTX:
		return ".pptx"
	default:
		return ""
	}
}

// Supported reports whether documents of the format can be checked.
func (f Format) Supported() bool {
	return f == DOCX
}

// Detect determines the format from a file name.
func Detect(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".docx", ".docm", ".dotx", ".dotm":
		return DOCX
	case ".doc", ".dot":
		return DOC
	case ".odt":
		return ODT
	case ".pdf":
		return PDF
	case ".xlsx":
		return XLSX
	case ".pptx":
		return PPTX
	default:
		return Unknown
	}
}

var (
	magicZip = []byte("PK\x03\x04")
	magicPDF = []byte("%PDF")
	magicOLE = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// DetectBytes determines the format from document content. Zip packages
// are told apart by the parts they contain.
func DetectBytes(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, magicPDF):
		return PDF
	case bytes.HasPrefix(data, magicOLE):
		return DOC
	case bytes.HasPrefix(data, magicZip):
		return detectPackage(data)
	}
	return Unknown
}

func detectPackage(data []byte) Format {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Unknown
	}

	for _, f := range zr.File {
		if f.Name != "mimetype" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			break
		}
		head := make([]byte, 64)
		n, _ := rc.Read(head)
		rc.Close()
		if strings.HasPrefix(string(head[:n]), "application/vnd.oasis.opendocument.text") {
			return ODT
		}
	}

	for _, f := range zr.File {
		switch {
		case strings.HasPrefix(f.Name, "word/"):
			return DOCX
		case strings.HasPrefix(f.Name, "xl/"):
			return XLSX
		case strings.HasPrefix(f.Name, "ppt/"):
			return PPTX
		}
	}
	return Unknown
}

// ErrUnsupported is wrapped by every error Check returns.
var ErrUnsupported = errors.New("unsupported document format")

// Check returns an error unless the named document is a supported
// word-processing package. The content decides; the name is only used
// when the content is not recognized.
func Check(filename string, data []byte) error {
	f := DetectBytes(data)
	if f == Unknown {
		f = Detect(filename)
		if f == DOCX && bytes.HasPrefix(data, magicZip) {
			// A damaged package; the codec reports what is wrong with it.
			return nil
		}
		if f == DOCX {
			// A .docx name on content that is not a package.
			return fmt.Errorf("%w: %s is not a valid word-processing package", ErrUnsupported, filename)
		}
	}
	if !f.Supported() {
		return fmt.Errorf("%w: %s, only .docx documents can be checked", ErrUnsupported, f)
	}
	return nil
}
