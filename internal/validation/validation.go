// Package validation checks names and paths derived from store data and
// user input, and sniffs the format of RDF input files.
package validation

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

const (
	// MaxFilenameLength is the maximum allowed filename length.
	MaxFilenameLength = 255
	// MaxPathLength is the maximum allowed path length.
	MaxPathLength = 4096
)

// Common validation errors.
var (
	ErrPathTraversal   = errors.New("path traversal detected")
	ErrInvalidFilename = errors.New("invalid filename")
	ErrPathTooLong     = errors.New("path too long")
	ErrFilenameTooLong = errors.New("filename too long")
	ErrEmptyPath       = errors.New("path cannot be empty")
	ErrEmptySlug       = errors.New("label yields an empty slug")
)

// Slug turns a scheme label into the file name stem used for templates and
// resources: lower-cased, with every space replaced by a hyphen, surrounding
// ones included. The result must be a valid file name, so a label with a
// leading space is rejected.
func Slug(label string) (string, error) {
	slug := strings.ReplaceAll(strings.ToLower(label), " ", "-")
	if slug == "" {
		return "", ErrEmptySlug
	}
	if err := ValidateFilename(slug); err != nil {
		return "", fmt.Errorf("slug %q: %w", slug, err)
	}
	return slug, nil
}

// SanitizePath validates a relative path and ensures it does not escape
// baseDir. It returns the cleaned relative path.
func SanitizePath(baseDir, userPath string) (string, error) {
	if userPath == "" {
		return "", ErrEmptyPath
	}
	if len(userPath) > MaxPathLength {
		return "", ErrPathTooLong
	}

	cleanPath := filepath.Clean(userPath)
	if cleanPath == ".." || strings.HasPrefix(cleanPath, ".."+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}
	if filepath.IsAbs(cleanPath) {
		return "", fmt.Errorf("%w: absolute path not allowed", ErrPathTraversal)
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}
	absPath, err := filepath.Abs(filepath.Join(baseDir, cleanPath))
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	relPath, err := filepath.Rel(absBase, absPath)
	if err != nil || relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}

	return cleanPath, nil
}

// ValidateFilename checks that filename is a single safe path element.
func ValidateFilename(filename string) error {
	if filename == "" {
		return ErrInvalidFilename
	}
	if len(filename) > MaxFilenameLength {
		return ErrFilenameTooLong
	}
	if filename == "." || filename == ".." {
		return fmt.Errorf("%w: reserved name", ErrInvalidFilename)
	}
	if strings.ContainsAny(filename, "/\\") {
		return fmt.Errorf("%w: path separator not allowed", ErrInvalidFilename)
	}
	for _, r := range filename {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidFilename)
		}
	}
	// Can be confused with command flags
	if strings.HasPrefix(filename, "-") {
		return fmt.Errorf("%w: filename cannot start with hyphen", ErrInvalidFilename)
	}
	return nil
}

// Format is an RDF serialization accepted by the loader.
type Format string

const (
	FormatNQuads  Format = "nquads"
	FormatJSONLD  Format = "jsonld"
	FormatRDFXML  Format = "rdfxml"
	FormatUnknown Format = "unknown"
)

// ParseFormat maps a user-supplied format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "nquads", "nq", "ntriples", "nt":
		return FormatNQuads, nil
	case "jsonld", "json-ld", "json":
		return FormatJSONLD, nil
	case "rdfxml", "rdf/xml", "rdf", "xml", "owl":
		return FormatRDFXML, nil
	}
	return FormatUnknown, fmt.Errorf("unknown RDF format %q", name)
}

// xzMagic starts every xz stream.
var xzMagic = []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}

// IsXZ reports whether header starts an xz stream.
func IsXZ(header []byte) bool {
	return bytes.HasPrefix(header, xzMagic)
}

// DetectFormat picks the RDF format of an input from its file name,
// falling back to the first non-blank byte of its content. Compression
// suffixes are ignored.
func DetectFormat(r *bufio.Reader, filename string) Format {
	if f := formatFromExtension(filename); f != FormatUnknown {
		return f
	}
	head, _ := r.Peek(512)
	return formatFromContent(head)
}

func formatFromExtension(filename string) Format {
	lower := strings.TrimSuffix(strings.ToLower(filename), ".xz")
	switch filepath.Ext(lower) {
	case ".nq", ".nt", ".nquads", ".ntriples":
		return FormatNQuads
	case ".jsonld", ".json":
		return FormatJSONLD
	case ".rdf", ".owl", ".xml":
		return FormatRDFXML
	}
	return FormatUnknown
}

func formatFromContent(head []byte) Format {
	trimmed := bytes.TrimLeftFunc(head, unicode.IsSpace)
	if len(trimmed) == 0 {
		return FormatUnknown
	}
	switch trimmed[0] {
	case '{', '[':
		return FormatJSONLD
	case '<':
		// N-Quads lines start with an IRI, XML with a declaration or a tag.
		if looksLikeIRI(trimmed) {
			return FormatNQuads
		}
		return FormatRDFXML
	case '_', '#':
		return FormatNQuads
	}
	return FormatUnknown
}

func looksLikeIRI(b []byte) bool {
	end := bytes.IndexByte(b, '>')
	if end < 0 {
		return false
	}
	iri := b[1:end]
	if bytes.ContainsFunc(iri, unicode.IsSpace) {
		return false
	}
	return bytes.Contains(iri, []byte("://")) || bytes.HasPrefix(iri, []byte("urn:"))
}
