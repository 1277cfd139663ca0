package extractor

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrNoText            = errors.New("no text could be extracted from document")
)

// Format converts raw document bytes into its ordered structural units
// (pages, sections). Units are joined with a single space by the Registry.
type Format interface {
	Name() string
	Extensions() []string
	ContentType() string
	Units(data []byte) ([]string, error)
}

// Extractor turns an uploaded document into normalized markdown text.
type Extractor interface {
	Extract(data []byte, filename string) (string, error)
	Supports(filename string) bool
	ContentType(filename string) string
}

type Registry struct {
	byExt map[string]Format
	names []string
}

var builtin = map[string]Format{
	"docx": docxFormat{},
	"pdf":  pdfFormat{},
	"txt":  txtFormat{},
}

// New returns a registry restricted to the named formats.
func New(formats ...string) (*Registry, error) {
	r := &Registry{byExt: make(map[string]Format)}
	for _, name := range formats {
		f, ok := builtin[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
		}
		for _, ext := range f.Extensions() {
			r.byExt[ext] = f
		}
		r.names = append(r.names, f.Name())
	}
	if len(r.byExt) == 0 {
		return nil, fmt.Errorf("no document formats enabled")
	}
	return r, nil
}

// Formats lists the enabled format names in registration order.
func (r *Registry) Formats() []string {
	return append([]string(nil), r.names...)
}

func (r *Registry) Supports(filename string) bool {
	_, ok := r.lookup(filename)
	return ok
}

// ContentType returns the canonical MIME type for filename, or "" when the
// extension is not enabled.
func (r *Registry) ContentType(filename string) string {
	if f, ok := r.lookup(filename); ok {
		return f.ContentType()
	}
	return ""
}

// Extract is a pure function of its inputs: identical bytes and filename
// always produce identical text.
func (r *Registry) Extract(data []byte, filename string) (string, error) {
	f, ok := r.lookup(filename)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}

	units, err := f.Units(data)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", f.Name(), err)
	}

	text := strings.Join(units, " ")
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return text, nil
}

func (r *Registry) lookup(filename string) (Format, bool) {
	f, ok := r.byExt[strings.ToLower(filepath.Ext(filename))]
	return f, ok
}
