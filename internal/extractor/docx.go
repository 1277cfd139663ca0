package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

type docxFormat struct{}

func (docxFormat) Name() string         { return "docx" }
func (docxFormat) Extensions() []string { return []string{".docx"} }
func (docxFormat) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

// Units renders word/document.xml as markdown, one unit per document section.
func (docxFormat) Units(data []byte) ([]string, error) {
	reader := bytes.NewReader(data)

	zipReader, err := zip.NewReader(reader, int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to read DOCX as ZIP: %w", err)
	}

	var documentFile *zip.File
	for _, file := range zipReader.File {
		if file.Name == "word/document.xml" {
			documentFile = file
			break
		}
	}

	if documentFile == nil {
		return nil, fmt.Errorf("document.xml not found in DOCX")
	}

	xmlFile, err := documentFile.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open document.xml: %w", err)
	}
	defer xmlFile.Close()

	var r docxRenderer
	if err := r.render(xmlFile); err != nil {
		return nil, fmt.Errorf("failed to parse document.xml: %w", err)
	}
	return r.sections, nil
}

type emphasis struct {
	bold, italic, strike, code bool
}

// wrap annotates s with markdown emphasis markers. Surrounding whitespace is
// kept outside the markers so the text itself is unchanged.
func (e emphasis) wrap(s string) string {
	if e == (emphasis{}) {
		return s
	}
	left := strings.TrimLeftFunc(s, unicode.IsSpace)
	core := strings.TrimRightFunc(left, unicode.IsSpace)
	if core == "" {
		return s
	}
	lead, trail := s[:len(s)-len(left)], left[len(core):]

	if e.code {
		core = "`" + core + "`"
	}
	if e.strike {
		core = "~~" + core + "~~"
	}
	switch {
	case e.bold && e.italic:
		core = "***" + core + "***"
	case e.bold:
		core = "**" + core + "**"
	case e.italic:
		core = "*" + core + "*"
	}
	return lead + core + trail
}

type segment struct {
	text string
	emph emphasis
}

type paragraph struct {
	style        string
	sectionBreak bool
	segments     []segment
	// lines of text boxes anchored inside this paragraph, in document order
	nested []string
}

type run struct {
	emph emphasis
	text strings.Builder
}

type table struct {
	rows []string
	row  []string
	cell []string
}

type docxRenderer struct {
	stack    []string
	paras    []*paragraph
	runs     []*run
	tables   []*table
	lines    []string
	sections []string
}

func (r *docxRenderer) render(src io.Reader) error {
	d := xml.NewDecoder(src)
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			// Alternate content repeats its text in the fallback branch.
			if t.Name.Local == "Fallback" {
				if err := d.Skip(); err != nil {
					return err
				}
				continue
			}
			r.stack = append(r.stack, t.Name.Local)
			r.start(t)
		case xml.EndElement:
			if len(r.stack) > 0 {
				r.stack = r.stack[:len(r.stack)-1]
			}
			r.end(t.Name.Local)
		case xml.CharData:
			if r.top(0) == "t" && r.top(1) == "r" && len(r.runs) > 0 {
				r.runs[len(r.runs)-1].text.Write(t)
			}
		}
	}
	r.flushSection()
	return nil
}

// top returns the element name n levels below the innermost open element.
func (r *docxRenderer) top(n int) string {
	if i := len(r.stack) - 1 - n; i >= 0 {
		return r.stack[i]
	}
	return ""
}

func (r *docxRenderer) start(el xml.StartElement) {
	parent := r.top(1)

	switch el.Name.Local {
	case "p":
		r.paras = append(r.paras, &paragraph{})
	case "pStyle":
		if parent == "pPr" && len(r.paras) > 0 {
			r.paras[len(r.paras)-1].style = attr(el, "val")
		}
	case "sectPr":
		if parent == "pPr" && len(r.paras) > 0 {
			r.paras[len(r.paras)-1].sectionBreak = true
		}
	case "r":
		r.runs = append(r.runs, &run{})
	case "tab":
		if parent == "r" && len(r.runs) > 0 {
			r.runs[len(r.runs)-1].text.WriteByte('\t')
		}
	case "br", "cr":
		if parent == "r" && len(r.runs) > 0 {
			if len(r.tables) > 0 {
				r.runs[len(r.runs)-1].text.WriteByte(' ')
			} else {
				r.runs[len(r.runs)-1].text.WriteByte('\n')
			}
		}
	case "tbl":
		r.tables = append(r.tables, &table{})
	case "tr":
		if len(r.tables) > 0 {
			r.tables[len(r.tables)-1].row = nil
		}
	case "tc":
		if len(r.tables) > 0 {
			r.tables[len(r.tables)-1].cell = nil
		}
	default:
		if parent == "rPr" && r.top(2) == "r" && len(r.runs) > 0 {
			applyRunProperty(&r.runs[len(r.runs)-1].emph, el)
		}
	}
}

func (r *docxRenderer) end(name string) {
	switch name {
	case "r":
		if len(r.runs) == 0 {
			return
		}
		cur := r.runs[len(r.runs)-1]
		r.runs = r.runs[:len(r.runs)-1]
		if cur.text.Len() > 0 && len(r.paras) > 0 {
			p := r.paras[len(r.paras)-1]
			p.segments = append(p.segments, segment{text: cur.text.String(), emph: cur.emph})
		}
	case "p":
		if len(r.paras) == 0 {
			return
		}
		p := r.paras[len(r.paras)-1]
		r.paras = r.paras[:len(r.paras)-1]
		lines := append([]string{p.render()}, p.nested...)
		switch {
		case len(r.paras) > 0:
			outer := r.paras[len(r.paras)-1]
			outer.nested = append(outer.nested, lines...)
		case len(r.tables) > 0:
			t := r.tables[len(r.tables)-1]
			t.cell = append(t.cell, lines...)
		default:
			r.lines = append(r.lines, lines...)
		}
		if p.sectionBreak && len(r.tables) == 0 && len(r.paras) == 0 {
			r.flushSection()
		}
	case "tc":
		if len(r.tables) > 0 {
			t := r.tables[len(r.tables)-1]
			t.row = append(t.row, strings.Join(t.cell, " "))
		}
	case "tr":
		if len(r.tables) > 0 {
			t := r.tables[len(r.tables)-1]
			t.rows = append(t.rows, "| "+strings.Join(t.row, " | ")+" |")
			if len(t.rows) == 1 {
				sep := make([]string, len(t.row))
				for i := range sep {
					sep[i] = "---"
				}
				t.rows = append(t.rows, "| "+strings.Join(sep, " | ")+" |")
			}
		}
	case "tbl":
		if len(r.tables) == 0 {
			return
		}
		t := r.tables[len(r.tables)-1]
		r.tables = r.tables[:len(r.tables)-1]
		switch {
		case len(r.tables) > 0:
			outer := r.tables[len(r.tables)-1]
			outer.cell = append(outer.cell, strings.Join(t.rows, " "))
		case len(r.paras) > 0:
			p := r.paras[len(r.paras)-1]
			p.nested = append(p.nested, t.rows...)
		default:
			r.lines = append(r.lines, t.rows...)
		}
	}
}

func (r *docxRenderer) flushSection() {
	if len(r.lines) == 0 {
		return
	}
	r.sections = append(r.sections, strings.Join(r.lines, "\n"))
	r.lines = nil
}

func (p *paragraph) render() string {
	var b strings.Builder
	for i := 0; i < len(p.segments); {
		// Word splits text into many runs; merge neighbours with the same
		// formatting before annotating.
		j := i
		var text strings.Builder
		for ; j < len(p.segments) && p.segments[j].emph == p.segments[i].emph; j++ {
			text.WriteString(p.segments[j].text)
		}
		b.WriteString(p.segments[i].emph.wrap(text.String()))
		i = j
	}

	line := b.String()
	if prefix := headingPrefix(p.style); prefix != "" && strings.TrimSpace(line) != "" {
		line = prefix + line
	}
	return line
}

func headingPrefix(style string) string {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	if s == "title" {
		return "# "
	}
	rest, ok := strings.CutPrefix(s, "heading")
	if !ok {
		return ""
	}
	level, err := strconv.Atoi(rest)
	if err != nil || level < 1 || level > 6 {
		return ""
	}
	return strings.Repeat("#", level) + " "
}

func applyRunProperty(e *emphasis, el xml.StartElement) {
	switch el.Name.Local {
	case "b":
		e.bold = toggleOn(el)
	case "i":
		e.italic = toggleOn(el)
	case "strike", "dstrike":
		e.strike = toggleOn(el)
	case "rStyle":
		if strings.Contains(strings.ToLower(attr(el, "val")), "code") {
			e.code = true
		}
	case "rFonts":
		if isMonospace(attr(el, "ascii")) || isMonospace(attr(el, "hAnsi")) {
			e.code = true
		}
	}
}

func toggleOn(el xml.StartElement) bool {
	switch strings.ToLower(attr(el, "val")) {
	case "0", "false", "off", "none":
		return false
	default:
		return true
	}
}

var monospaceFonts = []string{"courier", "consolas", "menlo", "monaco", "lucida console", "source code", "mono"}

func isMonospace(font string) bool {
	font = strings.ToLower(font)
	if font == "" {
		return false
	}
	for _, m := range monospaceFonts {
		if strings.Contains(font, m) {
			return true
		}
	}
	return false
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
