package document

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// DOCX files are ZIP archives; the body lives in word/document.xml as a
// sequence of w:p (paragraph) and w:tbl (table) elements. Only those two
// element kinds matter here; styles, numbering and drawings are skipped.

const docxBodyPath = "word/document.xml"

type documentXML struct {
	XMLName xml.Name `xml:"document"`
	Body    bodyXML  `xml:"body"`
}

// bodyXML keeps paragraphs and tables in their original body order so the
// Document model can preserve it.
type bodyXML struct {
	paragraphs []paragraphXML
	tables     []tableXML
}

type paragraphXML struct {
	Runs       []runXML       `xml:"r"`
	Hyperlinks []hyperlinkXML `xml:"hyperlink"`
}

type hyperlinkXML struct {
	Runs []runXML `xml:"r"`
}

type runXML struct {
	text string
}

// UnmarshalXML collects a run's text in child order so tab and break
// elements land between the text pieces they separate, not at the end.
func (r *runXML) UnmarshalXML(d *xml.Decoder, _ xml.StartElement) error {
	var sb strings.Builder
	for {
		tok, err := d.Token()
		if err == io.EOF {
			r.text = sb.String()
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				var s string
				if err := d.DecodeElement(&s, &t); err != nil {
					return err
				}
				sb.WriteString(s)
			case "tab":
				sb.WriteString("\t")
				if err := d.Skip(); err != nil {
					return err
				}
			case "br", "cr":
				sb.WriteString("\n")
				if err := d.Skip(); err != nil {
					return err
				}
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			// end of w:r
			r.text = sb.String()
			return nil
		}
	}
}

type tableXML struct {
	Rows []tableRowXML `xml:"tr"`
}

type tableRowXML struct {
	Cells []tableCellXML `xml:"tc"`
}

type tableCellXML struct {
	Paragraphs []paragraphXML `xml:"p"`
}

// UnmarshalXML walks the direct children of w:body, decoding paragraphs
// and tables and skipping everything else (sectPr, bookmarks, ...).
func (b *bodyXML) UnmarshalXML(d *xml.Decoder, _ xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				var p paragraphXML
				if err := d.DecodeElement(&p, &t); err != nil {
					return err
				}
				b.paragraphs = append(b.paragraphs, p)
			case "tbl":
				var tbl tableXML
				if err := d.DecodeElement(&tbl, &t); err != nil {
					return err
				}
				b.tables = append(b.tables, tbl)
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			// end of w:body
			return nil
		}
	}
}

func (p paragraphXML) text() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		sb.WriteString(r.text)
	}
	for _, h := range p.Hyperlinks {
		for _, r := range h.Runs {
			sb.WriteString(r.text)
		}
	}
	return sb.String()
}

func (c tableCellXML) text() string {
	parts := make([]string, 0, len(c.Paragraphs))
	for _, p := range c.Paragraphs {
		if t := strings.TrimSpace(p.text()); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}

// ParseDocx opens a DOCX file and builds the paragraph/table model.
// Body-level paragraphs only; paragraphs inside table cells belong to
// their cell, not to the paragraph sequence.
func ParseDocx(path string) (*Document, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}
	defer zr.Close()

	var body []byte
	for _, f := range zr.File {
		if f.Name == docxBodyPath {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("opening %s: %w", docxBodyPath, err)
			}
			body, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", docxBodyPath, err)
			}
			break
		}
	}
	if body == nil {
		return nil, fmt.Errorf("missing %s", docxBodyPath)
	}

	var docXML documentXML
	if err := xml.Unmarshal(body, &docXML); err != nil {
		return nil, fmt.Errorf("parsing document body: %w", err)
	}

	doc := &Document{}
	for _, p := range docXML.Body.paragraphs {
		doc.Paragraphs = append(doc.Paragraphs, p.text())
	}
	for _, t := range docXML.Body.tables {
		table := Table{}
		for _, r := range t.Rows {
			row := Row{}
			for _, c := range r.Cells {
				row.Cells = append(row.Cells, c.text())
			}
			table.Rows = append(table.Rows, row)
		}
		doc.Tables = append(doc.Tables, table)
	}
	return doc, nil
}
