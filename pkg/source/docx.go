package source

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

type coreXML struct {
	Title string `xml:"title"`
}

// parseDOCX joins the paragraphs of a .docx file with newlines. Superscript
// runs made of digits become superscript characters so "26" followed by a
// raised "1" reads as "26¹".
func parseDOCX(data []byte) (*Document, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening docx archive: %w", err)
	}

	content, err := readZipFile(reader, "word/document.xml")
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, fmt.Errorf("docx archive has no word/document.xml")
	}

	lines, err := paragraphLines(content)
	if err != nil {
		return nil, fmt.Errorf("parsing word/document.xml: %w", err)
	}

	result := &Document{Text: strings.Join(lines, "\n")}
	if core, err := readZipFile(reader, "docProps/core.xml"); err == nil && core != nil {
		var props coreXML
		if xml.Unmarshal(core, &props) == nil {
			result.Title = strings.TrimSpace(props.Title)
		}
	}
	return result, nil
}

// paragraphLines returns the text of every paragraph in document order.
// Runs are collected wherever they sit inside the paragraph, including
// hyperlinks, insertions, smart tags and simple fields. Deleted text
// (w:delText) is skipped.
func paragraphLines(content []byte) ([]string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(content))

	var (
		lines       []string
		line        strings.Builder
		run         strings.Builder
		superscript bool
		depth       int
	)

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch el := token.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "p":
				if depth == 0 {
					line.Reset()
				}
				depth++
			case "r":
				run.Reset()
				superscript = false
			case "vertAlign":
				superscript = attrValue(el, "val") == "superscript"
			case "t":
				var text string
				if err := decoder.DecodeElement(&text, &el); err != nil {
					return nil, err
				}
				run.WriteString(text)
			case "tab":
				run.WriteString("\t")
			case "br", "cr":
				run.WriteString("\n")
			}

		case xml.EndElement:
			switch el.Name.Local {
			case "r":
				if superscript {
					line.WriteString(toSuperscript(run.String()))
				} else {
					line.WriteString(run.String())
				}
				run.Reset()
			case "p":
				if depth == 0 {
					continue
				}
				depth--
				if depth == 0 {
					lines = append(lines, line.String())
				}
			}
		}
	}
	return lines, nil
}

func attrValue(el xml.StartElement, local string) string {
	for _, attr := range el.Attr {
		if attr.Name.Local == local {
			return attr.Value
		}
	}
	return ""
}

// readZipFile returns the content of name, or nil when it is absent.
func readZipFile(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", name, err)
		}
		defer rc.Close()

		content, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		return content, nil
	}
	return nil, nil
}
