package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"
)

const maxPartSize = 64 << 20

// extractDOCX returns the body text of a Word document, one paragraph per line.
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	part, err := readPart(zr, "word/document.xml")
	if err != nil {
		return "", err
	}
	return paragraphText(part, "t")
}

// extractPPTX returns the text of each slide in order as "Slide N:" blocks.
func extractPPTX(data []byte) (string, int, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("open pptx: %w", err)
	}

	type slide struct {
		num  int
		name string
	}
	var slides []slide
	for _, f := range zr.File {
		dir, file := path.Split(f.Name)
		if dir != "ppt/slides/" || !strings.HasPrefix(file, "slide") || !strings.HasSuffix(file, ".xml") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(file, "slide"), ".xml"))
		if err != nil {
			continue
		}
		slides = append(slides, slide{num: n, name: f.Name})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	var b strings.Builder
	for _, s := range slides {
		part, err := readPart(zr, s.name)
		if err != nil {
			return "", 0, err
		}
		text, err := paragraphText(part, "t")
		if err != nil {
			return "", 0, fmt.Errorf("slide %d: %w", s.num, err)
		}
		fmt.Fprintf(&b, "Slide %d:\n%s\n\n", s.num, strings.TrimSpace(text))
	}
	return b.String(), len(slides), nil
}

func readPart(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		part, err := io.ReadAll(io.LimitReader(rc, maxPartSize))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return part, nil
	}
	return nil, fmt.Errorf("missing part %s", name)
}

// paragraphText walks WordprocessingML/DrawingML and collects the character
// data of text-run elements, breaking lines at paragraph ends.
func paragraphText(part []byte, textElem string) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(part))
	var (
		b      strings.Builder
		inText bool
		inTabs bool // tab stop definitions, not tab characters
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case textElem:
				inText = true
			case "tabs":
				inTabs = true
			case "tab":
				if !inTabs {
					b.WriteByte('\t')
				}
			case "br", "cr":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case textElem:
				inText = false
			case "tabs":
				inTabs = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}
