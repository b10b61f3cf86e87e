package export

import (
	"encoding/csv"
	"io"
)

// BOM makes Excel on Windows read the file as UTF-8.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes a BOM, the header row and rows to w.
func WriteCSV(w io.Writer, rows [][]string) error {
	if _, err := w.Write(BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
