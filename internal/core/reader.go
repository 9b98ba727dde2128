package core

// reader.go turns roster files into Rows.
//
// Roster files have no header line; column names come from configuration
// and every physical line is a Row (header banners are dropped later by
// the skip count). Windows exports often start with a UTF-8 BOM and carry
// stray Latin-1 bytes, so CSV input is cleaned before parsing:
//   - the BOM is removed
//   - invalid UTF-8 sequences become U+FFFD

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// RowReader reads every line of a roster file as a Row.
type RowReader interface {
	ReadRows(ctx context.Context, path string, index HeaderIndex) ([]Row, error)
}

// ReaderFor picks a RowReader by file extension.
func ReaderFor(path string) (RowReader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return CSVReader{}, nil
	case ".xlsx":
		return XLSXReader{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// CSVReader reads comma separated rosters.
type CSVReader struct {
	Comma rune // defaults to ','
}

// ReadRows implements RowReader.
func (r CSVReader) ReadRows(ctx context.Context, path string, index HeaderIndex) ([]Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileError{Op: "read", Path: path, Err: err}
	}
	rows, err := r.parse(ctx, data, index)
	if err != nil {
		return nil, &FileError{Op: "read", Path: path, Err: err}
	}
	return rows, nil
}

func (r CSVReader) parse(ctx context.Context, data []byte, index HeaderIndex) ([]Row, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	data = bytes.ToValidUTF8(data, []byte("\uFFFD"))

	cr := csv.NewReader(bytes.NewReader(data))
	if r.Comma != 0 {
		cr.Comma = r.Comma
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = false

	var rows []Row
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, Row{Line: line, Values: record, Index: index})
	}
	return rows, nil
}

// XLSXReader reads the first sheet of a spreadsheet roster.
type XLSXReader struct{}

// ReadRows implements RowReader.
func (XLSXReader) ReadRows(ctx context.Context, path string, index HeaderIndex) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &FileError{Op: "read", Path: path, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &FileError{Op: "read", Path: path, Err: errors.New("workbook has no sheets")}
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &FileError{Op: "read", Path: path, Err: err}
	}

	rows := make([]Row, 0, len(records))
	for i, record := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows = append(rows, Row{Line: i + 1, Values: record, Index: index})
	}
	return rows, nil
}
