// Package importer parses expense spreadsheets (CSV or XLSX) into records.
//
// Files carry a header row followed by the columns Date, Category,
// Description and Amount. Rows that cannot be parsed are skipped; the
// caller decides what to do with records that parse but fail validation.
package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"spendwise/internal/core"
)

// ExpectedFormat describes the accepted column layout.
const ExpectedFormat = "Columns: Date, Category, Description, Amount"

var (
	// ErrUnsupportedType is returned for extensions other than .csv, .txt
	// and .xlsx.
	ErrUnsupportedType = errors.New("Only CSV, TXT, and Excel files are allowed")

	// AllowedExtensions lists the accepted file extensions.
	AllowedExtensions = []string{".csv", ".txt", ".xlsx"}
)

// Record is one parsed data row. RowNumber is 1-based and counts the
// header, so the first data row is 2.
type Record struct {
	Date        core.Date
	Category    string
	Description string
	Amount      decimal.Decimal
	RowNumber   int
}

var dateLayouts = []string{
	core.DateLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"02-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"01-02-06",
	"1/2/06",
}

// FileType returns the upper-case extension without the dot, e.g. "CSV".
func FileType(name string) string {
	return strings.ToUpper(strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), "."))
}

// Supported reports whether name has an accepted extension.
func Supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, a := range AllowedExtensions {
		if ext == a {
			return true
		}
	}
	return false
}

// Parse reads r as the file type implied by name.
func Parse(r io.Reader, name string) ([]Record, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		return ParseXLSX(r)
	case ".csv", ".txt":
		return ParseCSV(r)
	default:
		return nil, ErrUnsupportedType
	}
}

// ParseCSV reads delimited text. The delimiter is detected from the header
// line among comma, semicolon, tab and pipe.
func ParseCSV(r io.Reader) ([]Record, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	cr := csv.NewReader(br)
	cr.Comma = detectDelimiter(head)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var records []Record
	row := 0
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			// Malformed lines are skipped like any other unparseable row.
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue
			}
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if row == 1 {
			continue
		}
		if rec, ok := parseRow(fields, row); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// ParseXLSX reads the first worksheet of a workbook.
func ParseXLSX(r io.Reader) ([]Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	var records []Record
	for i, fields := range rows {
		if i == 0 {
			continue
		}
		if rec, ok := parseRow(fields, i+1); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

func detectDelimiter(head []byte) rune {
	line := head
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		line = head[:i]
	}
	best, bestCount := ',', 0
	for _, d := range []rune{',', ';', '\t', '|'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func parseRow(fields []string, row int) (Record, bool) {
	if len(fields) < 4 {
		return Record{}, false
	}
	dateStr := strings.TrimSpace(fields[0])
	category := strings.TrimSpace(fields[1])
	description := strings.TrimSpace(fields[2])
	amountStr := strings.TrimSpace(fields[3])
	if dateStr == "" || category == "" || description == "" || amountStr == "" {
		return Record{}, false
	}

	date, ok := parseDate(dateStr)
	if !ok {
		return Record{}, false
	}
	amount, err := decimal.NewFromString(strings.NewReplacer("$", "", ",", "").Replace(amountStr))
	if err != nil || !amount.IsPositive() {
		return Record{}, false
	}

	return Record{
		Date:        date,
		Category:    category,
		Description: description,
		Amount:      amount,
		RowNumber:   row,
	}, true
}

func parseDate(s string) (core.Date, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return core.DateOf(t), true
		}
	}
	// Raw workbook cells hold dates as serial numbers.
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return core.DateOf(t), true
		}
	}
	return core.Date{}, false
}
