package comparator

import (
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// excelCellToString normalizes one cell's already-formatted text the way
// original_source/src/compare_structured.rs::excel_cell_to_string
// normalizes calamine's typed cell values: integral floats are rendered
// without a trailing ".0", everything else is passed through trimmed.
//
// excelize's row iterator (unlike calamine) hands back pre-formatted
// strings rather than a typed cell enum, so the exhaustive
// Int/Float/Bool/Error/DateTime match arms in the original have no 1:1
// equivalent here; this is the closest reproducible approximation of
// that table using the API excelize actually exposes.
func excelCellToString(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		if f == float64(int64(f)) && !strings.ContainsAny(raw, "eE") {
			return strconv.FormatInt(int64(f), 10)
		}
	}
	return raw
}

// readExcelRecords reads the first worksheet of an Excel workbook,
// treating row 1 as headers. Short rows are padded with empty fields to
// match the header width, matching parse_excel_into_sorted_vec's padding
// loop.
func readExcelRecords(path string) (header []string, records [][]string, err error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = wb.Close() }()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, errNoWorksheets
	}

	rows, err := wb.Rows(sheets[0])
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = rows.Close() }()

	first := true
	for rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			continue
		}
		for i := range cols {
			cols[i] = excelCellToString(cols[i])
		}
		if first {
			header = cols
			first = false
			continue
		}
		for len(cols) < len(header) {
			cols = append(cols, "")
		}
		records = append(records, cols)
	}
	return header, records, nil
}

var errNoWorksheets = simpleErr("excel file has no worksheets")

type simpleErr string

func (e simpleErr) Error() string { return string(e) }
