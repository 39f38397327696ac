package comparator

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/foldertools/comparetree/internal/types"
)

// keyedRecord pairs a composite join key with its raw field values.
// Ported from original_source/src/compare_structured.rs's KeyedRecord.
type keyedRecord struct {
	key    string
	fields []string
}

// readStructuredRecords reads entry as a tabular file and returns its
// header plus every data row, keyed by the configured key columns (or
// column 0 if none are configured). Ported from
// compare_structured.rs::read_structured_records.
func readStructuredRecords(entry *types.FileEntry, keyColumns []string) (header []string, records []keyedRecord, err error) {
	var rawHeader []string
	var rows [][]string

	switch entry.Type {
	case types.FileExcel:
		rawHeader, rows, err = readExcelRecords(entry.Path)
	default:
		delim := ','
		if entry.Type == types.FileTsv {
			delim = '\t'
		}
		rawHeader, rows, err = readDelimitedRecords(entry.Path, delim)
	}
	if err != nil {
		return nil, nil, err
	}

	keyIdx := keyColumnIndices(rawHeader, keyColumns)
	records = make([]keyedRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, keyedRecord{key: joinKey(row, keyIdx), fields: row})
	}
	return rawHeader, records, nil
}

func readDelimitedRecords(path string, delim rune) (header []string, rows [][]string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err = r.Read()
	if err != nil {
		return nil, nil, err
	}
	for {
		rec, err := r.Read()
		if err != nil {
			break
		}
		rows = append(rows, rec)
	}
	return header, rows, nil
}

func keyColumnIndices(header, keyColumns []string) []int {
	if len(keyColumns) == 0 {
		return []int{0}
	}
	idx := make([]int, 0, len(keyColumns))
	for _, name := range keyColumns {
		for i, h := range header {
			if h == name {
				idx = append(idx, i)
				break
			}
		}
	}
	if len(idx) == 0 {
		return []int{0}
	}
	return idx
}

func joinKey(row []string, keyIdx []int) string {
	parts := make([]string, 0, len(keyIdx))
	for _, i := range keyIdx {
		if i < len(row) {
			parts = append(parts, row[i])
		} else {
			parts = append(parts, "")
		}
	}
	return strings.Join(parts, "|")
}

// compareStructured implements the structured-join backend (spec.md
// §4.5): sorted merge-join over composite keys, column-set diffing, and
// numeric-tolerance field comparison. Ported from
// compare_structured.rs::compare_structured_files.
func compareStructured(pair types.CandidatePair, cfg types.CompareConfig) (types.StructuredResult, error) {
	left, right := pair.Left, pair.Right

	header1, recs1, err := readStructuredRecords(left, cfg.KeyColumns)
	if err != nil {
		return types.StructuredResult{}, fmt.Errorf("read %s: %w", left.Path, err)
	}
	header2, recs2, err := readStructuredRecords(right, cfg.KeyColumns)
	if err != nil {
		return types.StructuredResult{}, fmt.Errorf("read %s: %w", right.Path, err)
	}

	sort.Slice(recs1, func(i, j int) bool { return recs1[i].key < recs1[j].key })
	sort.Slice(recs2, func(i, j int) bool { return recs2[i].key < recs2[j].key })

	ignored := toSet(cfg.IgnoreColumns)
	cols1 := diffableColumns(header1, ignored)
	cols2 := diffableColumns(header2, ignored)

	common, onlyIn1, onlyIn2 := setDiff(cols1, cols2)

	idx1 := indexOf(header1)
	idx2 := indexOf(header2)

	keyCols := keyColumnSet(header1, cfg.KeyColumns)

	fieldMismatches := make(map[string][]types.FieldMismatch)
	var onlyLeft, onlyRight, commonCount int

	i, j := 0, 0
	for i < len(recs1) && j < len(recs2) {
		switch {
		case recs1[i].key < recs2[j].key:
			onlyLeft++
			i++
		case recs1[i].key > recs2[j].key:
			onlyRight++
			j++
		default:
			commonCount++
			for _, col := range common {
				if keyCols[col] {
					continue
				}
				v1 := fieldValue(recs1[i].fields, idx1, col)
				v2 := fieldValue(recs2[j].fields, idx2, col)
				if !valuesEqual(v1, v2, cfg.NumericTolerance) && len(fieldMismatches[col]) < 5 {
					fieldMismatches[col] = append(fieldMismatches[col], types.FieldMismatch{
						Key: recs1[i].key, Value1: v1, Value2: v2,
					})
				}
			}
			i++
			j++
		}
	}
	onlyLeft += len(recs1) - i
	onlyRight += len(recs2) - j

	var columnMismatches []types.ColumnMismatch
	var totalFieldMismatches int
	for _, col := range common {
		samples, ok := fieldMismatches[col]
		if !ok {
			continue
		}
		count := countMismatches(recs1, recs2, idx1, idx2, col, cfg.NumericTolerance)
		totalFieldMismatches += count
		columnMismatches = append(columnMismatches, types.ColumnMismatch{
			Column: col, MismatchCount: count, Samples: samples,
		})
	}
	sort.Slice(columnMismatches, func(i, j int) bool { return columnMismatches[i].Column < columnMismatches[j].Column })

	totalUnique := onlyLeft + onlyRight + commonCount
	similarity := 1.0
	if totalUnique > 0 {
		similarity = float64(commonCount) / float64(totalUnique)
	}

	return types.StructuredResult{
		File1Path:            left.Path,
		File2Path:            right.Path,
		LinkedID:             pair.LinkedID(),
		Identical:            onlyLeft == 0 && onlyRight == 0 && totalFieldMismatches == 0,
		Similarity:           similarity,
		Records1Count:        len(recs1),
		Records2Count:        len(recs2),
		CommonRecords:        commonCount,
		OnlyInFile1:          onlyLeft,
		OnlyInFile2:          onlyRight,
		ColumnsOnlyInFile1:   onlyIn1,
		ColumnsOnlyInFile2:   onlyIn2,
		ColumnMismatches:     columnMismatches,
		TotalFieldMismatches: totalFieldMismatches,
	}, nil
}

// keyColumnSet returns the set of column names excluded from
// field-mismatch comparison: every configured key column, or header[0]
// when none are configured. Mirrors compare_structured.rs:116's
// config.key_columns.contains(col) check across the full composite key,
// not just its first column.
func keyColumnSet(header []string, keyColumns []string) map[string]bool {
	set := make(map[string]bool, len(keyColumns))
	if len(keyColumns) > 0 {
		for _, k := range keyColumns {
			set[k] = true
		}
		return set
	}
	if len(header) > 0 {
		set[header[0]] = true
	}
	return set
}

func diffableColumns(header []string, ignored map[string]bool) []string {
	var cols []string
	for _, h := range header {
		if !ignored[h] {
			cols = append(cols, h)
		}
	}
	return cols
}

func setDiff(a, b []string) (common, onlyA, onlyB []string) {
	setA := toSet(a)
	setB := toSet(b)
	for _, c := range a {
		if setB[c] {
			common = append(common, c)
		} else {
			onlyA = append(onlyA, c)
		}
	}
	for _, c := range b {
		if !setA[c] {
			onlyB = append(onlyB, c)
		}
	}
	common = sortedCopy(common)
	onlyA = sortedCopy(onlyA)
	onlyB = sortedCopy(onlyB)
	return
}

func indexOf(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, h := range header {
		m[h] = i
	}
	return m
}

func fieldValue(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// valuesEqual compares two field values: exact string match first, then
// numeric-tolerance match (absolute OR relative), mirroring
// compare_structured.rs::values_equal.
func valuesEqual(v1, v2 string, tolerance float64) bool {
	if v1 == v2 {
		return true
	}
	f1, err1 := strconv.ParseFloat(v1, 64)
	f2, err2 := strconv.ParseFloat(v2, 64)
	if err1 != nil || err2 != nil {
		return false
	}
	diff := f1 - f2
	if diff < 0 {
		diff = -diff
	}
	if diff <= tolerance {
		return true
	}
	maxAbs := f1
	if maxAbs < 0 {
		maxAbs = -maxAbs
	}
	if absF2 := abs(f2); absF2 > maxAbs {
		maxAbs = absF2
	}
	if maxAbs == 0 {
		return false
	}
	return diff/maxAbs <= tolerance
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func countMismatches(recs1, recs2 []keyedRecord, idx1, idx2 map[string]int, col string, tolerance float64) int {
	m2 := make(map[string]keyedRecord, len(recs2))
	for _, r := range recs2 {
		m2[r.key] = r
	}
	count := 0
	for _, r1 := range recs1 {
		r2, ok := m2[r1.key]
		if !ok {
			continue
		}
		v1 := fieldValue(r1.fields, idx1, col)
		v2 := fieldValue(r2.fields, idx2, col)
		if !valuesEqual(v1, v2, tolerance) {
			count++
		}
	}
	return count
}
