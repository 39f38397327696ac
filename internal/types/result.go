package types

import "encoding/json"

// ResultKind discriminates the ComparisonResult variants. It is the
// external "type" tag in the JSONL export (spec.md §6).
type ResultKind string

const (
	KindText       ResultKind = "text"
	KindStructured ResultKind = "structured"
	KindHashOnly   ResultKind = "hash_only"
	KindError      ResultKind = "error"
)

// ColumnMismatch summarizes the differing values found in one common
// column during a structured comparison, capped at 5 samples.
type ColumnMismatch struct {
	Column        string          `json:"column"`
	MismatchCount int             `json:"mismatch_count"`
	Samples       []FieldMismatch `json:"samples"`
}

// FieldMismatch is one differing (key, value1, value2) sample.
type FieldMismatch struct {
	Key    string `json:"key"`
	Value1 string `json:"value1"`
	Value2 string `json:"value2"`
}

// TextResult is the text-diff backend's output (spec.md §4.4).
type TextResult struct {
	File1Path  string `json:"file1_path"`
	File2Path  string `json:"file2_path"`
	LinkedID   string `json:"linked_id"`
	Identical  bool   `json:"identical"`
	Similarity float64 `json:"similarity_score"`
	Algorithm  SimilarityAlgorithm `json:"algorithm"`

	LinesCommon    int `json:"lines_common"`
	LinesOnlyLeft  int `json:"lines_only_file1"`
	LinesOnlyRight int `json:"lines_only_file2"`

	// DifferentPositions is a run-length-encoded list of the 1-based
	// positions of deleted and inserted lines in the combined diff stream
	// (every equal, deleted or inserted line takes one position), e.g.
	// "1-3,5,7-9".
	DifferentPositions string `json:"different_positions"`

	DetailedDiff  string `json:"detailed_diff"`
	DiffTruncated bool   `json:"diff_truncated"`
	UnifiedDiff   string `json:"unified_diff,omitempty"`
}

// StructuredResult is the structured-join backend's output (spec.md §4.5).
type StructuredResult struct {
	File1Path  string  `json:"file1_path"`
	File2Path  string  `json:"file2_path"`
	LinkedID   string  `json:"linked_id"`
	Identical  bool    `json:"identical"`
	Similarity float64 `json:"similarity_score"`

	Records1Count int `json:"records1_count"`
	Records2Count int `json:"records2_count"`
	CommonRecords int `json:"common_records"`
	OnlyInFile1   int `json:"only_in_file1"`
	OnlyInFile2   int `json:"only_in_file2"`

	ColumnsOnlyInFile1 []string `json:"columns_only_in_file1"`
	ColumnsOnlyInFile2 []string `json:"columns_only_in_file2"`

	ColumnMismatches     []ColumnMismatch `json:"column_mismatches"`
	TotalFieldMismatches int              `json:"total_field_mismatches"`
}

// HashOnlyResult is the binary-file shortcut output (spec.md §4.6): two
// files compared by content hash alone, with no diff attempted.
type HashOnlyResult struct {
	File1Path string `json:"file1_path"`
	File2Path string `json:"file2_path"`
	LinkedID  string `json:"linked_id"`
	Identical bool   `json:"identical"`
	Hash1     string `json:"hash1"`
	Hash2     string `json:"hash2"`
}

// ErrorResult wraps a backend failure for one pair; it never aborts the
// run (spec.md §7 CompareError).
type ErrorResult struct {
	File1Path string `json:"file1_path"`
	File2Path string `json:"file2_path"`
	Error     string `json:"error"`
}

// ComparisonResult is the tagged-union result of comparing one
// CandidatePair. Exactly one of Text/Structured/HashOnly/Error is set,
// matching Kind.
type ComparisonResult struct {
	Kind       ResultKind
	Text       *TextResult
	Structured *StructuredResult
	HashOnly   *HashOnlyResult
	Error      *ErrorResult
}

func NewTextResult(r TextResult) ComparisonResult {
	return ComparisonResult{Kind: KindText, Text: &r}
}

func NewStructuredResult(r StructuredResult) ComparisonResult {
	return ComparisonResult{Kind: KindStructured, Structured: &r}
}

func NewHashOnlyResult(r HashOnlyResult) ComparisonResult {
	return ComparisonResult{Kind: KindHashOnly, HashOnly: &r}
}

func NewErrorResult(r ErrorResult) ComparisonResult {
	return ComparisonResult{Kind: KindError, Error: &r}
}

// LinkedID returns the cross-reference ID for any variant, or "" for Error
// (errors have no content hash to link on).
func (r ComparisonResult) LinkedID() string {
	switch r.Kind {
	case KindText:
		return r.Text.LinkedID
	case KindStructured:
		return r.Structured.LinkedID
	case KindHashOnly:
		return r.HashOnly.LinkedID
	default:
		return ""
	}
}

// SimilarityScore returns the variant's similarity score, or 0 for Error.
func (r ComparisonResult) SimilarityScore() float64 {
	switch r.Kind {
	case KindText:
		return r.Text.Similarity
	case KindStructured:
		return r.Structured.Similarity
	case KindHashOnly:
		if r.HashOnly.Identical {
			return 1.0
		}
		return 0.0
	default:
		return 0.0
	}
}

// IsIdentical reports whether the compared files were found equivalent.
func (r ComparisonResult) IsIdentical() bool {
	switch r.Kind {
	case KindText:
		return r.Text.Identical
	case KindStructured:
		return r.Structured.Identical
	case KindHashOnly:
		return r.HashOnly.Identical
	default:
		return false
	}
}

// FilePaths returns the two file paths involved, for any variant.
func (r ComparisonResult) FilePaths() (string, string) {
	switch r.Kind {
	case KindText:
		return r.Text.File1Path, r.Text.File2Path
	case KindStructured:
		return r.Structured.File1Path, r.Structured.File2Path
	case KindHashOnly:
		return r.HashOnly.File1Path, r.HashOnly.File2Path
	case KindError:
		return r.Error.File1Path, r.Error.File2Path
	default:
		return "", ""
	}
}

// MarshalJSON flattens the active variant alongside an external "type"
// discriminator field, matching the JSONL record shape in spec.md §6.
func (r ComparisonResult) MarshalJSON() ([]byte, error) {
	var payload any
	switch r.Kind {
	case KindText:
		payload = r.Text
	case KindStructured:
		payload = r.Structured
	case KindHashOnly:
		payload = r.HashOnly
	case KindError:
		payload = r.Error
	default:
		payload = struct{}{}
	}

	inner, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(inner, &fields); err != nil {
		return nil, err
	}
	fields["type"] = json.RawMessage(`"` + string(r.Kind) + `"`)
	return json.Marshal(fields)
}

// UnmarshalJSON reconstructs the active variant from its "type" tag.
func (r *ComparisonResult) UnmarshalJSON(data []byte) error {
	var tag struct {
		Type ResultKind `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return err
	}
	r.Kind = tag.Type
	switch tag.Type {
	case KindText:
		var v TextResult
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		r.Text = &v
	case KindStructured:
		var v StructuredResult
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		r.Structured = &v
	case KindHashOnly:
		var v HashOnlyResult
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		r.HashOnly = &v
	case KindError:
		var v ErrorResult
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		r.Error = &v
	}
	return nil
}
