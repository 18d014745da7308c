// Package crowd prepares crowd-sourced annotations of graph triples and
// turns them into verdicts on answers.
package crowd

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// RawRow is one worker's answer to one task, as exported by the crowdsourcing platform.
type RawRow struct {
	HITID        string
	BatchID      string
	WorkerID     string
	WorkSeconds  float64
	ApprovalRate float64 // percent
	Subject      string
	Predicate    string
	Object       string
	AnswerLabel  string
	FixPosition  string
	FixValue     string
}

const (
	LabelCorrect   = "CORRECT"
	LabelIncorrect = "INCORRECT"
	NotUnderstood  = "I don't understand"
)

var rawColumns = []string{
	"HITId", "HITTypeId", "WorkerId", "WorkTimeInSeconds", "LifetimeApprovalRate",
	"Input1ID", "Input2ID", "Input3ID", "AnswerLabel", "FixPosition", "FixValue",
}

func LoadRaw(path string) ([]RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open crowd data '%s': %w", path, err)
	}
	defer f.Close()

	rows, err := ReadRaw(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read crowd data '%s': %w", path, err)
	}
	return rows, nil
}

// ReadRaw parses a tab separated export with a header row.
func ReadRaw(r io.Reader) ([]RawRow, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, c := range rawColumns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}

	var rows []RawRow
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		get := func(col string) string {
			if i := idx[col]; i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}

		seconds, err := strconv.ParseFloat(get("WorkTimeInSeconds"), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad WorkTimeInSeconds: %w", line, err)
		}
		approval, err := strconv.ParseFloat(strings.TrimSuffix(get("LifetimeApprovalRate"), "%"), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad LifetimeApprovalRate: %w", line, err)
		}

		rows = append(rows, RawRow{
			HITID:        get("HITId"),
			BatchID:      get("HITTypeId"),
			WorkerID:     get("WorkerId"),
			WorkSeconds:  seconds,
			ApprovalRate: approval,
			Subject:      get("Input1ID"),
			Predicate:    get("Input2ID"),
			Object:       get("Input3ID"),
			AnswerLabel:  get("AnswerLabel"),
			FixPosition:  get("FixPosition"),
			FixValue:     get("FixValue"),
		})
	}
	return rows, nil
}
