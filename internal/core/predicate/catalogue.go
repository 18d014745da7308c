package predicate

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/AlbeMasera/ATAI/internal/core/vector"
	"github.com/AlbeMasera/ATAI/internal/llm"
)

// Entry is one catalogue row: a surface label, the canonical label it stands
// for, and the graph IRI both refer to.
type Entry struct {
	Label     string
	Canonical string
	IRI       string
}

// Catalogue pairs entries with their unit-normalised label embeddings.
type Catalogue struct {
	Entries []Entry
	Vectors [][]float32
}

func NewCatalogue(entries []Entry, vectors [][]float32) (*Catalogue, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("catalogue is empty")
	}
	if len(entries) != len(vectors) {
		return nil, fmt.Errorf("catalogue has %d entries but %d embeddings", len(entries), len(vectors))
	}
	norm := make([][]float32, len(vectors))
	for i, v := range vectors {
		norm[i] = vector.Normalize(v)
	}
	return &Catalogue{Entries: entries, Vectors: norm}, nil
}

// CheckEncoder encodes the first label and fails when the encoder's vectors
// do not have the catalogue's dimension.
func (c *Catalogue) CheckEncoder(ctx context.Context, encoder llm.Encoder) error {
	vecs, err := encoder.Encode(ctx, []string{c.Entries[0].Label})
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", c.Entries[0].Label, err)
	}
	if len(vecs) != 1 {
		return fmt.Errorf("encoder returned %d vectors for 1 input", len(vecs))
	}
	if got, want := len(vecs[0]), len(c.Vectors[0]); got != want {
		return fmt.Errorf("encoder dimension %d does not match catalogue dimension %d", got, want)
	}
	return nil
}

// Columns names the CSV header fields holding each Entry field. An empty
// Canonical column reuses Label.
type Columns struct {
	Label     string
	Canonical string
	IRI       string
}

var (
	PredicateColumns   = Columns{Label: "label", Canonical: "org_label", IRI: "predicate"}
	CrowdEntityColumns = Columns{Label: "label", IRI: "entity"}
)

// LoadCatalogue reads the entries CSV and the matching .npy embedding matrix.
func LoadCatalogue(csvPath, npyPath string, cols Columns) (*Catalogue, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalogue '%s': %w", csvPath, err)
	}
	defer f.Close()

	entries, err := readEntries(f, cols)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue '%s': %w", csvPath, err)
	}

	vectors, err := vector.LoadMatrix(npyPath)
	if err != nil {
		return nil, err
	}
	return NewCatalogue(entries, vectors)
}

func readEntries(r io.Reader, cols Columns) ([]Entry, error) {
	rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	header := rows.header
	labelIdx, ok := header[cols.Label]
	if !ok {
		return nil, fmt.Errorf("missing column %q", cols.Label)
	}
	iriIdx, ok := header[cols.IRI]
	if !ok {
		return nil, fmt.Errorf("missing column %q", cols.IRI)
	}
	canonIdx := labelIdx
	if cols.Canonical != "" {
		if canonIdx, ok = header[cols.Canonical]; !ok {
			return nil, fmt.Errorf("missing column %q", cols.Canonical)
		}
	}

	entries := make([]Entry, 0, len(rows.records))
	for _, rec := range rows.records {
		entries = append(entries, Entry{
			Label:     rec[labelIdx],
			Canonical: rec[canonIdx],
			IRI:       rec[iriIdx],
		})
	}
	return entries, nil
}

type csvRows struct {
	header  map[string]int
	records [][]string
}

func readCSV(r io.Reader) (csvRows, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	all, err := reader.ReadAll()
	if err != nil {
		return csvRows{}, err
	}
	if len(all) == 0 {
		return csvRows{}, fmt.Errorf("no header row")
	}
	header := make(map[string]int, len(all[0]))
	for i, h := range all[0] {
		header[h] = i
	}
	width := len(all[0])
	records := make([][]string, 0, len(all)-1)
	for i, rec := range all[1:] {
		if len(rec) < width {
			return csvRows{}, fmt.Errorf("row %d has %d fields, want %d", i+1, len(rec), width)
		}
		records = append(records, rec)
	}
	return csvRows{header: header, records: records}, nil
}

// ReplaceTable maps a canonical predicate label to the literal text the
// rewritten query should carry instead.
type ReplaceTable map[string]string

// LoadReplaceTable reads a CSV with "label" and "fixed" columns.
func LoadReplaceTable(path string) (ReplaceTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open replace table '%s': %w", path, err)
	}
	defer f.Close()

	rows, err := readCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read replace table '%s': %w", path, err)
	}
	labelIdx, ok := rows.header["label"]
	if !ok {
		return nil, fmt.Errorf("replace table: missing column \"label\"")
	}
	fixedIdx, ok := rows.header["fixed"]
	if !ok {
		return nil, fmt.Errorf("replace table: missing column \"fixed\"")
	}

	table := make(ReplaceTable, len(rows.records))
	for _, rec := range rows.records {
		if _, seen := table[rec[labelIdx]]; !seen {
			table[rec[labelIdx]] = rec[fixedIdx]
		}
	}
	return table, nil
}
