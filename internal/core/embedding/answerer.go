// Package embedding answers questions with translational (TransE) graph
// embeddings: the answer to (e, r) is the entity nearest to E[e] + R[r].
package embedding

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/AlbeMasera/ATAI/internal/core/model"
	"github.com/AlbeMasera/ATAI/internal/core/vector"
	"github.com/AlbeMasera/ATAI/internal/logging"
)

// Relation is a predicate label the answerer may score.
type Relation struct {
	Label     string
	Predicate string
}

type Answerer struct {
	entities  [][]float32
	relations [][]float32

	entityRow   map[string]int
	entityIRI   []string
	relationRow map[string]int

	byLabel map[string]model.RelationDescriptor
}

// NewAnswerer wires the matrices to their id maps. Relations whose
// predicate has no embedding row are dropped.
func NewAnswerer(entities, relations [][]float32, entityIDs, relationIDs map[string]int, table []Relation) (*Answerer, error) {
	entityIRI := make([]string, len(entities))
	for iri, row := range entityIDs {
		if row < 0 || row >= len(entities) {
			return nil, fmt.Errorf("entity %s maps to row %d of %d", iri, row, len(entities))
		}
		entityIRI[row] = iri
	}
	for iri, row := range relationIDs {
		if row < 0 || row >= len(relations) {
			return nil, fmt.Errorf("relation %s maps to row %d of %d", iri, row, len(relations))
		}
	}

	byLabel := make(map[string]model.RelationDescriptor, len(table))
	for _, r := range table {
		row, ok := relationIDs[r.Predicate]
		if !ok {
			logging.Warn().Str("label", r.Label).Str("predicate", r.Predicate).Msg("relation has no embedding, skipping")
			continue
		}
		byLabel[r.Label] = model.RelationDescriptor{Label: r.Label, Predicate: r.Predicate, Row: row}
	}

	return &Answerer{
		entities:    entities,
		relations:   relations,
		entityRow:   entityIDs,
		entityIRI:   entityIRI,
		relationRow: relationIDs,
		byLabel:     byLabel,
	}, nil
}

// Paths locates the embedding artifacts.
type Paths struct {
	Entities    string
	Relations   string
	EntityIDs   string
	RelationIDs string
}

func Load(p Paths, table []Relation) (*Answerer, error) {
	entities, err := vector.LoadMatrix(p.Entities)
	if err != nil {
		return nil, err
	}
	relations, err := vector.LoadMatrix(p.Relations)
	if err != nil {
		return nil, err
	}
	entityIDs, err := LoadIDs(p.EntityIDs)
	if err != nil {
		return nil, err
	}
	relationIDs, err := LoadIDs(p.RelationIDs)
	if err != nil {
		return nil, err
	}
	return NewAnswerer(entities, relations, entityIDs, relationIDs, table)
}

// LoadIDs reads a tab separated "row<TAB>iri" id map.
func LoadIDs(path string) (map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open id map '%s': %w", path, err)
	}
	defer f.Close()

	ids, err := ReadIDs(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read id map '%s': %w", path, err)
	}
	return ids, nil
}

func ReadIDs(r io.Reader) (map[string]int, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = 2
	reader.LazyQuotes = true

	ids := make(map[string]int)
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("bad row index %q: %w", rec[0], err)
		}
		ids[rec[1]] = row
	}
	return ids, nil
}

// HasEmbedding reports whether the predicate label can be scored.
func (a *Answerer) HasEmbedding(label string) (model.RelationDescriptor, bool) {
	d, ok := a.byLabel[label]
	return d, ok
}

func (a *Answerer) Relations() []model.RelationDescriptor {
	out := make([]model.RelationDescriptor, 0, len(a.byLabel))
	for _, d := range a.byLabel {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// ScoreAnswer returns the entity nearest, in Euclidean distance, to
// E[entity] + R[relation]. The input entity is never returned and ties go
// to the lower row.
func (a *Answerer) ScoreAnswer(ctx context.Context, entity model.Term, relation model.RelationDescriptor) (model.Term, error) {
	row, ok := a.entityRow[entity.Value]
	if !ok {
		return model.Term{}, fmt.Errorf("%w: no embedding for %s", model.ErrEmbeddingScoringFailed, entity.Value)
	}
	if relation.Row < 0 || relation.Row >= len(a.relations) {
		return model.Term{}, fmt.Errorf("%w: relation row %d out of range", model.ErrEmbeddingScoringFailed, relation.Row)
	}

	target := vector.Add(a.entities[row], a.relations[relation.Row])
	best, bestDist := -1, float32(math.Inf(1))
	for i, e := range a.entities {
		if i == row {
			continue
		}
		if d := vector.SquaredDistance(target, e); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 || a.entityIRI[best] == "" {
		return model.Term{}, fmt.Errorf("%w: no candidate for %s", model.ErrEmbeddingScoringFailed, entity.Value)
	}

	logging.Ctx(ctx).Debug().
		Str("entity", entity.Value).
		Str("relation", relation.Label).
		Str("answer", a.entityIRI[best]).
		Float32("distance", float32(math.Sqrt(float64(bestDist)))).
		Msg("embedding answer")
	return model.IRI(a.entityIRI[best]), nil
}

// KNearest returns the k entities with the smallest summed Euclidean
// distance to the seeds, excluding the seeds. Seeds without an embedding are
// ignored; ErrEmbeddingScoringFailed when none has one.
func (a *Answerer) KNearest(ctx context.Context, seeds []model.Term, k int) ([]model.Term, error) {
	isSeed := make(map[int]bool, len(seeds))
	var rows []int
	for _, s := range seeds {
		if row, ok := a.entityRow[s.Value]; ok && !isSeed[row] {
			isSeed[row] = true
			rows = append(rows, row)
		}
	}
	sort.Ints(rows)
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no seed has an embedding", model.ErrEmbeddingScoringFailed)
	}

	type scored struct {
		row  int
		dist float64
	}
	candidates := make([]scored, 0, len(a.entities))
	for i, e := range a.entities {
		if isSeed[i] || a.entityIRI[i] == "" {
			continue
		}
		var sum float64
		for _, row := range rows {
			sum += math.Sqrt(float64(vector.SquaredDistance(a.entities[row], e)))
		}
		candidates = append(candidates, scored{row: i, dist: sum})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].dist < candidates[j].dist })

	k = max(0, min(k, len(candidates)))
	out := make([]model.Term, 0, k)
	for _, c := range candidates[:k] {
		out = append(out, model.IRI(a.entityIRI[c.row]))
	}
	return out, nil
}
