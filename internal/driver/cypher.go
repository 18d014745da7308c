package driver

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/AlbeMasera/ATAI/internal/core/model"
)

const (
	DefaultLabelLimit  = 50
	DefaultImportBatch = 5000
)

// CypherStore answers Store lookups with parameterized Cypher. User text only
// ever travels as a query parameter.
type CypherStore struct {
	Driver     GraphDriver
	LabelLimit int
}

func NewCypherStore(d GraphDriver) *CypherStore {
	return &CypherStore{Driver: d, LabelLimit: DefaultLabelLimit}
}

func (s *CypherStore) FindByLabel(ctx context.Context, text, class string) ([]LabeledNode, error) {
	res, err := s.Driver.ExecuteQuery(ctx, FindByLabelQuery, map[string]interface{}{
		"label_predicate": RDFSLabel,
		"instance_of":     InstanceOf,
		"subclass_of":     SubclassOf,
		"text":            text,
		"class":           class,
		"limit":           int64(s.LabelLimit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find nodes by label: %w", err)
	}

	nodes := make([]LabeledNode, 0, len(res.Records))
	for _, rec := range res.Records {
		nodes = append(nodes, LabeledNode{
			IRI:   stringValue(rec, "iri"),
			Label: stringValue(rec, "label"),
		})
	}
	return nodes, nil
}

func (s *CypherStore) Labels(ctx context.Context, node string) ([]model.Term, error) {
	res, err := s.Driver.ExecuteQuery(ctx, GetLabelsQuery, map[string]interface{}{
		"iri":             node,
		"label_predicate": RDFSLabel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get labels: %w", err)
	}

	labels := make([]model.Term, 0, len(res.Records))
	for _, rec := range res.Records {
		labels = append(labels, model.Literal(stringValue(rec, "value"), stringValue(rec, "lang")))
	}
	return labels, nil
}

func (s *CypherStore) Objects(ctx context.Context, subject, predicate string) ([]model.Term, error) {
	res, err := s.Driver.ExecuteQuery(ctx, GetObjectsQuery, map[string]interface{}{
		"subject":   subject,
		"predicate": predicate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get objects: %w", err)
	}

	objects := make([]model.Term, 0, len(res.Records))
	for _, rec := range res.Records {
		if iri := stringValue(rec, "iri"); iri != "" {
			objects = append(objects, model.IRI(iri))
			continue
		}
		objects = append(objects, model.Literal(stringValue(rec, "value"), stringValue(rec, "lang")))
	}
	return objects, nil
}

func (s *CypherStore) InstanceOf(ctx context.Context, node, class string) (bool, error) {
	res, err := s.Driver.ExecuteQuery(ctx, InstanceOfQuery, map[string]interface{}{
		"iri":         node,
		"class":       class,
		"instance_of": InstanceOf,
		"subclass_of": SubclassOf,
	})
	if err != nil {
		return false, fmt.Errorf("failed to check class: %w", err)
	}
	if len(res.Records) == 0 {
		return false, nil
	}
	ok, _ := res.Records[0].Get("ok")
	b, _ := ok.(bool)
	return b, nil
}

// ImportTriples writes triples in batches of batchSize.
func (s *CypherStore) ImportTriples(ctx context.Context, triples []Triple, batchSize int) error {
	if batchSize <= 0 {
		batchSize = DefaultImportBatch
	}
	for start := 0; start < len(triples); start += batchSize {
		end := min(start+batchSize, len(triples))

		var resources, literals []map[string]interface{}
		for _, t := range triples[start:end] {
			row := map[string]interface{}{
				"subject":   t.Subject,
				"predicate": t.Predicate,
				"object":    t.Object.Value,
			}
			if t.Object.IsIRI() {
				resources = append(resources, row)
				continue
			}
			row["lang"] = t.Object.Lang
			literals = append(literals, row)
		}

		if len(resources) > 0 {
			if _, err := s.Driver.ExecuteQuery(ctx, ImportResourceTriplesQuery, map[string]interface{}{"rows": resources}); err != nil {
				return fmt.Errorf("failed to import triples %d-%d: %w", start, end, err)
			}
		}
		if len(literals) > 0 {
			if _, err := s.Driver.ExecuteQuery(ctx, ImportLiteralTriplesQuery, map[string]interface{}{"rows": literals}); err != nil {
				return fmt.Errorf("failed to import literals %d-%d: %w", start, end, err)
			}
		}
	}
	return nil
}

// CountTriples returns the number of stored triples.
func (s *CypherStore) CountTriples(ctx context.Context) (int64, error) {
	res, err := s.Driver.ExecuteQuery(ctx, CountTriplesQuery, nil)
	if err != nil {
		return 0, err
	}
	if len(res.Records) == 0 {
		return 0, nil
	}
	v, _ := res.Records[0].Get("count")
	n, _ := v.(int64)
	return n, nil
}

func (s *CypherStore) Close(ctx context.Context) error {
	return s.Driver.Close(ctx)
}

func stringValue(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return ""
	}
	str, _ := v.(string)
	return str
}
