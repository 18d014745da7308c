package driver

import (
	"context"
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlbeMasera/ATAI/internal/core/model"
)

type executedQuery struct {
	Query  string
	Params map[string]interface{}
}

type MockDriver struct {
	Executed   []executedQuery
	MockResult neo4j.EagerResult
	Err        error
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.Executed = append(m.Executed, executedQuery{Query: query, Params: params})
	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}
	return m.MockResult, nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error { return nil }

func (m *MockDriver) Close(ctx context.Context) error { return nil }

func TestCypherStoreFindByLabelPassesTextAsParameter(t *testing.T) {
	d := &MockDriver{MockResult: neo4j.EagerResult{Records: []*neo4j.Record{
		{Keys: []string{"iri", "label"}, Values: []any{WD + "Q25188", "Inception"}},
	}}}
	s := NewCypherStore(d)

	text := `Inception") RETURN 1 //`
	nodes, err := s.FindByLabel(context.Background(), text, movieClass)
	require.NoError(t, err)
	assert.Equal(t, []LabeledNode{{IRI: WD + "Q25188", Label: "Inception"}}, nodes)

	require.Len(t, d.Executed, 1)
	assert.Equal(t, FindByLabelQuery, d.Executed[0].Query)
	assert.NotContains(t, d.Executed[0].Query, text)
	assert.Equal(t, text, d.Executed[0].Params["text"])
	assert.Equal(t, movieClass, d.Executed[0].Params["class"])
}

func TestCypherStoreObjectsMixesIRIsAndLiterals(t *testing.T) {
	d := &MockDriver{MockResult: neo4j.EagerResult{Records: []*neo4j.Record{
		{Keys: []string{"iri", "value", "lang"}, Values: []any{WD + "Q25191", nil, nil}},
		{Keys: []string{"iri", "value", "lang"}, Values: []any{nil, "2010-07-08", nil}},
	}}}
	s := NewCypherStore(d)

	objs, err := s.Objects(context.Background(), WD+"Q25188", WDT+"P57")
	require.NoError(t, err)
	assert.Equal(t, []model.Term{model.IRI(WD + "Q25191"), model.Literal("2010-07-08", "")}, objs)
}

func TestCypherStoreInstanceOf(t *testing.T) {
	d := &MockDriver{MockResult: neo4j.EagerResult{Records: []*neo4j.Record{
		{Keys: []string{"ok"}, Values: []any{true}},
	}}}
	ok, err := NewCypherStore(d).InstanceOf(context.Background(), WD+"Q25188", movieClass)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCypherStoreImportTriplesBatches(t *testing.T) {
	d := &MockDriver{}
	s := NewCypherStore(d)

	err := s.ImportTriples(context.Background(), []Triple{
		{Subject: WD + "Q1", Predicate: WDT + "P57", Object: model.IRI(WD + "Q2")},
		{Subject: WD + "Q1", Predicate: RDFSLabel, Object: model.Literal("One", "en")},
		{Subject: WD + "Q3", Predicate: WDT + "P57", Object: model.IRI(WD + "Q2")},
	}, 2)
	require.NoError(t, err)

	require.Len(t, d.Executed, 3)
	assert.Equal(t, ImportResourceTriplesQuery, d.Executed[0].Query)
	assert.Equal(t, ImportLiteralTriplesQuery, d.Executed[1].Query)
	rows := d.Executed[1].Params["rows"].([]map[string]interface{})
	assert.Equal(t, "en", rows[0]["lang"])
	assert.Equal(t, ImportResourceTriplesQuery, d.Executed[2].Query)
}

func TestCypherStoreWrapsErrors(t *testing.T) {
	boom := errors.New("connection refused")
	_, err := NewCypherStore(&MockDriver{Err: boom}).Labels(context.Background(), WD+"Q1")
	assert.ErrorIs(t, err, boom)
}
