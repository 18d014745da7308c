package crowd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AlbeMasera/ATAI/internal/core/model"
)

type MockEntityMatcher struct {
	IRI string
}

func (m *MockEntityMatcher) Match(ctx context.Context, query string) (model.CatalogueMatch, error) {
	if m.IRI == "" {
		return model.CatalogueMatch{}, model.ErrNoPredicateMatch
	}
	return model.CatalogueMatch{Label: "Tom Meets Zizou", IRI: m.IRI, Query: query}, nil
}

type MockStore struct {
	Records []model.CrowdRecord
	Ratings map[string]float64
}

func (m *MockStore) Lookup(ctx context.Context, subject, predicate string) (model.CrowdRecord, error) {
	for _, r := range m.Records {
		if r.Subject == subject && r.Predicate == predicate {
			return r, nil
		}
	}
	return model.CrowdRecord{}, model.ErrCrowdLookupEmpty
}

func (m *MockStore) LookupFix(ctx context.Context, subject, value string) (model.CrowdRecord, error) {
	for _, r := range m.Records {
		if r.Subject == subject && r.FixValue == value {
			return r, nil
		}
	}
	return model.CrowdRecord{}, model.ErrCrowdLookupEmpty
}

func (m *MockStore) BatchRating(ctx context.Context, batchID string) (float64, bool, error) {
	k, ok := m.Ratings[batchID]
	return k, ok, nil
}

type MockLabeler map[string]string

func (m MockLabeler) LabelOf(ctx context.Context, node model.Term) (string, error) {
	if l, ok := m[node.Value]; ok {
		return l, nil
	}
	return "", model.ErrNotFound
}

const (
	zizou    = "http://www.wikidata.org/entity/Q1"
	pubDate  = "http://www.wikidata.org/prop/direct/P577"
	director = "http://www.wikidata.org/prop/direct/P57"
	person   = "http://www.wikidata.org/entity/Q2"
)

func responder(records ...model.CrowdRecord) *Responder {
	return NewResponder(
		&MockEntityMatcher{IRI: zizou},
		&MockStore{Records: records, Ratings: map[string]float64{"7QT": 0.142857}},
		MockLabeler{person: "Dietmar Hamann"},
	)
}

func TestRespondCorrectMajority(t *testing.T) {
	r := responder(model.CrowdRecord{BatchID: "7QT", Subject: zizou, Predicate: director, Object: person, Correct: 8, Incorrect: 2})

	v := r.Respond(context.Background(), "Who directed Tom Meets Zizou?", director)
	assert.Equal(t, model.VerdictCorrect, v.Level)
	assert.Contains(t, v.Message, "Dietmar Hamann ("+person+")")
	assert.Equal(t, "Voted 8 Correct and 2 Incorrect. Batch agreement (Fleiss' kappa): 0.143", v.Stats)
}

func TestRespondValueCorrection(t *testing.T) {
	r := responder(model.CrowdRecord{BatchID: "8QT", Subject: zizou, Predicate: pubDate, Object: "2011-01-01",
		Correct: 2, Incorrect: 8, FixPosition: "Object", FixValue: "2011-10-01"})

	v := r.Respond(context.Background(), "When was Tom Meets Zizou released?", pubDate)
	assert.Equal(t, model.VerdictValue, v.Level)
	assert.Equal(t, "The crowd found some errors. The proposed fixed value is: 2011-10-01.", v.Message)
	assert.Contains(t, v.Stats, "Rating not available")
}

func TestRespondQuestionBackOnSubjectFix(t *testing.T) {
	r := responder(model.CrowdRecord{Subject: zizou, Predicate: director, Object: person,
		Incorrect: 3, FixPosition: "Subject", FixValue: "Q3"})

	v := r.Respond(context.Background(), "q", director)
	assert.Equal(t, model.VerdictValue, v.Level)
	assert.Contains(t, v.Message, "proposed a correction Q3 for the Subject")
}

func TestRespondPositionOnly(t *testing.T) {
	r := responder(model.CrowdRecord{Subject: zizou, Predicate: director, Object: person, Incorrect: 2, FixPosition: "Object"})

	v := r.Respond(context.Background(), "q", director)
	assert.Equal(t, model.VerdictPosition, v.Level)
	assert.Contains(t, v.Message, "Errors were found at: Object")
}

func TestRespondFixedPredicate(t *testing.T) {
	r := responder(model.CrowdRecord{Subject: zizou, Predicate: pubDate, Object: person, Incorrect: 2,
		FixPosition: "Predicate", FixValue: director})

	v := r.Respond(context.Background(), "q", director)
	assert.Equal(t, model.VerdictPredicate, v.Level)
	assert.Contains(t, v.Message, "The crowd suggests the value Dietmar Hamann")
}

func TestRespondNone(t *testing.T) {
	ctx := context.Background()

	v := responder().Respond(ctx, "q", "")
	assert.Equal(t, model.VerdictNone, v.Level)
	assert.Empty(t, v.Text())

	v = NewResponder(&MockEntityMatcher{}, &MockStore{}, MockLabeler{}).Respond(ctx, "q", director)
	assert.Equal(t, model.VerdictNone, v.Level)

	v = responder().Respond(ctx, "q", director)
	assert.Equal(t, model.VerdictNone, v.Level)
	assert.Equal(t, msgNoAnswer, v.Message)
}
