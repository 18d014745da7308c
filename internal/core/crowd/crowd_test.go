package crowd

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlbeMasera/ATAI/internal/core/model"
)

const rawTSV = "HITId\tHITTypeId\tTitle\tWorkerId\tWorkTimeInSeconds\tLifetimeApprovalRate\tInput1ID\tInput2ID\tInput3ID\tAnswerLabel\tFixPosition\tFixValue\n" +
	"h1\t7QT\tt\tw1\t31\t98%\twd:Q11621\twdt:P2142\t792910554\tCORRECT\t\t\n" +
	"h1\t7QT\tt\tw2\t12\t100%\twd:Q11621\twdt:P2142\t792910554\tINCORRECT\tObject\t\n" +
	"h1\t7QT\tt\tw3\t45\t71%\twd:Q11621\twdt:P2142\t792910554\tINCORRECT\tObject\t837000000\n" +
	"h2\t7QT\tt\tw1\t20\t98%\twd:Q132863\twdt:P57\twd:Q25191\tCORRECT\t\t\n"

func TestReadRawAndAggregate(t *testing.T) {
	rows, err := ReadRaw(strings.NewReader(rawTSV))
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, 98.0, rows[0].ApprovalRate)
	assert.Equal(t, "Object", rows[1].FixPosition)

	records := Aggregate(rows)
	require.Len(t, records, 2)
	assert.Equal(t, model.CrowdRecord{
		HITID:       "h1",
		BatchID:     "7QT",
		Subject:     "http://www.wikidata.org/entity/Q11621",
		Predicate:   "http://www.wikidata.org/prop/direct/P2142",
		Object:      "792910554",
		Correct:     1,
		Incorrect:   2,
		FixPosition: "Object",
		FixValue:    "837000000",
	}, records[0])
	assert.Equal(t, "http://www.wikidata.org/entity/Q25191", records[1].Object)
}

func TestReadRawMissingColumn(t *testing.T) {
	_, err := ReadRaw(strings.NewReader("HITId\tWorkerId\nh1\tw1\n"))
	assert.Error(t, err)
}

func TestExpandFix(t *testing.T) {
	assert.Equal(t, "http://www.wikidata.org/prop/direct/P57", expandFix("P57"))
	assert.Equal(t, "http://www.wikidata.org/prop/direct/P57", expandFix("wdt:P57"))
	assert.Equal(t, "http://www.wikidata.org/entity/Q42", expandFix("Q42"))
	assert.Equal(t, "Quentin", expandFix("Quentin"))
	assert.Equal(t, "1999", expandFix("1999"))
}

func TestFleissKappa(t *testing.T) {
	k, ok := FleissKappa([]model.CrowdRecord{{Correct: 3}, {Incorrect: 3}})
	require.True(t, ok)
	assert.InDelta(t, 1.0, k, 1e-9)

	k, ok = FleissKappa([]model.CrowdRecord{{Correct: 2, Incorrect: 1}, {Correct: 1, Incorrect: 2}})
	require.True(t, ok)
	assert.InDelta(t, -1.0/3.0, k, 1e-9)

	_, ok = FleissKappa([]model.CrowdRecord{{Correct: 2}, {Correct: 1}})
	assert.False(t, ok)
}

func TestBatchRatings(t *testing.T) {
	ratings := BatchRatings([]model.CrowdRecord{
		{BatchID: "7QT", Correct: 3}, {BatchID: "7QT", Incorrect: 3},
		{BatchID: "8QT"},
	})
	assert.InDelta(t, 1.0, ratings["7QT"], 1e-9)
	assert.NotContains(t, ratings, "8QT")
}

func row(worker, label string, seconds, approval float64) RawRow {
	return RawRow{HITID: worker + label, WorkerID: worker, AnswerLabel: label, WorkSeconds: seconds, ApprovalRate: approval}
}

func TestFilterWorkers(t *testing.T) {
	notUnderstood := func(r RawRow) RawRow { r.FixPosition = NotUnderstood; return r }
	rows := []RawRow{
		row("good", LabelCorrect, 10, 95), row("good", LabelIncorrect, 20, 95), row("good", LabelCorrect, 30, 95),
		row("constant", LabelCorrect, 10, 95), row("constant", LabelCorrect, 20, 95), row("constant", LabelCorrect, 30, 95),
		row("fast", LabelIncorrect, 2, 95),
		notUnderstood(row("confused", LabelCorrect, 10, 95)), notUnderstood(row("confused", LabelIncorrect, 12, 95)),
		row("new", LabelCorrect, 30, 50),
		row("outlier", LabelIncorrect, 10, 60), row("outlier", LabelIncorrect, 20, 60), row("outlier", LabelCorrect, 30, 60),
	}

	kept, removed := FilterWorkers(rows, DefaultFilterOptions())

	workers := func(rs []RawRow) map[string]bool {
		m := make(map[string]bool)
		for _, r := range rs {
			m[r.WorkerID] = true
		}
		return m
	}
	assert.Equal(t, map[string]bool{"good": true, "new": true}, workers(kept))
	assert.Equal(t, map[string]bool{"constant": true, "fast": true, "confused": true, "outlier": true}, workers(removed))
	assert.Len(t, kept, 4)
}

func TestMode(t *testing.T) {
	assert.Equal(t, "CORRECT", mode([]string{"INCORRECT", "CORRECT", "CORRECT"}))
	assert.Equal(t, "A", mode([]string{"B", "A"}))
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "crowd.db"))
	require.NoError(t, err)
	defer s.Close()

	records := []model.CrowdRecord{
		{HITID: "h1", BatchID: "7QT", Subject: "s", Predicate: "p", Object: "o", Correct: 2, Incorrect: 1},
		{HITID: "h2", BatchID: "7QT", Subject: "s", Predicate: "q", Object: "o2", Incorrect: 3, FixPosition: "Predicate", FixValue: "p2"},
	}
	require.NoError(t, s.Import(ctx, records, map[string]float64{"7QT": 0.142857}))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := s.Lookup(ctx, "s", "p")
	require.NoError(t, err)
	assert.Equal(t, records[0], got)

	got, err = s.LookupFix(ctx, "s", "p2")
	require.NoError(t, err)
	assert.Equal(t, "h2", got.HITID)

	_, err = s.Lookup(ctx, "s", "missing")
	assert.True(t, errors.Is(err, model.ErrCrowdLookupEmpty))

	kappa, ok, err := s.BatchRating(ctx, "7QT")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 0.142857, kappa, 1e-9)

	_, ok, err = s.BatchRating(ctx, "9QT")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Import(ctx, records[:1], nil))
	n, err = s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
