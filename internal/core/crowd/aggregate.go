package crowd

import (
	"strings"

	"github.com/AlbeMasera/ATAI/internal/core/model"
	"github.com/AlbeMasera/ATAI/internal/driver"
)

// Aggregate folds worker rows into one record per task, in order of first
// appearance. Compact identifiers ("wd:Q1", "wdt:P57", "ddis:x") are expanded
// to full IRIs.
func Aggregate(rows []RawRow) []model.CrowdRecord {
	index := make(map[string]int)
	var records []model.CrowdRecord

	for _, r := range rows {
		i, ok := index[r.HITID]
		if !ok {
			i = len(records)
			index[r.HITID] = i
			records = append(records, model.CrowdRecord{
				HITID:     r.HITID,
				BatchID:   r.BatchID,
				Subject:   expandEntity(r.Subject),
				Predicate: expandPredicate(r.Predicate),
				Object:    expandObject(r.Object),
			})
		}
		rec := &records[i]

		switch r.AnswerLabel {
		case LabelCorrect:
			rec.Correct++
		case LabelIncorrect:
			rec.Incorrect++
		}
		if rec.FixPosition == "" && r.FixPosition != "" {
			rec.FixPosition = r.FixPosition
		}
		if rec.FixValue == "" && r.FixValue != "" {
			rec.FixValue = expandFix(r.FixValue)
		}
	}
	return records
}

func expandEntity(v string) string {
	return driver.WD + strings.TrimPrefix(v, "wd:")
}

func expandPredicate(v string) string {
	switch {
	case strings.HasPrefix(v, "wdt:"):
		return driver.WDT + strings.TrimPrefix(v, "wdt:")
	case strings.HasPrefix(v, "ddis:"):
		return driver.DDIS + strings.TrimPrefix(v, "ddis:")
	default:
		return v
	}
}

func expandObject(v string) string {
	if strings.HasPrefix(v, "wd:") {
		return driver.WD + strings.TrimPrefix(v, "wd:")
	}
	return v
}

func expandFix(v string) string {
	switch {
	case strings.HasPrefix(v, "wdt:"):
		return driver.WDT + strings.TrimPrefix(v, "wdt:")
	case strings.HasPrefix(v, "wd:"):
		return driver.WD + strings.TrimPrefix(v, "wd:")
	case isWikidataID(v, 'P'):
		return driver.WDT + v
	case isWikidataID(v, 'Q'):
		return driver.WD + v
	default:
		return v
	}
}

func isWikidataID(v string, prefix byte) bool {
	if len(v) < 2 || v[0] != prefix {
		return false
	}
	for i := 1; i < len(v); i++ {
		if v[i] < '0' || v[i] > '9' {
			return false
		}
	}
	return true
}

// FleissKappa computes the inter-rater agreement of one batch of tasks with
// two categories.
func FleissKappa(records []model.CrowdRecord) (float64, bool) {
	var correct, incorrect int
	for _, r := range records {
		correct += r.Correct
		incorrect += r.Incorrect
	}
	total := correct + incorrect
	if total == 0 || len(records) == 0 {
		return 0, false
	}

	pc := float64(correct) / float64(total)
	pi := float64(incorrect) / float64(total)
	pe := pc*pc + pi*pi
	if pe == 1 {
		return 0, false
	}

	var po float64
	for _, r := range records {
		n := r.Correct + r.Incorrect
		if n <= 1 {
			continue
		}
		po += float64(r.Correct*r.Correct+r.Incorrect*r.Incorrect-n) / float64(n*(n-1))
	}
	po /= float64(len(records))

	return (po - pe) / (1 - pe), true
}

// BatchRatings computes the Fleiss' kappa of every batch that has one.
func BatchRatings(records []model.CrowdRecord) map[string]float64 {
	byBatch := make(map[string][]model.CrowdRecord)
	for _, r := range records {
		byBatch[r.BatchID] = append(byBatch[r.BatchID], r)
	}
	ratings := make(map[string]float64, len(byBatch))
	for batch, recs := range byBatch {
		if k, ok := FleissKappa(recs); ok {
			ratings[batch] = k
		}
	}
	return ratings
}
