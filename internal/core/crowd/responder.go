package crowd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlbeMasera/ATAI/internal/core/model"
	"github.com/AlbeMasera/ATAI/internal/logging"
)

// EntityMatcher finds the crowd catalogue entity a query mentions.
type EntityMatcher interface {
	Match(ctx context.Context, query string) (model.CatalogueMatch, error)
}

// Labeler renders a graph node as text.
type Labeler interface {
	LabelOf(ctx context.Context, node model.Term) (string, error)
}

const (
	msgNoPredicate = "Sorry, I couldn't find any predicates in your question. Should we try another question?"
	msgNoEntity    = "Sorry, I couldn't find that entity in the dataset. Should we try another question?"
	msgNoAnswer    = "No answer found in the crowd dataset."
	msgNoRating    = "Rating not available"
)

type Responder struct {
	entities EntityMatcher
	store    Store
	labels   Labeler
}

func NewResponder(entities EntityMatcher, store Store, labels Labeler) *Responder {
	return &Responder{entities: entities, store: store, labels: labels}
}

// Respond looks up what the crowd said about the entity in query and
// predicate. Lookup failures yield a VerdictNone verdict.
func (r *Responder) Respond(ctx context.Context, query, predicate string) model.CrowdVerdict {
	if predicate == "" {
		return none(msgNoPredicate)
	}

	match, err := r.entities.Match(ctx, query)
	if err != nil {
		if !errors.Is(err, model.ErrNoPredicateMatch) {
			logging.Ctx(ctx).Warn().Err(err).Msg("crowd entity match failed")
		}
		return none(msgNoEntity)
	}
	subject := match.IRI

	rec, err := r.store.Lookup(ctx, subject, predicate)
	if errors.Is(err, model.ErrCrowdLookupEmpty) {
		return r.fixedPredicate(ctx, subject, predicate)
	}
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("subject", subject).Msg("crowd lookup failed")
		return none(msgNoAnswer)
	}

	stats := r.stats(ctx, rec)
	if rec.Correct-rec.Incorrect > 0 {
		return model.CrowdVerdict{
			Level:   model.VerdictCorrect,
			Message: fmt.Sprintf("The crowd agrees that the answer is correct. The answer is %s", r.render(ctx, rec.Object)),
			Stats:   stats,
		}
	}

	if rec.FixValue == "" {
		position := rec.FixPosition
		if position == "" {
			position = "unknown position"
		}
		return model.CrowdVerdict{
			Level:   model.VerdictPosition,
			Message: fmt.Sprintf("The crowd found errors but did not propose a fixed value. Errors were found at: %s", position),
			Stats:   stats,
		}
	}

	if rec.FixPosition == "Subject" || rec.FixPosition == "Predicate" {
		return model.CrowdVerdict{
			Level: model.VerdictValue,
			Message: fmt.Sprintf("The crowd was asked if %s is correct. They proposed a correction %s for the %s.",
				r.render(ctx, rec.Object), rec.FixValue, rec.FixPosition),
			Stats: stats,
		}
	}

	return model.CrowdVerdict{
		Level:   model.VerdictValue,
		Message: fmt.Sprintf("The crowd found some errors. The proposed fixed value is: %s.", r.render(ctx, rec.FixValue)),
		Stats:   stats,
	}
}

// fixedPredicate covers tasks where the crowd proposed predicate as the
// correction of another triple about subject.
func (r *Responder) fixedPredicate(ctx context.Context, subject, predicate string) model.CrowdVerdict {
	rec, err := r.store.LookupFix(ctx, subject, predicate)
	if err != nil {
		if !errors.Is(err, model.ErrCrowdLookupEmpty) {
			logging.Ctx(ctx).Warn().Err(err).Str("subject", subject).Msg("crowd fix lookup failed")
		}
		return none(msgNoAnswer)
	}
	return model.CrowdVerdict{
		Level:   model.VerdictPredicate,
		Message: fmt.Sprintf("The crowd suggests the value %s for this question.", r.render(ctx, rec.Object)),
		Stats:   r.stats(ctx, rec),
	}
}

func (r *Responder) stats(ctx context.Context, rec model.CrowdRecord) string {
	rating := msgNoRating
	kappa, ok, err := r.store.BatchRating(ctx, rec.BatchID)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("batch", rec.BatchID).Msg("batch rating lookup failed")
	} else if ok {
		rating = fmt.Sprintf("Batch agreement (Fleiss' kappa): %.3f", kappa)
	}
	return fmt.Sprintf("Voted %d Correct and %d Incorrect. %s", rec.Correct, rec.Incorrect, rating)
}

// render labels Wikidata IRIs and returns other values unchanged.
func (r *Responder) render(ctx context.Context, value string) string {
	if !strings.Contains(value, "wikidata") {
		return value
	}
	label, err := r.labels.LabelOf(ctx, model.IRI(value))
	if err != nil {
		return value
	}
	return fmt.Sprintf("%s (%s)", label, value)
}

func none(msg string) model.CrowdVerdict {
	return model.CrowdVerdict{Level: model.VerdictNone, Message: msg}
}
