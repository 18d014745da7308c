// Package core ties the matchers, the graph and the embedding answerer into
// the question answering pipeline.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AlbeMasera/ATAI/internal/core/common"
	"github.com/AlbeMasera/ATAI/internal/core/media"
	"github.com/AlbeMasera/ATAI/internal/core/model"
	"github.com/AlbeMasera/ATAI/internal/core/recommend"
	"github.com/AlbeMasera/ATAI/internal/logging"
	"github.com/AlbeMasera/ATAI/internal/metrics"
)

const tracerName = "github.com/AlbeMasera/ATAI/internal/core"

type PredicateMatcher interface {
	Match(ctx context.Context, query string) (model.CatalogueMatch, error)
}

type EntityExtractor interface {
	ExtractSingle(ctx context.Context, text string, isQuestion bool) (model.NamedEntity, error)
}

type Graph interface {
	FindMovie(ctx context.Context, label string) (model.Term, error)
	FindPerson(ctx context.Context, label string) (model.Term, error)
	LabelOf(ctx context.Context, node model.Term) (string, error)
	ObjectLabels(ctx context.Context, subject model.Term, predicate string) ([]string, error)
}

type EmbeddingScorer interface {
	HasEmbedding(label string) (model.RelationDescriptor, bool)
	ScoreAnswer(ctx context.Context, entity model.Term, relation model.RelationDescriptor) (model.Term, error)
}

type CrowdResponder interface {
	Respond(ctx context.Context, query, predicate string) model.CrowdVerdict
}

type Recommender interface {
	Recommend(ctx context.Context, query string) (model.Answer, error)
}

type MediaAnswerer interface {
	Answer(ctx context.Context, query string) (model.Answer, error)
}

// Agent answers one question at a time. Predicates, Extractor and Graph are
// required; the other components are skipped when nil. A nil Metrics
// reports to metrics.Default().
type Agent struct {
	Predicates  PredicateMatcher
	Extractor   EntityExtractor
	Graph       Graph
	Embeddings  EmbeddingScorer
	Crowd       CrowdResponder
	Recommender Recommender
	Media       MediaAnswerer
	Metrics     metrics.Recorder

	closers []func(context.Context) error
}

func NewAgent(predicates PredicateMatcher, extractor EntityExtractor, graph Graph) *Agent {
	return &Agent{
		Predicates: predicates,
		Extractor:  extractor,
		Graph:      graph,
	}
}

// Answer never fails: errors are turned into a reply the user can read.
func (a *Agent) Answer(ctx context.Context, query string) (answer model.Answer) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "core.Agent.Answer",
		trace.WithAttributes(attribute.Int("query_length", len(query))),
	)
	defer span.End()

	rec := a.recorder()
	done := metrics.TimeAnswer(rec)
	path := "qa"

	defer func() {
		if r := recover(); r != nil {
			logging.Ctx(ctx).Error().Interface("panic", r).Str("query", query).Msg("answer pipeline panicked")
			span.SetStatus(codes.Error, fmt.Sprint(r))
			rec.IncStage("answer", "panic")
			answer = model.Apology()
			path = "panic"
		}
		span.SetAttributes(attribute.String("path", path))
		done(path)
	}()

	query = common.NormalizeDashes(strings.TrimSpace(query))
	if query == "" {
		return model.CannotAnswer()
	}

	if a.Media != nil && media.IsRequest(query) {
		ans, err := a.Media.Answer(ctx, query)
		if err == nil {
			rec.IncStage("media", "ok")
			path = "media"
			return ans
		}
		rec.IncStage("media", "miss")
		logging.Ctx(ctx).Debug().Err(err).Msg("media branch gave up")
	}

	var fallback model.Answer
	if a.Recommender != nil && recommend.IsRequest(query) {
		ans, err := a.Recommender.Recommend(ctx, query)
		if err == nil {
			rec.IncStage("recommend", "ok")
			path = "recommend"
			return ans
		}
		rec.IncStage("recommend", "miss")
		logging.Ctx(ctx).Debug().Err(err).Msg("recommendation branch gave up")
		fallback = ans
	}

	match, err := a.Predicates.Match(ctx, query)
	if err != nil {
		rec.IncStage("predicate", "miss")
		if errors.Is(err, model.ErrNoPredicateMatch) && !fallback.IsZero() {
			path = "recommend"
			return fallback
		}
		path = "error"
		return a.failure(ctx, span, err)
	}
	rec.IncStage("predicate", "ok")
	span.SetAttributes(attribute.String("predicate", match.IRI))

	answer, path, err = a.answerFact(ctx, query, match)
	if err != nil {
		return a.failure(ctx, span, err)
	}

	if a.Crowd != nil {
		verdict := a.Crowd.Respond(ctx, query, match.IRI)
		rec.IncStage("crowd", strings.ToLower(verdict.Level.String()))
		if verdict.Level != model.VerdictNone {
			answer = answer.WithCrowdOpinion(verdict.Text())
		}
	}
	return answer
}

// answerFact tries the embedding answerer and falls back to the graph.
func (a *Agent) answerFact(ctx context.Context, query string, match model.CatalogueMatch) (model.Answer, string, error) {
	rec := a.recorder()
	if a.Embeddings != nil {
		if rel, ok := a.Embeddings.HasEmbedding(match.Label); ok {
			ans, err := a.embeddingAnswer(ctx, query, match, rel)
			if err == nil {
				rec.IncStage("embedding", "ok")
				return ans, "embedding", nil
			}
			rec.IncStage("embedding", "fallback")
			logging.Ctx(ctx).Debug().Err(err).Str("relation", rel.Label).Msg("embedding answer failed, using graph")
		}
	}

	ans, err := a.graphAnswer(ctx, query, match)
	if err != nil {
		rec.IncStage("graph", "error")
		return model.Answer{}, "error", err
	}
	rec.IncStage("graph", "ok")
	return ans, "graph", nil
}

func (a *Agent) embeddingAnswer(ctx context.Context, query string, match model.CatalogueMatch, rel model.RelationDescriptor) (model.Answer, error) {
	entity, err := a.Extractor.ExtractSingle(ctx, match.Query, true)
	if err != nil {
		return model.Answer{}, err
	}
	node, err := a.resolve(ctx, entity.Text)
	if err != nil {
		return model.Answer{}, err
	}
	term, err := a.Embeddings.ScoreAnswer(ctx, node, rel)
	if err != nil {
		return model.Answer{}, err
	}
	label, err := a.Graph.LabelOf(ctx, term)
	if err != nil {
		return model.Answer{}, err
	}
	return model.FromLabel(query, label), nil
}

func (a *Agent) graphAnswer(ctx context.Context, query string, match model.CatalogueMatch) (model.Answer, error) {
	entity, err := a.Extractor.ExtractSingle(ctx, match.Query, true)
	if errors.Is(err, model.ErrNoEntityFound) {
		return model.NotUnderstood(), nil
	}
	if err != nil {
		return model.Answer{}, err
	}

	node, err := a.resolve(ctx, entity.Text)
	if errors.Is(err, model.ErrNotFound) {
		return model.MovieNotFound(entity.Text), nil
	}
	if err != nil {
		return model.Answer{}, err
	}

	labels, err := a.Graph.ObjectLabels(ctx, node, match.IRI)
	if err != nil {
		return model.Answer{}, err
	}
	if len(labels) == 0 {
		return model.MovieNotFound(entity.Text), nil
	}
	return model.FromLabel(query, model.JoinList(labels)), nil
}

// resolve looks text up as a movie first, then as a person.
func (a *Agent) resolve(ctx context.Context, text string) (model.Term, error) {
	node, err := a.Graph.FindMovie(ctx, text)
	if !errors.Is(err, model.ErrNotFound) {
		return node, err
	}
	return a.Graph.FindPerson(ctx, text)
}

func (a *Agent) failure(ctx context.Context, span trace.Span, err error) model.Answer {
	switch {
	case errors.Is(err, model.ErrNoPredicateMatch):
		return model.CannotAnswer()
	case errors.Is(err, context.DeadlineExceeded):
		logging.Ctx(ctx).Warn().Err(err).Msg("model call timed out")
		return model.CannotAnswer()
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logging.Ctx(ctx).Error().Err(err).Msg("failed to answer")
		return model.Apology()
	}
}

func (a *Agent) recorder() metrics.Recorder {
	if a.Metrics == nil {
		return metrics.Default()
	}
	return a.Metrics
}

// Close releases the stores opened by NewAgentFromConfig.
func (a *Agent) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
