package core

import (
	"context"
	"fmt"

	"github.com/AlbeMasera/ATAI/internal/config"
	"github.com/AlbeMasera/ATAI/internal/core/crowd"
	"github.com/AlbeMasera/ATAI/internal/core/embedding"
	"github.com/AlbeMasera/ATAI/internal/core/extraction"
	"github.com/AlbeMasera/ATAI/internal/core/kg"
	"github.com/AlbeMasera/ATAI/internal/core/media"
	"github.com/AlbeMasera/ATAI/internal/core/predicate"
	"github.com/AlbeMasera/ATAI/internal/core/recommend"
	"github.com/AlbeMasera/ATAI/internal/driver"
	"github.com/AlbeMasera/ATAI/internal/llm"
	"github.com/AlbeMasera/ATAI/internal/logging"
)

// OpenGraph opens the triple store selected by cfg.Graph.Backend.
func OpenGraph(ctx context.Context, cfg *config.Config) (driver.Store, error) {
	switch cfg.Graph.Backend {
	case "", "memory":
		path := cfg.Data.Path(cfg.Data.Graph)
		logging.Info().Str("path", path).Msg("loading graph into memory")
		store, err := driver.LoadMemoryStore(path)
		if err != nil {
			return nil, err
		}
		logging.Info().Int("subjects", store.Size()).Msg("graph loaded")
		return store, nil
	case "memgraph", "neo4j":
		mg := cfg.Graph.Memgraph
		d, err := driver.NewMemgraphDriver(ctx, mg.URI, mg.User, mg.Password)
		if err != nil {
			return nil, err
		}
		return driver.NewCypherStore(d), nil
	default:
		return nil, fmt.Errorf("unsupported graph backend: %s", cfg.Graph.Backend)
	}
}

// NewAgentFromConfig loads every artifact named in cfg and wires the
// pipeline. The caller owns the returned agent and must Close it.
func NewAgentFromConfig(ctx context.Context, cfg *config.Config) (agent *Agent, err error) {
	var closers []func(context.Context) error
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				_ = closers[i](ctx)
			}
		}
	}()

	store, err := OpenGraph(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open graph: %w", err)
	}
	closers = append(closers, store.Close)
	graph := kg.NewResolver(store, cfg.Graph.MovieClass, cfg.Graph.PersonClass)

	encoder, err := llm.NewEncoder(ctx, cfg.Encoder, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create encoder: %w", err)
	}
	tagger, err := llm.NewTagger(ctx, cfg.Tagger, cfg.LLM, cfg.Prompts.Tagger)
	if err != nil {
		return nil, fmt.Errorf("failed to create tagger: %w", err)
	}

	data := cfg.Data
	predicates, err := predicate.LoadCatalogue(data.Path(data.Predicates), data.Path(data.PredicateEmbeddings), predicate.PredicateColumns)
	if err != nil {
		return nil, err
	}
	if err := predicates.CheckEncoder(ctx, encoder); err != nil {
		return nil, fmt.Errorf("predicate catalogue: %w", err)
	}
	var replace predicate.ReplaceTable
	if data.ReplacePredicates != "" {
		if replace, err = predicate.LoadReplaceTable(data.Path(data.ReplacePredicates)); err != nil {
			return nil, err
		}
	}
	opts := matcherOptions(cfg.Matcher, cfg.Matcher.PredicateThreshold)
	opts.Replace = replace
	predicateMatcher := predicate.NewMatcher("predicates", encoder, predicates, opts)

	table := make([]embedding.Relation, len(cfg.Embedding.Relations))
	for i, r := range cfg.Embedding.Relations {
		table[i] = embedding.Relation{Label: r.Label, Predicate: r.Predicate}
	}
	answerer, err := embedding.Load(embedding.Paths{
		Entities:    data.Path(data.EntityEmbeddings),
		Relations:   data.Path(data.RelationEmbeddings),
		EntityIDs:   data.Path(data.EntityIDs),
		RelationIDs: data.Path(data.RelationIDs),
	}, table)
	if err != nil {
		return nil, fmt.Errorf("failed to load embeddings: %w", err)
	}

	agent = NewAgent(predicateMatcher, extraction.NewExtractor(tagger), graph)
	agent.Embeddings = answerer
	agent.Recommender = recommend.NewEngine(graph, answerer, cfg.Embedding.RecommendK)

	if data.CrowdDB != "" {
		responder, closeCrowd, err := openCrowd(ctx, cfg, encoder, graph)
		if err != nil {
			return nil, err
		}
		closers = append(closers, closeCrowd)
		agent.Crowd = responder
	}

	if data.Images != "" {
		index, err := media.LoadIndex(data.Path(data.Images))
		if err != nil {
			return nil, err
		}
		logging.Info().Int("ids", index.Len()).Msg("image index loaded")
		agent.Media = media.NewService(agent.Extractor, graph, index)
	}

	agent.closers = closers
	return agent, nil
}

func openCrowd(ctx context.Context, cfg *config.Config, encoder llm.Encoder, graph *kg.Resolver) (*crowd.Responder, func(context.Context) error, error) {
	data := cfg.Data
	entities, err := predicate.LoadCatalogue(data.Path(data.CrowdEntities), data.Path(data.CrowdEntityEmbeddings), predicate.CrowdEntityColumns)
	if err != nil {
		return nil, nil, err
	}
	if err := entities.CheckEncoder(ctx, encoder); err != nil {
		return nil, nil, fmt.Errorf("crowd entity catalogue: %w", err)
	}
	matcher := predicate.NewMatcher("crowd_entities", encoder, entities, matcherOptions(cfg.Matcher, cfg.Matcher.CrowdThreshold))

	store, err := crowd.OpenSQLite(ctx, data.Path(data.CrowdDB))
	if err != nil {
		return nil, nil, err
	}
	closeStore := func(context.Context) error { return store.Close() }
	return crowd.NewResponder(matcher, store, graph), closeStore, nil
}

// matcherOptions builds the options of both catalogue matchers. They differ
// only in threshold.
func matcherOptions(m config.MatcherConfig, threshold float32) predicate.Options {
	return predicate.Options{
		Threshold: threshold,
		MaxNgram:  m.MaxNgram,
		Stemming:  m.Stemming,
	}
}
