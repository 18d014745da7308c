// Package recommend suggests movies close to the ones a user names, using
// the entity embedding space.
package recommend

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/AlbeMasera/ATAI/internal/core/common"
	"github.com/AlbeMasera/ATAI/internal/core/kg"
	"github.com/AlbeMasera/ATAI/internal/core/model"
	"github.com/AlbeMasera/ATAI/internal/driver"
	"github.com/AlbeMasera/ATAI/internal/logging"
)

const (
	DefaultK = 3
	// neighbours fetched per requested recommendation, to survive filtering
	overfetch = 4
)

const (
	msgUnknownMovie = "Sorry, I'm not familiar with that movie. Try another one?"
	msgOneOfAKind   = "This one seems one of a kind.. Should we try another one?"
)

// Graph is the part of the resolver the engine needs.
type Graph interface {
	FindMovieMatch(ctx context.Context, label string) (kg.Match, error)
	LabelOf(ctx context.Context, node model.Term) (string, error)
	IsMovie(ctx context.Context, node model.Term) (bool, error)
	ObjectLabels(ctx context.Context, subject model.Term, predicate string) ([]string, error)
}

type Neighbours interface {
	KNearest(ctx context.Context, seeds []model.Term, k int) ([]model.Term, error)
}

// hintRelations are compared between seeds and recommendations to explain a choice.
var hintRelations = []struct {
	Name      string
	Predicate string
}{
	{"genre", driver.WDT + "P136"},
	{"director", driver.WDT + "P57"},
}

var (
	requestRe = regexp.MustCompile(`(?i)\b(recommend\w*|suggest\w*|similar to|(?:movies?|films?) like|given that i like)\b`)

	titlePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bi (?:like|liked|love|loved|enjoyed)\s+(.+?)(?:,?\s+(?:can|could|would|what|which|please)\b.*)?$`),
		regexp.MustCompile(`(?i)\b(?:like|similar to|such as|based on)\s+(.+)$`),
	}

	separatorRe = regexp.MustCompile(`\s*,\s*(?:and\s+)?|\s+and\s+`)
)

type Engine struct {
	graph      Graph
	neighbours Neighbours
	k          int
}

func NewEngine(graph Graph, neighbours Neighbours, k int) *Engine {
	if k <= 0 {
		k = DefaultK
	}
	return &Engine{graph: graph, neighbours: neighbours, k: k}
}

// IsRequest reports whether query asks for recommendations.
func IsRequest(query string) bool {
	return requestRe.MatchString(query)
}

// Titles extracts the movie titles named in a recommendation request.
// Separators inside titles are resolved later against the graph.
func Titles(query string) (pieces, seps []string) {
	q := strings.Trim(common.NormalizeDashes(query), " \t.?!")

	segment := ""
	for _, re := range titlePatterns {
		if m := re.FindStringSubmatch(q); m != nil {
			segment = strings.TrimSpace(m[1])
			break
		}
	}
	if segment == "" {
		return nil, nil
	}

	last := 0
	for _, loc := range separatorRe.FindAllStringIndex(segment, -1) {
		if loc[0] == 0 {
			continue
		}
		pieces = append(pieces, segment[last:loc[0]])
		seps = append(seps, segment[loc[0]:loc[1]])
		last = loc[1]
	}
	pieces = append(pieces, segment[last:])
	return pieces, seps
}

type seed struct {
	node  model.Term
	label string
}

// Recommend answers a recommendation request. When none of the named movies
// is in the graph it returns a fallback answer with model.ErrNoEntityFound.
func (e *Engine) Recommend(ctx context.Context, query string) (model.Answer, error) {
	pieces, seps := Titles(query)
	seeds, err := e.resolveSeeds(ctx, pieces, seps)
	if err != nil {
		return model.Answer{}, err
	}
	if len(seeds) == 0 {
		return model.NewAnswer(msgUnknownMovie), model.ErrNoEntityFound
	}

	nodes := make([]model.Term, len(seeds))
	for i, s := range seeds {
		nodes[i] = s.node
	}
	candidates, err := e.neighbours.KNearest(ctx, nodes, e.k*overfetch)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("no neighbours for seeds")
		return model.NewAnswer(msgOneOfAKind), nil
	}

	picked := e.filter(ctx, seeds, candidates)
	if len(picked) == 0 {
		return model.NewAnswer(msgOneOfAKind), nil
	}

	titles := make([]string, len(picked))
	for i, p := range picked {
		titles[i] = p.label
	}
	logging.Ctx(ctx).Debug().Int("seeds", len(seeds)).Strs("recommended", titles).Msg("recommendation")

	return model.FromRecommendation(titles).WithHint(e.hints(ctx, seeds, picked)), nil
}

// resolveSeeds joins adjacent pieces greedily when the joined text is an
// exact movie title ("Beauty and the Beast").
func (e *Engine) resolveSeeds(ctx context.Context, pieces, seps []string) ([]seed, error) {
	var seeds []seed
	seen := make(map[string]bool)
	for i := 0; i < len(pieces); {
		next := i + 1
		var found *kg.Match
		for j := len(pieces); j > i; j-- {
			text := pieces[i]
			for k := i + 1; k < j; k++ {
				text += seps[k-1] + pieces[k]
			}
			m, err := e.graph.FindMovieMatch(ctx, text)
			if err != nil {
				continue
			}
			if j-i > 1 && !m.Exact {
				continue
			}
			found, next = &m, j
			break
		}
		if found != nil && !seen[found.Node.Value] {
			seen[found.Node.Value] = true
			seeds = append(seeds, seed{node: found.Node, label: found.Label})
		}
		i = next
	}
	return seeds, ctx.Err()
}

// filter keeps movies whose label differs from every seed, one per label,
// at most k.
func (e *Engine) filter(ctx context.Context, seeds []seed, candidates []model.Term) []seed {
	taken := make(map[string]bool)
	for _, s := range seeds {
		taken[strings.ToLower(s.label)] = true
	}

	var out []seed
	for _, c := range candidates {
		if len(out) == e.k {
			break
		}
		if ok, err := e.graph.IsMovie(ctx, c); err != nil || !ok {
			continue
		}
		label, err := e.graph.LabelOf(ctx, c)
		if err != nil || taken[strings.ToLower(label)] {
			continue
		}
		taken[strings.ToLower(label)] = true
		out = append(out, seed{node: c, label: label})
	}
	return out
}

func (e *Engine) hints(ctx context.Context, seeds, picked []seed) string {
	var lines []string
	for _, rel := range hintRelations {
		seedValues := make(map[string]bool)
		for _, s := range seeds {
			labels, _ := e.graph.ObjectLabels(ctx, s.node, rel.Predicate)
			for _, l := range labels {
				seedValues[l] = true
			}
		}

		shared := make(map[string]bool)
		var values []string
		for _, p := range picked {
			labels, _ := e.graph.ObjectLabels(ctx, p.node, rel.Predicate)
			for _, l := range labels {
				if seedValues[l] && !shared[l] {
					shared[l] = true
					values = append(values, l)
				}
			}
		}
		if len(values) > 0 {
			lines = append(lines, fmt.Sprintf("- same %s: %s", rel.Name, model.JoinList(values)))
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return "Reasons for my choice:\n" + strings.Join(lines, "\n")
}
