// Package kg resolves entity mentions against the knowledge graph and reads
// labels and triples back out of it.
package kg

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/AlbeMasera/ATAI/internal/core/common"
	"github.com/AlbeMasera/ATAI/internal/core/model"
	"github.com/AlbeMasera/ATAI/internal/driver"
	"github.com/AlbeMasera/ATAI/internal/logging"
)

const (
	DefaultMovieClass  = driver.WD + "Q2431196"
	DefaultPersonClass = driver.WD + "Q5"
)

type Resolver struct {
	store       driver.Store
	movieClass  string
	personClass string
}

func NewResolver(store driver.Store, movieClass, personClass string) *Resolver {
	if movieClass == "" {
		movieClass = DefaultMovieClass
	}
	if personClass == "" {
		personClass = DefaultPersonClass
	}
	return &Resolver{store: store, movieClass: movieClass, personClass: personClass}
}

// Match is a resolved node with the label that matched.
type Match struct {
	Node  model.Term
	Label string
	Exact bool
}

func (r *Resolver) FindMovie(ctx context.Context, label string) (model.Term, error) {
	m, err := r.FindMovieMatch(ctx, label)
	return m.Node, err
}

func (r *Resolver) FindPerson(ctx context.Context, label string) (model.Term, error) {
	m, err := r.find(ctx, label, r.personClass)
	return m.Node, err
}

// FindMovieMatch is FindMovie that also reports whether the label matched
// exactly.
func (r *Resolver) FindMovieMatch(ctx context.Context, label string) (Match, error) {
	return r.find(ctx, label, r.movieClass)
}

// find picks, among nodes whose label contains the text, an exact label
// match first, then the shortest label, then the smallest IRI.
func (r *Resolver) find(ctx context.Context, label, class string) (Match, error) {
	text := common.LowerTrimEndings(common.NormalizeDashes(label))
	if text == "" {
		return Match{}, model.ErrNotFound
	}

	nodes, err := r.store.FindByLabel(ctx, text, class)
	if err != nil {
		return Match{}, fmt.Errorf("failed to look up %q: %w", text, err)
	}
	if len(nodes) == 0 {
		return Match{}, model.ErrNotFound
	}

	best := rank(nodes, text)[0]
	logging.Ctx(ctx).Debug().
		Str("text", text).
		Str("iri", best.IRI).
		Str("label", best.Label).
		Int("candidates", len(nodes)).
		Msg("graph node resolved")
	return Match{
		Node:  model.IRI(best.IRI),
		Label: best.Label,
		Exact: strings.EqualFold(best.Label, text),
	}, nil
}

func rank(nodes []driver.LabeledNode, text string) []driver.LabeledNode {
	out := append([]driver.LabeledNode(nil), nodes...)
	sort.SliceStable(out, func(i, j int) bool {
		ei, ej := strings.EqualFold(out[i].Label, text), strings.EqualFold(out[j].Label, text)
		if ei != ej {
			return ei
		}
		li, lj := utf8.RuneCountInString(out[i].Label), utf8.RuneCountInString(out[j].Label)
		if li != lj {
			return li < lj
		}
		return out[i].IRI < out[j].IRI
	})
	return out
}

// LabelOf returns the English label of node, else an untagged one, else the
// label with the smallest language tag.
func (r *Resolver) LabelOf(ctx context.Context, node model.Term) (string, error) {
	if !node.IsIRI() {
		return node.Value, nil
	}
	labels, err := r.store.Labels(ctx, node.Value)
	if err != nil {
		return "", fmt.Errorf("failed to get labels of %s: %w", node.Value, err)
	}
	if len(labels) == 0 {
		return "", model.ErrNotFound
	}

	best := labels[0]
	for _, l := range labels[1:] {
		if langRank(l.Lang) < langRank(best.Lang) ||
			(langRank(l.Lang) == langRank(best.Lang) && l.Lang < best.Lang) {
			best = l
		}
	}
	return best.Value, nil
}

func langRank(lang string) int {
	switch {
	case strings.EqualFold(lang, "en"):
		return 0
	case lang == "":
		return 1
	default:
		return 2
	}
}

// Objects returns the objects of (subject, predicate). An empty slice means
// the graph has no such triple.
func (r *Resolver) Objects(ctx context.Context, subject model.Term, predicate string) ([]model.Term, error) {
	objs, err := r.store.Objects(ctx, subject.Value, predicate)
	if err != nil {
		return nil, fmt.Errorf("failed to get objects: %w", err)
	}
	return objs, nil
}

// ObjectLabels returns the labels of the objects of (subject, predicate),
// skipping objects without a label.
func (r *Resolver) ObjectLabels(ctx context.Context, subject model.Term, predicate string) ([]string, error) {
	objs, err := r.Objects(ctx, subject, predicate)
	if err != nil {
		return nil, err
	}
	labels := make([]string, 0, len(objs))
	for _, o := range objs {
		l, err := r.LabelOf(ctx, o)
		if err != nil {
			continue
		}
		labels = append(labels, l)
	}
	return labels, nil
}

func (r *Resolver) IsMovie(ctx context.Context, node model.Term) (bool, error) {
	return r.store.InstanceOf(ctx, node.Value, r.movieClass)
}

// IMDbID returns the IMDb identifier of node.
func (r *Resolver) IMDbID(ctx context.Context, node model.Term) (string, error) {
	objs, err := r.Objects(ctx, node, driver.IMDbID)
	if err != nil {
		return "", err
	}
	if len(objs) == 0 {
		return "", model.ErrNotFound
	}
	return objs[0].Value, nil
}
