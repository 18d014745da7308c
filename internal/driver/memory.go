package driver

import (
	"context"
	"regexp"
	"sort"
	"sync"

	"github.com/AlbeMasera/ATAI/internal/core/model"
)

// MemoryStore keeps the whole graph in maps. It is read-only once built.
type MemoryStore struct {
	objects  map[string]map[string][]model.Term
	labels   map[string][]model.Term
	types    map[string][]string
	subclass map[string][]string // class -> direct subclasses

	mu      sync.Mutex
	closure map[string]map[string]struct{} // class -> class and all its subclasses
}

func NewMemoryStore(triples []Triple) *MemoryStore {
	s := &MemoryStore{
		objects:  make(map[string]map[string][]model.Term),
		labels:   make(map[string][]model.Term),
		types:    make(map[string][]string),
		subclass: make(map[string][]string),
		closure:  make(map[string]map[string]struct{}),
	}
	for _, t := range triples {
		s.add(t)
	}
	return s
}

// LoadMemoryStore builds a MemoryStore from an N-Triples file.
func LoadMemoryStore(path string) (*MemoryStore, error) {
	triples, err := LoadNTriples(path)
	if err != nil {
		return nil, err
	}
	return NewMemoryStore(triples), nil
}

func (s *MemoryStore) add(t Triple) {
	byPred, ok := s.objects[t.Subject]
	if !ok {
		byPred = make(map[string][]model.Term)
		s.objects[t.Subject] = byPred
	}
	byPred[t.Predicate] = append(byPred[t.Predicate], t.Object)

	switch t.Predicate {
	case RDFSLabel:
		if !t.Object.IsIRI() {
			s.labels[t.Subject] = append(s.labels[t.Subject], t.Object)
		}
	case InstanceOf:
		if t.Object.IsIRI() {
			s.types[t.Subject] = append(s.types[t.Subject], t.Object.Value)
		}
	case SubclassOf:
		if t.Object.IsIRI() {
			s.subclass[t.Object.Value] = append(s.subclass[t.Object.Value], t.Subject)
		}
	}
}

func (s *MemoryStore) FindByLabel(ctx context.Context, text, class string) ([]LabeledNode, error) {
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(text))
	if err != nil {
		return nil, err
	}
	classes := s.classClosure(class)

	var nodes []LabeledNode
	for node, labels := range s.labels {
		if !s.typedAs(node, classes) {
			continue
		}
		seen := make(map[string]struct{}, len(labels))
		for _, l := range labels {
			if _, dup := seen[l.Value]; dup || !re.MatchString(l.Value) {
				continue
			}
			seen[l.Value] = struct{}{}
			nodes = append(nodes, LabeledNode{IRI: node, Label: l.Value})
		}
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].IRI != nodes[j].IRI {
			return nodes[i].IRI < nodes[j].IRI
		}
		return nodes[i].Label < nodes[j].Label
	})
	return nodes, nil
}

func (s *MemoryStore) Labels(ctx context.Context, node string) ([]model.Term, error) {
	return append([]model.Term(nil), s.labels[node]...), nil
}

func (s *MemoryStore) Objects(ctx context.Context, subject, predicate string) ([]model.Term, error) {
	objs := append([]model.Term(nil), s.objects[subject][predicate]...)
	sort.SliceStable(objs, func(i, j int) bool { return objs[i].Value < objs[j].Value })
	return objs, nil
}

func (s *MemoryStore) InstanceOf(ctx context.Context, node, class string) (bool, error) {
	return s.typedAs(node, s.classClosure(class)), nil
}

func (s *MemoryStore) Close(ctx context.Context) error { return nil }

// Size returns the number of subjects.
func (s *MemoryStore) Size() int { return len(s.objects) }

func (s *MemoryStore) typedAs(node string, classes map[string]struct{}) bool {
	for _, c := range s.types[node] {
		if _, ok := classes[c]; ok {
			return true
		}
	}
	return false
}

func (s *MemoryStore) classClosure(class string) map[string]struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.closure[class]; ok {
		return c
	}

	c := map[string]struct{}{class: {}}
	queue := []string{class}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, sub := range s.subclass[cur] {
			if _, seen := c[sub]; !seen {
				c[sub] = struct{}{}
				queue = append(queue, sub)
			}
		}
	}
	s.closure[class] = c
	return c
}
