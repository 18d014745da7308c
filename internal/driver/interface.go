// Package driver provides the read-only triple stores the graph resolver
// queries: a Cypher store over Memgraph/Neo4j and an in-memory store loaded
// from N-Triples.
package driver

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/AlbeMasera/ATAI/internal/core/model"
)

const (
	WD        = "http://www.wikidata.org/entity/"
	WDT       = "http://www.wikidata.org/prop/direct/"
	Schema    = "http://schema.org/"
	DDIS      = "http://ddis.ch/atai/"
	RDFSLabel = "http://www.w3.org/2000/01/rdf-schema#label"

	InstanceOf = WDT + "P31"
	SubclassOf = WDT + "P279"
	IMDbID     = WDT + "P345"
)

type GraphDriver interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error)
	BuildIndices(ctx context.Context) error
	Close(ctx context.Context) error
}

// LabeledNode is a node together with the label that matched a lookup.
type LabeledNode struct {
	IRI   string
	Label string
}

type Triple struct {
	Subject   string
	Predicate string
	Object    model.Term
}

// Store is the read-only view of the knowledge graph.
type Store interface {
	// FindByLabel returns nodes typed as class (directly or through
	// subclasses) with a label containing text, case-insensitively.
	// Each matching (node, label) pair is returned once.
	FindByLabel(ctx context.Context, text, class string) ([]LabeledNode, error)
	Labels(ctx context.Context, node string) ([]model.Term, error)
	Objects(ctx context.Context, subject, predicate string) ([]model.Term, error)
	InstanceOf(ctx context.Context, node, class string) (bool, error)
	Close(ctx context.Context) error
}
