package model

type TermKind int

const (
	TermIRI TermKind = iota
	TermLiteral
)

// Term is a graph value: an IRI node or a literal with an optional language tag.
type Term struct {
	Kind  TermKind `json:"kind"`
	Value string   `json:"value"`
	Lang  string   `json:"lang,omitempty"`
}

func IRI(v string) Term {
	return Term{Kind: TermIRI, Value: v}
}

func Literal(v, lang string) Term {
	return Term{Kind: TermLiteral, Value: v, Lang: lang}
}

func (t Term) IsIRI() bool { return t.Kind == TermIRI }

func (t Term) String() string { return t.Value }

// RelationDescriptor links a predicate label to its row in the relation embedding matrix.
type RelationDescriptor struct {
	Label     string `json:"label"`
	Predicate string `json:"predicate"`
	Row       int    `json:"row"`
}
