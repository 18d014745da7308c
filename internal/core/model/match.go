package model

// CatalogueMatch is the accepted nearest catalogue row for a phrase of the query.
// Produced per query and never persisted.
type CatalogueMatch struct {
	Label  string  `json:"label"`  // canonical label of the row
	Found  string  `json:"found"`  // surface label of the row
	Phrase string  `json:"phrase"` // n-gram of the query that matched
	Score  float32 `json:"score"`
	IRI    string  `json:"iri"`
	Query  string  `json:"query"` // query rewritten with the canonical label
}
