package model

// Span is one tagged fragment returned by a sequence tagger. Offsets are rune offsets.
type Span struct {
	Group string  `json:"entity_group"`
	Word  string  `json:"word"`
	Start int     `json:"start"`
	End   int     `json:"end"`
	Score float32 `json:"score"`
}

type NamedEntity struct {
	Group string  `json:"group"`
	Word  string  `json:"word"`
	Start int     `json:"start"`
	End   int     `json:"end"`
	Text  string  `json:"text"` // substring of the tagged text between Start and End
	Score float32 `json:"score"`
}
