package model

import "errors"

var (
	ErrNotFound               = errors.New("not found")
	ErrNoPredicateMatch       = errors.New("no predicate match")
	ErrNoEntityFound          = errors.New("no entity found")
	ErrEntityNotInGraph       = errors.New("entity not in graph")
	ErrEmbeddingScoringFailed = errors.New("embedding scoring failed")
	ErrCrowdLookupEmpty       = errors.New("crowd lookup empty")
	ErrUpstreamModel          = errors.New("upstream model error")
)
