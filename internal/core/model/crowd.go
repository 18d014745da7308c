package model

import "fmt"

type VerdictLevel int

const (
	VerdictNone VerdictLevel = iota
	VerdictPosition
	VerdictValue
	VerdictCorrect
	VerdictPredicate
)

func (l VerdictLevel) String() string {
	switch l {
	case VerdictPosition:
		return "Position"
	case VerdictValue:
		return "Value"
	case VerdictCorrect:
		return "Correct"
	case VerdictPredicate:
		return "Predicate"
	default:
		return "None"
	}
}

// CrowdRecord is one aggregated crowd task about a single triple.
type CrowdRecord struct {
	HITID       string `json:"hit_id"`
	BatchID     string `json:"batch_id"`
	Subject     string `json:"subject"`
	Predicate   string `json:"predicate"`
	Object      string `json:"object"`
	Correct     int    `json:"correct"`
	Incorrect   int    `json:"incorrect"`
	FixPosition string `json:"fix_position,omitempty"`
	FixValue    string `json:"fix_value,omitempty"`
}

type CrowdVerdict struct {
	Level   VerdictLevel `json:"level"`
	Message string       `json:"message"`
	Stats   string       `json:"stats,omitempty"`
}

// Text renders the verdict for appending to an answer. Empty for VerdictNone.
func (v CrowdVerdict) Text() string {
	if v.Level == VerdictNone {
		return ""
	}
	if v.Stats == "" {
		return fmt.Sprintf("However, the crowd has an answer: %s", v.Message)
	}
	return fmt.Sprintf("However, the crowd has an answer: %s\n(%s)", v.Message, v.Stats)
}
