package model

import (
	"fmt"
	"hash/fnv"
	"strings"
)

const (
	cannotAnswerText  = "This seems to be a question that I cannot answer"
	notUnderstoodText = "Sorry, I could not understand which movie or person you are asking about"
	apologyText       = "Sorry, I ran into an issue here. Should we try another question instead?"
)

var answerTemplates = []string{
	"I think the answer you are looking for is %s",
	"The answer to your question is %s",
	"Your query led me to %s",
	"According to the dataset, the answer is %s",
}

// Answer is an immutable reply. WithHint and WithCrowdOpinion return new values.
type Answer struct {
	text string
}

func NewAnswer(text string) Answer {
	return Answer{text: text}
}

// Text returns the reply with terminal punctuation.
func (a Answer) Text() string {
	return addEnding(a.text)
}

func (a Answer) String() string { return a.Text() }

func (a Answer) IsZero() bool { return a.text == "" }

func (a Answer) WithHint(hint string) Answer {
	if strings.TrimSpace(hint) == "" {
		return a
	}
	return Answer{text: a.Text() + "\n\n" + hint}
}

func (a Answer) WithCrowdOpinion(opinion string) Answer {
	if strings.TrimSpace(opinion) == "" {
		return a
	}
	return Answer{text: a.Text() + " \n\n" + opinion}
}

func CannotAnswer() Answer { return Answer{text: cannotAnswerText} }

func NotUnderstood() Answer { return Answer{text: notUnderstoodText} }

func Apology() Answer { return Answer{text: apologyText} }

func MovieNotFound(name string) Answer {
	return Answer{text: fmt.Sprintf("Could not find a movie with the name: %s", name)}
}

func PersonNotFound(name string) Answer {
	return Answer{text: fmt.Sprintf("Could not find a person with the name: %s", name)}
}

// FromLabel phrases value as the answer to query. The template is picked by
// hashing the query so the same question always reads the same way.
func FromLabel(query, value string) Answer {
	h := fnv.New32a()
	_, _ = h.Write([]byte(query))
	tmpl := answerTemplates[h.Sum32()%uint32(len(answerTemplates))]
	return Answer{text: fmt.Sprintf(tmpl, value)}
}

func FromRecommendation(titles []string) Answer {
	return Answer{text: fmt.Sprintf("I recommend you to watch %s", JoinList(titles))}
}

// FromImage puts the image reference on its own first line so the
// terminal punctuation never touches it.
func FromImage(name, path string) Answer {
	return Answer{text: fmt.Sprintf("image:%s\nThis is %s", path, name)}
}

// JoinList renders "a", "a and b", "a, b and c".
func JoinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}

func addEnding(s string) string {
	s = strings.TrimRight(s, " \t")
	if len(s) <= 1 {
		return s
	}
	switch s[len(s)-1] {
	case '.', '?', '!', ',', '"':
		return s
	}
	return s + "."
}
