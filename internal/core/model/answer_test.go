package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnswerTextAddsEnding(t *testing.T) {
	assert.Equal(t, "Christopher Nolan.", NewAnswer("Christopher Nolan").Text())
	assert.Equal(t, "Really?", NewAnswer("Really?").Text())
	assert.Equal(t, "Done.", NewAnswer("Done.  ").Text())
}

func TestAnswerAppendsAreNonDestructive(t *testing.T) {
	base := NewAnswer("The answer is X")

	hinted := base.WithHint("Reasons: same genre")
	crowd := hinted.WithCrowdOpinion("However, the crowd has an answer: Y")

	assert.Equal(t, "The answer is X.", base.Text())
	assert.Equal(t, "The answer is X.\n\nReasons: same genre.", hinted.Text())
	assert.Equal(t, "The answer is X.\n\nReasons: same genre. \n\nHowever, the crowd has an answer: Y.", crowd.Text())
}

func TestAnswerIgnoresEmptyAppends(t *testing.T) {
	base := NewAnswer("X")
	assert.Equal(t, base, base.WithHint(""))
	assert.Equal(t, base, base.WithCrowdOpinion("   "))
}

func TestFromLabelIsDeterministic(t *testing.T) {
	a := FromLabel("Who directed Inception?", "Christopher Nolan")
	b := FromLabel("Who directed Inception?", "Christopher Nolan")
	assert.Equal(t, a, b)
	assert.Contains(t, a.Text(), "Christopher Nolan")
}

func TestFromImageKeepsReferenceIntact(t *testing.T) {
	a := FromImage("Halle Berry", "0001/rm123")
	assert.Equal(t, "image:0001/rm123\nThis is Halle Berry.", a.Text())
}

func TestJoinList(t *testing.T) {
	assert.Equal(t, "", JoinList(nil))
	assert.Equal(t, "a", JoinList([]string{"a"}))
	assert.Equal(t, "a and b", JoinList([]string{"a", "b"}))
	assert.Equal(t, "a, b and c", JoinList([]string{"a", "b", "c"}))
}

func TestCrowdVerdictText(t *testing.T) {
	assert.Equal(t, "", CrowdVerdict{Level: VerdictNone, Message: "x"}.Text())
	v := CrowdVerdict{Level: VerdictCorrect, Message: "ok", Stats: "Voted 2 Correct and 1 Incorrect."}
	assert.Equal(t, "However, the crowd has an answer: ok\n(Voted 2 Correct and 1 Incorrect.)", v.Text())
	assert.Equal(t, "Correct", VerdictCorrect.String())
}
