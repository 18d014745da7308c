package media

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlbeMasera/ATAI/internal/core/kg"
	"github.com/AlbeMasera/ATAI/internal/core/model"
	"github.com/AlbeMasera/ATAI/internal/driver"
)

const imagesJSON = `[
	{"img": "0089/rm1234.jpg", "cast": ["nm0000932"], "movie": ["tt0468569"], "type": "still_frame"},
	{"img": "0002/rm9999.jpg", "cast": ["nm0000932", "nm0000158"], "movie": []},
	{"img": "", "cast": ["nm0000001"], "movie": []}
]`

type MockExtractor struct {
	Text string
}

func (m *MockExtractor) ExtractSingle(ctx context.Context, text string, isQuestion bool) (model.NamedEntity, error) {
	if m.Text == "" {
		return model.NamedEntity{}, model.ErrNoEntityFound
	}
	return model.NamedEntity{Group: "PER", Word: strings.ToLower(m.Text), Text: m.Text}, nil
}

func fixtureGraph() *kg.Resolver {
	halle := driver.WD + "Q1033016"
	hanks := driver.WD + "Q2263"
	return kg.NewResolver(driver.NewMemoryStore([]driver.Triple{
		{Subject: halle, Predicate: driver.InstanceOf, Object: model.IRI(driver.WD + "Q5")},
		{Subject: halle, Predicate: driver.RDFSLabel, Object: model.Literal("Halle Berry", "en")},
		{Subject: halle, Predicate: driver.IMDbID, Object: model.Literal("nm0000932", "")},
		{Subject: hanks, Predicate: driver.InstanceOf, Object: model.IRI(driver.WD + "Q5")},
		{Subject: hanks, Predicate: driver.RDFSLabel, Object: model.Literal("Tom Hanks", "en")},
	}), "", "")
}

func TestIsRequest(t *testing.T) {
	assert.True(t, IsRequest("Show me a picture of Halle Berry."))
	assert.True(t, IsRequest("What does Julia Roberts look like?"))
	assert.True(t, IsRequest("Let me know what Sandra Bullock looks like."))
	assert.False(t, IsRequest("Who directed Inception?"))
	assert.False(t, IsRequest("Recommend movies like Inception"))
}

func TestReadIndexKeepsFirstImage(t *testing.T) {
	idx, err := ReadIndex(strings.NewReader(imagesJSON))
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())

	img, ok := idx.Image("nm0000932")
	require.True(t, ok)
	assert.Equal(t, "0089/rm1234", img)

	_, ok = idx.Image("nm0000001")
	assert.False(t, ok)
}

func TestServiceAnswer(t *testing.T) {
	idx, err := ReadIndex(strings.NewReader(imagesJSON))
	require.NoError(t, err)
	s := NewService(&MockExtractor{Text: "Halle Berry"}, fixtureGraph(), idx)

	answer, err := s.Answer(context.Background(), "Show me a picture of Halle Berry.")
	require.NoError(t, err)
	assert.Equal(t, "image:0089/rm1234\nThis is Halle Berry.", answer.Text())
}

func TestServiceAnswerWithoutImage(t *testing.T) {
	idx, err := ReadIndex(strings.NewReader(imagesJSON))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = NewService(&MockExtractor{Text: "Tom Hanks"}, fixtureGraph(), idx).Answer(ctx, "Show me Tom Hanks")
	assert.True(t, errors.Is(err, model.ErrNotFound))

	_, err = NewService(&MockExtractor{}, fixtureGraph(), idx).Answer(ctx, "Show me a picture")
	assert.True(t, errors.Is(err, model.ErrNoEntityFound))
}
