//go:build integration

package integration

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlbeMasera/ATAI/internal/core/kg"
	"github.com/AlbeMasera/ATAI/internal/driver"
)

const graphFixture = `<http://www.wikidata.org/entity/Q11424> <http://www.wikidata.org/prop/direct/P279> <http://www.wikidata.org/entity/Q2431196> .
<http://www.wikidata.org/entity/Q25188> <http://www.wikidata.org/prop/direct/P31> <http://www.wikidata.org/entity/Q11424> .
<http://www.wikidata.org/entity/Q25188> <http://www.w3.org/2000/01/rdf-schema#label> "Inception"@en .
<http://www.wikidata.org/entity/Q25188> <http://www.wikidata.org/prop/direct/P57> <http://www.wikidata.org/entity/Q25191> .
<http://www.wikidata.org/entity/Q25191> <http://www.wikidata.org/prop/direct/P31> <http://www.wikidata.org/entity/Q5> .
<http://www.wikidata.org/entity/Q25191> <http://www.w3.org/2000/01/rdf-schema#label> "Christopher Nolan"@en .
<http://www.wikidata.org/entity/Q25191> <http://www.wikidata.org/prop/direct/P345> "nm0634240" .
`

func TestMemgraphRoundTrip(t *testing.T) {
	_ = godotenv.Load("../../.env")

	uri := os.Getenv("MEMGRAPH_URI")
	if uri == "" {
		t.Skip("Skipping integration test: MEMGRAPH_URI not set")
	}
	ctx := context.Background()

	d, err := driver.NewMemgraphDriver(ctx, uri, os.Getenv("MEMGRAPH_USER"), os.Getenv("MEMGRAPH_PASSWORD"))
	require.NoError(t, err)
	store := driver.NewCypherStore(d)
	defer store.Close(ctx)

	var triples []driver.Triple
	require.NoError(t, driver.ParseNTriples(strings.NewReader(graphFixture), func(tr driver.Triple) error {
		triples = append(triples, tr)
		return nil
	}))
	require.NoError(t, d.BuildIndices(ctx))
	require.NoError(t, store.ImportTriples(ctx, triples, 3))

	n, err := store.CountTriples(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(len(triples)))

	r := kg.NewResolver(store, "", "")
	movie, err := r.FindMovie(ctx, "inception")
	require.NoError(t, err)
	assert.Equal(t, driver.WD+"Q25188", movie.Value)

	directors, err := r.ObjectLabels(ctx, movie, driver.WDT+"P57")
	require.NoError(t, err)
	assert.Equal(t, []string{"Christopher Nolan"}, directors)

	person, err := r.FindPerson(ctx, "Christopher Nolan")
	require.NoError(t, err)
	id, err := r.IMDbID(ctx, person)
	require.NoError(t, err)
	assert.Equal(t, "nm0634240", id)

	isMovie, err := r.IsMovie(ctx, person)
	require.NoError(t, err)
	assert.False(t, isMovie)
}
