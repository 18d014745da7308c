package driver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlbeMasera/ATAI/internal/core/model"
)

const fixtureGraph = `# movies
<http://www.wikidata.org/entity/Q25188> <http://www.w3.org/2000/01/rdf-schema#label> "Inception"@en .
<http://www.wikidata.org/entity/Q25188> <http://www.wikidata.org/prop/direct/P31> <http://www.wikidata.org/entity/Q11424> .
<http://www.wikidata.org/entity/Q25188> <http://www.wikidata.org/prop/direct/P57> <http://www.wikidata.org/entity/Q25191> .
<http://www.wikidata.org/entity/Q25191> <http://www.w3.org/2000/01/rdf-schema#label> "Christopher Nolan"@en .
<http://www.wikidata.org/entity/Q25191> <http://www.wikidata.org/prop/direct/P31> <http://www.wikidata.org/entity/Q5> .
<http://www.wikidata.org/entity/Q11424> <http://www.wikidata.org/prop/direct/P279> <http://www.wikidata.org/entity/Q2431196> .
<http://www.wikidata.org/entity/Q483> <http://www.w3.org/2000/01/rdf-schema#label> "Inception (novel)"@en .
<http://www.wikidata.org/entity/Q483> <http://www.wikidata.org/prop/direct/P31> <http://www.wikidata.org/entity/Q7725634> .
<http://www.wikidata.org/entity/Q25188> <http://www.wikidata.org/prop/direct/P577> "2010-07-08"^^<http://www.w3.org/2001/XMLSchema#date> .
<http://www.wikidata.org/entity/Q25188> <http://www.w3.org/2000/01/rdf-schema#label> "Origen"@es .

_:b0 <http://schema.org/description> "a \"quoted\" café\n" .
`

func TestParseNTriples(t *testing.T) {
	var triples []Triple
	err := ParseNTriples(strings.NewReader(fixtureGraph), func(tr Triple) error {
		triples = append(triples, tr)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, triples, 11)

	assert.Equal(t, Triple{
		Subject:   WD + "Q25188",
		Predicate: RDFSLabel,
		Object:    model.Literal("Inception", "en"),
	}, triples[0])
	assert.Equal(t, model.IRI(WD+"Q11424"), triples[1].Object)
	assert.Equal(t, model.Literal("2010-07-08", ""), triples[8].Object)
	assert.Equal(t, "_:b0", triples[10].Subject)
	assert.Equal(t, "a \"quoted\" café\n", triples[10].Object.Value)
}

func TestParseNTriplesRejectsMalformedLine(t *testing.T) {
	err := ParseNTriples(strings.NewReader(`<http://a> <http://b> "open .`), func(Triple) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")

	err = ParseNTriples(strings.NewReader(`<http://a> <http://b> <http://c>`), func(Triple) error { return nil })
	assert.Error(t, err)
}
