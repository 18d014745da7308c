package driver

// Graph layout: every IRI is a (:Resource {iri}) node, every literal a
// (:Literal {value, lang}) node, and every triple a [:TRIPLE {predicate}]
// relationship from subject to object.
const (
	FindByLabelQuery = `
		MATCH (n:Resource)-[:TRIPLE {predicate: $label_predicate}]->(l:Literal)
		WHERE toLower(l.value) CONTAINS toLower($text)
		MATCH (n)-[:TRIPLE {predicate: $instance_of}]->(c:Resource)
		MATCH p = (c)-[:TRIPLE *0..8]->(:Resource {iri: $class})
		WHERE all(r IN relationships(p) WHERE r.predicate = $subclass_of)
		WITH DISTINCT n.iri AS iri, l.value AS label
		RETURN iri, label
		ORDER BY size(label), iri
		LIMIT $limit
	`

	InstanceOfQuery = `
		MATCH (n:Resource {iri: $iri})-[:TRIPLE {predicate: $instance_of}]->(c:Resource)
		MATCH p = (c)-[:TRIPLE *0..8]->(:Resource {iri: $class})
		WHERE all(r IN relationships(p) WHERE r.predicate = $subclass_of)
		RETURN count(p) > 0 AS ok
	`

	GetLabelsQuery = `
		MATCH (n:Resource {iri: $iri})-[:TRIPLE {predicate: $label_predicate}]->(l:Literal)
		RETURN l.value AS value, l.lang AS lang
		ORDER BY lang, value
	`

	GetObjectsQuery = `
		MATCH (s:Resource {iri: $subject})-[:TRIPLE {predicate: $predicate}]->(o)
		RETURN o.iri AS iri, o.value AS value, o.lang AS lang
		ORDER BY iri, value
	`

	ImportResourceTriplesQuery = `
		UNWIND $rows AS row
		MERGE (s:Resource {iri: row.subject})
		MERGE (o:Resource {iri: row.object})
		MERGE (s)-[:TRIPLE {predicate: row.predicate}]->(o)
	`

	ImportLiteralTriplesQuery = `
		UNWIND $rows AS row
		MERGE (s:Resource {iri: row.subject})
		CREATE (l:Literal {value: row.object, lang: row.lang})
		CREATE (s)-[:TRIPLE {predicate: row.predicate}]->(l)
	`

	CountTriplesQuery = `
		MATCH ()-[t:TRIPLE]->()
		RETURN count(t) AS count
	`
)

// IndexQueries are run by BuildIndices.
var IndexQueries = []string{
	"CREATE INDEX ON :Resource(iri);",
	"CREATE INDEX ON :Resource;",
	"CREATE INDEX ON :Literal;",
}
