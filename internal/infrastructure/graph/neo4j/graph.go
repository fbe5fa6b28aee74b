// Package neo4j mirrors documents and their tags as a (:Document)-[:TAGGED]->(:Tag) graph
// and answers related-document queries by counting shared tags.
package neo4j

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/kirillkom/cto-coach/internal/core/domain"
)

const (
	constraintsCypher = `CREATE CONSTRAINT document_id IF NOT EXISTS FOR (d:Document) REQUIRE d.id IS UNIQUE`
	tagConstraint     = `CREATE CONSTRAINT tag_name IF NOT EXISTS FOR (t:Tag) REQUIRE t.name IS UNIQUE`

	syncCypher = `
MERGE (d:Document {id: $id})
SET d.title = $title, d.category = $category
WITH d
OPTIONAL MATCH (d)-[r:TAGGED]->(:Tag)
DELETE r
WITH DISTINCT d
UNWIND $tags AS tagName
MERGE (t:Tag {name: tagName})
MERGE (d)-[:TAGGED]->(t)
`

	removeCypher = `MATCH (d:Document {id: $id}) DETACH DELETE d`

	relatedCypher = `
MATCH (d:Document {id: $id})-[:TAGGED]->(t:Tag)<-[:TAGGED]-(other:Document)
WHERE other.id <> d.id
RETURN other.id AS id, other.title AS title, count(DISTINCT t) AS shared
ORDER BY shared DESC, id ASC
LIMIT $limit
`
)

type runFunc func(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error)

type Graph struct {
	driver neo4j.DriverWithContext
	run    runFunc
}

type Config struct {
	URI      string
	User     string
	Password string
	Database string
}

func New(ctx context.Context, cfg Config) (*Graph, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify neo4j connectivity: %w", err)
	}

	g := &Graph{driver: driver}
	g.run = func(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
		result, err := neo4j.ExecuteQuery(ctx, driver, cypher, params,
			neo4j.EagerResultTransformer,
			neo4j.ExecuteQueryWithDatabase(cfg.Database),
		)
		if err != nil {
			return nil, err
		}
		return result.Records, nil
	}
	return g, nil
}

func (g *Graph) Close(ctx context.Context) error {
	if g.driver == nil {
		return nil
	}
	return g.driver.Close(ctx)
}

func (g *Graph) EnsureConstraints(ctx context.Context) error {
	for _, cypher := range []string{constraintsCypher, tagConstraint} {
		if _, err := g.run(ctx, cypher, nil); err != nil {
			return fmt.Errorf("ensure graph constraints: %w", err)
		}
	}
	return nil
}

// SyncDocument replaces the document's tag edges with its current tags.
func (g *Graph) SyncDocument(ctx context.Context, doc *domain.Document) error {
	tags := doc.Tags
	if tags == nil {
		tags = []string{}
	}
	_, err := g.run(ctx, syncCypher, map[string]any{
		"id":       doc.ID,
		"title":    doc.Title,
		"category": doc.Category,
		"tags":     tags,
	})
	if err != nil {
		return fmt.Errorf("sync document %d to graph: %w", doc.ID, err)
	}
	return nil
}

func (g *Graph) RemoveDocument(ctx context.Context, id int64) error {
	if _, err := g.run(ctx, removeCypher, map[string]any{"id": id}); err != nil {
		return fmt.Errorf("remove document %d from graph: %w", id, err)
	}
	return nil
}

func (g *Graph) RelatedDocuments(ctx context.Context, id int64, limit int) ([]domain.RelatedDocument, error) {
	records, err := g.run(ctx, relatedCypher, map[string]any{"id": id, "limit": int64(limit)})
	if err != nil {
		return nil, fmt.Errorf("query related documents: %w", err)
	}

	related := make([]domain.RelatedDocument, 0, len(records))
	for _, record := range records {
		item, err := relatedFromRecord(record)
		if err != nil {
			return nil, err
		}
		related = append(related, item)
	}
	return related, nil
}

func relatedFromRecord(record *neo4j.Record) (domain.RelatedDocument, error) {
	id, _, err := neo4j.GetRecordValue[int64](record, "id")
	if err != nil {
		return domain.RelatedDocument{}, fmt.Errorf("read related id: %w", err)
	}
	title, _, err := neo4j.GetRecordValue[string](record, "title")
	if err != nil {
		return domain.RelatedDocument{}, fmt.Errorf("read related title: %w", err)
	}
	shared, _, err := neo4j.GetRecordValue[int64](record, "shared")
	if err != nil {
		return domain.RelatedDocument{}, fmt.Errorf("read shared tag count: %w", err)
	}
	return domain.RelatedDocument{ID: id, Title: title, SharedTags: int(shared)}, nil
}
