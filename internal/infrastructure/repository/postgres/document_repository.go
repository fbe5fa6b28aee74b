package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/cto-coach/internal/core/domain"
)

const documentColumns = `id, title, content, summary, file_path, file_type, category, tags, word_count, is_processed, created_at, updated_at`

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	tagsJSON, err := marshalTags(doc.Tags)
	if err != nil {
		return err
	}

	row := r.db.QueryRowContext(ctx, `
INSERT INTO documents (
	title, content, summary, file_path, file_type, category, tags, word_count, is_processed, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
RETURNING id
`,
		doc.Title, doc.Content, doc.Summary, doc.FilePath, doc.FileType, doc.Category, tagsJSON,
		doc.WordCount, doc.IsProcessed, doc.CreatedAt, doc.UpdatedAt,
	)
	if err := row.Scan(&doc.ID); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id int64) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE id = $1
`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id %d", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return doc, nil
}

func (r *DocumentRepository) Update(ctx context.Context, doc *domain.Document) error {
	tagsJSON, err := marshalTags(doc.Tags)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET title = $2, content = $3, summary = $4, category = $5, tags = $6, word_count = $7, is_processed = $8, updated_at = $9
WHERE id = $1
`, doc.ID, doc.Title, doc.Content, doc.Summary, doc.Category, tagsJSON, doc.WordCount, doc.IsProcessed, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return requireAffected(res, "update document", doc.ID)
}

func (r *DocumentRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return requireAffected(res, "delete document", id)
}

// List returns documents newest first. Tags match when a document carries any of them.
func (r *DocumentRepository) List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	query, args, err := buildListQuery(filter)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	docs := make([]domain.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) ListCategories(ctx context.Context) ([]string, error) {
	return r.listStrings(ctx, "list categories", `
SELECT DISTINCT category
FROM documents
WHERE category <> ''
ORDER BY category
`)
}

func (r *DocumentRepository) ListTags(ctx context.Context) ([]string, error) {
	return r.listStrings(ctx, "list tags", `
SELECT DISTINCT tag
FROM documents, jsonb_array_elements_text(tags) AS tag
ORDER BY tag
`)
}

func (r *DocumentRepository) listStrings(ctx context.Context, operation, query string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("%s scan: %w", operation, err)
		}
		out = append(out, value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s iterate: %w", operation, err)
	}
	return out, nil
}

func buildListQuery(filter domain.DocumentFilter) (string, []any, error) {
	var (
		conditions []string
		args       []any
	)

	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			`(title ILIKE $%[1]d ESCAPE '\' OR content ILIKE $%[1]d ESCAPE '\' OR summary ILIKE $%[1]d ESCAPE '\')`, n,
		))
	}
	if len(filter.Tags) > 0 {
		tagsJSON, err := json.Marshal(filter.Tags)
		if err != nil {
			return "", nil, fmt.Errorf("marshal tag filter: %w", err)
		}
		args = append(args, string(tagsJSON))
		conditions = append(conditions, fmt.Sprintf("tags ?| ARRAY(SELECT jsonb_array_elements_text($%d::jsonb))", len(args)))
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(documentColumns)
	b.WriteString("\nFROM documents")
	if len(conditions) > 0 {
		b.WriteString("\nWHERE ")
		b.WriteString(strings.Join(conditions, " AND "))
	}
	b.WriteString("\nORDER BY created_at DESC, id DESC")
	return b.String(), args, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var tagsRaw []byte
	if err := row.Scan(
		&doc.ID, &doc.Title, &doc.Content, &doc.Summary, &doc.FilePath, &doc.FileType, &doc.Category,
		&tagsRaw, &doc.WordCount, &doc.IsProcessed, &doc.CreatedAt, &doc.UpdatedAt,
	); err != nil {
		return nil, err
	}

	doc.Tags = []string{}
	if len(tagsRaw) > 0 {
		if err := json.Unmarshal(tagsRaw, &doc.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags: %w", err)
		}
	}
	return &doc, nil
}

func marshalTags(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}
	return raw, nil
}

func requireAffected(res sql.Result, operation string, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", operation, err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, operation, fmt.Errorf("id %d", id))
	}
	return nil
}

func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}
