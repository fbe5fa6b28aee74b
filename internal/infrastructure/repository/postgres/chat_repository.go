package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kirillkom/cto-coach/internal/core/domain"
)

type ChatRepository struct {
	db *sql.DB
}

func NewChatRepository(db *sql.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) CreateSession(ctx context.Context, session *domain.ChatSession) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO chat_sessions (id, created_at)
VALUES ($1, $2)
`, session.ID, session.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert chat session: %w", err)
	}
	return nil
}

// GetSession rejects malformed ids before the UUID cast can fail inside Postgres.
func (r *ChatRepository) GetSession(ctx context.Context, id string) (*domain.ChatSession, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "get chat session", fmt.Errorf("id %q: %w", id, err))
	}

	row := r.db.QueryRowContext(ctx, `
SELECT id, created_at
FROM chat_sessions
WHERE id = $1
`, id)

	var session domain.ChatSession
	if err := row.Scan(&session.ID, &session.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrSessionNotFound, "get chat session", fmt.Errorf("id %q", id))
		}
		return nil, fmt.Errorf("scan chat session: %w", err)
	}
	return &session, nil
}

func (r *ChatRepository) AppendMessage(ctx context.Context, message *domain.Message) error {
	var sources any
	if len(message.Sources) > 0 {
		raw, err := json.Marshal(message.Sources)
		if err != nil {
			return fmt.Errorf("marshal message sources: %w", err)
		}
		sources = raw
	}

	row := r.db.QueryRowContext(ctx, `
INSERT INTO messages (session_id, role, content, sources, created_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id
`, message.SessionID, string(message.Role), message.Content, sources, message.CreatedAt)
	if err := row.Scan(&message.ID); err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}
	return nil
}

func (r *ChatRepository) ListMessages(ctx context.Context, sessionID string) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, session_id, role, content, sources, created_at
FROM messages
WHERE session_id = $1
ORDER BY created_at ASC, id ASC
`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query chat messages: %w", err)
	}
	defer rows.Close()

	messages := make([]domain.Message, 0)
	for rows.Next() {
		var (
			message    domain.Message
			role       string
			sourcesRaw []byte
		)
		if err := rows.Scan(&message.ID, &message.SessionID, &role, &message.Content, &sourcesRaw, &message.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		message.Role = domain.MessageRole(role)
		if len(sourcesRaw) > 0 {
			if err := json.Unmarshal(sourcesRaw, &message.Sources); err != nil {
				return nil, fmt.Errorf("unmarshal message sources: %w", err)
			}
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat messages: %w", err)
	}
	return messages, nil
}
