package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/cto-coach/internal/core/domain"
	"github.com/kirillkom/cto-coach/internal/core/knowledge"
	"github.com/kirillkom/cto-coach/internal/core/ports"
)

type ChatUseCase struct {
	chats     ports.ChatRepository
	searcher  ports.DocumentSearcher
	generator ports.AnswerGenerator
	topK      int
}

func NewChatUseCase(
	chats ports.ChatRepository,
	searcher ports.DocumentSearcher,
	generator ports.AnswerGenerator,
	topK int,
) *ChatUseCase {
	if topK <= 0 {
		topK = defaultSearchLimit
	}
	return &ChatUseCase{
		chats:     chats,
		searcher:  searcher,
		generator: generator,
		topK:      topK,
	}
}

func (uc *ChatUseCase) CreateSession(ctx context.Context) (*domain.ChatSession, error) {
	session := &domain.ChatSession{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.chats.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create chat session: %w", err)
	}
	return session, nil
}

// SendMessage answers one chat turn. Retrieval failures degrade to an answer without
// context; generation failures abort the turn before anything is persisted.
func (uc *ChatUseCase) SendMessage(ctx context.Context, sessionID, message string) (*domain.ChatReply, error) {
	sessionID, err := normalizeSessionID("send chat message", sessionID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(message) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "send chat message", errors.New("message is required"))
	}

	if _, err := uc.chats.GetSession(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("load chat session: %w", err)
	}

	docs, err := uc.searcher.Search(ctx, message, uc.topK, domain.SearchFilter{})
	if err != nil {
		slog.Warn("chat_search_failed", "session_id", sessionID, "error", err)
		docs = nil
	}

	sources := buildSources(message, docs)
	answer, err := uc.generator.Generate(ctx, buildChatPrompt(message, sources))
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	sourceIDs := make([]int64, 0, len(sources))
	for _, source := range sources {
		sourceIDs = append(sourceIDs, source.ID)
	}

	if err := uc.chats.AppendMessage(ctx, &domain.Message{
		SessionID: sessionID,
		Role:      domain.RoleUser,
		Content:   message,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return nil, fmt.Errorf("save user message: %w", err)
	}
	if err := uc.chats.AppendMessage(ctx, &domain.Message{
		SessionID: sessionID,
		Role:      domain.RoleAssistant,
		Content:   answer,
		Sources:   sourceIDs,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return nil, fmt.Errorf("save assistant message: %w", err)
	}

	return &domain.ChatReply{
		Answer:    answer,
		Sources:   sources,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
	}, nil
}

func (uc *ChatUseCase) History(ctx context.Context, sessionID string) ([]domain.Message, error) {
	sessionID, err := normalizeSessionID("chat history", sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := uc.chats.GetSession(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("load chat session: %w", err)
	}

	messages, err := uc.chats.ListMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	return messages, nil
}

func normalizeSessionID(op, sessionID string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, op, errors.New("sessionId is required"))
	}
	if _, err := uuid.Parse(sessionID); err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, op, fmt.Errorf("sessionId must be a UUID: %w", err))
	}
	return sessionID, nil
}

func buildSources(message string, docs []domain.ScoredDocument) []domain.Source {
	sources := make([]domain.Source, 0, len(docs))
	for _, doc := range docs {
		sources = append(sources, domain.Source{
			ID:              doc.ID,
			Title:           doc.Title,
			RelevantContent: knowledge.ExtractSnippet(doc.Content, message),
			Category:        doc.Category,
			Tags:            doc.Tags,
			Summary:         doc.Summary,
			RelevanceScore:  doc.RelevanceScore,
		})
	}
	return sources
}
