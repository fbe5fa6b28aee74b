package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/kirillkom/cto-coach/internal/core/domain"
)

type documentRepoFake struct {
	docs      map[int64]domain.Document
	nextID    int64
	createErr error
	listErr   error
	created   int
	updated   int
	deleted   []int64
}

func newDocumentRepoFake(docs ...domain.Document) *documentRepoFake {
	f := &documentRepoFake{docs: map[int64]domain.Document{}}
	for _, doc := range docs {
		f.docs[doc.ID] = doc
		if doc.ID > f.nextID {
			f.nextID = doc.ID
		}
	}
	return f
}

func (f *documentRepoFake) Create(_ context.Context, doc *domain.Document) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	doc.ID = f.nextID
	f.docs[doc.ID] = *doc
	f.created++
	return nil
}

func (f *documentRepoFake) GetByID(_ context.Context, id int64) (*domain.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id %d", id))
	}
	return &doc, nil
}

func (f *documentRepoFake) Update(_ context.Context, doc *domain.Document) error {
	if _, ok := f.docs[doc.ID]; !ok {
		return domain.ErrDocumentNotFound
	}
	f.docs[doc.ID] = *doc
	f.updated++
	return nil
}

func (f *documentRepoFake) Delete(_ context.Context, id int64) error {
	delete(f.docs, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *documentRepoFake) List(_ context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	ids := make([]int64, 0, len(f.docs))
	for id := range f.docs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]domain.Document, 0, len(ids))
	for _, id := range ids {
		doc := f.docs[id]
		if filter.Category != "" && doc.Category != filter.Category {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(doc.Title+" "+doc.Content+" "+doc.Summary), strings.ToLower(filter.Search)) {
			continue
		}
		if len(filter.Tags) > 0 && !hasAnyTag(doc.Tags, filter.Tags) {
			continue
		}
		out = append(out, doc)
	}
	return out, nil
}

func (f *documentRepoFake) ListCategories(context.Context) ([]string, error) {
	return []string{"Architecture"}, nil
}

func (f *documentRepoFake) ListTags(context.Context) ([]string, error) {
	return []string{"api"}, nil
}

func hasAnyTag(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

type storageFake struct {
	files     map[string]string
	saveErr   error
	deleteErr error
	deleted   []string
}

func newStorageFake() *storageFake {
	return &storageFake{files: map[string]string{}}
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.files[key] = string(raw)
	return nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	body, ok := f.files[key]
	if !ok {
		return nil, errors.New("missing file")
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func (f *storageFake) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.files, key)
	return nil
}

// extractorFake reads verbatim from storageFake for text types.
type extractorFake struct {
	storage *storageFake
}

func (f *extractorFake) Extract(ctx context.Context, key, mimeType string) (string, error) {
	switch mimeType {
	case "text/plain", "text/markdown":
	default:
		return "", domain.WrapError(domain.ErrUnsupportedFileType, "extract text", fmt.Errorf("mime type %q", mimeType))
	}
	rc, err := f.storage.Open(ctx, key)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	return string(raw), err
}

type eventsFake struct {
	events []domain.DocumentEvent
	err    error
}

func (f *eventsFake) PublishDocumentEvent(_ context.Context, event domain.DocumentEvent) error {
	f.events = append(f.events, event)
	return f.err
}

type graphFake struct {
	synced  []int64
	removed []int64
	related []domain.RelatedDocument
	err     error
}

func (f *graphFake) SyncDocument(_ context.Context, doc *domain.Document) error {
	f.synced = append(f.synced, doc.ID)
	return f.err
}

func (f *graphFake) RemoveDocument(_ context.Context, id int64) error {
	f.removed = append(f.removed, id)
	return f.err
}

func (f *graphFake) RelatedDocuments(context.Context, int64, int) ([]domain.RelatedDocument, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.related, nil
}

type chatRepoFake struct {
	sessions map[string]domain.ChatSession
	messages []domain.Message
}

func newChatRepoFake() *chatRepoFake {
	return &chatRepoFake{sessions: map[string]domain.ChatSession{}}
}

func (f *chatRepoFake) CreateSession(_ context.Context, session *domain.ChatSession) error {
	f.sessions[session.ID] = *session
	return nil
}

func (f *chatRepoFake) GetSession(_ context.Context, id string) (*domain.ChatSession, error) {
	session, ok := f.sessions[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrSessionNotFound, "get chat session", fmt.Errorf("id %s", id))
	}
	return &session, nil
}

func (f *chatRepoFake) AppendMessage(_ context.Context, message *domain.Message) error {
	message.ID = int64(len(f.messages) + 1)
	f.messages = append(f.messages, *message)
	return nil
}

func (f *chatRepoFake) ListMessages(_ context.Context, sessionID string) ([]domain.Message, error) {
	out := make([]domain.Message, 0)
	for _, message := range f.messages {
		if message.SessionID == sessionID {
			out = append(out, message)
		}
	}
	return out, nil
}

type searcherFake struct {
	docs []domain.ScoredDocument
	err  error
}

func (f *searcherFake) Search(context.Context, string, int, domain.SearchFilter) ([]domain.ScoredDocument, error) {
	return f.docs, f.err
}

type generatorFake struct {
	answer string
	err    error
	prompt string
}

func (f *generatorFake) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.answer, f.err
}
