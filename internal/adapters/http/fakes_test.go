package httpadapter

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/kirillkom/cto-coach/internal/config"
	"github.com/kirillkom/cto-coach/internal/core/domain"
)

type uploaderFake struct {
	err         error
	gotFilename string
	gotMimeType string
	gotBody     string
	doc         *domain.Document
}

func (f *uploaderFake) Upload(_ context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error) {
	f.gotFilename = filename
	f.gotMimeType = mimeType
	raw, _ := io.ReadAll(body)
	f.gotBody = string(raw)
	if f.err != nil {
		return nil, f.err
	}
	if f.doc != nil {
		return f.doc, nil
	}
	return &domain.Document{
		ID:        1,
		Title:     "Guide",
		FileType:  mimeType,
		Category:  domain.GeneralCategory,
		Tags:      []string{},
		Content:   f.gotBody,
		CreatedAt: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	}, nil
}

type catalogFake struct {
	docs       []domain.Document
	err        error
	gotFilter  domain.DocumentFilter
	gotLimit   int
	deletedIDs []int64
	categories []string
	tags       []string
	related    []domain.RelatedDocument
}

func (f *catalogFake) List(_ context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	f.gotFilter = filter
	return f.docs, f.err
}

func (f *catalogFake) Get(_ context.Context, id int64) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.docs {
		if f.docs[i].ID == id {
			doc := f.docs[i]
			return &doc, nil
		}
	}
	return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", io.EOF)
}

func (f *catalogFake) Delete(ctx context.Context, id int64) error {
	if _, err := f.Get(ctx, id); err != nil {
		return err
	}
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

func (f *catalogFake) Categories(context.Context) ([]string, error) { return f.categories, f.err }
func (f *catalogFake) Tags(context.Context) ([]string, error)       { return f.tags, f.err }

func (f *catalogFake) Reclassify(ctx context.Context, id int64) (*domain.Document, error) {
	return f.Get(ctx, id)
}

func (f *catalogFake) Related(_ context.Context, _ int64, limit int) ([]domain.RelatedDocument, error) {
	f.gotLimit = limit
	return f.related, f.err
}

type searcherFake struct {
	results   []domain.ScoredDocument
	err       error
	gotQuery  string
	gotLimit  int
	gotFilter domain.SearchFilter
}

func (f *searcherFake) Search(_ context.Context, query string, limit int, filter domain.SearchFilter) ([]domain.ScoredDocument, error) {
	f.gotQuery = query
	f.gotLimit = limit
	f.gotFilter = filter
	return f.results, f.err
}

type chatFake struct {
	reply      *domain.ChatReply
	err        error
	history    []domain.Message
	gotSession string
	gotMessage string
}

func (f *chatFake) CreateSession(context.Context) (*domain.ChatSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ChatSession{ID: "0b8f3c5e-7a52-4c2b-9d0e-6f1a2b3c4d5e", CreatedAt: time.Now().UTC()}, nil
}

func (f *chatFake) SendMessage(_ context.Context, sessionID, message string) (*domain.ChatReply, error) {
	f.gotSession = sessionID
	f.gotMessage = message
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func (f *chatFake) History(_ context.Context, sessionID string) ([]domain.Message, error) {
	f.gotSession = sessionID
	return f.history, f.err
}

type routerDeps struct {
	uploader *uploaderFake
	catalog  *catalogFake
	searcher *searcherFake
	chat     *chatFake
}

const testSessionID = "0f8fad5b-d9cb-469f-a165-70867728950e"

func newDeps() *routerDeps {
	return &routerDeps{
		uploader: &uploaderFake{},
		catalog:  &catalogFake{},
		searcher: &searcherFake{},
		chat:     &chatFake{},
	}
}

func (d *routerDeps) handler(cfg config.Config, opts ...RouterOption) http.Handler {
	return NewRouter(cfg, d.uploader, d.catalog, d.searcher, d.chat, opts...).Handler()
}

func newTestHandler(cfg config.Config) http.Handler {
	return newDeps().handler(cfg)
}
