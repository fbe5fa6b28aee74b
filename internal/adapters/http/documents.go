package httpadapter

import (
	"errors"
	"net/http"
	"time"

	"github.com/kirillkom/cto-coach/internal/core/domain"
)

// multipartOverhead leaves room for boundaries and part headers on top of the file size limit.
const multipartOverhead = 64 << 10

type documentMetadata struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	FileType  string    `json:"fileType"`
	Category  string    `json:"category"`
	Tags      []string  `json:"tags"`
	WordCount int       `json:"wordCount"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toMetadata(doc domain.Document) documentMetadata {
	tags := doc.Tags
	if tags == nil {
		tags = []string{}
	}
	return documentMetadata{
		ID:        doc.ID,
		Title:     doc.Title,
		Summary:   doc.Summary,
		FileType:  doc.FileType,
		Category:  doc.Category,
		Tags:      tags,
		WordCount: doc.WordCount,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}

type uploadResponse struct {
	documentMetadata
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > rt.maxUploadBytes+multipartOverhead {
		rt.observer.RecordUpload("", "rejected")
		writeError(w, r, &http.MaxBytesError{Limit: rt.maxUploadBytes})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, rt.maxUploadBytes+multipartOverhead)

	file, header, err := r.FormFile("document")
	if err != nil {
		rt.observer.RecordUpload("", "rejected")
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, maxBytesErr)
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'document' is required"})
		return
	}
	defer file.Close()

	if header.Size > rt.maxUploadBytes {
		rt.observer.RecordUpload("", "rejected")
		writeError(w, r, &http.MaxBytesError{Limit: rt.maxUploadBytes})
		return
	}

	doc, err := rt.uploader.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		rt.observer.RecordUpload("", "error")
		writeError(w, r, err)
		return
	}
	rt.observer.RecordUpload(doc.Category, "ok")

	writeJSON(w, http.StatusCreated, uploadResponse{
		documentMetadata: toMetadata(*doc),
		Status:           "uploaded",
		Message:          "Document uploaded and processed successfully",
	})
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	category, err := queryString(r, "category")
	if err != nil {
		writeError(w, r, err)
		return
	}
	search, err := queryString(r, "search")
	if err != nil {
		writeError(w, r, err)
		return
	}
	tags, err := queryTags(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	docs, err := rt.catalog.List(r.Context(), domain.DocumentFilter{
		Category: category,
		Search:   search,
		Tags:     tags,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	items := make([]documentMetadata, 0, len(docs))
	for _, doc := range docs {
		items = append(items, toMetadata(doc))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"documents":  items,
		"totalCount": len(items),
	})
}

func (rt *Router) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := rt.catalog.Categories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (rt *Router) listTags(w http.ResponseWriter, r *http.Request) {
	tags, err := rt.catalog.Tags(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if tags == nil {
		tags = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": tags})
}

func (rt *Router) searchDocuments(w http.ResponseWriter, r *http.Request) {
	query, err := queryString(r, "q")
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	category, err := queryString(r, "category")
	if err != nil {
		writeError(w, r, err)
		return
	}
	tags, err := queryTags(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	results, err := rt.searcher.Search(r.Context(), query, limit, domain.SearchFilter{
		Category: category,
		Tags:     tags,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if results == nil {
		results = []domain.ScoredDocument{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":      query,
		"results":    results,
		"totalCount": len(results),
	})
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	id, err := bindDocumentID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	doc, err := rt.catalog.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) deleteDocument(w http.ResponseWriter, r *http.Request) {
	id, err := bindDocumentID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := rt.catalog.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Document deleted successfully",
		"id":      id,
	})
}

func (rt *Router) relatedDocuments(w http.ResponseWriter, r *http.Request) {
	id, err := bindDocumentID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	related, err := rt.catalog.Related(r.Context(), id, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if related == nil {
		related = []domain.RelatedDocument{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"documentId": id,
		"related":    related,
	})
}

func (rt *Router) reclassifyDocument(w http.ResponseWriter, r *http.Request) {
	id, err := bindDocumentID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	doc, err := rt.catalog.Reclassify(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}
