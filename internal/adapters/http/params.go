package httpadapter

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/kirillkom/cto-coach/internal/core/domain"
)

func bindDocumentID(r *http.Request) (int64, error) {
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", "id", r.PathValue("id"), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		return 0, domain.WrapError(domain.ErrInvalidInput, "bind id", err)
	}
	if id <= 0 {
		return 0, domain.WrapError(domain.ErrInvalidInput, "bind id", fmt.Errorf("id must be positive, got %d", id))
	}
	return id, nil
}

func bindSessionID(r *http.Request) (string, error) {
	var sessionID string
	err := runtime.BindStyledParameterWithOptions("simple", "sessionId", r.PathValue("sessionId"), &sessionID, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "bind sessionId", err)
	}
	return parseSessionID(sessionID)
}

func parseSessionID(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "bind sessionId", errors.New("sessionId is required"))
	}
	if _, err := uuid.Parse(value); err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "bind sessionId", fmt.Errorf("sessionId must be a UUID: %w", err))
	}
	return value, nil
}

func queryString(r *http.Request, name string) (string, error) {
	var value *string
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &value); err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "bind "+name, err)
	}
	if value == nil {
		return "", nil
	}
	return strings.TrimSpace(*value), nil
}

// queryLimit returns 0 when limit is absent so the use case picks its default.
func queryLimit(r *http.Request) (int, error) {
	var limit *int
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		return 0, domain.WrapError(domain.ErrInvalidInput, "bind limit", err)
	}
	if limit == nil {
		return 0, nil
	}
	if *limit < 1 {
		return 0, domain.WrapError(domain.ErrInvalidInput, "bind limit", errors.New("limit must be at least 1"))
	}
	return *limit, nil
}

// queryTags reads the comma-separated tags parameter.
func queryTags(r *http.Request) ([]string, error) {
	raw, err := queryString(r, "tags")
	if err != nil || raw == "" {
		return nil, err
	}
	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags, nil
}
