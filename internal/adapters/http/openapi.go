package httpadapter

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
)

//go:embed openapi.yaml
var openAPISpec []byte

var (
	apiSpecOnce sync.Once
	apiSpec     *openapi3.T
	apiSpecErr  error
)

func loadAPISpec() (*openapi3.T, error) {
	apiSpecOnce.Do(func() {
		loader := openapi3.NewLoader()
		doc, err := loader.LoadFromData(openAPISpec)
		if err != nil {
			apiSpecErr = fmt.Errorf("load openapi spec: %w", err)
			return
		}
		if err := doc.Validate(context.Background()); err != nil {
			apiSpecErr = fmt.Errorf("validate openapi spec: %w", err)
			return
		}
		apiSpec = doc
	})
	return apiSpec, apiSpecErr
}

// requestValidator checks requests against the embedded OpenAPI document before they reach a handler.
type requestValidator struct {
	doc *openapi3.T
}

func newRequestValidator(enabled bool) *requestValidator {
	if !enabled {
		return &requestValidator{}
	}
	doc, err := loadAPISpec()
	if err != nil {
		// The document is embedded at build time, a broken one is a programming error.
		panic(err)
	}
	return &requestValidator{doc: doc}
}

// wrap binds the validator to one mux pattern such as "GET /api/documents/{id}".
// Patterns without a matching operation pass through unvalidated.
func (v *requestValidator) wrap(pattern string, next http.Handler) http.Handler {
	if v == nil || v.doc == nil {
		return next
	}
	method, path, ok := strings.Cut(pattern, " ")
	if !ok {
		return next
	}
	pathItem := v.doc.Paths.Value(path)
	if pathItem == nil {
		return next
	}
	operation := pathItem.GetOperation(method)
	if operation == nil {
		return next
	}

	route := &routers.Route{
		Spec:      v.doc,
		Path:      path,
		PathItem:  pathItem,
		Method:    method,
		Operation: operation,
	}
	pathParams := pathParameterNames(pathItem, operation)
	options := &openapi3filter.Options{
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		// Multipart uploads are bounded and checked by the handler itself.
		ExcludeRequestBody: hasMultipartBody(operation),
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params := make(map[string]string, len(pathParams))
		for _, name := range pathParams {
			params[name] = r.PathValue(name)
		}
		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: params,
			Route:      route,
			Options:    options,
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": validationMessage(err)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func pathParameterNames(pathItem *openapi3.PathItem, operation *openapi3.Operation) []string {
	var names []string
	seen := map[string]struct{}{}
	for _, params := range []openapi3.Parameters{pathItem.Parameters, operation.Parameters} {
		for _, ref := range params {
			if ref == nil || ref.Value == nil || ref.Value.In != openapi3.ParameterInPath {
				continue
			}
			if _, ok := seen[ref.Value.Name]; ok {
				continue
			}
			seen[ref.Value.Name] = struct{}{}
			names = append(names, ref.Value.Name)
		}
	}
	return names
}

func hasMultipartBody(operation *openapi3.Operation) bool {
	if operation.RequestBody == nil || operation.RequestBody.Value == nil {
		return false
	}
	_, ok := operation.RequestBody.Value.Content["multipart/form-data"]
	return ok
}

func validationMessage(err error) string {
	switch e := err.(type) {
	case *openapi3filter.RequestError:
		if e.Parameter != nil {
			reason := e.Reason
			if reason == "" && e.Err != nil {
				reason = e.Err.Error()
			}
			return fmt.Sprintf("invalid %s parameter %q: %s", e.Parameter.In, e.Parameter.Name, reason)
		}
		if e.RequestBody != nil {
			return "invalid request body: " + e.Error()
		}
		return e.Error()
	default:
		return err.Error()
	}
}

func (rt *Router) openAPIDocument(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openAPISpec)
}
