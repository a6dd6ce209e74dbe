package openapi

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
)

// ErrNoRoute is returned when a request matches no documented operation.
var ErrNoRoute = errors.New("openapi: no matching operation")

// RequestError collects the problems found in one request. Fields is keyed
// by a slash separated location such as "body/values/email" or
// "query/limit"; messages without a location are kept in Form.
type RequestError struct {
	Fields map[string][]string
	Form   []string
}

func (e *RequestError) Error() string {
	parts := make([]string, 0, len(e.Fields)+len(e.Form))
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		parts = append(parts, key+": "+strings.Join(e.Fields[key], ", "))
	}
	parts = append(parts, e.Form...)
	return "openapi: invalid request: " + strings.Join(parts, "; ")
}

func (e *RequestError) add(key, message string) {
	if key == "" {
		e.Form = append(e.Form, message)
		return
	}
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[key] = append(e.Fields[key], message)
}

// Validator checks requests against the documented operations.
type Validator struct {
	router routers.Router
}

// NewValidator builds a validator over doc.
func NewValidator(doc *Document) (*Validator, error) {
	if doc == nil {
		return nil, errors.New("openapi: document is required")
	}
	router, err := gorillamux.NewRouter(doc.spec)
	if err != nil {
		return nil, fmt.Errorf("openapi: build router: %w", err)
	}
	return &Validator{router: router}, nil
}

// Validate checks r's parameters and body. The body is left readable for the
// handler. It returns ErrNoRoute for undocumented requests and a
// *RequestError when the request does not match its schema.
func (v *Validator) Validate(r *http.Request) error {
	route, params, err := v.router.FindRoute(r)
	if err != nil {
		return fmt.Errorf("%w: %s %s", ErrNoRoute, r.Method, r.URL.Path)
	}

	input := &openapi3filter.RequestValidationInput{
		Request:    r,
		PathParams: params,
		Route:      route,
		Options: &openapi3filter.Options{
			MultiError:         true,
			AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
			// Multipart bodies are checked by the upload handler itself.
			ExcludeRequestBody: strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/"),
		},
	}
	err = openapi3filter.ValidateRequest(r.Context(), input)
	if err == nil {
		return nil
	}

	out := &RequestError{}
	collect(out, err)
	if len(out.Fields) == 0 && len(out.Form) == 0 {
		out.add("", err.Error())
	}
	return out
}

// Middleware rejects documented requests that fail validation with a 400 JSON
// error. Undocumented routes pass through untouched.
func (v *Validator) Middleware(write func(http.ResponseWriter, int, *RequestError)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := v.Validate(r)
			var reqErr *RequestError
			switch {
			case err == nil, errors.Is(err, ErrNoRoute):
				next.ServeHTTP(w, r)
			case errors.As(err, &reqErr):
				write(w, http.StatusBadRequest, reqErr)
			default:
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		})
	}
}

// collect walks kin-openapi's errors. MultiError is matched by type, not with
// errors.As: a body RequestError unwraps to the schema MultiError and would
// lose its location otherwise.
func collect(out *RequestError, err error) {
	if multi, ok := err.(openapi3.MultiError); ok {
		for _, item := range multi {
			collect(out, item)
		}
		return
	}

	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		prefix := ""
		switch {
		case reqErr.Parameter != nil:
			prefix = reqErr.Parameter.In + "/" + reqErr.Parameter.Name
		case reqErr.RequestBody != nil:
			prefix = "body"
		}
		if reqErr.Err == nil {
			out.add(prefix, reqErr.Reason)
			return
		}
		collectSchema(out, prefix, reqErr.Err)
		return
	}

	collectSchema(out, "", err)
}

func collectSchema(out *RequestError, prefix string, err error) {
	if multi, ok := err.(openapi3.MultiError); ok {
		for _, item := range multi {
			collectSchema(out, prefix, item)
		}
		return
	}

	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		key := prefix
		if pointer := schemaErr.JSONPointer(); len(pointer) > 0 {
			key = joinKey(prefix, strings.Join(pointer, "/"))
		}
		out.add(key, schemaErr.Reason)
		return
	}

	if prefix == "" {
		out.add("", err.Error())
		return
	}
	out.add(prefix, err.Error())
}

func joinKey(prefix, rest string) string {
	if prefix == "" {
		return rest
	}
	return prefix + "/" + rest
}
