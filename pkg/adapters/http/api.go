package http

import (
	"fmt"
	"net/http"

	"github.com/aretw0/arttic/api"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ActionName is an intent accepted by POST /actions/{action}.
type ActionName string

const (
	ActionLoadModel     ActionName = "load_model"
	ActionUnloadModel   ActionName = "unload_model"
	ActionGenerate      ActionName = "generate"
	ActionClearCache    ActionName = "clear_cache"
	ActionRandomizeSeed ActionName = "randomize_seed"
)

// SubscribeEventsParams are the query parameters of GET /events.
type SubscribeEventsParams struct {
	Watch *string `form:"watch,omitempty" json:"watch,omitempty"`
}

// ServerInterface is one handler per operation of api/openapi.yaml.
type ServerInterface interface {
	GetHealth(w http.ResponseWriter, r *http.Request)
	GetInfo(w http.ResponseWriter, r *http.Request)
	GetState(w http.ResponseWriter, r *http.Request)
	GetNodes(w http.ResponseWriter, r *http.Request)
	GetNotifications(w http.ResponseWriter, r *http.Request)
	GetGallery(w http.ResponseWriter, r *http.Request)
	SubscribeEvents(w http.ResponseWriter, r *http.Request, params SubscribeEventsParams)
	PutParams(w http.ResponseWriter, r *http.Request)
	PostAction(w http.ResponseWriter, r *http.Request, action ActionName)
}

// LoadSpec parses and validates the embedded OpenAPI document.
func LoadSpec() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(api.OpenAPI)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return doc, nil
}

// MustLoadSpec is LoadSpec for the embedded document, which is covered by
// tests.
func MustLoadSpec() *openapi3.T {
	doc, err := LoadSpec()
	if err != nil {
		panic(err)
	}
	return doc
}

// ServerInterfaceWrapper validates each request against the document, binds
// its parameters and calls the handler.
type ServerInterfaceWrapper struct {
	Handler          ServerInterface
	Spec             *openapi3.T
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// RequestError reports a request that does not match the document.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string { return e.Err.Error() }
func (e *RequestError) Unwrap() error { return e.Err }

func (siw *ServerInterfaceWrapper) validate(w http.ResponseWriter, r *http.Request, path string, pathParams map[string]string) bool {
	item := siw.Spec.Paths.Value(path)
	if item == nil {
		siw.ErrorHandlerFunc(w, r, &RequestError{Err: fmt.Errorf("path %s is not in the document", path)})
		return false
	}
	input := &openapi3filter.RequestValidationInput{
		Request:    r,
		PathParams: pathParams,
		Route: &routers.Route{
			Spec:      siw.Spec,
			Path:      path,
			PathItem:  item,
			Method:    r.Method,
			Operation: item.GetOperation(r.Method),
		},
		Options: &openapi3filter.Options{MultiError: true},
	}
	if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
		siw.ErrorHandlerFunc(w, r, &RequestError{Err: err})
		return false
	}
	return true
}

func (siw *ServerInterfaceWrapper) plain(path string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if siw.validate(w, r, path, nil) {
			h(w, r)
		}
	}
}

func (siw *ServerInterfaceWrapper) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	if !siw.validate(w, r, "/events", nil) {
		return
	}
	var params SubscribeEventsParams
	if err := runtime.BindQueryParameter("form", true, false, "watch", r.URL.Query(), &params.Watch); err != nil {
		siw.ErrorHandlerFunc(w, r, &RequestError{Err: fmt.Errorf("invalid format for parameter watch: %w", err)})
		return
	}
	siw.Handler.SubscribeEvents(w, r, params)
}

func (siw *ServerInterfaceWrapper) PostAction(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "action")
	if !siw.validate(w, r, "/actions/{action}", map[string]string{"action": raw}) {
		return
	}
	var action ActionName
	err := runtime.BindStyledParameterWithOptions("simple", "action", raw, &action,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &RequestError{Err: fmt.Errorf("invalid format for parameter action: %w", err)})
		return
	}
	siw.Handler.PostAction(w, r, action)
}

// HandlerFromMux registers every operation of si on r.
func HandlerFromMux(si ServerInterface, spec *openapi3.T, r chi.Router, onError func(w http.ResponseWriter, r *http.Request, err error)) http.Handler {
	siw := &ServerInterfaceWrapper{Handler: si, Spec: spec, ErrorHandlerFunc: onError}

	r.Get("/health", siw.plain("/health", si.GetHealth))
	r.Get("/info", siw.plain("/info", si.GetInfo))
	r.Get("/state", siw.plain("/state", si.GetState))
	r.Get("/nodes", siw.plain("/nodes", si.GetNodes))
	r.Get("/notifications", siw.plain("/notifications", si.GetNotifications))
	r.Get("/gallery", siw.plain("/gallery", si.GetGallery))
	r.Get("/events", siw.SubscribeEvents)
	r.Put("/params", siw.plain("/params", si.PutParams))
	r.Post("/actions/{action}", siw.PostAction)
	return r
}
