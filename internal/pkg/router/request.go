package router

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/satriajati/gerbang/internal/pkg/goerror"
)

// Request wraps *http.Request with decoding helpers for handlers.
type Request struct {
	*http.Request
}

// Context returns the context of the underlying request.
func (r *Request) Context() context.Context {
	return r.Request.Context()
}

// DecodeBody decodes the JSON request body into v.
func (r *Request) DecodeBody(v any) error {
	if err := json.NewDecoder(r.Request.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return goerror.NewInvalidFormat("request body is empty")
		}
		return goerror.NewInvalidFormat("request body is not valid json")
	}
	return nil
}

// GetParam returns a named path parameter.
func (r *Request) GetParam(name string) string {
	return httprouter.ParamsFromContext(r.Request.Context()).ByName(name)
}

// GetQuery returns a query string value.
func (r *Request) GetQuery(name string) string {
	return r.Request.URL.Query().Get(name)
}

// BearerToken returns the token part of an Authorization: Bearer header.
func (r *Request) BearerToken() string {
	return bearerToken(r.Request.Header.Get("Authorization"))
}
