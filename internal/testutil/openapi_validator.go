package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/stretchr/testify/require"
)

// uncheckedPaths are served outside the contract or as plain text.
var uncheckedPaths = map[string]bool{
	"/healthz":          true,
	"/readyz":           true,
	"/docs":             true,
	"/api/openapi.yaml": true,
}

// OpenAPIValidator checks API responses against the incidents contract.
type OpenAPIValidator struct {
	router routers.Router
}

// NewOpenAPIValidator builds a validator from an OpenAPI document.
func NewOpenAPIValidator(t *testing.T, document []byte) *OpenAPIValidator {
	t.Helper()

	v, err := LoadOpenAPIValidator(document)
	require.NoError(t, err)
	return v
}

// LoadOpenAPIValidator is NewOpenAPIValidator for TestMain.
func LoadOpenAPIValidator(document []byte) (*OpenAPIValidator, error) {
	doc, err := openapi3.NewLoader().LoadFromData(document)
	if err != nil {
		return nil, fmt.Errorf("parse openapi document: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}

	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}
	return &OpenAPIValidator{router: router}, nil
}

// Check validates the status, headers and body of resp against the operation
// req maps to. resp.Body is replaced by an unread copy.
func (v *OpenAPIValidator) Check(req *http.Request, resp *http.Response) error {
	if uncheckedPaths[req.URL.Path] {
		return nil
	}

	// Routes are matched on method and path; the client's host is not in the
	// document's server list.
	routeReq, err := http.NewRequest(req.Method, req.URL.Path, nil)
	if err != nil {
		return err
	}
	route, pathParams, err := v.router.FindRoute(routeReq)
	if err != nil {
		return fmt.Errorf("%s %s is not in the contract: %w", req.Method, req.URL.Path, err)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	_ = resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))

	err = openapi3filter.ValidateResponse(context.Background(), &openapi3filter.ResponseValidationInput{
		RequestValidationInput: &openapi3filter.RequestValidationInput{
			Request:    req,
			PathParams: pathParams,
			Route:      route,
		},
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   io.NopCloser(bytes.NewReader(body)),
		Options: &openapi3filter.Options{
			MultiError:            true,
			IncludeResponseStatus: true,
		},
	})
	if err != nil {
		return fmt.Errorf("%s %s returned %d off contract: %s; body: %s",
			req.Method, req.URL.Path, resp.StatusCode, abbreviate(err.Error(), 500), abbreviate(string(body), 200))
	}
	return nil
}

// ValidateResponse reports a contract violation as a test error.
func (v *OpenAPIValidator) ValidateResponse(t *testing.T, req *http.Request, resp *http.Response) {
	t.Helper()
	if err := v.Check(req, resp); err != nil {
		t.Error(err)
	}
}

func abbreviate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
