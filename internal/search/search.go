// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search runs a PubMed query end to end: resolve the query, look up
// identifiers, fetch and parse the articles, and report a tagged Outcome that
// the HTTP and CLI surfaces render.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/pubmed-mcp/internal/httputil"
	"github.com/pdiddy/pubmed-mcp/internal/logging"
	"github.com/pdiddy/pubmed-mcp/internal/metrics"
	"github.com/pdiddy/pubmed-mcp/internal/pubmed"
	"github.com/pdiddy/pubmed-mcp/pkg/types"
)

// MissingQueryMessage is the body returned when no query can be resolved.
const MissingQueryMessage = "Missing search query."

var (
	// ErrMissingQuery is returned by ResolveQuery when neither the parameters
	// nor the body carry a query.
	ErrMissingQuery = errors.New("missing search query")

	// ErrInvalidBody is returned by ResolveQuery when the parameters carry no
	// query and the body is not JSON.
	ErrInvalidBody = errors.New("invalid request body")
)

// Backend is the upstream literature database. *pubmed.Client implements it.
type Backend interface {
	Search(ctx context.Context, term string) ([]string, error)
	Fetch(ctx context.Context, ids []string) ([]types.ArticleRecord, error)
}

// Kind tags how a search ended.
type Kind int

const (
	// OK means the search finished, possibly with no results.
	OK Kind = iota
	// ClientInput means no query could be resolved from the request.
	ClientInput
	// UpstreamTransport means PubMed could not be reached.
	UpstreamTransport
	// UpstreamStatus means PubMed answered with a non-200 status.
	UpstreamStatus
	// ResponseParse means a PubMed response body could not be decoded.
	ResponseParse
)

var kindNames = map[Kind]string{
	OK:                "ok",
	ClientInput:       "client_input_error",
	UpstreamTransport: "upstream_transport_error",
	UpstreamStatus:    "upstream_status_error",
	ResponseParse:     "response_parse_error",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// HTTPStatus maps k to the status code sent to the caller.
func (k Kind) HTTPStatus() int {
	switch k {
	case OK:
		return http.StatusOK
	case ClientInput:
		return http.StatusBadRequest
	case UpstreamTransport, UpstreamStatus:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Outcome is the result of one search. Results is set only when Kind is OK;
// Message is set only for failures and is the text shown to the caller.
type Outcome struct {
	Kind    Kind
	Results []types.ArticleRecord
	Message string
}

// Failed reports whether the outcome is an error.
func (o Outcome) Failed() bool { return o.Kind != OK }

// ResultSet returns the success body. It is never nil-valued.
func (o Outcome) ResultSet() types.ResultSet { return types.NewResultSet(o.Results) }

// ResolveQuery reads the query from the "query" parameter, falling back to the
// "query" field of a JSON object body. It fails with ErrInvalidBody or
// ErrMissingQuery; both mean a client error.
func ResolveQuery(params url.Values, body []byte) (string, error) {
	if q := params.Get("query"); q != "" {
		return q, nil
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	q, _ := payload["query"].(string)
	if q == "" {
		return "", ErrMissingQuery
	}
	return q, nil
}

// Handler runs searches against a Backend. It holds no per-request state and
// may serve concurrent requests.
type Handler struct {
	backend Backend
	logger  *logrus.Logger
}

// NewHandler returns a Handler backed by backend.
func NewHandler(backend Backend, logger *logrus.Logger) *Handler {
	return &Handler{backend: backend, logger: logger}
}

// Handle resolves the query from params and body, then runs it.
func (h *Handler) Handle(ctx context.Context, params url.Values, body []byte) Outcome {
	log := logging.Entry(ctx, h.logger)
	log.Info("Received search request")

	query, err := ResolveQuery(params, body)
	if err != nil {
		if errors.Is(err, ErrInvalidBody) {
			log.WithError(err).Error("Error parsing request body")
		} else {
			log.Warn("No search query provided")
		}
		return finish(Outcome{Kind: ClientInput, Message: MissingQueryMessage})
	}
	return h.Run(ctx, query)
}

// Run searches for query and fetches the matching articles. An empty
// identifier list ends the search with no results and no fetch.
func (h *Handler) Run(ctx context.Context, query string) Outcome {
	log := logging.Entry(ctx, h.logger).WithField("query", query)

	if query == "" {
		log.Warn("No search query provided")
		return finish(Outcome{Kind: ClientInput, Message: MissingQueryMessage})
	}

	ids, err := h.backend.Search(ctx, query)
	if err != nil {
		return finish(classify(err))
	}
	if len(ids) == 0 {
		log.Info("No articles found for query")
		return finish(Outcome{Kind: OK, Results: []types.ArticleRecord{}})
	}

	records, err := h.backend.Fetch(ctx, ids)
	if err != nil {
		return finish(classify(err))
	}

	log.WithField("count", len(records)).Info("Returning articles")
	return finish(Outcome{Kind: OK, Results: records})
}

// classify turns a backend error into a failed Outcome.
func classify(err error) Outcome {
	var te *httputil.TransportError
	var se *httputil.StatusError
	var pe *pubmed.ParseError

	switch {
	case errors.As(err, &te):
		return Outcome{Kind: UpstreamTransport, Message: "Error contacting PubMed: " + te.Error()}
	case errors.As(err, &se):
		return Outcome{Kind: UpstreamStatus, Message: "Error from PubMed: " + se.Body}
	case errors.As(err, &pe):
		return Outcome{Kind: ResponseParse, Message: "Error parsing PubMed response: " + pe.Error()}
	default:
		return Outcome{Kind: ResponseParse, Message: "Error parsing PubMed response: " + err.Error()}
	}
}

func finish(o Outcome) Outcome {
	metrics.SearchOutcomesTotal.WithLabelValues(o.Kind.String()).Inc()
	return o
}
