// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubmed-mcp/internal/httputil"
	"github.com/pdiddy/pubmed-mcp/internal/pubmed"
	"github.com/pdiddy/pubmed-mcp/pkg/types"
)

// --- mock backend ---

type mockBackend struct {
	ids       []string
	searchErr error
	records   []types.ArticleRecord
	fetchErr  error

	terms      []string
	fetchedIDs [][]string
}

func (m *mockBackend) Search(_ context.Context, term string) ([]string, error) {
	m.terms = append(m.terms, term)
	return m.ids, m.searchErr
}

func (m *mockBackend) Fetch(_ context.Context, ids []string) ([]types.ArticleRecord, error) {
	m.fetchedIDs = append(m.fetchedIDs, ids)
	return m.records, m.fetchErr
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func bodyJSON(t *testing.T, o Outcome) string {
	t.Helper()
	data, err := json.Marshal(o.ResultSet())
	require.NoError(t, err)
	return string(data)
}

// --- ResolveQuery ---

func TestResolveQuery(t *testing.T) {
	tests := []struct {
		name    string
		params  url.Values
		body    string
		want    string
		wantErr error
	}{
		{"query parameter", url.Values{"query": {"cancer"}}, "", "cancer", nil},
		{"parameter wins over body", url.Values{"query": {"param"}}, `{"query":"body"}`, "param", nil},
		{"body only", nil, `{"query":"cancer"}`, "cancer", nil},
		{"empty parameter falls back to body", url.Values{"query": {""}}, `{"query":"cancer"}`, "cancer", nil},
		{"no parameter and empty body", nil, "", "", ErrInvalidBody},
		{"no parameter and malformed body", nil, `{"query":`, "", ErrInvalidBody},
		{"body is an array", nil, `["cancer"]`, "", ErrInvalidBody},
		{"body without query", nil, `{"term":"cancer"}`, "", ErrMissingQuery},
		{"body with empty query", nil, `{"query":""}`, "", ErrMissingQuery},
		{"body with non-string query", nil, `{"query":42}`, "", ErrMissingQuery},
		{"body is null", nil, `null`, "", ErrMissingQuery},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveQuery(tt.params, []byte(tt.body))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// --- Kind ---

func TestKindHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{OK, http.StatusOK},
		{ClientInput, http.StatusBadRequest},
		{UpstreamTransport, http.StatusBadGateway},
		{UpstreamStatus, http.StatusBadGateway},
		{ResponseParse, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.HTTPStatus())
		})
	}
	assert.Equal(t, "kind(99)", Kind(99).String())
}

// --- Handle / Run ---

func TestHandleMissingQueryMakesNoCalls(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"malformed body", "{"},
		{"no query field", `{"q":"x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockBackend{}
			o := NewHandler(m, quietLogger()).Handle(context.Background(), url.Values{}, []byte(tt.body))

			assert.Equal(t, ClientInput, o.Kind)
			assert.Equal(t, MissingQueryMessage, o.Message)
			assert.Empty(t, m.terms)
			assert.Empty(t, m.fetchedIDs)
		})
	}
}

func TestHandleQueryFromBody(t *testing.T) {
	m := &mockBackend{ids: []string{}}
	o := NewHandler(m, quietLogger()).Handle(context.Background(), url.Values{}, []byte(`{"query":"cancer"}`))

	assert.Equal(t, OK, o.Kind)
	assert.Equal(t, []string{"cancer"}, m.terms)
}

func TestRunEmptyIDsShortCircuits(t *testing.T) {
	m := &mockBackend{ids: []string{}}
	o := NewHandler(m, quietLogger()).Run(context.Background(), "nothing matches this")

	assert.Equal(t, OK, o.Kind)
	assert.Empty(t, m.fetchedIDs, "fetch must not run for an empty identifier list")
	assert.JSONEq(t, `{"results": []}`, bodyJSON(t, o))
}

func TestRunNilIDsShortCircuits(t *testing.T) {
	m := &mockBackend{}
	o := NewHandler(m, quietLogger()).Run(context.Background(), "x")

	assert.Equal(t, OK, o.Kind)
	assert.Empty(t, m.fetchedIDs)
	assert.JSONEq(t, `{"results": []}`, bodyJSON(t, o))
}

func TestRunPassesIDsToFetch(t *testing.T) {
	m := &mockBackend{
		ids:     []string{"9", "3", "7"},
		records: []types.ArticleRecord{{Title: types.StringPtr("T")}},
	}
	o := NewHandler(m, quietLogger()).Run(context.Background(), "x")

	require.Equal(t, OK, o.Kind)
	require.Len(t, m.fetchedIDs, 1)
	assert.Equal(t, []string{"9", "3", "7"}, m.fetchedIDs[0])
	assert.JSONEq(t, `{"results":[{"title":"T","abstract":null}]}`, bodyJSON(t, o))
}

func TestRunClassifiesErrors(t *testing.T) {
	tests := []struct {
		name      string
		searchErr error
		fetchErr  error
		wantKind  Kind
		wantMsg   string
	}{
		{
			name:      "search transport",
			searchErr: &httputil.TransportError{Err: errors.New("dial tcp: connection refused")},
			wantKind:  UpstreamTransport,
			wantMsg:   "Error contacting PubMed: dial tcp: connection refused",
		},
		{
			name:      "search status",
			searchErr: &httputil.StatusError{StatusCode: 500, Body: "Internal Server Error"},
			wantKind:  UpstreamStatus,
			wantMsg:   "Error from PubMed: Internal Server Error",
		},
		{
			name:      "search body not JSON",
			searchErr: &pubmed.ParseError{Stage: "esearch", Err: errors.New("invalid character")},
			wantKind:  ResponseParse,
			wantMsg:   "Error parsing PubMed response: invalid character",
		},
		{
			name:     "fetch transport",
			fetchErr: &httputil.TransportError{Err: errors.New("EOF")},
			wantKind: UpstreamTransport,
			wantMsg:  "Error contacting PubMed: EOF",
		},
		{
			name:     "fetch status",
			fetchErr: &httputil.StatusError{StatusCode: 400, Body: "bad id"},
			wantKind: UpstreamStatus,
			wantMsg:  "Error from PubMed: bad id",
		},
		{
			name:     "fetch parse wrapped",
			fetchErr: fmt.Errorf("fetching: %w", &pubmed.ParseError{Stage: "efetch", Err: errors.New("XML syntax error")}),
			wantKind: ResponseParse,
			wantMsg:  "Error parsing PubMed response: XML syntax error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockBackend{ids: []string{"1"}, searchErr: tt.searchErr, fetchErr: tt.fetchErr}
			o := NewHandler(m, quietLogger()).Run(context.Background(), "x")

			assert.Equal(t, tt.wantKind, o.Kind)
			assert.Equal(t, tt.wantMsg, o.Message)
			assert.True(t, o.Failed())
			assert.Nil(t, o.Results)
		})
	}
}

// --- end to end against an httptest E-utilities server ---

const fetchXML = `<?xml version="1.0"?>
<PubmedArticleSet>
  <PubmedArticle><MedlineCitation><Article>
    <ArticleTitle>A</ArticleTitle><Abstract><AbstractText>X</AbstractText></Abstract>
  </Article></MedlineCitation></PubmedArticle>
  <PubmedArticle><MedlineCitation><Article>
    <ArticleTitle>B</ArticleTitle><Abstract><AbstractText>Y</AbstractText></Abstract>
  </Article></MedlineCitation></PubmedArticle>
</PubmedArticleSet>`

func eutils(t *testing.T, searchBody, fetchBody string) (*httptest.Server, *[]string) {
	t.Helper()
	var calls []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)
		switch r.URL.Path {
		case "/esearch.fcgi":
			fmt.Fprint(w, searchBody)
		case "/efetch.fcgi":
			fmt.Fprint(w, fetchBody)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)
	return ts, &calls
}

func TestRunEndToEndOrderPreserved(t *testing.T) {
	ts, calls := eutils(t, `{"esearchresult":{"idlist":["1","2"]}}`, fetchXML)
	client := pubmed.NewClient(ts.Client(), types.PubMedConfig{BaseURL: ts.URL}, quietLogger())
	h := NewHandler(client, quietLogger())

	o := h.Run(context.Background(), "cancer")
	require.Equal(t, OK, o.Kind, o.Message)
	assert.JSONEq(t,
		`{"results":[{"title":"A","abstract":"X"},{"title":"B","abstract":"Y"}]}`,
		bodyJSON(t, o))
	assert.Equal(t, []string{"/esearch.fcgi", "/efetch.fcgi"}, *calls)
}

func TestRunEndToEndIdempotent(t *testing.T) {
	ts, _ := eutils(t, `{"esearchresult":{"idlist":["1","2"]}}`, fetchXML)
	client := pubmed.NewClient(ts.Client(), types.PubMedConfig{BaseURL: ts.URL}, quietLogger())
	h := NewHandler(client, quietLogger())

	first := h.Run(context.Background(), "cancer")
	second := h.Run(context.Background(), "cancer")
	assert.Equal(t, bodyJSON(t, first), bodyJSON(t, second))
}

func TestRunEndToEndMalformedXML(t *testing.T) {
	ts, _ := eutils(t, `{"esearchresult":{"idlist":["1"]}}`, `<PubmedArticleSet><PubmedArticle>`)
	client := pubmed.NewClient(ts.Client(), types.PubMedConfig{BaseURL: ts.URL}, quietLogger())

	o := NewHandler(client, quietLogger()).Run(context.Background(), "cancer")
	assert.Equal(t, ResponseParse, o.Kind)
	assert.Equal(t, http.StatusInternalServerError, o.Kind.HTTPStatus())
	assert.Contains(t, o.Message, "Error parsing PubMed response: ")
}
