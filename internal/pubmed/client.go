// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pubmed talks to the NCBI E-utilities API: esearch maps a free-text
// term to PubMed identifiers and efetch returns the article XML for them.
package pubmed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/pubmed-mcp/internal/httputil"
	"github.com/pdiddy/pubmed-mcp/internal/logging"
	"github.com/pdiddy/pubmed-mcp/internal/metrics"
	"github.com/pdiddy/pubmed-mcp/pkg/types"
)

// DefaultBaseURL is the public E-utilities root.
const DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

const (
	database   = "pubmed"
	maxResults = 5

	stageSearch = "esearch"
	stageFetch  = "efetch"
)

// ParseError reports an upstream body that could not be decoded.
type ParseError struct {
	Stage string
	Err   error
}

func (e *ParseError) Error() string { return e.Err.Error() }

func (e *ParseError) Unwrap() error { return e.Err }

// Client queries esearch and efetch. It is safe for concurrent use; the
// configuration is copied at construction and never mutated.
type Client struct {
	httpClient *http.Client
	cfg        types.PubMedConfig
	logger     *logrus.Logger
}

// NewClient returns a Client. A nil httpClient gets one with cfg.Timeout.
func NewClient(httpClient *http.Client, cfg types.PubMedConfig, logger *logrus.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{httpClient: httpClient, cfg: cfg, logger: logger}
}

// Search runs esearch for term and returns up to five PubMed identifiers in
// the order NCBI ranked them. A response without esearchresult.idlist yields
// an empty list.
func (c *Client) Search(ctx context.Context, term string) ([]string, error) {
	params := c.baseParams()
	params.Set("term", term)
	params.Set("retmax", strconv.Itoa(maxResults))
	params.Set("retmode", "json")

	body, err := c.get(ctx, stageSearch, params)
	if err != nil {
		return nil, err
	}

	var resp esearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ParseError{Stage: stageSearch, Err: err}
	}

	ids := resp.Result.IDList
	if ids == nil {
		ids = []string{}
	}
	logging.Entry(ctx, c.logger).WithField("ids", ids).Info("PubMed ID list")
	return ids, nil
}

// Fetch runs efetch for ids and parses the returned PubmedArticleSet.
func (c *Client) Fetch(ctx context.Context, ids []string) ([]types.ArticleRecord, error) {
	params := c.baseParams()
	params.Set("id", strings.Join(ids, ","))
	params.Set("retmode", "xml")

	body, err := c.get(ctx, stageFetch, params)
	if err != nil {
		return nil, err
	}

	records, err := ParseArticles(body)
	if err != nil {
		return nil, &ParseError{Stage: stageFetch, Err: err}
	}
	return records, nil
}

// baseParams returns the parameters common to every call. Empty credentials
// are left out rather than sent blank.
func (c *Client) baseParams() url.Values {
	params := url.Values{"db": {database}}
	if c.cfg.APIKey != "" {
		params.Set("api_key", c.cfg.APIKey)
	}
	if c.cfg.Email != "" {
		params.Set("email", c.cfg.Email)
	}
	return params
}

func (c *Client) get(ctx context.Context, stage string, params url.Values) ([]byte, error) {
	endpoint := c.cfg.BaseURL + "/" + stage + ".fcgi"

	log := logging.Entry(ctx, c.logger)
	log.WithFields(logrus.Fields{
		"stage":  stage,
		"params": redact(params),
	}).Info("Sending request to PubMed")

	start := time.Now()
	body, err := httputil.Get(ctx, c.httpClient, endpoint, params, c.cfg.UserAgent)
	took := time.Since(start)

	var te *httputil.TransportError
	var se *httputil.StatusError
	switch {
	case errors.As(err, &te):
		metrics.ObserveUpstream(stage, "transport_error", took)
		log.WithError(err).WithField("stage", stage).Error("Exception during PubMed request")
	case errors.As(err, &se):
		metrics.ObserveUpstream(stage, "status_error", took)
		log.WithFields(logrus.Fields{
			"stage":       stage,
			"status_code": se.StatusCode,
			"body":        se.Body,
		}).Error("Error from PubMed")
	case err == nil:
		metrics.ObserveUpstream(stage, "ok", took)
		log.WithFields(logrus.Fields{
			"stage":         stage,
			"response_size": len(body),
			"took":          took,
		}).Info("PubMed response received")
		log.WithField("body", string(body)).Debug("PubMed response text")
	}
	return body, err
}

// redact copies params with the API key masked for logging.
func redact(params url.Values) url.Values {
	out := make(url.Values, len(params))
	for k, v := range params {
		out[k] = v
	}
	if out.Get("api_key") != "" {
		out.Set("api_key", "***")
	}
	return out
}

// esearch JSON structures.
type esearchResponse struct {
	Result esearchResult `json:"esearchresult"`
}

type esearchResult struct {
	Count  string   `json:"count"`
	IDList []string `json:"idlist"`
}
