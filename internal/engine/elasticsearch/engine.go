package elasticsearch

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/bazaarlabs/catalog-search/internal/domain"
	"github.com/bazaarlabs/catalog-search/internal/engine"
)

// Config holds the connection settings for the search backend.
type Config struct {
	// URL is the backend endpoint.
	URL string
	// Index is the index name; DefaultIndexName when empty.
	Index string
	// Username and Password enable basic auth when both are set. When absent
	// the connection is unauthenticated (self-hosted / non-production).
	Username string
	Password string
	// InsecureSkipTLSVerify relaxes certificate checking for development
	// endpoints with self-signed certificates.
	InsecureSkipTLSVerify bool
}

// Engine is an Elasticsearch-backed implementation of engine.SearchEngine.
type Engine struct {
	client    *elasticsearch.Client
	indexName string
	logger    *slog.Logger
}

// esSearchResponse decodes search responses.
type esSearchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source domain.Document `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// esCountResponse decodes _count responses.
type esCountResponse struct {
	Count int `json:"count"`
}

// esBulkResponse decodes bulk responses, including per-item errors.
type esBulkResponse struct {
	Errors bool `json:"errors"`
	Items  []struct {
		Index struct {
			ID     string `json:"_id"`
			Status int    `json:"status"`
			Error  struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"index"`
	} `json:"items"`
}

// esErrorResponse decodes backend error bodies.
type esErrorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
	Status int `json:"status"`
}

// New creates the engine and verifies backend liveness with a ping. A dead
// or unauthenticated backend fails here, not on first use.
func New(cfg Config, logger *slog.Logger) (*Engine, error) {
	indexName := cfg.Index
	if indexName == "" {
		indexName = DefaultIndexName
	}

	esCfg := elasticsearch.Config{
		Addresses: []string{cfg.URL},
	}
	if cfg.Username != "" && cfg.Password != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}
	if cfg.InsecureSkipTLSVerify {
		esCfg.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("create client: %w: %w", engine.ErrConnection, err)
	}

	e := &Engine{
		client:    client,
		indexName: indexName,
		logger:    logger,
	}

	if err := e.Ping(context.Background()); err != nil {
		return nil, err
	}

	logger.Info("connected to search backend",
		slog.String("url", cfg.URL),
		slog.String("index", indexName),
	)
	return e, nil
}

// Ping checks whether the backend is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	res, err := e.client.Ping(e.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping: %w: %w", engine.ErrConnection, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("ping: %w: unexpected status %s", engine.ErrConnection, res.Status())
	}
	return nil
}

// Rebuild deletes the index if present and recreates it with the product
// schema. A deletion or creation failure aborts immediately; a failure
// between the two steps leaves no index, which fails closed.
func (e *Engine) Rebuild(ctx context.Context) error {
	existsRes, err := e.client.Indices.Exists(
		[]string{e.indexName},
		e.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("check index %q exists: %w: %w", e.indexName, engine.ErrIndex, err)
	}
	_ = existsRes.Body.Close()

	// HEAD answers only 200 or 404; anything else is a backend failure, not
	// an absent index.
	if existsRes.StatusCode != http.StatusOK && existsRes.StatusCode != http.StatusNotFound {
		return fmt.Errorf("check index %q exists: %w: unexpected status %s", e.indexName, engine.ErrIndex, existsRes.Status())
	}

	if existsRes.StatusCode == http.StatusOK {
		delRes, err := e.client.Indices.Delete(
			[]string{e.indexName},
			e.client.Indices.Delete.WithContext(ctx),
		)
		if err != nil {
			return fmt.Errorf("delete index %q: %w: %w", e.indexName, engine.ErrIndex, err)
		}
		defer func() { _ = delRes.Body.Close() }()

		if delRes.IsError() {
			return fmt.Errorf("delete index %q: %w: %s", e.indexName, engine.ErrIndex, e.decodeError(delRes.Body, delRes.Status()))
		}
		e.logger.Info("deleted existing index", slog.String("index", e.indexName))
	}

	createRes, err := e.client.Indices.Create(
		e.indexName,
		e.client.Indices.Create.WithBody(strings.NewReader(buildIndexMapping())),
		e.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index %q: %w: %w", e.indexName, engine.ErrIndex, err)
	}
	defer func() { _ = createRes.Body.Close() }()

	if createRes.IsError() {
		return fmt.Errorf("create index %q: %w: %s", e.indexName, engine.ErrIndex, e.decodeError(createRes.Body, createRes.Status()))
	}

	e.logger.Info("created index with product schema", slog.String("index", e.indexName))
	return nil
}

// BulkIndex writes all documents in one NDJSON batch with refresh=true so a
// search issued right after observes them. Any item-level failure fails the
// whole call; the caller redoes the rebuild wholesale.
func (e *Engine) BulkIndex(ctx context.Context, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for i := range docs {
		action := map[string]any{
			"index": map[string]any{
				"_index": e.indexName,
				"_id":    docs[i].ID,
			},
		}
		if err := json.NewEncoder(&buf).Encode(action); err != nil {
			return fmt.Errorf("bulk index %q: encode action: %w: %w", e.indexName, engine.ErrLoad, err)
		}
		if err := json.NewEncoder(&buf).Encode(docs[i]); err != nil {
			return fmt.Errorf("bulk index %q: encode document: %w: %w", e.indexName, engine.ErrLoad, err)
		}
	}

	res, err := e.client.Bulk(
		bytes.NewReader(buf.Bytes()),
		e.client.Bulk.WithIndex(e.indexName),
		e.client.Bulk.WithRefresh("true"),
		e.client.Bulk.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("bulk index %q: %w: %w", e.indexName, engine.ErrLoad, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("bulk index %q: %w: %s", e.indexName, engine.ErrLoad, e.decodeError(res.Body, res.Status()))
	}

	var bulkResp esBulkResponse
	if err := json.NewDecoder(res.Body).Decode(&bulkResp); err != nil {
		return fmt.Errorf("bulk index %q: decode response: %w: %w", e.indexName, engine.ErrLoad, err)
	}

	if bulkResp.Errors {
		var itemErrs []string
		for _, item := range bulkResp.Items {
			if item.Index.Error.Type != "" {
				itemErrs = append(itemErrs, fmt.Sprintf("id=%s: %s: %s", item.Index.ID, item.Index.Error.Type, item.Index.Error.Reason))
			}
		}
		return fmt.Errorf("bulk index %q: %w: item failures: %s", e.indexName, engine.ErrLoad, strings.Join(itemErrs, "; "))
	}

	e.logger.Info("bulk indexed documents",
		slog.String("index", e.indexName),
		slog.Int("count", len(docs)),
	)
	return nil
}

// Search runs a weighted fuzzy multi_match over name, description, and tags
// and returns hits in relevance order. The hit order is never re-sorted.
func (e *Engine) Search(ctx context.Context, keyword string) ([]domain.Document, error) {
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     keyword,
				"fields":    []string{"name^2", "description", "tags"},
				"fuzziness": "AUTO",
			},
		},
		"size": maxResults,
	}

	data, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("search %q: marshal query: %w: %w", e.indexName, engine.ErrSearch, err)
	}

	res, err := e.client.Search(
		e.client.Search.WithIndex(e.indexName),
		e.client.Search.WithBody(bytes.NewReader(data)),
		e.client.Search.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w: %w", e.indexName, engine.ErrSearch, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		// A missing index is an index-state problem, not a query problem.
		if res.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("search %q: index does not exist: %w", e.indexName, engine.ErrIndex)
		}
		return nil, fmt.Errorf("search %q: %w: %s", e.indexName, engine.ErrSearch, e.decodeError(res.Body, res.Status()))
	}

	var esResp esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, fmt.Errorf("search %q: %w: %w", e.indexName, engine.ErrMalformedResponse, err)
	}

	docs := make([]domain.Document, 0, len(esResp.Hits.Hits))
	for _, hit := range esResp.Hits.Hits {
		docs = append(docs, hit.Source)
	}
	return docs, nil
}

// State reports the index lifecycle state and its document count.
func (e *Engine) State(ctx context.Context) (engine.IndexState, int, error) {
	existsRes, err := e.client.Indices.Exists(
		[]string{e.indexName},
		e.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return engine.StateAbsent, 0, fmt.Errorf("check index %q exists: %w: %w", e.indexName, engine.ErrIndex, err)
	}
	_ = existsRes.Body.Close()

	switch existsRes.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return engine.StateAbsent, 0, nil
	default:
		return engine.StateAbsent, 0, fmt.Errorf("check index %q exists: %w: unexpected status %s", e.indexName, engine.ErrIndex, existsRes.Status())
	}

	countRes, err := e.client.Count(
		e.client.Count.WithIndex(e.indexName),
		e.client.Count.WithContext(ctx),
	)
	if err != nil {
		return engine.StateAbsent, 0, fmt.Errorf("count index %q: %w: %w", e.indexName, engine.ErrIndex, err)
	}
	defer func() { _ = countRes.Body.Close() }()

	if countRes.IsError() {
		return engine.StateAbsent, 0, fmt.Errorf("count index %q: %w: %s", e.indexName, engine.ErrIndex, e.decodeError(countRes.Body, countRes.Status()))
	}

	var count esCountResponse
	if err := json.NewDecoder(countRes.Body).Decode(&count); err != nil {
		return engine.StateAbsent, 0, fmt.Errorf("count index %q: %w: %w", e.indexName, engine.ErrMalformedResponse, err)
	}

	if count.Count == 0 {
		return engine.StateEmpty, 0, nil
	}
	return engine.StateReady, count.Count, nil
}

// decodeError extracts the backend's diagnostic message from an error body,
// falling back to the HTTP status line.
func (e *Engine) decodeError(body io.Reader, status string) string {
	var errResp esErrorResponse
	if err := json.NewDecoder(body).Decode(&errResp); err == nil && errResp.Error.Type != "" {
		return fmt.Sprintf("%s: %s", errResp.Error.Type, errResp.Error.Reason)
	}
	return "unexpected status " + status
}
