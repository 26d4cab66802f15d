package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/utafrali/catalogsearch/internal/domain"
	"github.com/utafrali/catalogsearch/internal/scoring"
	"github.com/utafrali/catalogsearch/internal/synonym"
)

// Config holds the connection settings of the remote engine.
type Config struct {
	URL       string
	IndexName string
	// Transport overrides the HTTP transport, mainly for tests.
	Transport http.RoundTripper
}

// Engine is an Elasticsearch-backed implementation of the SearchEngine
// interface. Query construction stays inside this package; callers only see
// domain shapes.
type Engine struct {
	client    *elasticsearch.Client
	indexName string
	expander  *synonym.Expander
	logger    *slog.Logger
}

// document is the indexed form of a product: the product itself plus the
// derived fields queries and aggregations run on.
type document struct {
	domain.Product
	MainCategory  string   `json:"mainCategory"`
	AnyCOD        bool     `json:"anyCod"`
	CODLocations  []string `json:"codLocations"`
	Position      int      `json:"position"`
	BrandTerm     string   `json:"brandTerm"`
	CategoryTerms []string `json:"categoryTerms"`
	KeywordTerms  []string `json:"keywordTerms"`
}

func newDocument(p *domain.Product, position int) document {
	doc := document{
		Product:      *p,
		MainCategory: p.MainCategory(),
		AnyCOD:       p.AnyCOD(),
		CODLocations: []string{},
		Position:     position,
		BrandTerm:    scoring.Normalize(p.Brand),
	}
	for name, info := range p.LocationData {
		if info.COD {
			doc.CODLocations = append(doc.CODLocations, name)
		}
	}
	for _, segment := range strings.Split(p.Category, domain.CategorySeparator) {
		if n := scoring.Normalize(segment); n != "" {
			doc.CategoryTerms = append(doc.CategoryTerms, n)
		}
	}
	for _, kw := range append(append([]string{}, p.SearchKeywords...), p.Tags...) {
		if n := scoring.Normalize(kw); n != "" {
			doc.KeywordTerms = append(doc.KeywordTerms, n)
		}
	}
	return doc
}

type esHit struct {
	ID     string   `json:"_id"`
	Score  float64  `json:"_score"`
	Source document `json:"_source"`
}

// esSearchResponse is the structure used to decode Elasticsearch search responses.
type esSearchResponse struct {
	Took int `json:"took"`
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []esHit `json:"hits"`
	} `json:"hits"`
	Aggregations json.RawMessage `json:"aggregations"`
}

// esGetResponse is the structure used to decode Elasticsearch get responses.
type esGetResponse struct {
	Found  bool     `json:"found"`
	Source document `json:"_source"`
}

// esBulkResponse is the structure used to decode Elasticsearch bulk responses.
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

// esErrorResponse is used to decode Elasticsearch error responses.
type esErrorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
	Status int `json:"status"`
}

// New creates an Elasticsearch engine and makes sure the catalog index exists.
// If IndexName is empty, DefaultIndexName is used; a nil expander means the
// built-in synonym table.
func New(ctx context.Context, cfg Config, expander *synonym.Expander, logger *slog.Logger) (*Engine, error) {
	if cfg.IndexName == "" {
		cfg.IndexName = DefaultIndexName
	}
	if expander == nil {
		expander = synonym.Default()
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: failed to create client: %w", err)
	}

	e := &Engine{
		client:    client,
		indexName: cfg.IndexName,
		expander:  expander,
		logger:    logger,
	}

	if err := e.ensureIndex(ctx); err != nil {
		return nil, fmt.Errorf("elasticsearch: failed to ensure index: %w", err)
	}
	return e, nil
}

// IndexName returns the name of the catalog index.
func (e *Engine) IndexName() string {
	return e.indexName
}

// Ping checks whether the Elasticsearch cluster is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	res, err := e.client.Ping(e.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: unexpected status %s", res.Status())
	}
	return nil
}

// ensureIndex checks whether the catalog index exists and creates it if not.
func (e *Engine) ensureIndex(ctx context.Context) error {
	res, err := e.client.Indices.Exists([]string{e.indexName}, e.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index exists: %w", err)
	}
	_ = res.Body.Close()

	if res.StatusCode == http.StatusOK {
		e.logger.Info("elasticsearch index already exists", "index", e.indexName)
		return nil
	}
	return e.createIndex(ctx)
}

func (e *Engine) createIndex(ctx context.Context) error {
	res, err := e.client.Indices.Create(
		e.indexName,
		e.client.Indices.Create.WithBody(strings.NewReader(buildIndexMapping(e.expander.Groups()))),
		e.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return responseError("create index", res)
	}

	e.logger.Info("elasticsearch index created", "index", e.indexName)
	return nil
}

// DeleteIndex removes the catalog index. A 404 response is treated as
// success.
func (e *Engine) DeleteIndex(ctx context.Context) error {
	res, err := e.client.Indices.Delete(
		[]string{e.indexName},
		e.client.Indices.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch delete index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("elasticsearch delete index", res)
	}

	e.logger.Info("elasticsearch index deleted", "index", e.indexName)
	return nil
}

// Reindex drops the catalog index, recreates it with the current synonym
// table and bulk indexes products in catalog order.
func (e *Engine) Reindex(ctx context.Context, products []domain.Product) error {
	if err := e.DeleteIndex(ctx); err != nil {
		return err
	}
	if err := e.createIndex(ctx); err != nil {
		return fmt.Errorf("elasticsearch reindex: %w", err)
	}
	return e.BulkIndex(ctx, products)
}

// BulkIndex adds or updates products using the bulk NDJSON API. The position
// of each product in the slice is stored so that ties sort in catalog order.
func (e *Engine) BulkIndex(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)

	for i := range products {
		action := map[string]interface{}{
			"index": map[string]interface{}{
				"_index": e.indexName,
				"_id":    products[i].ID,
			},
		}
		if err := enc.Encode(action); err != nil {
			return fmt.Errorf("elasticsearch bulk index: encode action: %w", err)
		}
		if err := enc.Encode(newDocument(&products[i], i)); err != nil {
			return fmt.Errorf("elasticsearch bulk index: encode document: %w", err)
		}
	}

	res, err := e.client.Bulk(
		bytes.NewReader(buf.Bytes()),
		e.client.Bulk.WithIndex(e.indexName),
		e.client.Bulk.WithRefresh("true"),
		e.client.Bulk.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch bulk index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return responseError("elasticsearch bulk index", res)
	}

	var bulkResp esBulkResponse
	if err := json.NewDecoder(res.Body).Decode(&bulkResp); err != nil {
		return fmt.Errorf("elasticsearch bulk index: decode response: %w", err)
	}

	if bulkResp.Errors {
		var errMsgs []string
		for _, item := range bulkResp.Items {
			if item.Index.Error.Type != "" {
				errMsgs = append(errMsgs, fmt.Sprintf("id=%s: %s: %s", item.Index.ID, item.Index.Error.Type, item.Index.Error.Reason))
			}
		}
		return fmt.Errorf("elasticsearch bulk index: partial errors: %s", strings.Join(errMsgs, "; "))
	}

	e.logger.Info("bulk indexed products", "count", len(products), "index", e.indexName)
	return nil
}

// search runs body against the catalog index.
func (e *Engine) search(ctx context.Context, op string, body map[string]interface{}) (*esSearchResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch %s: marshal query: %w", op, err)
	}

	start := time.Now()
	res, err := e.client.Search(
		e.client.Search.WithIndex(e.indexName),
		e.client.Search.WithBody(bytes.NewReader(data)),
		e.client.Search.WithContext(ctx),
		e.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch %s: %w", op, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return nil, responseError("elasticsearch "+op, res)
	}

	var esResp esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, fmt.Errorf("elasticsearch %s: decode response: %w", op, err)
	}

	e.logger.DebugContext(ctx, "elasticsearch query",
		"op", op,
		"hits", esResp.Hits.Total.Value,
		"took_ms", time.Since(start).Milliseconds(),
	)
	return &esResp, nil
}

// get fetches a single document. A missing document yields (nil, nil).
func (e *Engine) get(ctx context.Context, id string) (*domain.Product, error) {
	res, err := e.client.Get(e.indexName, id, e.client.Get.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch get: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if res.IsError() {
		return nil, responseError("elasticsearch get", res)
	}

	var got esGetResponse
	if err := json.NewDecoder(res.Body).Decode(&got); err != nil {
		return nil, fmt.Errorf("elasticsearch get: decode response: %w", err)
	}
	if !got.Found {
		return nil, nil
	}
	return &got.Source.Product, nil
}

func responseError(op string, res *esapi.Response) error {
	body, _ := io.ReadAll(res.Body)
	var errResp esErrorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Type != "" {
		return fmt.Errorf("%s: %s: %s", op, errResp.Error.Type, errResp.Error.Reason)
	}
	return fmt.Errorf("%s: unexpected status %s", op, res.Status())
}
