package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/catalogsearch/internal/domain"
	"github.com/utafrali/catalogsearch/internal/scoring"
	pkgkafka "github.com/utafrali/catalogsearch/pkg/kafka"
	"github.com/utafrali/catalogsearch/pkg/logger"
)

// DefaultTopic receives every search analytics event.
const DefaultTopic = "catalog.search.performed"

// Event type constants.
const (
	TypeSearchPerformed  = "search.performed"
	TypeSuggestPerformed = "suggest.performed"
)

// Aggregate type constant.
const AggregateTypeQuery = "query"

// Source identifier for events originating from the catalog search service.
const SourceCatalogSearch = "catalog-search"

// SearchPerformedData is the payload for a search.performed event.
type SearchPerformedData struct {
	Query        string         `json:"query"`
	Filters      domain.Filters `json:"filters"`
	SortBy       string         `json:"sort_by"`
	SortOrder    string         `json:"sort_order"`
	Page         int            `json:"page"`
	Location     string         `json:"location"`
	TotalResults int            `json:"total_results"`
	TookMs       int64          `json:"took_ms"`
}

// SuggestPerformedData is the payload for a suggest.performed event.
type SuggestPerformedData struct {
	Query       string   `json:"query"`
	Suggestions int      `json:"suggestions"`
	TopIDs      []string `json:"top_ids"`
}

// Producer publishes search analytics events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	topic  string
	logger *slog.Logger
}

// NewProducer creates a new analytics producer. An empty topic means
// DefaultTopic.
func NewProducer(kafka *pkgkafka.Producer, topic string, logger *slog.Logger) *Producer {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Producer{
		kafka:  kafka,
		topic:  topic,
		logger: logger,
	}
}

// PublishSearchPerformed publishes a search.performed event.
func (p *Producer) PublishSearchPerformed(ctx context.Context, req *domain.SearchRequest, resp *domain.SearchResponse) error {
	data := SearchPerformedData{
		Query:        req.Query,
		Filters:      req.Filters,
		SortBy:       resp.SortBy,
		SortOrder:    resp.SortOrder,
		Page:         resp.Pagination.CurrentPage,
		Location:     req.Location,
		TotalResults: resp.Pagination.TotalResults,
		TookMs:       resp.TookMs,
	}
	return p.publish(ctx, TypeSearchPerformed, req.Query, data)
}

// PublishSuggestPerformed publishes a suggest.performed event.
func (p *Producer) PublishSuggestPerformed(ctx context.Context, query string, suggestions []domain.Suggestion) error {
	ids := make([]string, 0, min(len(suggestions), 3))
	for _, s := range suggestions[:min(len(suggestions), 3)] {
		ids = append(ids, s.ID)
	}
	data := SuggestPerformedData{
		Query:       query,
		Suggestions: len(suggestions),
		TopIDs:      ids,
	}
	return p.publish(ctx, TypeSuggestPerformed, query, data)
}

// publish keys events by normalized query so one query's events stay ordered
// on a single partition.
func (p *Producer) publish(ctx context.Context, eventType, query string, data any) error {
	event, err := pkgkafka.NewEvent(eventType, scoring.Normalize(query), AggregateTypeQuery, SourceCatalogSearch, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, p.topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "published "+eventType+" event",
		slog.String("query", query),
	)

	return nil
}
