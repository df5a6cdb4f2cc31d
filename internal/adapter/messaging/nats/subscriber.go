package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/metrics"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("property-service/nats-subscriber")

// Subjects published by the services that own listings, reviews and categories.
const (
	SubjectListingUpdated  = "listing.updated"
	SubjectListingDeleted  = "listing.deleted"
	SubjectReviewCreated   = "review.created"
	SubjectReviewUpdated   = "review.updated"
	SubjectReviewDeleted   = "review.deleted"
	SubjectReviewModerated = "review.moderated"
	SubjectCategoryUpdated = "category.updated"
)

var listingSubjects = []string{
	SubjectListingUpdated,
	SubjectListingDeleted,
	SubjectReviewCreated,
	SubjectReviewUpdated,
	SubjectReviewDeleted,
	SubjectReviewModerated,
}

// CacheInvalidator is the part of the listing cache the subscriber needs.
type CacheInvalidator interface {
	DeleteListing(ctx context.Context, id string) error
	DeleteCategories(ctx context.Context) error
}

// changeEvent is the common shape of listing and review events. Review
// events name the listing product_id.
type changeEvent struct {
	ListingID string `json:"listing_id"`
	ProductID string `json:"product_id"`
}

func (e changeEvent) listingID() string {
	if e.ListingID != "" {
		return e.ListingID
	}
	return e.ProductID
}

var errNoListingID = errors.New("event carries no listing_id")

// Subscriber evicts cached views when the data behind them changes.
type Subscriber struct {
	conn    *nats.Conn
	subs    []*nats.Subscription
	cache   CacheInvalidator
	logger  *logger.Logger
	metrics *metrics.MetricsManager
}

func NewSubscriber(url string, log *logger.Logger, appName string, cache CacheInvalidator, m *metrics.MetricsManager) (*Subscriber, error) {
	log.Info("NATS Subscriber: connecting...", zap.String("url", url))

	opts := []nats.Option{
		nats.Name(fmt.Sprintf("%s NATS Subscriber", appName)),
		nats.Timeout(10 * time.Second),
		nats.MaxReconnects(-1),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			if sub != nil {
				log.Error("NATS error", zap.String("subject", sub.Subject), zap.Error(err))
				return
			}
			log.Error("NATS error", zap.Error(err))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info("NATS connection closed")
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		log.Error("NATS Subscriber: failed to connect", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	log.Info("NATS Subscriber: successfully connected", zap.String("url", conn.ConnectedUrl()))

	return newSubscriber(conn, cache, log, m), nil
}

func newSubscriber(conn *nats.Conn, cache CacheInvalidator, log *logger.Logger, m *metrics.MetricsManager) *Subscriber {
	return &Subscriber{
		conn:    conn,
		cache:   cache,
		logger:  log.Named("NATSSubscriber"),
		metrics: m,
	}
}

// Start subscribes to every change subject. Each replica receives every
// event, since each holds its own in-process cache level.
func (s *Subscriber) Start() error {
	subjects := append(append([]string{}, listingSubjects...), SubjectCategoryUpdated)
	for _, subject := range subjects {
		sub, err := s.conn.Subscribe(subject, s.handleMessage)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", subject, err)
		}
		s.subs = append(s.subs, sub)
	}
	s.logger.Info("NATS Subscriber: listening", zap.Strings("subjects", subjects))
	return nil
}

func (s *Subscriber) handleMessage(msg *nats.Msg) {
	ctx := context.Background()
	if msg.Header != nil {
		ctx = otel.GetTextMapPropagator().Extract(ctx, NATSHeaderCarrier(msg.Header))
	}
	ctx, span := tracer.Start(ctx, fmt.Sprintf("NATS.Consume.%s", msg.Subject))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.invalidate(ctx, msg.Subject, msg.Data); err != nil {
		span.RecordError(err)
		s.logger.Warn("NATS Subscriber: invalidation failed", zap.String("subject", msg.Subject), zap.Error(err))
		return
	}
	s.metrics.Invalidated(msg.Subject)
}

func (s *Subscriber) invalidate(ctx context.Context, subject string, data []byte) error {
	if subject == SubjectCategoryUpdated {
		// Cached details embed the category name too; they age out with the TTL.
		return s.cache.DeleteCategories(ctx)
	}

	var evt changeEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	id := evt.listingID()
	if id == "" {
		return errNoListingID
	}

	ctx, span := tracer.Start(ctx, "EvictListing")
	span.SetAttributes(attribute.String("listing_id", id))
	defer span.End()

	s.logger.Debug("NATS Subscriber: evicting listing", zap.String("subject", subject), zap.String("listing_id", id))
	return s.cache.DeleteListing(ctx, id)
}

// Close unsubscribes, drains and closes the connection.
func (s *Subscriber) Close() {
	s.logger.Info("NATS Subscriber: closing connection...")
	if s.conn == nil || s.conn.IsClosed() {
		return
	}
	if err := s.conn.Drain(); err != nil {
		s.logger.Error("NATS Subscriber: failed to drain connection", zap.Error(err))
		s.conn.Close()
	}
}

// NATSHeaderCarrier adapts nats.Header to the OpenTelemetry TextMapCarrier.
type NATSHeaderCarrier nats.Header

func (c NATSHeaderCarrier) Get(key string) string {
	return nats.Header(c).Get(key)
}

func (c NATSHeaderCarrier) Set(key string, value string) {
	nats.Header(c).Set(key, value)
}

func (c NATSHeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}
