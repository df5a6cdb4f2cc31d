package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("property-service/usecase")

// SearchUsecase serves the public catalog: the index page, filtered search,
// listing details and the category list.
type SearchUsecase struct {
	repo    domain.ListingRepository
	cache   domain.ListingCache
	photos  domain.PhotoStorage
	logger  *logger.Logger
	metrics *metrics.MetricsManager
}

// NewSearchUsecase wires the usecase. cache, photos and m may be nil.
func NewSearchUsecase(repo domain.ListingRepository, cache domain.ListingCache, photos domain.PhotoStorage, log *logger.Logger, m *metrics.MetricsManager) *SearchUsecase {
	return &SearchUsecase{
		repo:    repo,
		cache:   cache,
		photos:  photos,
		logger:  log.Named("SearchUsecase"),
		metrics: m,
	}
}

// ListAvailable returns every active and approved listing and the number of
// stored listings of any status.
func (uc *SearchUsecase) ListAvailable(ctx context.Context) (page *domain.ListingPage, err error) {
	ctx, span := tracer.Start(ctx, "SearchUsecase.ListAvailable")
	defer func() { endSpan(span, err) }()
	defer func() { uc.observe("list", page, err) }()

	listings, err := uc.repo.FindAvailable(ctx)
	if err != nil {
		uc.logger.Error("Failed to load available listings", zap.Error(err))
		return nil, fmt.Errorf("%w: find available: %w", domain.ErrRepository, err)
	}
	total, err := uc.repo.Count(ctx)
	if err != nil {
		uc.logger.Error("Failed to count listings", zap.Error(err))
		return nil, fmt.Errorf("%w: count: %w", domain.ErrRepository, err)
	}
	uc.resolvePhotos(ctx, listings...)

	span.SetAttributes(attribute.Int("listings.returned", len(listings)), attribute.Int64("listings.total", total))
	return &domain.ListingPage{Listings: listings, TotalCount: total}, nil
}

// Search applies criteria on top of the active and approved gate.
// FilteredCount is the number of listings returned.
func (uc *SearchUsecase) Search(ctx context.Context, criteria domain.Criteria) (result *domain.SearchResult, err error) {
	ctx, span := tracer.Start(ctx, "SearchUsecase.Search")
	span.SetAttributes(attribute.String("search.criteria", criteria.String()))
	defer func() { endSpan(span, err) }()
	defer func() {
		n := 0
		if result != nil {
			n = len(result.Listings)
		}
		uc.metrics.ObserveSearch("search", n, err)
	}()

	uc.logger.Debug("Searching listings", zap.Stringer("criteria", criteria))

	listings, err := uc.repo.Search(ctx, criteria)
	if err != nil {
		uc.logger.Error("Failed to search listings", zap.Stringer("criteria", criteria), zap.Error(err))
		return nil, fmt.Errorf("%w: search: %w", domain.ErrRepository, err)
	}
	total, err := uc.repo.Count(ctx)
	if err != nil {
		uc.logger.Error("Failed to count listings", zap.Error(err))
		return nil, fmt.Errorf("%w: count: %w", domain.ErrRepository, err)
	}
	uc.resolvePhotos(ctx, listings...)

	span.SetAttributes(attribute.Int("listings.returned", len(listings)), attribute.Int64("listings.total", total))
	return &domain.SearchResult{
		Listings:      listings,
		TotalCount:    total,
		FilteredCount: int64(len(listings)),
	}, nil
}

// GetDetails returns one listing with its relations resolved. Lookups go
// through the cache; store failures other than not-found are wrapped in
// domain.ErrRepository.
func (uc *SearchUsecase) GetDetails(ctx context.Context, id string) (listing *domain.Listing, err error) {
	ctx, span := tracer.Start(ctx, "SearchUsecase.GetDetails")
	span.SetAttributes(attribute.String("listing.id", id))
	defer func() { endSpan(span, err) }()
	defer func() { uc.metrics.ObserveSearch("details", 1, err) }()

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrListingNotFound
	}

	listing = uc.cachedListing(ctx, id)
	if listing == nil {
		listing, err = uc.repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrListingNotFound) {
				uc.logger.Debug("Listing not found", zap.String("listing_id", id))
				return nil, err
			}
			uc.logger.Error("Failed to load listing", zap.String("listing_id", id), zap.Error(err))
			return nil, fmt.Errorf("%w: find by id: %w", domain.ErrRepository, err)
		}
		if uc.cache != nil {
			if cerr := uc.cache.SetListing(ctx, listing); cerr != nil {
				uc.logger.Warn("Failed to cache listing", zap.String("listing_id", id), zap.Error(cerr))
			}
		}
	}

	uc.resolvePhotos(ctx, listing)
	return listing, nil
}

// ListCategories returns every category, cached.
func (uc *SearchUsecase) ListCategories(ctx context.Context) (categories []domain.Category, err error) {
	ctx, span := tracer.Start(ctx, "SearchUsecase.ListCategories")
	defer func() { endSpan(span, err) }()

	if uc.cache != nil {
		cached, cerr := uc.cache.GetCategories(ctx)
		if cerr != nil {
			uc.logger.Warn("Category cache lookup failed", zap.Error(cerr))
		} else if cached != nil {
			return cached, nil
		}
	}

	categories, err = uc.repo.ListCategories(ctx)
	if err != nil {
		uc.logger.Error("Failed to list categories", zap.Error(err))
		return nil, fmt.Errorf("%w: list categories: %w", domain.ErrRepository, err)
	}
	if uc.cache != nil {
		if cerr := uc.cache.SetCategories(ctx, categories); cerr != nil {
			uc.logger.Warn("Failed to cache categories", zap.Error(cerr))
		}
	}
	return categories, nil
}

func (uc *SearchUsecase) cachedListing(ctx context.Context, id string) *domain.Listing {
	if uc.cache == nil {
		return nil
	}
	listing, err := uc.cache.GetListing(ctx, id)
	if err != nil {
		uc.logger.Warn("Listing cache lookup failed", zap.String("listing_id", id), zap.Error(err))
		return nil
	}
	return listing
}

// resolvePhotos fills PhotoURLs. A failure leaves the listing without photos.
func (uc *SearchUsecase) resolvePhotos(ctx context.Context, listings ...*domain.Listing) {
	if uc.photos == nil {
		return
	}
	for _, l := range listings {
		if len(l.PhotoKeys) == 0 {
			continue
		}
		urls, err := uc.photos.PhotoURLs(ctx, l.PhotoKeys)
		if err != nil {
			uc.logger.Warn("Failed to resolve photo URLs", zap.String("listing_id", l.ID), zap.Error(err))
			continue
		}
		l.PhotoURLs = urls
	}
}

func (uc *SearchUsecase) observe(operation string, page *domain.ListingPage, err error) {
	n := 0
	if page != nil {
		n = len(page.Listings)
	}
	uc.metrics.ObserveSearch(operation, n, err)
}

// endSpan marks the span failed unless err is nil or a plain not-found.
func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, domain.ErrListingNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
