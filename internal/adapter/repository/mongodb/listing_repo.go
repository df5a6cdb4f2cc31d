package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	listingCollectionName     = "listings"
	categoryCollectionName    = "categories"
	reviewCollectionName      = "reviews"
	reservationCollectionName = "reservations"
	userCollectionName        = "users"
)

// ListingRepository implements domain.ListingRepository on MongoDB. Scalar
// filters are pushed down to the listings collection; availability and
// rating are evaluated on the candidates once their reservations and
// reviews are loaded.
type ListingRepository struct {
	listings     *mongo.Collection
	categories   *mongo.Collection
	reviews      *mongo.Collection
	reservations *mongo.Collection
	users        *mongo.Collection
	logger       *logger.Logger
}

// NewListingRepository creates the repository and ensures its indexes.
func NewListingRepository(db *mongo.Database, log *logger.Logger) *ListingRepository {
	r := &ListingRepository{
		listings:     db.Collection(listingCollectionName),
		categories:   db.Collection(categoryCollectionName),
		reviews:      db.Collection(reviewCollectionName),
		reservations: db.Collection(reservationCollectionName),
		users:        db.Collection(userCollectionName),
		logger:       log.Named("ListingRepository"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	r.ensureIndexes(ctx)
	return r
}

func (r *ListingRepository) ensureIndexes(ctx context.Context) {
	indexes := map[*mongo.Collection][]mongo.IndexModel{
		r.listings: {
			{Keys: bson.D{{Key: "active", Value: 1}, {Key: "approved", Value: 1}}},
			{Keys: bson.D{{Key: "category_id", Value: 1}}},
		},
		r.reviews: {
			{Keys: bson.D{{Key: "listing_id", Value: 1}}},
		},
		r.reservations: {
			{Keys: bson.D{{Key: "listing_id", Value: 1}, {Key: "active", Value: 1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
			// Indexes may already exist or be managed elsewhere.
			r.logger.Warn("Failed to ensure indexes", zap.String("collection", coll.Name()), zap.Error(err))
		}
	}
}

// FindAvailable returns every active and approved listing, fully resolved.
func (r *ListingRepository) FindAvailable(ctx context.Context) ([]*domain.Listing, error) {
	r.logger.Debug("Finding available listings")
	listings, err := r.findListings(ctx, eligibleFilter())
	if err != nil {
		return nil, err
	}
	if err := r.attachReviews(ctx, listings); err != nil {
		return nil, err
	}
	if err := r.resolveRelations(ctx, listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// Search returns the listings matching every populated filter of c.
func (r *ListingRepository) Search(ctx context.Context, c domain.Criteria) ([]*domain.Listing, error) {
	r.logger.Debug("Searching listings", zap.Stringer("criteria", c))

	candidates, err := r.findListings(ctx, buildListingFilter(c))
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return candidates, nil
	}
	if err := r.attachReviews(ctx, candidates); err != nil {
		return nil, err
	}

	var reservations map[string][]domain.Reservation
	if _, _, ok := c.DateRange(); ok {
		reservations, err = r.activeReservations(ctx, listingIDs(candidates))
		if err != nil {
			return nil, err
		}
	}

	preds := c.RelationPredicates()
	matched := make([]*domain.Listing, 0, len(candidates))
	for _, l := range candidates {
		if domain.All(preds, l, reservations[l.ID]) {
			matched = append(matched, l)
		}
	}

	if err := r.resolveRelations(ctx, matched); err != nil {
		return nil, err
	}
	return matched, nil
}

// FindByID returns the listing with its category, host and reviewers resolved.
// Status flags are not checked.
func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	if id == "" {
		return nil, domain.ErrListingNotFound
	}
	var doc listingDocument
	err := r.listings.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.Debug("Listing not found in DB", zap.String("listing_id", id))
			return nil, domain.ErrListingNotFound
		}
		r.logger.Error("Failed to get listing by ID from DB", zap.Error(err), zap.String("listing_id", id))
		return nil, fmt.Errorf("db findone failed: %w", err)
	}

	listings := []*domain.Listing{doc.toDomain()}
	if err := r.attachReviews(ctx, listings); err != nil {
		return nil, err
	}
	if err := r.resolveRelations(ctx, listings); err != nil {
		return nil, err
	}
	return listings[0], nil
}

// Count returns the number of stored listings regardless of status.
func (r *ListingRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.listings.CountDocuments(ctx, bson.D{})
	if err != nil {
		r.logger.Error("Failed to count listings", zap.Error(err))
		return 0, fmt.Errorf("db count failed: %w", err)
	}
	return n, nil
}

// ListCategories returns every category ordered by name.
func (r *ListingRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	cursor, err := r.categories.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		r.logger.Error("Failed to list categories", zap.Error(err))
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*categoryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}
	out := make([]domain.Category, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *ListingRepository) findListings(ctx context.Context, filter bson.M) ([]*domain.Listing, error) {
	cursor, err := r.listings.Find(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to find listings", zap.Error(err))
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode listings", zap.Error(err))
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}
	return toDomainListings(docs), nil
}

func (r *ListingRepository) attachReviews(ctx context.Context, listings []*domain.Listing) error {
	if len(listings) == 0 {
		return nil
	}
	cursor, err := r.reviews.Find(ctx, bson.M{"listing_id": bson.M{"$in": listingIDs(listings)}})
	if err != nil {
		r.logger.Error("Failed to load reviews", zap.Error(err))
		return fmt.Errorf("db find reviews failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*reviewDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return fmt.Errorf("db cursor all failed: %w", err)
	}
	byListing := make(map[string][]domain.Review, len(listings))
	for _, d := range docs {
		byListing[d.ListingID] = append(byListing[d.ListingID], d.toDomain())
	}
	for _, l := range listings {
		l.Reviews = byListing[l.ID]
	}
	return nil
}

func (r *ListingRepository) activeReservations(ctx context.Context, ids []string) (map[string][]domain.Reservation, error) {
	cursor, err := r.reservations.Find(ctx, bson.M{"listing_id": bson.M{"$in": ids}, "active": true})
	if err != nil {
		r.logger.Error("Failed to load reservations", zap.Error(err))
		return nil, fmt.Errorf("db find reservations failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*reservationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}
	out := make(map[string][]domain.Reservation, len(ids))
	for _, d := range docs {
		out[d.ListingID] = append(out[d.ListingID], d.toDomain())
	}
	return out, nil
}

// resolveRelations fills Category, Host and each review's Customer with one
// query per collection.
func (r *ListingRepository) resolveRelations(ctx context.Context, listings []*domain.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	categoryIDs := make([]string, 0, len(listings))
	userIDs := make([]string, 0, len(listings))
	for _, l := range listings {
		categoryIDs = append(categoryIDs, l.CategoryID)
		userIDs = append(userIDs, l.HostID)
		for _, rv := range l.Reviews {
			userIDs = append(userIDs, rv.CustomerID)
		}
	}

	categories, err := r.categoriesByID(ctx, dedupe(categoryIDs))
	if err != nil {
		return err
	}
	users, err := r.usersByID(ctx, dedupe(userIDs))
	if err != nil {
		return err
	}

	for _, l := range listings {
		if c, ok := categories[l.CategoryID]; ok {
			l.Category = &c
		}
		l.Host = users[l.HostID]
		for i := range l.Reviews {
			l.Reviews[i].Customer = users[l.Reviews[i].CustomerID]
		}
	}
	return nil
}

func (r *ListingRepository) categoriesByID(ctx context.Context, ids []string) (map[string]domain.Category, error) {
	cursor, err := r.categories.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("db find categories failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*categoryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}
	out := make(map[string]domain.Category, len(docs))
	for _, d := range docs {
		out[d.ID] = d.toDomain()
	}
	return out, nil
}

func (r *ListingRepository) usersByID(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	cursor, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("db find users failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}
	out := make(map[string]*domain.User, len(docs))
	for _, d := range docs {
		out[d.ID] = d.toDomain()
	}
	return out, nil
}

func eligibleFilter() bson.M {
	return bson.M{"active": true, "approved": true}
}

// buildListingFilter translates the scalar part of c into a listings query.
func buildListingFilter(c domain.Criteria) bson.M {
	filter := eligibleFilter()

	if needle, ok := c.LocationNeedle(); ok {
		pattern := regexp.QuoteMeta(needle)
		rx := primitive.Regex{Pattern: pattern, Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"city": rx},
			bson.M{"state": rx},
			bson.M{"name": rx},
			bson.M{"$expr": bson.M{"$regexMatch": bson.M{
				"input":   bson.M{"$concat": bson.A{"$city", ", ", "$state"}},
				"regex":   pattern,
				"options": "i",
			}}},
		}
	}
	if c.MinGuests != nil {
		filter["guests_allowed"] = bson.M{"$gte": *c.MinGuests}
	}
	if c.CategoryID != nil {
		filter["category_id"] = *c.CategoryID
	}
	if c.MinPrice != nil || c.MaxPrice != nil {
		price := bson.M{}
		if c.MinPrice != nil {
			price["$gte"] = *c.MinPrice
		}
		if c.MaxPrice != nil {
			price["$lte"] = *c.MaxPrice
		}
		filter["weekday_price"] = price
	}
	if c.MinBedrooms != nil {
		filter["bedrooms"] = bson.M{"$gte": *c.MinBedrooms}
	}
	if c.MinBathrooms != nil {
		filter["bathrooms"] = bson.M{"$gte": *c.MinBathrooms}
	}
	if c.PetsAllowed != nil {
		filter["pets_allowed"] = *c.PetsAllowed
	}
	if c.FreeParking != nil {
		filter["free_parking"] = *c.FreeParking
	}
	return filter
}

func listingIDs(listings []*domain.Listing) []string {
	ids := make([]string, 0, len(listings))
	for _, l := range listings {
		ids = append(ids, l.ID)
	}
	return ids
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
