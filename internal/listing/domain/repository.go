package domain

import "context"

// ListingRepository is the read side of the listing store. Implementations
// resolve Category, Host and Reviews (with each review's Customer) on every
// listing they return.
type ListingRepository interface {
	// FindAvailable returns every active and approved listing.
	FindAvailable(ctx context.Context) ([]*Listing, error)
	// Search returns the active and approved listings matching criteria.
	Search(ctx context.Context, criteria Criteria) ([]*Listing, error)
	// FindByID returns ErrListingNotFound for unknown or malformed ids.
	FindByID(ctx context.Context, id string) (*Listing, error)
	// Count returns the number of listings regardless of status.
	Count(ctx context.Context) (int64, error)
	ListCategories(ctx context.Context) ([]Category, error)
}

// ListingCache keeps resolved detail views and the category list. A miss is
// reported as (nil, nil).
type ListingCache interface {
	GetListing(ctx context.Context, id string) (*Listing, error)
	SetListing(ctx context.Context, listing *Listing) error
	DeleteListing(ctx context.Context, id string) error
	GetCategories(ctx context.Context) ([]Category, error)
	SetCategories(ctx context.Context, categories []Category) error
	DeleteCategories(ctx context.Context) error
}

// PhotoStorage turns stored object keys into URLs a browser can fetch.
type PhotoStorage interface {
	PhotoURLs(ctx context.Context, keys []string) ([]string, error)
}
