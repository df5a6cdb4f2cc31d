package domain

import "time"

// Listing is a bookable property. Reviews and reservations reference it by
// ListingID; Category, Host and Reviews below are read views resolved by the
// repository for display and are never written back.
type Listing struct {
	ID            string
	Name          string
	Active        bool
	Approved      bool
	Street        string
	City          string
	State         string
	Zip           string
	GuestsAllowed int
	Bedrooms      int
	Bathrooms     int
	WeekdayPrice  float64
	WeekendPrice  float64
	CleaningFee   float64
	PetsAllowed   bool
	FreeParking   bool
	CategoryID    string
	HostID        string
	PhotoKeys     []string

	Category  *Category
	Host      *User
	Reviews   []Review
	PhotoURLs []string
}

// Category groups listings (house, apartment, cabin, ...).
type Category struct {
	ID   string
	Name string
}

// Review is a customer's rating of a listing. Disputed reviews stay visible
// but are excluded from rating aggregation.
type Review struct {
	ID           string
	ListingID    string
	CustomerID   string
	Rating       int
	Text         string
	HostComments string
	Dispute      bool

	Customer *User
}

// Reservation blocks a listing between CheckIn (inclusive) and CheckOut.
// Cancelled reservations have Active == false.
type Reservation struct {
	ID         string
	ListingID  string
	CustomerID string
	CheckIn    time.Time
	CheckOut   time.Time
	Active     bool
}

// User is the read model of a host or customer owned by the identity service.
type User struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
}

func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Eligible reports whether the listing may be shown in public results.
func (l *Listing) Eligible() bool {
	return l != nil && l.Active && l.Approved
}

// ListingPage is the result of ListAvailable.
type ListingPage struct {
	Listings   []*Listing
	TotalCount int64
}

// SearchResult is the result of Search.
type SearchResult struct {
	Listings      []*Listing
	TotalCount    int64
	FilteredCount int64
}

// AverageRating is the display rating over the resolved, non-disputed reviews.
func (l *Listing) AverageRating() (float64, bool) {
	return AverageRating(l.Reviews)
}
