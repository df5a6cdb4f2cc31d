package mongodb

import (
	"time"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/listing/domain"
)

// Identifiers are stored as strings so that ids issued by other services
// (uuid, ObjectID hex) can be used as-is.

type listingDocument struct {
	ID            string   `bson:"_id"`
	Name          string   `bson:"name"`
	Active        bool     `bson:"active"`
	Approved      bool     `bson:"approved"`
	Street        string   `bson:"street,omitempty"`
	City          string   `bson:"city"`
	State         string   `bson:"state"`
	Zip           string   `bson:"zip,omitempty"`
	GuestsAllowed int      `bson:"guests_allowed"`
	Bedrooms      int      `bson:"bedrooms"`
	Bathrooms     int      `bson:"bathrooms"`
	WeekdayPrice  float64  `bson:"weekday_price"`
	WeekendPrice  float64  `bson:"weekend_price,omitempty"`
	CleaningFee   float64  `bson:"cleaning_fee,omitempty"`
	PetsAllowed   bool     `bson:"pets_allowed"`
	FreeParking   bool     `bson:"free_parking"`
	CategoryID    string   `bson:"category_id"`
	HostID        string   `bson:"host_id"`
	Photos        []string `bson:"photos,omitempty"`
}

type categoryDocument struct {
	ID   string `bson:"_id"`
	Name string `bson:"name"`
}

type reviewDocument struct {
	ID           string `bson:"_id"`
	ListingID    string `bson:"listing_id"`
	CustomerID   string `bson:"customer_id"`
	Rating       int    `bson:"rating"`
	Text         string `bson:"text,omitempty"`
	HostComments string `bson:"host_comments,omitempty"`
	Dispute      bool   `bson:"dispute"`
}

type reservationDocument struct {
	ID         string    `bson:"_id"`
	ListingID  string    `bson:"listing_id"`
	CustomerID string    `bson:"customer_id"`
	CheckIn    time.Time `bson:"check_in"`
	CheckOut   time.Time `bson:"check_out"`
	Active     bool      `bson:"active"`
}

type userDocument struct {
	ID        string `bson:"_id"`
	FirstName string `bson:"first_name"`
	LastName  string `bson:"last_name"`
	Email     string `bson:"email"`
}

func (d *listingDocument) toDomain() *domain.Listing {
	return &domain.Listing{
		ID:            d.ID,
		Name:          d.Name,
		Active:        d.Active,
		Approved:      d.Approved,
		Street:        d.Street,
		City:          d.City,
		State:         d.State,
		Zip:           d.Zip,
		GuestsAllowed: d.GuestsAllowed,
		Bedrooms:      d.Bedrooms,
		Bathrooms:     d.Bathrooms,
		WeekdayPrice:  d.WeekdayPrice,
		WeekendPrice:  d.WeekendPrice,
		CleaningFee:   d.CleaningFee,
		PetsAllowed:   d.PetsAllowed,
		FreeParking:   d.FreeParking,
		CategoryID:    d.CategoryID,
		HostID:        d.HostID,
		PhotoKeys:     d.Photos,
	}
}

func fromDomainListing(l *domain.Listing) *listingDocument {
	return &listingDocument{
		ID:            l.ID,
		Name:          l.Name,
		Active:        l.Active,
		Approved:      l.Approved,
		Street:        l.Street,
		City:          l.City,
		State:         l.State,
		Zip:           l.Zip,
		GuestsAllowed: l.GuestsAllowed,
		Bedrooms:      l.Bedrooms,
		Bathrooms:     l.Bathrooms,
		WeekdayPrice:  l.WeekdayPrice,
		WeekendPrice:  l.WeekendPrice,
		CleaningFee:   l.CleaningFee,
		PetsAllowed:   l.PetsAllowed,
		FreeParking:   l.FreeParking,
		CategoryID:    l.CategoryID,
		HostID:        l.HostID,
		Photos:        l.PhotoKeys,
	}
}

func toDomainListings(docs []*listingDocument) []*domain.Listing {
	out := make([]*domain.Listing, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out
}

func (d *categoryDocument) toDomain() domain.Category {
	return domain.Category{ID: d.ID, Name: d.Name}
}

func (d *reviewDocument) toDomain() domain.Review {
	return domain.Review{
		ID:           d.ID,
		ListingID:    d.ListingID,
		CustomerID:   d.CustomerID,
		Rating:       d.Rating,
		Text:         d.Text,
		HostComments: d.HostComments,
		Dispute:      d.Dispute,
	}
}

func (d *reservationDocument) toDomain() domain.Reservation {
	return domain.Reservation{
		ID:         d.ID,
		ListingID:  d.ListingID,
		CustomerID: d.CustomerID,
		CheckIn:    d.CheckIn,
		CheckOut:   d.CheckOut,
		Active:     d.Active,
	}
}

func (d *userDocument) toDomain() *domain.User {
	return &domain.User{ID: d.ID, FirstName: d.FirstName, LastName: d.LastName, Email: d.Email}
}
