package postgres

import (
	"database/sql"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/listing/domain"
	"github.com/lib/pq"
)

type listingRow struct {
	ID            string         `db:"id"`
	Name          string         `db:"name"`
	Active        bool           `db:"active"`
	Approved      bool           `db:"approved"`
	Street        sql.NullString `db:"street"`
	City          string         `db:"city"`
	State         string         `db:"state"`
	Zip           sql.NullString `db:"zip"`
	GuestsAllowed int            `db:"guests_allowed"`
	Bedrooms      int            `db:"bedrooms"`
	Bathrooms     int            `db:"bathrooms"`
	WeekdayPrice  float64        `db:"weekday_price"`
	WeekendPrice  float64        `db:"weekend_price"`
	CleaningFee   float64        `db:"cleaning_fee"`
	PetsAllowed   bool           `db:"pets_allowed"`
	FreeParking   bool           `db:"free_parking"`
	CategoryID    string         `db:"category_id"`
	HostID        string         `db:"host_id"`
	Photos        pq.StringArray `db:"photos"`
}

type categoryRow struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}

type reviewRow struct {
	ID           string         `db:"id"`
	ListingID    string         `db:"listing_id"`
	CustomerID   string         `db:"customer_id"`
	Rating       int            `db:"rating"`
	Text         sql.NullString `db:"text"`
	HostComments sql.NullString `db:"host_comments"`
	Dispute      bool           `db:"dispute"`
}

type userRow struct {
	ID        string `db:"id"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
	Email     string `db:"email"`
}

func (r listingRow) toDomain() *domain.Listing {
	return &domain.Listing{
		ID:            r.ID,
		Name:          r.Name,
		Active:        r.Active,
		Approved:      r.Approved,
		Street:        r.Street.String,
		City:          r.City,
		State:         r.State,
		Zip:           r.Zip.String,
		GuestsAllowed: r.GuestsAllowed,
		Bedrooms:      r.Bedrooms,
		Bathrooms:     r.Bathrooms,
		WeekdayPrice:  r.WeekdayPrice,
		WeekendPrice:  r.WeekendPrice,
		CleaningFee:   r.CleaningFee,
		PetsAllowed:   r.PetsAllowed,
		FreeParking:   r.FreeParking,
		CategoryID:    r.CategoryID,
		HostID:        r.HostID,
		PhotoKeys:     []string(r.Photos),
	}
}

func (r reviewRow) toDomain() domain.Review {
	return domain.Review{
		ID:           r.ID,
		ListingID:    r.ListingID,
		CustomerID:   r.CustomerID,
		Rating:       r.Rating,
		Text:         r.Text.String,
		HostComments: r.HostComments.String,
		Dispute:      r.Dispute,
	}
}

func (r userRow) toDomain() *domain.User {
	return &domain.User{ID: r.ID, FirstName: r.FirstName, LastName: r.LastName, Email: r.Email}
}
