package http

import "github.com/Abdurahmanit/GroupProject/property-service/internal/listing/domain"

type categoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type userResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

type reviewResponse struct {
	ID           string        `json:"id"`
	Rating       int           `json:"rating"`
	Text         string        `json:"text,omitempty"`
	HostComments string        `json:"host_comments,omitempty"`
	Dispute      bool          `json:"dispute"`
	Customer     *userResponse `json:"customer,omitempty"`
}

type listingResponse struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Street        string            `json:"street,omitempty"`
	City          string            `json:"city"`
	State         string            `json:"state"`
	Zip           string            `json:"zip,omitempty"`
	GuestsAllowed int               `json:"guests_allowed"`
	Bedrooms      int               `json:"bedrooms"`
	Bathrooms     int               `json:"bathrooms"`
	WeekdayPrice  float64           `json:"weekday_price"`
	WeekendPrice  float64           `json:"weekend_price,omitempty"`
	CleaningFee   float64           `json:"cleaning_fee,omitempty"`
	PetsAllowed   bool              `json:"pets_allowed"`
	FreeParking   bool              `json:"free_parking"`
	Category      *categoryResponse `json:"category,omitempty"`
	Host          *userResponse     `json:"host,omitempty"`
	AverageRating *float64          `json:"average_rating,omitempty"`
	ReviewCount   int               `json:"review_count"`
	Reviews       []reviewResponse  `json:"reviews,omitempty"`
	Photos        []string          `json:"photos,omitempty"`
}

type indexResponse struct {
	Listings   []listingResponse  `json:"listings"`
	TotalCount int64              `json:"total_count"`
	Categories []categoryResponse `json:"categories"`
}

type searchResponse struct {
	Listings      []listingResponse  `json:"listings"`
	TotalCount    int64              `json:"total_count"`
	FilteredCount int64              `json:"filtered_count"`
	Categories    []categoryResponse `json:"categories"`
}

func toUserResponse(u *domain.User) *userResponse {
	if u == nil {
		return nil
	}
	return &userResponse{ID: u.ID, FullName: u.FullName()}
}

// toListingResponse renders a listing. Reviews are only embedded on the
// details page; lists carry the aggregate.
func toListingResponse(l *domain.Listing, withReviews bool) listingResponse {
	resp := listingResponse{
		ID:            l.ID,
		Name:          l.Name,
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
		Host:          toUserResponse(l.Host),
		ReviewCount:   len(l.Reviews),
		Photos:        l.PhotoURLs,
	}
	if l.Category != nil {
		resp.Category = &categoryResponse{ID: l.Category.ID, Name: l.Category.Name}
	}
	if avg, ok := l.AverageRating(); ok {
		resp.AverageRating = &avg
	}
	if withReviews {
		for _, r := range l.Reviews {
			resp.Reviews = append(resp.Reviews, reviewResponse{
				ID:           r.ID,
				Rating:       r.Rating,
				Text:         r.Text,
				HostComments: r.HostComments,
				Dispute:      r.Dispute,
				Customer:     toUserResponse(r.Customer),
			})
		}
	}
	return resp
}

func toListingResponses(listings []*domain.Listing) []listingResponse {
	out := make([]listingResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, toListingResponse(l, false))
	}
	return out
}

func toCategoryResponses(categories []domain.Category) []categoryResponse {
	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, categoryResponse{ID: c.ID, Name: c.Name})
	}
	return out
}
