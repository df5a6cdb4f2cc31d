package domain

import (
	"fmt"
	"strings"
	"time"
)

// Criteria holds the optional search filters. A nil field means "no constraint";
// every non-nil field is AND-combined with the base Active && Approved gate.
// Treat a Criteria as a value: build it once and do not mutate it afterwards.
type Criteria struct {
	Location     *string
	CheckIn      *time.Time
	CheckOut     *time.Time
	MinGuests    *int
	CategoryID   *string
	MinPrice     *float64
	MaxPrice     *float64
	MinBedrooms  *int
	MinBathrooms *int
	MinRating    *float64
	PetsAllowed  *bool
	FreeParking  *bool
}

// Ptr returns a pointer to a copy of v. Handy for building Criteria literals.
func Ptr[T any](v T) *T {
	return &v
}

// Predicate is one conjunct of a search. reservations are the reservations of l
// (any status); predicates that do not need them ignore the argument.
type Predicate func(l *Listing, reservations []Reservation) bool

// LocationNeedle returns the lower-cased, trimmed location text and whether it
// constrains anything.
func (c Criteria) LocationNeedle() (string, bool) {
	if c.Location == nil {
		return "", false
	}
	needle := strings.ToLower(strings.TrimSpace(*c.Location))
	return needle, needle != ""
}

// DateRange returns the requested stay. Availability only applies when both
// ends are present.
func (c Criteria) DateRange() (checkIn, checkOut time.Time, ok bool) {
	if c.CheckIn == nil || c.CheckOut == nil {
		return time.Time{}, time.Time{}, false
	}
	return *c.CheckIn, *c.CheckOut, true
}

// IsEmpty reports whether no filter would be applied beyond the base gate.
func (c Criteria) IsEmpty() bool {
	return len(c.ScalarPredicates()) == 1 && len(c.RelationPredicates()) == 0
}

// Predicates returns the full conjunction: base gate, scalar filters, then the
// filters that need reviews or reservations.
func (c Criteria) Predicates() []Predicate {
	return append(c.ScalarPredicates(), c.RelationPredicates()...)
}

// ScalarPredicates covers the base gate and every filter decidable from the
// listing row alone. The first element is always the base gate.
func (c Criteria) ScalarPredicates() []Predicate {
	preds := []Predicate{func(l *Listing, _ []Reservation) bool { return l.Eligible() }}

	if needle, ok := c.LocationNeedle(); ok {
		preds = append(preds, func(l *Listing, _ []Reservation) bool { return MatchesLocation(l, needle) })
	}
	if c.MinGuests != nil {
		v := *c.MinGuests
		preds = append(preds, func(l *Listing, _ []Reservation) bool { return l.GuestsAllowed >= v })
	}
	if c.CategoryID != nil {
		v := *c.CategoryID
		preds = append(preds, func(l *Listing, _ []Reservation) bool { return l.CategoryID == v })
	}
	if c.MinPrice != nil {
		v := *c.MinPrice
		preds = append(preds, func(l *Listing, _ []Reservation) bool { return l.WeekdayPrice >= v })
	}
	if c.MaxPrice != nil {
		v := *c.MaxPrice
		preds = append(preds, func(l *Listing, _ []Reservation) bool { return l.WeekdayPrice <= v })
	}
	if c.MinBedrooms != nil {
		v := *c.MinBedrooms
		preds = append(preds, func(l *Listing, _ []Reservation) bool { return l.Bedrooms >= v })
	}
	if c.MinBathrooms != nil {
		v := *c.MinBathrooms
		preds = append(preds, func(l *Listing, _ []Reservation) bool { return l.Bathrooms >= v })
	}
	if c.PetsAllowed != nil {
		v := *c.PetsAllowed
		preds = append(preds, func(l *Listing, _ []Reservation) bool { return l.PetsAllowed == v })
	}
	if c.FreeParking != nil {
		v := *c.FreeParking
		preds = append(preds, func(l *Listing, _ []Reservation) bool { return l.FreeParking == v })
	}
	return preds
}

// RelationPredicates covers availability and minimum rating. l.Reviews must be
// resolved before evaluating them.
func (c Criteria) RelationPredicates() []Predicate {
	var preds []Predicate
	if in, out, ok := c.DateRange(); ok {
		preds = append(preds, func(_ *Listing, rs []Reservation) bool { return Available(rs, in, out) })
	}
	if c.MinRating != nil {
		v := *c.MinRating
		preds = append(preds, func(l *Listing, _ []Reservation) bool { return MeetsMinRating(l.Reviews, v) })
	}
	return preds
}

// Matches evaluates the whole conjunction against a resolved listing.
func (c Criteria) Matches(l *Listing, reservations []Reservation) bool {
	return All(c.Predicates(), l, reservations)
}

// All reports whether every predicate holds.
func All(preds []Predicate, l *Listing, reservations []Reservation) bool {
	for _, p := range preds {
		if !p(l, reservations) {
			return false
		}
	}
	return true
}

// MatchesLocation is a case-insensitive substring test of needle against the
// city, the state, "city, state" and the listing name. needle must already be
// lower-cased.
func MatchesLocation(l *Listing, needle string) bool {
	city := strings.ToLower(l.City)
	state := strings.ToLower(l.State)
	return strings.Contains(city, needle) ||
		strings.Contains(state, needle) ||
		strings.Contains(city+", "+state, needle) ||
		strings.Contains(strings.ToLower(l.Name), needle)
}

// String renders only the populated filters, for logs and span attributes.
func (c Criteria) String() string {
	var parts []string
	add := func(k string, v any) { parts = append(parts, fmt.Sprintf("%s=%v", k, v)) }
	if c.Location != nil {
		add("location", *c.Location)
	}
	if c.CheckIn != nil {
		add("check_in", c.CheckIn.Format(time.DateOnly))
	}
	if c.CheckOut != nil {
		add("check_out", c.CheckOut.Format(time.DateOnly))
	}
	if c.MinGuests != nil {
		add("guests", *c.MinGuests)
	}
	if c.CategoryID != nil {
		add("category_id", *c.CategoryID)
	}
	if c.MinPrice != nil {
		add("min_price", *c.MinPrice)
	}
	if c.MaxPrice != nil {
		add("max_price", *c.MaxPrice)
	}
	if c.MinBedrooms != nil {
		add("min_bedrooms", *c.MinBedrooms)
	}
	if c.MinBathrooms != nil {
		add("min_bathrooms", *c.MinBathrooms)
	}
	if c.MinRating != nil {
		add("min_rating", *c.MinRating)
	}
	if c.PetsAllowed != nil {
		add("pets_allowed", *c.PetsAllowed)
	}
	if c.FreeParking != nil {
		add("free_parking", *c.FreeParking)
	}
	return strings.Join(parts, " ")
}
