package http

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/listing/domain"
)

// Query parameter names accepted by the search endpoint.
const (
	paramLocation     = "location"
	paramCheckIn      = "checkIn"
	paramCheckOut     = "checkOut"
	paramGuests       = "guests"
	paramCategoryID   = "categoryId"
	paramMinPrice     = "minPrice"
	paramMaxPrice     = "maxPrice"
	paramMinBedrooms  = "minBedrooms"
	paramMinBathrooms = "minBathrooms"
	paramMinRating    = "minRating"
	paramPetsAllowed  = "petsAllowed"
	paramFreeParking  = "freeParking"
)

// ParamError reports a query parameter that could not be parsed.
type ParamError struct {
	Name  string
	Value string
	Err   error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Name, e.Value, e.Err)
}

func (e *ParamError) Unwrap() error { return e.Err }

// parseCriteria builds search criteria from the query string. Missing or
// blank parameters impose no constraint.
func parseCriteria(q url.Values) (domain.Criteria, error) {
	var (
		c   domain.Criteria
		err error
	)
	if v := q.Get(paramLocation); v != "" {
		c.Location = &v
	}
	if v := strings.TrimSpace(q.Get(paramCategoryID)); v != "" {
		c.CategoryID = &v
	}
	if c.CheckIn, err = parseOptional(q, paramCheckIn, parseDate); err != nil {
		return c, err
	}
	if c.CheckOut, err = parseOptional(q, paramCheckOut, parseDate); err != nil {
		return c, err
	}
	if c.MinGuests, err = parseOptional(q, paramGuests, strconv.Atoi); err != nil {
		return c, err
	}
	if c.MinPrice, err = parseOptional(q, paramMinPrice, parseFloat); err != nil {
		return c, err
	}
	if c.MaxPrice, err = parseOptional(q, paramMaxPrice, parseFloat); err != nil {
		return c, err
	}
	if c.MinBedrooms, err = parseOptional(q, paramMinBedrooms, strconv.Atoi); err != nil {
		return c, err
	}
	if c.MinBathrooms, err = parseOptional(q, paramMinBathrooms, strconv.Atoi); err != nil {
		return c, err
	}
	if c.MinRating, err = parseOptional(q, paramMinRating, parseFloat); err != nil {
		return c, err
	}
	if c.PetsAllowed, err = parseOptional(q, paramPetsAllowed, parseBool); err != nil {
		return c, err
	}
	if c.FreeParking, err = parseOptional(q, paramFreeParking, parseBool); err != nil {
		return c, err
	}
	return c, nil
}

func parseOptional[T any](q url.Values, name string, parse func(string) (T, error)) (*T, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := parse(raw)
	if err != nil {
		return nil, &ParamError{Name: name, Value: raw, Err: err}
	}
	return &v, nil
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("want YYYY-MM-DD or RFC 3339")
	}
	return t, nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// parseBool also accepts "on", which HTML checkboxes submit.
func parseBool(s string) (bool, error) {
	if strings.EqualFold(s, "on") {
		return true, nil
	}
	return strconv.ParseBool(s)
}
