package postgres

import (
	"strconv"
	"strings"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/listing/domain"
	"github.com/google/uuid"
)

const listingColumns = `l.id, l.name, l.active, l.approved, l.street, l.city, l.state, l.zip,
	l.guests_allowed, l.bedrooms, l.bathrooms, l.weekday_price, l.weekend_price, l.cleaning_fee,
	l.pets_allowed, l.free_parking, l.category_id, l.host_id, l.photos`

// whereBuilder collects AND-ed conditions and numbers their placeholders.
type whereBuilder struct {
	conds []string
	args  []any
}

func (b *whereBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *whereBuilder) and(cond string) {
	b.conds = append(b.conds, cond)
}

func (b *whereBuilder) sql() string {
	return strings.Join(b.conds, " AND ")
}

// buildSearchQuery translates every filter of c, including availability and
// minimum rating, into one statement over listings.
func buildSearchQuery(c domain.Criteria) (string, []any) {
	b := &whereBuilder{}
	b.and("l.active AND l.approved")

	if needle, ok := c.LocationNeedle(); ok {
		p := b.arg(needle)
		b.and("(strpos(lower(l.city), " + p + ") > 0" +
			" OR strpos(lower(l.state), " + p + ") > 0" +
			" OR strpos(lower(l.city) || ', ' || lower(l.state), " + p + ") > 0" +
			" OR strpos(lower(l.name), " + p + ") > 0)")
	}
	if c.MinGuests != nil {
		b.and("l.guests_allowed >= " + b.arg(*c.MinGuests))
	}
	if c.CategoryID != nil {
		// Listings only reference uuid categories, so anything else matches nothing.
		if id, err := uuid.Parse(strings.TrimSpace(*c.CategoryID)); err == nil {
			b.and("l.category_id = " + b.arg(id.String()) + "::uuid")
		} else {
			b.and("FALSE")
		}
	}
	if c.MinPrice != nil {
		b.and("l.weekday_price >= " + b.arg(*c.MinPrice))
	}
	if c.MaxPrice != nil {
		b.and("l.weekday_price <= " + b.arg(*c.MaxPrice))
	}
	if c.MinBedrooms != nil {
		b.and("l.bedrooms >= " + b.arg(*c.MinBedrooms))
	}
	if c.MinBathrooms != nil {
		b.and("l.bathrooms >= " + b.arg(*c.MinBathrooms))
	}
	if c.PetsAllowed != nil {
		b.and("l.pets_allowed = " + b.arg(*c.PetsAllowed))
	}
	if c.FreeParking != nil {
		b.and("l.free_parking = " + b.arg(*c.FreeParking))
	}
	if in, out, ok := c.DateRange(); ok {
		pin, pout := b.arg(in), b.arg(out)
		b.and("NOT EXISTS (SELECT 1 FROM reservations r WHERE r.listing_id = l.id AND r.active AND (" +
			"(r.check_in <= " + pin + " AND " + pin + " < r.check_out)" +
			" OR (r.check_in < " + pout + " AND " + pout + " <= r.check_out)" +
			" OR (" + pin + " <= r.check_in AND r.check_out <= " + pout + ")))")
	}
	if c.MinRating != nil {
		// AVG over no rows is NULL, which fails the comparison.
		b.and("(SELECT AVG(rv.rating) FROM reviews rv WHERE rv.listing_id = l.id AND NOT rv.dispute) >= " + b.arg(*c.MinRating))
	}

	return "SELECT " + listingColumns + " FROM listings l WHERE " + b.sql(), b.args
}
