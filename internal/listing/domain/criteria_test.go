package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func baseListing() *Listing {
	return &Listing{
		ID:            "l-1",
		Name:          "Lakeview Cabin",
		Active:        true,
		Approved:      true,
		City:          "Austin",
		State:         "TX",
		GuestsAllowed: 4,
		Bedrooms:      2,
		Bathrooms:     1,
		WeekdayPrice:  120,
		PetsAllowed:   true,
		FreeParking:   false,
		CategoryID:    "cat-1",
	}
}

func TestCriteria_EmptyOnlyAppliesBaseGate(t *testing.T) {
	var c Criteria
	assert.True(t, c.IsEmpty())
	assert.Len(t, c.Predicates(), 1)

	l := baseListing()
	assert.True(t, c.Matches(l, nil))

	l.Active = false
	assert.False(t, c.Matches(l, nil))

	l = baseListing()
	l.Approved = false
	assert.False(t, c.Matches(l, nil))
}

func TestCriteria_InactiveNeverMatches(t *testing.T) {
	c := Criteria{
		Location:    Ptr("austin"),
		MinGuests:   Ptr(1),
		PetsAllowed: Ptr(true),
	}
	l := baseListing()
	l.Active = false
	assert.False(t, c.Matches(l, nil))
}

func TestCriteria_Location(t *testing.T) {
	tests := []struct {
		name     string
		location string
		want     bool
	}{
		{"city lower", "austin", true},
		{"city mixed case", "AuStIn", true},
		{"city substring", "aus", true},
		{"state", "tx", true},
		{"city comma state", "austin, tx", true},
		{"city comma state partial", "tin, t", true},
		{"name", "lakeview", true},
		{"surrounding whitespace is trimmed", "  Austin  ", true},
		{"whitespace only is no constraint", "   ", true},
		{"no match", "dallas", false},
		{"comma without space does not match", "austin,tx", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Criteria{Location: Ptr(tt.location)}
			assert.Equal(t, tt.want, c.Matches(baseListing(), nil))
		})
	}
}

func TestCriteria_ScalarFilters(t *testing.T) {
	tests := []struct {
		name string
		c    Criteria
		want bool
	}{
		{"guests equal", Criteria{MinGuests: Ptr(4)}, true},
		{"guests above capacity", Criteria{MinGuests: Ptr(5)}, false},
		{"category match", Criteria{CategoryID: Ptr("cat-1")}, true},
		{"category mismatch", Criteria{CategoryID: Ptr("cat-2")}, false},
		{"min price inclusive", Criteria{MinPrice: Ptr(120.0)}, true},
		{"min price above", Criteria{MinPrice: Ptr(120.01)}, false},
		{"max price inclusive", Criteria{MaxPrice: Ptr(120.0)}, true},
		{"max price below", Criteria{MaxPrice: Ptr(119.99)}, false},
		{"inverted price range", Criteria{MinPrice: Ptr(100.0), MaxPrice: Ptr(50.0)}, false},
		{"bedrooms", Criteria{MinBedrooms: Ptr(2)}, true},
		{"too few bedrooms", Criteria{MinBedrooms: Ptr(3)}, false},
		{"bathrooms", Criteria{MinBathrooms: Ptr(1)}, true},
		{"too few bathrooms", Criteria{MinBathrooms: Ptr(2)}, false},
		{"pets true", Criteria{PetsAllowed: Ptr(true)}, true},
		{"pets false", Criteria{PetsAllowed: Ptr(false)}, false},
		{"parking false", Criteria{FreeParking: Ptr(false)}, true},
		{"parking true", Criteria{FreeParking: Ptr(true)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.Matches(baseListing(), nil))
		})
	}
}

func TestCriteria_Availability(t *testing.T) {
	reservations := []Reservation{
		{ID: "r-1", ListingID: "l-1", CheckIn: day("2024-06-10"), CheckOut: day("2024-06-15"), Active: true},
		{ID: "r-2", ListingID: "l-1", CheckIn: day("2024-06-01"), CheckOut: day("2024-06-05"), Active: false},
	}
	tests := []struct {
		name     string
		in, out  string
		wantFree bool
	}{
		{"check-in during reservation", "2024-06-12", "2024-06-20", false},
		{"check-out during reservation", "2024-06-08", "2024-06-12", false},
		{"reservation inside stay", "2024-06-09", "2024-06-16", false},
		{"identical range", "2024-06-10", "2024-06-15", false},
		{"only cancelled reservation overlaps", "2024-06-01", "2024-06-05", true},
		{"back to back after", "2024-06-15", "2024-06-18", true},
		{"back to back before", "2024-06-07", "2024-06-10", true},
		{"well after", "2024-07-01", "2024-07-05", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Criteria{CheckIn: Ptr(day(tt.in)), CheckOut: Ptr(day(tt.out))}
			assert.Equal(t, tt.wantFree, c.Matches(baseListing(), reservations))
		})
	}
}

func TestCriteria_AvailabilityNeedsBothDates(t *testing.T) {
	reservations := []Reservation{
		{CheckIn: day("2024-06-10"), CheckOut: day("2024-06-15"), Active: true},
	}
	onlyIn := Criteria{CheckIn: Ptr(day("2024-06-12"))}
	onlyOut := Criteria{CheckOut: Ptr(day("2024-06-12"))}

	assert.True(t, onlyIn.Matches(baseListing(), reservations))
	assert.True(t, onlyOut.Matches(baseListing(), reservations))
	assert.True(t, onlyIn.IsEmpty())
}

func TestCriteria_MinRating(t *testing.T) {
	t.Run("disputed review is ignored", func(t *testing.T) {
		l := baseListing()
		l.Reviews = []Review{{Rating: 5}, {Rating: 1, Dispute: true}}
		assert.True(t, Criteria{MinRating: Ptr(4.0)}.Matches(l, nil))
	})
	t.Run("below threshold", func(t *testing.T) {
		l := baseListing()
		l.Reviews = []Review{{Rating: 4}, {Rating: 3}}
		assert.False(t, Criteria{MinRating: Ptr(4.0)}.Matches(l, nil))
	})
	t.Run("no reviews fails zero threshold", func(t *testing.T) {
		assert.False(t, Criteria{MinRating: Ptr(0.0)}.Matches(baseListing(), nil))
	})
	t.Run("only disputed reviews fails zero threshold", func(t *testing.T) {
		l := baseListing()
		l.Reviews = []Review{{Rating: 5, Dispute: true}}
		assert.False(t, Criteria{MinRating: Ptr(0.0)}.Matches(l, nil))
	})
}

func TestCriteria_String(t *testing.T) {
	c := Criteria{
		Location: Ptr("Austin"),
		CheckIn:  Ptr(day("2024-06-01")),
		MinPrice: Ptr(50.0),
	}
	assert.Equal(t, "location=Austin check_in=2024-06-01 min_price=50", c.String())
	assert.Equal(t, "", Criteria{}.String())
}
