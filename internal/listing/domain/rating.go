package domain

import "time"

// AverageRating is the arithmetic mean of Rating over non-disputed reviews.
// ok is false when there is no such review.
func AverageRating(reviews []Review) (avg float64, ok bool) {
	var sum, n int
	for _, r := range reviews {
		if r.Dispute {
			continue
		}
		sum += r.Rating
		n++
	}
	if n == 0 {
		return 0, false
	}
	return float64(sum) / float64(n), true
}

// MeetsMinRating fails listings without qualifying reviews, whatever the threshold.
func MeetsMinRating(reviews []Review, threshold float64) bool {
	avg, ok := AverageRating(reviews)
	return ok && avg >= threshold
}

// Conflicts reports whether an active reservation overlaps the stay
// [checkIn, checkOut). Cancelled reservations never conflict.
func (r Reservation) Conflicts(checkIn, checkOut time.Time) bool {
	if !r.Active {
		return false
	}
	checkInDuring := !checkIn.Before(r.CheckIn) && checkIn.Before(r.CheckOut)
	checkOutDuring := checkOut.After(r.CheckIn) && !checkOut.After(r.CheckOut)
	contains := !checkIn.After(r.CheckIn) && !checkOut.Before(r.CheckOut)
	return checkInDuring || checkOutDuring || contains
}

// Available reports whether none of reservations blocks the stay.
func Available(reservations []Reservation, checkIn, checkOut time.Time) bool {
	for _, r := range reservations {
		if r.Conflicts(checkIn, checkOut) {
			return false
		}
	}
	return true
}
