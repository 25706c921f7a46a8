package reservations

import (
	"time"

	"kinobilet/internal/models"
)

// Bucket names
const (
	BucketUnpaid   = "unpaid"
	BucketUpcoming = "upcoming"
	BucketPast     = "past"
)

// Buckets is the partition of a reservation collection into display groups.
// Expired unpaid reservations belong to none of them and are only counted.
type Buckets struct {
	Unpaid   []models.EnrichedReservation `json:"unpaid"`
	Upcoming []models.EnrichedReservation `json:"upcoming"`
	Past     []models.EnrichedReservation `json:"past"`
	Dropped  int                          `json:"-"`
}

// Classify partitions reservations, keeping input order inside every bucket.
func Classify(reservations []models.EnrichedReservation, now time.Time) Buckets {
	b := Buckets{
		Unpaid:   []models.EnrichedReservation{},
		Upcoming: []models.EnrichedReservation{},
		Past:     []models.EnrichedReservation{},
	}

	for _, res := range reservations {
		switch {
		case res.IsExpired:
			b.Dropped++
		case !res.IsPaid:
			b.Unpaid = append(b.Unpaid, res)
		case res.SessionDetail == nil || res.SessionDetail.StartTime.IsZero() || res.SessionDetail.StartTime.After(now):
			b.Upcoming = append(b.Upcoming, res)
		default:
			b.Past = append(b.Past, res)
		}
	}

	return b
}
