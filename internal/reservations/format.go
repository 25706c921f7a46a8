package reservations

import "fmt"

// FormatTimeLeft renders seconds as m:ss.
func FormatTimeLeft(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// SeatLabel renders a seat for ticket cards.
func SeatLabel(rowNumber, seatNumber int) string {
	return fmt.Sprintf("Row %d, seat %d", rowNumber, seatNumber)
}

// EmptyMessage is shown for a bucket without reservations.
func EmptyMessage(bucket string) string {
	switch bucket {
	case BucketUnpaid:
		return "No unpaid tickets"
	case BucketUpcoming:
		return "You have no upcoming sessions"
	case BucketPast:
		return "You have no past sessions yet"
	default:
		return "No data"
	}
}
