package booking

import "kinobilet/internal/models"

// Selection is the set of pending seat picks of one booking screen.
// Order is insertion order. Not safe for concurrent use.
type Selection struct {
	seats []models.Seat
}

func NewSelection() *Selection {
	return &Selection{}
}

// Toggle flips membership of {row, seat} and reports whether it is selected afterwards.
func (s *Selection) Toggle(rowNumber, seatNumber int) bool {
	seat := models.Seat{RowNumber: rowNumber, SeatNumber: seatNumber}

	for i, picked := range s.seats {
		if picked == seat {
			s.seats = append(s.seats[:i], s.seats[i+1:]...)
			return false
		}
	}

	s.seats = append(s.seats, seat)
	return true
}

func (s *Selection) Contains(rowNumber, seatNumber int) bool {
	return containsSeat(s.seats, models.Seat{RowNumber: rowNumber, SeatNumber: seatNumber})
}

func (s *Selection) Clear() {
	s.seats = nil
}

func (s *Selection) Len() int {
	return len(s.seats)
}

// Seats returns a copy of the selection in insertion order.
func (s *Selection) Seats() []models.Seat {
	out := make([]models.Seat, len(s.seats))
	copy(out, s.seats)
	return out
}
