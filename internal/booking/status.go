// Package booking holds the framework-free core of the seat booking screen:
// seat status derivation, the pending selection and the submission flow.
package booking

import "kinobilet/internal/models"

// SeatStatus is the display state of one seat cell. It is derived, never stored.
type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatSelected  SeatStatus = "selected"
	SeatBooked    SeatStatus = "booked"
)

// Status maps a 0-based grid cell to its display state.
// Cell (row, column) is seat {row+1, column+1}. Booked wins over selected, selected over available.
func Status(row, column int, booked, selected []models.Seat) SeatStatus {
	seat := models.Seat{RowNumber: row + 1, SeatNumber: column + 1}

	if containsSeat(booked, seat) {
		return SeatBooked
	}
	if containsSeat(selected, seat) {
		return SeatSelected
	}
	return SeatAvailable
}

// IsDisabled reports whether a cell is non-interactive.
// Unauthenticated visitors may look at the grid but cannot start a selection.
func IsDisabled(status SeatStatus, authorized bool) bool {
	return status == SeatBooked || (!authorized && status == SeatAvailable)
}

func containsSeat(seats []models.Seat, seat models.Seat) bool {
	for _, s := range seats {
		if s == seat {
			return true
		}
	}
	return false
}

// Cell is one rendered seat of the grid.
type Cell struct {
	RowNumber  int        `json:"rowNumber"`
	SeatNumber int        `json:"seatNumber"`
	Status     SeatStatus `json:"status"`
	Disabled   bool       `json:"disabled"`
}

// Grid is the render-ready seat map of a session.
type Grid struct {
	Rows        int      `json:"rows"`
	SeatsPerRow int      `json:"seatsPerRow"`
	Cells       [][]Cell `json:"cells"`
}

// BuildGrid evaluates Status and IsDisabled for every cell of the session grid.
func BuildGrid(session *models.Session, selected []models.Seat, authorized bool) Grid {
	grid := Grid{
		Rows:        session.Seats.Rows,
		SeatsPerRow: session.Seats.SeatsPerRow,
		Cells:       make([][]Cell, 0, max(session.Seats.Rows, 0)),
	}

	for row := 0; row < session.Seats.Rows; row++ {
		cells := make([]Cell, 0, session.Seats.SeatsPerRow)
		for column := 0; column < session.Seats.SeatsPerRow; column++ {
			status := Status(row, column, session.BookedSeats, selected)
			cells = append(cells, Cell{
				RowNumber:  row + 1,
				SeatNumber: column + 1,
				Status:     status,
				Disabled:   IsDisabled(status, authorized),
			})
		}
		grid.Cells = append(grid.Cells, cells)
	}

	return grid
}

// InGrid reports whether the 1-based seat exists in the session grid.
func InGrid(session *models.Session, rowNumber, seatNumber int) bool {
	return rowNumber >= 1 && rowNumber <= session.Seats.Rows &&
		seatNumber >= 1 && seatNumber <= session.Seats.SeatsPerRow
}
