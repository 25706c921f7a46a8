package errors

import "errors"

var ErrUnauthorized = errors.New("user is not authorized")
var ErrScreenNotFound = errors.New("screen not found")
var ErrReservationNotFound = errors.New("reservation not found")
var ErrPaymentInProgress = errors.New("payment is already in progress")
var ErrSeatUnavailable = errors.New("seat is not available for selection")
var ErrSeatOutOfRange = errors.New("seat is outside of the session grid")
var ErrNotLoaded = errors.New("reservations are not loaded yet")
var ErrInvalidInput = errors.New("invalid input")
var ErrMovieNotFound = errors.New("movie not found")
var ErrCinemaNotFound = errors.New("cinema not found")
