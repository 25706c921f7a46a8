package service

import (
	"context"
	"testing"
	"time"

	apperrors "kinobilet/internal/errors"
	"kinobilet/internal/models"
	"kinobilet/internal/reservations"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) openTickets(t *testing.T) *TicketsView {
	t.Helper()
	ctx := signedIn()

	view, err := f.services.Tickets.Open(ctx)
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, f.services.Tickets.WaitLoaded(waitCtx, view.ScreenID))

	view, err = f.services.Tickets.View(ctx, view.ScreenID)
	require.NoError(t, err)
	return view
}

func (f *fixture) seedReservations() {
	now := f.clock.Now()
	seats := []models.Seat{{RowNumber: 2, SeatNumber: 3}}

	f.api.AddReservation(models.Reservation{ID: "unpaid", MovieSessionID: 10, BookedAt: now.Add(-300 * time.Second), Seats: seats})
	f.api.AddReservation(models.Reservation{ID: "upcoming", MovieSessionID: 10, BookedAt: now.Add(-time.Hour), Seats: seats, IsPaid: true})
	f.api.AddReservation(models.Reservation{ID: "past", MovieSessionID: 12, BookedAt: now.Add(-48 * time.Hour), Seats: seats, IsPaid: true})
	f.api.AddReservation(models.Reservation{ID: "expired", MovieSessionID: 10, BookedAt: now.Add(-2000 * time.Second), Seats: seats})
	f.api.AddReservation(models.Reservation{ID: "orphan", MovieSessionID: 99, BookedAt: now.Add(-100 * time.Second), Seats: seats})
}

func sectionIDs(view *TicketsView, name string) []string {
	for _, sec := range view.Sections {
		if sec.Name != name {
			continue
		}
		out := make([]string, 0, len(sec.Tickets))
		for _, card := range sec.Tickets {
			out = append(out, card.ID)
		}
		return out
	}
	return nil
}

func findCard(view *TicketsView, id string) (TicketCard, bool) {
	for _, sec := range view.Sections {
		for _, card := range sec.Tickets {
			if card.ID == id {
				return card, true
			}
		}
	}
	return TicketCard{}, false
}

func TestTicketsRequireAuthorization(t *testing.T) {
	f := newFixture(t)

	_, err := f.services.Tickets.Open(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestTicketsLoadAndClassify(t *testing.T) {
	f := newFixture(t)
	f.seedReservations()

	view := f.openTickets(t)

	require.Equal(t, StateReady, view.State)
	assert.Equal(t, []string{"unpaid", "orphan"}, sectionIDs(view, reservations.BucketUnpaid))
	assert.Equal(t, []string{"upcoming"}, sectionIDs(view, reservations.BucketUpcoming))
	assert.Equal(t, []string{"past"}, sectionIDs(view, reservations.BucketPast))
	assert.True(t, view.CountdownRunning)

	card, ok := findCard(view, "unpaid")
	require.True(t, ok)
	assert.Equal(t, "Solaris", card.MovieTitle)
	assert.Equal(t, "Arman", card.CinemaName)
	assert.Equal(t, "10:00", card.TimeLeftText)
	assert.Equal(t, []string{"Row 2, seat 3"}, card.SeatLabels)

	orphan, ok := findCard(view, "orphan")
	require.True(t, ok)
	assert.Equal(t, "Movie #99", orphan.MovieTitle)
	assert.Equal(t, "Cinema", orphan.CinemaName)
	assert.Empty(t, orphan.TimeLeftText)
}

func TestTicketsEmptySections(t *testing.T) {
	f := newFixture(t)

	view := f.openTickets(t)

	require.Equal(t, StateReady, view.State)
	require.Len(t, view.Sections, 3)
	for _, sec := range view.Sections {
		assert.Empty(t, sec.Tickets)
		assert.Equal(t, reservations.EmptyMessage(sec.Name), sec.EmptyMessage)
	}
	assert.False(t, view.CountdownRunning)
}

func TestTicketsLoadFailure(t *testing.T) {
	f := newFixture(t)
	f.seedReservations()
	f.api.Lock()
	f.api.FailSettings = true
	f.api.Unlock()

	view := f.openTickets(t)

	assert.Equal(t, StateFailed, view.State)
	assert.Equal(t, "Internal error", view.Error)
	assert.Empty(t, view.Sections)

	_, err := f.services.Tickets.Pay(signedIn(), view.ScreenID, "unpaid")
	assert.ErrorIs(t, err, apperrors.ErrNotLoaded)
}

func TestTicketsPay(t *testing.T) {
	f := newFixture(t)
	f.seedReservations()
	view := f.openTickets(t)

	paid, err := f.services.Tickets.Pay(signedIn(), view.ScreenID, "unpaid")
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	assert.Nil(t, paid.TimeLeft)
	assert.False(t, paid.IsExpired)

	view, err = f.services.Tickets.View(signedIn(), view.ScreenID)
	require.NoError(t, err)
	assert.Equal(t, []string{"orphan"}, sectionIDs(view, reservations.BucketUnpaid))
	assert.Equal(t, []string{"unpaid", "upcoming"}, sectionIDs(view, reservations.BucketUpcoming))

	stored, ok := f.api.Reservation("unpaid")
	require.True(t, ok)
	assert.True(t, stored.IsPaid)
	assert.Contains(t, f.publisher.subjects(), models.EventReservationPaid)

	_, err = f.services.Tickets.Pay(signedIn(), view.ScreenID, "nope")
	assert.ErrorIs(t, err, apperrors.ErrReservationNotFound)
}

func TestTicketsPayFailureKeepsCountdown(t *testing.T) {
	f := newFixture(t)
	f.seedReservations()
	view := f.openTickets(t)

	f.api.Lock()
	f.api.FailPayments = true
	f.api.Unlock()

	_, err := f.services.Tickets.Pay(signedIn(), view.ScreenID, "unpaid")
	require.Error(t, err)

	view, err = f.services.Tickets.View(signedIn(), view.ScreenID)
	require.NoError(t, err)
	card, ok := findCard(view, "unpaid")
	require.True(t, ok)
	assert.False(t, card.IsPaid)
	assert.Equal(t, "10:00", card.TimeLeftText)
	assert.True(t, view.CountdownRunning)
}

func TestTicketsOnePaymentInFlight(t *testing.T) {
	f := newFixture(t)
	f.seedReservations()
	view := f.openTickets(t)

	gate := make(chan struct{})
	f.api.Lock()
	f.api.PaymentGate = gate
	f.api.Unlock()

	done := make(chan error, 1)
	go func() {
		_, err := f.services.Tickets.Pay(signedIn(), view.ScreenID, "unpaid")
		done <- err
	}()

	require.Eventually(t, func() bool {
		return f.api.Calls("POST /bookings/:id/payments") == 1
	}, 2*time.Second, 5*time.Millisecond)

	_, err := f.services.Tickets.Pay(signedIn(), view.ScreenID, "orphan")
	assert.ErrorIs(t, err, apperrors.ErrPaymentInProgress)

	close(gate)
	require.NoError(t, <-done)
}

func TestTicketsCountdownExpiresReservation(t *testing.T) {
	f := newFixture(t)
	f.api.AddReservation(models.Reservation{
		ID: "last-second", MovieSessionID: 10, BookedAt: f.clock.Now().Add(-899 * time.Second),
	})
	view := f.openTickets(t)
	require.Equal(t, []string{"last-second"}, sectionIDs(view, reservations.BucketUnpaid))

	f.clock.Advance(reservations.TickInterval)

	require.Eventually(t, func() bool {
		v, err := f.services.Tickets.View(context.Background(), view.ScreenID)
		return err == nil && len(sectionIDs(v, reservations.BucketUnpaid)) == 0 && !v.CountdownRunning
	}, 2*time.Second, 5*time.Millisecond)
	assert.Contains(t, f.publisher.subjects(), models.EventReservationExpired)
}

func TestTicketsClose(t *testing.T) {
	f := newFixture(t)
	f.seedReservations()
	view := f.openTickets(t)

	require.NoError(t, f.services.Tickets.Close(view.ScreenID))

	_, err := f.services.Tickets.View(signedIn(), view.ScreenID)
	assert.ErrorIs(t, err, apperrors.ErrScreenNotFound)
	assert.ErrorIs(t, f.services.Tickets.Close(view.ScreenID), apperrors.ErrScreenNotFound)
}

func TestTicketsCloseWhileLoading(t *testing.T) {
	f := newFixture(t)
	f.seedReservations()

	gate := make(chan struct{})
	f.api.Lock()
	f.api.ReservationsGate = gate
	f.api.Unlock()

	view, err := f.services.Tickets.Open(signedIn())
	require.NoError(t, err)
	assert.Equal(t, StateLoading, view.State)

	screen, err := f.services.Tickets.screens.get(view.ScreenID)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return f.api.Calls("GET /me/bookings") == 1
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, f.services.Tickets.Close(view.ScreenID))
	close(gate)

	select {
	case <-screen.loaded:
	case <-time.After(5 * time.Second):
		t.Fatal("load did not finish after close")
	}

	state, loadErr := screen.status()
	assert.Equal(t, StateLoading, state)
	assert.Empty(t, loadErr)
	assert.False(t, screen.countdown.Running())
	assert.Empty(t, screen.countdown.Snapshot())

	f.clock.Advance(5 * time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, screen.countdown.Snapshot())
	assert.NotContains(t, f.publisher.subjects(), models.EventReservationExpired)
}

func TestTicketsPaymentFinishingAfterClose(t *testing.T) {
	f := newFixture(t)
	f.seedReservations()
	view := f.openTickets(t)

	screen, err := f.services.Tickets.screens.get(view.ScreenID)
	require.NoError(t, err)

	gate := make(chan struct{})
	f.api.Lock()
	f.api.PaymentGate = gate
	f.api.Unlock()

	done := make(chan error, 1)
	go func() {
		_, err := f.services.Tickets.Pay(signedIn(), view.ScreenID, "unpaid")
		done <- err
	}()

	require.Eventually(t, func() bool {
		return f.api.Calls("POST /bookings/:id/payments") == 1
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, f.services.Tickets.Close(view.ScreenID))
	close(gate)
	require.NoError(t, <-done)

	assert.False(t, screen.countdown.Running())

	f.clock.Advance(2000 * time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.False(t, screen.countdown.Running())
	assert.NotContains(t, f.publisher.subjects(), models.EventReservationExpired)
}
