package reservations

import (
	"log/slog"
	"sync"
	"time"

	"kinobilet/internal/models"

	"github.com/jonboulle/clockwork"
)

// TickInterval is the countdown cadence.
const TickInterval = time.Second

// Tick advances the payment countdown of a collection by one second.
// Unpaid reservations with a defined TimeLeft lose one second (floored at zero) and expire at zero;
// everything else passes through. Expired unpaid reservations are dropped from the result.
func Tick(reservations []models.EnrichedReservation) []models.EnrichedReservation {
	out := make([]models.EnrichedReservation, 0, len(reservations))

	for _, res := range reservations {
		if !res.IsPaid && res.TimeLeft != nil {
			left := *res.TimeLeft - 1
			if left < 0 {
				left = 0
			}
			res.TimeLeft = &left
			res.IsExpired = left <= 0
		}

		if res.IsExpired && !res.IsPaid {
			continue
		}
		out = append(out, res)
	}

	return out
}

// expiredBy returns the reservations present in before but dropped by Tick.
func expiredBy(before, after []models.EnrichedReservation) []models.EnrichedReservation {
	if len(before) == len(after) {
		return nil
	}

	kept := make(map[string]struct{}, len(after))
	for _, res := range after {
		kept[res.ID] = struct{}{}
	}

	var expired []models.EnrichedReservation
	for _, res := range before {
		if _, ok := kept[res.ID]; !ok {
			zero := 0
			res.TimeLeft = &zero
			res.IsExpired = true
			expired = append(expired, res)
		}
	}
	return expired
}

func hasUnpaid(reservations []models.EnrichedReservation) bool {
	for _, res := range reservations {
		if !res.IsPaid {
			return true
		}
	}
	return false
}

// Countdown owns the reservation collection of one tickets screen and ticks it once per second
// while at least one reservation is unpaid. It is idle otherwise.
// Stop tears it down for good: no tick changes the collection after Stop returns.
type Countdown struct {
	clock    clockwork.Clock
	onExpire func(models.EnrichedReservation)

	mu           sync.Mutex
	reservations []models.EnrichedReservation
	running      bool
	stopped      bool
	generation   uint64
	done         chan struct{}

	wg sync.WaitGroup
}

func NewCountdown(clock clockwork.Clock) *Countdown {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Countdown{clock: clock}
}

// OnExpire registers a hook called, outside the lock, for every reservation dropped by a tick.
func (c *Countdown) OnExpire(fn func(models.EnrichedReservation)) {
	c.mu.Lock()
	c.onExpire = fn
	c.mu.Unlock()
}

// Set replaces the collection and starts ticking when it holds an unpaid reservation.
func (c *Countdown) Set(reservations []models.EnrichedReservation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}

	c.reservations = append([]models.EnrichedReservation(nil), reservations...)
	c.reconcileLocked()
}

// Snapshot returns a copy of the current collection.
func (c *Countdown) Snapshot() []models.EnrichedReservation {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]models.EnrichedReservation(nil), c.reservations...)
}

// MarkPaid patches a reservation after a successful payment call.
// It returns false when the reservation is no longer in the collection.
// After Stop the record is still patched but the tick stays off.
func (c *Countdown) MarkPaid(id string) (models.EnrichedReservation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.reservations {
		if c.reservations[i].ID != id {
			continue
		}
		c.reservations[i].IsPaid = true
		c.reservations[i].TimeLeft = nil
		c.reservations[i].IsExpired = false
		paid := c.reservations[i]
		c.reconcileLocked()
		return paid, true
	}

	return models.EnrichedReservation{}, false
}

// Find returns a reservation of the collection by id.
func (c *Countdown) Find(id string) (models.EnrichedReservation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, res := range c.reservations {
		if res.ID == id {
			return res, true
		}
	}
	return models.EnrichedReservation{}, false
}

// Running reports whether the recurring tick is active.
func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Stop cancels the recurring tick and waits for it to exit.
func (c *Countdown) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	c.haltLocked()
	c.mu.Unlock()

	c.wg.Wait()
}

// reconcileLocked moves between idle and running based on the collection.
// Expired unpaid reservations keep the tick alive until it drops them.
// A stopped countdown never starts again.
func (c *Countdown) reconcileLocked() {
	if c.stopped {
		return
	}

	shouldRun := hasUnpaid(c.reservations)

	switch {
	case shouldRun && !c.running:
		c.startLocked()
	case !shouldRun && c.running:
		c.haltLocked()
	}
}

func (c *Countdown) startLocked() {
	c.generation++
	c.running = true
	c.done = make(chan struct{})

	ticker := c.clock.NewTicker(TickInterval)
	c.wg.Add(1)
	go c.loop(ticker, c.done, c.generation)

	slog.Debug("Countdown started", "reservations", len(c.reservations))
}

func (c *Countdown) haltLocked() {
	if !c.running {
		return
	}
	c.running = false
	close(c.done)

	slog.Debug("Countdown stopped")
}

func (c *Countdown) loop(ticker clockwork.Ticker, done <-chan struct{}, generation uint64) {
	defer c.wg.Done()
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.Chan():
			if !c.tick(generation) {
				return
			}
		}
	}
}

// tick applies one Tick to the collection; it reports whether the loop should keep going.
func (c *Countdown) tick(generation uint64) bool {
	c.mu.Lock()
	if c.stopped || !c.running || c.generation != generation {
		c.mu.Unlock()
		return false
	}

	before := c.reservations
	c.reservations = Tick(before)
	expired := expiredBy(before, c.reservations)

	if !hasUnpaid(c.reservations) {
		c.haltLocked()
	}
	running := c.running
	hook := c.onExpire
	c.mu.Unlock()

	for _, res := range expired {
		slog.Info("Reservation payment window elapsed",
			"reservation_id", res.ID,
			"movie_session_id", res.MovieSessionID,
			"booked_at", res.BookedAt)
		if hook != nil {
			hook(res)
		}
	}

	return running
}
