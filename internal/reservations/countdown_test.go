package reservations

import (
	"sync"
	"testing"
	"time"

	"kinobilet/internal/models"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unpaid(id string, left int) models.EnrichedReservation {
	return models.EnrichedReservation{
		Reservation: models.Reservation{ID: id},
		TimeLeft:    &left,
		IsExpired:   left <= 0,
	}
}

func paid(id string) models.EnrichedReservation {
	return models.EnrichedReservation{Reservation: models.Reservation{ID: id, IsPaid: true}}
}

func timeLeftOf(list []models.EnrichedReservation, id string) (int, bool) {
	for _, res := range list {
		if res.ID == id && res.TimeLeft != nil {
			return *res.TimeLeft, true
		}
	}
	return 0, false
}

const (
	waitFor = time.Second
	pollIn  = 5 * time.Millisecond
)

func TestTick(t *testing.T) {
	out := Tick([]models.EnrichedReservation{
		unpaid("a", 10),
		paid("b"),
		unpaid("c", 1),
		{Reservation: models.Reservation{ID: "fallback"}},
	})

	require.Equal(t, []string{"a", "b", "fallback"}, ids(out))
	assert.Equal(t, 9, *out[0].TimeLeft)
	assert.False(t, out[0].IsExpired)
	assert.Nil(t, out[1].TimeLeft)
	assert.Nil(t, out[2].TimeLeft)
}

func TestTickZeroExpires(t *testing.T) {
	out := Tick([]models.EnrichedReservation{unpaid("a", 0)})
	assert.Empty(t, out)
}

func TestTickIsMonotonic(t *testing.T) {
	list := []models.EnrichedReservation{unpaid("a", 5)}
	prev := 5
	for i := 0; i < 4; i++ {
		list = Tick(list)
		require.Len(t, list, 1)
		assert.Less(t, *list[0].TimeLeft, prev)
		prev = *list[0].TimeLeft
	}
	assert.Empty(t, Tick(list))
}

func TestTickDoesNotMutateInput(t *testing.T) {
	in := []models.EnrichedReservation{unpaid("a", 3)}
	_ = Tick(in)
	assert.Equal(t, 3, *in[0].TimeLeft)
}

func TestCountdownIdleWhenAllPaid(t *testing.T) {
	cd := NewCountdown(clockwork.NewFakeClockAt(testNow))
	defer cd.Stop()

	cd.Set([]models.EnrichedReservation{paid("a"), paid("b")})
	assert.False(t, cd.Running())

	cd.Set(nil)
	assert.False(t, cd.Running())
}

func TestCountdownTicksAndDropsExpired(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testNow)
	cd := NewCountdown(clock)
	defer cd.Stop()

	var (
		mu      sync.Mutex
		expired []models.EnrichedReservation
	)
	cd.OnExpire(func(res models.EnrichedReservation) {
		mu.Lock()
		defer mu.Unlock()
		expired = append(expired, res)
	})

	cd.Set([]models.EnrichedReservation{unpaid("a", 2), paid("b")})
	require.True(t, cd.Running())

	clock.Advance(TickInterval)
	require.Eventually(t, func() bool {
		left, ok := timeLeftOf(cd.Snapshot(), "a")
		return ok && left == 1
	}, waitFor, pollIn)

	clock.Advance(TickInterval)
	require.Eventually(t, func() bool {
		return len(cd.Snapshot()) == 1
	}, waitFor, pollIn)

	assert.Equal(t, []string{"b"}, ids(cd.Snapshot()))
	assert.Eventually(t, func() bool { return !cd.Running() }, waitFor, pollIn)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, expired, 1)
	assert.Equal(t, "a", expired[0].ID)
	assert.True(t, expired[0].IsExpired)
	assert.Equal(t, 0, *expired[0].TimeLeft)
}

func TestCountdownRemovesAlreadyExpiredOnNextTick(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testNow)
	cd := NewCountdown(clock)
	defer cd.Stop()

	cd.Set([]models.EnrichedReservation{unpaid("gone", 0), paid("kept")})
	require.True(t, cd.Running())
	assert.Len(t, cd.Snapshot(), 2)

	clock.Advance(TickInterval)
	require.Eventually(t, func() bool {
		return len(cd.Snapshot()) == 1
	}, waitFor, pollIn)
	assert.Equal(t, []string{"kept"}, ids(cd.Snapshot()))
}

func TestCountdownMarkPaidGoesIdle(t *testing.T) {
	cd := NewCountdown(clockwork.NewFakeClockAt(testNow))
	defer cd.Stop()

	cd.Set([]models.EnrichedReservation{unpaid("a", 100), paid("b")})
	require.True(t, cd.Running())

	res, ok := cd.MarkPaid("a")
	require.True(t, ok)
	assert.True(t, res.IsPaid)
	assert.Nil(t, res.TimeLeft)
	assert.False(t, cd.Running())

	found, ok := cd.Find("a")
	require.True(t, ok)
	assert.True(t, found.IsPaid)

	_, ok = cd.MarkPaid("missing")
	assert.False(t, ok)
}

func TestCountdownStopHaltsTicks(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testNow)
	cd := NewCountdown(clock)

	cd.Set([]models.EnrichedReservation{unpaid("a", 50)})
	require.True(t, cd.Running())

	cd.Stop()
	assert.False(t, cd.Running())

	clock.Advance(5 * TickInterval)
	time.Sleep(20 * time.Millisecond)

	left, ok := timeLeftOf(cd.Snapshot(), "a")
	require.True(t, ok)
	assert.Equal(t, 50, left)

	cd.Set([]models.EnrichedReservation{unpaid("b", 5)})
	assert.False(t, cd.Running())
	cd.Stop()
}

func TestCountdownMarkPaidAfterStopStaysStopped(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testNow)
	cd := NewCountdown(clock)

	var mu sync.Mutex
	expired := 0
	cd.OnExpire(func(models.EnrichedReservation) {
		mu.Lock()
		expired++
		mu.Unlock()
	})

	cd.Set([]models.EnrichedReservation{unpaid("a", 100), unpaid("b", 2)})
	require.True(t, cd.Running())
	cd.Stop()

	res, ok := cd.MarkPaid("a")
	require.True(t, ok)
	assert.True(t, res.IsPaid)
	assert.False(t, cd.Running())

	clock.Advance(3 * TickInterval)
	time.Sleep(20 * time.Millisecond)

	assert.False(t, cd.Running())
	snapshot := cd.Snapshot()
	assert.Len(t, snapshot, 2)
	left, ok := timeLeftOf(snapshot, "b")
	require.True(t, ok)
	assert.Equal(t, 2, left)

	mu.Lock()
	assert.Zero(t, expired)
	mu.Unlock()
}

func TestCountdownFallbackKeepsTicking(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testNow)
	cd := NewCountdown(clock)
	defer cd.Stop()

	cd.Set([]models.EnrichedReservation{Fallback(models.Reservation{ID: "f", MovieSessionID: 4})})
	require.True(t, cd.Running())

	clock.Advance(TickInterval)
	clock.Advance(TickInterval)
	time.Sleep(20 * time.Millisecond)

	snap := cd.Snapshot()
	require.Len(t, snap, 1)
	assert.Nil(t, snap[0].TimeLeft)
	assert.True(t, cd.Running())
}
