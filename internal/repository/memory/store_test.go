package memory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"navexpo/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func seedEvent(t *testing.T, repo domain.EventRepository, capacity int) *domain.Event {
	t.Helper()
	now := time.Now()
	e := domain.NewEvent("Expo", "Robotics and drones", now, "10:00", "Hall A", capacity, "Alice", "org-1", now, now)
	require.NoError(t, repo.Create(context.Background(), e))
	return e
}

func TestEventRepository_ConditionalCounter(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	events := NewEventRepository(store)
	e := seedEvent(t, events, 2)

	n, err := events.TryIncrementIfBelowCapacity(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = events.TryIncrementIfBelowCapacity(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	_, err = events.TryIncrementIfBelowCapacity(ctx, e.ID)
	require.ErrorIs(t, err, domain.ErrEventFull)

	n, err = events.DecrementFloorZero(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, err = events.DecrementFloorZero(ctx, e.ID)
	require.NoError(t, err)
	_, err = events.DecrementFloorZero(ctx, e.ID)
	require.ErrorIs(t, err, domain.ErrCounterUnderflow)

	_, err = events.TryIncrementIfBelowCapacity(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEventRepository_ConcurrentIncrementsNeverExceedCapacity(t *testing.T) {
	store := NewStore()
	events := NewEventRepository(store)
	e := seedEvent(t, events, 7)

	var admitted atomic.Int32
	var g errgroup.Group
	for range 50 {
		g.Go(func() error {
			_, err := events.TryIncrementIfBelowCapacity(context.Background(), e.ID)
			if errors.Is(err, domain.ErrEventFull) {
				return nil
			}
			if err == nil {
				admitted.Add(1)
			}
			return err
		})
	}
	require.NoError(t, g.Wait())

	got, err := events.GetByID(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(7), admitted.Load())
	assert.Equal(t, 7, got.AttendeeCount)
}

func TestEventRepository_ReplaceKeepsCounterAndOwner(t *testing.T) {
	ctx := context.Background()
	events := NewEventRepository(NewStore())
	e := seedEvent(t, events, 5)
	_, err := events.TryIncrementIfBelowCapacity(ctx, e.ID)
	require.NoError(t, err)

	replacement := &domain.Event{ID: e.ID, Title: "Renamed", Capacity: 1, AttendeeCount: 99, OrganizerID: "intruder"}
	require.NoError(t, events.Replace(ctx, replacement))
	assert.Equal(t, 1, replacement.AttendeeCount)

	got, err := events.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, 1, got.AttendeeCount)
	assert.Equal(t, "org-1", got.OrganizerID)

	require.ErrorIs(t, events.Replace(ctx, &domain.Event{ID: "missing"}), domain.ErrNotFound)
}

func TestEventRepository_SearchIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	events := NewEventRepository(NewStore())
	seedEvent(t, events, 5)

	for _, term := range []string{"expo", "DRONES", "hall a"} {
		got, err := events.Search(ctx, term)
		require.NoError(t, err)
		assert.Len(t, got, 1, term)
	}
	got, err := events.Search(ctx, "marathon")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEventRepository_ListPaginates(t *testing.T) {
	ctx := context.Background()
	events := NewEventRepository(NewStore())
	for range 5 {
		seedEvent(t, events, 1)
	}

	page, total, err := events.List(ctx, domain.PaginationParams{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, page, 2)

	page, _, err = events.List(ctx, domain.PaginationParams{Page: 3, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestAttendeeRepository_UniquePerEventEmail(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	events := NewEventRepository(store)
	attendees := NewAttendeeRepository(store)
	e1 := seedEvent(t, events, 5)
	e2 := seedEvent(t, events, 5)

	require.NoError(t, attendees.Create(ctx, &domain.Attendee{EventID: e1.ID, Email: "a@x.com"}))
	err := attendees.Create(ctx, &domain.Attendee{EventID: e1.ID, Email: " A@X.com"})
	require.ErrorIs(t, err, domain.ErrDuplicateRegistration)
	// same email on another event is fine
	require.NoError(t, attendees.Create(ctx, &domain.Attendee{EventID: e2.ID, Email: "a@x.com"}))

	err = attendees.Create(ctx, &domain.Attendee{EventID: "missing", Email: "a@x.com"})
	require.ErrorIs(t, err, domain.ErrNotFound)

	found, err := attendees.GetByEventAndEmail(ctx, e1.ID, "A@x.com")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", found.Email)

	counter, roster, err := events.CounterSnapshot(ctx, e1.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, counter)
	assert.Equal(t, 1, roster)
}

func TestAttendeeRepository_DeleteIsScopedToEvent(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	events := NewEventRepository(store)
	attendees := NewAttendeeRepository(store)
	e1 := seedEvent(t, events, 5)
	e2 := seedEvent(t, events, 5)

	a := &domain.Attendee{EventID: e1.ID, Email: "a@x.com"}
	require.NoError(t, attendees.Create(ctx, a))

	require.ErrorIs(t, attendees.Delete(ctx, e2.ID, a.ID), domain.ErrNotFound)
	require.NoError(t, attendees.Delete(ctx, e1.ID, a.ID))
	require.ErrorIs(t, attendees.Delete(ctx, e1.ID, a.ID), domain.ErrNotFound)

	// the email is free again
	require.NoError(t, attendees.Create(ctx, &domain.Attendee{EventID: e1.ID, Email: "a@x.com"}))
}

func TestEventRepository_DeleteCascadesAttendees(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	events := NewEventRepository(store)
	attendees := NewAttendeeRepository(store)
	e := seedEvent(t, events, 5)
	a := &domain.Attendee{EventID: e.ID, Email: "a@x.com"}
	require.NoError(t, attendees.Create(ctx, a))

	require.NoError(t, events.Delete(ctx, e.ID))
	_, err := attendees.GetByID(ctx, a.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.ErrorIs(t, events.Delete(ctx, e.ID), domain.ErrNotFound)
}

func TestStore_ExpiredContextIsTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), -time.Second)
	defer cancel()

	_, err := NewEventRepository(NewStore()).GetByID(ctx, "ev-1")
	require.ErrorIs(t, err, domain.ErrTimeout)
	assert.True(t, domain.IsTransient(err))
}

func TestUserRepository_EmailUnique(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepository(NewStore())
	now := time.Now()

	u1 := domain.NewUser("A", "a@x.com", 20, domain.RoleGuest, now, now)
	u2 := domain.NewUser("B", "b@x.com", 20, domain.RoleGuest, now, now)
	require.NoError(t, users.Create(ctx, u1))
	require.NoError(t, users.Create(ctx, u2))
	require.ErrorIs(t, users.Create(ctx, domain.NewUser("C", "a@x.com", 1, domain.RoleGuest, now, now)), domain.ErrDuplicateEmail)

	u2.Email = "a@x.com"
	require.ErrorIs(t, users.Update(ctx, u2), domain.ErrDuplicateEmail)

	require.NoError(t, users.Delete(ctx, u1.ID))
	require.ErrorIs(t, users.Delete(ctx, u1.ID), domain.ErrNotFound)
}
