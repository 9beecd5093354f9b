package app

import (
	"fmt"
	"testing"
	"time"

	"teeup/pkg/domain"
	"teeup/pkg/realtime"
	"teeup/pkg/store"
)

// newTestApp builds an app over the in-memory store with deterministic ids
// and a clock that ticks one second per observation, so join order and
// timestamps are stable.
func newTestApp(t *testing.T) (*App, *store.MemoryStore, *realtime.MemoryBroker) {
	t.Helper()
	st := store.NewMemoryStore()
	broker := realtime.NewMemoryBroker()
	seq := 0
	clock := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	a := New(st, broker, Options{
		NewID: func() string {
			seq++
			return fmt.Sprintf("id-%03d", seq)
		},
		Now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
	})
	return a, st, broker
}

func seedProfile(t *testing.T, st *store.MemoryStore, id, name string) domain.Profile {
	t.Helper()
	p := domain.Profile{ID: id, UserID: "user-" + id, Name: name, Handicap: 18}
	if err := st.SaveProfile(p); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return p
}

func seedCourse(t *testing.T, st *store.MemoryStore, id, name string) domain.Course {
	t.Helper()
	c := domain.Course{ID: id, Name: name, Location: "Surrey", Holes: 18, Par: 72}
	if err := st.SaveCourse(c); err != nil {
		t.Fatalf("seed course: %v", err)
	}
	return c
}

func validRoundInput(courseID string) CreateRoundInput {
	return CreateRoundInput{
		CourseID:      courseID,
		Date:          "2030-06-15",
		Time:          "09:30",
		Format:        domain.FormatStrokePlay,
		PlayersNeeded: 4,
	}
}
