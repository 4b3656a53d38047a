package runid

import (
	"testing"
	"time"
)

func TestNextIsMonotonic(t *testing.T) {
	g := New()
	now := time.Now()

	prev := g.Next(now)
	for i := 0; i < 100; i++ {
		id := g.Next(now)
		if id <= prev {
			t.Fatalf("ids should increase: %s <= %s", id, prev)
		}
		prev = id
	}
}

func TestTimeRoundTrip(t *testing.T) {
	g := New()
	stamp := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

	got, err := Time(g.Next(stamp))
	if err != nil {
		t.Fatalf("Time: %v", err)
	}
	if !got.Equal(stamp) {
		t.Errorf("Time = %v, want %v", got, stamp)
	}
}

func TestTimeRejectsGarbage(t *testing.T) {
	if _, err := Time("not-a-ulid"); err == nil {
		t.Error("Expected error for invalid id")
	}
}
