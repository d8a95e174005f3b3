package store

import (
	"math"
	"testing"
	"time"

	"github.com/EvanBalster/perf-goblin/internal/goblin/profile"
)

func TestSQLiteStampsRunsWithInjectedClock(t *testing.T) {
	sq, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer sq.Close()

	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	sq.Now = func() time.Time { return fixed }

	p := profile.New()
	p.Collect("quality", 1, 0, 10)
	if _, err := sq.Save(p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var savedAt string
	if err := sq.db.QueryRow(`SELECT saved_at FROM profile_runs`).Scan(&savedAt); err != nil {
		t.Fatalf("querying saved_at: %v", err)
	}
	if want := fixed.UTC().Format(time.RFC3339Nano); savedAt != want {
		t.Errorf("saved_at = %q, want %q from the injected clock", savedAt, want)
	}
}

func TestSQLiteSaveLoadRoundTrip(t *testing.T) {
	sq, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer sq.Close()

	p := profile.New()
	p.Collect("shadow_quality", 2, 0, 4)
	p.Collect("shadow_quality", 2, 0, 6)
	p.Collect("shadow_quality", 2, 1, 9)
	p.Collect("draw_distance", 1, 0, 2.5)

	runID, err := sq.Save(p)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if runID == "" {
		t.Fatalf("expected a non-empty run id")
	}

	loaded, err := sq.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	orig := p.Find("shadow_quality")
	got := loaded.Find("shadow_quality")
	if got == nil {
		t.Fatalf("loaded profile missing shadow_quality")
	}
	if got.Count() != orig.Count() {
		t.Fatalf("loaded option count = %d, want %d", got.Count(), orig.Count())
	}
	for i := range orig.Options {
		if math.Abs(got.Options[i].Full.Mean-orig.Options[i].Full.Mean) > 1e-9 {
			t.Errorf("option %d mean = %v, want %v", i, got.Options[i].Full.Mean, orig.Options[i].Full.Mean)
		}
	}
	if loaded.Find("draw_distance") == nil {
		t.Errorf("loaded profile missing draw_distance")
	}
}

func TestSQLiteSaveTwiceUpdatesInPlace(t *testing.T) {
	sq, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer sq.Close()

	p := profile.New()
	p.Collect("quality", 1, 0, 10)
	if _, err := sq.Save(p); err != nil {
		t.Fatalf("first Save: %v", err)
	}

	p.Collect("quality", 1, 0, 20)
	if _, err := sq.Save(p); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	loaded, err := sq.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	task := loaded.Find("quality")
	if task == nil {
		t.Fatalf("expected quality to be loaded")
	}
	if math.Abs(task.Options[0].Full.Mean-15) > 1e-9 {
		t.Errorf("mean after two samples (10, 20) = %v, want 15", task.Options[0].Full.Mean)
	}
}

func TestSQLiteRejectsInvalidTaskID(t *testing.T) {
	sq, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer sq.Close()

	p := profile.New()
	p.Collect(`bad"id`, 1, 0, 1)
	if _, err := sq.Save(p); err == nil {
		t.Errorf("expected Save to reject a task id containing a quote")
	}
}
