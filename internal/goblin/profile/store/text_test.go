package store

import (
	"math"
	"strings"
	"testing"

	"github.com/EvanBalster/perf-goblin/internal/goblin/profile"
)

func TestValidateID(t *testing.T) {
	if err := ValidateID("shadow_quality"); err != nil {
		t.Errorf("expected a plain id to validate, got %v", err)
	}
	if err := ValidateID(`has"quote`); err == nil {
		t.Errorf("expected an id containing a quote to be rejected")
	}
	if err := ValidateID("has\ncontrol"); err == nil {
		t.Errorf("expected an id containing a control character to be rejected")
	}
}

func TestEncodeDecodeTextRoundTrip(t *testing.T) {
	p := profile.New()
	p.Collect("shadow_quality", 2, 0, 4)
	p.Collect("shadow_quality", 2, 0, 6)
	p.Collect("shadow_quality", 2, 1, 10)
	p.Collect("draw_distance", 1, 0, 1.5)

	text, err := EncodeText(p)
	if err != nil {
		t.Fatalf("EncodeText: %v", err)
	}
	if !strings.Contains(text, `"shadow_quality"`) || !strings.Contains(text, `"draw_distance"`) {
		t.Fatalf("encoded text missing expected ids:\n%s", text)
	}

	decoded, err := DecodeText(text)
	if err != nil {
		t.Fatalf("DecodeText: %v", err)
	}

	orig := p.Find("shadow_quality")
	got := decoded.Find("shadow_quality")
	if got == nil {
		t.Fatalf("decoded profile missing shadow_quality")
	}
	if got.Count() != orig.Count() {
		t.Fatalf("decoded option count = %d, want %d", got.Count(), orig.Count())
	}
	for i := range orig.Options {
		if math.Abs(got.Options[i].Full.Mean-orig.Options[i].Full.Mean) > 1e-9 {
			t.Errorf("option %d mean = %v, want %v", i, got.Options[i].Full.Mean, orig.Options[i].Full.Mean)
		}
		if math.Abs(got.Options[i].Full.Count()-orig.Options[i].Full.Count()) > 1e-6 {
			t.Errorf("option %d count = %v, want %v", i, got.Options[i].Full.Count(), orig.Options[i].Full.Count())
		}
		if math.Abs(got.Options[i].Full.Variance()-orig.Options[i].Full.Variance()) > 1e-6 {
			t.Errorf("option %d variance = %v, want %v", i, got.Options[i].Full.Variance(), orig.Options[i].Full.Variance())
		}
	}

	if decoded.Find("shadow_quality").Options[0].Recent.Count() != 0 {
		t.Errorf("a freshly decoded profile's Recent accumulators should start empty")
	}
}

func TestEncodeTextRejectsInvalidID(t *testing.T) {
	p := profile.New()
	p.Collect(`bad"id`, 1, 0, 1)
	if _, err := EncodeText(p); err == nil {
		t.Errorf("expected EncodeText to reject a task id containing a quote")
	}
}

func TestDecodeTextRejectsMalformedLines(t *testing.T) {
	if _, err := DecodeText("not a quoted id\n"); err == nil {
		t.Errorf("expected an error for a line missing the quoted id")
	}
	if _, err := DecodeText(`"task" 1,2` + "\n"); err == nil {
		t.Errorf("expected an error for a malformed count,mean,stddev triple")
	}
}

func TestDecodeTextIgnoresBlankLines(t *testing.T) {
	p, err := DecodeText("\n\n\"task\" 3,4,1\n\n")
	if err != nil {
		t.Fatalf("DecodeText: %v", err)
	}
	if p.Find("task") == nil {
		t.Fatalf("expected task to be parsed despite surrounding blank lines")
	}
}
