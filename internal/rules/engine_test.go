package rules

import (
	"testing"
	"time"
)

func TestEngineEmpty(t *testing.T) {
	e := NewEngine()
	if !e.Current().Empty() {
		t.Error("new engine should have an empty RuleSet")
	}
	if e.RuleCount() != 0 {
		t.Errorf("RuleCount = %d, want 0", e.RuleCount())
	}
	const u = "https://a.com/?utm_source=1"
	if got := e.Clean(u); got != u {
		t.Errorf("Clean = %q, want unchanged", got)
	}
}

func TestEngineLoadText(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	e := NewEngine(WithClock(func() time.Time { return fixed }))

	if !e.LoadText(DefaultRules) {
		t.Fatal("LoadText should report a change")
	}
	if e.LoadText(DefaultRules) {
		t.Error("loading the same text twice should not report a change")
	}
	if e.Revision() != Revision(DefaultRules) {
		t.Errorf("Revision = %s, want %s", e.Revision(), Revision(DefaultRules))
	}
	if e.Text() != DefaultRules {
		t.Error("Text should return the loaded document")
	}
	if !e.LoadedAt().Equal(fixed) {
		t.Errorf("LoadedAt = %v, want %v", e.LoadedAt(), fixed)
	}
	if e.RuleCount() != 32 {
		t.Errorf("RuleCount = %d, want 32", e.RuleCount())
	}

	got := e.Clean("https://example.com/?a=1&gclid=2#utm_source=3")
	if want := "https://example.com/?a=1"; got != want {
		t.Errorf("Clean = %q, want %q", got, want)
	}
}

func TestEngineSwap(t *testing.T) {
	e := NewEngine()
	e.LoadText("ref")
	before := e.Current()

	e.LoadText("gclid")
	after := e.Current()

	if before == after {
		t.Fatal("LoadText should install a new RuleSet")
	}
	// The old snapshot stays usable by readers that still hold it.
	if got := Clean("https://a.com/?ref=1", before); got != "https://a.com/" {
		t.Errorf("old RuleSet Clean = %q", got)
	}
	if got := e.Clean("https://a.com/?ref=1"); got != "https://a.com/?ref=1" {
		t.Errorf("new RuleSet Clean = %q", got)
	}
}

func TestEngineTrace(t *testing.T) {
	e := NewEngine()
	e.LoadText("fbclid~\ngclid~")
	got, decisions := e.Trace("https://a.com/?fbclid=1&gclid=2")
	if got != "https://a.com/" {
		t.Errorf("Trace = %q", got)
	}
	if len(decisions) != 2 {
		t.Errorf("got %d decisions, want 2", len(decisions))
	}
}

func TestEngineConcurrent(t *testing.T) {
	e := NewEngine()
	e.LoadText("ref")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			if i%2 == 0 {
				e.LoadText("ref")
			} else {
				e.LoadText("ref\ngclid")
			}
		}
	}()

	for i := 0; i < 200; i++ {
		if got := e.Clean("https://a.com/?ref=1"); got != "https://a.com/" {
			t.Fatalf("Clean = %q during reloads", got)
		}
	}
	<-done
}

func TestRevision(t *testing.T) {
	a := Revision("ref")
	if len(a) != 64 {
		t.Errorf("Revision length = %d, want 64", len(a))
	}
	if a != Revision("ref") {
		t.Error("Revision should be deterministic")
	}
	if a == Revision("ref\n") {
		t.Error("different documents should have different revisions")
	}
}
