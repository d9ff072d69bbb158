package transcript

import (
	"testing"

	"github.com/podscript/podscript-cli/internals/schemas"
)

func seg(text string) schemas.Segment {
	return schemas.Segment{Text: text}
}

func TestAdvanceSurfacesOnlyNewSegments(t *testing.T) {
	s := NewStream()

	fresh := s.Advance([]schemas.Segment{seg("a"), seg("b")})
	if len(fresh) != 2 {
		t.Fatalf("expected 2 new segments, got %d", len(fresh))
	}

	fresh = s.Advance([]schemas.Segment{seg("a"), seg("b"), seg("c")})
	if len(fresh) != 1 || fresh[0].Text != "c" {
		t.Fatalf("expected only the suffix, got %v", fresh)
	}
	if s.Displayed() != 3 {
		t.Fatalf("expected 3 displayed, got %d", s.Displayed())
	}
}

func TestAdvanceSameSnapshotTwiceYieldsNothing(t *testing.T) {
	s := NewStream()
	snapshot := []schemas.Segment{seg("a"), seg("b")}

	s.Advance(snapshot)
	if fresh := s.Advance(snapshot); fresh != nil {
		t.Fatalf("expected no delta on repeated snapshot, got %v", fresh)
	}
	if s.Displayed() != 2 {
		t.Fatalf("displayed count moved on a repeated snapshot")
	}
}

func TestAdvanceIgnoresShorterSnapshot(t *testing.T) {
	s := NewStream()
	s.Advance([]schemas.Segment{seg("a"), seg("b"), seg("c")})

	if fresh := s.Advance([]schemas.Segment{seg("a")}); fresh != nil {
		t.Fatalf("shorter snapshot must be treated as stale, got %v", fresh)
	}
	if len(s.Segments()) != 3 {
		t.Fatalf("already rendered segments were discarded")
	}
}

func TestAdvanceEmptySnapshot(t *testing.T) {
	s := NewStream()
	if fresh := s.Advance(nil); fresh != nil {
		t.Fatalf("expected nothing from an empty snapshot, got %v", fresh)
	}
}

func TestResetClearsState(t *testing.T) {
	s := NewStream()
	s.Advance([]schemas.Segment{seg("a")})
	s.Reset()

	if s.Displayed() != 0 || len(s.Segments()) != 0 {
		t.Fatalf("expected empty stream after reset")
	}
	if fresh := s.Advance([]schemas.Segment{seg("x")}); len(fresh) != 1 {
		t.Fatalf("expected reset stream to render from scratch")
	}
}
