package deck

import (
	"testing"
	"time"
)

func mustCard(t *testing.T, s string) Card {
	t.Helper()
	c, err := ParseCard(s)
	if err != nil {
		t.Fatalf("ParseCard(%q) err: %v", s, err)
	}
	return c
}

func TestParseCard(t *testing.T) {
	c := mustCard(t, "c7-Spades-10-none-foil-gold")
	want := Card{ID: "c7", Suit: "S", Rank: "T", Enhancement: "none", Edition: "foil", Seal: "gold"}
	if c != want {
		t.Errorf("got %+v, want %+v", c, want)
	}
	if c.String() != "c7-S-T-none-foil-gold" {
		t.Errorf("String = %q", c.String())
	}

	if _, err := ParseCard("c1-S-2-none"); err == nil {
		t.Error("expected error for short card string")
	}
}

func TestDeckStringRoundTrip(t *testing.T) {
	in := "c1-S-A-none-none-none|c2-H-T-mult-none-red|c3-D-3-none-foil-none"
	d, err := Parse(in)
	if err != nil {
		t.Fatalf("Parse err: %v", err)
	}
	if got := d.String(); got != in {
		t.Errorf("String = %q, want %q", got, in)
	}
}

func TestMergeAddThenRemove(t *testing.T) {
	a := mustCard(t, "c1-S-A-none-none-none")

	// Removal wins over addition in either submission order.
	for _, reversed := range []bool{false, true} {
		d := &Deck{}
		add := Action{Type: ActionAdd, Card: a, Time: time.Unix(1, 0)}
		rem := Action{Type: ActionRemove, CardRef: "c1", Time: time.Unix(2, 0)}
		if reversed {
			d.Stage(rem)
			d.Stage(add)
		} else {
			d.Stage(add)
			d.Stage(rem)
		}
		d.ApplyPending()
		if len(d.Cards) != 0 {
			t.Errorf("reversed=%v: deck should exclude the card, got %v", reversed, d.Cards)
		}
	}
}

func TestMergeChangeLastTimestampWins(t *testing.T) {
	c := mustCard(t, "c1-S-A-none-none-none")
	d := &Deck{Cards: []Card{c}}

	d.Stage(Action{Type: ActionChange, CardRef: "c1", Field: FieldSeal, Value: "red", Time: time.Unix(5, 0)})
	d.Stage(Action{Type: ActionChange, CardRef: "c1", Field: FieldSeal, Value: "gold", Time: time.Unix(3, 0)})
	d.ApplyPending()

	if d.Cards[0].Seal != "red" {
		t.Errorf("seal = %q, want later-timestamped %q", d.Cards[0].Seal, "red")
	}
}

func TestMergeRemoveBeatsChange(t *testing.T) {
	c := mustCard(t, "c1-S-A-none-none-none")

	for _, reversed := range []bool{false, true} {
		d := &Deck{Cards: []Card{c}}
		ch := Action{Type: ActionChange, CardRef: "c1", Field: FieldRank, Value: "5", Time: time.Unix(9, 0)}
		rem := Action{Type: ActionRemove, CardRef: "c1", Time: time.Unix(1, 0)}
		if reversed {
			d.Stage(rem)
			d.Stage(ch)
		} else {
			d.Stage(ch)
			d.Stage(rem)
		}
		d.ApplyPending()
		if len(d.Cards) != 0 {
			t.Errorf("reversed=%v: remove should win, got %v", reversed, d.Cards)
		}
	}
}

func TestMergeDropsDuplicates(t *testing.T) {
	c := mustCard(t, "c9-H-2-none-none-none")
	d := &Deck{}
	d.Stage(Action{Type: ActionAdd, Card: c, Time: time.Unix(1, 0)})
	d.Stage(Action{Type: ActionAdd, Card: c, Time: time.Unix(2, 0)})
	d.ApplyPending()
	if len(d.Cards) != 1 {
		t.Errorf("duplicate add should collapse, got %d cards", len(d.Cards))
	}
}

func TestMergeSkipsMissingTarget(t *testing.T) {
	d := &Deck{}
	d.Stage(Action{Type: ActionChange, CardRef: "ghost", Field: FieldSuit, Value: "Hearts", Time: time.Unix(1, 0)})
	d.Stage(Action{Type: ActionRemove, CardRef: "ghost", Time: time.Unix(2, 0)})
	d.ApplyPending()
	if len(d.Cards) != 0 || d.PendingCount() != 0 {
		t.Errorf("missing targets should be skipped and queue cleared, got %v / %d", d.Cards, d.PendingCount())
	}
}

func TestMergeAppliesChangesBeforeRemovalTakesPrecedence(t *testing.T) {
	c1 := mustCard(t, "c1-S-A-none-none-none")
	c2 := mustCard(t, "c2-H-2-none-none-none")
	d := &Deck{Cards: []Card{c1, c2}}
	ts := time.Unix(7, 0)

	d.Stage(Action{Type: ActionChange, CardRef: "c2", Field: FieldSuit, Value: "Diamonds", Time: ts})
	d.Stage(Action{Type: ActionChange, CardRef: "c2", Field: FieldSeal, Value: "blue", Time: ts})
	d.Stage(Action{Type: ActionRemove, CardRef: "c1", Time: ts})
	d.ApplyPending()

	if len(d.Cards) != 1 {
		t.Fatalf("got %d cards, want 1", len(d.Cards))
	}
	if d.Cards[0].Suit != "D" || d.Cards[0].Seal != "blue" {
		t.Errorf("got %+v", d.Cards[0])
	}
}

func TestChunkBufferOwnership(t *testing.T) {
	var b ChunkBuffer
	if err := b.Append("p1", "c1-S-A-none-none-none", false); err != nil {
		t.Fatalf("first chunk err: %v", err)
	}
	if err := b.Append("p2", "c2-H-2-none-none-none", true); err != ErrTransferOwned {
		t.Fatalf("expected ErrTransferOwned, got %v", err)
	}
	if _, err := b.Assemble(); err != ErrTransferIncomplete {
		t.Fatalf("expected ErrTransferIncomplete, got %v", err)
	}
	if err := b.Append("p1", "c2-H-2-none-none-none", true); err != nil {
		t.Fatalf("final chunk err: %v", err)
	}

	d, err := b.Assemble()
	if err != nil {
		t.Fatalf("Assemble err: %v", err)
	}
	if len(d.Cards) != 2 {
		t.Errorf("assembled %d cards, want 2", len(d.Cards))
	}
	if !b.Empty() || b.Complete() {
		t.Error("buffer should reset after assembly")
	}

	// A new transfer can come from a different sender once consumed.
	if err := b.Append("p2", "c3-D-3-none-none-none", true); err != nil {
		t.Errorf("new transfer err: %v", err)
	}
}
