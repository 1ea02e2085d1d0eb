package deck

import (
	"sort"
	"strings"
	"time"
)

// Deck is an ordered card collection plus a queue of pending edits.
// While a round is in progress teammates stage edits instead of applying
// them; ApplyPending merges the queue at the next synchronization point.
type Deck struct {
	Cards   []Card
	pending []Action
}

// Parse reads a "|"-joined card list.
func Parse(s string) (*Deck, error) {
	d := &Deck{}
	if s == "" {
		return d, nil
	}
	for _, part := range strings.Split(s, "|") {
		c, err := ParseCard(part)
		if err != nil {
			return nil, err
		}
		d.Cards = append(d.Cards, c)
	}
	return d, nil
}

func (d *Deck) String() string {
	parts := make([]string, len(d.Cards))
	for i, c := range d.Cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, "|")
}

// Stage queues an edit for the next merge, stamping it now if unstamped.
func (d *Deck) Stage(a Action) {
	if a.Time.IsZero() {
		a.Time = time.Now()
	}
	d.pending = append(d.pending, a)
}

func (d *Deck) StageAdd(c Card)        { d.Stage(Action{Type: ActionAdd, Card: c}) }
func (d *Deck) StageRemove(ref string) { d.Stage(Action{Type: ActionRemove, CardRef: ref}) }

func (d *Deck) StageChange(ref string, f Field, value string) {
	d.Stage(Action{Type: ActionChange, CardRef: ref, Field: f, Value: value})
}

func (d *Deck) PendingCount() int { return len(d.pending) }

// ApplyPending merges the queued edits into the card list and clears the
// queue. Exact duplicate edits collapse to one; removals take precedence
// over additions, additions over attribute changes, and within a type the
// most recently issued edit wins; an action whose target card does not
// exist at application time (added then removed within the same batch) is
// silently skipped. This is a best-effort "last consistent intent wins"
// policy, not an operational transform: edits normally originate from one
// active session at a time.
func (d *Deck) ApplyPending() {
	unique := make([]Action, 0, len(d.pending))
	for _, a := range d.pending {
		dup := false
		for _, u := range unique {
			if a.sameEdit(u) {
				dup = true
				break
			}
		}
		if !dup {
			unique = append(unique, a)
		}
	}

	sort.SliceStable(unique, func(i, j int) bool { return unique[i].less(unique[j]) })

	for _, a := range unique {
		switch a.Type {
		case ActionAdd:
			d.Cards = append(d.Cards, a.Card)
		case ActionRemove:
			if i := d.indexOf(a.CardRef); i >= 0 {
				d.Cards = append(d.Cards[:i], d.Cards[i+1:]...)
			}
		case ActionChange:
			i := d.indexOf(a.CardRef)
			if i < 0 {
				continue
			}
			switch a.Field {
			case FieldSuit:
				d.Cards[i].Suit = firstChar(a.Value)
			case FieldRank:
				d.Cards[i].Rank = normalizeRank(a.Value)
			case FieldEnhancement:
				d.Cards[i].Enhancement = a.Value
			case FieldEdition:
				d.Cards[i].Edition = a.Value
			case FieldSeal:
				d.Cards[i].Seal = a.Value
			}
		}
	}

	d.pending = nil
}

func (d *Deck) indexOf(id string) int {
	for i, have := range d.Cards {
		if have.ID == id {
			return i
		}
	}
	return -1
}
