package deck

import "time"

type ActionType int

const (
	ActionAdd ActionType = iota
	ActionRemove
	ActionChange
)

// Action is one staged structural edit. Additions carry the full card;
// removals and changes reference an existing card by CardRef. Time is the
// insertion timestamp used for last-write-wins ordering.
type Action struct {
	Type    ActionType
	Card    Card   // ActionAdd only
	CardRef string // ActionRemove, ActionChange
	Field   Field  // ActionChange only
	Value   string // ActionChange only
	Time    time.Time
}

// sameEdit reports whether two actions describe the identical edit,
// ignoring when they were issued.
func (a Action) sameEdit(b Action) bool {
	return a.Type == b.Type && a.Card == b.Card && a.CardRef == b.CardRef &&
		a.Field == b.Field && a.Value == b.Value
}

// typeRank encodes precedence: removals override additions, additions
// override attribute changes. Higher precedence applies later so it has
// the final say.
func (a Action) typeRank() int {
	switch a.Type {
	case ActionChange:
		return 0
	case ActionAdd:
		return 1
	default:
		return 2
	}
}

// less is the merge application order: attribute changes, then additions,
// then removals; within a type older actions apply first so the most
// recently issued edit lands last and wins. Changes carrying the same
// timestamp fall back to the fixed field priority.
func (a Action) less(b Action) bool {
	if ar, br := a.typeRank(), b.typeRank(); ar != br {
		return ar < br
	}
	if !a.Time.Equal(b.Time) {
		return a.Time.Before(b.Time)
	}
	if a.Type == ActionChange && b.Type == ActionChange {
		return a.Field < b.Field
	}
	return false
}
