package deck

import (
	"errors"
	"strings"
)

var (
	// ErrTransferOwned rejects chunks from anyone but the first sender of
	// the current transfer.
	ErrTransferOwned = errors.New("deck: transfer owned by another sender")

	ErrTransferIncomplete = errors.New("deck: transfer incomplete")
)

// ChunkBuffer accumulates an in-flight deck transfer. A full deck can
// exceed one message's practical size, so clients send it in ordered
// chunks; the first sender owns the transfer until the buffer is consumed.
type ChunkBuffer struct {
	owner    string
	parts    []string
	complete bool
}

// Append adds one chunk from the given sender. The first sender becomes
// the owner; chunks from other senders are rejected. last marks the final
// chunk of the transfer.
func (b *ChunkBuffer) Append(sender, chunk string, last bool) error {
	if len(b.parts) > 0 && b.owner != sender {
		return ErrTransferOwned
	}
	b.owner = sender
	b.parts = append(b.parts, chunk)
	if last {
		b.complete = true
	}
	return nil
}

// Complete reports whether the final chunk has arrived.
func (b *ChunkBuffer) Complete() bool { return b.complete }

// Empty reports whether no chunks are buffered.
func (b *ChunkBuffer) Empty() bool { return len(b.parts) == 0 }

// Assemble joins the buffered chunks into a deck and resets the buffer.
// Each chunk is a run of complete card records.
func (b *ChunkBuffer) Assemble() (*Deck, error) {
	if !b.complete {
		return nil, ErrTransferIncomplete
	}
	d, err := Parse(strings.Join(b.parts, "|"))
	if err != nil {
		return nil, err
	}
	b.owner = ""
	b.parts = nil
	b.complete = false
	return d, nil
}
