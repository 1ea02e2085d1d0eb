// Package protocol implements the flat-string wire format. One message
// per line: "key:value" pairs joined by commas, with the message kind in
// the "action" field. List-valued payloads are per-element records using
// "-" and ">" as separators, elements joined by "|".
package protocol

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"bossrush/score"
)

const (
	// FieldAction is the kind-discriminator carried by every message.
	FieldAction = "action"

	entrySep = ","
	kvSep    = ":"

	listSep      = "|"
	listEntrySep = "-"
	listKVSep    = ">"
)

var ErrMalformed = errors.New("protocol: malformed message")

// Message is one wire message: a flat set of string-valued fields.
// Typed access goes through the getters; a field named "score" is always
// an extended score, never a plain number.
type Message map[string]string

// New builds a message of the given kind.
func New(action string) Message {
	return Message{FieldAction: action}
}

func (m Message) Action() string { return m[FieldAction] }

// Set stores a field, formatting it by type. Nil-like values should simply
// not be set; absent fields are omitted on serialize.
func (m Message) Set(key string, value any) Message {
	switch v := value.(type) {
	case string:
		m[key] = v
	case bool:
		m[key] = strconv.FormatBool(v)
	case int:
		m[key] = strconv.Itoa(v)
	case float64:
		m[key] = strconv.FormatFloat(v, 'f', -1, 64)
	case score.Score:
		m[key] = v.String()
	case fmt.Stringer:
		m[key] = v.String()
	default:
		m[key] = fmt.Sprint(v)
	}
	return m
}

func (m Message) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m Message) String(key string) string { return m[key] }

func (m Message) Bool(key string) bool { return m[key] == "true" }

func (m Message) Int(key string) int {
	n, err := strconv.Atoi(m[key])
	if err != nil {
		// Clients sometimes send counts as floats.
		if f, ferr := strconv.ParseFloat(m[key], 64); ferr == nil {
			return int(f)
		}
		return 0
	}
	return n
}

// Score parses a score-typed field through the extended-score parser.
func (m Message) Score(key string) (score.Score, error) {
	return score.Parse(m[key])
}

// Serialize renders the message as a single line without the trailing
// newline. Fields are ordered with "action" first, then lexicographically,
// so output is deterministic.
func Serialize(m Message) string {
	return serializeWith(m, entrySep, kvSep)
}

func serializeWith(m Message, es, kvs string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		if k != FieldAction {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if _, ok := m[FieldAction]; ok {
		keys = append([]string{FieldAction}, keys...)
	}

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+kvs+m[k])
	}
	return strings.Join(parts, es)
}

// Parse decodes one line into a message. A line with no action field is
// malformed.
func Parse(line string) (Message, error) {
	m, err := parseWith(line, entrySep, kvSep)
	if err != nil {
		return nil, err
	}
	if m.Action() == "" {
		return nil, fmt.Errorf("%w: missing action in %q", ErrMalformed, line)
	}
	return m, nil
}

func parseWith(s, es, kvs string) (Message, error) {
	m := make(Message)
	for _, part := range strings.Split(s, es) {
		key, value, ok := strings.Cut(part, kvs)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: bad field %q", ErrMalformed, part)
		}
		m[key] = value
	}
	return m, nil
}

// SerializeList renders a sequence of flat records as one list-valued
// field: elements joined by "|", each element using "-" and ">".
func SerializeList(records []Message) string {
	parts := make([]string, 0, len(records))
	for _, r := range records {
		parts = append(parts, serializeWith(r, listEntrySep, listKVSep))
	}
	return strings.Join(parts, listSep)
}

// ParseList is the inverse of SerializeList.
func ParseList(s string) ([]Message, error) {
	if s == "" {
		return nil, nil
	}
	elems := strings.Split(s, listSep)
	records := make([]Message, 0, len(elems))
	for _, e := range elems {
		r, err := parseWith(e, listEntrySep, listKVSep)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}
