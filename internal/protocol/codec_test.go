package protocol

import (
	"reflect"
	"testing"
)

func TestSerializeParseRoundTrip(t *testing.T) {
	cases := []Message{
		New(ActJoinLobby).Set("code", "ABCDE"),
		New(ActPlayHand).Set("score", "1.5e40").Set("handsLeft", 3).Set("hasSpeedrun", true),
		New(ActUsername).Set("username", "guest").Set("modHash", "NULL"),
		New(ActKeepAlive),
	}
	for _, m := range cases {
		line := Serialize(m)
		back, err := Parse(line)
		if err != nil {
			t.Fatalf("Parse(%q) err: %v", line, err)
		}
		if !reflect.DeepEqual(back, m) {
			t.Errorf("round trip %q: got %v, want %v", line, back, m)
		}
	}
}

func TestSerializeDeterministic(t *testing.T) {
	m := New(ActPlayHand).Set("score", "100").Set("handsLeft", 0).Set("scoreDelta", "50")
	want := "action:playHand,handsLeft:0,score:100,scoreDelta:50"
	for i := 0; i < 10; i++ {
		if got := Serialize(m); got != want {
			t.Fatalf("Serialize = %q, want %q", got, want)
		}
	}
}

func TestParseMalformed(t *testing.T) {
	for _, line := range []string{"", "noseparator", "key:value", ":value,action:x"} {
		if _, err := Parse(line); err == nil {
			t.Errorf("Parse(%q): expected error", line)
		}
	}
}

func TestTypedGetters(t *testing.T) {
	m, err := Parse("action:playHand,handsLeft:2.0,score:e1.5e40,ready:true")
	if err != nil {
		t.Fatalf("Parse err: %v", err)
	}
	if m.Action() != ActPlayHand {
		t.Errorf("Action = %q", m.Action())
	}
	if got := m.Int("handsLeft"); got != 2 {
		t.Errorf("Int(handsLeft) = %d, want 2", got)
	}
	if !m.Bool("ready") {
		t.Error("Bool(ready) = false, want true")
	}
	sc, err := m.Score("score")
	if err != nil {
		t.Fatalf("Score err: %v", err)
	}
	if sc.Tiers != 1 || sc.Coeff != 1.5 || sc.Exp != 40 {
		t.Errorf("Score = %+v", sc)
	}
}

func TestEscapeRoundTrip(t *testing.T) {
	cases := []string{
		"",
		"plain",
		"a,b:c|d-e>f",
		",,::||-->>",
		"mixed,->text:with|every>reserved-char",
	}
	for _, s := range cases {
		esc := Escape(s)
		for _, r := range ",:|->" {
			if containsRune(esc, r) {
				t.Errorf("Escape(%q) = %q still contains %q", s, esc, string(r))
			}
		}
		if got := Unescape(esc); got != s {
			t.Errorf("Unescape(Escape(%q)) = %q", s, got)
		}
	}
}

func containsRune(s string, r rune) bool {
	for _, c := range s {
		if c == r {
			return true
		}
	}
	return false
}

func TestListRoundTrip(t *testing.T) {
	records := []Message{
		{"id": "p1", "username": "alice", "isHost": "true"},
		{"id": "p2", "username": "bob", "isHost": "false"},
	}
	s := SerializeList(records)
	back, err := ParseList(s)
	if err != nil {
		t.Fatalf("ParseList(%q) err: %v", s, err)
	}
	if !reflect.DeepEqual(back, records) {
		t.Errorf("list round trip: got %v, want %v", back, records)
	}

	empty, err := ParseList("")
	if err != nil || empty != nil {
		t.Errorf("ParseList(\"\") = %v, %v", empty, err)
	}
}
