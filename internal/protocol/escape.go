package protocol

import "strings"

// The five characters the codec reserves for structure. Untrusted text
// fields (usernames, build hashes) must pass through Escape before they
// are placed in a message, and Unescape after extraction.
var escaper = strings.NewReplacer(
	",", "{a}",
	":", "{b}",
	"|", "{c}",
	"-", "{d}",
	">", "{e}",
)

var unescaper = strings.NewReplacer(
	"{a}", ",",
	"{b}", ":",
	"{c}", "|",
	"{d}", "-",
	"{e}", ">",
)

// Escape replaces each reserved character with its 3-character placeholder.
func Escape(s string) string { return escaper.Replace(s) }

// Unescape reverses Escape.
func Unescape(s string) string { return unescaper.Replace(s) }
