// Package token classifies bytes as word or delimiter bytes.
//
// A word is a maximal run of ASCII letters, digits, and underscore. The
// classifier is a 256-entry lookup table built once at package init and only
// read afterwards, so it is shared by every worker without synchronization.
package token

// MaxWordLen is the longest word, in bytes, that is recorded. Longer runs are
// rejected by the tokenizer.
const MaxWordLen = 1023

// WordChars lists every byte that belongs to a word.
const WordChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_"

var table [256]bool

func init() {
	for i := 0; i < len(WordChars); i++ {
		table[WordChars[i]] = true
	}
}

// IsWordByte reports whether b is part of a word.
func IsWordByte(b byte) bool { return table[b] }

// Count returns the number of maximal word runs in data. It is the reference
// count used to check tokenizer output.
func Count(data []byte) int {
	n := 0
	in := false
	for _, b := range data {
		if table[b] {
			if !in {
				n++
				in = true
			}
			continue
		}
		in = false
	}
	return n
}
