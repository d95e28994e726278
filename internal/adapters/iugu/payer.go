package iugu

import "strings"

// splitHolderName splits a card holder name on the first whitespace boundary:
// first token becomes the first name, the remainder joined becomes the last
// name. A single-token name yields an empty last name.
func splitHolderName(name string) (first, last string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// splitPhone extracts an area prefix from phone strings shaped like
// "(NN) NNNNN-NNNN": characters 1..2 become the prefix and everything from
// index 5 the local number. Phone numbers without a parenthesis, or too
// short to slice, pass through unchanged with an absent prefix. This matches
// the format the provider expects for payer records; do not "fix" it.
func splitPhone(raw string) (prefix, local string) {
	if !strings.Contains(raw, "(") {
		return "", raw
	}
	r := []rune(raw)
	if len(r) < 6 {
		return "", raw
	}
	return string(r[1:3]), string(r[5:])
}
