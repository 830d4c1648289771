// Package puzzle validates puzzle answers. Every check is a pure function:
// a wrong answer is an Outcome, never an error.
package puzzle

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Outcome is the result category of a puzzle attempt.
type Outcome string

const (
	Correct   Outcome = "correct"
	Incorrect Outcome = "incorrect"
	Tie       Outcome = "tie"
)

// HintThreshold is the number of failed attempts after which a hint is shown.
const HintThreshold = 3

var upper = cases.Upper(language.Und)

// CheckCode compares a code answer exactly, including case and whitespace.
func CheckCode(answer, want string) Outcome {
	if answer == want {
		return Correct
	}
	return Incorrect
}

// CheckKeyword compares case-insensitively. Whitespace is significant.
func CheckKeyword(answer, want string) Outcome {
	if upper.String(answer) == upper.String(want) {
		return Correct
	}
	return Incorrect
}

// CheckChoice compares a multiple-choice selection against the correct option.
func CheckChoice(selected, correct string) Outcome {
	if selected != "" && selected == correct {
		return Correct
	}
	return Incorrect
}

// HintUnlocked reports whether enough attempts have failed to show the hint.
func HintUnlocked(failures int) bool {
	return failures >= HintThreshold
}

// DecodeBinary converts each binary number to decimal and concatenates the
// digits, e.g. ["1001", "101"] -> "95".
func DecodeBinary(parts []string) (string, error) {
	var sb strings.Builder
	for _, p := range parts {
		n, err := strconv.ParseUint(p, 2, 32)
		if err != nil {
			return "", fmt.Errorf("invalid binary number %q: %w", p, err)
		}
		sb.WriteString(strconv.FormatUint(n, 10))
	}
	return sb.String(), nil
}

// CaesarDecode shifts each ASCII letter back by key positions.
// Other runes pass through unchanged.
func CaesarDecode(cipher string, key int) string {
	key = ((key % 26) + 26) % 26
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z':
			return 'A' + (r-'A'-rune(key)+26)%26
		case r >= 'a' && r <= 'z':
			return 'a' + (r-'a'-rune(key)+26)%26
		default:
			return r
		}
	}, cipher)
}
