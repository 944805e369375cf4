package ledger

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Sign says whether a line item counts as income or expense.
type Sign string

const (
	SignCredit Sign = "+" // income
	SignDebit  Sign = "-" // expense
)

// Valid reports whether s is one of the two known signs.
func (s Sign) Valid() bool {
	return s == SignCredit || s == SignDebit
}

// DefaultMaxDescription is the line item description limit in runes.
const DefaultMaxDescription = 100

// LineItem is one row of the ledger. ID is an in-memory identity used to
// address rows across sorts and filters; it is never persisted. The stored
// document keeps exactly {description, amount, sign, checked}.
type LineItem struct {
	ID          string  `json:"-"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Sign        Sign    `json:"sign"`
	Checked     bool    `json:"checked"`
}

func newLineItem(sign Sign) LineItem {
	return LineItem{
		ID:   uuid.NewString(),
		Sign: sign,
	}
}

// CoerceAmount parses raw user input into a safe stored amount. Anything
// that is not a finite non-negative number becomes 0; NaN never reaches
// stored state.
func CoerceAmount(raw string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

var tagRe = regexp.MustCompile(`<[^>]*>`)

// SanitizeDescription strips markup and truncates to limit runes.
func SanitizeDescription(raw string, limit int) string {
	if limit <= 0 {
		limit = DefaultMaxDescription
	}
	s := tagRe.ReplaceAllString(raw, "")
	r := []rune(s)
	if len(r) > limit {
		r = r[:limit]
	}
	return string(r)
}
