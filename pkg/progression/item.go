package progression

import "slices"

// Item is a collectible token. The set of items is fixed.
type Item string

const (
	LibraryNote   Item = "libraryNote"
	SquashRacket  Item = "squashRacket"
	McdCoupon     Item = "mcdCoupon"
	DecryptionKey Item = "decryptionKey"
	FuBellClue    Item = "fuBellClue"
	FuBellToken   Item = "fuBellToken"
)

// allItems is in story order; Inventory and Snapshot sort by it.
var allItems = []Item{
	LibraryNote,
	SquashRacket,
	McdCoupon,
	DecryptionKey,
	FuBellClue,
	FuBellToken,
}

var itemLabels = map[Item]string{
	LibraryNote:   "Mysterious Note",
	SquashRacket:  "Squash Racket",
	McdCoupon:     "McDonald's Coupon",
	DecryptionKey: "Decryption Key (d=3)",
	FuBellClue:    "Fu Bell Clue",
	FuBellToken:   "Fu Bell Relic",
}

// requiredTokens must all be held before the summon can happen.
// FuBellClue is a hint, not a token.
var requiredTokens = []Item{
	LibraryNote,
	SquashRacket,
	McdCoupon,
	DecryptionKey,
	FuBellToken,
}

// Items returns every item variant in story order.
func Items() []Item {
	return slices.Clone(allItems)
}

// RequiredTokens returns the tokens needed for the summon.
func RequiredTokens() []Item {
	return slices.Clone(requiredTokens)
}

// ParseItem resolves an item by its enum name.
func ParseItem(s string) (Item, bool) {
	item := Item(s)
	return item, item.Valid()
}

// Valid reports whether i is one of the known variants.
func (i Item) Valid() bool {
	_, ok := itemLabels[i]
	return ok
}

// Label returns the display label, or the raw value for unknown items.
func (i Item) Label() string {
	if label, ok := itemLabels[i]; ok {
		return label
	}
	return string(i)
}

func (i Item) order() int {
	return slices.Index(allItems, i)
}
