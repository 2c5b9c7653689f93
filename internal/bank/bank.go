// Package bank holds the Mini-IPIP6 item bank: 24 graded-response items
// calibrated by Sibley (2012), four per trait, with reverse-scoring flags.
// The bank is immutable after load and shared by reference across sessions.
package bank

import (
	"fmt"
	"math"
	"sort"
)

// ItemsPerTrait is the size of each trait's subset in a well-formed bank.
const ItemsPerTrait = 4

// #region errors

// InvalidItemError reports a malformed bank entry. Fatal at startup.
type InvalidItemError struct {
	Number int
	Reason string
}

func (e *InvalidItemError) Error() string {
	return fmt.Sprintf("invalid item %d: %s", e.Number, e.Reason)
}

// #endregion errors

// #region bank-struct

// Bank is a validated, keyed view over a set of items.
type Bank struct {
	byNumber map[int]Item
	byTrait  map[Trait][]int // item numbers in ascending order
}

// #endregion bank-struct

// #region constructor

// New validates items and builds the keyed indexes.
// Returns *InvalidItemError on the first malformed entry.
func New(items []Item) (*Bank, error) {
	b := &Bank{
		byNumber: make(map[int]Item, len(items)),
		byTrait:  make(map[Trait][]int),
	}

	for _, it := range items {
		if err := validate(it); err != nil {
			return nil, err
		}
		if _, dup := b.byNumber[it.Number]; dup {
			return nil, &InvalidItemError{Number: it.Number, Reason: "duplicate item number"}
		}
		b.byNumber[it.Number] = it
		b.byTrait[it.Trait] = append(b.byTrait[it.Trait], it.Number)
	}

	for trait, nums := range b.byTrait {
		sort.Ints(nums)
		b.byTrait[trait] = nums
	}

	return b, nil
}

// NewStrict additionally requires the full-inventory shape: every canonical
// trait present with exactly ItemsPerTrait items.
func NewStrict(items []Item) (*Bank, error) {
	b, err := New(items)
	if err != nil {
		return nil, err
	}
	for _, trait := range CanonicalOrder {
		if n := len(b.byTrait[trait]); n != ItemsPerTrait {
			return nil, &InvalidItemError{
				Reason: fmt.Sprintf("trait %s has %d items, want %d", trait, n, ItemsPerTrait),
			}
		}
	}
	return b, nil
}

func validate(it Item) error {
	if it.Alpha <= 0 {
		return &InvalidItemError{Number: it.Number, Reason: fmt.Sprintf("alpha %.4f must be positive", it.Alpha)}
	}
	if !it.Trait.Valid() {
		return &InvalidItemError{Number: it.Number, Reason: fmt.Sprintf("unknown trait %q", it.Trait)}
	}
	for i, beta := range it.Beta {
		if math.IsNaN(beta) || math.IsInf(beta, 0) {
			return &InvalidItemError{Number: it.Number, Reason: fmt.Sprintf("beta%d is not finite", i+1)}
		}
	}
	return nil
}

// #endregion constructor

// #region accessors

// Item looks up an item by number.
func (b *Bank) Item(number int) (Item, bool) {
	it, ok := b.byNumber[number]
	return it, ok
}

// TraitItems returns the item numbers of a trait in ascending order.
// The returned slice must not be mutated.
func (b *Bank) TraitItems(trait Trait) []int {
	return b.byTrait[trait]
}

// Len returns the total number of items in the bank.
func (b *Bank) Len() int {
	return len(b.byNumber)
}

// HighestDiscrimination returns the item number with the largest alpha for a
// trait, smallest number winning ties. Cold-start item choice does not use
// it; it goes through Fisher information instead.
func (b *Bank) HighestDiscrimination(trait Trait) (int, bool) {
	best, bestAlpha := 0, 0.0
	for _, num := range b.byTrait[trait] {
		it := b.byNumber[num]
		if it.Alpha > bestAlpha {
			best, bestAlpha = num, it.Alpha
		}
	}
	return best, best != 0
}

// #endregion accessors
