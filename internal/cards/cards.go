// Package cards turns a converted word list into a flashcard deck.
package cards

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math/rand"
	"os"

	"github.com/nconklindev/habatan/internal/types"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// MinColumns is the number of leading CSV columns a card is built from:
// ID, word, part of speech, meaning and example.
const MinColumns = 5

var ErrNoCards = errors.New("no cards")

// Load reads cards from a CSV file written by the converter. The header
// line and rows with fewer than MinColumns fields are skipped. A leading
// byte order mark is removed.
func Load(path string) ([]types.Card, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(transform.NewReader(f, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var cards []types.Card
	for i, row := range rows {
		if i == 0 || len(row) < MinColumns {
			continue
		}
		cards = append(cards, types.Card{
			ID:      row[0],
			Word:    row[1],
			Pos:     row[2],
			Meaning: row[3],
			Example: row[4],
		})
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoCards, path)
	}
	return cards, nil
}

// Deck is an ordered view over a list of cards with a cursor and a
// revealed flag. Shuffling reorders the view only, so bookmarks stay with
// their cards.
type Deck struct {
	cards    []types.Card
	order    []int
	pos      int
	revealed bool
	shuffled bool

	// Shuffle permutes the view; rand.Shuffle unless replaced.
	Shuffle func(n int, swap func(i, j int))
}

func NewDeck(cards []types.Card) *Deck {
	d := &Deck{cards: cards, Shuffle: rand.Shuffle}
	d.resetOrder()
	return d
}

func (d *Deck) resetOrder() {
	d.order = make([]int, len(d.cards))
	for i := range d.order {
		d.order[i] = i
	}
}

func (d *Deck) Len() int {
	return len(d.cards)
}

// Position is the 1-based index of the current card, or 0 for an empty
// deck.
func (d *Deck) Position() int {
	if len(d.cards) == 0 {
		return 0
	}
	return d.pos + 1
}

func (d *Deck) Current() (types.Card, bool) {
	if len(d.cards) == 0 {
		return types.Card{}, false
	}
	return d.cards[d.order[d.pos]], true
}

// Move shifts the cursor by delta, clamped to the deck, and hides the
// answer.
func (d *Deck) Move(delta int) {
	d.pos = min(max(d.pos+delta, 0), max(len(d.cards)-1, 0))
	d.revealed = false
}

func (d *Deck) Next() { d.Move(1) }

func (d *Deck) Prev() { d.Move(-1) }

func (d *Deck) Reveal() {
	d.revealed = len(d.cards) > 0
}

func (d *Deck) Revealed() bool {
	return d.revealed
}

// Advance shows the answer of the current card, or moves on when it is
// already shown.
func (d *Deck) Advance() {
	if !d.revealed {
		d.Reveal()
		return
	}
	d.Next()
}

// ToggleBookmark flips the bookmark of the current card and returns its
// new state.
func (d *Deck) ToggleBookmark() bool {
	if len(d.cards) == 0 {
		return false
	}
	c := &d.cards[d.order[d.pos]]
	c.Bookmarked = !c.Bookmarked
	return c.Bookmarked
}

// SetShuffle switches between a shuffled and the original order. Either
// way the deck restarts at the first card with the answer hidden.
func (d *Deck) SetShuffle(on bool) {
	d.resetOrder()
	if on {
		d.Shuffle(len(d.order), func(i, j int) {
			d.order[i], d.order[j] = d.order[j], d.order[i]
		})
	}
	d.shuffled = on
	d.pos = 0
	d.revealed = false
}

func (d *Deck) Shuffled() bool {
	return d.shuffled
}

// Progress is the fraction of the deck reached, in (0, 1].
func (d *Deck) Progress() float64 {
	if len(d.cards) == 0 {
		return 0
	}
	return float64(d.pos+1) / float64(len(d.cards))
}

// Bookmarked returns the bookmarked cards in their original order.
func (d *Deck) Bookmarked() []types.Card {
	var out []types.Card
	for _, c := range d.cards {
		if c.Bookmarked {
			out = append(out, c)
		}
	}
	return out
}
