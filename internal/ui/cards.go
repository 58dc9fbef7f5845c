package ui

import (
	"fmt"
	"strings"

	"github.com/nconklindev/habatan/internal/cards"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

type cardKeyMap struct {
	Advance  key.Binding
	Next     key.Binding
	Prev     key.Binding
	Bookmark key.Binding
	Shuffle  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func (k cardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Advance, k.Prev, k.Bookmark, k.Shuffle, k.Help, k.Quit}
}

func (k cardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Advance, k.Next, k.Prev},
		{k.Bookmark, k.Shuffle},
		{k.Help, k.Quit},
	}
}

var cardKeys = cardKeyMap{
	Advance: key.NewBinding(
		key.WithKeys(" ", "enter", "down", "j", "f"),
		key.WithHelp("space", "answer / next"),
	),
	Next: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "next"),
	),
	Prev: key.NewBinding(
		key.WithKeys("left", "up", "h", "k", "a", "d"),
		key.WithHelp("←/h", "previous"),
	),
	Bookmark: key.NewBinding(
		key.WithKeys("b", "s", "m"),
		key.WithHelp("b", "bookmark"),
	),
	Shuffle: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "shuffle"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "more keys"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// CardsModel is the flashcard view over a deck.
type CardsModel struct {
	deck     *cards.Deck
	source   string
	keys     cardKeyMap
	help     help.Model
	progress progress.Model
}

// NewCardsModel shows deck, loaded from source.
func NewCardsModel(deck *cards.Deck, source string) CardsModel {
	prog := progress.New(progress.WithGradient("#FF8C42", "#FF9F5A"), progress.WithoutPercentage())
	prog.Width = 40

	return CardsModel{
		deck:     deck,
		source:   source,
		keys:     cardKeys,
		help:     help.New(),
		progress: prog,
	}
}

// Deck returns the deck being studied, with its bookmarks.
func (m CardsModel) Deck() *cards.Deck {
	return m.deck
}

func (m CardsModel) Init() tea.Cmd {
	return m.progress.SetPercent(m.deck.Progress())
}

func (m CardsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.progress.Width = min(max(msg.Width-24, 10), 60)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Advance):
			m.deck.Advance()
		case key.Matches(msg, m.keys.Next):
			m.deck.Next()
		case key.Matches(msg, m.keys.Prev):
			m.deck.Prev()
		case key.Matches(msg, m.keys.Bookmark):
			m.deck.ToggleBookmark()
			return m, nil
		case key.Matches(msg, m.keys.Shuffle):
			m.deck.SetShuffle(!m.deck.Shuffled())
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		default:
			return m, nil
		}
		return m, m.progress.SetPercent(m.deck.Progress())

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func (m CardsModel) View() string {
	card, ok := m.deck.Current()
	if !ok {
		return BoxStyle.Render(ErrorStyle.Render("No cards in " + m.source))
	}

	var s strings.Builder

	s.WriteString(TitleStyle.Render("📖 はば単"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(truncatePath(m.source, 50)))
	s.WriteString("\n")

	counter := fmt.Sprintf("%d / %d", m.deck.Position(), m.deck.Len())
	if m.deck.Shuffled() {
		counter += " · shuffled"
	}
	s.WriteString(m.progress.View() + "  " + InfoStyle.Render(counter))
	s.WriteString("\n\n")

	mark := InfoStyle.Render("☆")
	if card.Bookmarked {
		mark = SuccessStyle.Render("★")
	}
	s.WriteString(InfoStyle.Render("No. "+card.ID) + "  " + mark)
	s.WriteString("\n")
	s.WriteString(CardWordStyle.Render(card.Word))
	s.WriteString("\n")

	if m.deck.Revealed() {
		s.WriteString(CardPosStyle.Render(flatten(card.Pos)))
		s.WriteString("\n")
		s.WriteString(card.Meaning)
		s.WriteString("\n\n")
		s.WriteString(SuccessStyle.Render("【例文】"))
		s.WriteString("\n")
		s.WriteString(CardExampleStyle.Render(card.Example))
	} else {
		s.WriteString(HelpStyle.Render("space: show answer"))
	}
	s.WriteString("\n\n")
	s.WriteString(m.help.View(m.keys))

	return BoxStyle.Render(s.String())
}
