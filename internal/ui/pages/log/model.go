package log

import (
	"strings"
	"time"

	"github.com/amir20/logview/internal/controller"
	"github.com/amir20/logview/internal/stream"
	"github.com/amir20/logview/internal/window"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/samber/lo"
)

var sanitizer = strings.NewReplacer("\r", "", "\n", " ", "\t", "    ")

func NewModel(pattern string) Model {
	filter := textinput.New()
	filter.Prompt = "/"
	filter.Placeholder = ".*"

	return Model{
		viewport: viewport.New(0, 0),
		filter:   filter,
		keyMap:   defaultKeyMap(),
		help:     help.New(),
		pattern:  pattern,
		now:      time.Now,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Apply replays window changes on the local copy, in order, and keeps the
// visible rows in place unless a change asks to follow the bottom.
func (m Model) Apply(changes []controller.Change) Model {
	offset := m.viewport.YOffset
	follow := false

	for _, c := range changes {
		switch c.Op {
		case controller.OpReset:
			m.entries = nil
			offset = 0
		case controller.OpPrepend:
			entries := make([]stream.Entry, 0, len(c.Entries)+len(m.entries))
			entries = append(entries, c.Entries...)
			m.entries = append(entries, m.entries...)
			offset += len(c.Entries)
		case controller.OpAppend:
			m.entries = append(m.entries, c.Entries...)
			m.lastEntry = m.now()
		case controller.OpEvict:
			n := min(c.Evicted, len(m.entries))
			if c.FromTop {
				m.entries = m.entries[n:]
				offset -= n
			} else {
				m.entries = m.entries[:len(m.entries)-n]
			}
		}
		follow = follow || c.Follow
	}

	m.render()
	if follow {
		m.viewport.GotoBottom()
	} else {
		m.viewport.SetYOffset(max(offset, 0))
	}
	return m
}

func (m Model) SetSubscription(host string, state controller.State, sub controller.Subscription) Model {
	m.host = host
	m.state = state
	m.pattern = sub.Filter
	m.following = sub.FollowBottom
	return m
}

func (m Model) SetStatus(status controller.Status) Model {
	m.status = status
	return m
}

func (m Model) Capturing() bool {
	return m.editing
}

func (m Model) Len() int {
	return len(m.entries)
}

func (m *Model) render() {
	lines := lo.Map(m.entries, func(e stream.Entry, _ int) string {
		text := sanitizer.Replace(e.Text)
		if m.width > 0 {
			text = runewidth.Truncate(text, m.width, "…")
		}
		return text
	})
	m.viewport.SetContent(strings.Join(lines, "\n"))
}

// Observation maps the viewport onto the monitor's row geometry. Every entry
// takes one row, so the first entry ends at row 1 and the last at Len.
func (m Model) Observation() window.Viewport {
	return window.Viewport{
		Offset:      m.viewport.YOffset,
		Height:      m.viewport.Height,
		FirstBottom: 1,
		LastBottom:  len(m.entries),
	}
}
