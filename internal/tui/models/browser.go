package models

import (
	"fmt"
	"time"

	commport "github.com/allbin/go-commport"
	"github.com/allbin/go-commport/internal/tui/keys"
	"github.com/allbin/go-commport/internal/tui/styles"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/evertras/bubble-table/table"
)

const (
	columnName  = "name"
	columnType  = "type"
	columnOwner = "owner"

	refreshInterval = 2 * time.Second
)

// BrowserModel is an interactive port browser: a live table of the ports the
// active backend knows, with ownership, refreshed periodically and on demand.
type BrowserModel struct {
	table       table.Model
	keys        keys.BrowserKeys
	err         error
	lastRefresh time.Time
	provider    string
}

type portsMsg struct {
	rows []table.Row
	err  error
}

type tickMsg time.Time

func NewBrowserModel() *BrowserModel {
	columns := []table.Column{
		table.NewColumn(columnName, "Port", 20),
		table.NewColumn(columnType, "Type", 10),
		table.NewColumn(columnOwner, "Owner", 24),
	}

	return &BrowserModel{
		table: table.New(columns).
			Focused(true).
			WithBaseStyle(styles.TableStyle).
			WithPageSize(15),
		keys: keys.NewBrowserKeys(),
	}
}

func (m *BrowserModel) Init() tea.Cmd {
	return tea.Batch(fetchPorts, scheduleTick())
}

func fetchPorts() tea.Msg {
	ports, err := commport.GetPortIdentifiers()
	if err != nil {
		return portsMsg{err: err}
	}

	rows := make([]table.Row, 0, len(ports))
	for _, p := range ports {
		owner := styles.StatusFreeStyle.Render("free")
		if owned, err := p.CurrentlyOwned(); err == nil && owned {
			name, _ := p.CurrentOwner()
			if name == "" {
				name = "(unknown)"
			}
			owner = styles.StatusOwnedStyle.Render(name)
		}
		rows = append(rows, table.NewRow(table.RowData{
			columnName:  p.Name(),
			columnType:  p.PortType().String(),
			columnOwner: owner,
		}))
	}
	return portsMsg{rows: rows}
}

func scheduleTick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			return m, fetchPorts
		}

	case portsMsg:
		m.err = msg.err
		m.lastRefresh = time.Now()
		if msg.err == nil {
			m.table = m.table.WithRows(msg.rows)
		}
		if id, ok := commport.ActiveProvider(); ok {
			m.provider = string(id)
		}
		return m, nil

	case tickMsg:
		return m, tea.Batch(fetchPorts, scheduleTick())
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *BrowserModel) View() string {
	title := "Communications Ports"
	if m.provider != "" {
		title = fmt.Sprintf("Communications Ports [%s]", m.provider)
	}

	view := styles.TitleStyle.Render(title) + "\n"
	if m.err != nil {
		view += styles.ErrorStyle.Render(fmt.Sprintf("error: %v", m.err)) + "\n"
	}
	view += m.table.View() + "\n"
	view += styles.HelpStyle.Render(fmt.Sprintf("r refresh · q quit · refreshed %s",
		m.lastRefresh.Format("15:04:05")))
	return view
}
