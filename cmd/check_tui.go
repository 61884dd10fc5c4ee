// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Thermoquad/bearcat/pkg/bearcat"
)

// Messages from the loader goroutine
type channelCheckedMsg struct {
	channel   bearcat.Channel
	anomalies []bearcat.ValidationError
}

type checkDoneMsg struct {
	err   error
	stats string
}

type checkKeyMap struct {
	Quit    key.Binding
	ShowAll key.Binding
}

func newCheckKeyMap() checkKeyMap {
	return checkKeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		ShowAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "toggle all channels"),
		),
	}
}

// checkModel is the channel check TUI
type checkModel struct {
	connInfo string
	keys     checkKeyMap
	table    table.Model
	progress progress.Model

	channels []channelCheckedMsg
	showAll  bool

	checked   int
	empty     int
	anomalies int

	done     bool
	err      error
	stats    string
	width    int
	quitting bool
}

func newCheckModel(connInfo string, showAll bool) checkModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Ch", Width: 5},
			{Title: "Frequency", Width: 14},
			{Title: "Mod", Width: 4},
			{Title: "Flags", Width: 6},
			{Title: "Status", Width: 44},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return checkModel{
		connInfo: connInfo,
		keys:     newCheckKeyMap(),
		table:    t,
		progress: progress.New(progress.WithDefaultGradient()),
		showAll:  showAll,
		width:    80,
	}
}

func (m checkModel) Init() tea.Cmd {
	return nil
}

func (m checkModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.ShowAll):
			m.showAll = !m.showAll
			m.table.SetRows(m.rows())
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = max(msg.Width-4, 20)
		m.table.SetHeight(max(msg.Height-12, 5))
		return m, nil

	case channelCheckedMsg:
		m.checked++
		if msg.channel.IsEmpty() {
			m.empty++
		}
		m.anomalies += len(msg.anomalies)
		m.channels = append(m.channels, msg)
		m.table.SetRows(m.rows())
		return m, nil

	case checkDoneMsg:
		m.done = true
		m.err = msg.err
		m.stats = msg.stats
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// rows builds the table from the channels read so far. Empty slots are
// listed only when showing all channels.
func (m checkModel) rows() []table.Row {
	rows := []table.Row{}
	for _, c := range m.channels {
		if len(c.anomalies) == 0 && (!m.showAll || c.channel.IsEmpty()) {
			continue
		}
		rows = append(rows, channelRow(c))
	}
	return rows
}

func channelRow(c channelCheckedMsg) table.Row {
	ch := c.channel
	status := "OK"
	if len(c.anomalies) > 0 {
		msgs := make([]string, len(c.anomalies))
		for i, a := range c.anomalies {
			msgs[i] = a.Message
		}
		status = strings.Join(msgs, "; ")
	}

	mod := ch.Modulation
	if mod == "" {
		mod = "-"
	}
	return table.Row{
		fmt.Sprintf("%03d", ch.Index),
		fmt.Sprintf("%.4f MHz", ch.Frequency.MHz()),
		mod,
		bearcat.FormatFlags(ch),
		status,
	}
}

func (m checkModel) View() string {
	if m.quitting {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var s strings.Builder
	s.WriteString(titleStyle.Render("BEARCAT - CHANNEL CHECK"))
	s.WriteString("\n")
	s.WriteString(dimStyle.Render(fmt.Sprintf("%s | 'a' all channels | 'q' quit", m.connInfo)))
	s.WriteString("\n\n")

	s.WriteString(m.progress.ViewAs(float64(m.checked) / float64(bearcat.ChannelCount)))
	s.WriteString("\n")
	summary := fmt.Sprintf("%d/%d read, %d empty, ", m.checked, bearcat.ChannelCount, m.empty)
	if m.anomalies > 0 {
		summary += anomalyStyle.Render(fmt.Sprintf("%d anomalies", m.anomalies))
	} else {
		summary += okStyle.Render("0 anomalies")
	}
	s.WriteString(summary)
	s.WriteString("\n\n")

	s.WriteString(boxStyle.Render(m.table.View()))
	s.WriteString("\n")

	if m.done {
		if m.err != nil {
			s.WriteString(failStyle.Render("READ ERROR: " + m.err.Error()))
			s.WriteString("\n")
		}
		s.WriteString(m.stats)
	}
	return s.String()
}

// runCheckTUI reads channels on a loader goroutine and feeds results to
// the program. The scanner is only touched by the loader, which has
// stopped by the time this returns.
func runCheckTUI(s *bearcat.Scanner, connInfo string) (int, error) {
	p := tea.NewProgram(newCheckModel(connInfo, checkShowAll), tea.WithAltScreen())

	stop := make(chan struct{})
	loaded := make(chan struct{})
	go func() {
		defer close(loaded)
		var readErr error
		for ch, err := range s.Channels() {
			if err != nil {
				readErr = err
				break
			}
			select {
			case <-stop:
				return
			default:
			}
			p.Send(channelCheckedMsg{channel: ch, anomalies: validate(s, ch)})
		}
		p.Send(checkDoneMsg{err: readErr, stats: s.Stats().String()})
	}()

	final, err := p.Run()
	close(stop)
	<-loaded
	if err != nil {
		return 0, fmt.Errorf("TUI error: %v", err)
	}

	m := final.(checkModel)
	if !m.done {
		return m.anomalies, fmt.Errorf("check interrupted after %d channels", m.checked)
	}
	return m.anomalies, m.err
}
