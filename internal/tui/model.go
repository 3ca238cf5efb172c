package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const refreshEvery = 5 * time.Second

// Model is the Bubble Tea model for the FAQ dashboard. It polls the service
// on a timer and renders the clustered top questions with live statistics.
type Model struct {
	client   *Client
	viewport viewport.Model
	clusters []ClusterView
	stats    StatsView
	status   string
	ready    bool
}

type refreshMsg struct {
	clusters []ClusterView
	stats    StatsView
	err      error
}

type tickMsg time.Time

// New creates a dashboard model polling the given client.
func New(client *Client) Model {
	vp := viewport.New(0, 0)
	return Model{client: client, viewport: vp, status: "Connecting..."}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refresh(), tick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, fh := boxStyle.GetFrameSize()
		vh := msg.Height - fh - 3 // header, stats line, status line
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderClusters())
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.status = "Refreshing..."
			return m, m.refresh()
		case "down", "j":
			m.viewport.LineDown(1)
			return m, nil
		case "up", "k":
			m.viewport.LineUp(1)
			return m, nil
		}
	case tickMsg:
		return m, tea.Batch(m.refresh(), tick())
	case refreshMsg:
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.clusters = msg.clusters
		m.stats = msg.stats
		m.status = fmt.Sprintf("Updated %s", time.Now().Format("15:04:05"))
		m.viewport.SetContent(m.renderClusters())
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("faqmill — top questions")
	stats := statsStyle.Render(fmt.Sprintf(
		"requests %d  ok %d  failed %d  avg %.0fms  up %s",
		m.stats.TotalRequests, m.stats.SuccessfulRequests, m.stats.FailedRequests,
		m.stats.AvgLatencyMs, (time.Duration(m.stats.UptimeSeconds) * time.Second).String(),
	))
	body := boxStyle.Render(m.viewport.View())
	status := statusStyle.Render(m.status + "  (r refresh, q quit)")
	return header + "\n" + stats + "\n" + body + "\n" + status
}

func (m Model) renderClusters() string {
	if len(m.clusters) == 0 {
		return "No questions recorded yet."
	}
	var b strings.Builder
	for i, c := range m.clusters {
		fmt.Fprintf(&b, "%s %s\n",
			rankStyle.Render(fmt.Sprintf("%d. (%d)", i+1, c.TotalCount)),
			repStyle.Render(c.RepresentativeQuery))
		for j, v := range c.Variants {
			if v == c.RepresentativeQuery {
				continue
			}
			count := int64(0)
			if j < len(c.VariantCounts) {
				count = c.VariantCounts[j]
			}
			fmt.Fprintf(&b, "     %s\n", variantStyle.Render(fmt.Sprintf("%s (%d)", v, count)))
		}
	}
	return b.String()
}

func (m Model) refresh() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		clusters, err := client.Clusters(ctx)
		if err != nil {
			return refreshMsg{err: err}
		}
		stats, err := client.Statistics(ctx)
		if err != nil {
			return refreshMsg{err: err}
		}
		return refreshMsg{clusters: clusters, stats: stats}
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	statsStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	rankStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	repStyle     = lipgloss.NewStyle().Bold(true)
	variantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)
