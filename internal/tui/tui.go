// Package tui provides a Bubble Tea terminal monitor for a running
// musicsync daemon.
package tui

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-json"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	albumStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// syncStatus mirrors the daemon's sync-status response.
type syncStatus struct {
	SyncStatus           string     `json:"syncStatus"`
	LastSync             *time.Time `json:"lastSync"`
	TotalTracks          int        `json:"totalTracks"`
	TotalAlbums          int        `json:"totalAlbums"`
	LastScannedMessageID int        `json:"lastScannedMessageId"`
	SyncProgress         string     `json:"syncProgress"`
}

type albumRow struct {
	Title          string `json:"title"`
	TrackCount     int    `json:"trackCount"`
	CoverGenerated bool   `json:"coverGenerated"`
}

type albumsResponse struct {
	Albums []albumRow `json:"albums"`
}

// Message types
type (
	// statusMsg carries a fresh poll of the daemon.
	statusMsg struct {
		status syncStatus
		albums []albumRow
		err    error
	}

	// syncDoneMsg is sent when a triggered sync returns.
	syncDoneMsg struct {
		err error
	}

	// tickMsg drives the periodic refresh.
	tickMsg struct{}
)

// Model is the Bubble Tea model for the monitor.
type Model struct {
	apiBase string
	client  *http.Client
	spinner spinner.Model

	status  syncStatus
	albums  []albumRow
	loaded  bool
	syncing bool
	err     error

	width int
}

// NewModel creates a monitor model polling the daemon at apiBase.
func NewModel(apiBase string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	return Model{
		apiBase: strings.TrimRight(apiBase, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		spinner: sp,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchStatus())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "r":
			return m, m.fetchStatus()

		case "s":
			if !m.syncing {
				m.syncing = true
				return m, tea.Batch(m.triggerSync(), m.spinner.Tick)
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case statusMsg:
		m.loaded = true
		m.err = msg.err
		if msg.err == nil {
			m.status = msg.status
			m.albums = msg.albums
		}
		cmds = append(cmds, m.tick())

	case syncDoneMsg:
		m.syncing = false
		m.err = msg.err
		cmds = append(cmds, m.fetchStatus())

	case tickMsg:
		cmds = append(cmds, m.fetchStatus())
	}

	return m, tea.Batch(cmds...)
}

// View renders the monitor.
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("musicsync monitor"))
	sb.WriteString("\n")

	if !m.loaded {
		sb.WriteString(m.spinner.View() + " connecting to " + m.apiBase + "...\n")
		return sb.String()
	}

	var status strings.Builder
	status.WriteString("Status:    " + renderStatus(m.status.SyncStatus) + "\n")
	if m.status.SyncProgress != "" {
		status.WriteString("Progress:  " + m.status.SyncProgress + "\n")
	}
	status.WriteString(fmt.Sprintf("Albums:    %d\n", m.status.TotalAlbums))
	status.WriteString(fmt.Sprintf("Tracks:    %d\n", m.status.TotalTracks))
	status.WriteString(fmt.Sprintf("Checkpoint: message %d\n", m.status.LastScannedMessageID))
	if m.status.LastSync != nil {
		status.WriteString("Last sync: " + m.status.LastSync.Local().Format("2006-01-02 15:04:05"))
	} else {
		status.WriteString("Last sync: " + dimStyle.Render("never"))
	}
	sb.WriteString(boxStyle.Render(status.String()))
	sb.WriteString("\n\n")

	if len(m.albums) > 0 {
		sb.WriteString(dimStyle.Render("Albums") + "\n")
		max := len(m.albums)
		if max > 10 {
			max = 10
		}
		for _, a := range m.albums[:max] {
			cover := dimStyle.Render("no cover")
			if a.CoverGenerated {
				cover = successStyle.Render("cover ✓")
			}
			sb.WriteString(fmt.Sprintf("  %s  %s  %s\n",
				albumStyle.Render(a.Title),
				dimStyle.Render(fmt.Sprintf("%d tracks", a.TrackCount)),
				cover))
		}
		if len(m.albums) > max {
			sb.WriteString(dimStyle.Render(fmt.Sprintf("  ... and %d more\n", len(m.albums)-max)))
		}
		sb.WriteString("\n")
	}

	if m.syncing {
		sb.WriteString(m.spinner.View() + " sync in progress...\n")
	}
	if m.err != nil {
		sb.WriteString(errorStyle.Render("error: "+m.err.Error()) + "\n")
	}

	sb.WriteString(dimStyle.Render("s: trigger sync • r: refresh • q: quit"))
	return sb.String()
}

func renderStatus(s string) string {
	switch s {
	case "success":
		return successStyle.Render(s)
	case "error":
		return errorStyle.Render(s)
	case "syncing":
		return warningStyle.Render(s)
	default:
		return dimStyle.Render(s)
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(3*time.Second, func(_ time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m Model) fetchStatus() tea.Cmd {
	return func() tea.Msg {
		var status syncStatus
		if err := m.getJSON("/api/music/sync-status", &status); err != nil {
			return statusMsg{err: err}
		}
		var albums albumsResponse
		if err := m.getJSON("/api/music/albums", &albums); err != nil {
			return statusMsg{err: err}
		}
		return statusMsg{status: status, albums: albums.Albums}
	}
}

func (m Model) triggerSync() tea.Cmd {
	return func() tea.Msg {
		resp, err := m.client.Post(m.apiBase+"/api/music/sync", "application/json", nil)
		if err != nil {
			return syncDoneMsg{err: err}
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)
		if resp.StatusCode != http.StatusOK {
			return syncDoneMsg{err: fmt.Errorf("sync returned HTTP %d", resp.StatusCode)}
		}
		return syncDoneMsg{}
	}
}

func (m Model) getJSON(path string, out any) error {
	resp, err := m.client.Get(m.apiBase + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: HTTP %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Run starts the monitor against the daemon at apiBase.
func Run(apiBase string) error {
	p := tea.NewProgram(NewModel(apiBase), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
