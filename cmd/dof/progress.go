package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/couchcryptid/obstacle-data-etl/internal/adapter/faa"
	"github.com/couchcryptid/obstacle-data-etl/internal/domain"
)

var (
	fetchLabelStyle   = lipgloss.NewStyle().Bold(true)
	fetchCounterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	fetchSpinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
)

var fetchCancelKey = key.NewBinding(
	key.WithKeys("ctrl+c", "esc"),
	key.WithHelp("ctrl+c", "cancel"),
)

// runFetch downloads (or reuses) the cycle's data file. Interactive runs
// get a live progress display on stderr; piped runs get coarse log lines
// so CI output stays short.
func runFetch(ctx context.Context, client *faa.Client, cycle domain.Cycle, logger *slog.Logger) (string, bool, error) {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return client.Fetch(ctx, cycle, logProgress(logger))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := newFetchModel("fetching "+faa.ArchiveName(cycle), cancel)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))

	var (
		path     string
		cached   bool
		fetchErr error
	)
	go func() {
		path, cached, fetchErr = client.Fetch(ctx, cycle, func(downloaded, total int64) {
			program.Send(progressMsg{downloaded: downloaded, total: total})
		})
		program.Send(fetchDoneMsg{err: fetchErr})
	}()

	if _, err := program.Run(); err != nil {
		return "", false, err
	}
	return path, cached, fetchErr
}

// logProgress reports at 10 MiB strides. The callback fires on every read;
// logging each one would flood piped output.
func logProgress(logger *slog.Logger) faa.ProgressFunc {
	const stride = 10 << 20
	var last int64
	return func(downloaded, total int64) {
		complete := total > 0 && downloaded >= total
		if downloaded-last < stride && !complete {
			return
		}
		last = downloaded
		logger.Info("downloading", "bytes", downloaded, "total_bytes", total)
	}
}

// progressMsg carries a download progress update into the TUI.
type progressMsg struct {
	downloaded int64
	total      int64
}

// fetchDoneMsg signals that the fetch goroutine has finished.
type fetchDoneMsg struct {
	err error
}

type fetchModel struct {
	label      string
	cancel     context.CancelFunc
	spin       spinner.Model
	bar        progress.Model
	downloaded int64
	total      int64
	cancelling bool
	err        error
}

func newFetchModel(label string, cancel context.CancelFunc) fetchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = fetchSpinnerStyle
	return fetchModel{
		label:  label,
		cancel: cancel,
		spin:   s,
		bar:    progress.New(progress.WithDefaultGradient()),
	}
}

func (m fetchModel) Init() tea.Cmd {
	return m.spin.Tick
}

func (m fetchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		width := msg.Width - 40
		if width > 60 {
			width = 60
		}
		if width < 10 {
			width = 10
		}
		m.bar.Width = width
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, fetchCancelKey) && !m.cancelling {
			// The fetch goroutine observes the cancelled context and
			// delivers fetchDoneMsg; quitting happens there.
			m.cancelling = true
			m.cancel()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case progressMsg:
		m.downloaded = msg.downloaded
		m.total = msg.total
		return m, nil

	case fetchDoneMsg:
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m fetchModel) View() string {
	if m.err != nil {
		return ""
	}
	if m.cancelling {
		return fmt.Sprintf("%s %s\n", m.spin.View(), fetchLabelStyle.Render("cancelling..."))
	}
	counter := humanBytes(m.downloaded)
	if m.total > 0 {
		percent := float64(m.downloaded) / float64(m.total)
		return fmt.Sprintf("%s %s %s\n",
			fetchLabelStyle.Render(m.label),
			m.bar.ViewAs(percent),
			fetchCounterStyle.Render(counter+" / "+humanBytes(m.total)))
	}
	// No Content-Length from the server; a spinner is all we can show.
	return fmt.Sprintf("%s %s %s\n",
		m.spin.View(),
		fetchLabelStyle.Render(m.label),
		fetchCounterStyle.Render(counter))
}

func humanBytes(n int64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1f GiB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
