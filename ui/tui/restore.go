package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Fettser/diplom-deploy/domain/restore"
	"github.com/Fettser/diplom-deploy/ui/model"
	"github.com/Fettser/diplom-deploy/ui/presenter"
)

// SubmitFunc performs one restoration exchange.
type SubmitFunc func(ctx context.Context) (*restore.Result, error)

type keyMap struct {
	Quit  key.Binding
	Retry key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c", "esc"),
		key.WithHelp("q", "quit"),
	),
	Retry: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "resubmit"),
	),
}

type resultMsg struct {
	seq uint64
	res *restore.Result
	err error
	at  time.Time
}

type tickMsg time.Time

// RestoreModel is a Bubble Tea model driving one submission at a time through
// a model.RequestModel, so status precedence matches the desktop viewer.
type RestoreModel struct {
	name     string
	submit   SubmitFunc
	timeout  time.Duration
	req      *model.RequestModel
	spinner  spinner.Model
	ctx      context.Context
	cancel   context.CancelFunc
	now      func() time.Time
	width    int
	height   int
	quitting bool
}

// NewRestoreModel creates a model that submits on Init. name labels the file.
func NewRestoreModel(name string, submit SubmitFunc, timeout time.Duration) *RestoreModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = WarningStyle
	ctx, cancel := context.WithCancel(context.Background())
	return &RestoreModel{
		name:    name,
		submit:  submit,
		timeout: timeout,
		req:     model.NewRequestModel(),
		spinner: sp,
		ctx:     ctx,
		cancel:  cancel,
		now:     time.Now,
		width:   80,
		height:  24,
	}
}

// Request exposes the underlying request model.
func (m *RestoreModel) Request() *model.RequestModel { return m.req }

// Init implements tea.Model.
func (m *RestoreModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.begin(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// begin starts a submission unless one is loading.
func (m *RestoreModel) begin() tea.Cmd {
	seq, ok := m.req.Begin(m.now())
	if !ok {
		return nil
	}
	submit, timeout, parent := m.submit, m.timeout, m.ctx
	return func() tea.Msg {
		ctx := parent
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(parent, timeout)
			defer cancel()
		}
		var (
			res *restore.Result
			err error
		)
		func() {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("restore panic: %v", r)
				}
			}()
			res, err = submit(ctx)
		}()
		return resultMsg{seq: seq, res: res, err: err, at: time.Now()}
	}
}

// Update implements tea.Model.
func (m *RestoreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			m.cancel()
			m.req.Close()
			return m, tea.Quit
		case key.Matches(msg, keys.Retry):
			return m, m.begin()
		}

	case resultMsg:
		if msg.err != nil {
			m.req.Fail(msg.seq, msg.err, msg.at)
		} else {
			m.req.Succeed(msg.seq, msg.res, msg.at)
		}
		return m, nil

	case tickMsg:
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// Status reports the viewer status for the current request state.
func (m *RestoreModel) Status() presenter.Status {
	return presenter.StatusOf(m.req.Loading(), m.req.Failed(), m.req.Result() != nil)
}

// View implements tea.Model.
func (m *RestoreModel) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Interferogram restoration"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("File:"), m.name)

	now := m.now()
	switch m.Status() {
	case presenter.StatusLoading:
		secs := int(m.req.Elapsed(now).Seconds())
		fmt.Fprintf(&b, "%s %s %s\n", LabelStyle.Render("Status:"), m.spinner.View(),
			WarningStyle.Render(fmt.Sprintf("Restoring... %ds", secs)))
	case presenter.StatusError:
		fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("Status:"),
			ErrorStyle.Render("Restoration failed. Check the image and parameters, then try again."))
		if err := m.req.Err(); err != nil {
			fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("Error:"), err.Error())
		}
	case presenter.StatusSurface:
		res := m.req.Result()
		fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("Status:"),
			SuccessStyle.Render(fmt.Sprintf("%d x %d points in %s", res.Cols(), res.Rows(), m.req.Elapsed(now).Round(time.Millisecond))))
		cols, rows := m.width/2-4, m.height-10
		b.WriteString(BoxStyle.Render(HeatMap(res, cols, rows)))
		b.WriteString("\n")
		b.WriteString(Legend(res))
		b.WriteString("\n")
	default:
		fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("Status:"), "No data")
	}
	b.WriteString(HelpStyle.Render("r resubmit  q quit"))
	return b.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}

// Run starts the program and returns the final request model once the user quits.
func Run(name string, submit SubmitFunc, timeout time.Duration) (*model.RequestModel, error) {
	m := NewRestoreModel(name, submit, timeout)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return m.req, err
}
