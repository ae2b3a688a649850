package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// LoadTask is one unit of startup work shown in the loader.
type LoadTask struct {
	Label string
	Run   func() error
}

// loaderPoolSize bounds concurrent tasks. Three startup lookups is the
// largest fan-out the shell performs, so five slots never queue.
const loaderPoolSize = 5

type taskDoneMsg struct {
	index int
	err   error
}

type loaderModel struct {
	title    string
	spinners []SpinnerComponent
	errs     []error
	done     int
}

func (m loaderModel) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.spinners))
	for i := range m.spinners {
		m.spinners[i].Start()
		cmds = append(cmds, m.spinners[i].Init())
	}
	return tea.Batch(cmds...)
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case taskDoneMsg:
		if msg.err != nil {
			m.spinners[msg.index].State = SpinnerComponentFailed
			m.errs[msg.index] = msg.err
		} else {
			m.spinners[msg.index].State = SpinnerComponentSuccess
		}
		m.done++
		if m.done == len(m.spinners) {
			return m, tea.Quit
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m, nil
	default:
		var cmds []tea.Cmd
		for i := range m.spinners {
			var cmd tea.Cmd
			m.spinners[i], cmd = m.spinners[i].Update(msg)
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		return m, tea.Batch(cmds...)
	}
}

func (m loaderModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorSecondary)
	out := titleStyle.Render(m.title) + "\n"
	for i := range m.spinners {
		out += "  " + m.spinners[i].View() + "\n"
	}
	return out
}

// RunLoader runs the given tasks concurrently (at most loaderPoolSize at a
// time) while displaying a labelled spinner per task. It blocks until every
// task finishes and returns the first error in task order, or nil.
func RunLoader(title string, tasks []LoadTask) error {
	model := loaderModel{
		title:    title,
		spinners: make([]SpinnerComponent, len(tasks)),
		errs:     make([]error, len(tasks)),
	}
	for i, t := range tasks {
		model.spinners[i] = NewSpinnerComponent(t.Label)
		model.spinners[i].Start()
	}

	p := tea.NewProgram(model)

	sem := make(chan struct{}, loaderPoolSize)
	for i, t := range tasks {
		go func(i int, t LoadTask) {
			sem <- struct{}{}
			defer func() { <-sem }()
			p.Send(taskDoneMsg{index: i, err: t.Run()})
		}(i, t)
	}

	final, err := p.Run()
	if err != nil {
		return err
	}
	fm := final.(loaderModel)
	for _, e := range fm.errs {
		if e != nil {
			return e
		}
	}
	return nil
}
