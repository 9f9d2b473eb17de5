// Package tui рисует прогресс анализа файлов в терминале.
//
// Анализ долгий (vision модель + геокодинг на каждый файл), поэтому
// вместо немого лога показываем спиннер, счётчик и последние события.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"
)

// --- Стили ---
var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")). // Зеленый
			Padding(0, 1)

	fileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")) // Розовый

	skipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)
)

// recentLines — сколько последних событий держим на экране.
const recentLines = 8

// --- Сообщения (Messages) ---

// FileDoneMsg — один файл проанализирован (или пропущен).
type FileDoneMsg struct {
	Name    string
	Skipped bool
}

// PhaseMsg переключает заголовок текущей фазы ("Анализ", "Раскладка"...).
type PhaseMsg string

// DoneMsg — вся работа завершена, программа гасит TUI.
type DoneMsg struct {
	Events int
}

type errMsg error

// --- Модель ---
type model struct {
	spinner spinner.Model

	phase   string
	total   int
	done    int
	skipped int
	recent  []string
	width   int

	finished bool
	events   int
	err      error
}

func initialModel(total int) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return model{
		spinner: s,
		phase:   "Анализ",
		total:   total,
		width:   80,
	}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case PhaseMsg:
		m.phase = string(msg)

	case FileDoneMsg:
		m.done++
		line := fileStyle.Render(msg.Name)
		if msg.Skipped {
			m.skipped++
			line = skipStyle.Render(msg.Name + " (пропущен)")
		}
		m.recent = append(m.recent, line)
		if len(m.recent) > recentLines {
			m.recent = m.recent[len(m.recent)-recentLines:]
		}

	case DoneMsg:
		m.finished = true
		m.events = msg.Events
		return m, tea.Quit

	case errMsg:
		m.err = msg
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m model) View() string {
	if m.err != nil {
		return errStyle.Render("Ошибка: "+m.err.Error()) + "\n"
	}
	if m.finished {
		return fmt.Sprintf("Готово: %d файлов, %d пропущено, %d событий.\n",
			m.done, m.skipped, m.events)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(" photoarch ") + "\n\n")
	b.WriteString(fmt.Sprintf("%s %s %d/%d\n\n",
		m.spinner.View(), m.phase, m.done, m.total))

	for _, line := range m.recent {
		// Узкий терминал не должен ломать рамку — переносим вручную.
		b.WriteString(wrap.String("  "+line, m.width) + "\n")
	}

	b.WriteString("\n(q для выхода)\n")
	return b.String()
}

// Reporter отправляет события прогресса в запущенную программу.
// Все методы безопасны для вызова из рабочей горутины.
type Reporter struct {
	p *tea.Program
}

// NewProgram создаёт Bubble Tea программу прогресса и Reporter к ней.
// Вызывающий обязан запустить p.Run() в главной горутине.
func NewProgram(total int, opts ...tea.ProgramOption) (*tea.Program, *Reporter) {
	p := tea.NewProgram(initialModel(total), opts...)
	return p, &Reporter{p: p}
}

// FileDone сообщает о завершении анализа одного файла.
func (r *Reporter) FileDone(name string, skipped bool) {
	r.p.Send(FileDoneMsg{Name: name, Skipped: skipped})
}

// Phase переключает заголовок фазы.
func (r *Reporter) Phase(title string) {
	r.p.Send(PhaseMsg(title))
}

// Done завершает программу с итоговой сводкой.
func (r *Reporter) Done(events int) {
	r.p.Send(DoneMsg{Events: events})
}

// Fail завершает программу с ошибкой.
func (r *Reporter) Fail(err error) {
	r.p.Send(errMsg(err))
}
