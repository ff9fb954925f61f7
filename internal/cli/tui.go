package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/phylograph/treedag/pkg/pipeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// goalDescriptions explains each scheduling goal in the picker.
var goalDescriptions = map[string]string{
	pipeline.GoalLikelihood:    "per-edge likelihoods and the marginal",
	pipeline.GoalMarginal:      "marginal likelihood increments only",
	pipeline.GoalRootward:      "populate rootward partial vectors",
	pipeline.GoalLeafward:      "populate leafward partial vectors",
	pipeline.GoalBranchLengths: "branch length optimization schedule",
	pipeline.GoalSBNParameters: "SBN parameter optimization schedule",
}

// =============================================================================
// GoalListModel - Interactive goal selection
// =============================================================================

// GoalListModel is the bubbletea model for interactive goal selection.
// Space toggles a goal, enter confirms the selection.
type GoalListModel struct {
	Goals    []string
	Cursor   int
	Checked  map[int]bool
	Selected []string
}

// NewGoalListModel creates a goal list over the supported scheduling goals.
func NewGoalListModel() GoalListModel {
	return GoalListModel{
		Goals:   pipeline.SupportedGoals,
		Checked: make(map[int]bool),
	}
}

func (m GoalListModel) Init() tea.Cmd {
	return nil
}

func (m GoalListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Goals)-1 {
				m.Cursor++
			}
		case " ":
			m.Checked[m.Cursor] = !m.Checked[m.Cursor]
		case "enter":
			m.Selected = m.selection()
			return m, tea.Quit
		}
	}
	return m, nil
}

// selection returns the checked goals, or the goal under the cursor when
// nothing is checked.
func (m GoalListModel) selection() []string {
	var goals []string
	for i, goal := range m.Goals {
		if m.Checked[i] {
			goals = append(goals, goal)
		}
	}
	if len(goals) == 0 {
		goals = []string{m.Goals[m.Cursor]}
	}
	return goals
}

func (m GoalListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Scheduling Goals"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  ⏎ confirm  q quit"))
	b.WriteString("\n\n")

	for i, goal := range m.Goals {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		check := "[ ]"
		if m.Checked[i] {
			check = "[" + StyleSuccess.Render("x") + "]"
		}

		line := fmt.Sprintf("%s%s %-16s %s", cursor, check, goal, listDimStyle.Render(goalDescriptions[goal]))

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Goals))))

	return b.String()
}

// pickGoals runs the interactive goal picker and returns the selection.
// Returns nil when the user quits without confirming.
func pickGoals() ([]string, error) {
	model, err := tea.NewProgram(NewGoalListModel()).Run()
	if err != nil {
		return nil, fmt.Errorf("goal picker: %w", err)
	}
	final, ok := model.(GoalListModel)
	if !ok {
		return nil, nil
	}
	return final.Selected, nil
}
