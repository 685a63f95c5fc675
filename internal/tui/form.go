package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cast"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/planner"
)

// field is one profile input. Fields with choices cycle through them instead
// of accepting free text.
type field struct {
	key     string
	label   string
	choices []string
	input   textinput.Model
	choice  int
}

func (f field) value() string {
	if len(f.choices) > 0 {
		return f.choices[f.choice]
	}
	return strings.TrimSpace(f.input.Value())
}

type formModel struct {
	fields  []field
	keymap  KeyMap
	errText string
	focus   int
}

func newTextField(key, label, placeholder string) field {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 16
	in.Width = 16
	return field{key: key, label: label, input: in}
}

func newChoiceField(key, label string, choices ...string) field {
	return field{key: key, label: label, choices: choices}
}

func newForm(initial planner.RawProfile, km KeyMap) formModel {
	f := formModel{
		keymap: km,
		fields: []field{
			newTextField("age", "Age", "32"),
			newTextField("income", "Annual income", "85000"),
			newChoiceField("riskTolerance", "Risk tolerance", "Conservative", "Moderate", "Aggressive"),
			newChoiceField("investmentGoal", "Investment goal", "Retirement", "House", "Education", "Emergency Fund", "Wealth Building"),
			newChoiceField("timeHorizon", "Time horizon", "5 years", "10 years", "20 years", "30 years", "40 years"),
			newTextField("currentSavings", "Current savings", "45000"),
			newTextField("monthlyExpenses", "Monthly expenses", "4200"),
			newChoiceField("hasEmergencyFund", "Emergency fund?", "no", "yes"),
			newChoiceField("has401k", "401(k)?", "no", "yes"),
			newTextField("employerMatch", "Employer match", "5%"),
		},
	}
	f.fields[2].choice = 1
	f.prefill(initial)
	f.setFocus(0)
	return f
}

// prefill copies known values into the form so a rerun starts where the last one left off.
func (f *formModel) prefill(raw planner.RawProfile) {
	for i := range f.fields {
		v, ok := raw[f.fields[i].key]
		if !ok || v == nil {
			continue
		}
		text := cast.ToString(v)
		if b, isBool := v.(bool); isBool {
			text = map[bool]string{true: "yes", false: "no"}[b]
		}
		if len(f.fields[i].choices) == 0 {
			f.fields[i].input.SetValue(text)
			continue
		}
		if _, isString := v.(string); !isString && f.fields[i].key == "timeHorizon" {
			text = planner.TimeHorizon(cast.ToInt(v)).String()
		}
		for j, c := range f.fields[i].choices {
			if strings.EqualFold(c, text) {
				f.fields[i].choice = j
			}
		}
	}
}

func (f *formModel) setFocus(i int) tea.Cmd {
	f.focus = (i + len(f.fields)) % len(f.fields)
	var cmd tea.Cmd
	for j := range f.fields {
		if j == f.focus {
			cmd = f.fields[j].input.Focus()
		} else {
			f.fields[j].input.Blur()
		}
	}
	if len(f.fields[f.focus].choices) > 0 {
		f.fields[f.focus].input.Blur()
		return nil
	}
	return cmd
}

// focusField moves focus to the named field, used after a validation error.
func (f *formModel) focusField(name string) tea.Cmd {
	for i, fl := range f.fields {
		if fl.key == name {
			return f.setFocus(i)
		}
	}
	return nil
}

// raw collects the entered values; blank fields are omitted.
func (f formModel) raw() planner.RawProfile {
	raw := planner.RawProfile{}
	for _, fl := range f.fields {
		if v := fl.value(); v != "" {
			raw[fl.key] = v
		}
	}
	return raw
}

// update returns submit=true when the user asks to build the plan.
func (f formModel) update(msg tea.KeyMsg) (formModel, tea.Cmd, bool) {
	current := &f.fields[f.focus]
	isChoice := len(current.choices) > 0

	switch {
	case key.Matches(msg, f.keymap.Submit):
		return f, nil, true
	case msg.Type == tea.KeyEnter && f.focus == len(f.fields)-1:
		return f, nil, true
	case key.Matches(msg, f.keymap.Next):
		return f, f.setFocus(f.focus + 1), false
	case key.Matches(msg, f.keymap.Prev):
		return f, f.setFocus(f.focus - 1), false
	case isChoice && key.Matches(msg, f.keymap.Right):
		current.choice = (current.choice + 1) % len(current.choices)
		return f, nil, false
	case isChoice && key.Matches(msg, f.keymap.Left):
		current.choice = (current.choice + len(current.choices) - 1) % len(current.choices)
		return f, nil, false
	case isChoice:
		return f, nil, false
	}

	var cmd tea.Cmd
	current.input, cmd = current.input.Update(msg)
	f.errText = ""
	return f, cmd, false
}
