package viz

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/rigid2d/internal/config"
)

var sceneInfo = map[string]string{
	"drop":    "box onto the ground",
	"stack":   "tower of boxes",
	"pyramid": "stacked rows",
	"bounce":  "restitution",
	"circles": "seeded rain of balls",
	"pool":    "zero gravity break",
	"slide":   "friction vs none",
}

var pickerParams = []string{"dt", "gravity", "substeps", "iterations", "restitution", "static_friction", "kinetic_friction"}

var (
	pickTitle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	pickSub    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	pickCursor = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	pickActive = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	pickValue  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff")).Bold(true)
	pickIdle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	pickKey    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// Picker lets the user choose a scene, edit its parameters and run it.
type Picker struct {
	state, cursor int
	scenes        []string
	cfg           *config.Config
	paramCursor   int
	editing       bool
	editBuf       string
	err           string
	live          Model
}

func NewPicker() *Picker {
	return &Picker{state: stateMenu, scenes: config.ListPresets()}
}

// RunInteractive opens the scene picker.
func RunInteractive() error { return Run(NewPicker()) }

func (p *Picker) Init() tea.Cmd { return nil }

func (p *Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.state == stateSim {
		next, cmd := p.live.Update(msg)
		p.live = next.(Model)
		return p, cmd
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		if p.state == stateMenu {
			return p, p.menuKey(key)
		}
		return p, p.configKey(key)
	}
	return p, nil
}

func (p *Picker) menuKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.scenes)-1 {
			p.cursor++
		}
	case "enter", " ":
		p.cfg = config.GetPreset(p.scenes[p.cursor])
		p.state, p.paramCursor, p.err = stateConfig, 0, ""
	}
	return nil
}

func (p *Picker) configKey(msg tea.KeyMsg) tea.Cmd {
	name := pickerParams[p.paramCursor]
	if p.editing {
		switch msg.String() {
		case "enter":
			v, err := strconv.ParseFloat(p.editBuf, 64)
			if err != nil {
				p.err = err.Error()
			} else {
				p.set(name, v)
			}
			p.editing, p.editBuf = false, ""
		case "esc":
			p.editing, p.editBuf = false, ""
		case "backspace":
			if len(p.editBuf) > 0 {
				p.editBuf = p.editBuf[:len(p.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 && strings.ContainsAny(s, "0123456789.-") {
				p.editBuf += s
			}
		}
		return nil
	}

	switch msg.String() {
	case "ctrl+c":
		return tea.Quit
	case "q", "esc":
		p.state = stateMenu
	case "up", "k":
		if p.paramCursor > 0 {
			p.paramCursor--
		}
	case "down", "j":
		if p.paramCursor < len(pickerParams)-1 {
			p.paramCursor++
		}
	case "enter", " ":
		v, _ := p.cfg.Param(name)
		p.editing, p.editBuf = true, strconv.FormatFloat(v, 'g', -1, 64)
	case "left", "h":
		v, _ := p.cfg.Param(name)
		p.set(name, v-step(name))
	case "right", "l":
		v, _ := p.cfg.Param(name)
		p.set(name, v+step(name))
	case "s":
		return p.start()
	}
	return nil
}

func step(name string) float64 {
	switch name {
	case "dt":
		return 0.001
	case "gravity":
		return 10
	case "substeps", "iterations":
		return 1
	}
	return 0.05
}

func (p *Picker) set(name string, v float64) {
	if err := p.cfg.SetParam(name, v); err != nil {
		p.err = err.Error()
		return
	}
	p.err = ""
}

func (p *Picker) start() tea.Cmd {
	if err := p.cfg.Validate(); err != nil {
		p.err = err.Error()
		return nil
	}
	live, err := NewModel(p.cfg)
	if err != nil {
		p.err = err.Error()
		return nil
	}
	p.live, p.state = live, stateSim
	return p.live.Init()
}

func (p *Picker) View() string {
	switch p.state {
	case stateConfig:
		return p.viewConfig()
	case stateSim:
		return p.live.View()
	}
	return p.viewMenu()
}

func (p *Picker) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + pickTitle.Render("RIGID2D") + "\n    " + pickSub.Render("2d rigid body scenes") + "\n    " + pickSub.Render("─────────────────────────") + "\n\n")
	for i, name := range p.scenes {
		desc := sceneInfo[name]
		if i == p.cursor {
			fmt.Fprintf(&b, "    %s %s  %s\n", pickCursor.Render("▸"), pickActive.Render(fmt.Sprintf("%-10s", name)), pickValue.UnsetBold().Render(desc))
		} else {
			fmt.Fprintf(&b, "    %s  %s\n", pickIdle.Render(fmt.Sprintf("  %-10s", name)), pickIdle.Render(desc))
		}
	}
	b.WriteString("\n    " + hints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (p *Picker) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + pickTitle.Render(strings.ToUpper(p.cfg.Scene)) + "\n    " + pickSub.Render(sceneInfo[p.cfg.Scene]) + "\n    " + pickSub.Render("─────────────────────────") + "\n\n")
	for i, name := range pickerParams {
		v, _ := p.cfg.Param(name)
		valStr := fmt.Sprintf("%8.4g", v)
		if p.editing && i == p.paramCursor {
			valStr = fmt.Sprintf("%8s", p.editBuf+"_")
		}
		if i == p.paramCursor {
			fmt.Fprintf(&b, "    %s %s %s\n", pickCursor.Render("▸"), pickActive.Render(fmt.Sprintf("%-16s", name)), pickValue.Render(valStr))
		} else {
			fmt.Fprintf(&b, "    %s %s\n", pickIdle.Render(fmt.Sprintf("  %-16s", name)), pickIdle.Render(valStr))
		}
	}
	if p.err != "" {
		b.WriteString("\n    " + StatusRecording.UnsetBlink().Render(p.err) + "\n")
	}
	b.WriteString("\n    " + hints("j/k", "select", "h/l", "adjust", "enter", "edit", "s", "start", "esc", "back") + "\n")
	return b.String()
}

func hints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(pickKey.Render(pairs[i]) + pickIdle.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}
