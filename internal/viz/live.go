package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/rigid2d/internal/config"
	"github.com/san-kum/rigid2d/internal/metrics"
	"github.com/san-kum/rigid2d/internal/physics"
	"github.com/san-kum/rigid2d/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	trailLength     = 60
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
)

// tunables are the scene parameters adjustable while running. Restitution
// applies to every body once touched.
var tunables = []string{"dt", "gravity", "restitution"}

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model drives a world (or replays recorded frames) on a braille canvas.
type Model struct {
	cfg       *config.Config
	world     *physics.World
	dt        float64
	sceneName string

	canvas *Canvas
	view   Viewport

	running    bool
	replay     bool
	showTrails bool
	showHelp   bool
	status     string

	params        map[string]float64
	initialParams map[string]float64
	selected      int

	energyHistory  []float64
	contactHistory []float64
	history        []sim.Frame
	playHead       int

	recording bool
	gifPath   string
	frames    []*image.Paletted
}

// NewModel builds the scene and starts it running.
func NewModel(cfg *config.Config) (Model, error) {
	m := Model{
		cfg:           cfg.Clone(),
		sceneName:     cfg.Scene,
		canvas:        NewCanvas(width, height),
		running:       true,
		showTrails:    true,
		gifPath:       "rigid2d.gif",
		params:        make(map[string]float64),
		initialParams: make(map[string]float64),
		playHead:      -1,
	}
	m.initialParams["dt"] = cfg.Dt
	m.initialParams["gravity"] = cfg.World.Gravity.Y
	for _, b := range cfg.Bodies {
		m.initialParams["restitution"] = max(m.initialParams["restitution"], b.Restitution)
	}
	if err := m.rebuild(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// NewReplay plays back recorded frames. Stepping moves through the recording.
func NewReplay(name string, frames []sim.Frame) (Model, error) {
	if len(frames) == 0 {
		return Model{}, fmt.Errorf("replay %s: no frames", name)
	}
	m := Model{
		sceneName:  name,
		canvas:     NewCanvas(width, height),
		running:    true,
		replay:     true,
		showTrails: true,
		gifPath:    "rigid2d.gif",
		history:    frames,
		playHead:   0,
	}
	m.view = FitFrames(m.canvas, frames...)
	for _, fr := range frames {
		m.contactHistory = append(m.contactHistory, float64(fr.Contacts))
	}
	return m, nil
}

// SetGIFPath changes where recordings are written.
func (m *Model) SetGIFPath(path string) { m.gifPath = path }

// Run starts the program on the alternate screen.
func Run(m tea.Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m *Model) rebuild() error {
	w, _, err := m.cfg.Build()
	if err != nil {
		return err
	}
	m.world = w
	m.dt = m.cfg.Dt
	for k, v := range m.initialParams {
		m.params[k] = v
	}
	m.applyParams()
	m.history = m.history[:0]
	m.energyHistory = m.energyHistory[:0]
	m.contactHistory = m.contactHistory[:0]
	m.playHead = -1

	first := sim.Snapshot(w, 0)
	m.history = append(m.history, first)
	m.view = FitFrames(m.canvas, first)
	return nil
}

func (m *Model) applyParams() {
	m.dt = m.params["dt"]
	g := m.world.Gravity()
	m.world.SetGravity(physics.Vec(g.X, m.params["gravity"]))
}

func (m Model) Init() tea.Cmd { return tick() }

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n", ".":
			m.running = false
			m.advance()
		case "r":
			m.reset()
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "tab":
			m.cycleParam()
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		case "p":
			m.showTrails = !m.showTrails
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			NextTheme()
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		m.draw()
		if m.recording {
			m.captureFrame()
		}
		return m, tick()
	}
	return m, nil
}

// advance moves one frame forward: through history when replaying or
// scrubbing, otherwise by stepping the world.
func (m *Model) advance() {
	if m.replay {
		if m.playHead < len(m.history)-1 {
			m.playHead++
		} else {
			m.running = false
		}
		return
	}
	if m.playHead != -1 {
		m.playHead++
		if m.playHead >= len(m.history) {
			m.playHead = -1
		}
		return
	}
	m.step()
}

// step advances the physics simulation.
func (m *Model) step() {
	m.world.Update(m.dt)

	m.energyHistory = appendCapped(m.energyHistory, metrics.KineticEnergy(m.world))
	m.contactHistory = appendCapped(m.contactHistory, float64(m.world.ContactCount()))

	m.history = append(m.history, sim.Snapshot(m.world, int(m.world.Frames())))
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

// scrub changes the playback position in history.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		if m.replay {
			m.playHead = len(m.history) - 1
		} else {
			m.playHead = -1
		}
	}
}

// reset restores the initial scene and parameters.
func (m *Model) reset() {
	if m.replay {
		m.playHead = 0
		return
	}
	if err := m.rebuild(); err != nil {
		m.status = err.Error()
	}
}

func (m *Model) cycleParam() {
	if m.replay {
		return
	}
	m.selected = (m.selected + 1) % len(tunables)
}

func (m *Model) adjustParam(factor float64) {
	if m.replay {
		return
	}
	key := tunables[m.selected]
	val := m.params[key] * factor
	if val == 0 && factor > 1 {
		val = 0.05
	}
	m.params[key] = val
	if key == "restitution" {
		val = min(val, 1)
		m.params[key] = val
		for _, b := range m.world.Bodies() {
			b.Restitution = val
		}
	}
	m.applyParams()
}

// current returns the frame on screen.
func (m *Model) current() sim.Frame {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		return m.history[m.playHead]
	}
	return m.history[len(m.history)-1]
}

func (m *Model) draw() {
	m.canvas.Clear()
	if m.showTrails {
		end := len(m.history)
		if m.playHead >= 0 {
			end = m.playHead + 1
		}
		DrawTrails(m.canvas, m.view, m.history[max(0, end-trailLength):end])
	}
	DrawFrame(m.canvas, m.view, m.current())
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	theme := CurrentTheme
	canvasView := canvasStyle.Foreground(theme.Scene).Render(m.canvas.String())
	fr := m.current()

	var s strings.Builder
	s.WriteString(HeaderStyle.Foreground(theme.Header).Render(strings.ToUpper(m.sceneName)) + "\n")
	s.WriteString(m.statusLine(fr) + "\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Kinetic energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}
	s.WriteString(MetricLabel.Render("Contacts  ") + SparklineChart(m.contactHistory, 30) + "\n\n")

	row := func(label, value string) {
		s.WriteString(MetricLabel.Width(12).Render(label) + MetricValue.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", fr.Time))
	row("Frame", fmt.Sprintf("%d", fr.Index))
	row("Bodies", fmt.Sprintf("%d", len(fr.Bodies)))
	row("Contacts", fmt.Sprintf("%d", fr.Contacts))
	if n := len(m.energyHistory); n > 0 && !m.replay {
		row("Energy", fmt.Sprintf("%.2f", m.energyHistory[n-1]))
	}
	if m.replay {
		s.WriteString("\n" + ProgressBar(float64(m.playHead)/float64(max(1, len(m.history)-1)), 30) + "\n")
	} else {
		s.WriteString("\nPARAMETERS\n")
		for i, k := range tunables {
			line := fmt.Sprintf("%-12s %.4g", k, m.params[k])
			if i == m.selected {
				s.WriteString(NeonGlow.Render("> "+line) + "\n")
			} else {
				s.WriteString("  " + MetricLabel.Render(line) + "\n")
			}
		}
	}
	if m.status != "" {
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(theme.Alert).Render(m.status) + "\n")
	}
	s.WriteString("\n" + Separator(30) + "\n" + KeyHint.Render("SP:Pause N:Step R:Reset Q:Quit\nT:Theme  G:Record P:Trails ?:Help\n[ ]:Time-Travel ↑↓:Tune"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

func (m Model) statusLine(fr sim.Frame) string {
	switch {
	case m.recording:
		return StatusRecording.Render("● REC")
	case m.replay && m.running:
		return StatusRunning.Render(fmt.Sprintf("REPLAY %d/%d", m.playHead, len(m.history)-1))
	case m.replay:
		return StatusPaused.Render(fmt.Sprintf("REPLAY PAUSED %d/%d", m.playHead, len(m.history)-1))
	case m.playHead != -1:
		back := m.history[len(m.history)-1].Time - fr.Time
		return StatusPaused.Render(fmt.Sprintf("TIME TRAVEL (-%.2fs)", back))
	case !m.running:
		return StatusPaused.Render("PAUSED")
	}
	return StatusRunning.Render("RUNNING")
}

const helpOverlay = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  N / .    - Single step              ║
║  R        - Reset scene              ║
║  Q        - Quit                     ║
║  Tab      - Cycle parameters         ║
║  Up/K     - Increase parameter (+5%) ║
║  Down/J   - Decrease parameter (-5%) ║
║  [        - Rewind (time travel)     ║
║  ]        - Forward (time travel)    ║
║  P        - Toggle trails            ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.frames = m.frames[:0]
		return
	}
	m.recording = false
	if err := m.saveGIF(); err != nil {
		m.status = err.Error()
	} else {
		m.status = "saved " + m.gifPath
	}
	m.frames = nil
}

func (m *Model) captureFrame() {
	m.frames = append(m.frames, CanvasImage(m.canvas, 8, 16))
}

// CanvasImage rasterises the canvas at charW x charH pixels per cell.
func CanvasImage(c *Canvas, charW, charH int) *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, c.Width*charW, c.Height*charH), color.Palette{color.Black, color.White})
	dotW, dotH := charW/2, charH/4
	for y := 0; y < c.PixelHeight(); y++ {
		for x := 0; x < c.PixelWidth(); x++ {
			if !c.IsSet(x, y) {
				continue
			}
			for py := 0; py < dotH; py++ {
				for px := 0; px < dotW; px++ {
					img.SetColorIndex(x*dotW+px, y*dotH+py, 1)
				}
			}
		}
	}
	return img
}

func (m *Model) saveGIF() error {
	if len(m.frames) == 0 {
		return fmt.Errorf("gif: nothing recorded")
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 2)
	}
	f, err := os.Create(m.gifPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}
