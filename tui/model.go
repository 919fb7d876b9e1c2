package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mityguitar/controller"
	"mityguitar/music"
	"mityguitar/perform"
	"mityguitar/theme"
	"mityguitar/widgets"
)

// Keyboard fret mapping: home row for the main frets, number row for
// the solo row.
var fretKeys = map[string]controller.Button{
	"a": controller.BtnFretGreen,
	"s": controller.BtnFretRed,
	"d": controller.BtnFretYellow,
	"f": controller.BtnFretBlue,
	"g": controller.BtnFretOrange,
	"1": controller.BtnSoloGreen,
	"2": controller.BtnSoloRed,
	"3": controller.BtnSoloYellow,
	"4": controller.BtnSoloBlue,
	"5": controller.BtnSoloOrange,
}

type Model struct {
	Manager   *perform.Manager
	DeviceMgr *controller.DeviceManager
	Sim       *controller.Simulator
	Theme     *theme.Theme

	guitarID string // connected hardware, empty if none
	quitting bool

	// Keyboard frets latch: pressing toggles, since terminals deliver
	// no key-up events.
	heldKeys map[string]bool
}

var helpSections = []widgets.KeySection{
	{Title: "Play", Keys: []widgets.KeyBinding{
		{Key: "a-g / 1-5", Desc: "frets (main / solo)"},
		{Key: "space/enter", Desc: "strum down / up"},
		{Key: "w / e", Desc: "whammy push / release"},
	}},
	{Title: "Context", Keys: []widgets.KeyBinding{
		{Key: "G", Desc: "next genre"},
		{Key: "J / K", Desc: "key down / up"},
		{Key: "M", Desc: "toggle major/minor"},
		{Key: "I", Desc: "next instrument"},
		{Key: "P", Desc: "next pattern"},
		{Key: "R", Desc: "rescan soundfonts"},
	}},
	{Title: "System", Keys: []widgets.KeyBinding{
		{Key: "esc", Desc: "panic (all notes off)"},
		{Key: "q", Desc: "quit"},
	}},
}

type UpdateMsg struct{}

type DeviceEventMsg controller.DeviceEvent

func NewModel(manager *perform.Manager, deviceMgr *controller.DeviceManager, sim *controller.Simulator, th *theme.Theme) Model {
	return Model{
		Manager:   manager,
		DeviceMgr: deviceMgr,
		Sim:       sim,
		Theme:     th,
		heldKeys:  make(map[string]bool),
	}
}

func ListenForUpdates(manager *perform.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.UpdateChan
		return UpdateMsg{}
	}
}

func ListenForDevices(deviceMgr *controller.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event := <-deviceMgr.Events()
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForUpdates(m.Manager),
		ListenForDevices(m.DeviceMgr),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "q", "ctrl+c":
			m.quitting = true
			m.Manager.Stop()
			return m, tea.Quit

		case " ":
			m.Sim.Strum(false)
		case "enter":
			m.Sim.Strum(true)

		case "w":
			m.Sim.SetWhammy(m.Sim.State().Whammy + 0.25)
		case "e":
			m.Sim.SetWhammy(0)

		case "G":
			m.Manager.CycleGenre(1)
		case "K":
			m.Manager.CycleKey(1)
		case "J":
			m.Manager.CycleKey(-1)
		case "M":
			m.Manager.ToggleMode()
		case "I":
			m.Manager.CycleInstrument(1)
		case "P":
			m.Manager.CyclePattern(1)
		case "R":
			m.Manager.RescanInstruments()

		case "esc":
			m.Manager.Panic()
			m.Sim.Reset()
			m.heldKeys = make(map[string]bool)

		default:
			if b, ok := fretKeys[key]; ok {
				held := !m.heldKeys[key]
				m.heldKeys[key] = held
				m.Sim.SetButton(b, held)
			}
		}

	case UpdateMsg:
		return m, ListenForUpdates(m.Manager)

	case DeviceEventMsg:
		event := controller.DeviceEvent(msg)
		if event.Type == controller.DeviceConnected {
			m.guitarID = event.ID
			m.Manager.AttachSource(event.Guitar.Snapshots())
		} else if m.guitarID == event.ID {
			m.guitarID = ""
		}
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	settings := m.Manager.Settings()
	snap := m.Manager.LastSnapshot()
	stats := m.Manager.Stats()
	chords := m.Manager.ChordMap()

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())
	okStyle := lipgloss.NewStyle().Foreground(m.Theme.Success())

	// Header: context plus device status
	device := dimStyle.Render("keyboard")
	if m.guitarID != "" {
		device = okStyle.Render(m.guitarID)
	}
	header := headerStyle.Render(fmt.Sprintf("mityguitar  %s  %s %s  pat:%d  %s",
		settings.Genre.Name(), settings.Key.Name(), settings.Mode.Name(),
		settings.Pattern, m.Manager.Instrument().Name)) + "  " + device

	// Fret rows with resolved chord names
	var mainHeld, soloHeld [5]bool
	for f := music.FretButton(0); f < music.NumFrets; f++ {
		mainHeld[f] = snap.Pressed(controller.BtnFretGreen + controller.Button(f))
		soloHeld[f] = snap.Pressed(controller.BtnSoloGreen + controller.Button(f))
	}

	var chordLine strings.Builder
	for f := music.FretButton(0); f < music.NumFrets; f++ {
		if spec, ok := chords[f]; ok {
			chordLine.WriteString(widgets.RenderChordLabel(f, spec))
			chordLine.WriteString(" ")
		}
	}

	frets := fmt.Sprintf("%s  %s   solo %s",
		widgets.RenderFretRow(m.Theme, mainHeld),
		widgets.RenderStrum(m.Theme, snap.Pressed(controller.BtnStrumUp), snap.Pressed(controller.BtnStrumDown)),
		widgets.RenderFretRow(m.Theme, soloHeld))

	whammy := fmt.Sprintf("whammy %s", widgets.RenderGauge(m.Theme, snap.Whammy, 16))

	// Diagnostics
	voices := fmt.Sprintf("voices %s %2d", widgets.RenderVoiceMeter(m.Theme, stats.ActiveVoices, 16), stats.ActiveVoices)
	diag := dimStyle.Render(fmt.Sprintf("latency %.1fms", stats.LatencyMs))
	if stats.Underruns > 0 || stats.Overflows > 0 {
		diag += "  " + warnStyle.Render(fmt.Sprintf("underruns:%d drops:%d", stats.Underruns, stats.Overflows))
	}

	help := dimStyle.Render(widgets.RenderKeyHelp(helpSections))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(chordLine.String())
	out.WriteString("\n")
	out.WriteString(frets)
	out.WriteString("\n")
	out.WriteString(whammy)
	out.WriteString("\n\n")
	out.WriteString(voices)
	out.WriteString("\n")
	out.WriteString(diag)
	out.WriteString("\n\n")
	out.WriteString(help)

	return out.String()
}
