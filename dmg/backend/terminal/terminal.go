package terminal

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/valerio/go-dmg/dmg/backend"
	"github.com/valerio/go-dmg/dmg/backend/terminal/render"
	"github.com/valerio/go-dmg/dmg/input"
	"github.com/valerio/go-dmg/dmg/input/action"
	"github.com/valerio/go-dmg/dmg/input/event"
	"github.com/valerio/go-dmg/dmg/video"
)

const (
	width  = video.FramebufferWidth
	height = video.FramebufferHeight

	// one row of cells holds two pixel rows
	gameRows      = height / 2
	minTermWidth  = width + 2
	minTermHeight = gameRows + 2
	logBufferSize = 100
)

// Terminals report key presses but never releases, so a key counts as held
// until it has not been seen for keyTimeout.
const keyTimeout = 100 * time.Millisecond

// Backend renders frames with tcell, two pixels per cell using half blocks.
type Backend struct {
	screen     tcell.Screen
	logBuffer  *render.LogBuffer
	logLevel   slog.Level
	config     backend.BackendConfig
	eventQueue []backend.InputEvent
	signals    chan os.Signal

	keyStates  map[action.Action]time.Time // last time each key was seen
	activeKeys map[action.Action]bool      // keys reported pressed last frame

	now func() time.Time
}

// New creates a terminal backend drawing to the process terminal.
func New() *Backend {
	return &Backend{logLevel: slog.LevelInfo, now: time.Now}
}

// NewWithScreen uses the given screen instead of opening the terminal.
func NewWithScreen(screen tcell.Screen) *Backend {
	b := New()
	b.screen = screen
	return b
}

// Init initializes the screen and routes slog output to the log pane.
func (t *Backend) Init(config backend.BackendConfig) error {
	t.config = config
	t.logLevel = config.LogLevel
	t.keyStates = make(map[action.Action]time.Time)
	t.activeKeys = make(map[action.Action]bool)

	if t.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to initialize terminal: %w", err)
		}
		t.screen = screen
	}
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}

	t.logBuffer = render.NewLogBuffer(logBufferSize)
	slog.SetDefault(slog.New(render.NewLogBufferHandler(t.logBuffer, t.logLevel)))

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	t.signals = make(chan os.Signal, 1)
	signal.Notify(t.signals, syscall.SIGHUP, syscall.SIGQUIT)

	slog.Info("Terminal backend initialized", "title", config.Title)
	return nil
}

// Update polls input, renders the frame and returns collected events.
func (t *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	now := t.now()

	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev, now)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	select {
	case sig := <-t.signals:
		slog.Info("Received signal", "signal", sig)
		t.eventQueue = append(t.eventQueue, backend.InputEvent{Action: action.EmulatorQuit, Type: event.Press})
	default:
	}

	events := t.joypadEvents(now)
	events = append(events, t.eventQueue...)
	t.eventQueue = nil

	t.render(frame)
	t.screen.Show()

	return events, nil
}

// Cleanup restores the terminal.
func (t *Backend) Cleanup() error {
	if t.signals != nil {
		signal.Stop(t.signals)
	}
	if t.screen != nil {
		t.screen.Fini()
	}
	return nil
}

// joypadEvents turns the tracked key timestamps into press and release
// edges relative to the previous frame.
func (t *Backend) joypadEvents(now time.Time) []backend.InputEvent {
	var events []backend.InputEvent
	current := make(map[action.Action]bool)

	for act, lastSeen := range t.keyStates {
		if now.Sub(lastSeen) >= keyTimeout {
			delete(t.keyStates, act)
			continue
		}
		current[act] = true
		if !t.activeKeys[act] {
			events = append(events, backend.InputEvent{Action: act, Type: event.Press})
		}
	}

	for act := range t.activeKeys {
		if !current[act] {
			events = append(events, backend.InputEvent{Action: act, Type: event.Release})
		}
	}

	t.activeKeys = current
	return events
}

func (t *Backend) processKeyEvent(ev *tcell.EventKey, now time.Time) {
	act, ok := keyMapping[ev.Key()]
	if !ok && ev.Key() == tcell.KeyRune {
		act, ok = runeMapping[ev.Rune()]
	}
	if !ok {
		return
	}

	if !act.IsGameBoy() {
		t.eventQueue = append(t.eventQueue, backend.InputEvent{Action: act, Type: event.Press})
		return
	}

	// the d-pad is exclusive, a new direction cancels the others
	if isDirection(act) {
		for _, dir := range directions {
			delete(t.keyStates, dir)
		}
	}
	t.keyStates[act] = now
}

var directions = []action.Action{action.GBDPadUp, action.GBDPadDown, action.GBDPadLeft, action.GBDPadRight}

func isDirection(act action.Action) bool {
	for _, dir := range directions {
		if act == dir {
			return true
		}
	}
	return false
}

// tcellKeyNameMap converts tcell keys to key names used in default mappings
var tcellKeyNameMap = map[tcell.Key]string{
	tcell.KeyEnter:      "Enter",
	tcell.KeyBackspace:  "Backspace",
	tcell.KeyBackspace2: "Backspace",
	tcell.KeyUp:         "Up",
	tcell.KeyDown:       "Down",
	tcell.KeyLeft:       "Left",
	tcell.KeyRight:      "Right",
	tcell.KeyEscape:     "Escape",
	tcell.KeyF9:         "F9",
}

func buildKeyMapping() map[tcell.Key]action.Action {
	mapping := make(map[tcell.Key]action.Action)
	for key, keyName := range tcellKeyNameMap {
		if act, ok := input.GetDefaultMapping(keyName); ok {
			mapping[key] = act
		}
	}
	mapping[tcell.KeyCtrlC] = action.EmulatorQuit
	return mapping
}

func buildRuneMapping() map[rune]action.Action {
	mapping := make(map[rune]action.Action)
	for keyName, act := range input.DefaultKeyMap {
		runes := []rune(keyName)
		if len(runes) == 1 {
			mapping[runes[0]] = act
		}
	}
	return mapping
}

var (
	keyMapping  = buildKeyMapping()
	runeMapping = buildRuneMapping()
)

func (t *Backend) render(frame *video.FrameBuffer) {
	t.screen.Clear()

	termWidth, termHeight := t.screen.Size()
	if termWidth < minTermWidth || termHeight < minTermHeight {
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight)
		drawText(t.screen, 0, termHeight/2, termWidth, msg, tcell.StyleDefault.Foreground(tcell.ColorRed))
		return
	}

	dividerX := width + 1
	t.drawBorders(termWidth, termHeight, dividerX)
	t.drawGameBoy(frame)
	t.drawStatus(termWidth, termHeight)
	t.drawLogs(dividerX+2, 1, termWidth-dividerX-2, termHeight)
}

func (t *Backend) drawBorders(termWidth, termHeight, dividerX int) {
	borderStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	titleStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)

	for y := range termHeight - 1 {
		if dividerX < termWidth {
			t.screen.SetContent(dividerX, y, '│', nil, borderStyle)
		}
	}

	title := " Game Boy "
	if t.config.Title != "" {
		title = " " + t.config.Title + " "
	}
	drawText(t.screen, 1, 0, dividerX-1, title, titleStyle)
	drawText(t.screen, dividerX+2, 0, termWidth-dividerX-2, fmt.Sprintf(" Logs [%s] ", t.logLevel), titleStyle)
}

func (t *Backend) drawStatus(termWidth, termHeight int) {
	text := " z/x=A/B Enter/Bksp=Start/Select +/-=speed m=mute r=reset F9=snapshot q=quit "
	if t.config.Status != nil {
		st := t.config.Status()
		mute := ""
		if st.Muted {
			mute = " muted"
		}
		text = fmt.Sprintf(" x%d%s frame %d pc %04X |%s", st.Speed, mute, st.Frame, st.PC, text)
	}
	drawText(t.screen, 0, termHeight-1, termWidth, text, tcell.StyleDefault.Foreground(tcell.ColorWhite))
}

func (t *Backend) drawGameBoy(frame *video.FrameBuffer) {
	pixels := frame.ToSlice()
	for y := 0; y < height; y += 2 {
		for x := range width {
			top := render.PixelToShade(pixels[y*width+x])
			bottom := render.PixelToShade(pixels[(y+1)*width+x])

			char, fg, bg := halfBlock(top, bottom)
			t.screen.SetContent(x, y/2+1, char, nil, tcell.StyleDefault.Foreground(fg).Background(bg))
		}
	}
}

var shadeColors = [4]tcell.Color{
	tcell.ColorBlack,
	tcell.ColorGray,
	tcell.ColorSilver,
	tcell.ColorWhite,
}

func halfBlock(topShade, bottomShade int) (rune, tcell.Color, tcell.Color) {
	char := render.GetHalfBlockChar(topShade, bottomShade)
	if topShade == bottomShade {
		return char, shadeColors[topShade], tcell.ColorDefault
	}
	return char, shadeColors[topShade], shadeColors[bottomShade]
}

func (t *Backend) drawLogs(startX, startY, paneWidth, termHeight int) {
	rows := termHeight - startY - 1
	if paneWidth <= 0 || rows <= 0 {
		return
	}

	debugStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)
	infoStyle := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	warnStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	errStyle := tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)

	y := startY
	for _, entry := range t.logBuffer.GetRecent(0) {
		if y >= startY+rows {
			break
		}
		if entry.Level < t.logLevel {
			continue
		}

		style := infoStyle
		switch {
		case entry.Level >= slog.LevelError:
			style = errStyle
		case entry.Level >= slog.LevelWarn:
			style = warnStyle
		case entry.Level < slog.LevelInfo:
			style = debugStyle
		}

		text := render.FormatLogEntry(entry)
		if len(text) > paneWidth && paneWidth > 3 {
			text = text[:paneWidth-3] + "..."
		}
		drawText(t.screen, startX, y, paneWidth, text, style)
		y++
	}
}

func drawText(screen tcell.Screen, x, y, maxWidth int, text string, style tcell.Style) {
	i := 0
	for _, ch := range text {
		if i >= maxWidth {
			return
		}
		screen.SetContent(x+i, y, ch, nil, style)
		i++
	}
}
