package cli

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dashgrid/pkg/board"
	"github.com/matzehuels/dashgrid/pkg/persist"
	"github.com/matzehuels/dashgrid/pkg/proportion"
	"github.com/matzehuels/dashgrid/pkg/resize"
)

// TUI styles
var (
	tuiPanelStyle    = lipgloss.NewStyle().Foreground(colorGray)
	tuiActiveStyle   = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	tuiLabelStyle    = lipgloss.NewStyle().Foreground(colorWhite)
	tuiStatusStyle   = lipgloss.NewStyle().Foreground(colorDim)
	tuiDegradedStyle = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
)

const (
	// tuiChromeRows is the number of terminal rows below the board.
	tuiChromeRows = 2
	// tuiMinCells is the minimum panel size in terminal cells.
	tuiMinCells = 3
	// tuiRefreshEvery is how often the board re-reads the store.
	tuiRefreshEvery = 5 * time.Second
)

// tuiCommand creates the interactive board command.
func (c *CLI) tuiCommand() *cobra.Command {
	var noPersist bool

	cmd := &cobra.Command{
		Use:   "tui <topology>",
		Short: "Drag panel dividers with the mouse in the terminal",
		Long: `Open a topology as an interactive board.

Drag a divider with the left mouse button. Committed drags are persisted
through the configured cache and store; the board re-reads the store every
few seconds and adopts changes made elsewhere.

Keys: r reset  s sync now  esc cancel drag  q quit`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeTopologies,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd.Context(), args[0], noPersist)
		},
	}

	cmd.Flags().BoolVar(&noPersist, "no-persist", false, "do not load or save layouts")
	return cmd
}

func (c *CLI) runTUI(ctx context.Context, topology string, noPersist bool) error {
	var gw *persist.Gateway
	if !noPersist {
		var err error
		if gw, err = c.openGateway(ctx); err != nil {
			return err
		}
		defer gw.Close()
	}

	// Terminal cells are far coarser than pixels.
	opts := append(c.cfg.ResizeOptions(), resize.WithMinPixels(tuiMinCells))
	hub := resize.NewPointerHub()
	boardOpts := []board.Option{
		board.WithGap(1),
		board.WithHitSlop(1),
		board.WithLogger(c.Logger),
		board.WithResizeOptions(opts...),
		board.WithPointerHub(hub),
	}
	if gw != nil {
		boardOpts = append(boardOpts, board.WithPersistence(gw))
	}
	b, err := board.New(topology, boardOpts...)
	if err != nil {
		return err
	}
	if err := b.Load(ctx); err != nil {
		return err
	}

	m := newBoardModel(ctx, b, hub, gw)
	_, err = tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}

// =============================================================================
// boardModel - Interactive board
// =============================================================================

type refreshTickMsg struct{}

// refreshedMsg carries the guard decisions of one refresh. Only periodic
// refreshes schedule the next tick.
type refreshedMsg struct {
	decisions map[string]resize.Decision
	periodic  bool
}

// boardModel is the bubbletea model of an interactive board.
type boardModel struct {
	ctx    context.Context
	board  *board.Board
	hub    *resize.PointerHub
	gw     *persist.Gateway
	width  int
	height int
	hover  string
	status string
}

// newBoardModel returns a model for b. hub must be the pointer hub the
// board was created with; mouse motion and release are fed into it.
func newBoardModel(ctx context.Context, b *board.Board, hub *resize.PointerHub, gw *persist.Gateway) boardModel {
	return boardModel{ctx: ctx, board: b, hub: hub, gw: gw, width: 80, height: 24, status: "ready"}
}

// area returns the board size in terminal cells.
func (m boardModel) area() (float64, float64) {
	return float64(m.width), float64(max(m.height-tuiChromeRows, 1))
}

func (m boardModel) Init() tea.Cmd {
	return m.scheduleRefresh()
}

func (m boardModel) scheduleRefresh() tea.Cmd {
	if m.gw == nil {
		return nil
	}
	return tea.Tick(tuiRefreshEvery, func(time.Time) tea.Msg { return refreshTickMsg{} })
}

func (m boardModel) refresh(periodic bool) tea.Cmd {
	b, ctx := m.board, m.ctx
	return func() tea.Msg { return refreshedMsg{decisions: b.Refresh(ctx), periodic: periodic} }
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.board.AbandonDrag()
			return m, tea.Quit
		case "esc":
			if m.board.Dragging() {
				m.board.AbandonDrag()
				m.status = "drag cancelled"
			}
		case "r":
			if err := m.board.Reset(m.ctx); err != nil {
				m.status = "reset: " + err.Error()
			} else {
				m.status = "reset to equal splits"
			}
		case "s":
			m.status = "syncing..."
			return m, m.refresh(false)
		}

	case tea.MouseMsg:
		m = m.handleMouse(msg)

	case refreshTickMsg:
		return m, m.refresh(true)

	case refreshedMsg:
		if s := describeDecisions(msg.decisions); s != "" {
			m.status = s
		}
		if msg.periodic {
			return m, m.scheduleRefresh()
		}
	}
	return m, nil
}

func (m boardModel) handleMouse(msg tea.MouseMsg) boardModel {
	w, h := m.area()
	x, y := float64(msg.X), float64(msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m
		}
		d, ok := m.board.DividerAt(x, y, w, h)
		if !ok {
			return m
		}
		if err := m.board.BeginDrag(d.ID, x, y, w, h); err != nil {
			m.status = err.Error()
			return m
		}
		m.status = "dragging " + d.ID

	case tea.MouseActionMotion:
		if d, ok := m.board.ActiveDivider(); ok {
			m.hub.Move(resize.Point{X: x, Y: y})
			m.status = proportion.Format(m.board.Proportions()[d.Group])
			return m
		}
		m.hover = ""
		if d, ok := m.board.DividerAt(x, y, w, h); ok {
			m.hover = d.ID
		}

	case tea.MouseActionRelease:
		d, ok := m.board.ActiveDivider()
		if !ok {
			return m
		}
		// the pointer-up commits the drag and releases the subscription
		m.hub.Up(resize.Point{X: x, Y: y})
		m.status = fmt.Sprintf("%s committed %s", d.Group, proportion.Format(m.board.Proportions()[d.Group]))
	}
	return m
}

// describeDecisions summarises adopted external vectors.
func describeDecisions(ds map[string]resize.Decision) string {
	var adopted []string
	for g, d := range ds {
		if d.Adopted() {
			adopted = append(adopted, g)
		}
	}
	if len(adopted) == 0 {
		return ""
	}
	sort.Strings(adopted)
	return "adopted remote " + strings.Join(adopted, ", ")
}

func (m boardModel) View() string {
	w, h := m.area()
	canvas := newCanvas(int(w), int(h))

	active := ""
	if d, ok := m.board.ActiveDivider(); ok {
		active = d.ID
	}
	highlight := map[string]bool{}
	if id := firstNonEmpty(active, m.hover); id != "" {
		if d, ok := m.board.Topology().Divider(id); ok {
			for _, c := range append(append([]string{}, d.Before...), d.After...) {
				highlight[c] = true
			}
		}
	}

	for _, p := range m.board.Panels() {
		r := p.Rect(w, h)
		label := p.ID
		if s, ok := p.Content.(string); ok && s != "" {
			label = s
		}
		canvas.box(r.X, r.Y, r.W, r.H, label, highlight[p.ID])
	}

	var b strings.Builder
	b.WriteString(canvas.render())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(tuiStatusStyle.Render("drag dividers with the mouse · r reset · s sync · esc cancel · q quit"))
	return b.String()
}

func (m boardModel) statusLine() string {
	parts := []string{StyleTitle.Render(m.board.Topology().Name)}
	if m.gw == nil {
		parts = append(parts, tuiStatusStyle.Render("not persisted"))
	} else if m.gw.Degraded() {
		parts = append(parts, tuiDegradedStyle.Render(fmt.Sprintf("%s remote degraded (%d failures)", iconWarning, m.gw.Failures())))
	}
	parts = append(parts, tuiStatusStyle.Render(m.status))
	return strings.Join(parts, tuiStatusStyle.Render(" · "))
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}

// =============================================================================
// canvas - Box drawing
// =============================================================================

// canvas is a grid of terminal cells with a highlight flag per cell.
type canvas struct {
	w, h  int
	cells [][]rune
	hot   [][]bool
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h, cells: make([][]rune, h), hot: make([][]bool, h)}
	for y := range c.cells {
		c.cells[y] = []rune(strings.Repeat(" ", w))
		c.hot[y] = make([]bool, w)
	}
	return c
}

func (c *canvas) set(x, y int, r rune, hot bool) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	c.cells[y][x] = r
	c.hot[y][x] = hot
}

// box draws a rounded rectangle covering the cells of a pixel rect and
// writes label in its top-left corner.
func (c *canvas) box(fx, fy, fw, fh float64, label string, hot bool) {
	x0, y0 := int(math.Round(fx)), int(math.Round(fy))
	x1, y1 := int(math.Round(fx+fw))-1, int(math.Round(fy+fh))-1
	if x1 <= x0 || y1 <= y0 {
		return
	}
	for x := x0 + 1; x < x1; x++ {
		c.set(x, y0, '─', hot)
		c.set(x, y1, '─', hot)
	}
	for y := y0 + 1; y < y1; y++ {
		c.set(x0, y, '│', hot)
		c.set(x1, y, '│', hot)
	}
	c.set(x0, y0, '╭', hot)
	c.set(x1, y0, '╮', hot)
	c.set(x0, y1, '╰', hot)
	c.set(x1, y1, '╯', hot)

	if y1-y0 < 2 {
		return
	}
	for i, r := range label {
		x := x0 + 2 + i
		if x >= x1 {
			break
		}
		c.set(x, y0+1, r, false)
	}
}

func (c *canvas) render() string {
	lines := make([]string, c.h)
	for y := range c.cells {
		var b strings.Builder
		for x, r := range c.cells[y] {
			s := string(r)
			switch {
			case c.hot[y][x]:
				b.WriteString(tuiActiveStyle.Render(s))
			case r == ' ':
				b.WriteString(s)
			case strings.ContainsRune("─│╭╮╰╯", r):
				b.WriteString(tuiPanelStyle.Render(s))
			default:
				b.WriteString(tuiLabelStyle.Render(s))
			}
		}
		lines[y] = b.String()
	}
	return strings.Join(lines, "\n")
}

// plain returns the canvas without styling.
func (c *canvas) plain() string {
	lines := make([]string, c.h)
	for y := range c.cells {
		lines[y] = string(c.cells[y])
	}
	return strings.Join(lines, "\n")
}
