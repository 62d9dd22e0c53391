package tui

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/evanschultz/todoboard/internal/app"
	"github.com/evanschultz/todoboard/internal/domain"
)

// Service is the board session the model drives. *app.Session satisfies it.
type Service interface {
	Load(context.Context) error
	Board() app.Board
	Lookup(domain.TaskID) (domain.Task, bool)
	CreateTask(context.Context, string) (domain.Task, error)
	DeleteTask(context.Context, domain.TaskID) error
	MoveTask(context.Context, domain.TaskID, domain.Status) (app.DropResult, error)
	BeginDrag(domain.TaskID) (app.DragPayload, error)
	CancelDrag() bool
	Drop(context.Context, domain.Status) (app.DropResult, error)
	OpenEditor(context.Context, domain.TaskID) (app.EditBuffer, error)
	SaveEditor(context.Context, app.EditBuffer) (domain.Task, error)
	CloseEditor()
}

// inputMode represents a selectable mode.
type inputMode int

const (
	modeNone inputMode = iota
	modeAddTask
	modeEditor
	modeConfirmDelete
)

// editor field indexes in focus order.
const (
	editorFieldDescription = iota
	editorFieldStart
	editorFieldEnd
	editorFieldCount
)

// Per-column overhead: left/right border (2), horizontal padding (4), margin-right (1).
const columnOverhead = 7

// boardRows are the lines above the first column: header and a spacer.
const boardRows = 2

// cardTopOffset is the number of column rows above the first card: border, padding, title.
const cardTopOffset = 3

// editorState holds the open detail editor.
type editorState struct {
	loading     bool
	id          domain.TaskID
	buf         app.EditBuffer
	description textarea.Model
	start       textinput.Model
	end         textinput.Model
	focus       int
	preview     bool
	saving      bool
	// shown is the textarea value right after loading. The widget sanitizes
	// input, so an untouched field saves buf.Description instead.
	shown string
}

// Model represents model data used by this package.
type Model struct {
	svc Service

	ready  bool
	width  int
	height int

	status string
	source string

	help       help.Model
	keys       keyMap
	editorKeys editorKeyMap

	cardFields    CardFieldConfig
	confirmDelete bool
	copyText      func(string) error
	markdown      *markdownRenderer

	board          app.Board
	loaded         bool
	selectedColumn int
	selectedTask   int

	mode          inputMode
	addInput      textinput.Model
	editor        editorState
	pendingDelete domain.Task

	dragging  *app.DragPayload
	mouseDrag bool
	inFlight  int
}

// loadedMsg carries message data through update handling.
type loadedMsg struct {
	board app.Board
	err   error
}

// actionMsg reports a finished mutation together with the refreshed board.
type actionMsg struct {
	board   app.Board
	status  string
	focusID domain.TaskID
	err     error
}

// editorOpenedMsg carries the buffer loaded for the detail editor.
type editorOpenedMsg struct {
	id  domain.TaskID
	buf app.EditBuffer
	err error
}

// editorSavedMsg reports the result of a detail editor save.
type editorSavedMsg struct {
	board app.Board
	task  domain.Task
	err   error
}

// NewModel constructs a new value for this package.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		svc:           svc,
		status:        "loading...",
		help:          h,
		keys:          newKeyMap(),
		editorKeys:    newEditorKeyMap(),
		cardFields:    DefaultCardFieldConfig(),
		confirmDelete: true,
		copyText:      systemClipboard,
		markdown:      &markdownRenderer{},
		board:         app.Project(nil),
		addInput:      newModalInput("title: ", "what needs doing?", "", 200),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.loadData
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		m.resizeEditor()
		return m, nil

	case loadedMsg:
		m.board = msg.board
		if msg.err != nil {
			m.status = app.UserMessage(msg.err)
			return m, nil
		}
		m.loaded = true
		m.clampSelections()
		if m.status == "" || m.status == "loading..." || m.status == "reloading..." {
			m.status = "ready"
		}
		return m, nil

	case actionMsg:
		m.inFlight = max(0, m.inFlight-1)
		m.board = msg.board
		m.loaded = true
		if msg.focusID != "" {
			m.focusTask(msg.focusID)
		}
		m.clampSelections()
		if msg.err != nil {
			m.status = app.UserMessage(msg.err)
			return m, nil
		}
		if msg.status != "" {
			m.status = msg.status
		}
		return m, nil

	case editorOpenedMsg:
		if m.mode != modeEditor {
			if msg.err == nil {
				m.svc.CloseEditor()
			}
			return m, nil
		}
		if m.editor.id != msg.id {
			return m, nil
		}
		if msg.err != nil {
			if errors.Is(msg.err, app.ErrEditorClosed) {
				return m, nil
			}
			m.mode = modeNone
			m.editor = editorState{}
			m.status = app.UserMessage(msg.err)
			return m, nil
		}
		cmd := m.fillEditor(msg.buf)
		return m, cmd

	case editorSavedMsg:
		m.board = msg.board
		m.clampSelections()
		if m.mode != modeEditor {
			return m, nil
		}
		m.editor.saving = false
		if msg.err != nil {
			m.status = "save failed: " + app.UserMessage(msg.err)
			return m, nil
		}
		m.mode = modeNone
		m.editor = editorState{}
		m.focusTask(msg.task.ID)
		m.status = fmt.Sprintf("saved %q", truncate(msg.task.Title, 32))
		return m, nil

	case tea.KeyPressMsg:
		switch m.mode {
		case modeAddTask:
			return m.handleAddTaskKey(msg)
		case modeEditor:
			return m.handleEditorKey(msg)
		case modeConfirmDelete:
			return m.handleConfirmKey(msg)
		}
		return m.handleNormalModeKey(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	case tea.MouseReleaseMsg:
		return m.handleMouseRelease(msg)

	case tea.MouseWheelMsg:
		return m.handleMouseWheel(msg)

	default:
		return m.forwardToInputs(msg)
	}
}

// loadData loads required data for the current operation.
func (m Model) loadData() tea.Msg {
	err := m.svc.Load(context.Background())
	return loadedMsg{board: m.svc.Board(), err: err}
}

// newModalInput constructs modal input.
func newModalInput(prompt, placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	if value != "" {
		in.SetValue(value)
	}
	return in
}

func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.cancel):
		if m.help.ShowAll {
			m.help.ShowAll = false
			return m, nil
		}
		if m.dragging != nil {
			m.svc.CancelDrag()
			m.dragging = nil
			m.mouseDrag = false
			m.status = "drag cancelled"
		}
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.status = "reloading..."
		return m, m.loadData
	case key.Matches(msg, m.keys.moveLeft):
		if m.selectedColumn > 0 {
			m.selectedColumn--
			m.selectedTask = 0
		}
		return m, nil
	case key.Matches(msg, m.keys.moveRight):
		if m.selectedColumn < len(m.board.Columns)-1 {
			m.selectedColumn++
			m.selectedTask = 0
		}
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		if tasks := m.currentColumnTasks(); m.selectedTask < len(tasks)-1 {
			m.selectedTask++
		}
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		if m.selectedTask > 0 {
			m.selectedTask--
		}
		return m, nil
	case key.Matches(msg, m.keys.addTask):
		m.help.ShowAll = false
		m.mode = modeAddTask
		m.addInput.SetValue("")
		cmd := m.addInput.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.grab):
		if m.dragging != nil {
			return m.dropOn(m.selectedColumn)
		}
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		return m.beginDrag(task)
	case key.Matches(msg, m.keys.moveTaskLeft):
		return m.shiftSelectedTask(-1)
	case key.Matches(msg, m.keys.moveTaskRight):
		return m.shiftSelectedTask(1)
	case key.Matches(msg, m.keys.openTask):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		return m.openEditor(task)
	case key.Matches(msg, m.keys.deleteTask):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		if m.confirmDelete {
			m.mode = modeConfirmDelete
			m.pendingDelete = task
			return m, nil
		}
		return m.deleteTask(task)
	case key.Matches(msg, m.keys.yankTitle):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		if err := m.copyText(task.Title); err != nil {
			m.status = "copy failed: " + err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("copied %q", truncate(task.Title, 32))
		return m, nil
	}
	return m, nil
}

func (m Model) handleAddTaskKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeNone
		m.addInput.Blur()
		m.status = "cancelled"
		return m, nil
	case "enter":
		title := m.addInput.Value()
		m.mode = modeNone
		m.addInput.Blur()
		m.addInput.SetValue("")
		return m.createTask(title)
	}
	var cmd tea.Cmd
	m.addInput, cmd = m.addInput.Update(msg)
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		task := m.pendingDelete
		m.mode = modeNone
		m.pendingDelete = domain.Task{}
		return m.deleteTask(task)
	case "n", "esc":
		m.mode = modeNone
		m.pendingDelete = domain.Task{}
		m.status = "delete cancelled"
	}
	return m, nil
}

func (m Model) handleEditorKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.editorKeys.close):
		m.svc.CloseEditor()
		m.mode = modeNone
		m.editor = editorState{}
		m.status = "editor closed"
		return m, nil
	case m.editor.loading || m.editor.saving:
		return m, nil
	case key.Matches(msg, m.editorKeys.save):
		return m.saveEditor()
	case key.Matches(msg, m.editorKeys.nextField):
		cmd := m.focusEditorField(m.editor.focus + 1)
		return m, cmd
	case key.Matches(msg, m.editorKeys.prevField):
		cmd := m.focusEditorField(m.editor.focus - 1)
		return m, cmd
	case key.Matches(msg, m.editorKeys.preview):
		m.editor.preview = !m.editor.preview
		return m, nil
	}
	return m.forwardToInputs(msg)
}

// forwardToInputs routes keys and widget messages (cursor blinks) to the focused input.
func (m Model) forwardToInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.mode {
	case modeAddTask:
		m.addInput, cmd = m.addInput.Update(msg)
	case modeEditor:
		if m.editor.loading {
			return m, nil
		}
		switch m.editor.focus {
		case editorFieldDescription:
			if m.editor.preview {
				return m, nil
			}
			m.editor.description, cmd = m.editor.description.Update(msg)
		case editorFieldStart:
			m.editor.start, cmd = m.editor.start.Update(msg)
		case editorFieldEnd:
			m.editor.end, cmd = m.editor.end.Update(msg)
		}
	}
	return m, cmd
}

func (m Model) createTask(title string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(title) == "" {
		m.status = app.UserMessage(domain.ErrInvalidTitle)
		return m, nil
	}
	m.status = "creating..."
	m.inFlight++
	svc := m.svc
	return m, func() tea.Msg {
		task, err := svc.CreateTask(context.Background(), title)
		if err != nil {
			return actionMsg{board: svc.Board(), err: err}
		}
		return actionMsg{
			board:   svc.Board(),
			status:  fmt.Sprintf("created %q", truncate(task.Title, 32)),
			focusID: task.ID,
		}
	}
}

func (m Model) deleteTask(task domain.Task) (tea.Model, tea.Cmd) {
	m.status = "deleting..."
	m.inFlight++
	svc := m.svc
	return m, func() tea.Msg {
		if err := svc.DeleteTask(context.Background(), task.ID); err != nil {
			return actionMsg{board: svc.Board(), err: err}
		}
		return actionMsg{board: svc.Board(), status: fmt.Sprintf("deleted %q", truncate(task.Title, 32))}
	}
}

// beginDrag attaches task to a new drag gesture.
func (m Model) beginDrag(task domain.Task) (tea.Model, tea.Cmd) {
	payload, err := m.svc.BeginDrag(task.ID)
	if err != nil {
		m.status = app.UserMessage(err)
		return m, nil
	}
	m.dragging = &payload
	m.status = fmt.Sprintf("dragging %q • pick a column and drop", truncate(task.Title, 28))
	return m, nil
}

// dropOn drops the active drag onto the column at idx.
func (m Model) dropOn(idx int) (tea.Model, tea.Cmd) {
	if m.dragging == nil {
		return m, nil
	}
	if idx < 0 || idx >= len(m.board.Columns) {
		m.svc.CancelDrag()
		m.dragging = nil
		m.status = "drag cancelled"
		return m, nil
	}
	payload := *m.dragging
	target := m.board.Columns[idx].Status
	m.dragging = nil
	m.mouseDrag = false
	if payload.Status == target {
		m.svc.CancelDrag()
		m.focusTask(payload.ID)
		m.status = "dropped on the same column"
		return m, nil
	}
	m.status = "moving..."
	m.inFlight++
	svc := m.svc
	return m, func() tea.Msg {
		result, err := svc.Drop(context.Background(), target)
		msg := actionMsg{board: svc.Board(), focusID: payload.ID, err: err}
		if err == nil && result.Moved {
			msg.status = "moved to " + target.Label()
		}
		return msg
	}
}

// shiftSelectedTask moves the selected card one column over as a complete drag.
func (m Model) shiftSelectedTask(delta int) (tea.Model, tea.Cmd) {
	task, ok := m.selectedTaskInCurrentColumn()
	if !ok {
		m.status = "no task selected"
		return m, nil
	}
	target := task.Status.Shift(delta)
	if target == task.Status {
		m.status = "already in " + task.Status.Label()
		return m, nil
	}
	m.status = "moving..."
	m.inFlight++
	svc := m.svc
	return m, func() tea.Msg {
		result, err := svc.MoveTask(context.Background(), task.ID, target)
		msg := actionMsg{board: svc.Board(), focusID: task.ID, err: err}
		if err == nil && result.Moved {
			msg.status = "moved to " + target.Label()
		}
		return msg
	}
}

func (m Model) openEditor(task domain.Task) (tea.Model, tea.Cmd) {
	m.help.ShowAll = false
	m.mode = modeEditor
	m.editor = editorState{loading: true, id: task.ID}
	m.status = "loading task..."
	svc := m.svc
	return m, func() tea.Msg {
		buf, err := svc.OpenEditor(context.Background(), task.ID)
		return editorOpenedMsg{id: task.ID, buf: buf, err: err}
	}
}

// fillEditor builds the editor widgets from a loaded buffer.
func (m *Model) fillEditor(buf app.EditBuffer) tea.Cmd {
	desc := textarea.New()
	desc.Placeholder = "markdown description"
	desc.ShowLineNumbers = false
	desc.CharLimit = 0
	desc.SetValue(buf.Description)

	m.editor.loading = false
	m.editor.buf = buf
	m.editor.description = desc
	m.editor.shown = desc.Value()
	m.editor.start = newModalInput("start: ", domain.DateLayout, domain.FormatDate(buf.StartDate), 10)
	m.editor.end = newModalInput("end:   ", domain.DateLayout, domain.FormatDate(buf.EndDate), 10)
	m.resizeEditor()
	if buf.Degraded {
		m.status = "server unreachable; editing cached copy"
	} else {
		m.status = "editing"
	}
	return m.focusEditorField(editorFieldDescription)
}

// focusEditorField focuses one editor field, wrapping around.
func (m *Model) focusEditorField(idx int) tea.Cmd {
	idx = wrapIndex(idx, editorFieldCount)
	m.editor.focus = idx
	m.editor.description.Blur()
	m.editor.start.Blur()
	m.editor.end.Blur()
	switch idx {
	case editorFieldStart:
		return m.editor.start.Focus()
	case editorFieldEnd:
		return m.editor.end.Focus()
	default:
		return m.editor.description.Focus()
	}
}

func (m *Model) resizeEditor() {
	if m.mode != modeEditor || m.editor.loading {
		return
	}
	w := m.editorWidth() - 4
	m.editor.description.SetWidth(w)
	m.editor.description.SetHeight(max(3, min(10, m.height/3)))
	m.editor.start.SetWidth(w - 8)
	m.editor.end.SetWidth(w - 8)
}

// editorBuffer reads the widgets back into an edit buffer.
func (m Model) editorBuffer() (app.EditBuffer, error) {
	buf := m.editor.buf
	if value := m.editor.description.Value(); value != m.editor.shown {
		buf.Description = value
	}
	start, err := domain.ParseDate(m.editor.start.Value())
	if err != nil {
		return app.EditBuffer{}, fmt.Errorf("start date: %w", err)
	}
	end, err := domain.ParseDate(m.editor.end.Value())
	if err != nil {
		return app.EditBuffer{}, fmt.Errorf("end date: %w", err)
	}
	buf.StartDate = start
	buf.EndDate = end
	return buf, nil
}

func (m Model) saveEditor() (tea.Model, tea.Cmd) {
	buf, err := m.editorBuffer()
	if err != nil {
		m.status = app.UserMessage(err)
		return m, nil
	}
	m.editor.saving = true
	m.status = "saving..."
	svc := m.svc
	return m, func() tea.Msg {
		task, err := svc.SaveEditor(context.Background(), buf)
		return editorSavedMsg{board: svc.Board(), task: task, err: err}
	}
}

// handleMouseClick selects the card under the pointer and starts a drag from it.
func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if m.help.ShowAll || m.mode != modeNone || msg.Button != tea.MouseLeft {
		return m, nil
	}
	col, ok := m.columnAt(msg.X)
	if !ok {
		return m, nil
	}
	m.selectedColumn = col
	tasks := m.currentColumnTasks()
	row := msg.Y - boardRows - cardTopOffset
	if row < 0 || len(tasks) == 0 {
		m.selectedTask = 0
		return m, nil
	}
	idx, hit := m.taskIndexAtRow(tasks, row)
	if !hit {
		return m, nil
	}
	m.selectedTask = idx
	next, cmd := m.beginDrag(tasks[idx])
	nm := next.(Model)
	if nm.dragging != nil {
		nm.mouseDrag = true
	}
	return nm, cmd
}

// handleMouseRelease drops a mouse drag on the column under the pointer.
func (m Model) handleMouseRelease(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	if !m.mouseDrag || m.dragging == nil {
		return m, nil
	}
	m.mouseDrag = false
	col, ok := m.columnAt(msg.X)
	if !ok {
		col = -1
	}
	return m.dropOn(col)
}

func (m Model) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	if m.help.ShowAll || m.mode != modeNone {
		return m, nil
	}
	tasks := m.currentColumnTasks()
	switch msg.Button {
	case tea.MouseWheelUp:
		if m.selectedTask > 0 {
			m.selectedTask--
		}
	case tea.MouseWheelDown:
		if m.selectedTask < len(tasks)-1 {
			m.selectedTask++
		}
	}
	return m, nil
}

// columnAt maps a screen x coordinate to a column index.
func (m Model) columnAt(x int) (int, bool) {
	if x < 0 || len(m.board.Columns) == 0 {
		return 0, false
	}
	idx := x / (m.columnWidth() + columnOverhead)
	if idx >= len(m.board.Columns) {
		return 0, false
	}
	return idx, true
}

// taskIndexAtRow maps a row inside the card area to a card index.
func (m Model) taskIndexAtRow(tasks []domain.Task, row int) (int, bool) {
	current := 0
	for idx, task := range tasks {
		span := 1
		if m.cardSecondary(task) != "" {
			span++
		}
		if row >= current && row < current+span {
			return idx, true
		}
		current += span
		if idx < len(tasks)-1 {
			current++
		}
	}
	return 0, false
}

func (m *Model) clampSelections() {
	m.selectedColumn = clamp(m.selectedColumn, 0, len(m.board.Columns)-1)
	m.selectedTask = clamp(m.selectedTask, 0, len(m.currentColumnTasks())-1)
}

// focusTask moves the selection onto id if it is on the board.
func (m *Model) focusTask(id domain.TaskID) {
	for colIdx, column := range m.board.Columns {
		for taskIdx, task := range column.Tasks {
			if task.ID == id {
				m.selectedColumn = colIdx
				m.selectedTask = taskIdx
				return
			}
		}
	}
}

func (m Model) currentColumnTasks() []domain.Task {
	if m.selectedColumn < 0 || m.selectedColumn >= len(m.board.Columns) {
		return nil
	}
	return m.board.Columns[m.selectedColumn].Tasks
}

func (m Model) selectedTaskInCurrentColumn() (domain.Task, bool) {
	tasks := m.currentColumnTasks()
	if m.selectedTask < 0 || m.selectedTask >= len(tasks) {
		return domain.Task{}, false
	}
	return tasks[m.selectedTask], true
}

// View handles view.
func (m Model) View() tea.View {
	view := tea.NewView(m.render())
	view.MouseMode = tea.MouseModeCellMotion
	view.AltScreen = true
	return view
}

// render draws the full screen as text.
func (m Model) render() string {
	if !m.ready {
		return "loading..."
	}

	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)

	header := titleStyle.Render("todoboard")
	if m.source != "" {
		header += "  " + m.source
	}
	header += statusStyle.Render(fmt.Sprintf("  %d tasks", m.board.Len()))
	if m.dragging != nil {
		if task, ok := m.svc.Lookup(m.dragging.ID); ok {
			header += statusStyle.Render("  dragging: " + truncate(task.Title, 32))
		}
	}
	if m.inFlight > 0 {
		header += statusStyle.Render("  syncing...")
	}
	if !m.loaded {
		header += statusStyle.Render("  not synced")
	}

	body := m.renderBoard(accent, muted, dim)

	sections := []string{header, "", body}
	if strings.TrimSpace(m.status) != "" && m.status != "ready" {
		sections = append(sections, statusStyle.Render(m.status))
	}
	content := strings.Join(sections, "\n")

	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, m.width-2))
	helpText := helpBubble.View(m.keys)
	if m.mode == modeEditor {
		helpText = helpBubble.View(m.editorKeys)
	}
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpText)

	if m.height > 0 {
		content = fitLines(content, max(0, m.height-lipgloss.Height(helpLine)))
	}
	fullContent := content + "\n" + helpLine

	overlay := m.renderModeOverlay(accent, muted, dim, m.width-8)
	if m.help.ShowAll {
		overlay = m.renderHelpOverlay(accent, muted, m.width-8)
	}
	if overlay != "" {
		overlayHeight := lipgloss.Height(fullContent)
		if m.height > 0 {
			overlayHeight = m.height
		}
		fullContent = overlayOnContent(fullContent, overlay, max(1, m.width), max(1, overlayHeight))
	}
	return fullContent
}

// renderBoard draws the three status columns side by side.
func (m Model) renderBoard(accent, muted, dim color.Color) string {
	colWidth := m.columnWidth()
	baseColStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dim).
		Padding(1, 2).
		MarginRight(1).
		Width(colWidth)
	selColStyle := baseColStyle.BorderForeground(accent)
	dropColStyle := baseColStyle.BorderForeground(lipgloss.Color("212")).BorderStyle(lipgloss.DoubleBorder())
	colTitle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	selectedTaskStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	draggedTaskStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("237")).Bold(true)
	itemSubStyle := lipgloss.NewStyle().Foreground(muted)

	innerHeight := max(1, m.columnHeight()-4)
	views := make([]string, 0, len(m.board.Columns))
	for colIdx, column := range m.board.Columns {
		lines := []string{colTitle.Render(fmt.Sprintf("%s (%d)", column.Status.Label(), len(column.Tasks)))}
		selectedStart, selectedEnd := -1, -1
		if len(column.Tasks) == 0 {
			lines = append(lines, emptyStyle.Render("(empty)"))
		}
		for taskIdx, task := range column.Tasks {
			selected := colIdx == m.selectedColumn && taskIdx == m.selectedTask
			dragged := m.dragging != nil && m.dragging.ID == task.ID

			prefix := "   "
			switch {
			case dragged:
				prefix = "⇄  "
			case selected:
				prefix = "│  "
			}
			title := prefix + truncate(task.Title, max(1, colWidth-4))
			switch {
			case dragged:
				title = draggedTaskStyle.Render(title)
			case selected:
				title = selectedTaskStyle.Render(title)
			}
			rowStart := len(lines)
			lines = append(lines, title)
			if sub := m.cardSecondary(task); sub != "" {
				subPrefix := "   "
				if selected {
					subPrefix = "│  "
				}
				lines = append(lines, subPrefix+itemSubStyle.Render(truncate(sub, max(1, colWidth-4))))
			}
			if selected {
				selectedStart, selectedEnd = rowStart, len(lines)-1
			}
			if taskIdx < len(column.Tasks)-1 {
				lines = append(lines, "")
			}
		}

		// keep the selected card on screen
		if selectedEnd >= innerHeight {
			offset := min(selectedStart-1, selectedEnd-innerHeight+1)
			lines = append(lines[:1], lines[1+offset:]...)
		}

		style := baseColStyle
		switch {
		case m.dragging != nil && colIdx == m.selectedColumn:
			style = dropColStyle
		case colIdx == m.selectedColumn:
			style = selColStyle
		}
		views = append(views, style.Render(fitLines(strings.Join(lines, "\n"), innerHeight)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

// cardSecondary renders the optional second card line.
func (m Model) cardSecondary(task domain.Task) string {
	parts := make([]string, 0, 2)
	if m.cardFields.ShowDates && (task.StartDate != nil || task.EndDate != nil) {
		parts = append(parts, formatDateRange(task.StartDate, task.EndDate))
	}
	if m.cardFields.ShowDescription {
		if line, _, _ := strings.Cut(strings.TrimSpace(task.Description), "\n"); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " • ")
}

func formatDateRange(start, end *domain.Date) string {
	left, right := domain.FormatDate(start), domain.FormatDate(end)
	if left == "" {
		left = "…"
	}
	if right == "" {
		right = "…"
	}
	return left + " → " + right
}

// renderModeOverlay renders output for the current model state.
func (m Model) renderModeOverlay(accent, muted, dim color.Color, maxWidth int) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle := lipgloss.NewStyle().Foreground(muted)
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1)

	switch m.mode {
	case modeAddTask:
		if maxWidth > 0 {
			boxStyle = boxStyle.Width(clamp(maxWidth, 32, 72))
		}
		in := m.addInput
		in.SetWidth(max(18, min(64, maxWidth-12)))
		return boxStyle.Render(strings.Join([]string{
			titleStyle.Render("New Task"),
			in.View(),
			hintStyle.Render("enter create • esc cancel"),
		}, "\n"))

	case modeConfirmDelete:
		if maxWidth > 0 {
			boxStyle = boxStyle.Width(clamp(maxWidth, 32, 64))
		}
		return boxStyle.Render(strings.Join([]string{
			titleStyle.Render("Delete Task"),
			truncate(m.pendingDelete.Title, 56),
			hintStyle.Render("y confirm • n cancel"),
		}, "\n"))

	case modeEditor:
		boxStyle = boxStyle.Width(m.editorWidth())
		if m.editor.loading {
			return boxStyle.Render(titleStyle.Render("Task Details") + "\n" + hintStyle.Render("loading..."))
		}
		buf := m.editor.buf
		labelStyle := lipgloss.NewStyle().Foreground(dim)
		focusLabel := lipgloss.NewStyle().Foreground(accent).Bold(true)
		label := func(idx int, text string) string {
			if m.editor.focus == idx {
				return focusLabel.Render(text)
			}
			return labelStyle.Render(text)
		}
		lines := []string{
			titleStyle.Render("Task Details"),
			buf.Title,
			hintStyle.Render(fmt.Sprintf("#%s • %s", buf.ID, buf.Status.Label())),
		}
		if buf.Degraded {
			lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")).Render("offline copy; saving may fail"))
		}
		lines = append(lines, "", label(editorFieldDescription, "description"))
		if m.editor.preview {
			preview := m.markdown.render(m.editor.description.Value(), m.editorWidth()-4)
			if preview == "" {
				preview = hintStyle.Render("(no description)")
			}
			lines = append(lines, preview)
		} else {
			lines = append(lines, m.editor.description.View())
		}
		lines = append(lines,
			"",
			label(editorFieldStart, "dates (YYYY-MM-DD, empty clears)"),
			m.editor.start.View(),
			m.editor.end.View(),
		)
		if m.editor.saving {
			lines = append(lines, hintStyle.Render("saving..."))
		}
		return boxStyle.Render(strings.Join(lines, "\n"))
	}
	return ""
}

func (m Model) renderHelpOverlay(accent, muted color.Color, maxWidth int) string {
	width := clamp(maxWidth, 40, 96)
	hb := m.help
	hb.ShowAll = true
	hb.SetWidth(width - 4)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Width(width).
		Render(strings.Join([]string{
			lipgloss.NewStyle().Bold(true).Foreground(accent).Render("Keys"),
			hb.View(m.keys),
			lipgloss.NewStyle().Foreground(muted).Render("mouse: press a card, release over a column to move it"),
		}, "\n"))
}

func (m Model) editorWidth() int {
	if m.width <= 0 {
		return 72
	}
	return clamp(m.width-8, 40, 96)
}

// columnWidth returns column width.
func (m Model) columnWidth() int {
	w := 28
	if n := len(m.board.Columns); n > 0 && m.width > 0 {
		if candidate := (m.width - n*columnOverhead) / n; candidate > 0 {
			w = candidate
		}
	}
	return clamp(w, 18, 48)
}

// columnHeight returns column height.
func (m Model) columnHeight() int {
	// header, spacer, status line and help bar
	h := m.height - boardRows - 3
	if h < 10 {
		return 10
	}
	return h
}

func wrapIndex(v, total int) int {
	if total <= 0 {
		return 0
	}
	return ((v % total) + total) % total
}

// clamp clamps the requested operation.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		lines = append(lines, make([]string, maxLines-len(lines))...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent overlays on content.
func overlayOnContent(base, overlay string, width, height int) string {
	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	centered := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
	canvas.Compose(lipgloss.NewLayer(base).X(0).Y(0).Z(0))
	canvas.Compose(lipgloss.NewLayer(centered).X(0).Y(0).Z(10))
	return canvas.Render()
}

// truncate truncates the requested operation.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	if limit == 1 {
		return string(rs[:1])
	}
	return string(rs[:limit-1]) + "…"
}
