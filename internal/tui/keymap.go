package tui

import "charm.land/bubbles/v2/key"

// keyMap holds the board bindings shown in the help bar.
type keyMap struct {
	quit          key.Binding
	reload        key.Binding
	toggleHelp    key.Binding
	moveLeft      key.Binding
	moveRight     key.Binding
	moveUp        key.Binding
	moveDown      key.Binding
	addTask       key.Binding
	grab          key.Binding
	cancel        key.Binding
	moveTaskLeft  key.Binding
	moveTaskRight key.Binding
	openTask      key.Binding
	deleteTask    key.Binding
	yankTitle     key.Binding
}

// editorKeyMap holds the detail editor bindings.
type editorKeyMap struct {
	save      key.Binding
	close     key.Binding
	nextField key.Binding
	prevField key.Binding
	preview   key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		toggleHelp:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveLeft:      key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		moveRight:     key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		moveUp:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "card up")),
		moveDown:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "card down")),
		addTask:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
		grab:          key.NewBinding(key.WithKeys("space", " "), key.WithHelp("space", "grab/drop")),
		cancel:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel drag")),
		moveTaskLeft:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "move card left")),
		moveTaskRight: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "move card right")),
		openTask:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		deleteTask:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		yankTitle:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy title")),
	}
}

func newEditorKeyMap() editorKeyMap {
	return editorKeyMap{
		save:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		close:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		nextField: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		prevField: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous field")),
		preview:   key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "preview")),
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.addTask, k.grab, k.openTask, k.deleteTask, k.toggleHelp, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown},
		{k.grab, k.cancel, k.moveTaskLeft, k.moveTaskRight},
		{k.addTask, k.openTask, k.deleteTask, k.yankTitle, k.reload, k.toggleHelp, k.quit},
	}
}

func (k editorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.save, k.nextField, k.preview, k.close}
}

func (k editorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.save, k.nextField, k.prevField, k.preview, k.close}}
}
