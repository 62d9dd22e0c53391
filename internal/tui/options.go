package tui

import "github.com/atotto/clipboard"

// CardFieldConfig selects which optional task fields are drawn on cards.
type CardFieldConfig struct {
	ShowDescription bool
	ShowDates       bool
}

type Option func(*Model)

func DefaultCardFieldConfig() CardFieldConfig {
	return CardFieldConfig{
		ShowDescription: true,
		ShowDates:       true,
	}
}

func WithCardFieldConfig(cfg CardFieldConfig) Option {
	return func(m *Model) {
		m.cardFields = cfg
	}
}

// WithConfirmDelete toggles the confirmation prompt before a delete.
func WithConfirmDelete(confirm bool) Option {
	return func(m *Model) {
		m.confirmDelete = confirm
	}
}

// WithSource labels the header with the task server the board talks to.
func WithSource(source string) Option {
	return func(m *Model) {
		m.source = source
	}
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.copyText = write
		}
	}
}

func systemClipboard(text string) error {
	return clipboard.WriteAll(text)
}
