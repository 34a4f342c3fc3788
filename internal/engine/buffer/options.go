package buffer

import "github.com/dshills/multisel/internal/engine/selection"

// Option is a functional option for configuring a Document.
type Option func(*Document)

// WithLineEnding sets the line ending the text is normalized to on load.
func WithLineEnding(le LineEnding) Option {
	return func(d *Document) {
		d.lineEnding = le
	}
}

// WithDetectedLineEnding keeps whichever line ending is most common in
// the loaded text.
func WithDetectedLineEnding() Option {
	return func(d *Document) {
		d.detectLineEnding = true
	}
}

// WithTabWidth sets the document's tab width.
func WithTabWidth(width int) Option {
	return func(d *Document) {
		if width > 0 {
			d.tabWidth = width
		}
	}
}

// WithSelection sets the initial selection. It is validated against the
// loaded text.
func WithSelection(sel selection.Selection) Option {
	return func(d *Document) {
		d.sel = sel
	}
}
