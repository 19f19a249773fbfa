// Package controls provides bubbletea form controls that can be bound to
// settings.
//
// [Checkbox] implements the check box capability and [ComboBox] the
// selectable text capability of the bind package. Both are plain values
// updated by the owning model: they never start a program of their own.
//
// Programmatic setters (SetChecked, SetCurrentIndex, SetEditText) do not
// notify listeners; only user input does.
package controls
