// Package flow drives multi-step forms. A Definition lists the steps of a
// flow; a State records which step the visitor is on and the Record of values
// accepted so far. Submit and Back are pure: they take a State and return the
// next one without touching anything else. Controller layers the completion
// hand-off on top, calling the flow's Completer exactly once when the final
// step is accepted.
package flow
