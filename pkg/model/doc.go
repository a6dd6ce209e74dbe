// Package model defines the typed step model consumed by validators and
// renderers. Each field carries an ordered list of validation rules whose
// parameters are plain strings (thresholds in "value", expressions in
// "pattern", peer fields in "field") so definitions stay declarative and
// round-trip cleanly through YAML and JSON.
package model
