// Package validation evaluates the declarative rules attached to model.Field
// values. Validation is pure: it reads the submitted strings, the rule list and
// an Env carrying the clock, and reports at most one message per field (the
// first rule that fails, in declared order).
//
// Cross-field rules such as "matches" only run through ValidateStep, which is
// what a step submission uses. ValidateField is meant for live, per-keystroke
// feedback and never looks at peer fields.
package validation
