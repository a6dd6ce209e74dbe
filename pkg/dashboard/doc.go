// Package dashboard holds the sample data behind the dashboard pages and the
// widget registry that turns it into view data. Nothing here talks to a
// market; values come from an embedded YAML fixture.
package dashboard
