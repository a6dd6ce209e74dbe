// Package countries holds the countries the profile flow accepts. It feeds
// the country select of the flow definitions and serves a JSON search
// endpoint for client-side autocompletion.
package countries
