// Package chat implements the AI assistant stub and the community discussion
// board. The assistant answers every message with one canned analysis; both
// surfaces strip markup from visitor text before keeping it.
package chat
