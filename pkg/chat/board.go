package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxPostLength bounds a discussion post, in characters.
const MaxPostLength = 1000

var (
	// ErrEmptyPost rejects posts with no text once markup is stripped.
	ErrEmptyPost = errors.New("chat: post is empty")
	// ErrPostTooLong rejects posts over MaxPostLength.
	ErrPostTooLong = errors.New("chat: post is too long")
)

// Post is a community discussion entry.
type Post struct {
	ID       string    `json:"id"`
	Author   string    `json:"author"`
	Body     string    `json:"body"`
	PostedAt time.Time `json:"postedAt"`
}

// Board is the community discussion feed, newest first.
type Board struct {
	mu    sync.RWMutex
	posts []Post
	now   func() time.Time
}

// NewBoard returns a board with seed posts, kept in the order given.
func NewBoard(now func() time.Time, seed ...Post) *Board {
	if now == nil {
		now = time.Now
	}
	b := &Board{now: now}
	for _, p := range seed {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		b.posts = append(b.posts, p)
	}
	return b
}

// Publish sanitises body and adds it to the top of the feed.
func (b *Board) Publish(ctx context.Context, author, body string) (Post, error) {
	if err := ctx.Err(); err != nil {
		return Post{}, err
	}
	text := SanitizeText(body)
	if text == "" {
		return Post{}, ErrEmptyPost
	}
	if utf8.RuneCountInString(text) > MaxPostLength {
		return Post{}, fmt.Errorf("%w: %d characters max", ErrPostTooLong, MaxPostLength)
	}
	name := SanitizeText(author)
	if name == "" {
		name = "Anonymous"
	}

	post := Post{ID: uuid.NewString(), Author: name, Body: text, PostedAt: b.now()}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.posts = append([]Post{post}, b.posts...)
	return post, nil
}

// List returns the feed, newest first.
func (b *Board) List() []Post {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Post, len(b.posts))
	copy(out, b.posts)
	return out
}
