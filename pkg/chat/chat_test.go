package chat_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-vortex/pkg/chat"
)

const reply = "I'm analyzing your investment strategy."

var fixed = time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixed }

func TestSanitizeText(t *testing.T) {
	cases := map[string]string{
		"  hello  ":                        "hello",
		"<script>alert(1)</script>":        "",
		"<b>Buy</b> BTC & ETH":             "Buy BTC & ETH",
		`<img src=x onerror="alert(1)">hi`: "hi",
		"":                                 "",
	}
	for input, want := range cases {
		if got := chat.SanitizeText(input); got != want {
			t.Errorf("SanitizeText(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestAssistant_RepliesWithCannedAnswer(t *testing.T) {
	ctx := context.Background()
	a := chat.NewAssistant(reply, chat.WithClock(clock))
	id := a.Open()

	added, err := a.Send(ctx, id, "  How is my <b>portfolio</b>?  ")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	want := []chat.Message{
		{Role: chat.RoleUser, Content: "How is my portfolio?", SentAt: fixed},
		{Role: chat.RoleAI, Content: reply, SentAt: fixed},
	}
	if diff := cmp.Diff(want, added, cmpopts.IgnoreFields(chat.Message{}, "ID")); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}

	history, err := a.History(id)
	if err != nil || len(history) != 2 {
		t.Fatalf("unexpected history %v err %v", history, err)
	}
}

func TestAssistant_IgnoresBlankInput(t *testing.T) {
	ctx := context.Background()
	a := chat.NewAssistant(reply)
	id := a.Open()

	for _, input := range []string{"", "   ", "<i></i>"} {
		added, err := a.Send(ctx, id, input)
		if err != nil || added != nil {
			t.Fatalf("Send(%q) = %v, %v; want nothing", input, added, err)
		}
	}
	if history, _ := a.History(id); len(history) != 0 {
		t.Fatalf("blank input must not be recorded: %v", history)
	}
}

func TestAssistant_UnknownAndBounded(t *testing.T) {
	ctx := context.Background()
	a := chat.NewAssistant(reply, chat.WithMaxMessages(4))

	if _, err := a.Send(ctx, "nope", "hi"); !errors.Is(err, chat.ErrUnknownConversation) {
		t.Fatalf("expected ErrUnknownConversation, got %v", err)
	}

	id := a.Open()
	for _, msg := range []string{"one", "two", "three"} {
		if _, err := a.Send(ctx, id, msg); err != nil {
			t.Fatal(err)
		}
	}
	history, _ := a.History(id)
	if len(history) != 4 || history[0].Content != "two" {
		t.Fatalf("expected the oldest messages dropped, got %+v", history)
	}

	a.Close(id)
	if _, err := a.History(id); !errors.Is(err, chat.ErrUnknownConversation) {
		t.Fatalf("expected closed conversation to be gone, got %v", err)
	}
}

func TestBoard(t *testing.T) {
	ctx := context.Background()
	board := chat.NewBoard(clock, chat.Post{Author: "Shibashis", Body: "seed"})

	post, err := board.Publish(ctx, "", "<em>ETH</em> looks strong")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if post.Author != "Anonymous" || post.Body != "ETH looks strong" || !post.PostedAt.Equal(fixed) {
		t.Fatalf("unexpected post %+v", post)
	}

	posts := board.List()
	if len(posts) != 2 || posts[0].ID != post.ID || posts[1].Body != "seed" || posts[1].ID == "" {
		t.Fatalf("unexpected feed %+v", posts)
	}

	if _, err := board.Publish(ctx, "a", "<script>x</script>"); !errors.Is(err, chat.ErrEmptyPost) {
		t.Fatalf("expected ErrEmptyPost, got %v", err)
	}
	if _, err := board.Publish(ctx, "a", strings.Repeat("x", chat.MaxPostLength+1)); !errors.Is(err, chat.ErrPostTooLong) {
		t.Fatalf("expected ErrPostTooLong, got %v", err)
	}
}
