package searchbot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/beeper/search-bot/pkg/search"
)

const (
	botUserID  id.UserID = "@searchbot:example.org"
	userID     id.UserID = "@alice:example.org"
	testRoomID id.RoomID = "!room:example.org"
)

type fakeMatrix struct {
	mu     sync.Mutex
	sent   []*event.MessageEventContent
	joined []id.RoomID
}

func (f *fakeMatrix) SendMessageEvent(ctx context.Context, roomID id.RoomID, eventType event.Type, contentJSON any, extra ...mautrix.ReqSendEvent) (*mautrix.RespSendEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, contentJSON.(*event.MessageEventContent))
	return &mautrix.RespSendEvent{EventID: "$reply"}, nil
}

func (f *fakeMatrix) JoinRoomByID(ctx context.Context, roomID id.RoomID) (*mautrix.RespJoinRoom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joined = append(f.joined, roomID)
	return &mautrix.RespJoinRoom{RoomID: roomID}, nil
}

func (f *fakeMatrix) lastText(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatalf("expected a message to be sent")
	}
	content := f.sent[len(f.sent)-1]
	return content.Body + "\n" + content.FormattedBody
}

type stubSearcher struct {
	calls   int
	queries []string
	outcome *search.Outcome
	err     error
}

func (s *stubSearcher) Resolve(ctx context.Context, query string) (*search.Outcome, error) {
	s.calls++
	s.queries = append(s.queries, query)
	return s.outcome, s.err
}

func newTestBot(searcher Searcher) (*Bot, *fakeMatrix) {
	api := &fakeMatrix{}
	bot := newBot(&Config{UserID: botUserID}, api, searcher, zerolog.Nop())
	bot.startedAt = time.Now().Add(-time.Minute)
	return bot, api
}

func textEvent(body string) *event.Event {
	return &event.Event{
		ID:        "$cmd",
		Type:      event.EventMessage,
		Sender:    userID,
		RoomID:    testRoomID,
		Timestamp: time.Now().UnixMilli(),
		Content: event.Content{Parsed: &event.MessageEventContent{
			MsgType: event.MsgText,
			Body:    body,
		}},
	}
}

func TestSearchCommandRepliesWithInstantAnswer(t *testing.T) {
	searcher := &stubSearcher{outcome: &search.Outcome{
		Kind: search.OutcomeInstant,
		Answer: &search.Answer{
			Heading:      "Discord",
			AbstractText: "Discord is a VoIP platform",
			AbstractURL:  "https://discord.com",
		},
	}}
	bot, api := newTestBot(searcher)
	bot.HandleMessage(context.Background(), textEvent("!s  discord "))

	if searcher.calls != 1 || searcher.queries[0] != "discord" {
		t.Fatalf("unexpected searcher calls %d %v", searcher.calls, searcher.queries)
	}
	text := api.lastText(t)
	if !strings.Contains(text, "Discord is a VoIP platform") {
		t.Fatalf("reply missing abstract: %q", text)
	}
	if strings.Contains(text, "Image") {
		t.Fatalf("reply should not contain an image: %q", text)
	}
	reply := api.sent[0]
	if reply.RelatesTo == nil || reply.RelatesTo.InReplyTo == nil || reply.RelatesTo.InReplyTo.EventID != "$cmd" {
		t.Fatalf("reply should reference the command event, got %#v", reply.RelatesTo)
	}
	if reply.MsgType != event.MsgNotice {
		t.Fatalf("expected notice, got %s", reply.MsgType)
	}
}

func TestSearchCommandAliasAndNoResult(t *testing.T) {
	searcher := &stubSearcher{outcome: &search.Outcome{Kind: search.OutcomeNoResult}}
	bot, api := newTestBot(searcher)
	bot.HandleMessage(context.Background(), textEvent("!search asdkjasd123"))

	if searcher.calls != 1 {
		t.Fatalf("expected one search, got %d", searcher.calls)
	}
	if text := api.lastText(t); !strings.Contains(text, "No result found!") {
		t.Fatalf("expected no result message, got %q", text)
	}
}

func TestSearchCommandErrorShowsApology(t *testing.T) {
	searcher := &stubSearcher{err: &search.TransportError{Stage: search.StageInstant, Err: errors.New("dial tcp: connection refused")}}
	bot, api := newTestBot(searcher)
	bot.HandleMessage(context.Background(), textEvent("!s discord"))

	text := api.lastText(t)
	if !strings.Contains(text, "Sorry") {
		t.Fatalf("expected apology, got %q", text)
	}
	if strings.Contains(text, "connection refused") {
		t.Fatalf("error details must not leak to the room: %q", text)
	}
}

func TestSearchCommandWithoutQueryShowsUsage(t *testing.T) {
	searcher := &stubSearcher{}
	bot, api := newTestBot(searcher)
	bot.HandleMessage(context.Background(), textEvent("!s   "))

	if searcher.calls != 0 {
		t.Fatalf("searcher should not be called without a query")
	}
	if text := api.lastText(t); !strings.Contains(text, "Usage") {
		t.Fatalf("expected usage text, got %q", text)
	}
}

func TestHandleMessageIgnoresIrrelevantEvents(t *testing.T) {
	searcher := &stubSearcher{outcome: &search.Outcome{}}
	bot, api := newTestBot(searcher)

	own := textEvent("!s discord")
	own.Sender = botUserID
	old := textEvent("!s discord")
	old.Timestamp = bot.startedAt.Add(-time.Hour).UnixMilli()
	notice := textEvent("!s discord")
	notice.Content.Parsed.(*event.MessageEventContent).MsgType = event.MsgNotice

	for _, evt := range []*event.Event{own, old, notice, textEvent("hello there"), textEvent("!"), textEvent("!unknown thing")} {
		bot.HandleMessage(context.Background(), evt)
	}
	if searcher.calls != 0 {
		t.Fatalf("searcher should not be called, got %d", searcher.calls)
	}
	if len(api.sent) != 0 {
		t.Fatalf("no replies expected, got %d", len(api.sent))
	}
}

func TestHelpCommand(t *testing.T) {
	bot, api := newTestBot(&stubSearcher{})

	bot.HandleMessage(context.Background(), textEvent("!help"))
	text := api.lastText(t)
	for _, want := range []string{"!help [command]", "!ping", "!s <query>", "using DuckDuckGo"} {
		if !strings.Contains(text, want) {
			t.Fatalf("help missing %q: %q", want, text)
		}
	}

	bot.HandleMessage(context.Background(), textEvent("!help search"))
	if text = api.lastText(t); !strings.Contains(text, "Query DuckDuckGo") || !strings.Contains(text, "search") {
		t.Fatalf("unexpected command help %q", text)
	}

	bot.HandleMessage(context.Background(), textEvent("!help nope"))
	if text = api.lastText(t); !strings.Contains(text, "Could not find") {
		t.Fatalf("unexpected missing command help %q", text)
	}
}

func TestPingCommand(t *testing.T) {
	bot, api := newTestBot(&stubSearcher{})
	evt := textEvent("!ping")
	sent := time.UnixMilli(evt.Timestamp)
	bot.now = func() time.Time { return sent.Add(250 * time.Millisecond) }

	bot.HandleMessage(context.Background(), evt)
	if text := api.lastText(t); !strings.Contains(text, "250 ms") {
		t.Fatalf("unexpected ping reply %q", text)
	}
}

func TestHandleMemberJoinsOnInvite(t *testing.T) {
	bot, api := newTestBot(&stubSearcher{})
	stateKey := botUserID.String()
	invite := &event.Event{
		Type:     event.StateMember,
		Sender:   userID,
		RoomID:   testRoomID,
		StateKey: &stateKey,
		Content:  event.Content{Parsed: &event.MemberEventContent{Membership: event.MembershipInvite}},
	}
	bot.HandleMember(context.Background(), invite)
	if len(api.joined) != 1 || api.joined[0] != testRoomID {
		t.Fatalf("expected to join %s, got %v", testRoomID, api.joined)
	}

	otherKey := userID.String()
	other := &event.Event{
		Type:     event.StateMember,
		RoomID:   "!other:example.org",
		StateKey: &otherKey,
		Content:  event.Content{Parsed: &event.MemberEventContent{Membership: event.MembershipInvite}},
	}
	bot.HandleMember(context.Background(), other)
	if len(api.joined) != 1 {
		t.Fatalf("invites for other users must be ignored")
	}
}

func TestHandleMemberRespectsAutoJoinSetting(t *testing.T) {
	disabled := false
	api := &fakeMatrix{}
	bot := newBot(&Config{UserID: botUserID, AutoJoin: &disabled}, api, &stubSearcher{}, zerolog.Nop())
	stateKey := botUserID.String()
	bot.HandleMember(context.Background(), &event.Event{
		Type:     event.StateMember,
		RoomID:   testRoomID,
		StateKey: &stateKey,
		Content:  event.Content{Parsed: &event.MemberEventContent{Membership: event.MembershipInvite}},
	})
	if len(api.joined) != 0 {
		t.Fatalf("auto join disabled, got joins %v", api.joined)
	}
}

func TestParseCommand(t *testing.T) {
	bot, _ := newTestBot(&stubSearcher{})
	ce := bot.parseCommand(context.Background(), textEvent(""), "  !S   hello   world ")
	if ce == nil {
		t.Fatalf("expected a command")
	}
	if ce.Command != "s" || ce.RawArgs != "hello   world" || len(ce.Args) != 2 {
		t.Fatalf("unexpected parse %#v", ce)
	}
	if bot.parseCommand(context.Background(), textEvent(""), "no prefix") != nil {
		t.Fatalf("text without prefix is not a command")
	}
}
