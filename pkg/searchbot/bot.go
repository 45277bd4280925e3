package searchbot

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/beeper/search-bot/pkg/search"
)

// Searcher resolves a free-text query into a search outcome.
type Searcher interface {
	Resolve(ctx context.Context, query string) (*search.Outcome, error)
}

// matrixAPI is the subset of *mautrix.Client the bot uses.
type matrixAPI interface {
	SendMessageEvent(ctx context.Context, roomID id.RoomID, eventType event.Type, contentJSON any, extra ...mautrix.ReqSendEvent) (*mautrix.RespSendEvent, error)
	JoinRoomByID(ctx context.Context, roomID id.RoomID) (*mautrix.RespJoinRoom, error)
}

var _ matrixAPI = (*mautrix.Client)(nil)

// Bot answers search commands in Matrix rooms.
type Bot struct {
	client    *mautrix.Client
	api       matrixAPI
	searcher  Searcher
	commands  *Registry
	userID    id.UserID
	prefix    string
	autoJoin  bool
	maxTopics int
	startedAt time.Time
	now       func() time.Time
	log       zerolog.Logger
}

// NewBot creates a bot that talks to Matrix through client.
func NewBot(cfg *Config, client *mautrix.Client, searcher Searcher, log zerolog.Logger) *Bot {
	bot := newBot(cfg, client, searcher, log)
	bot.client = client
	return bot
}

func newBot(cfg *Config, api matrixAPI, searcher Searcher, log zerolog.Logger) *Bot {
	cfg = cfg.WithDefaults()
	bot := &Bot{
		api:       api,
		searcher:  searcher,
		commands:  NewRegistry(),
		userID:    cfg.UserID,
		prefix:    cfg.CommandPrefix,
		autoJoin:  cfg.autoJoin(),
		maxTopics: search.DefaultMaxTopicCount,
		startedAt: time.Now(),
		now:       time.Now,
		log:       log,
	}
	bot.commands.Register(CommandHelp)
	bot.commands.Register(CommandPing)
	bot.commands.Register(CommandSearch)
	return bot
}

// Commands returns the bot's command registry.
func (b *Bot) Commands() *Registry {
	return b.commands
}

// Start registers the event handlers and syncs until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	if b.client == nil {
		return errors.New("bot has no matrix client")
	}
	syncer, ok := b.client.Syncer.(mautrix.ExtensibleSyncer)
	if !ok {
		return fmt.Errorf("unsupported syncer type %T", b.client.Syncer)
	}
	syncer.OnSync(b.client.DontProcessOldEvents)
	syncer.OnEventType(event.EventMessage, func(ctx context.Context, evt *event.Event) {
		go b.HandleMessage(ctx, evt)
	})
	syncer.OnEventType(event.StateMember, b.HandleMember)

	b.log.Info().Str("user_id", b.userID.String()).Str("prefix", b.prefix).Msg("Starting sync")
	err := b.client.SyncWithContext(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("sync failed: %w", err)
	}
	return nil
}

// HandleMember joins rooms the bot is invited to.
func (b *Bot) HandleMember(ctx context.Context, evt *event.Event) {
	if !b.autoJoin || evt.GetStateKey() != b.userID.String() {
		return
	}
	if evt.Content.AsMember().Membership != event.MembershipInvite {
		return
	}
	log := b.log.With().Str("room_id", evt.RoomID.String()).Str("inviter", evt.Sender.String()).Logger()
	if _, err := b.api.JoinRoomByID(ctx, evt.RoomID); err != nil {
		log.Err(err).Msg("Failed to join room after invite")
		return
	}
	log.Info().Msg("Joined room after invite")
}

// HandleMessage dispatches a message event to the matching command, if any.
func (b *Bot) HandleMessage(ctx context.Context, evt *event.Event) {
	if evt.Sender == b.userID || evt.Timestamp < b.startedAt.UnixMilli() {
		return
	}
	content := evt.Content.AsMessage()
	if content.MsgType != event.MsgText {
		return
	}
	ce := b.parseCommand(ctx, evt, content.Body)
	if ce == nil {
		return
	}
	b.dispatch(ce)
}

func (b *Bot) parseCommand(ctx context.Context, evt *event.Event, body string) *CommandEvent {
	text := strings.TrimSpace(body)
	if !strings.HasPrefix(text, b.prefix) {
		return nil
	}
	rest := strings.TrimSpace(text[len(b.prefix):])
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return nil
	}
	return &CommandEvent{
		Ctx:     ctx,
		Bot:     b,
		Event:   evt,
		RoomID:  evt.RoomID,
		Sender:  evt.Sender,
		Command: strings.ToLower(fields[0]),
		Args:    fields[1:],
		RawArgs: strings.TrimSpace(rest[len(fields[0]):]),
	}
}

func (b *Bot) dispatch(ce *CommandEvent) {
	log := b.log.With().
		Str("command_id", xid.New().String()).
		Str("command", ce.Command).
		Str("sender", ce.Sender.String()).
		Str("room_id", ce.RoomID.String()).
		Logger()
	ce.Log = &log
	ce.Ctx = log.WithContext(ce.Ctx)
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Any("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("Command handler panicked")
			ce.Reply(errorNotice(fmt.Errorf("panic: %v", r)))
		}
	}()

	def := b.commands.Get(ce.Command)
	if def == nil {
		// Other bots in the room may share the prefix.
		log.Debug().Msg("Ignoring unknown command")
		return
	}
	log.Info().Msg("Got command")
	def.Handler(ce)
}
