package searchbot

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/format"
	"maunium.net/go/mautrix/id"
)

// CommandEvent is a parsed command invocation.
type CommandEvent struct {
	Ctx     context.Context
	Bot     *Bot
	Event   *event.Event
	RoomID  id.RoomID
	Sender  id.UserID
	Command string
	Args    []string
	RawArgs string
	Log     *zerolog.Logger
}

// Reply sends content to the room as a reply to the command message.
func (ce *CommandEvent) Reply(content *event.MessageEventContent) {
	if ce.Event != nil && ce.Event.ID != "" {
		content.RelatesTo = &event.RelatesTo{InReplyTo: &event.InReplyTo{EventID: ce.Event.ID}}
	}
	_, err := ce.Bot.api.SendMessageEvent(ce.Ctx, ce.RoomID, event.EventMessage, content)
	if err != nil {
		ce.Log.Err(err).Msg("Failed to send reply")
	}
}

// ReplyMarkdown renders a markdown notice and sends it as a reply.
func (ce *CommandEvent) ReplyMarkdown(msg string, args ...any) {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	content := format.RenderMarkdown(msg, true, false)
	content.MsgType = event.MsgNotice
	ce.Reply(&content)
}

// Definition describes a chat command.
type Definition struct {
	Name        string
	Description string
	Args        string
	Aliases     []string
	Handler     func(*CommandEvent)
}

// Usage returns the invocation syntax for the command with the given prefix.
func (d *Definition) Usage(prefix string) string {
	if d.Args == "" {
		return prefix + d.Name
	}
	return prefix + d.Name + " " + d.Args
}

// Registry collects command definitions.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]*Definition
	aliases  map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]*Definition),
		aliases:  make(map[string]string),
	}
}

// Register adds a command definition to the registry.
func (r *Registry) Register(def Definition) {
	if def.Name == "" || def.Handler == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers[def.Name] = &def
	for _, alias := range def.Aliases {
		r.aliases[alias] = def.Name
	}
}

// Get retrieves a definition by name or alias. Lookups are case-insensitive.
func (r *Registry) Get(name string) *Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name = strings.ToLower(name)
	if canonical, ok := r.aliases[name]; ok {
		name = canonical
	}
	return r.handlers[name]
}

// All returns all definitions sorted by name.
func (r *Registry) All() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]*Definition, 0, len(r.handlers))
	for _, def := range r.handlers {
		defs = append(defs, def)
	}
	slices.SortFunc(defs, func(a, b *Definition) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return defs
}

// Names returns all registered command names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
