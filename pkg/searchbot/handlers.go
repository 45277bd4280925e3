package searchbot

import (
	"fmt"
	"strings"
	"time"

	"maunium.net/go/mautrix/format"
)

const helpFooter = "A simple search bot for Matrix, using DuckDuckGo.\n\n" +
	"To get help with an individual command, pass its name as an argument to this command."

var CommandHelp = Definition{
	Name:        "help",
	Description: "Show bot help",
	Args:        "[command]",
	Handler:     fnHelp,
}

var CommandPing = Definition{
	Name:        "ping",
	Description: "Return the delay between sending a command and the bot handling it",
	Handler:     fnPing,
}

var CommandSearch = Definition{
	Name:        "s",
	Aliases:     []string{"search"},
	Description: "Query DuckDuckGo for search results",
	Args:        "<query>",
	Handler:     fnSearch,
}

func fnHelp(ce *CommandEvent) {
	prefix := ce.Bot.prefix
	if len(ce.Args) > 0 {
		name := strings.TrimPrefix(ce.Args[0], prefix)
		def := ce.Bot.commands.Get(name)
		if def == nil {
			ce.ReplyMarkdown("Could not find: %s", format.SafeMarkdownCode(name))
			return
		}
		msg := fmt.Sprintf("**%s**\n\n%s", def.Usage(prefix), def.Description)
		if len(def.Aliases) > 0 {
			msg += fmt.Sprintf("\n\nAliases: `%s`", strings.Join(def.Aliases, "`, `"))
		}
		ce.ReplyMarkdown(msg)
		return
	}

	var sb strings.Builder
	sb.WriteString("**Commands**\n\n")
	for _, def := range ce.Bot.commands.All() {
		fmt.Fprintf(&sb, "* `%s`: %s\n", def.Usage(prefix), def.Description)
	}
	sb.WriteString("\n")
	sb.WriteString(helpFooter)
	ce.ReplyMarkdown(sb.String())
}

func fnPing(ce *CommandEvent) {
	if ce.Event == nil || ce.Event.Timestamp <= 0 {
		ce.ReplyMarkdown("Pong! Just connected, no ping yet!")
		return
	}
	delay := ce.Bot.now().Sub(time.UnixMilli(ce.Event.Timestamp))
	if delay < 0 {
		delay = 0
	}
	ce.ReplyMarkdown("Pong! **%d ms**", delay.Milliseconds())
}

func fnSearch(ce *CommandEvent) {
	if ce.RawArgs == "" {
		ce.ReplyMarkdown("Usage: `%s%s <query>`", ce.Bot.prefix, ce.Command)
		return
	}
	ce.Log.Info().Str("query", ce.RawArgs).Msg("Search requested")
	outcome, err := ce.Bot.searcher.Resolve(ce.Ctx, ce.RawArgs)
	if err != nil {
		ce.Log.Err(err).Str("query", ce.RawArgs).Msg("Search failed")
		ce.Reply(errorNotice(err))
		return
	}
	evt := ce.Log.Info().
		Str("outcome", outcome.Kind.String()).
		Dur("took", outcome.Took)
	if outcome.FallbackErr != nil {
		evt = evt.AnErr("fallback_error", outcome.FallbackErr)
	}
	evt.Msg("Search finished")
	ce.Reply(RenderOutcome(outcome, ce.Bot.maxTopics))
}
