package searchbot

import (
	"fmt"
	"strings"

	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/format"

	"github.com/beeper/search-bot/pkg/search"
)

const (
	resultFooter    = "Results from DuckDuckGo"
	noResultMessage = "No result found!"
)

// RenderOutcome formats a search outcome as a Matrix notice.
func RenderOutcome(outcome *search.Outcome, maxTopics int) *event.MessageEventContent {
	content := format.RenderMarkdown(renderOutcomeMarkdown(outcome, maxTopics), true, false)
	content.MsgType = event.MsgNotice
	return &content
}

func renderOutcomeMarkdown(outcome *search.Outcome, maxTopics int) string {
	result, ok := outcome.Result()
	if !ok {
		return fmt.Sprintf("**%s**\n\n_%s_", noResultMessage, resultFooter)
	}

	var sb strings.Builder
	title := strings.TrimSpace(result.Title)
	if title == "" {
		title = "Search result:"
	}
	if result.SourceURL != "" {
		fmt.Fprintf(&sb, "**%s**\n\n", format.MarkdownLink(title, result.SourceURL))
	} else {
		fmt.Fprintf(&sb, "**%s**\n\n", format.EscapeMarkdown(title))
	}

	if body := strings.TrimSpace(result.Body); body != "" {
		sb.WriteString(format.EscapeMarkdown(body))
		sb.WriteString("\n\n")
		if result.ImageURL != "" {
			sb.WriteString(format.MarkdownLink("Image", result.ImageURL))
			sb.WriteString("\n\n")
		}
	} else if len(result.Topics) > 0 {
		topics := result.Topics
		if maxTopics > 0 && len(topics) > maxTopics {
			topics = topics[:maxTopics]
		}
		for i, topic := range topics {
			fmt.Fprintf(&sb, "%d. ", i+1)
			if topic.FirstURL != "" {
				sb.WriteString(format.MarkdownLink(topic.Title(), topic.FirstURL))
			} else {
				sb.WriteString(format.EscapeMarkdown(topic.Title()))
			}
			if snippet := topic.Snippet(); snippet != "" {
				sb.WriteString(": ")
				sb.WriteString(format.EscapeMarkdown(snippet))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "_%s_", resultFooter)
	return sb.String()
}

// errorNotice is the message shown to users when a search fails outright.
// The underlying error is logged, never shown.
func errorNotice(err error) *event.MessageEventContent {
	msg := "Sorry, something went wrong while searching. Please try again later."
	if search.IsTransportError(err) {
		msg = "Sorry, DuckDuckGo could not be reached right now. Please try again later."
	}
	content := format.RenderMarkdown(msg, true, false)
	content.MsgType = event.MsgNotice
	return &content
}
