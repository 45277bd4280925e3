package searchbot

import (
	"errors"
	"strings"
	"testing"

	"maunium.net/go/mautrix/event"

	"github.com/beeper/search-bot/pkg/search"
)

func TestRenderInstantAnswerWithoutImage(t *testing.T) {
	outcome := &search.Outcome{
		Kind: search.OutcomeInstant,
		Answer: &search.Answer{
			Heading:      "Discord",
			AbstractText: "Discord is a VoIP platform",
			AbstractURL:  "https://discord.com",
		},
	}
	html := RenderOutcome(outcome, 10).FormattedBody
	for _, want := range []string{
		`<strong><a href="https://discord.com">Discord</a></strong>`,
		"Discord is a VoIP platform",
		"<em>Results from DuckDuckGo</em>",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("rendered html missing %q:\n%s", want, html)
		}
	}
	if strings.Contains(html, "Image") {
		t.Fatalf("answer without image should not link one:\n%s", html)
	}
}

func TestRenderInstantAnswerWithImage(t *testing.T) {
	outcome := &search.Outcome{
		Kind: search.OutcomeInstant,
		Answer: &search.Answer{
			Heading:      "Go",
			AbstractText: "A language",
			Image:        "https://duckduckgo.com/i/go.png",
		},
	}
	html := RenderOutcome(outcome, 10).FormattedBody
	if !strings.Contains(html, `<a href="https://duckduckgo.com/i/go.png">Image</a>`) {
		t.Fatalf("expected image link:\n%s", html)
	}
	if !strings.Contains(html, "<strong>Go</strong>") {
		t.Fatalf("heading without url should not be a link:\n%s", html)
	}
}

func TestRenderRelatedTopicsLimited(t *testing.T) {
	topics := []search.RelatedTopic{
		{Result: &search.TopicResult{FirstURL: "https://duckduckgo.com/A", Text: "A - first"}},
		{Category: &search.TopicCategory{Name: "Skipped"}},
		{Result: &search.TopicResult{FirstURL: "https://duckduckgo.com/B", Text: "B"}},
		{Result: &search.TopicResult{FirstURL: "https://duckduckgo.com/C", Text: "C - third"}},
	}
	outcome := &search.Outcome{Kind: search.OutcomeInstant, Answer: &search.Answer{RelatedTopics: topics}}
	html := RenderOutcome(outcome, 2).FormattedBody
	for _, want := range []string{
		"Search result:",
		`<li><a href="https://duckduckgo.com/A">A</a>: first</li>`,
		`<li><a href="https://duckduckgo.com/B">B</a></li>`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("rendered html missing %q:\n%s", want, html)
		}
	}
	if strings.Contains(html, "Skipped") || strings.Contains(html, "duckduckgo.com/C") {
		t.Fatalf("categories and topics past the limit must be left out:\n%s", html)
	}
}

func TestRenderScrapedResultEscapesMarkdown(t *testing.T) {
	outcome := &search.Outcome{
		Kind:    search.OutcomeScraped,
		Scraped: &search.ScrapedResult{Title: "a_b [c] <d>", URL: "https://example.com", Content: "*bold* (x)"},
	}
	html := RenderOutcome(outcome, 10).FormattedBody
	if !strings.Contains(html, `<a href="https://example.com">a_b [c] &lt;d&gt;</a>`) {
		t.Fatalf("title should be rendered literally:\n%s", html)
	}
	if !strings.Contains(html, "*bold* (x)") || strings.Contains(html, "<em>bold</em>") {
		t.Fatalf("snippet markup should be escaped:\n%s", html)
	}
}

func TestRenderKeepsParenthesesInLinkTarget(t *testing.T) {
	outcome := &search.Outcome{
		Kind:    search.OutcomeScraped,
		Scraped: &search.ScrapedResult{Title: "Smiley", URL: "https://example.com/smile:)", Content: "hi"},
	}
	html := RenderOutcome(outcome, 10).FormattedBody
	if !strings.Contains(html, `href="https://example.com/smile:)"`) && !strings.Contains(html, `href="https://example.com/smile:%29"`) {
		t.Fatalf("link target was truncated:\n%s", html)
	}
	if strings.Contains(html, "</a>)") {
		t.Fatalf("stray parenthesis leaked into the message:\n%s", html)
	}
}

func TestRenderNoResult(t *testing.T) {
	got := renderOutcomeMarkdown(&search.Outcome{Kind: search.OutcomeNoResult}, 10)
	if !strings.Contains(got, "No result found!") {
		t.Fatalf("unexpected markdown %q", got)
	}
	content := RenderOutcome(&search.Outcome{}, 10)
	if content.MsgType != event.MsgNotice {
		t.Fatalf("expected notice, got %s", content.MsgType)
	}
}

func TestErrorNotice(t *testing.T) {
	transport := errorNotice(&search.TransportError{Stage: search.StageInstant, Err: errors.New("boom")})
	if !strings.Contains(transport.Body, "could not be reached") {
		t.Fatalf("unexpected transport notice %q", transport.Body)
	}
	generic := errorNotice(&search.DecodeError{Err: errors.New("boom")})
	if !strings.Contains(generic.Body, "something went wrong") || strings.Contains(generic.Body, "boom") {
		t.Fatalf("unexpected generic notice %q", generic.Body)
	}
}
