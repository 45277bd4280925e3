package search

import (
	"encoding/json"
	"strings"
	"time"
)

// NoResultsTitle is the placeholder title of the "nothing found" scrape result.
const NoResultsTitle = "No results - DuckDuckGo"

// Answer is a structured instant answer.
type Answer struct {
	Heading        string         `json:"Heading"`
	AbstractText   string         `json:"AbstractText"`
	AbstractURL    string         `json:"AbstractURL"`
	AbstractSource string         `json:"AbstractSource"`
	Image          string         `json:"Image"`
	RelatedTopics  []RelatedTopic `json:"RelatedTopics"`

	imageBase string
}

// RelatedTopic is either a leaf Result or a Category grouping; exactly one is set.
type RelatedTopic struct {
	Result   *TopicResult
	Category *TopicCategory
}

type TopicResult struct {
	FirstURL string `json:"FirstURL"`
	Text     string `json:"Text"`
}

type TopicCategory struct {
	Name   string         `json:"Name"`
	Topics []RelatedTopic `json:"Topics"`
}

func (t *RelatedTopic) UnmarshalJSON(data []byte) error {
	var probe struct {
		Topics json.RawMessage `json:"Topics"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if len(probe.Topics) > 0 {
		var cat TopicCategory
		if err := json.Unmarshal(data, &cat); err != nil {
			return err
		}
		t.Category = &cat
		return nil
	}
	var res TopicResult
	if err := json.Unmarshal(data, &res); err != nil {
		return err
	}
	t.Result = &res
	return nil
}

// Title returns the part of the topic text before the " - " separator.
func (t TopicResult) Title() string {
	title, _ := splitTopicText(t.Text)
	return title
}

// Snippet returns the part of the topic text after the " - " separator, if any.
func (t TopicResult) Snippet() string {
	_, snippet := splitTopicText(t.Text)
	return snippet
}

func splitTopicText(text string) (title string, snippet string) {
	parts := strings.SplitN(text, " - ", 2)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	return strings.TrimSpace(text), ""
}

// TopicResults returns the leaf topics in order. Category groupings are skipped.
func (a *Answer) TopicResults() []TopicResult {
	if a == nil {
		return nil
	}
	var out []TopicResult
	for _, topic := range a.RelatedTopics {
		if topic.Result != nil && (topic.Result.Text != "" || topic.Result.FirstURL != "") {
			out = append(out, *topic.Result)
		}
	}
	return out
}

// Usable reports whether the answer has an abstract or at least one related topic result.
// Only leaf topics count: a RelatedTopics list holding nothing but category groupings
// is treated as empty, so such an answer falls back to scraping.
func (a *Answer) Usable() bool {
	if a == nil {
		return false
	}
	return strings.TrimSpace(a.AbstractText) != "" || len(a.TopicResults()) > 0
}

// ImageURL returns the absolute image URL, or "" if the answer has no image.
func (a *Answer) ImageURL() string {
	if a == nil || a.Image == "" {
		return ""
	}
	if strings.HasPrefix(a.Image, "http://") || strings.HasPrefix(a.Image, "https://") {
		return a.Image
	}
	base := a.imageBase
	if base == "" {
		base = DefaultImageBaseURL
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(a.Image, "/")
}

// ScrapedResult is the first organic result of the HTML results page.
type ScrapedResult struct {
	Title   string
	URL     string
	Content string
}

// NotFound returns the sentinel result for a results page that has no results.
func NotFound() ScrapedResult {
	return ScrapedResult{Title: NoResultsTitle}
}

// IsNotFound reports whether r is the "nothing found" sentinel or carries no destination.
func (r ScrapedResult) IsNotFound() bool {
	return r.URL == "" || r.Title == NoResultsTitle
}

type OutcomeKind int

const (
	OutcomeNoResult OutcomeKind = iota
	OutcomeInstant
	OutcomeScraped
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeInstant:
		return "instant"
	case OutcomeScraped:
		return "scraped"
	default:
		return "no_result"
	}
}

// Outcome is the result of one pipeline run. At most one of Answer and Scraped is set.
type Outcome struct {
	Query   string
	Kind    OutcomeKind
	Answer  *Answer
	Scraped *ScrapedResult
	// FallbackErr holds the scrape error that was downgraded to OutcomeNoResult.
	FallbackErr error
	Took        time.Duration
}

// Result is the normalized record handed to the messaging layer.
type Result struct {
	Title     string
	Body      string
	SourceURL string
	ImageURL  string
	Topics    []TopicResult
}

// Result normalizes the outcome. The second return value is false for OutcomeNoResult.
func (o *Outcome) Result() (Result, bool) {
	if o == nil {
		return Result{}, false
	}
	switch o.Kind {
	case OutcomeInstant:
		if o.Answer == nil {
			return Result{}, false
		}
		return Result{
			Title:     o.Answer.Heading,
			Body:      o.Answer.AbstractText,
			SourceURL: o.Answer.AbstractURL,
			ImageURL:  o.Answer.ImageURL(),
			Topics:    o.Answer.TopicResults(),
		}, true
	case OutcomeScraped:
		if o.Scraped == nil {
			return Result{}, false
		}
		return Result{
			Title:     o.Scraped.Title,
			Body:      o.Scraped.Content,
			SourceURL: o.Scraped.URL,
		}, true
	default:
		return Result{}, false
	}
}
