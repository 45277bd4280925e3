package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/beeper/search-bot/pkg/shared/httputil"
)

// InstantClient queries the instant-answer API.
type InstantClient struct {
	cfg       InstantConfig
	clientID  string
	userAgent string
	imageBase string
	http      *http.Client
}

func NewInstantClient(cfg *Config) *InstantClient {
	cfg = cfg.WithDefaults()
	return &InstantClient{
		cfg:       cfg.Instant,
		clientID:  cfg.ClientID,
		userAgent: cfg.UserAgent,
		imageBase: cfg.ImageBaseURL,
		http:      httputil.NewClient(cfg.Instant.TimeoutSecs),
	}
}

func (c *InstantClient) requestURL(query string) (string, error) {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return "", err
	}
	params := u.Query()
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")
	params.Set("skip_disambig", "1")
	params.Set("t", c.clientID)
	u.RawQuery = params.Encode()
	return u.String(), nil
}

// Resolve performs one instant-answer lookup. An empty query yields an unusable answer.
// Transport and decode failures are returned as *TransportError and *DecodeError.
func (c *InstantClient) Resolve(ctx context.Context, query string) (*Answer, error) {
	apiURL, err := c.requestURL(query)
	if err != nil {
		return nil, &TransportError{Stage: StageInstant, Err: err}
	}
	headers := map[string]string{
		"User-Agent": c.userAgent,
		"Accept":     "application/json",
	}
	data, status, err := httputil.Get(ctx, c.http, apiURL, headers, httputil.DefaultMaxBodyBytes)
	if err != nil {
		var statusErr *httputil.StatusError
		if errors.As(err, &statusErr) {
			return nil, &TransportError{Stage: StageInstant, StatusCode: statusErr.StatusCode, Err: err}
		}
		return nil, &TransportError{Stage: StageInstant, StatusCode: status, Err: err}
	}

	var answer Answer
	if err = json.Unmarshal(data, &answer); err != nil {
		return nil, &DecodeError{Err: err}
	}
	answer.imageBase = c.imageBase

	zerolog.Ctx(ctx).Debug().
		Str("heading", answer.Heading).
		Bool("has_abstract", answer.AbstractText != "").
		Int("related_topics", len(answer.RelatedTopics)).
		Msg("Instant answer received")
	return &answer, nil
}
