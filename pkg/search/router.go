package search

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Resolver runs the instant-answer lookup and, when it has nothing usable, the scrape fallback.
type Resolver struct {
	instant InstantSource
	scrape  ScrapeSource
}

// NewResolver builds a resolver for cfg. The scrape stage is omitted when cfg.Scrape.Enabled is false.
func NewResolver(cfg *Config) *Resolver {
	cfg = cfg.WithDefaults()
	r := &Resolver{instant: NewInstantClient(cfg)}
	if isEnabled(cfg.Scrape.Enabled, true) {
		r.scrape = NewScrapeClient(cfg)
	}
	return r
}

// NewResolverWith builds a resolver from explicit stages. scrape may be nil.
func NewResolverWith(instant InstantSource, scrape ScrapeSource) *Resolver {
	return &Resolver{instant: instant, scrape: scrape}
}

// Resolve returns an Outcome for query. Only instant-answer failures are returned as errors;
// a failed or empty scrape becomes OutcomeNoResult.
func (r *Resolver) Resolve(ctx context.Context, query string) (*Outcome, error) {
	ctx, span := otel.Tracer("search").Start(ctx, "search.resolve")
	defer span.End()
	log := zerolog.Ctx(ctx)
	start := time.Now()

	outcome := &Outcome{Query: query}
	answer, err := r.instant.Resolve(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "instant answer failed")
		return nil, err
	}
	if answer.Usable() {
		outcome.Kind = OutcomeInstant
		outcome.Answer = answer
		return r.finish(span, outcome, start), nil
	}

	if r.scrape == nil {
		log.Debug().Str("query", query).Msg("No instant answer and scrape fallback is disabled")
		return r.finish(span, outcome, start), nil
	}
	scraped, err := r.scrape.Resolve(ctx, query)
	switch {
	case err != nil:
		log.Warn().Err(err).Str("query", query).Msg("Scrape fallback failed, reporting no result")
		span.RecordError(err)
		outcome.FallbackErr = err
	case scraped.IsNotFound():
		log.Debug().Str("query", query).Msg("Scrape fallback found nothing")
	default:
		outcome.Kind = OutcomeScraped
		outcome.Scraped = &scraped
	}
	return r.finish(span, outcome, start), nil
}

func (r *Resolver) finish(span trace.Span, outcome *Outcome, start time.Time) *Outcome {
	outcome.Took = time.Since(start)
	span.SetAttributes(
		attribute.String("search.outcome", outcome.Kind.String()),
		attribute.Int64("search.took_ms", outcome.Took.Milliseconds()),
	)
	return outcome
}
