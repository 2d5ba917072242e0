package location

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awslocation "github.com/aws/aws-sdk-go-v2/service/location"
	"github.com/aws/aws-sdk-go-v2/service/location/types"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/fips-geocoder/internal/resilience"
)

// API is the subset of the AWS Location Service client used by Client.
type API interface {
	SearchPlaceIndexForText(ctx context.Context, in *awslocation.SearchPlaceIndexForTextInput, optFns ...func(*awslocation.Options)) (*awslocation.SearchPlaceIndexForTextOutput, error)
	SearchPlaceIndexForSuggestions(ctx context.Context, in *awslocation.SearchPlaceIndexForSuggestionsInput, optFns ...func(*awslocation.Options)) (*awslocation.SearchPlaceIndexForSuggestionsOutput, error)
	GetPlace(ctx context.Context, in *awslocation.GetPlaceInput, optFns ...func(*awslocation.Options)) (*awslocation.GetPlaceOutput, error)
}

// NewAPI builds an AWS Location Service client for region using the default
// credential chain. SDK-level retries are disabled; Client retries itself.
func NewAPI(ctx context.Context, region string) (API, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithRetryMaxAttempts(1),
	)
	if err != nil {
		return nil, eris.Wrap(err, "location: load aws config")
	}
	return awslocation.NewFromConfig(cfg), nil
}

// Option configures a Client.
type Option func(*Client)

// WithRateLimit sets the requests-per-second limit across all operations.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		burst := max(int(rps), 1)
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLimiter replaces the rate limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithPolicy sets the retry and circuit breaker policy.
func WithPolicy(p *resilience.Policy) Option {
	return func(c *Client) {
		c.policy = p
	}
}

// WithFilterCountries restricts suggestions to the given ISO 3166 alpha-3 codes.
func WithFilterCountries(countries ...string) Option {
	return func(c *Client) {
		c.countries = countries
	}
}

// WithTimeout bounds each upstream attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// Client implements Provider over an AWS Location Service place index.
type Client struct {
	api       API
	index     string
	countries []string
	limiter   *rate.Limiter
	policy    *resilience.Policy
	timeout   time.Duration
}

// NewClient returns a Client for the named place index.
func NewClient(api API, indexName string, opts ...Option) *Client {
	c := &Client{
		api:       api,
		index:     indexName,
		countries: []string{"USA", "CAN"},
		limiter:   rate.NewLimiter(20, 20),
		timeout:   10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchText implements Provider.
func (c *Client) SearchText(ctx context.Context, text string) ([]Place, error) {
	out, err := call(ctx, c, "search_text", func(ctx context.Context) (*awslocation.SearchPlaceIndexForTextOutput, error) {
		return c.api.SearchPlaceIndexForText(ctx, &awslocation.SearchPlaceIndexForTextInput{
			IndexName: aws.String(c.index),
			Text:      aws.String(text),
		})
	})
	if err != nil {
		return nil, eris.Wrap(err, "location: search text")
	}

	places := make([]Place, 0, len(out.Results))
	for _, r := range out.Results {
		if r.Place == nil {
			continue
		}
		places = append(places, fromAWSPlace(r.Place))
	}
	return places, nil
}

// Suggest implements Provider.
func (c *Client) Suggest(ctx context.Context, text string, maxResults int, bias *Position) ([]Suggestion, error) {
	in := &awslocation.SearchPlaceIndexForSuggestionsInput{
		IndexName:       aws.String(c.index),
		Text:            aws.String(text),
		FilterCountries: c.countries,
	}
	if maxResults > 0 {
		in.MaxResults = aws.Int32(int32(min(maxResults, 15)))
	}
	if bias != nil {
		in.BiasPosition = []float64{bias.Longitude, bias.Latitude}
	}

	out, err := call(ctx, c, "suggest", func(ctx context.Context) (*awslocation.SearchPlaceIndexForSuggestionsOutput, error) {
		return c.api.SearchPlaceIndexForSuggestions(ctx, in)
	})
	if err != nil {
		return nil, eris.Wrap(err, "location: suggest")
	}

	suggestions := make([]Suggestion, 0, len(out.Results))
	for _, r := range out.Results {
		suggestions = append(suggestions, Suggestion{
			Text:    aws.ToString(r.Text),
			PlaceID: aws.ToString(r.PlaceId),
		})
	}
	return suggestions, nil
}

// GetPlace implements Provider.
func (c *Client) GetPlace(ctx context.Context, placeID string) (*Place, error) {
	out, err := call(ctx, c, "get_place", func(ctx context.Context) (*awslocation.GetPlaceOutput, error) {
		return c.api.GetPlace(ctx, &awslocation.GetPlaceInput{
			IndexName: aws.String(c.index),
			PlaceId:   aws.String(placeID),
		})
	})
	var notFound *types.ResourceNotFoundException
	switch {
	case errors.As(err, &notFound):
		return nil, eris.Wrapf(ErrPlaceNotFound, "location: get place %s", placeID)
	case err != nil:
		return nil, eris.Wrap(err, "location: get place")
	case out.Place == nil:
		return nil, eris.Wrapf(ErrPlaceNotFound, "location: get place %s", placeID)
	}

	p := fromAWSPlace(out.Place)
	return &p, nil
}

// call rate-limits fn and runs it under the client's policy, bounding each
// attempt by the client timeout.
func call[T any](ctx context.Context, c *Client, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	return resilience.Run(ctx, c.policy, operation, func(ctx context.Context) (T, error) {
		var zero T
		if err := c.limiter.Wait(ctx); err != nil {
			return zero, eris.Wrap(err, "location: rate limit")
		}

		if c.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}

		start := time.Now()
		v, err := fn(ctx)
		if err != nil {
			err = classify(err)
			zap.L().Debug("location: upstream call failed",
				zap.String("operation", operation),
				zap.Duration("elapsed", time.Since(start)),
				zap.Bool("transient", resilience.IsTransient(err)),
				zap.Error(err),
			)
		}
		return v, err
	})
}

// classify marks throttling and server-side failures as transient.
func classify(err error) error {
	var throttled *types.ThrottlingException
	if errors.As(err, &throttled) {
		return resilience.NewTransientError(err, http.StatusTooManyRequests)
	}
	var internal *types.InternalServerException
	if errors.As(err, &internal) {
		return resilience.NewTransientError(err, http.StatusInternalServerError)
	}
	var status interface{ HTTPStatusCode() int }
	if errors.As(err, &status) {
		return resilience.ClassifyStatus(err, status.HTTPStatusCode())
	}
	return err
}

func fromAWSPlace(p *types.Place) Place {
	place := Place{
		Label:         aws.ToString(p.Label),
		Country:       aws.ToString(p.Country),
		Region:        aws.ToString(p.Region),
		SubRegion:     aws.ToString(p.SubRegion),
		Municipality:  aws.ToString(p.Municipality),
		Neighborhood:  aws.ToString(p.Neighborhood),
		PostalCode:    aws.ToString(p.PostalCode),
		AddressNumber: aws.ToString(p.AddressNumber),
		Street:        aws.ToString(p.Street),
	}
	if p.Geometry != nil && len(p.Geometry.Point) == 2 {
		place.Point = &Position{Longitude: p.Geometry.Point[0], Latitude: p.Geometry.Point[1]}
	}
	return place
}
