package explorer

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"

	agenterr "github.com/restakehq/restake-agent/internal/errors"
	"github.com/restakehq/restake-agent/internal/httpx"
)

const (
	defaultRetryAttempts = 3
	defaultRetryDelay    = 2 * time.Second
)

// TVLData is the protocol-wide TVL metric.
type TVLData struct {
	TVL float64 `json:"tvl"`
}

// StakerShare is one strategy position of a staker.
type StakerShare struct {
	StrategyAddress string `json:"strategyAddress"`
	Shares          string `json:"shares"`
}

// StakerData is the indexed view of one staker.
type StakerData struct {
	Address         string        `json:"address"`
	OperatorAddress string        `json:"operatorAddress"`
	Shares          []StakerShare `json:"shares"`
	CreatedAt       string        `json:"createdAt"`
	UpdatedAt       string        `json:"updatedAt"`
}

// AVSRegistration is one AVS an operator is registered with.
type AVSRegistration struct {
	AVSAddress string `json:"avsAddress"`
	IsActive   bool   `json:"isActive"`
}

// OperatorData is the indexed view of one operator.
type OperatorData struct {
	Address             string            `json:"address"`
	MetadataName        string            `json:"metadataName"`
	MetadataDescription string            `json:"metadataDescription"`
	MetadataWebsite     string            `json:"metadataWebsite"`
	TotalStakers        int               `json:"totalStakers"`
	TotalAVS            int               `json:"totalAvs"`
	APY                 string            `json:"apy"`
	Shares              []StakerShare     `json:"shares"`
	AVSRegistrations    []AVSRegistration `json:"avsRegistrations"`
}

// StakersList is a page of the staker listing.
type StakersList struct {
	Data []struct {
		Address         string `json:"address"`
		OperatorAddress string `json:"operatorAddress"`
	} `json:"data"`
	Meta struct {
		Total int `json:"total"`
	} `json:"meta"`
}

// Client reads the remote restaking index. Every read goes through the same
// retry policy: fixed delay, retry only on 5xx. NotFound is returned
// immediately so callers can fall back to on-chain reads.
type Client struct {
	http     *httpx.Client
	baseURL  string
	attempts uint
	delay    time.Duration
	log      zerolog.Logger
}

func New(httpClient *httpx.Client, baseURL string, log zerolog.Logger) *Client {
	return &Client{
		http:     httpClient,
		baseURL:  baseURL,
		attempts: defaultRetryAttempts,
		delay:    defaultRetryDelay,
		log:      log,
	}
}

// WithRetry overrides the retry policy, typically from --retries.
func (c *Client) WithRetry(attempts uint, delay time.Duration) *Client {
	c.attempts = attempts
	c.delay = delay
	return c
}

func (c *Client) TVL(ctx context.Context) (TVLData, error) {
	return fetch[TVLData](ctx, c, c.baseURL+"/metrics/tvl")
}

func (c *Client) Staker(ctx context.Context, address string) (StakerData, error) {
	return fetch[StakerData](ctx, c, fmt.Sprintf("%s/stakers/%s", c.baseURL, address))
}

func (c *Client) Operator(ctx context.Context, address string) (OperatorData, error) {
	return fetch[OperatorData](ctx, c, fmt.Sprintf("%s/operators/%s", c.baseURL, address))
}

func (c *Client) Stakers(ctx context.Context) (StakersList, error) {
	return fetch[StakersList](ctx, c, c.baseURL+"/stakers")
}

func fetch[T any](ctx context.Context, c *Client, url string) (T, error) {
	result, err := retry.DoWithData(
		func() (T, error) {
			var out T
			if err := c.http.GetJSON(ctx, url, &out); err != nil {
				return out, err
			}
			return out, nil
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return agenterr.HasCode(err, agenterr.CodeServerError)
		}),
		retry.OnRetry(func(n uint, err error) {
			c.log.Warn().
				Uint("attempt", n+1).
				Uint("max_attempts", c.attempts).
				Str("url", url).
				Err(err).
				Msg("index read failed, retrying")
		}),
	)
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
