// Package strava fetches rides from the Strava REST API.
package strava

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"ridelog/internal/source"
)

const BaseURL = "https://www.strava.com/api/v3"

// streamKeys are the stream types requested for every ride
const streamKeys = "time,latlng,altitude,velocity_smooth,heartrate,cadence,watts,grade_smooth,distance"

// ErrNotFound is returned when Strava has no activity with the given id
var ErrNotFound = errors.New("strava activity not found")

// Client is a Strava API client
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *RateLimiter
	logger      *zap.Logger
}

// NewClient creates a client that authorizes requests with tokenSource
func NewClient(tokenSource oauth2.TokenSource, logger *zap.Logger) *Client {
	return NewClientWithHTTP(oauth2.NewClient(context.Background(), tokenSource), BaseURL, logger)
}

// NewClientWithHTTP creates a client on an already authorized HTTP client
func NewClientWithHTTP(httpClient *http.Client, baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient:  httpClient,
		baseURL:     baseURL,
		rateLimiter: NewRateLimiter(),
		logger:      logger,
	}
}

// GetActivity fetches the detailed activity including its laps
func (c *Client) GetActivity(ctx context.Context, activityID int64) (*Activity, error) {
	var activity Activity
	if err := c.getJSON(ctx, fmt.Sprintf("/activities/%d", activityID), nil, &activity); err != nil {
		return nil, fmt.Errorf("fetching activity %d: %w", activityID, err)
	}
	return &activity, nil
}

// GetActivityStreams fetches the full resolution streams of an activity
func (c *Client) GetActivityStreams(ctx context.Context, activityID int64) (*Streams, error) {
	params := url.Values{}
	params.Set("keys", streamKeys)
	params.Set("key_by_type", "true")

	var streams Streams
	if err := c.getJSON(ctx, fmt.Sprintf("/activities/%d/streams", activityID), params, &streams); err != nil {
		return nil, fmt.Errorf("fetching streams of %d: %w", activityID, err)
	}
	return &streams, nil
}

// FetchRide fetches an activity with its streams as a decoded ride
func (c *Client) FetchRide(ctx context.Context, activityID int64) (*source.Ride, error) {
	activity, err := c.GetActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}
	streams, err := c.GetActivityStreams(ctx, activityID)
	if err != nil {
		return nil, err
	}

	ride, err := NewRide(activity, streams)
	if err != nil {
		return nil, err
	}

	short, daily := c.rateLimiter.Status()
	c.logger.Debug("fetched strava ride",
		zap.Int64("strava_id", activityID),
		zap.Int("samples", streams.Len()),
		zap.Int("short_remaining", short),
		zap.Int("daily_remaining", daily))
	return ride, nil
}

// RateLimitStatus returns the current rate limit status
func (c *Client) RateLimitStatus() (shortRemaining, dailyRemaining int) {
	return c.rateLimiter.Status()
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.rateLimiter.UpdateFromHeaders(resp.Header)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
