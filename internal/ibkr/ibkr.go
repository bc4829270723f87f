// Package ibkr imports trades from Interactive Brokers Flex statements.
package ibkr

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/north212wangbo/portfolio-gains/internal/apperrors"
)

// DefaultBaseURL is the Flex Web Service root.
const DefaultBaseURL = "https://ndcdyn.interactivebrokers.com/AccountManagement/FlexWebService"

// Error codes returned while a statement is still being generated.
var notReadyCodes = map[int]bool{1018: true, 1019: true, 1021: true}

// Client fetches Flex statements.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	backoff     time.Duration
	maxBackoff  time.Duration
	maxAttempts uint64
}

// NewClient creates a Flex Web Service client. A nil httpClient gets a 30s timeout;
// an empty baseURL uses DefaultBaseURL.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient:  httpClient,
		baseURL:     baseURL,
		backoff:     2 * time.Second,
		maxBackoff:  30 * time.Second,
		maxAttempts: 10,
	}
}

// WithBackoff overrides the retry schedule used while a statement is generated.
// attempts counts the first try and is at least 1.
func (c *Client) WithBackoff(base, max time.Duration, attempts uint64) *Client {
	if attempts == 0 {
		attempts = 1
	}
	c.backoff = base
	c.maxBackoff = max
	c.maxAttempts = attempts
	return c
}

// FetchStatement requests the statement of queryID and waits for it to be generated.
// It returns the raw document alongside the parsed one.
func (c *Client) FetchStatement(ctx context.Context, token string, queryID int) (FlexQueryResponse, []byte, error) {
	if token == "" || queryID == 0 {
		return FlexQueryResponse{}, nil, apperrors.ErrBrokerNotConfigured
	}

	ref, err := c.sendRequest(ctx, token, queryID)
	if err != nil {
		return FlexQueryResponse{}, nil, err
	}
	return c.getStatement(ctx, token, ref)
}

func (c *Client) sendRequest(ctx context.Context, token string, queryID int) (FlexRequestResponse, error) {
	q := url.Values{"t": {token}, "q": {strconv.Itoa(queryID)}, "v": {"3"}}
	data, err := c.get(ctx, c.baseURL+"/SendRequest?"+q.Encode())
	if err != nil {
		return FlexRequestResponse{}, err
	}

	var resp FlexRequestResponse
	if err := xml.Unmarshal(data, &resp); err != nil {
		return FlexRequestResponse{}, fmt.Errorf("failed to parse flex request response: %w", err)
	}
	if err := flexError(resp); err != nil {
		return resp, err
	}
	if resp.Status != "Success" || resp.URL == "" {
		return resp, fmt.Errorf("flex request failed with status %q", resp.Status)
	}
	return resp, nil
}

func (c *Client) getStatement(ctx context.Context, token string, ref FlexRequestResponse) (FlexQueryResponse, []byte, error) {
	q := url.Values{"t": {token}, "q": {ref.ReferenceCode}, "v": {"3"}}
	endpoint := ref.URL + "?" + q.Encode()

	b := retry.NewExponential(c.backoff)
	b = retry.WithCappedDuration(c.maxBackoff, b)
	b = retry.WithMaxRetries(c.maxAttempts-1, b)

	var (
		statement FlexQueryResponse
		data      []byte
	)
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		var err error
		data, err = c.get(ctx, endpoint)
		if err != nil {
			return err
		}

		if xml.Unmarshal(data, &statement) == nil {
			return nil
		}

		var pending FlexRequestResponse
		if err := xml.Unmarshal(data, &pending); err != nil {
			return fmt.Errorf("failed to parse flex statement: %w", err)
		}
		if pending.ErrorCode != nil && notReadyCodes[*pending.ErrorCode] {
			return retry.RetryableError(flexError(pending))
		}
		if err := flexError(pending); err != nil {
			return err
		}
		return errors.New("unexpected flex statement response")
	})
	if err != nil {
		return FlexQueryResponse{}, nil, err
	}
	return statement, data, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("flex web service returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func flexError(resp FlexRequestResponse) error {
	if resp.ErrorCode == nil {
		return nil
	}
	msg := ""
	if resp.ErrorMessage != nil {
		msg = *resp.ErrorMessage
	}
	return fmt.Errorf("ibkr error %d: %s", *resp.ErrorCode, msg)
}
