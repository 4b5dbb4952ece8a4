// Package simplefin is a minimal client for the SimpleFIN bridge protocol:
// a one-time setup token is claimed for an access URL, and the access URL
// (credentials embedded in its userinfo) serves account and transaction
// data over Basic auth.
package simplefin

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Organization identifies the institution behind an account.
type Organization struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

// Account is one bank account as reported by the bridge.
type Account struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Currency     string        `json:"currency"`
	Balance      string        `json:"balance"`
	BalanceDate  int64         `json:"balance-date"`
	Org          Organization  `json:"org"`
	Transactions []Transaction `json:"transactions"`
}

// Transaction is one ledger entry of an account. Posted is epoch seconds;
// a pending transaction has not settled and its id may still change.
type Transaction struct {
	ID          string `json:"id"`
	Posted      int64  `json:"posted"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Pending     bool   `json:"pending"`
}

// PostedAt converts the epoch-seconds timestamp to UTC.
func (t Transaction) PostedAt() time.Time {
	return time.Unix(t.Posted, 0).UTC()
}

// AccountSet is the top-level response of the /accounts endpoint.
type AccountSet struct {
	Errors   []string  `json:"errors"`
	Accounts []Account `json:"accounts"`
}

// Client talks to a SimpleFIN bridge.
type Client struct {
	httpClient *http.Client
}

// NewClient returns a client whose requests time out after the given
// duration. Bridges can be slow when an institution refresh is forced, so
// timeouts of several minutes are normal.
func NewClient(timeout time.Duration) *Client {
	return &Client{httpClient: &http.Client{Timeout: timeout}}
}

// ClaimSetupToken exchanges a one-time setup token for a permanent access
// URL. The token is the base64-encoded claim URL; claiming is a POST with
// an empty body, and the response body is the access URL. A token can be
// claimed exactly once.
func (c *Client) ClaimSetupToken(ctx context.Context, token string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(token))
	if err != nil {
		return "", fmt.Errorf("decode setup token: %w", err)
	}
	claimURL := string(raw)
	if _, err := url.ParseRequestURI(claimURL); err != nil {
		return "", fmt.Errorf("setup token does not contain a URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claimURL, nil)
	if err != nil {
		return "", fmt.Errorf("build claim request: %w", err)
	}
	req.Header.Set("Content-Length", "0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("claim setup token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read claim response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("claim setup token: bridge returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	accessURL := strings.TrimSpace(string(body))
	if _, err := url.Parse(accessURL); err != nil {
		return "", fmt.Errorf("bridge returned invalid access URL: %w", err)
	}
	return accessURL, nil
}

// FetchAccounts retrieves all accounts with their transactions since the
// given start time. Credentials ride in the access URL's userinfo and are
// sent as Basic auth.
func (c *Client) FetchAccounts(ctx context.Context, accessURL string, since time.Time) (*AccountSet, error) {
	u, err := url.Parse(accessURL)
	if err != nil {
		return nil, fmt.Errorf("parse access URL: %w", err)
	}
	username := u.User.Username()
	password, _ := u.User.Password()
	u.User = nil
	u.Path = strings.TrimSuffix(u.Path, "/") + "/accounts"

	q := u.Query()
	q.Set("start-date", strconv.FormatInt(since.Unix(), 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build accounts request: %w", err)
	}
	req.SetBasicAuth(username, password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch accounts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("fetch accounts: bridge returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var set AccountSet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("decode accounts response: %w", err)
	}
	return &set, nil
}
