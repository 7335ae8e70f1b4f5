package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"spendtracker/src/models"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// transactionPageSize is the largest page the API serves.
const transactionPageSize = 500

var errNoToken = errors.New("no API token configured, run 'spendctl login' or pass --token")

// envelope mirrors the API's JSON reply wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// apiError is a reply with success=false.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
}

type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newClient(baseURL, token string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// clientFromConfig builds a client from viper. Commands that need to be
// signed in pass authenticated=true.
func clientFromConfig(authenticated bool) (*apiClient, error) {
	token := viper.GetString("api.token")
	if token == "" {
		token = readSavedToken()
	}
	if authenticated && token == "" {
		return nil, errNoToken
	}
	return newClient(viper.GetString("api.url"), token), nil
}

// do sends a request and decodes the envelope's data into out when out is
// non-nil.
func (c *apiClient) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("API request")

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s %s: unexpected response (%d): %w", method, path, resp.StatusCode, err)
	}
	if !env.Success || resp.StatusCode >= http.StatusBadRequest {
		return &apiError{Status: resp.StatusCode, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s %s: failed to decode data: %w", method, path, err)
	}
	return nil
}

func (c *apiClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, "", out)
}

func (c *apiClient) postJSON(ctx context.Context, path string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, nil, strings.NewReader(string(b)), "application/json", out)
}

func (c *apiClient) login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	var auth models.AuthResponse
	err := c.postJSON(ctx, "/api/auth/login", models.LoginRequest{Username: username, Password: password}, &auth)
	if err != nil {
		return nil, err
	}
	return &auth, nil
}

func (c *apiClient) categories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := c.getJSON(ctx, "/api/categories", nil, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// transactions pages through the whole filtered ledger.
func (c *apiClient) transactions(ctx context.Context, query url.Values) ([]models.Transaction, error) {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	q.Set("limit", strconv.Itoa(transactionPageSize))

	all := []models.Transaction{}
	for page := 1; ; page++ {
		q.Set("page", strconv.Itoa(page))
		var p models.TransactionPage
		if err := c.getJSON(ctx, "/api/transactions", q, &p); err != nil {
			return nil, err
		}
		all = append(all, p.Transactions...)
		if page >= p.Pagination.Pages {
			return all, nil
		}
	}
}
