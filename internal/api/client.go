// Package api is the HTTP client for the CRM backend. Every call except
// Login sends a bearer token and every response arrives in a JSON
// envelope whose status field (not the HTTP code alone) decides
// success:
//
//	{"status":"SUCCESS","data":...}
//	{"status":"FAILED","message":"..."}
//
// A FAILED envelope surfaces as *RemoteError carrying the server's
// message; transport and decode problems are returned as wrapped plain
// errors. UserMessage maps either class to something fit for a toast.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"crmdeck/internal/model"
)

const (
	statusSuccess = "SUCCESS"
	statusFailed  = "FAILED"
)

// RemoteError is an application-level failure: the server responded,
// but refused the operation.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string { return e.Message }

// UserMessage renders any api error for display. Remote errors carry
// the server's own message; everything else gets a generic fallback so
// transport details never leak into the UI.
func UserMessage(err error) string {
	var re *RemoteError
	if errors.As(err, &re) && strings.TrimSpace(re.Message) != "" {
		return re.Message
	}
	return "Something went wrong. Please try again."
}

// TokenSource supplies the current bearer token per call. The client
// never mints or refreshes tokens itself.
type TokenSource func() string

type Client struct {
	baseURL string
	http    *http.Client
	token   TokenSource
}

func NewClient(baseURL string, token TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		token:   token,
	}
}

// BaseURL returns the backend base URL the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// WithHTTPClient overrides the underlying http.Client (tests, custom
// transports).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// post sends a JSON body and returns the envelope's data payload.
func (c *Client) post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", path, err)
	}
	if env.Status != statusSuccess {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("request to %s failed", path)
		}
		return nil, &RemoteError{Message: msg}
	}
	return env.Data, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token == nil {
		return
	}
	if t := c.token(); t != "" {
		req.Header.Set("Authorization", "Bearer "+t)
	}
}

// listBody is the request shape all list endpoints accept. The server
// ignores both fields (filtering is client-side); the shape is part of
// the wire contract regardless.
type listBody struct {
	Page         int    `json:"page"`
	SearchString string `json:"searchString"`
}

// LoginResult is the raw (un-enveloped) login payload.
type LoginResult struct {
	Token   string            `json:"token"`
	Details model.SessionUser `json:"details"`
}

// Login authenticates with email/password. Unlike every other call it
// is unauthenticated and judged by HTTP status plus the presence of a
// token.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return LoginResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return LoginResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return LoginResult{}, fmt.Errorf("call /login: %w", err)
	}
	defer resp.Body.Close()

	var out struct {
		LoginResult
		Message string `json:"message,omitempty"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return LoginResult{}, fmt.Errorf("decode /login response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || out.Token == "" {
		msg := out.Message
		if msg == "" {
			msg = "login failed"
		}
		return LoginResult{}, &RemoteError{Message: msg}
	}
	return out.LoginResult, nil
}

// DashboardStats fetches the stat-card totals and the monthly
// approved/rejected series.
func (c *Client) DashboardStats(ctx context.Context) (model.DashboardStats, error) {
	data, err := c.post(ctx, "/dashboard-stats", listBody{Page: 1})
	if err != nil {
		return model.DashboardStats{}, err
	}
	var stats model.DashboardStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return model.DashboardStats{}, fmt.Errorf("decode dashboard stats: %w", err)
	}
	return stats, nil
}

// ToggleUserStatus flips a user between enable and disable.
func (c *Client) ToggleUserStatus(ctx context.Context, id string, status model.UserStatus) error {
	_, err := c.post(ctx, "/toggle-status", map[string]any{"id": id, "status": status})
	return err
}

// AssignableUsers lists the technicians a lead can be assigned to.
func (c *Client) AssignableUsers(ctx context.Context) ([]model.Technician, error) {
	data, err := c.post(ctx, "/get-user-assign-list", listBody{Page: 1})
	if err != nil {
		return nil, err
	}
	var techs []model.Technician
	if err := json.Unmarshal(data, &techs); err != nil {
		return nil, fmt.Errorf("decode technician list: %w", err)
	}
	return techs, nil
}

// AssignLead hands a lead to a technician.
func (c *Client) AssignLead(ctx context.Context, leadID, technicianID string) error {
	_, err := c.post(ctx, "/lead-assign", map[string]string{
		"leadId":       leadID,
		"technicianId": technicianID,
	})
	return err
}

// UploadQuotationFile attaches a quotation document to a follow-up and
// returns the server's file reference.
func (c *Client) UploadQuotationFile(ctx context.Context, followUpID, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("followUpId", followUpID); err != nil {
		return "", err
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(fw, r); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload-quotation", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call /upload-quotation: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if env.Status != statusSuccess {
		return "", &RemoteError{Message: env.Message}
	}
	var out struct {
		FileReference string `json:"fileReference"`
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return "", fmt.Errorf("decode upload result: %w", err)
	}
	return out.FileReference, nil
}
