// Package tui is the terminal dashboard. It polls the local server for
// the session list and offers close/delete on selected sessions.
package tui

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/emiliopalmerini/agentboard/internal/domain"
)

// Client is a thin HTTP client for the local API.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *Client) GetSessions() ([]*domain.Session, error) {
	resp, err := c.http.Get(c.baseURL + "/api/sessions")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %s", resp.Status)
	}

	var sessions []*domain.Session
	if err := json.NewDecoder(resp.Body).Decode(&sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (c *Client) CloseSession(id string) error {
	return c.post("/api/sessions/" + id + "/close")
}

func (c *Client) DeleteSession(id string) error {
	req, err := http.NewRequest(http.MethodDelete, c.baseURL+"/api/sessions/"+id, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}

func (c *Client) post(path string) error {
	resp, err := c.http.Post(c.baseURL+path, "application/json", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}
