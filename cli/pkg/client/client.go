/*-------------------------------------------------------------------------
 *
 * client.go
 *    HTTP client for the Loanzaar workflow API
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    cli/pkg/client/client.go
 *
 *-------------------------------------------------------------------------
 */

package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Application struct {
	ID              string  `json:"id"`
	BorrowerName    string  `json:"borrower_name"`
	LoanType        string  `json:"loan_type"`
	LoanAmount      *int64  `json:"loan_amount,omitempty"`
	Status          string  `json:"status"`
	ProposedStatus  *string `json:"proposed_status,omitempty"`
	NeedsRevision   bool    `json:"needs_revision"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	AssignedAgentID *string `json:"assigned_agent_id,omitempty"`
	UpdatedAt       string  `json:"updated_at,omitempty"`
}

type Transition struct {
	ID         string  `json:"id"`
	ActorID    string  `json:"actor_id"`
	ActorRole  string  `json:"actor_role"`
	Action     string  `json:"action"`
	FromStatus string  `json:"from_status"`
	ToStatus   string  `json:"to_status"`
	Reason     *string `json:"reason,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

type Remark struct {
	ID         string `json:"id"`
	AuthorID   string `json:"author_id"`
	AuthorRole string `json:"author_role"`
	Text       string `json:"text"`
	CreatedAt  string `json:"created_at"`
}

type PendingProposal struct {
	ProposedStatus string `json:"proposed_status"`
	ProposedBy     string `json:"proposed_by"`
	ProposedAt     string `json:"proposed_at"`
}

type RejectionBanner struct {
	Reason string `json:"reason"`
}

type View struct {
	Application     Application      `json:"application"`
	PendingProposal *PendingProposal `json:"pending_proposal,omitempty"`
	RejectionBanner *RejectionBanner `json:"rejection_banner,omitempty"`
	History         []Transition     `json:"history"`
	Remarks         []Remark         `json:"remarks"`
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) ListPending() ([]Application, error) {
	resp, err := c.makeRequest("GET", "/api/v1/applications/pending", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var apps []Application
	if err := json.NewDecoder(resp.Body).Decode(&apps); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return apps, nil
}

func (c *Client) GetView(appID string) (*View, error) {
	resp, err := c.makeRequest("GET", fmt.Sprintf("/api/v1/applications/%s", appID), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var view View
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &view, nil
}

func (c *Client) Propose(appID, toStatus string) (*Application, error) {
	body, err := json.Marshal(map[string]string{"to_status": toStatus})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.makeRequest("POST", fmt.Sprintf("/api/v1/applications/%s/propose", appID), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return decodeApplication(resp)
}

func (c *Client) Resolve(appID, decision, reason string) (*Application, error) {
	payload := map[string]string{"decision": decision}
	if reason != "" {
		payload["reason"] = reason
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.makeRequest("POST", fmt.Sprintf("/api/v1/applications/%s/resolve", appID), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return decodeApplication(resp)
}

func (c *Client) AddRemark(appID, text string) (*Remark, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.makeRequest("POST", fmt.Sprintf("/api/v1/applications/%s/remarks", appID), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var remark Remark
	if err := json.NewDecoder(resp.Body).Decode(&remark); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &remark, nil
}

func (c *Client) History(appID string) ([]Transition, error) {
	resp, err := c.makeRequest("GET", fmt.Sprintf("/api/v1/applications/%s/history", appID), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var entries []Transition
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return entries, nil
}

func decodeApplication(resp *http.Response) (*Application, error) {
	var app Application
	if err := json.NewDecoder(resp.Body).Decode(&app); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &app, nil
}

func (c *Client) makeRequest(method, path string, body io.Reader) (*http.Response, error) {
	url := c.baseURL + path
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	return resp, nil
}
