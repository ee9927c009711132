// Package backend is the REST client for the agent runtime's configuration
// and MCP server management surface.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/datalayer/agentkit/internal/httpx"
	"github.com/datalayer/agentkit/pkg/core"
)

// Client talks to one agent runtime.
type Client struct {
	baseURL   string
	authToken string
	client    *http.Client
	log       *logrus.Entry
}

// Option configures a Client.
type Option func(*Client)

// WithAuthToken sets the bearer token sent on every request.
func WithAuthToken(token string) Option {
	return func(c *Client) { c.authToken = token }
}

// WithTimeout bounds each request round trip.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.client = httpx.NewClient(timeout) }
}

// WithLogger sets the client logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.log = logger.WithField("component", "backend")
		}
	}
}

// New creates a runtime client for the given base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, &core.ConfigError{Field: "baseURL", Value: baseURL, Err: fmt.Errorf("base URL cannot be empty")}
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, &core.ConfigError{Field: "baseURL", Value: baseURL, Err: fmt.Errorf("invalid base URL: %w", err)}
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpx.NewClient(30 * time.Second),
		log:     logrus.StandardLogger().WithField("component", "backend"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetConfiguration fetches the frontend configuration.
func (c *Client) GetConfiguration(ctx context.Context) (*Configuration, error) {
	var cfg Configuration
	if err := c.do(ctx, http.MethodGet, "/api/v1/configure", nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetMCPToolsetsStatus reports MCP toolset readiness.
func (c *Client) GetMCPToolsetsStatus(ctx context.Context) (*ToolsetsStatus, error) {
	var status ToolsetsStatus
	if err := c.do(ctx, http.MethodGet, "/api/v1/configure/mcp-toolsets-status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ListAvailableServers lists the MCP servers the runtime can enable.
func (c *Client) ListAvailableServers(ctx context.Context) ([]MCPServer, error) {
	var servers []MCPServer
	if err := c.do(ctx, http.MethodGet, "/api/v1/mcp/servers/available", nil, &servers); err != nil {
		return nil, err
	}
	return servers, nil
}

// EnableCatalogServer starts a catalog MCP server for the current session.
func (c *Client) EnableCatalogServer(ctx context.Context, name string) (*MCPServer, error) {
	if name == "" {
		return nil, fmt.Errorf("server name cannot be empty")
	}
	var server MCPServer
	path := "/api/v1/mcp/servers/catalog/" + url.PathEscape(name) + "/enable"
	if err := c.do(ctx, http.MethodPost, path, nil, &server); err != nil {
		return nil, err
	}
	return &server, nil
}

// DisableCatalogServer stops a catalog MCP server.
func (c *Client) DisableCatalogServer(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("server name cannot be empty")
	}
	path := "/api/v1/mcp/servers/catalog/" + url.PathEscape(name) + "/disable"
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// UpdateAgentMCPServers replaces an agent's selected MCP servers at runtime.
func (c *Client) UpdateAgentMCPServers(ctx context.Context, agentID string, servers []ServerSelection) (*AgentInfo, error) {
	if agentID == "" {
		return nil, fmt.Errorf("agent id cannot be empty")
	}
	body := map[string]any{"selected_mcp_servers": servers}
	var info AgentInfo
	path := "/api/v1/agents/" + url.PathEscape(agentID) + "/mcp-servers"
	if err := c.do(ctx, http.MethodPatch, path, body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &core.TransportError{Protocol: "backend", Endpoint: c.baseURL + path, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	c.log.WithFields(logrus.Fields{"method": method, "path": path}).Debug("calling runtime")
	resp, err := c.client.Do(req)
	if err != nil {
		return &core.TransportError{Protocol: "backend", Endpoint: c.baseURL + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &core.ProtocolError{
			Protocol:  "backend",
			Operation: method + " " + path,
			Code:      resp.StatusCode,
			Err:       fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(detail))),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &core.ProtocolError{
			Protocol:  "backend",
			Operation: method + " " + path,
			Err:       fmt.Errorf("failed to decode response: %w", err),
		}
	}
	return nil
}
