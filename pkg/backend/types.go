package backend

// Configuration is the frontend configuration served by the runtime:
// available models, builtin tools, and active MCP servers.
type Configuration struct {
	Models     []Model     `json:"models,omitempty"`
	Tools      []ToolInfo  `json:"tools,omitempty"`
	MCPServers []MCPServer `json:"mcpServers,omitempty"`
}

// Model is one selectable language model.
type Model struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// ToolInfo describes a builtin tool exposed by the runtime.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// MCPServer describes one MCP server known to the runtime.
type MCPServer struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Transport   string `json:"transport,omitempty"`
	URL         string `json:"url,omitempty"`
	Enabled     bool   `json:"enabled,omitempty"`
}

// ToolsetsStatus reports MCP toolset readiness per server.
type ToolsetsStatus struct {
	Ready   bool              `json:"ready"`
	Servers map[string]string `json:"servers,omitempty"`
}

// ServerSelection names one MCP server an agent should use. Origin
// distinguishes config-file servers from catalog servers.
type ServerSelection struct {
	ID     string `json:"id"`
	Origin string `json:"origin,omitempty"`
}

// AgentInfo is the runtime's view of an agent after an update.
type AgentInfo struct {
	ID         string   `json:"id"`
	Name       string   `json:"name,omitempty"`
	MCPServers []string `json:"mcpServers,omitempty"`
}
