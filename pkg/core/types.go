package core

// AgentCard describes an agent's identity and capabilities. A2A serves it at
// /.well-known/agent.json; other protocols may synthesize one or return nil.
type AgentCard struct {
	Name            string         `json:"name"`
	Description     string         `json:"description,omitempty"`
	URL             string         `json:"url"`
	Version         string         `json:"version,omitempty"`
	ProtocolVersion string         `json:"protocolVersion,omitempty"`
	Capabilities    map[string]any `json:"capabilities,omitempty"`
	Skills          []AgentSkill   `json:"skills,omitempty"`
}

// AgentSkill is a single advertised capability on an agent card.
type AgentSkill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Feature names answered by Adapter.SupportsFeature.
const (
	FeatureStreaming   = "streaming"
	FeatureToolCalls   = "tool-calls"
	FeatureStateSync   = "state-sync"
	FeatureAgentCard   = "agent-card"
	FeatureThreads     = "threads"
	FeatureAttachments = "attachments"
)
