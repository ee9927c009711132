package events

import (
	"encoding/json"
	"fmt"
	"sync"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/sirupsen/logrus"

	"github.com/datalayer/agentkit/pkg/messages"
)

// StreamState accumulates a stream of events into the client-side mirror of a
// run: the conversation so far and the agent state document. Snapshots
// replace, deltas patch (strict RFC 6902 via json-patch). A delta that fails
// to apply is logged and skipped; the stream keeps flowing.
type StreamState struct {
	mu sync.Mutex

	log *logrus.Entry

	threadID string
	runID    string

	msgs    []messages.Message
	msgIdx  map[string]int    // message ID -> index in msgs
	callMsg map[string]string // tool call ID -> owning message ID

	state json.RawMessage
}

// NewStreamState creates an empty stream state mirror.
func NewStreamState(logger *logrus.Logger) *StreamState {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &StreamState{
		log:     logger.WithField("component", "stream-state"),
		msgIdx:  make(map[string]int),
		callMsg: make(map[string]string),
	}
}

// Apply folds a single event into the mirror. Unknown or irrelevant event
// types are ignored.
func (s *StreamState) Apply(event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev := event.(type) {
	case *RunStartedEvent:
		s.threadID = ev.ThreadID
		s.runID = ev.RunID

	case *TextMessageStartEvent:
		role := messages.RoleAssistant
		if ev.Role != nil {
			role = messages.Role(*ev.Role)
		}
		s.upsertMessage(messages.Message{ID: ev.MessageID, Role: role})

	case *TextMessageContentEvent:
		idx, ok := s.msgIdx[ev.MessageID]
		if !ok {
			// Content for a message that never started; mirror it anyway.
			s.upsertMessage(messages.Message{ID: ev.MessageID, Role: messages.RoleAssistant})
			idx = s.msgIdx[ev.MessageID]
		}
		s.msgs[idx].Content += ev.Delta

	case *ToolCallStartEvent:
		msgID := ev.ToolCallID
		if ev.ParentMessageID != nil {
			msgID = *ev.ParentMessageID
		}
		idx, ok := s.msgIdx[msgID]
		if !ok {
			s.upsertMessage(messages.Message{ID: msgID, Role: messages.RoleAssistant})
			idx = s.msgIdx[msgID]
		}
		s.msgs[idx].ToolCalls = append(s.msgs[idx].ToolCalls, messages.ToolCall{
			ID:       ev.ToolCallID,
			Type:     "function",
			Function: messages.Function{Name: ev.ToolCallName},
		})
		s.callMsg[ev.ToolCallID] = msgID

	case *ToolCallArgsEvent:
		call := s.findToolCall(ev.ToolCallID)
		if call == nil {
			s.log.WithField("toolCallId", ev.ToolCallID).Warn("args for unknown tool call")
			return nil
		}
		call.Function.Arguments += ev.Delta

	case *MessagesSnapshotEvent:
		s.msgs = append([]messages.Message(nil), ev.Messages...)
		s.msgIdx = make(map[string]int, len(s.msgs))
		for i, m := range s.msgs {
			s.msgIdx[m.ID] = i
		}

	case *StateSnapshotEvent:
		doc, err := json.Marshal(ev.Snapshot)
		if err != nil {
			return fmt.Errorf("failed to encode state snapshot: %w", err)
		}
		s.state = doc

	case *StateDeltaEvent:
		if err := s.applyDelta(ev.Delta); err != nil {
			s.log.WithError(err).Warn("state delta could not be applied")
		}
	}

	return nil
}

// applyDelta applies an RFC 6902 patch to the state document.
func (s *StreamState) applyDelta(ops []JSONPatchOperation) error {
	raw, err := json.Marshal(ops)
	if err != nil {
		return fmt.Errorf("failed to encode patch: %w", err)
	}
	patch, err := jsonpatch.DecodePatch(raw)
	if err != nil {
		return fmt.Errorf("failed to decode patch: %w", err)
	}
	doc := s.state
	if doc == nil {
		doc = json.RawMessage("{}")
	}
	patched, err := patch.Apply(doc)
	if err != nil {
		return fmt.Errorf("failed to apply patch: %w", err)
	}
	s.state = patched
	return nil
}

func (s *StreamState) upsertMessage(m messages.Message) {
	if idx, ok := s.msgIdx[m.ID]; ok {
		s.msgs[idx] = m
		return
	}
	s.msgIdx[m.ID] = len(s.msgs)
	s.msgs = append(s.msgs, m)
}

func (s *StreamState) findToolCall(toolCallID string) *messages.ToolCall {
	msgID, ok := s.callMsg[toolCallID]
	if !ok {
		return nil
	}
	idx, ok := s.msgIdx[msgID]
	if !ok {
		return nil
	}
	calls := s.msgs[idx].ToolCalls
	for i := range calls {
		if calls[i].ID == toolCallID {
			return &calls[i]
		}
	}
	return nil
}

// Messages returns a copy of the mirrored conversation.
func (s *StreamState) Messages() []messages.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]messages.Message, len(s.msgs))
	copy(out, s.msgs)
	return out
}

// State returns the current state document, or nil if none was received.
func (s *StreamState) State() json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return nil
	}
	out := make(json.RawMessage, len(s.state))
	copy(out, s.state)
	return out
}

// ThreadID returns the thread ID from the last RUN_STARTED event.
func (s *StreamState) ThreadID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.threadID
}

// RunID returns the run ID from the last RUN_STARTED event.
func (s *StreamState) RunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runID
}
