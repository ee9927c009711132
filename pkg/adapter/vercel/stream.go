package vercel

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/datalayer/agentkit/pkg/core/events"
)

// Data Stream Protocol part type prefixes.
const (
	partText         = "0" // "delta"
	partData         = "2" // [values]
	partError        = "3" // "message"
	partAnnotation   = "8" // [annotations]
	partToolCall     = "9" // {toolCallId, toolName, args}
	partToolResult   = "a" // {toolCallId, result}
	partStartStep    = "f" // {messageId}
	partFinishStep   = "e" // {finishReason, ...}
	partFinishMsg    = "d" // {finishReason, usage}
	partToolCallArgs = "c" // {toolCallId, argsTextDelta}
)

// streamPart is one TYPE:JSON line of the data stream.
type streamPart struct {
	kind    string
	payload json.RawMessage
}

// readDataStream parses TYPE:JSON lines and hands each part to handle.
func readDataStream(r io.Reader, handle func(streamPart)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		kind, payload, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		handle(streamPart{kind: kind, payload: json.RawMessage(payload)})
	}
	return scanner.Err()
}

// emitter is the subset of the adapter base the translator needs.
type emitter interface {
	EmitStream(ev events.Event)
}

// translator folds data stream parts into unified events.
type translator struct {
	sink emitter
	log  *logrus.Entry

	messageID   string
	started     bool
	buf         strings.Builder
	openCalls   map[string]bool
	finishedRun bool
	runID       string
}

func newTranslator(sink emitter, log *logrus.Entry) *translator {
	return &translator{
		sink:      sink,
		log:       log,
		messageID: uuid.New().String(),
		runID:     uuid.New().String(),
		openCalls: make(map[string]bool),
	}
}

func (t *translator) handlePart(part streamPart) {
	switch part.kind {
	case partStartStep:
		var start struct {
			MessageID string `json:"messageId"`
		}
		if err := json.Unmarshal(part.payload, &start); err == nil && start.MessageID != "" {
			t.messageID = start.MessageID
		}

	case partText:
		var delta string
		if err := json.Unmarshal(part.payload, &delta); err != nil {
			t.log.WithError(err).Warn("dropping malformed text part")
			return
		}
		if !t.started {
			t.started = true
			t.sink.EmitStream(events.NewTextMessageStartEvent(t.messageID, events.WithRole("assistant")))
		}
		t.buf.WriteString(delta)
		t.sink.EmitStream(events.NewTextMessageContentEvent(t.messageID, delta))

	case partToolCall:
		var call struct {
			ToolCallID string          `json:"toolCallId"`
			ToolName   string          `json:"toolName"`
			Args       json.RawMessage `json:"args"`
		}
		if err := json.Unmarshal(part.payload, &call); err != nil {
			t.log.WithError(err).Warn("dropping malformed tool call part")
			return
		}
		t.sink.EmitStream(events.NewToolCallStartEvent(call.ToolCallID, call.ToolName,
			events.WithParentMessageID(t.messageID)))
		if len(call.Args) > 0 {
			t.sink.EmitStream(events.NewToolCallArgsEvent(call.ToolCallID, string(call.Args)))
		}
		t.sink.EmitStream(events.NewToolCallEndEvent(call.ToolCallID))

	case partToolCallArgs:
		var delta struct {
			ToolCallID    string `json:"toolCallId"`
			ArgsTextDelta string `json:"argsTextDelta"`
		}
		if err := json.Unmarshal(part.payload, &delta); err != nil {
			return
		}
		if !t.openCalls[delta.ToolCallID] {
			t.openCalls[delta.ToolCallID] = true
		}
		t.sink.EmitStream(events.NewToolCallArgsEvent(delta.ToolCallID, delta.ArgsTextDelta))

	case partToolResult:
		var result any
		_ = json.Unmarshal(part.payload, &result)
		t.sink.EmitStream(events.NewCustomEvent("tool-result", events.WithValue(result)))

	case partError:
		var msg string
		if err := json.Unmarshal(part.payload, &msg); err != nil {
			msg = string(part.payload)
		}
		t.sink.EmitStream(events.NewRunErrorEvent(msg))

	case partFinishMsg:
		t.closeMessage()
		t.finishedRun = true
		t.sink.EmitStream(events.NewRunFinishedEvent("", t.runID))

	case partFinishStep:
		t.closeMessage()

	case partData, partAnnotation:
		var value any
		_ = json.Unmarshal(part.payload, &value)
		t.sink.EmitStream(events.NewCustomEvent("data-part", events.WithValue(value)))

	default:
		t.log.WithField("part", part.kind).Debug("ignoring data stream part")
	}
}

func (t *translator) closeMessage() {
	if t.started {
		t.started = false
		t.sink.EmitStream(events.NewTextMessageEndEvent(t.messageID))
	}
}

// finish flushes trailing state when the stream ends without a finish part.
func (t *translator) finish() {
	t.closeMessage()
	if !t.finishedRun {
		t.finishedRun = true
		t.sink.EmitStream(events.NewRunFinishedEvent("", t.runID))
	}
}

// text returns the accumulated assistant reply.
func (t *translator) text() string {
	return t.buf.String()
}
