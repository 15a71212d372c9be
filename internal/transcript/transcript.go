// Package transcript reconstructs a display-ready message list from a
// session's flat event records, pairing each tool_call with its tool_result
// and attaching both to the assistant message that produced the call.
package transcript

import (
	"encoding/json"

	"github.com/perchlabs/perch/internal/domain/session"
)

// result is a tool_result record's payload, indexed by tool call id.
type result struct {
	content string
	isError bool
}

// Reconstruct converts raw session records into display messages. Records
// tagged tool_call or tool_result never appear standalone in the output:
// each tool_call becomes a ToolCall attached to the next assistant message,
// paired with its result when one exists. A call with no result stays
// pending; the orchestration layer may not have emitted the result yet.
func Reconstruct(raw []session.RawMessage) []session.Message {
	// First pass: index results by correlation id.
	results := make(map[string]result)
	for _, r := range raw {
		if r.Event == session.EventToolResult && r.ToolCallID != "" {
			results[r.ToolCallID] = result{content: r.Content, isError: r.IsError}
		}
	}

	// Second pass: walk in order, accumulating calls until an assistant
	// message claims them.
	var (
		messages []session.Message
		pending  []session.ToolCall
	)
	for _, r := range raw {
		switch r.Event {
		case session.EventToolCall:
			pending = append(pending, buildToolCall(r, results))
			continue
		case session.EventToolResult:
			continue
		}

		msg := session.Message{
			ID:           r.ID,
			Role:         r.Role,
			Content:      r.Content,
			Timestamp:    r.Timestamp,
			InputTokens:  r.InputTokens,
			OutputTokens: r.OutputTokens,
		}
		if r.Role == session.RoleAssistant && len(pending) > 0 {
			msg.ToolCalls = pending
			pending = nil
		}
		messages = append(messages, msg)
	}

	// Calls with no later assistant message attach to the last assistant
	// in the output, or to the very last message when none exists.
	if len(pending) > 0 && len(messages) > 0 {
		target := len(messages) - 1
		for i := len(messages) - 1; i >= 0; i-- {
			if messages[i].Role == session.RoleAssistant {
				target = i
				break
			}
		}
		messages[target].ToolCalls = append(messages[target].ToolCalls, pending...)
	}

	return messages
}

// buildToolCall parses one tool_call record and pairs it with its result.
func buildToolCall(r session.RawMessage, results map[string]result) session.ToolCall {
	call := session.ToolCall{
		ID:        r.ToolCallID,
		Name:      "unknown",
		Arguments: json.RawMessage(`{}`),
		Status:    session.ToolCallPending,
	}

	var payload struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal([]byte(r.Content), &payload); err == nil {
		if payload.Name != "" {
			call.Name = payload.Name
		}
		if len(payload.Arguments) > 0 {
			call.Arguments = payload.Arguments
		}
	}

	res, ok := results[r.ToolCallID]
	if !ok {
		return call
	}

	if res.isError {
		call.Status = session.ToolCallError
	} else {
		call.Status = session.ToolCallSuccess
	}
	call.Result = parseResult(res.content)
	return call
}

// parseResult keeps the result as JSON when it parses, otherwise wraps the
// raw string so the UI always receives valid JSON.
func parseResult(content string) json.RawMessage {
	if json.Valid([]byte(content)) {
		return json.RawMessage(content)
	}
	quoted, err := json.Marshal(content)
	if err != nil {
		return json.RawMessage(`""`)
	}
	return quoted
}
