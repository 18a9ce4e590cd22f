package llm

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/fitforge/fitkit/fitkit"
)

func scriptOf(contents ...string) []*fitkit.Message {
	responses := make([]*fitkit.Message, 0, len(contents))
	for _, c := range contents {
		responses = append(responses, fitkit.NewMessage("assistant", c))
	}
	return responses
}

// TestScriptedLLM_ReplaysInOrder verifies in-order replay independent of
// the history passed in.
func TestScriptedLLM_ReplaysInOrder(t *testing.T) {
	model, err := NewScriptedLLM(scriptOf("R0", "R1", "R2"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	histories := [][]*fitkit.Message{
		{fitkit.NewMessage("user", "first question")},
		nil,
		{fitkit.NewMessage("system", "sys"), fitkit.NewMessage("user", "something else entirely")},
	}
	want := []string{"R0", "R1", "R2"}

	for i, history := range histories {
		resp, err := model.Complete(context.Background(), history)
		if err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
		if resp.Content != want[i] {
			t.Errorf("call %d: expected %q, got %q", i, want[i], resp.Content)
		}
		if resp.Role != "assistant" {
			t.Errorf("call %d: expected role assistant, got %q", i, resp.Role)
		}
	}
}

// TestScriptedLLM_EmptyScript verifies construction fails for an empty
// response list.
func TestScriptedLLM_EmptyScript(t *testing.T) {
	_, err := NewScriptedLLM(nil)
	if !errors.Is(err, ErrEmptyScript) {
		t.Fatalf("expected ErrEmptyScript, got %v", err)
	}

	_, err = NewScriptedLLM([]*fitkit.Message{})
	if !errors.Is(err, ErrEmptyScript) {
		t.Fatalf("expected ErrEmptyScript for empty slice, got %v", err)
	}
}

func TestScriptedLLM_InvalidResponse(t *testing.T) {
	_, err := NewScriptedLLM([]*fitkit.Message{fitkit.NewMessage("oracle", "nope")})
	if err == nil {
		t.Fatal("expected error for invalid response role")
	}
	if !strings.Contains(err.Error(), "invalid") {
		t.Errorf("expected validation error, got %v", err)
	}
}

// TestScriptedLLM_Exhaustion verifies call N+1 fails with
// ErrScriptExhausted rather than silently repeating an earlier response.
func TestScriptedLLM_Exhaustion(t *testing.T) {
	model, err := NewScriptedLLM(scriptOf("R0", "R1", "R2"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := model.Complete(ctx, nil); err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
	}

	_, err = model.Complete(ctx, nil)
	if !errors.Is(err, ErrScriptExhausted) {
		t.Fatalf("expected ErrScriptExhausted, got %v", err)
	}
	if model.Cursor() != 3 {
		t.Errorf("cursor moved past script length: %d", model.Cursor())
	}
}

// TestScriptedLLM_ExhaustedFallback verifies the opt-in graceful
// degradation policy.
func TestScriptedLLM_ExhaustedFallback(t *testing.T) {
	model, err := NewScriptedLLM(scriptOf("only"), WithExhaustedFallback("no more responses"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	if _, err := model.Complete(ctx, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 2; i++ {
		resp, err := model.Complete(ctx, nil)
		if err != nil {
			t.Fatalf("fallback call %d: unexpected error: %v", i, err)
		}
		if resp.Content != "no more responses" {
			t.Errorf("fallback call %d: expected sentinel, got %q", i, resp.Content)
		}
		if exhausted, _ := resp.Metadata["exhausted"].(bool); !exhausted {
			t.Errorf("fallback call %d: expected exhausted metadata", i)
		}
	}
	if model.Cursor() != 1 {
		t.Errorf("expected cursor pinned at 1, got %d", model.Cursor())
	}
}

// TestScriptedLLM_CursorTracking verifies the cursor equals the number of
// successful calls.
func TestScriptedLLM_CursorTracking(t *testing.T) {
	model, err := NewScriptedLLM(scriptOf("a", "b", "c", "d"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if model.Cursor() != 0 {
		t.Errorf("fresh instance cursor = %d, expected 0", model.Cursor())
	}
	if model.Remaining() != 4 {
		t.Errorf("fresh instance remaining = %d, expected 4", model.Remaining())
	}

	for k := 1; k <= 4; k++ {
		if _, err := model.Complete(context.Background(), nil); err != nil {
			t.Fatalf("call %d: unexpected error: %v", k, err)
		}
		if model.Cursor() != k {
			t.Errorf("after %d calls cursor = %d", k, model.Cursor())
		}
	}
}

// TestScriptedLLM_IndependentInstances verifies interleaved instances keep
// separate cursors: A=[X,Y], B=[Z] interleaved yields X, Z, Y.
func TestScriptedLLM_IndependentInstances(t *testing.T) {
	a, err := NewScriptedLLM(scriptOf("X", "Y"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := NewScriptedLLM(scriptOf("Z"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	order := []struct {
		model *ScriptedLLM
		want  string
	}{
		{a, "X"},
		{b, "Z"},
		{a, "Y"},
	}
	for i, step := range order {
		resp, err := step.model.Complete(ctx, nil)
		if err != nil {
			t.Fatalf("step %d: unexpected error: %v", i, err)
		}
		if resp.Content != step.want {
			t.Errorf("step %d: expected %q, got %q", i, step.want, resp.Content)
		}
	}
}

// TestScriptedLLM_BindToolsNeutral verifies tool declaration never changes
// the sequence or order of subsequent outputs.
func TestScriptedLLM_BindToolsNeutral(t *testing.T) {
	model, err := NewScriptedLLM(scriptOf("first", "second"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	resp, err := model.Complete(ctx, nil)
	if err != nil || resp.Content != "first" {
		t.Fatalf("expected first, got %q (err %v)", resp.Content, err)
	}

	bound := model.BindTools([]fitkit.ToolSpec{
		{Name: "web_search", Description: "search the web"},
		{Name: "add", Description: "add two numbers"},
	})

	resp, err = bound.Complete(ctx, nil)
	if err != nil || resp.Content != "second" {
		t.Fatalf("expected second after binding, got %q (err %v)", resp.Content, err)
	}

	names := model.BoundTools()
	if len(names) != 2 || names[0] != "web_search" || names[1] != "add" {
		t.Errorf("unexpected bound tool names: %v", names)
	}
}

// TestScriptedLLM_ToolCallReplay verifies scripted tool call requests come
// through intact.
func TestScriptedLLM_ToolCallReplay(t *testing.T) {
	call := fitkit.ToolCall{
		ID:   "call_search_001",
		Name: "web_search",
		Args: map[string]interface{}{"query": "FAANG headcount 2024"},
	}
	model, err := NewScriptedLLM([]*fitkit.Message{
		fitkit.NewToolCallMessage("I'll search for that.", call),
		fitkit.NewMessage("assistant", "Found it."),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := model.Complete(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.HasToolCalls() {
		t.Fatal("expected tool calls on first response")
	}
	if resp.ToolCalls[0].ID != call.ID || resp.ToolCalls[0].Name != call.Name {
		t.Errorf("tool call altered in replay: %+v", resp.ToolCalls[0])
	}
}

// TestScriptedLLM_Stream verifies streaming consumes exactly one response.
func TestScriptedLLM_Stream(t *testing.T) {
	model, err := NewScriptedLLM(scriptOf("streamed", "next"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stream, err := model.Stream(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got string
	for chunk := range stream {
		got += chunk.Content
	}
	if got != "streamed" {
		t.Errorf("expected streamed content, got %q", got)
	}
	if model.Cursor() != 1 {
		t.Errorf("stream should consume one response, cursor = %d", model.Cursor())
	}
}

// TestScriptedLLM_ConcurrentConsumption verifies advance-and-read is a
// single critical section: concurrent callers each consume exactly one
// distinct response.
func TestScriptedLLM_ConcurrentConsumption(t *testing.T) {
	const n = 32
	contents := make([]string, n)
	for i := range contents {
		contents[i] = string(rune('a' + i%26))
	}
	model, err := NewScriptedLLM(scriptOf(contents...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wg sync.WaitGroup
	indices := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			resp, err := model.Complete(context.Background(), nil)
			if err != nil {
				t.Errorf("concurrent call failed: %v", err)
				return
			}
			indices[slot] = resp.Metadata["script_index"].(int)
		}(i)
	}
	wg.Wait()

	if model.Cursor() != n {
		t.Fatalf("expected cursor %d, got %d", n, model.Cursor())
	}
	sort.Ints(indices)
	for i, idx := range indices {
		if idx != i {
			t.Fatalf("script index %d consumed %d times", idx, countOf(indices, idx))
		}
	}
}

func countOf(xs []int, v int) int {
	n := 0
	for _, x := range xs {
		if x == v {
			n++
		}
	}
	return n
}

// TestScriptedLLM_ReturnedMessageIsolation verifies replies are deep
// copies of the script: the replay metadata written by Complete stays out
// of the stored record, and caller mutations of the returned metadata or
// tool call args never reach it.
func TestScriptedLLM_ReturnedMessageIsolation(t *testing.T) {
	scripted := fitkit.NewToolCallMessage("Checking.", fitkit.ToolCall{
		ID:   "call_1",
		Name: "web_search",
		Args: map[string]interface{}{"query": "original"},
	})
	model, err := NewScriptedLLM([]*fitkit.Message{scripted})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := model.Complete(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := scripted.Metadata["model"]; ok {
		t.Error("Complete wrote replay metadata into the stored script")
	}
	if _, ok := scripted.Metadata["script_index"]; ok {
		t.Error("Complete wrote script_index into the stored script")
	}

	resp.Metadata["poison"] = true
	resp.ToolCalls[0].Name = "rm_rf"
	resp.ToolCalls[0].Args["query"] = "mutated"

	if _, ok := scripted.Metadata["poison"]; ok {
		t.Error("caller metadata mutation reached the stored script")
	}
	if scripted.ToolCalls[0].Name != "web_search" {
		t.Errorf("caller tool call mutation reached the stored script: %q", scripted.ToolCalls[0].Name)
	}
	if scripted.ToolCalls[0].Args["query"] != "original" {
		t.Errorf("caller args mutation reached the stored script: %v", scripted.ToolCalls[0].Args["query"])
	}
}

// TestScriptedLLM_FallbackIsolation verifies each fallback reply is an
// independent copy of the sentinel.
func TestScriptedLLM_FallbackIsolation(t *testing.T) {
	model, err := NewScriptedLLM(scriptOf("only"), WithExhaustedFallback("no more responses"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	if _, err := model.Complete(ctx, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := model.Complete(ctx, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first.Metadata["poison"] = true
	first.Content = "mutated"

	second, err := model.Complete(ctx, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Content != "no more responses" {
		t.Errorf("fallback content corrupted by earlier caller: %q", second.Content)
	}
	if _, ok := second.Metadata["poison"]; ok {
		t.Error("fallback metadata shared between calls")
	}
}

// TestScriptedLLM_CancelledContext verifies context errors surface before
// the cursor moves.
func TestScriptedLLM_CancelledContext(t *testing.T) {
	model, err := NewScriptedLLM(scriptOf("never"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := model.Complete(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if model.Cursor() != 0 {
		t.Errorf("cursor advanced on cancelled call: %d", model.Cursor())
	}
}
