// Package evaluation records consultation runs and summarizes their
// latency and outcome statistics.
package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fitforge/fitkit/fitkit"
	"github.com/google/uuid"
)

// RunRecord captures one agent interaction.
type RunRecord struct {
	RunID      string                 `json:"run_id"`
	SessionID  string                 `json:"session_id"`
	AgentName  string                 `json:"agent_name"`
	Input      string                 `json:"input"`
	Output     string                 `json:"output,omitempty"`
	Error      string                 `json:"error,omitempty"`
	StopReason string                 `json:"stop_reason,omitempty"`
	Handoffs   int                    `json:"handoffs,omitempty"`
	LatencyMs  float64                `json:"latency_ms"`
	Timestamp  time.Time              `json:"timestamp"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// Recorder wraps an agent and records every interaction.
type Recorder struct {
	agent     fitkit.Agent
	sessionID string

	mu      sync.Mutex
	records []RunRecord
}

var _ fitkit.Agent = (*Recorder)(nil)

// NewRecorder wraps agent; sessionID tags every record (empty generates
// a fresh ID).
func NewRecorder(agent fitkit.Agent, sessionID string) *Recorder {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return &Recorder{
		agent:     agent,
		sessionID: sessionID,
	}
}

// Name returns the wrapped agent's name.
func (r *Recorder) Name() string {
	return r.agent.Name()
}

// Capabilities returns the wrapped agent's capabilities.
func (r *Recorder) Capabilities() []string {
	return r.agent.Capabilities()
}

// Introspect returns the wrapped agent's introspection result.
func (r *Recorder) Introspect() *fitkit.IntrospectionResult {
	return r.agent.Introspect()
}

// Process runs the wrapped agent and records the interaction.
func (r *Recorder) Process(ctx context.Context, message *fitkit.Message) (*fitkit.Message, error) {
	start := time.Now()
	response, err := r.agent.Process(ctx, message)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	record := RunRecord{
		RunID:     uuid.NewString(),
		SessionID: r.sessionID,
		AgentName: r.agent.Name(),
		Input:     message.Content,
		LatencyMs: latencyMs,
		Timestamp: start,
	}
	if err != nil {
		record.Error = err.Error()
	} else {
		record.Output = response.Content
		if reason, ok := response.Metadata["stop_reason"].(string); ok {
			record.StopReason = reason
		}
		if handoffs, ok := response.Metadata["handoffs"].(int); ok {
			record.Handoffs = handoffs
		}
	}

	r.mu.Lock()
	r.records = append(r.records, record)
	r.mu.Unlock()

	return response, err
}

// Records returns a copy of all recorded runs.
func (r *Recorder) Records() []RunRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RunRecord, len(r.records))
	copy(out, r.records)
	return out
}

// Summarize computes statistics over the recorded runs.
func (r *Recorder) Summarize() Summary {
	return Summarize(r.Records())
}

// SaveJSONL writes the records to path, one JSON object per line.
func (r *Recorder) SaveJSONL(path string) error {
	records := r.Records()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, record := range records {
		if err := enc.Encode(record); err != nil {
			return fmt.Errorf("failed to encode record %s: %w", record.RunID, err)
		}
	}
	return nil
}

// LoadJSONL reads records written by SaveJSONL.
func LoadJSONL(path string) ([]RunRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var records []RunRecord
	dec := json.NewDecoder(f)
	for dec.More() {
		var record RunRecord
		if err := dec.Decode(&record); err != nil {
			return nil, fmt.Errorf("failed to decode record: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}
