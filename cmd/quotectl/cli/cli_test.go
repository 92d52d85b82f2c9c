package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/customtruckbeds/site/internal/quote"
)

const validJSON = `{"firstName":"John","lastName":"Smith","email":"john@example.com","phone":"0400123456","requirements":"Alloy tray"}`

type recordingDispatcher struct {
	mu        sync.Mutex
	endpoints []string
	payloads  []quote.Payload
	receipt   quote.Receipt
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, endpoint string, payload quote.Payload) quote.Receipt {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.endpoints = append(d.endpoints, endpoint)
	d.payloads = append(d.payloads, payload)
	return d.receipt
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return s.info, s.err
}

func run(t *testing.T, opts Options, stdin string, args ...string) (string, error) {
	t.Helper()
	stdout := new(bytes.Buffer)
	opts.Stdin = strings.NewReader(stdin)
	opts.Stdout = stdout
	opts.Stderr = new(bytes.Buffer)
	cmd := NewRootCommand(opts)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestValidateCommandOK(t *testing.T) {
	out, err := run(t, Options{}, validJSON, "validate", "-")
	require.NoError(t, err)
	require.Equal(t, "ok\n", out)
}

func TestValidateCommandPrintsFieldErrors(t *testing.T) {
	out, err := run(t, Options{}, `{"firstName":"John","email":"nope"}`, "validate")
	require.ErrorIs(t, err, ErrInvalid)
	require.Contains(t, out, "email: ")
	require.Contains(t, out, "lastName: Last name is required")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	require.True(t, strings.HasPrefix(lines[0], "email:"))
}

func TestValidateCommandJSON(t *testing.T) {
	out, err := run(t, Options{}, `{"firstName":"John"}`, "validate", "--json")
	require.ErrorIs(t, err, ErrInvalid)

	var summary validateSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	require.False(t, summary.Valid)
	require.Contains(t, summary.Errors, quote.FieldRequirements)
}

func TestValidateCommandRejectsUnknownField(t *testing.T) {
	_, err := run(t, Options{}, `{"favouriteColour":"orange"}`, "validate")
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrInvalid))
}

func TestSendCommandDispatches(t *testing.T) {
	dispatcher := &recordingDispatcher{receipt: quote.Receipt{Outcome: quote.DispatchSucceeded, StatusCode: 200}}
	out, err := run(t, Options{Dispatcher: dispatcher}, validJSON, "send", "--url", "https://hooks.example.com/q", "--json")
	require.NoError(t, err)

	require.Equal(t, []string{"https://hooks.example.com/q"}, dispatcher.endpoints)
	require.Equal(t, "Alloy tray", dispatcher.payloads[0].Requirements)

	var summary sendSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	require.Equal(t, quote.StatusSent, summary.Status)
	require.Equal(t, 200, summary.StatusCode)
	require.NotEmpty(t, summary.ID)
}

func TestSendCommandStopsOnInvalidRequest(t *testing.T) {
	dispatcher := &recordingDispatcher{receipt: quote.Receipt{Outcome: quote.DispatchSucceeded, StatusCode: 200}}
	_, err := run(t, Options{Dispatcher: dispatcher}, `{"firstName":"John"}`, "send")
	require.ErrorIs(t, err, ErrInvalid)
	require.Empty(t, dispatcher.endpoints)
}

func TestSendCommandReportsDispatchFailure(t *testing.T) {
	dispatcher := &recordingDispatcher{receipt: quote.Receipt{Outcome: quote.DispatchFailed, Err: errors.New("connection refused")}}
	_, err := run(t, Options{Dispatcher: dispatcher}, validJSON, "send")
	require.ErrorIs(t, err, quote.ErrDispatch)
}

func TestQueueCommand(t *testing.T) {
	inspector := stubInspector{info: &asynq.QueueInfo{Queue: "default", Size: 4, Pending: 3, Retry: 1}}
	out, err := run(t, Options{Inspector: inspector}, "", "queue", "--json")
	require.NoError(t, err)

	var stats QueueStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	require.Equal(t, QueueStats{Queue: "default", Size: 4, Pending: 3, Retry: 1}, stats)
}

func TestQueueCommandMissingQueueIsEmpty(t *testing.T) {
	out, err := run(t, Options{Inspector: stubInspector{err: asynq.ErrQueueNotFound}}, "", "queue")
	require.NoError(t, err)
	require.Equal(t, "queue=default size=0 pending=0 active=0 scheduled=0 retry=0 archived=0 paused=false\n", out)
}
