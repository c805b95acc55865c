package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/haasonsaas/agentrtcore/internal/observability"
)

type fakeTransport struct {
	requests  chan *JSONRPCRequest
	events    chan *JSONRPCNotification
	responses chan *JSONRPCResponse
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		requests:  make(chan *JSONRPCRequest, 1),
		events:    make(chan *JSONRPCNotification, 1),
		responses: make(chan *JSONRPCResponse, 1),
	}
}

func (f *fakeTransport) Connect(ctx context.Context) error { return nil }

func (f *fakeTransport) Close() error { return nil }

func (f *fakeTransport) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	return nil, nil
}

func (f *fakeTransport) Notify(ctx context.Context, method string, params any) error { return nil }

func (f *fakeTransport) Events() <-chan *JSONRPCNotification { return f.events }

func (f *fakeTransport) Requests() <-chan *JSONRPCRequest { return f.requests }

func (f *fakeTransport) Respond(ctx context.Context, id any, result any, rpcErr *JSONRPCError) error {
	resp := &JSONRPCResponse{JSONRPC: "2.0", ID: id, Error: rpcErr}
	if result != nil {
		data, err := json.Marshal(result)
		if err != nil {
			return err
		}
		resp.Result = data
	}
	f.responses <- resp
	return nil
}

func (f *fakeTransport) Connected() bool { return true }

func newSamplingTestClient(transport *fakeTransport) *Client {
	return &Client{
		config:    &ServerConfig{ID: "server"},
		transport: transport,
		logger:    observability.NewLogger(observability.LogConfig{}),
	}
}

func waitForResponse(t *testing.T, transport *fakeTransport) *JSONRPCResponse {
	t.Helper()
	select {
	case resp := <-transport.responses:
		return resp
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for sampling response")
		return nil
	}
}

func TestClientHandleSamplingResponds(t *testing.T) {
	transport := newFakeTransport()
	client := newSamplingTestClient(transport)

	handler := func(ctx context.Context, req *SamplingRequest) (*SamplingResponse, error) {
		if len(req.Messages) != 1 {
			t.Fatalf("expected 1 message, got %d", len(req.Messages))
		}
		return &SamplingResponse{
			Role:    "assistant",
			Content: MessageContent{Type: "text", Text: "ok"},
			Model:   "test-model",
		}, nil
	}
	client.HandleSampling(handler)

	params := json.RawMessage(`{"messages":[{"role":"user","content":{"type":"text","text":"hello"}}],"maxTokens":5}`)
	transport.requests <- &JSONRPCRequest{JSONRPC: "2.0", ID: 1, Method: "sampling/createMessage", Params: params}

	resp := waitForResponse(t, transport)
	if resp.Error != nil {
		t.Fatalf("unexpected error response: %+v", resp.Error)
	}
	var payload SamplingResponse
	if err := json.Unmarshal(resp.Result, &payload); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if payload.Content.Text != "ok" {
		t.Fatalf("expected response text %q, got %q", "ok", payload.Content.Text)
	}
}

func TestClientHandleSamplingIgnoresOtherMethods(t *testing.T) {
	transport := newFakeTransport()
	client := newSamplingTestClient(transport)

	client.HandleSampling(func(ctx context.Context, req *SamplingRequest) (*SamplingResponse, error) {
		t.Fatal("handler should not be invoked for a non-sampling method")
		return nil, nil
	})

	transport.requests <- &JSONRPCRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"}

	select {
	case <-transport.responses:
		t.Fatal("expected no response for a non-sampling request")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestClientHandleSamplingInvalidParamsRespondsWithError(t *testing.T) {
	transport := newFakeTransport()
	client := newSamplingTestClient(transport)

	client.HandleSampling(func(ctx context.Context, req *SamplingRequest) (*SamplingResponse, error) {
		t.Fatal("handler should not run on malformed params")
		return nil, nil
	})

	transport.requests <- &JSONRPCRequest{
		JSONRPC: "2.0", ID: 2, Method: "sampling/createMessage",
		Params: json.RawMessage(`{not valid json`),
	}

	resp := waitForResponse(t, transport)
	if resp.Error == nil {
		t.Fatal("expected an error response for malformed params")
	}
	if resp.Error.Code != ErrCodeInvalidParams {
		t.Errorf("expected ErrCodeInvalidParams, got %d", resp.Error.Code)
	}
}

func TestClientHandleSamplingHandlerErrorRespondsWithError(t *testing.T) {
	transport := newFakeTransport()
	client := newSamplingTestClient(transport)

	client.HandleSampling(func(ctx context.Context, req *SamplingRequest) (*SamplingResponse, error) {
		return nil, context.DeadlineExceeded
	})

	transport.requests <- &JSONRPCRequest{
		JSONRPC: "2.0", ID: 3, Method: "sampling/createMessage",
		Params: json.RawMessage(`{"messages":[]}`),
	}

	resp := waitForResponse(t, transport)
	if resp.Error == nil {
		t.Fatal("expected an error response when the handler fails")
	}
	if resp.Error.Code != ErrCodeInternalError {
		t.Errorf("expected ErrCodeInternalError, got %d", resp.Error.Code)
	}
}

func TestClientHandleSamplingNilResponseRespondsWithError(t *testing.T) {
	transport := newFakeTransport()
	client := newSamplingTestClient(transport)

	client.HandleSampling(func(ctx context.Context, req *SamplingRequest) (*SamplingResponse, error) {
		return nil, nil
	})

	transport.requests <- &JSONRPCRequest{
		JSONRPC: "2.0", ID: 4, Method: "sampling/createMessage",
		Params: json.RawMessage(`{"messages":[]}`),
	}

	resp := waitForResponse(t, transport)
	if resp.Error == nil {
		t.Fatal("expected an error response for a nil handler response")
	}
	if resp.Error.Code != ErrCodeInternalError {
		t.Errorf("expected ErrCodeInternalError, got %d", resp.Error.Code)
	}
}

func TestClientHandleSamplingNilHandlerIsNoOp(t *testing.T) {
	transport := newFakeTransport()
	client := newSamplingTestClient(transport)

	client.HandleSampling(nil)

	select {
	case <-transport.requests:
		t.Fatal("expected the request channel to stay unconsumed with a nil handler")
	case <-time.After(50 * time.Millisecond):
	}
}
