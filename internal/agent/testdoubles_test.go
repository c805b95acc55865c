package agent

import (
	"context"
	"errors"

	"github.com/haasonsaas/agentrtcore/pkg/models"
)

// fakeProvider is a minimal provider.Provider test double: it returns a
// scripted response (or error) on every Complete call and records the
// requests it was handed, for assertions on system prompt / model
// plumbing.
type fakeProvider struct {
	name     string
	response *models.CompletionResponse
	err      error
	calls    []*models.CompletionRequest
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Complete(ctx context.Context, req *models.CompletionRequest) (*models.CompletionResponse, error) {
	p.calls = append(p.calls, req)
	if p.err != nil {
		return nil, p.err
	}
	return p.response, nil
}

var errProviderFailed = errors.New("provider: boom")
