package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/avanth/docuquery/internal/domain/docModel"
)

type mockProvider struct {
	name         string
	available    bool
	generateFunc func(ctx context.Context, question string, contextChunks []docModel.RetrievalResult) (string, error)
	calls        int
}

func (m *mockProvider) Name() string                       { return m.name }
func (m *mockProvider) Available(ctx context.Context) bool { return m.available }
func (m *mockProvider) Generate(ctx context.Context, q string, c []docModel.RetrievalResult) (string, error) {
	m.calls++
	return m.generateFunc(ctx, q, c)
}

func ok(answer string) func(context.Context, string, []docModel.RetrievalResult) (string, error) {
	return func(context.Context, string, []docModel.RetrievalResult) (string, error) {
		return answer, nil
	}
}

func fail(msg string) func(context.Context, string, []docModel.RetrievalResult) (string, error) {
	return func(context.Context, string, []docModel.RetrievalResult) (string, error) {
		return "", errors.New(msg)
	}
}

func TestChain_FirstAvailableProviderWins(t *testing.T) {
	local := &mockProvider{name: "local", available: true, generateFunc: ok("local answer")}
	cloud := &mockProvider{name: "cloud", available: true, generateFunc: ok("cloud answer")}

	answer := NewChain(local, cloud).Answer(context.Background(), "q", nil)
	if answer != "local answer" {
		t.Errorf("answer = %q; want local answer", answer)
	}
	if cloud.calls != 0 {
		t.Error("second provider must not be called when the first succeeds")
	}
}

func TestChain_SkipsUnavailableProvider(t *testing.T) {
	local := &mockProvider{name: "local", available: false, generateFunc: ok("never")}
	cloud := &mockProvider{name: "cloud", available: true, generateFunc: ok("cloud answer")}

	answer := NewChain(local, cloud).Answer(context.Background(), "q", nil)
	if answer != "cloud answer" {
		t.Errorf("answer = %q; want cloud answer", answer)
	}
	if local.calls != 0 {
		t.Error("unavailable provider must not be asked to generate")
	}
}

func TestChain_FallsBackOnGenerateError(t *testing.T) {
	local := &mockProvider{name: "local", available: true, generateFunc: fail("model crashed")}
	cloud := &mockProvider{name: "cloud", available: true, generateFunc: ok("cloud answer")}

	answer := NewChain(local, cloud).Answer(context.Background(), "q", nil)
	if answer != "cloud answer" {
		t.Errorf("answer = %q; want cloud answer", answer)
	}
	if local.calls != 1 {
		t.Errorf("local provider calls = %d; want 1", local.calls)
	}
}

func TestChain_AllDownReturnsFixedMessage(t *testing.T) {
	local := &mockProvider{name: "local", available: false, generateFunc: ok("never")}
	cloud := &mockProvider{name: "cloud", available: true, generateFunc: fail("quota")}

	answer := NewChain(local, cloud).Answer(context.Background(), "q", nil)
	if answer != UnavailableMessage {
		t.Errorf("answer = %q; want unavailable message", answer)
	}
}

func TestChain_DropsNilProviders(t *testing.T) {
	cloud := &mockProvider{name: "cloud", available: true, generateFunc: ok("cloud answer")}

	answer := NewChain(nil, cloud).Answer(context.Background(), "q", nil)
	if answer != "cloud answer" {
		t.Errorf("answer = %q; want cloud answer", answer)
	}
}

func TestBuildPrompt_Shape(t *testing.T) {
	results := []docModel.RetrievalResult{
		{DocumentName: "invoice.pdf", ChunkText: "Total due: $125.00"},
		{DocumentName: "contract.pdf", ChunkText: "Payment terms are net 30."},
	}

	prompt := BuildPrompt("how much is due?", results)

	if !strings.Contains(prompt, "From document 'invoice.pdf':\nTotal due: $125.00") {
		t.Errorf("missing first context block in %q", prompt)
	}
	if !strings.Contains(prompt, "From document 'contract.pdf':\nPayment terms are net 30.") {
		t.Errorf("missing second context block in %q", prompt)
	}
	if !strings.Contains(prompt, "User question: how much is due?") {
		t.Errorf("missing question in %q", prompt)
	}
	if !strings.Contains(prompt, "Only use information from the provided context") {
		t.Errorf("missing instruction block in %q", prompt)
	}
}
