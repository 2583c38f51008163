package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/quaestor/internal/core/domain"
)

// mockEmbedder returns deterministic vectors and counts calls.
type mockEmbedder struct {
	mu         sync.Mutex
	embedFn    func(text string) ([]float32, error)
	batchCalls int
	embedCalls int
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.embedCalls++
	m.mu.Unlock()
	if m.embedFn != nil {
		return m.embedFn(text)
	}
	return []float32{1, 0, 0}, nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batchCalls++
	m.mu.Unlock()
	out := make([][]float32, len(texts))
	for i := range texts {
		if m.embedFn != nil {
			vec, err := m.embedFn(texts[i])
			if err != nil {
				return nil, err
			}
			out[i] = vec
			continue
		}
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int   { return 3 }
func (m *mockEmbedder) ModelName() string { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error {
	return nil
}
func (m *mockEmbedder) Close() error { return nil }

// mockCache is an in-memory IndexCacheStore.
type mockCache struct {
	fingerprint string
	chunks      []domain.EmbeddedChunk
	saveErr     error
	loadCalls   int
	saveCalls   int
}

func (m *mockCache) Load(_ context.Context, fingerprint string) ([]domain.EmbeddedChunk, error) {
	m.loadCalls++
	if m.fingerprint == "" || m.fingerprint != fingerprint {
		return nil, domain.ErrCacheMiss
	}
	return m.chunks, nil
}

func (m *mockCache) Save(_ context.Context, fingerprint string, chunks []domain.EmbeddedChunk) error {
	m.saveCalls++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.fingerprint = fingerprint
	m.chunks = chunks
	return nil
}

// mockFeed is a scriptable PriceFeed.
type mockFeed struct {
	price float64
	err   error
	calls int
}

func (m *mockFeed) FetchPrice(_ context.Context) (float64, error) {
	m.calls++
	if m.err != nil {
		return 0, m.err
	}
	return m.price, nil
}

// mockAnswerer returns scripted payloads in sequence, repeating the
// last one when exhausted.
type mockAnswerer struct {
	payloads []string
	errs     []error
	calls    int
}

func (m *mockAnswerer) Generate(_ context.Context, _ string, _ []domain.EmbeddedChunk, _ string) (string, error) {
	i := m.calls
	m.calls++
	if i >= len(m.payloads) {
		i = len(m.payloads) - 1
	}
	if i < 0 {
		return "", errors.New("no scripted payloads")
	}
	if i < len(m.errs) && m.errs[i] != nil {
		return "", m.errs[i]
	}
	return m.payloads[i], nil
}

func (m *mockAnswerer) ModelName() string            { return "mock-gen" }
func (m *mockAnswerer) Ping(_ context.Context) error { return nil }
func (m *mockAnswerer) Close() error                 { return nil }

// sentMessage is one delivery recorded by mockMessenger.
type sentMessage struct {
	channelID string
	threadID  string
	text      string
}

// mockMessenger records sent messages and can fail on demand.
type mockMessenger struct {
	mu      sync.Mutex
	sent    []sentMessage
	sendErr error
	calls   int
	failAt  int // fail the Nth send (1-based), 0 = never
}

func (m *mockMessenger) Send(_ context.Context, channelID, threadID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failAt > 0 && m.calls == m.failAt {
		return errors.New("send failed")
	}
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, sentMessage{channelID: channelID, threadID: threadID, text: text})
	return nil
}

func (m *mockMessenger) messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sent))
	for i, s := range m.sent {
		out[i] = s.text
	}
	return out
}

func (m *mockMessenger) last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return ""
	}
	return m.sent[len(m.sent)-1].text
}

func (m *mockMessenger) lastSent() sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMessage{}
	}
	return m.sent[len(m.sent)-1]
}

// mockKnowledge is a canned KnowledgeService.
type mockKnowledge struct {
	chunks      []domain.EmbeddedChunk
	retrieveErr error
}

func (m *mockKnowledge) Build(_ context.Context, _ []domain.Source) error {
	return nil
}

func (m *mockKnowledge) Retrieve(_ context.Context, _ string, k int) ([]domain.EmbeddedChunk, error) {
	if m.retrieveErr != nil {
		return nil, m.retrieveErr
	}
	if k > len(m.chunks) {
		k = len(m.chunks)
	}
	return m.chunks[:k], nil
}

func (m *mockKnowledge) Size() int { return len(m.chunks) }
