package docintel

import (
	"context"

	"github.com/kailas-cloud/docintel/internal/domain/search/request"
	"github.com/kailas-cloud/docintel/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/docintel/internal/usecase/health"
)

type mockSearch struct {
	results []result.Fused
	err     error
	got     *request.Request
}

func (m *mockSearch) Search(_ context.Context, req *request.Request) ([]result.Fused, error) {
	m.got = req
	return m.results, m.err
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

type stubEmbedder struct {
	res EmbeddingResult
	err error
}

func (s stubEmbedder) Embed(context.Context, string) (EmbeddingResult, error) {
	return s.res, s.err
}

func newTestClient(s searchUseCase, h healthUseCase, obs *observer) *Client {
	return &Client{search: s, health: h, obs: obs}
}
