package report

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bnstruct/pebl/dag"
	"github.com/bnstruct/pebl/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult(t *testing.T) *result.Result {
	t.Helper()
	res := result.New(3, 0)
	net1 := dag.New(3)
	require.NoError(t, net1.AddEdge(0, 1))
	net2 := dag.New(3)
	require.NoError(t, net2.AddEdge(1, 2))
	res.AddNetwork(net1, -10.0)
	res.AddNetwork(net2, -5.0)
	return res
}

func TestGetResultReturnsRankedSummary(t *testing.T) {
	store := NewMemoryStore()
	res := sampleResult(t)
	store.Put(res)

	srv := NewServer(store, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/results/"+res.ID, nil)
	srv.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rank":0`)
}

func TestGetResultUnknownIDReturns404(t *testing.T) {
	srv := NewServer(NewMemoryStore(), nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/results/bogus", nil)
	srv.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetNetworkDotRendersEdges(t *testing.T) {
	store := NewMemoryStore()
	res := sampleResult(t)
	store.Put(res)

	srv := NewServer(store, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/results/"+res.ID+"/networks/0.dot", nil)
	srv.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "digraph G")
	assert.Contains(t, rec.Body.String(), "1 -> 2")
}
