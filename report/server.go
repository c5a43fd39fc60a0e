// Package report implements the read-only reporting HTTP surface of
// SPEC_FULL.md §6: a gin-gonic/gin server exposing a learned result and its
// ranked networks as JSON and Graphviz DOT, grounded on kegliz-qplay's
// internal/server/router and internal/app handler shape. It never mutates a
// result.Result.
package report

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bnstruct/pebl/logging"
	"github.com/bnstruct/pebl/result"
)

// Store resolves a result ID to the accumulated Result. The caller that
// builds a Server supplies it (MemoryStore is the one implementation in this
// package); report.Server only reads through it.
type Store interface {
	Get(id string) (*result.Result, bool)
}

// Server is the read-only reporting surface.
type Server struct {
	engine     *gin.Engine
	store      Store
	log        *logging.Logger
	httpServer *http.Server
}

// NewServer builds a Server over store. log may be nil to disable request
// tracing.
func NewServer(store Store, log *logging.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{engine: engine, store: store, log: log}

	engine.GET("/results/:id", s.getResult)
	engine.GET("/results/:id/networks/:rankdot", s.getNetworkDot)
	engine.NoRoute(func(c *gin.Context) { c.JSON(http.StatusNotFound, gin.H{"error": "not found"}) })

	return s
}

// Start runs the HTTP server on addr, blocking until it stops.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.engine}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// resultSummary is the JSON shape of GET /results/:id.
type resultSummary struct {
	ID           string          `json:"id"`
	NumVariables int             `json:"num_variables"`
	Networks     []networkRanked `json:"networks"`
	Runs         []result.Stats  `json:"runs"`
}

type networkRanked struct {
	Rank  int     `json:"rank"`
	Score float64 `json:"score"`
	Edges int     `json:"edge_count"`
}

func (s *Server) getResult(c *gin.Context) {
	id := c.Param("id")
	res, ok := s.store.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such result"})
		return
	}

	ranked := rankDescending(res)
	networks := make([]networkRanked, len(ranked))
	for i, e := range ranked {
		networks[i] = networkRanked{Rank: i, Score: e.Score, Edges: len(e.Edges)}
	}

	if s.log != nil {
		s.log.Debug().Str("resultID", id).Int("networks", len(networks)).Msg("serving result summary")
	}

	c.JSON(http.StatusOK, resultSummary{
		ID:           res.ID,
		NumVariables: res.NumVariables,
		Networks:     networks,
		Runs:         res.Runs,
	})
}

func (s *Server) getNetworkDot(c *gin.Context) {
	id := c.Param("id")
	res, ok := s.store.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such result"})
		return
	}

	rankdot := c.Param("rankdot")
	rankText := strings.TrimSuffix(rankdot, ".dot")
	if rankText == rankdot {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expected a .dot suffix"})
		return
	}

	var rank int
	if _, err := fmt.Sscanf(rankText, "%d", &rank); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rank must be an integer"})
		return
	}

	ranked := rankDescending(res)
	if rank < 0 || rank >= len(ranked) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no network at that rank"})
		return
	}

	c.Header("Content-Type", "text/vnd.graphviz")
	c.String(http.StatusOK, toDOT(ranked[rank]))
}

// rankDescending returns res.Entries ordered from highest to lowest score
// (result.Result itself keeps them ascending, per spec.md §6).
func rankDescending(res *result.Result) []result.Entry {
	out := make([]result.Entry, len(res.Entries))
	for i, e := range res.Entries {
		out[len(res.Entries)-1-i] = e
	}
	return out
}

func toDOT(e result.Entry) string {
	dot := "digraph G {\n"
	for _, edge := range e.Edges {
		dot += fmt.Sprintf("  %d -> %d;\n", edge.U, edge.V)
	}
	dot += "}\n"
	return dot
}
