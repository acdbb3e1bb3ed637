package testenv

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Server exposes the built-in domains over the environment HTTP
// contract: POST /generate and POST /step.
type Server struct {
	engine  *gin.Engine
	domains map[string]Domain
	server  *http.Server
}

// NewServer registers the built-in domains plus any extras.
func NewServer(extra ...Domain) *Server {
	s := &Server{
		domains: make(map[string]Domain),
	}
	for _, d := range []Domain{Arith{}, Countdown{}} {
		s.domains[d.Name()] = d
	}
	for _, d := range extra {
		s.domains[d.Name()] = d
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.POST("/generate", s.handleGenerate)
	r.POST("/step", s.handleStep)
	s.engine = r
	return s
}

// Handler exposes the routes for in-process tests (httptest).
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves on the given port until Shutdown.
func (s *Server) Start(port int) error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf("localhost:%d", port),
		Handler: s.engine,
	}
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

type generateRequest struct {
	Domain string `json:"domain"`
	Seed   *int64 `json:"seed"`
}

type stepRequest struct {
	Domain string     `json:"domain"`
	States [][]string `json:"states"`
	Goals  [][]string `json:"goals"`
}

type stepMove struct {
	Action string `json:"action"`
	State  string `json:"state"`
}

type stepResult struct {
	Success bool       `json:"success"`
	Actions []stepMove `json:"actions"`
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	domain, ok := s.domains[req.Domain]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown domain " + req.Domain})
		return
	}

	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}
	facts, goals := domain.Generate(rand.New(rand.NewSource(seed)))
	c.JSON(http.StatusOK, gin.H{"state": facts, "goals": goals})
}

func (s *Server) handleStep(c *gin.Context) {
	var req stepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	domain, ok := s.domains[req.Domain]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown domain " + req.Domain})
		return
	}

	out := make([]stepResult, len(req.States))
	for i, facts := range req.States {
		current := ""
		if len(facts) > 0 {
			current = facts[len(facts)-1]
		}
		var goals []string
		if i < len(req.Goals) {
			goals = req.Goals[i]
		}
		success, moves := domain.Expand(current, goals)
		actions := make([]stepMove, len(moves))
		for j, m := range moves {
			actions[j] = stepMove{Action: m.Action, State: m.State}
		}
		out[i] = stepResult{Success: success, Actions: actions}
	}
	c.JSON(http.StatusOK, out)
}
