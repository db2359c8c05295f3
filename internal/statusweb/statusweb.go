// Package statusweb implements the read-only administrative HTTP status
// surface of SPEC_FULL.md §6.8: a small gin router, hardened with
// gin-contrib/secure, reporting engine.ServerStats and group counts.
// This is an operational surface, not part of the NNTP wire protocol.
//
// Grounded on the teacher's internal/web/webserver_core_routes.go
// (gin.Default/SetTrustedProxies/secure.New wiring, /ping and
// /api/v1/stats handlers), trimmed to the read-only subset this
// component needs: no templates, sessions, or admin mutation routes.
package statusweb

import (
	"net/http"
	"time"

	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"

	"github.com/go-while/postus/internal/store"
)

// Stats is the subset of engine.ServerStats this surface reports;
// declared locally to avoid internal/statusweb importing internal/engine
// (the dependency runs the other way: cmd/postus-server wires both).
type Stats interface {
	ActiveConnections() int64
	TotalConnections() int64
	AllCommandCounts() map[string]int64
	AuthCounts() (succeeded, failed int64)
	Uptime() time.Duration
}

// Server is the status HTTP surface.
type Server struct {
	router *gin.Engine
	store  store.Store
	stats  Stats
}

// New builds a Server over an already-running Store and ServerStats.
func New(st store.Store, stats Stats) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()
	router.SetTrustedProxies([]string{"127.0.0.1", "::1"})
	router.Use(secure.New(secure.Config{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))

	s := &Server{router: router, store: st, stats: stats}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	s.router.GET("/api/v1/status", s.getStatus)
}

func (s *Server) getStatus(c *gin.Context) {
	groups, err := s.store.ListAllGroups(false, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	var totalArticles int64
	for _, g := range groups {
		count, _, _ := g.Metrics()
		totalArticles += count
	}

	authOK, authFail := s.stats.AuthCounts()
	c.JSON(http.StatusOK, gin.H{
		"active_connections": s.stats.ActiveConnections(),
		"total_connections":  s.stats.TotalConnections(),
		"commands":           s.stats.AllCommandCounts(),
		"auth_succeeded":     authOK,
		"auth_failed":        authFail,
		"uptime_seconds":     s.stats.Uptime().Seconds(),
		"newsgroup_count":    len(groups),
		"total_articles":     totalArticles,
	})
}

// Run starts the HTTP server, blocking until it exits or fails.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
