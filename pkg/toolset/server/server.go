// Package server fronts a pkg/toolset.Toolset with a read-only HTTP
// surface for operator-facing integration testing, grounded on
// pkg/api/handlers.go's gin handler style.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/toolset"
)

// Server exposes a Toolset's catalogue and dispatch over HTTP.
type Server struct {
	tools *toolset.Toolset
	gin   *gin.Engine
}

// New builds a Server wired to the given Toolset.
func New(tools *toolset.Toolset) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{tools: tools, gin: engine}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for embedding in a real
// server or httptest.
func (s *Server) Handler() http.Handler {
	return s.gin
}

func (s *Server) registerRoutes() {
	s.gin.GET("/tools", s.listTools)
	s.gin.POST("/tools/:name", s.executeTool)
	s.gin.GET("/health", s.health)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listTools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": s.tools.ListTools()})
}

type executeRequest struct {
	Arguments json.RawMessage `json:"arguments"`
}

func (s *Server) executeTool(c *gin.Context) {
	name := c.Param("name")

	var req executeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Arguments == nil {
		req.Arguments = json.RawMessage("{}")
	}

	result, err := s.tools.Execute(c.Request.Context(), name, req.Arguments)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.Data(http.StatusOK, "application/json", []byte(result.Content))
}
