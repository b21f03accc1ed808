package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/linkgraph/internal/core/ingest"
	"github.com/agenthands/linkgraph/internal/core/model"
)

// Upload accepts a multipart CSV under "file" with optional JSON form fields
// "mapping" (column index to field) and "settings" (partial inference settings).
func (s *Server) Upload(c *gin.Context) {
	limit := int64(s.Config.MaxUploadMB) << 20
	if c.Request.ContentLength > limit {
		s.fail(c, &http.MaxBytesError{Limit: limit})
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	fh, err := c.FormFile("file")
	if err != nil {
		s.badRequest(c, fmt.Errorf("missing file: %w", err))
		return
	}

	mapping, err := parseMapping(c.PostForm("mapping"))
	if err != nil {
		s.badRequest(c, err)
		return
	}

	settings := s.Engine.Settings
	if raw := c.PostForm("settings"); raw != "" {
		var override model.SettingsOverride
		if err := json.Unmarshal([]byte(raw), &override); err != nil {
			s.badRequest(c, fmt.Errorf("invalid settings: %w", err))
			return
		}
		if settings, err = override.Apply(settings); err != nil {
			s.fail(c, err)
			return
		}
	}

	f, err := fh.Open()
	if err != nil {
		s.badRequest(c, err)
		return
	}
	defer f.Close()

	contacts, err := ingest.ParseCSV(f, mapping)
	if err != nil {
		s.fail(c, err)
		return
	}

	result, err := s.Engine.Ingest(c.Request.Context(), contacts, settings)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"graph_id": result.GraphID,
		"nodes":    result.Nodes,
		"edges":    result.Edges,
		"settings": result.Settings,
		"export":   result.Export,
	})
}

func parseMapping(raw string) (ingest.Mapping, error) {
	if raw == "" {
		return nil, nil
	}
	var byName map[string]string
	if err := json.Unmarshal([]byte(raw), &byName); err != nil {
		return nil, fmt.Errorf("invalid mapping: %w", err)
	}
	m := make(ingest.Mapping, len(byName))
	for k, v := range byName {
		col, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("invalid mapping column %q", k)
		}
		m[col] = v
	}
	return m, nil
}

func (s *Server) GetGraph(c *gin.Context) {
	limit, ok := s.intQuery(c, "limit", s.Config.GraphLimit)
	if !ok {
		return
	}
	graphID := c.Query("graph_id")
	sub, err := s.Engine.Graph(graphID, limit)
	if err != nil {
		s.fail(c, err)
		return
	}

	resp := gin.H{"graph": sub}
	if m, err := s.Engine.Metrics(c.Request.Context(), graphID); err == nil {
		resp["metrics"] = m.Truncated(s.Config.TopN)
	} else {
		s.log.Warn("graph served without metrics", "error", err)
	}
	c.JSON(http.StatusOK, resp)
}

type QueryRequest struct {
	Q       string `json:"q" binding:"required"`
	GraphID string `json:"graph_id"`
}

func (s *Server) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	result, err := s.Engine.Query(c.Request.Context(), req.GraphID, req.Q)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"filter":  result.Filter,
		"explain": result.Explanation,
		"graph":   result.Subgraph,
	})
}

func (s *Server) Filter(c *gin.Context) {
	var criteria model.FilterCriteria
	if err := c.ShouldBindJSON(&criteria); err != nil {
		s.badRequest(c, err)
		return
	}
	sub, err := s.Engine.Filter(c.Request.Context(), c.Query("graph_id"), criteria)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"filter": criteria, "graph": sub})
}

func (s *Server) GetNode(c *gin.Context) {
	detail, err := s.Engine.Node(c.Request.Context(), c.Query("graph_id"), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (s *Server) ShortestPath(c *gin.Context) {
	source, target := c.Query("source"), c.Query("target")
	if source == "" || target == "" {
		s.badRequest(c, fmt.Errorf("source and target are required"))
		return
	}
	path, err := s.Engine.ShortestPath(c.Request.Context(), c.Query("graph_id"), source, target)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, path)
}

func (s *Server) Subgraph(c *gin.Context) {
	depth, ok := s.intQuery(c, "depth", 1)
	if !ok {
		return
	}
	sub, err := s.Engine.Subgraph(c.Request.Context(), c.Query("graph_id"), c.Param("id"), depth)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"graph": sub})
}

func (s *Server) Metrics(c *gin.Context) {
	top, ok := s.intQuery(c, "top", s.Config.TopN)
	if !ok {
		return
	}
	m, err := s.Engine.Metrics(c.Request.Context(), c.Query("graph_id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"metrics": m.Truncated(top)})
}

func (s *Server) Communities(c *gin.Context) {
	describe := c.Query("describe") == "true" || c.Query("describe") == "1"
	communities, err := s.Engine.Communities(c.Request.Context(), c.Query("graph_id"), describe)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"communities": communities})
}

func (s *Server) ListGraphs(c *gin.Context) {
	current := ""
	if snap, err := s.Engine.Store.Current(); err == nil {
		current = snap.ID()
	}
	c.JSON(http.StatusOK, gin.H{"graphs": s.Engine.List(), "current": current})
}

func (s *Server) DeleteGraph(c *gin.Context) {
	if err := s.Engine.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// intQuery reads an integer query parameter, writing a 400 on bad input.
func (s *Server) intQuery(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		s.badRequest(c, fmt.Errorf("%s must be an integer", name))
		return 0, false
	}
	return v, true
}
