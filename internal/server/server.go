package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/agenthands/linkgraph/internal/config"
	"github.com/agenthands/linkgraph/internal/core"
	"github.com/agenthands/linkgraph/internal/core/model"
	"github.com/agenthands/linkgraph/internal/logger"
	"github.com/agenthands/linkgraph/internal/telemetry"
)

type Server struct {
	Engine *core.Engine
	Config config.ServerConfig
	log    *logger.Logger
}

func NewServer(engine *core.Engine, cfg config.ServerConfig, log *logger.Logger) *Server {
	return &Server{Engine: engine, Config: cfg, log: logger.OrNop(log)}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	corsCfg := cors.DefaultConfig()
	if len(s.Config.CORSOrigins) > 0 {
		corsCfg.AllowOrigins = s.Config.CORSOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", s.Health)
	r.GET("/debug/metrics", gin.WrapH(telemetry.Handler()))

	r.POST("/upload", s.Upload)
	r.GET("/graph", s.GetGraph)
	r.POST("/query", s.Query)
	r.POST("/filter", s.Filter)
	r.GET("/node/:id", s.GetNode)
	r.GET("/path", s.ShortestPath)
	r.GET("/subgraph/:id", s.Subgraph)
	r.GET("/metrics", s.Metrics)
	r.GET("/communities", s.Communities)
	r.GET("/graphs", s.ListGraphs)
	r.DELETE("/graphs/:id", s.DeleteGraph)

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

type errorBody struct {
	Message string     `json:"message"`
	Code    model.Kind `json:"code"`
}

// statusFor maps engine error kinds onto HTTP statuses.
func statusFor(kind model.Kind) int {
	switch kind {
	case model.KindInvalidInput:
		return http.StatusBadRequest
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	kind := model.KindOf(err)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": errorBody{Message: err.Error(), Code: model.KindInvalidInput}})
		return
	}
	status := statusFor(kind)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "path", c.FullPath(), "error", err)
		if kind == "" {
			kind = model.KindInternalInconsistency
		}
	}
	c.AbortWithStatusJSON(status, gin.H{"error": errorBody{Message: err.Error(), Code: kind}})
}

func (s *Server) badRequest(c *gin.Context, err error) {
	s.fail(c, model.NewError(model.KindInvalidInput, "decode_request", "", err))
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "linkgraph"})
}
