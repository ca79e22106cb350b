package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/structeye/internal/alert"
	"github.com/structeye/internal/auth"
	"github.com/structeye/internal/classifier"
	"github.com/structeye/internal/database"
	"github.com/structeye/internal/engine"
	"github.com/structeye/internal/ml"
	"github.com/structeye/internal/models"
	"github.com/structeye/internal/sensor"
)

// Server is the thin HTTP translation over the engine. All domain decisions
// live below it.
type Server struct {
	engine     *engine.Engine
	simulator  *sensor.Simulator
	thresholds alert.Thresholds
	router     *gin.Engine
}

func NewServer(eng *engine.Engine, sim *sensor.Simulator, thresholds alert.Thresholds) *Server {
	server := &Server{
		engine:     eng,
		simulator:  sim,
		thresholds: thresholds,
		router:     gin.Default(),
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	s.router.POST("/api/v1/auth/login", s.login)

	api := s.router.Group("/api/v1")
	api.Use(auth.AuthMiddleware())

	api.POST("/readings", auth.RequireRole(models.RoleAdmin, models.RoleOperator), s.ingestReading)
	api.POST("/readings/simulate", auth.RequireRole(models.RoleAdmin, models.RoleOperator), s.simulateReading)
	api.GET("/readings", s.listReadings)
	api.GET("/readings/anomalies", s.listAnomalies)
	api.GET("/statistics", s.sensorStatistics)

	api.POST("/models/train", auth.RequireRole(models.RoleAdmin, models.RoleOperator), s.trainModel)
	api.GET("/models/:kind", s.modelInfo)

	api.GET("/alerts", s.alertHistory)
	api.GET("/alerts/statistics", s.alertStatistics)
	api.GET("/thresholds", s.getThresholds)
}

func (s *Server) Start(port int) error {
	return s.router.Run(fmt.Sprintf(":%d", port))
}

func (s *Server) login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := database.GetDB().Where("username = ?", req.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if !user.CheckPassword(req.Password) || !user.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := auth.GenerateToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "role": user.Role})
}

func (s *Server) ingestReading(c *gin.Context) {
	var req struct {
		Timestamp   *time.Time `json:"timestamp"`
		Vibration   float64    `json:"vibration"`
		Strain      float64    `json:"strain"`
		Temperature float64    `json:"temperature"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reading := &models.SensorReading{
		Vibration:   req.Vibration,
		Strain:      req.Strain,
		Temperature: req.Temperature,
		AlertLevel:  models.AlertLevelNormal,
	}
	if req.Timestamp != nil {
		reading.Timestamp = req.Timestamp.UTC()
	}

	c.JSON(http.StatusCreated, s.engine.ProcessReading(c.Request.Context(), reading))
}

func (s *Server) simulateReading(c *gin.Context) {
	reading := s.simulator.Generate(time.Now())
	c.JSON(http.StatusCreated, s.engine.ProcessReading(c.Request.Context(), reading))
}

func (s *Server) listReadings(c *gin.Context) {
	if since := c.Query("since"); since != "" {
		start, err := time.Parse(time.RFC3339, since)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "since must be RFC3339"})
			return
		}
		end := time.Now().UTC()
		if until := c.Query("until"); until != "" {
			if end, err = time.Parse(time.RFC3339, until); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "until must be RFC3339"})
				return
			}
		}
		readings, err := s.engine.ReadingsBetween(start, end)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch readings"})
			return
		}
		c.JSON(http.StatusOK, readings)
		return
	}

	readings, err := s.engine.Readings(queryInt(c, "limit", 20))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch readings"})
		return
	}
	c.JSON(http.StatusOK, readings)
}

func (s *Server) listAnomalies(c *gin.Context) {
	readings, err := s.engine.Anomalies(queryInt(c, "limit", 50))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch anomalies"})
		return
	}
	c.JSON(http.StatusOK, readings)
}

func (s *Server) sensorStatistics(c *gin.Context) {
	stats, err := s.engine.SensorStatistics()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) trainModel(c *gin.Context) {
	var req struct {
		Kind   models.ClassifierKind `json:"kind"`
		Params ml.Params             `json:"params"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Kind == "" {
		req.Kind = models.KindIsolationForest
	}

	snapshot, err := s.engine.TrainModel(req.Kind, req.Params)
	if err != nil {
		if errors.Is(err, classifier.ErrInsufficientData) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, snapshot)
}

func (s *Server) modelInfo(c *gin.Context) {
	kind := models.ClassifierKind(c.Param("kind"))
	snapshot, err := s.engine.ModelInfo(kind)
	if err != nil {
		if errors.Is(err, classifier.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no active model for kind " + string(kind)})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (s *Server) alertHistory(c *gin.Context) {
	records, err := s.engine.AlertHistory(queryInt(c, "limit", 50))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch alert history"})
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) alertStatistics(c *gin.Context) {
	stats, err := s.engine.AlertStatistics(queryInt(c, "window", 24))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute alert statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) getThresholds(c *gin.Context) {
	c.JSON(http.StatusOK, s.thresholds)
}

func queryInt(c *gin.Context, name string, fallback int) int {
	if raw := c.Query(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}
