// internal/common/http/server.go
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "homematch-workers/internal/common/errors"
	"homematch-workers/internal/common/logger"
	"homematch-workers/internal/common/metrics"
	"homematch-workers/internal/common/validation"
	"homematch-workers/internal/dataset"
	"homematch-workers/internal/matching"
	"homematch-workers/internal/models"
	"homematch-workers/internal/preferences"
)

// Task types whose input schemas guard the API bodies.
const (
	parseTaskType = "parse-housing-preferences"
	scoreTaskType = "calculate-housing-score"
)

type Server struct {
	store       *dataset.Store
	recommender *matching.Recommender
	validator   *validation.Validator
	logger      logger.Logger
	httpServer  *http.Server
}

func NewServer(store *dataset.Store, recommender *matching.Recommender, validator *validation.Validator, log logger.Logger) *Server {
	return &Server{
		store:       store,
		recommender: recommender,
		validator:   validator,
		logger:      log.WithFields(map[string]interface{}{"component": "http"}),
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/health", s.health)
	r.GET("/ready", s.ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.POST("/recommendations", s.recommend)
	api.POST("/score", s.score)
	return r
}

// ListenAndServe blocks until the server stops. http.ErrServerClosed is
// not reported as an error.
func (s *Server) ListenAndServe(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.logger.Info("http server listening", map[string]interface{}{"address": addr})
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request served", map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"durationMs": time.Since(start).Milliseconds(),
		})
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) ready(c *gin.Context) {
	if !s.store.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "loading"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"source":   s.store.SourceID(),
		"listings": s.store.Len(),
		"loadedAt": s.store.LoadedAt().Format(time.RFC3339),
	})
}

func (s *Server) recommend(c *gin.Context) {
	var raw map[string]interface{}
	if err := c.ShouldBindJSON(&raw); err != nil {
		s.writeError(c, apperrors.NewParseError(err))
		return
	}

	prefs, err := s.parsePreferences(parseTaskType, map[string]interface{}{"rawPreferences": raw}, raw)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if !s.store.Ready() || s.store.Len() == 0 {
		s.writeError(c, apperrors.NewDatasetEmptyError(s.store.SourceID()))
		return
	}

	limit := s.recommender.Ranker().MaxResults()
	if q := c.Query("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 || n > 100 {
			s.writeError(c, apperrors.NewInvalidPreferencesError("limit must be an integer between 1 and 100"))
			return
		}
		limit = n
	}

	listings := s.store.Listings()
	start := time.Now()
	rec, err := s.recommender.RecommendTop(c.Request.Context(), listings, prefs, limit)
	if err != nil {
		s.writeError(c, apperrors.NewRankingFailedError(err))
		return
	}
	metrics.RankingDuration.Observe(time.Since(start).Seconds())
	metrics.ListingsScored.Add(float64(len(listings)))
	metrics.Recommendations.WithLabelValues(metrics.ModeLabel(rec.FiltersActive)).Inc()

	c.JSON(http.StatusOK, rec)
}

type scoreRequest struct {
	Listing     *models.Listing        `json:"listing,omitempty"`
	ListingName string                 `json:"listingName,omitempty"`
	Preferences map[string]interface{} `json:"preferences"`
}

func (s *Server) score(c *gin.Context) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		s.writeError(c, apperrors.NewParseError(err))
		return
	}
	var req scoreRequest
	if err := remarshal(body, &req); err != nil {
		s.writeError(c, apperrors.NewParseError(err))
		return
	}

	prefs, err := s.parsePreferences(scoreTaskType, body, req.Preferences)
	if err != nil {
		s.writeError(c, err)
		return
	}

	var (
		listing models.Listing
		ok      bool
	)
	if req.Listing != nil && strings.TrimSpace(req.Listing.Name) != "" {
		listing, ok = *req.Listing, true
	} else {
		listing, ok = s.store.Find(req.ListingName)
	}
	if !ok {
		s.writeError(c, apperrors.NewListingNotFoundError(req.ListingName))
		return
	}

	ranker := s.recommender.Ranker()
	result := ranker.Scorer().Evaluate(listing, prefs)
	metrics.ListingsScored.Inc()

	c.JSON(http.StatusOK, gin.H{
		"listingName":  listing.Name,
		"score":        result.Score,
		"explanation":  result.Explanation,
		"factors":      result.Factors,
		"matchPercent": matching.MatchPercent(result.Score, ranker.MaxPossible()),
	})
}

func (s *Server) parsePreferences(taskType string, envelope, raw map[string]interface{}) (models.PreferenceSet, error) {
	if s.validator != nil {
		res, err := s.validator.Validate(taskType, envelope)
		if err != nil {
			return models.PreferenceSet{}, err
		}
		if !res.Valid {
			return models.PreferenceSet{}, apperrors.NewInvalidPreferencesError(res.Summary())
		}
	}

	prefs, err := preferences.Parse(raw)
	if err != nil {
		if errors.Is(err, preferences.ErrInvalidPreferences) {
			return prefs, apperrors.NewInvalidPreferencesError(err.Error())
		}
		return prefs, err
	}
	return prefs, nil
}

func (s *Server) writeError(c *gin.Context, err error) {
	stdErr := apperrors.AsStandard(err)
	status := statusFor(stdErr.Code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", map[string]interface{}{
			"path":      c.FullPath(),
			"errorCode": string(stdErr.Code),
			"details":   stdErr.Details,
		})
	}
	c.AbortWithStatusJSON(status, gin.H{
		"errorCode": stdErr.Code,
		"message":   stdErr.Message,
		"details":   stdErr.Details,
	})
}

func remarshal(in interface{}, out interface{}) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func statusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeInvalidPreferences, apperrors.ErrCodeParseError:
		return http.StatusBadRequest
	case apperrors.ErrCodeListingNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeDatasetEmpty, apperrors.ErrCodeDatasetLoadFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
