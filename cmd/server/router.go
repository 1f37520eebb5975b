package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Skufu/symptomgate/internal/logging"
	"github.com/Skufu/symptomgate/internal/metrics"
	"github.com/Skufu/symptomgate/internal/triage"
	apperrors "github.com/Skufu/symptomgate/pkg/errors"
)

const (
	msgInvalidInput   = "Invalid input"
	msgTooShort       = "Input too short for analysis"
	msgAnalysisFailed = "AI analysis failed"
	msgTooLarge       = "Request body too large"
)

// routerConfig carries everything setupRouter needs. A nil DB or Cache means
// that dependency is disabled.
type routerConfig struct {
	Service      *triage.Service
	DB           HealthChecker
	Cache        HealthChecker
	Logger       logging.Logger
	Recorder     metrics.Recorder
	Gatherer     prometheus.Gatherer
	MaxBodyBytes int64
	Limiter      *ipLimiter
}

func setupRouter(rc routerConfig) *gin.Engine {
	if rc.Logger == nil {
		rc.Logger = logging.NewNopLogger()
	}
	if rc.Recorder == nil {
		rc.Recorder = metrics.NewNoop()
	}
	if rc.MaxBodyBytes <= 0 {
		rc.MaxBodyBytes = 1 << 20
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestID(),
		logging.RequestLogger(rc.Logger, "/healthz", "/readyz", "/metrics"),
		metrics.GinMiddleware(rc.Recorder),
		limitBodySize(rc.MaxBodyBytes),
		cors.New(cors.Config{
			AllowOrigins:  []string{"*"},
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
			ExposeHeaders: []string{requestIDHeader},
			MaxAge:        12 * time.Hour,
		}),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		body := gin.H{"status": "ok"}
		status := http.StatusOK
		for name, dep := range map[string]HealthChecker{"db": rc.DB, "redis": rc.Cache} {
			if dep == nil {
				body[name] = "disabled"
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				body[name] = fmt.Sprintf("unhealthy: %v", err)
				body["status"] = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			body[name] = "ok"
		}
		c.JSON(status, body)
	})

	if rc.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(rc.Gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api")
	if rc.Limiter != nil {
		api.Use(rateLimit(rc.Limiter))
	}
	api.POST("/analyze-symptoms", analyzeSymptoms(rc.Service))

	return router
}

func analyzeSymptoms(svc *triage.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req triage.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": msgTooLarge})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidInput})
			return
		}
		req.RequestID = c.GetString(logging.RequestIDKey)

		out, err := svc.Assess(c.Request.Context(), req)
		if err != nil {
			c.JSON(apperrors.HTTPStatus(apperrors.GetCode(err)), gin.H{"error": publicMessage(err)})
			return
		}
		if out.Status == triage.StatusNeedsMoreInfo {
			c.JSON(http.StatusOK, gin.H{"status": out.Status, "message": out.Message})
			return
		}
		c.JSON(http.StatusOK, out.Result)
	}
}

// publicMessage keeps internal detail out of responses. Only input problems
// are described to the caller.
func publicMessage(err error) string {
	switch apperrors.GetCode(err) {
	case apperrors.CodeInvalidInput:
		return msgInvalidInput
	case apperrors.CodeInputTooShort:
		return msgTooShort
	default:
		return msgAnalysisFailed
	}
}
