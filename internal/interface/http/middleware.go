package httpservice

import (
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/indelible-labs/indelibled/internal/interface/http/handlers"
	"github.com/indelible-labs/indelibled/internal/telemetry"
	"github.com/indelible-labs/indelibled/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const requestIDHeader = "X-Request-Id"

var somethingWentWrong = errors.INTERNAL_ERROR.New("something went wrong")

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// accessLogger logs every request at debug level, and internal errors at
// error level.
func accessLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(log.Fields{
			"request_id": c.GetString("request_id"),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
		})
		for _, ginErr := range c.Errors {
			structuredErr, ok := ginErr.Err.(errors.Error)
			if !ok {
				continue
			}
			if structuredErr.Code() == errors.INTERNAL_ERROR.Code {
				entry.WithField("name", structuredErr.CodeName()).
					WithField("metadata", structuredErr.Metadata()).
					Error(structuredErr.Error())
			}
		}
		entry.Debug("http request")
	}
}

func panicRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("panic-recovery middleware recovered from panic: %v", r)
				log.Errorf("stack trace: %v", string(debug.Stack()))
				handlers.WriteError(c, somethingWentWrong)
			}
		}()
		c.Next()
	}
}

func metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		telemetry.RequestLatency.WithLabelValues(c.Request.Method, route).
			Observe(time.Since(start).Seconds())
		telemetry.RequestsByRoute.WithLabelValues(
			c.Request.Method, route, strconv.Itoa(c.Writer.Status()),
		).Inc()
		for _, ginErr := range c.Errors {
			if structuredErr, ok := ginErr.Err.(errors.Error); ok {
				telemetry.ErrorsByCode.WithLabelValues(structuredErr.CodeName()).Inc()
			}
		}
	}
}
