package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/athena/internal/auth"
	"github.com/UnknownOlympus/athena/internal/lib/logger/sl"
	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	imageField = "imageFile"

	uploadKey    = "athena.upload"
	claimsKey    = "athena.claims"
	requestIDKey = "athena.request_id"

	requestIDHeader = "X-Request-ID"
)

// CORSMiddleware allows any origin to call the API.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, accept, origin")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// bodyLimit caps the number of bytes any handler can read from the request body.
func bodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

func (a *API) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(requestIDHeader, requestID)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		latency := time.Since(start)

		a.metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		a.metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(latency.Seconds())

		args := []any{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"latency", latency.String(),
			"request_id", requestID,
		}
		if claims, ok := c.Get(claimsKey); ok {
			if idToken, isClaims := claims.(*auth.Claims); isClaims {
				args = append(args, "uid", idToken.Subject)
			}
		}

		a.log.DebugContext(c.Request.Context(), "Request handled", args...)
	}
}

// singleFile buffers the multipart file in field, if any, and stores it
// under uploadKey. Requests that are not multipart pass through untouched.
func singleFile(field string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header, err := c.FormFile(field)
		switch {
		case err == nil:
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			c.Next()
			return
		default:
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"message": "Request body too large."})
				return
			}
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Malformed multipart body."})
			return
		}

		file, err := header.Open()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Malformed multipart body."})
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Malformed multipart body."})
			return
		}

		c.Set(uploadKey, &models.Upload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
		c.Next()
	}
}

func uploadFrom(c *gin.Context) *models.Upload {
	value, ok := c.Get(uploadKey)
	if !ok {
		return nil
	}
	upload, _ := value.(*models.Upload)

	return upload
}

// requireToken rejects requests without a valid `Authorization: Bearer <idToken>` header.
func (a *API) requireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, found := strings.Cut(c.GetHeader("Authorization"), " ")
		if !found || scheme != "Bearer" || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Unauthorized",
				"code":    auth.CodeInvalidIDToken,
			})
			return
		}

		claims, err := a.auth.VerifyIDToken(token)
		if err != nil {
			authErr := auth.AsError(err)
			a.log.DebugContext(c.Request.Context(), "Rejected id token", sl.Err(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Unauthorized",
				"error":   authErr.Message,
				"code":    authErr.Code,
			})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}
