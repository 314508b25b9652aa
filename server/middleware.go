// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// requestID propagates the caller's X-Request-ID or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		ctx.Set(requestIDKey, id)
		ctx.Header(requestIDHeader, id)
		ctx.Next()
	}
}

func accessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		ctx.Next()

		logger.Info("request",
			zap.String("request_id", ctx.GetString(requestIDKey)),
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.Request.URL.Path),
			zap.Int("status", ctx.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", ctx.ClientIP()))
	}
}

func recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(ctx *gin.Context, recovered any) {
		logger.Error("panic while handling request",
			zap.String("request_id", ctx.GetString(requestIDKey)),
			zap.Any("panic", recovered),
			zap.Stack("stack"))

		if ctx.FullPath() == chatPath {
			ctx.AbortWithStatusJSON(http.StatusInternalServerError, chatErrorResponse{
				Status: "Failed",
				Error:  "internal server error",
			})

			return
		}

		ctx.AbortWithStatusJSON(http.StatusInternalServerError, geocodeResponse{
			StatusMessage: statusFailed,
			ErrorMessage:  "internal server error",
		})
	})
}
