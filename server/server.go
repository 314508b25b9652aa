// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes the geocoding and factoid adapters over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/geofacts/fault"
	"github.com/jcodagnone/geofacts/geocoding"
	"github.com/jcodagnone/geofacts/spatial"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	statusSuccess = "success"
	statusFailed  = "failed"

	shutdownTimeout = 10 * time.Second

	chatPath = "/api/chat"
)

// FactoidGenerator produces a factoid for a user message.
type FactoidGenerator interface {
	Generate(ctx context.Context, message string) (string, error)
}

type Server struct {
	geocoder geocoding.Geocoder
	factoids FactoidGenerator
	logger   *zap.Logger
}

func NewServer(geocoder geocoding.Geocoder, factoids FactoidGenerator, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Server{
		geocoder: geocoder,
		factoids: factoids,
		logger:   logger,
	}
}

// Handler returns the gin engine with every route registered.
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies(nil)

	r.Use(requestID(), accessLog(s.logger), recovery(s.logger))

	r.GET("/healthz", s.health)
	r.GET("/forward-geocode", s.forwardGeocode)
	r.GET("/reverse-geocode", s.reverseGeocode)
	r.POST(chatPath, s.chat)

	return r
}

// Run listens on addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	var lc net.ListenConfig

	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}

	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server is running", zap.String("addr", ln.Addr().String()))

		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok", "geocoder": s.geocoder.Name()})
}

type geocodeResponse struct {
	StatusMessage string `json:"statusMessage"`
	Data          any    `json:"data,omitempty"`
	ErrorMessage  string `json:"errorMessage,omitempty"`
}

func (s *Server) forwardGeocode(ctx *gin.Context) {
	point, err := s.geocoder.Forward(ctx.Request.Context(), ctx.Query("location"))
	if err != nil {
		s.geocodeError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, geocodeResponse{StatusMessage: statusSuccess, Data: point})
}

func (s *Server) reverseGeocode(ctx *gin.Context) {
	coords := spatial.LatLng{
		Latitude:  ctx.Query("latitude"),
		Longitude: ctx.Query("longitude"),
	}

	place, err := s.geocoder.Reverse(ctx.Request.Context(), coords)
	if err != nil {
		s.geocodeError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, geocodeResponse{StatusMessage: statusSuccess, Data: place})
}

func (s *Server) geocodeError(ctx *gin.Context, err error) {
	status := s.logError(ctx, err)
	ctx.JSON(status, geocodeResponse{StatusMessage: statusFailed, ErrorMessage: err.Error()})
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Factoid string `json:"factoid"`
}

type chatErrorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func (s *Server) chat(ctx *gin.Context) {
	var req chatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		s.chatError(ctx, fault.Validationf("invalid request body: %v", err))

		return
	}

	factoid, err := s.factoids.Generate(ctx.Request.Context(), req.Message)
	if err != nil {
		s.chatError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, chatResponse{Factoid: factoid})
}

func (s *Server) chatError(ctx *gin.Context, err error) {
	status := s.logError(ctx, err)
	ctx.JSON(status, chatErrorResponse{Status: "Failed", Error: err.Error()})
}

// statusFor maps an adapter error to the HTTP status returned to callers.
func statusFor(err error) int {
	switch fault.KindOf(err) {
	case fault.Validation:
		return http.StatusBadRequest
	case fault.NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) logError(ctx *gin.Context, err error) int {
	status := statusFor(err)

	fields := []zap.Field{
		zap.String("request_id", ctx.GetString(requestIDKey)),
		zap.String("path", ctx.FullPath()),
		zap.String("kind", fault.KindOf(err).String()),
		zap.Int("status", status),
		zap.Error(err),
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", fields...)
	} else {
		s.logger.Info("request rejected", fields...)
	}

	_ = ctx.Error(err)

	return status
}
