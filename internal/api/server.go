// Package api serves the ledger over HTTP with fiber.
package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/cleared-dev/erpledger/internal/posting"
	"github.com/cleared-dev/erpledger/internal/reporting"
)

const shutdownTimeout = 10 * time.Second

// Server routes HTTP requests to the posting and reporting services.
type Server struct {
	posting   *posting.Service
	reporting *reporting.Service
	logger    *zap.Logger
	now       func() time.Time
	app       *fiber.App
}

// New builds the fiber app and registers all routes.
func New(p *posting.Service, r *reporting.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{posting: p, reporting: r, logger: logger, now: time.Now}
	s.app = fiber.New(fiber.Config{
		AppName:               "erpledger",
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
		BodyLimit:             4 << 20,
	})
	s.app.Use(s.requestLogger)
	s.routes()
	return s
}

// App exposes the fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) routes() {
	s.app.Get("/health", s.health)

	v1 := s.app.Group("/v1")
	v1.Post("/ledger/validate", s.validateLines)
	v1.Post("/ledger/transactions", s.postTransaction)
	v1.Post("/ledger/opening-balance", s.postOpeningBalance)

	v1.Get("/reports/general-ledger", s.generalLedger)
	v1.Get("/reports/balance-sheet", s.balanceSheet)
	v1.Get("/reports/trial-balance", s.trialBalance)
	v1.Get("/accounts/:id/statement", s.accountStatement)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- s.app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("http server shutting down")
		return s.app.ShutdownWithTimeout(shutdownTimeout)
	}
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	if err != nil {
		// Run the error handler now so the logged status is the one sent.
		if herr := c.App().ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}
	s.logger.Info("request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("latency", time.Since(start)),
	)
	return nil
}
