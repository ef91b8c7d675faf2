package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/go-module-pack/internal/domain"
)

// AuditWriter defines how audit records are persisted.
type AuditWriter interface {
	WriteAudit(ctx context.Context, rec domain.AuditRecord) error
}

// LogAuditWriter writes audit records as structured log lines.
type LogAuditWriter struct {
	logger *slog.Logger
}

// NewLogAuditWriter creates an audit writer backed by logger.
func NewLogAuditWriter(logger *slog.Logger) *LogAuditWriter {
	return &LogAuditWriter{logger: logger}
}

func (w *LogAuditWriter) WriteAudit(ctx context.Context, rec domain.AuditRecord) error {
	w.logger.LogAttrs(ctx, slog.LevelInfo, rec.Action,
		slog.String("subject", rec.Subject),
		slog.String("method", rec.Method),
		slog.String("path", rec.Path),
		slog.Int("status", rec.Status),
		slog.Int64("duration_ms", rec.Duration.Milliseconds()),
		slog.String("ip", rec.IP),
		slog.String("user_agent", rec.UserAgent),
	)
	return nil
}

// AuditMiddleware records every request, including rejected ones.
func AuditMiddleware(writer AuditWriter, logger *slog.Logger) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		// Capture request data before the handler runs (Fiber reuses context objects)
		method := c.Method()
		path := c.Path()
		ip := c.IP()
		userAgent := c.Get(fiber.HeaderUserAgent)

		err := c.Next()

		subject := domain.AnonymousSubject
		if id := GetIdentity(c); id != nil {
			subject = id.Subject
		}

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}

		action := domain.AuditActionHTTPRequest
		if status == fiber.StatusUnauthorized || status == fiber.StatusForbidden {
			action = domain.AuditActionRejected
		}

		if writeErr := writer.WriteAudit(c.Context(), domain.AuditRecord{
			Action:    action,
			Subject:   subject,
			Method:    method,
			Path:      path,
			Status:    status,
			Duration:  time.Since(start),
			IP:        ip,
			UserAgent: userAgent,
		}); writeErr != nil {
			logger.Error("failed to write audit log", "error", writeErr)
		}

		return err
	}
}
