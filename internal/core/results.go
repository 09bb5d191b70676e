package core

import (
	"context"

	"go.uber.org/zap"

	"github.com/Krrish0621/Mind-Care-sub000/internal/assessment"
	"github.com/Krrish0621/Mind-Care-sub000/pkg"
)

// ResultSink durably records completed screenings.
type ResultSink interface {
	SaveResult(ctx context.Context, res *pkg.ScreeningResult) error
}

// ResultStore is a ResultSink that can also list a user's history.
type ResultStore interface {
	ResultSink
	ListResults(ctx context.Context, userToken string, limit int) ([]pkg.ScreeningResult, error)
}

// Escalator tells the counseling team about a high-risk result.
type Escalator interface {
	Notify(ctx context.Context, resultID string) error
}

// recordResult saves res and, for high-risk scores, notifies the escalator.
// Failures are logged and swallowed: the user already has their score.
func recordResult(ctx context.Context, sink ResultSink, esc Escalator, logger *zap.Logger, res *pkg.ScreeningResult) {
	fields := []zap.Field{
		zap.String("result_id", res.ID),
		zap.String("instrument", res.Instrument),
		zap.Int("score", res.TotalScore),
	}
	if err := sink.SaveResult(ctx, res); err != nil {
		logger.Warn("screening result not persisted", append(fields, zap.Error(err))...)
		return
	}
	logger.Info("screening result persisted", fields...)
	if esc == nil || !assessment.IsHighRisk(res.TotalScore) {
		return
	}
	if err := esc.Notify(ctx, res.ID); err != nil {
		logger.Warn("escalation notification failed", append(fields, zap.Error(err))...)
	}
}
