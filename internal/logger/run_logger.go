package logger

import (
	"github.com/sirupsen/logrus"
)

// RunLogger provides dedicated logging for backtest run lifecycle events.
type RunLogger struct {
	*logrus.Entry
}

// NewRunLogger creates a new backtest run logger.
func NewRunLogger(baseLogger *logrus.Logger) *RunLogger {
	return &RunLogger{
		Entry: baseLogger.WithField("component", "backtest"),
	}
}

// LogRunStarted logs the start of a backtest run.
func (rl *RunLogger) LogRunStarted(strategyName string, bars int, startCash float64) {
	rl.WithFields(logrus.Fields{
		"strategy":   strategyName,
		"bars":       bars,
		"start_cash": startCash,
	}).Info("Backtest run started")
}

// LogRunFinished logs a completed backtest run with headline metrics.
func (rl *RunLogger) LogRunFinished(runID, strategyName string, trades int, finalEquity, totalReturnPct, maxDrawdownPct float64, durationMs float64) {
	rl.WithFields(logrus.Fields{
		"run_id":           runID,
		"strategy":         strategyName,
		"trades":           trades,
		"final_equity":     finalEquity,
		"total_return_pct": totalReturnPct,
		"max_drawdown_pct": maxDrawdownPct,
		"run_duration_ms":  durationMs,
	}).Info("Backtest run finished")
}

// LogRunFailed logs a failed backtest run.
func (rl *RunLogger) LogRunFailed(strategyName, reason string) {
	rl.WithFields(logrus.Fields{
		"strategy": strategyName,
		"reason":   reason,
	}).Error("Backtest run failed")
}

// LogOrderRejected logs a broker order rejection during a run.
func (rl *RunLogger) LogOrderRejected(strategyName string, barIndex int, side string, size int, reason string) {
	rl.WithFields(logrus.Fields{
		"strategy":  strategyName,
		"bar_index": barIndex,
		"side":      side,
		"size":      size,
		"reason":    reason,
	}).Debug("Order rejected")
}

// LogSweepProgress logs parameter sweep progress.
func (rl *RunLogger) LogSweepProgress(strategyName string, completed, failed, total int) {
	rl.WithFields(logrus.Fields{
		"strategy":  strategyName,
		"completed": completed,
		"failed":    failed,
		"total":     total,
	}).Info("Parameter sweep progress")
}

// LogDrawdownBreach logs a run whose drawdown crossed the alert threshold.
func (rl *RunLogger) LogDrawdownBreach(runID, strategyName string, drawdownPct, thresholdPct float64) {
	rl.WithFields(logrus.Fields{
		"run_id":           runID,
		"strategy":         strategyName,
		"max_drawdown_pct": drawdownPct,
		"threshold_pct":    thresholdPct,
	}).Warn("Drawdown threshold exceeded")
}
