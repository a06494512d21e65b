package ui

import (
	"sync"

	"go.uber.org/zap"

	"battlefeed/internal/model"
	"battlefeed/internal/storage"
)

// LogShell logs every signal and optionally appends it to a sink.
type LogShell struct {
	logger *zap.Logger
	sink   storage.SignalSink
}

func NewLogShell(logger *zap.Logger, sink storage.SignalSink) *LogShell {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogShell{logger: logger, sink: sink}
}

func (s *LogShell) Emit(signal model.Signal) {
	fields := []zap.Field{zap.String("kind", string(signal.Kind))}
	switch signal.Kind {
	case model.SignalAlert:
		if signal.Alert != nil {
			fields = append(fields, zap.String("type", signal.Alert.Type), zap.String("message", signal.Alert.Message))
		}
	case model.SignalNavigate:
		fields = append(fields, zap.String("route", signal.Route))
	case model.SignalRefresh:
		fields = append(fields, zap.Int("counter", signal.Counter))
	case model.SignalSparkle:
		if signal.Point != nil {
			fields = append(fields, zap.Float64("page_x", signal.Point.PageX), zap.Float64("page_y", signal.Point.PageY))
		}
	case model.SignalSound:
		fields = append(fields, zap.String("sound", signal.Sound))
	}
	s.logger.Info("ui signal", fields...)

	if s.sink != nil {
		if err := s.sink.PutSignal(signal); err != nil {
			s.logger.Warn("signal write failed", zap.Error(err))
		}
	}
}

// Recorder keeps signals in memory.
type Recorder struct {
	mu      sync.Mutex
	signals []model.Signal
}

func (r *Recorder) Emit(signal model.Signal) {
	r.mu.Lock()
	r.signals = append(r.signals, signal)
	r.mu.Unlock()
}

// Signals returns a copy of the recorded signals.
func (r *Recorder) Signals() []model.Signal {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Signal, len(r.signals))
	copy(out, r.signals)
	return out
}

// Count returns how many signals of kind were recorded.
func (r *Recorder) Count(kind model.SignalKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, signal := range r.signals {
		if signal.Kind == kind {
			n++
		}
	}
	return n
}
