// Package observers provides observers for monitoring an intersection engine
package observers

import (
	"github.com/anggasct/crossing"
	"github.com/sirupsen/logrus"
)

// LogLevel represents the logging level
type LogLevel int

const (
	// LogError logs only errors
	LogError LogLevel = iota
	// LogWarning logs errors and emergencies
	LogWarning
	// LogInfo logs errors, emergencies and color changes
	LogInfo
	// LogDebug additionally logs every control tick and vehicle
	LogDebug
)

// ParseLogLevel maps a level name to a LogLevel. Unknown names give LogInfo.
func ParseLogLevel(name string) LogLevel {
	switch name {
	case "error":
		return LogError
	case "warn", "warning":
		return LogWarning
	case "debug", "trace":
		return LogDebug
	default:
		return LogInfo
	}
}

func (l LogLevel) logrusLevel() logrus.Level {
	switch l {
	case LogError:
		return logrus.ErrorLevel
	case LogWarning:
		return logrus.WarnLevel
	case LogDebug:
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

// LoggingObserver writes engine events as structured logrus entries
type LoggingObserver struct {
	crossing.BaseObserver
	entry *logrus.Entry
}

// NewLoggingObserver creates a logging observer on logger. A nil logger
// gets a fresh one filtered at level.
func NewLoggingObserver(logger *logrus.Logger, level LogLevel, component string) *LoggingObserver {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(level.logrusLevel())
	}
	return &LoggingObserver{entry: logger.WithField("component", component)}
}

// OnTransition logs color changes
func (o *LoggingObserver) OnTransition(direction crossing.Direction, from, to crossing.LightState, event crossing.Event, _ crossing.Context) {
	fields := logrus.Fields{"direction": direction, "from": from, "to": to}
	if event != nil {
		fields["event"] = event.GetName()
		fields["mode"] = event.GetMode().String()
		fields["tick"] = event.GetTick()
	}
	o.entry.WithFields(fields).Info("signal changed")
}

// OnEventRejected logs events the signal plan has no edge for
func (o *LoggingObserver) OnEventRejected(direction crossing.Direction, event crossing.Event, reason string, _ crossing.Context) {
	entry := o.entry.WithField("direction", direction)
	if event != nil {
		entry = entry.WithField("event", event.GetName())
	}
	entry.WithField("reason", reason).Warn("event rejected")
}

// OnError logs errors
func (o *LoggingObserver) OnError(err error) {
	o.entry.WithError(err).Error("engine error")
}

// OnControlStep logs every control tick
func (o *LoggingObserver) OnControlStep(outcome crossing.StepOutcome) {
	entry := o.entry.WithFields(logrus.Fields{
		"mode":  outcome.Mode.String(),
		"tick":  outcome.Tick,
		"phase": outcome.Phase,
	})
	if outcome.Target != "" {
		entry = entry.WithField("target", outcome.Target)
	}
	if outcome.Blocked {
		entry = entry.WithField("blocked", true)
	}
	entry.Debug("control tick")
}

// OnEmergencyStart logs emergency activation
func (o *LoggingObserver) OnEmergencyStart(status crossing.EmergencyStatus) {
	o.entry.WithFields(logrus.Fields{
		"direction": status.Direction,
		"remaining": status.Remaining,
	}).Warn("emergency vehicle approaching")
}

// OnEmergencyClear logs the end of an emergency
func (o *LoggingObserver) OnEmergencyClear(direction crossing.Direction, cancelled bool) {
	o.entry.WithFields(logrus.Fields{
		"direction": direction,
		"cancelled": cancelled,
	}).Info("emergency cleared")
}

// OnVehicleSpawned logs new vehicles
func (o *LoggingObserver) OnVehicleSpawned(v crossing.Vehicle) {
	o.entry.WithFields(logrus.Fields{
		"vehicle":   v.ID,
		"direction": v.Direction,
		"kind":      v.Kind,
		"lane":      v.Lane,
	}).Debug("vehicle spawned")
}

// OnVehicleExited logs retired vehicles
func (o *LoggingObserver) OnVehicleExited(v crossing.Vehicle) {
	o.entry.WithFields(logrus.Fields{
		"vehicle":   v.ID,
		"direction": v.Direction,
	}).Debug("vehicle exited")
}

// OnEngineStarted logs the start of the tick loop
func (o *LoggingObserver) OnEngineStarted() {
	o.entry.Info("engine started")
}

// OnEngineStopped logs the end of the tick loop
func (o *LoggingObserver) OnEngineStopped() {
	o.entry.Info("engine stopped")
}
