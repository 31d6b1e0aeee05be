// Package drive emits the raw actuator drive signal. The ventilator core
// talks to one Output; which physical sink backs it is a deployment choice.
package drive

import (
	"fmt"

	"github.com/vz415/BridgeVentilator/internal/logger"
)

// Output is the sink for the drive signal. Write is called once per engine
// tick with the current servo pulse width and must not block.
type Output interface {
	Write(pulseUS int) error
	Close() error
}

// Kinds of output sinks selectable from configuration.
const (
	KindLog  = "log"
	KindGPIO = "gpio"
)

// New builds the configured output sink. Unknown kinds are an error: wiring
// the wrong sink on a bench is worth failing loudly at startup, unlike
// anything on the control path.
func New(kind, pin string, log *logger.Logger) (Output, error) {
	switch kind {
	case KindLog, "":
		return NewLogOutput(log), nil
	case KindGPIO:
		return NewServoOutput(pin, log)
	default:
		return nil, fmt.Errorf("unknown drive output %q (want %q or %q)", kind, KindLog, KindGPIO)
	}
}

// LogOutput is the development sink: it logs the pulse width whenever it
// changes and otherwise swallows writes.
type LogOutput struct {
	log  *logger.Logger
	last int
}

// NewLogOutput returns a sink that logs pulse changes at debug level.
func NewLogOutput(log *logger.Logger) *LogOutput {
	return &LogOutput{log: log, last: -1}
}

// Write records the pulse. Only changes are logged; the engine re-emits the
// same pulse every frame and that would drown the log.
func (o *LogOutput) Write(pulseUS int) error {
	if pulseUS == o.last {
		return nil
	}
	o.last = pulseUS
	if o.log != nil {
		o.log.Debugw("drive_pulse", "pulse_us", pulseUS)
	}
	return nil
}

// Close is a no-op for the log sink.
func (o *LogOutput) Close() error { return nil }
