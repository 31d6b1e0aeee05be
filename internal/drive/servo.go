package drive

import (
	"fmt"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/host"

	"github.com/vz415/BridgeVentilator/internal/logger"
)

// Standard RC-servo frame: pulses of 1000-2000 µs repeated at 50 Hz.
const (
	servoFrequency = 50 * physic.Hertz
	servoFrameUS   = 20000
)

// ServoOutput drives a hobby servo / ESC through hardware PWM on a named
// gpio pin. It translates pulse widths to duty cycles and does no range
// checking of its own; commanded positions are bounded upstream.
type ServoOutput struct {
	pin  gpio.PinIO
	log  *logger.Logger
	last int
}

// NewServoOutput initialises the periph host and claims the pin.
func NewServoOutput(pinName string, log *logger.Logger) (*ServoOutput, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init gpio host: %w", err)
	}

	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, fmt.Errorf("gpio pin %q not found", pinName)
	}

	if log != nil {
		log.Infow("servo_output_ready", "pin", pinName, "frequency", servoFrequency.String())
	}

	return &ServoOutput{pin: pin, log: log, last: -1}, nil
}

// Write sets the PWM duty cycle for the given pulse width. Re-writing an
// unchanged pulse is skipped; hardware PWM keeps emitting the last frame.
func (o *ServoOutput) Write(pulseUS int) error {
	if pulseUS == o.last {
		return nil
	}

	if err := o.pin.PWM(dutyForPulse(pulseUS), servoFrequency); err != nil {
		return fmt.Errorf("pwm write %dµs on %s: %w", pulseUS, o.pin.Name(), err)
	}
	o.last = pulseUS

	return nil
}

// Close halts PWM output on the pin.
func (o *ServoOutput) Close() error {
	return o.pin.Halt()
}

// dutyForPulse maps a pulse width inside the 20 ms servo frame to a periph
// duty value. 1500 µs (mid stick) lands at 7.5% duty.
func dutyForPulse(pulseUS int) gpio.Duty {
	if pulseUS < 0 {
		pulseUS = 0
	}
	if pulseUS > servoFrameUS {
		pulseUS = servoFrameUS
	}
	return gpio.Duty(int64(gpio.DutyMax) * int64(pulseUS) / servoFrameUS)
}
