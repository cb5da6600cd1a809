// Copyright 2024 Kirk Roerig
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

// Package protean drives the protean-pwm logger chip: six PWM channels
// behind an 8-bit register bus, either generating duty cycles or measuring
// externally applied ones.
package protean

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/proteandev/proteanpwm/pkg/bridge"
	"github.com/proteandev/proteanpwm/pkg/config"
)

// Polarity of a PWM signal. The chip cannot invert its outputs, so only
// the normal polarity ever succeeds.
type Polarity uint8

const (
	PolarityNormal Polarity = iota
	PolarityInverted
)

// String returns a human readable name of the polarity.
func (p Polarity) String() string {
	switch p {
	case PolarityNormal:
		return "normal"
	case PolarityInverted:
		return "inverted"
	default:
		return "unknown"
	}
}

// Capture is one measured duty cycle. PeriodNs is always the assumed frame
// period from the chip configuration; the chip cannot measure periods.
type Capture struct {
	DutyNs   int64
	PeriodNs int64
}

// Controller exposes the channels of one chip. It owns its bus handle
// exclusively for its lifetime. One mutex guards the mode and all bus
// traffic; methods are safe for concurrent use on the same instance.
type Controller struct {
	mutex sync.Mutex
	log   zerolog.Logger
	cfg   config.ChipConfig
	codec Codec
	regs  regmap
	mode  modeMachine
}

// Attach creates a controller for the chip behind the given bus handle.
// The chip powers up measuring, so the controller starts in measure mode
// without touching the hardware.
func Attach(bus bridge.RegisterBus, cfg config.ChipConfig, log zerolog.Logger) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, maskAny(err)
	}
	codec, err := NewCodec(cfg.ClockHz)
	if err != nil {
		return nil, maskAny(err)
	}
	access, err := NewAccessTable(cfg.MaxRegister, cfg.ReadRanges, cfg.WriteRanges)
	if err != nil {
		return nil, maskAny(err)
	}
	c := &Controller{
		log:   log.With().Str("component", "protean").Logger(),
		cfg:   cfg,
		codec: codec,
	}
	c.regs = regmap{bus: bus, access: access}
	c.mode = modeMachine{regs: &c.regs, modeReg: cfg.ModeReg, current: ModeMeasure}
	return c, nil
}

// Mode returns the tracked chip-global mode.
func (c *Controller) Mode() Mode {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.mode.current
}

// Channels returns the number of PWM channels of the chip.
func (c *Controller) Channels() int {
	return c.cfg.Channels
}

// Codec returns the timing codec of the controller.
func (c *Controller) Codec() Codec {
	return c.codec
}

// Configure sets the duty cycle of a channel. The chip must be generating
// (see Enable), otherwise ModeMismatchError is returned: the write would
// nominally succeed but configure meaningless state. The generation period
// is fixed; periodNs must be zero (don't care) or equal to the configured
// frame period. A rejected configure issues zero bus writes.
func (c *Controller) Configure(ctx context.Context, channel int, dutyNs, periodNs int64) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	reg, err := channelReg(c.cfg.ChannelBaseReg, channel, c.cfg.Channels)
	if err != nil {
		return maskAny(err)
	}
	if c.mode.current != ModeGenerate {
		return errors.Wrapf(ModeMismatchError, "configure requires generate mode, chip is in %s mode",
			c.mode.current)
	}
	if periodNs != 0 && periodNs != c.cfg.FramePeriodNs {
		return errors.Wrapf(UnsupportedError, "generation period is fixed at %d ns, got %d ns",
			c.cfg.FramePeriodNs, periodNs)
	}
	arb, err := c.codec.Encode(dutyNs)
	if err != nil {
		return maskAny(err)
	}
	if err := c.regs.write(reg, arb); err != nil {
		return maskAny(err)
	}
	configuresTotal.Inc()
	c.log.Debug().
		Int("channel", channel).
		Int64("duty_ns", dutyNs).
		Uint8("arb_unit", arb).
		Msg("channel configured")
	return nil
}

// Capture measures the duty cycle applied to a channel. The chip must be
// measuring (see Disable), otherwise ModeMismatchError is returned. The
// returned period is always the assumed frame period. The timeout is
// accepted for interface uniformity only: the duty register is latched by
// the chip and read immediately.
func (c *Controller) Capture(ctx context.Context, channel int, timeout time.Duration) (Capture, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	reg, err := channelReg(c.cfg.ChannelBaseReg, channel, c.cfg.Channels)
	if err != nil {
		return Capture{}, maskAny(err)
	}
	if c.mode.current != ModeMeasure {
		return Capture{}, errors.Wrapf(ModeMismatchError, "capture requires measure mode, chip is in %s mode",
			c.mode.current)
	}
	arb, err := c.regs.read(reg)
	if err != nil {
		return Capture{}, maskAny(err)
	}
	capturesTotal.Inc()
	return Capture{
		DutyNs:   c.codec.Decode(arb),
		PeriodNs: c.cfg.FramePeriodNs,
	}, nil
}

// Enable switches the chip to generate mode. The mode is chip-global: the
// channel argument is validated but selects nothing, all channels start
// generating together. Enabling an already generating chip is a no-op.
func (c *Controller) Enable(ctx context.Context, channel int) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, err := channelReg(c.cfg.ChannelBaseReg, channel, c.cfg.Channels); err != nil {
		return maskAny(err)
	}
	if err := c.mode.enable(); err != nil {
		return maskAny(err)
	}
	return nil
}

// Disable switches the chip back to measure mode, its safe power-on
// default. Like Enable this is chip-global; the channel argument is
// validated but selects nothing.
func (c *Controller) Disable(ctx context.Context, channel int) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, err := channelReg(c.cfg.ChannelBaseReg, channel, c.cfg.Channels); err != nil {
		return maskAny(err)
	}
	if err := c.mode.disable(); err != nil {
		return maskAny(err)
	}
	return nil
}

// SetPolarity always fails: the chip has no polarity-invert capability and
// emulating one would misrepresent the signal on the wire.
func (c *Controller) SetPolarity(ctx context.Context, channel int, polarity Polarity) error {
	return errors.Wrapf(UnsupportedError, "polarity cannot be changed, requested %s on channel %d",
		polarity, channel)
}

// FirmwareVersion reads the firmware version register of the chip.
func (c *Controller) FirmwareVersion(ctx context.Context) (uint8, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	version, err := c.regs.read(c.cfg.FirmwareReg)
	if err != nil {
		return 0, maskAny(err)
	}
	return version, nil
}

// Reset writes the reset pseudo register. The chip reverts to measure mode
// with all duty registers cleared; the tracked mode follows it.
func (c *Controller) Reset(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if err := c.regs.write(c.cfg.ResetReg, 1); err != nil {
		return maskAny(err)
	}
	c.mode.current = ModeMeasure
	c.log.Debug().Msg("chip reset")
	return nil
}

// ReadEncoder reads the rotary encoder count register of the chip.
func (c *Controller) ReadEncoder(ctx context.Context) (uint8, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	count, err := c.regs.read(c.cfg.EncoderReg)
	if err != nil {
		return 0, maskAny(err)
	}
	return count, nil
}

// Release closes the bus handle without touching the chip, leaving it in
// whatever mode it is in. Used when a running chip is deliberately handed
// over to another owner; lifecycle hosts detach with Close instead.
func (c *Controller) Release() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return maskAny(c.regs.bus.Close())
}

// Close brings the chip back to its safe listening default and releases
// the bus handle. The disable write is issued regardless of the tracked
// state; its failure does not prevent the handle from being released.
func (c *Controller) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	disableErr := c.mode.disable()
	if disableErr != nil {
		c.log.Error().Err(disableErr).Msg("failed to disable chip on detach")
	}
	if err := c.regs.bus.Close(); err != nil {
		return maskAny(err)
	}
	return maskAny(disableErr)
}
