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

// Package simulator models the protean-pwm chip at the register level so
// the controller and the CLI can run without hardware. Like the real chip
// it is permissive: it enforces no access table, that is the job of the
// layer above.
package simulator

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/proteandev/proteanpwm/pkg/bridge"
	"github.com/proteandev/proteanpwm/pkg/config"
)

// FirmwareVersion is the version byte the simulated chip reports.
const FirmwareVersion = 0x21

// Simulator implements bridge.RegisterBus with a behavioral model of the
// chip: a mode register, one duty register per channel, a firmware version
// register, a rotary encoder count and a reset pseudo register.
type Simulator struct {
	mutex   sync.Mutex
	cfg     config.ChipConfig
	mode    uint8
	duty    []uint8
	encoder uint8
	closed  bool
}

// New creates a simulated chip in its power-on state: measure mode, all
// duty registers cleared.
func New(cfg config.ChipConfig) *Simulator {
	return &Simulator{
		cfg:  cfg,
		duty: make([]uint8, cfg.Channels),
	}
}

// SetMeasuredDuty latches a raw duty value on a channel, as an externally
// applied signal would. Test and demo hook, not a bus operation.
func (s *Simulator) SetMeasuredDuty(channel int, arb uint8) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if channel >= 0 && channel < len(s.duty) {
		s.duty[channel] = arb
	}
}

// TurnEncoder advances the rotary encoder count. Test and demo hook.
func (s *Simulator) TurnEncoder(steps uint8) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.encoder += steps
}

// Mode returns the raw mode register value.
func (s *Simulator) Mode() uint8 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.mode
}

// Duty returns the raw duty register value of a channel.
func (s *Simulator) Duty(channel int) uint8 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if channel < 0 || channel >= len(s.duty) {
		return 0
	}
	return s.duty[channel]
}

func (s *Simulator) channelOf(reg uint8) (int, bool) {
	if reg < s.cfg.ChannelBaseReg {
		return 0, false
	}
	ch := int(reg - s.cfg.ChannelBaseReg)
	if ch >= s.cfg.Channels {
		return 0, false
	}
	return ch, true
}

// ReadReg reads the value of the register at the given address. Undeclared
// addresses read as zero, like floating bus lines pulled low.
func (s *Simulator) ReadReg(reg uint8) (uint8, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return 0, errors.Wrap(bridge.BusError, "bus closed")
	}
	if reg > s.cfg.MaxRegister {
		return 0, errors.Wrapf(bridge.BusError, "register 0x%02X beyond max 0x%02X", reg, s.cfg.MaxRegister)
	}
	switch {
	case reg == s.cfg.ModeReg:
		return s.mode, nil
	case reg == s.cfg.FirmwareReg:
		return FirmwareVersion, nil
	case reg == s.cfg.EncoderReg:
		return s.encoder, nil
	default:
		if ch, ok := s.channelOf(reg); ok {
			return s.duty[ch], nil
		}
		return 0, nil
	}
}

// WriteReg writes a value to the register at the given address. Writes to
// registers without write behavior are accepted and ignored, as the real
// chip acks any in-range address at the protocol layer.
func (s *Simulator) WriteReg(reg uint8, value uint8) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return errors.Wrap(bridge.BusError, "bus closed")
	}
	if reg > s.cfg.MaxRegister {
		return errors.Wrapf(bridge.BusError, "register 0x%02X beyond max 0x%02X", reg, s.cfg.MaxRegister)
	}
	switch {
	case reg == s.cfg.ModeReg:
		s.mode = value & 0x01
	case reg == s.cfg.ResetReg:
		s.mode = 0
		s.encoder = 0
		for i := range s.duty {
			s.duty[i] = 0
		}
	default:
		if ch, ok := s.channelOf(reg); ok {
			s.duty[ch] = value
		}
	}
	return nil
}

// Close marks the bus handle as closed.
func (s *Simulator) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.closed = true
	return nil
}
