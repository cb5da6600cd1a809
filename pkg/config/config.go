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

package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"
)

const (
	// DefaultClockHz is the frequency of the internal clock of the chip.
	DefaultClockHz = 80000000
	// DefaultChannels is the number of PWM channels of the chip.
	DefaultChannels = 6
	// DefaultMaxRegister is the highest register address of the chip.
	DefaultMaxRegister = 0x0C
	// DefaultFramePeriodNs is the assumed frame period attached to every
	// capture result (50 Hz, standard for rc-servo class signals).
	DefaultFramePeriodNs = 20000000

	// Register addresses of the chip.
	DefaultModeReg        = 0x00
	DefaultChannelBaseReg = 0x01
	DefaultFirmwareReg    = 0x0A
	DefaultResetReg       = 0x0B
	DefaultEncoderReg     = 0x0C

	// DefaultBusDevice is the i2c-dev path the chip is normally found at.
	DefaultBusDevice = "/dev/i2c-1"
	// DefaultBusAddress is the factory i2c slave address of the chip.
	DefaultBusAddress = 0x1D
)

// RegRange is an inclusive range of register addresses.
type RegRange struct {
	First uint8 `json:"first"`
	Last  uint8 `json:"last"`
}

// Contains returns true when reg falls inside the range.
func (r RegRange) Contains(reg uint8) bool {
	return reg >= r.First && reg <= r.Last
}

// ChipConfig describes the register layout and timing constants of one chip.
// All fields are construction-time constants; nothing here is mutated after
// a controller has been attached.
type ChipConfig struct {
	ClockHz        int64      `json:"clockHz,omitempty"`
	Channels       int        `json:"channels,omitempty"`
	MaxRegister    uint8      `json:"maxRegister,omitempty"`
	ModeReg        uint8      `json:"modeReg,omitempty"`
	ChannelBaseReg uint8      `json:"channelBaseReg,omitempty"`
	FirmwareReg    uint8      `json:"firmwareReg,omitempty"`
	ResetReg       uint8      `json:"resetReg,omitempty"`
	EncoderReg     uint8      `json:"encoderReg,omitempty"`
	FramePeriodNs  int64      `json:"framePeriodNs,omitempty"`
	ReadRanges     []RegRange `json:"readRanges,omitempty"`
	WriteRanges    []RegRange `json:"writeRanges,omitempty"`
}

// BusConfig describes how to reach the chip.
type BusConfig struct {
	Device  string `json:"device,omitempty"`
	Address uint8  `json:"address,omitempty"`
}

// Config is the complete configuration consumed by proteanctl.
type Config struct {
	Bus  BusConfig  `json:"bus,omitempty"`
	Chip ChipConfig `json:"chip,omitempty"`
}

// NewDefaultChipConfig returns the register layout of the protean-pwm chip
// as documented in its datasheet.
func NewDefaultChipConfig() ChipConfig {
	return ChipConfig{
		ClockHz:        DefaultClockHz,
		Channels:       DefaultChannels,
		MaxRegister:    DefaultMaxRegister,
		ModeReg:        DefaultModeReg,
		ChannelBaseReg: DefaultChannelBaseReg,
		FirmwareReg:    DefaultFirmwareReg,
		ResetReg:       DefaultResetReg,
		EncoderReg:     DefaultEncoderReg,
		FramePeriodNs:  DefaultFramePeriodNs,
		ReadRanges: []RegRange{
			{First: 0x01, Last: 0x06}, // channel registers
			{First: 0x0A, Last: 0x0A}, // firmware version register
			{First: 0x0C, Last: 0x0C}, // rotary encoder register
		},
		WriteRanges: []RegRange{
			{First: 0x00, Last: 0x06}, // mode + channel registers
			{First: 0x0B, Last: 0x0B}, // reset pseudo register
		},
	}
}

// NewDefaultConfig returns the configuration for a chip at its factory
// address on the first i2c bus.
func NewDefaultConfig() Config {
	return Config{
		Bus: BusConfig{
			Device:  DefaultBusDevice,
			Address: DefaultBusAddress,
		},
		Chip: NewDefaultChipConfig(),
	}
}

// Validate checks the chip description for internal consistency.
func (c ChipConfig) Validate() error {
	if c.ClockHz <= 0 {
		return errors.Errorf("clockHz must be positive, got %d", c.ClockHz)
	}
	if c.Channels <= 0 {
		return errors.Errorf("channels must be positive, got %d", c.Channels)
	}
	if int(c.ChannelBaseReg)+c.Channels-1 > int(c.MaxRegister) {
		return errors.Errorf("channel registers 0x%02X..0x%02X exceed max register 0x%02X",
			c.ChannelBaseReg, int(c.ChannelBaseReg)+c.Channels-1, c.MaxRegister)
	}
	if c.FramePeriodNs <= 0 {
		return errors.Errorf("framePeriodNs must be positive, got %d", c.FramePeriodNs)
	}
	if len(c.ReadRanges) == 0 || len(c.WriteRanges) == 0 {
		return errors.New("read and write ranges must both be declared")
	}
	for _, r := range append(append([]RegRange{}, c.ReadRanges...), c.WriteRanges...) {
		if r.First > r.Last {
			return errors.Errorf("register range 0x%02X..0x%02X is reversed", r.First, r.Last)
		}
		if r.Last > c.MaxRegister {
			return errors.Errorf("register range 0x%02X..0x%02X exceeds max register 0x%02X",
				r.First, r.Last, c.MaxRegister)
		}
	}
	return nil
}

// Validate checks the bus settings.
func (c BusConfig) Validate() error {
	if c.Device == "" {
		return errors.New("bus device must be set")
	}
	return nil
}

// Validate checks the complete configuration.
func (c Config) Validate() error {
	if err := c.Bus.Validate(); err != nil {
		return errors.Wrap(err, "bus")
	}
	if err := c.Chip.Validate(); err != nil {
		return errors.Wrap(err, "chip")
	}
	return nil
}

// Load reads the configuration from the given path, leaving defaults in
// place for fields the file does not mention.
func (c *Config) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Wrapf(err, "parsing %s", path)
	}
	return nil
}

// Persist writes the configuration to the given path.
func (c Config) Persist(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WithStack(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}
