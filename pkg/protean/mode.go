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

package protean

// Mode is the chip-global operating state. The numeric values double as the
// wire codes written to the mode register.
type Mode uint8

const (
	// ModeMeasure captures externally applied signals. Power-on default.
	ModeMeasure Mode = 0
	// ModeGenerate drives the configured duty cycles.
	ModeGenerate Mode = 1
)

// String returns a human readable name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeMeasure:
		return "measure"
	case ModeGenerate:
		return "generate"
	default:
		return "unknown"
	}
}

// modeMachine tracks the chip-global mode and issues the mode register
// writes that drive transitions. The only transitions are enable (to
// generate) and disable (to measure); nothing else may change the mode.
type modeMachine struct {
	regs    *regmap
	modeReg uint8
	current Mode
}

// enable transitions to generate mode. Already generating is a no-op
// success with zero bus writes.
func (m *modeMachine) enable() error {
	if m.current == ModeGenerate {
		return nil
	}
	if err := m.regs.write(m.modeReg, uint8(ModeGenerate)); err != nil {
		return maskAny(err)
	}
	m.current = ModeGenerate
	modeTransitionsTotal.WithLabelValues(ModeGenerate.String()).Inc()
	return nil
}

// disable transitions to measure mode. The write is issued regardless of
// the tracked state: the chip powers up measuring, but a fresh attach
// cannot know what an earlier owner left behind, so disable always forces
// the hardware to its safe listening default with exactly one write.
func (m *modeMachine) disable() error {
	if err := m.regs.write(m.modeReg, uint8(ModeMeasure)); err != nil {
		return maskAny(err)
	}
	m.current = ModeMeasure
	modeTransitionsTotal.WithLabelValues(ModeMeasure.String()).Inc()
	return nil
}
