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

import "github.com/pkg/errors"

const (
	nsPerSecond = 1000000000

	// The chip stores a duty cycle as an 8-bit count of "arbitrary units".
	// Nanoseconds are first divided into clock ticks using a denominator
	// held in tenths of a nanosecond (so a non-integer tick width such as
	// 12.5 ns survives integer arithmetic), then shifted down into units.
	scaleMul   = 10
	scaleShift = 10
	maxArbUnit = 255
)

// Codec converts between nanosecond duty cycles and the arbitrary-unit
// register encoding of the chip. All arithmetic is integer-only.
type Codec struct {
	denom int64 // tenths of a nanosecond per clock tick
}

// NewCodec derives the conversion constant from the chip clock frequency.
// The frequency must divide scaleMul*1e9 evenly; the 80 MHz production
// clock yields exactly 125.
func NewCodec(clockHz int64) (Codec, error) {
	if clockHz <= 0 {
		return Codec{}, errors.Errorf("clock frequency must be positive, got %d", clockHz)
	}
	if (scaleMul*nsPerSecond)%clockHz != 0 {
		return Codec{}, errors.Errorf("clock frequency %d Hz has no exact fixed-point scale", clockHz)
	}
	return Codec{denom: scaleMul * nsPerSecond / clockHz}, nil
}

// Encode converts a nanosecond duty cycle to arbitrary units. A value that
// does not fit the 8-bit register fails with OutOfRangeError; it is never
// clamped, since clamping would silently misrepresent the commanded duty.
func (c Codec) Encode(dutyNs int64) (uint8, error) {
	if dutyNs < 0 {
		return 0, errors.Wrapf(OutOfRangeError, "duty cycle %d ns is negative", dutyNs)
	}
	arb := (scaleMul * (dutyNs / c.denom)) >> scaleShift
	if arb > maxArbUnit {
		return 0, errors.Wrapf(OutOfRangeError, "duty cycle %d ns encodes to %d units, max is %d (%d ns)",
			dutyNs, arb, maxArbUnit, c.MaxDutyNs())
	}
	return uint8(arb), nil
}

// Decode converts arbitrary units back to nanoseconds. The round trip is
// lossy: Decode(Encode(d)) may fall short of d by up to one unit step
// (UnitNs) plus the truncation remainder of the tick division (less than
// denom nanoseconds).
func (c Codec) Decode(arb uint8) int64 {
	return ((int64(arb) << scaleShift) * c.denom) / scaleMul
}

// UnitNs returns the width of one arbitrary unit in nanoseconds.
func (c Codec) UnitNs() int64 {
	return (c.denom << scaleShift) / scaleMul
}

// MaxDutyNs returns the largest duty cycle Encode accepts.
func (c Codec) MaxDutyNs() int64 {
	maxTicks := ((maxArbUnit+1)<<scaleShift - 1) / scaleMul
	return (int64(maxTicks)+1)*c.denom - 1
}
