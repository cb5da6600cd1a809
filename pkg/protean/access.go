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

import (
	"github.com/pkg/errors"

	"github.com/proteandev/proteanpwm/pkg/config"
)

// AccessTable declares which register addresses are legal to read and which
// are legal to write. An address outside all declared ranges is neither.
// The table is immutable after construction; there is no register cache,
// every access is forwarded live to hardware.
type AccessTable struct {
	maxRegister uint8
	readRanges  []config.RegRange
	writeRanges []config.RegRange
}

// NewAccessTable builds an access table from the given inclusive address
// ranges. Ranges must be ascending, non-overlapping within their set and
// within [0, maxRegister].
func NewAccessTable(maxRegister uint8, readRanges, writeRanges []config.RegRange) (*AccessTable, error) {
	if err := validateRanges("read", readRanges, maxRegister); err != nil {
		return nil, err
	}
	if err := validateRanges("write", writeRanges, maxRegister); err != nil {
		return nil, err
	}
	return &AccessTable{
		maxRegister: maxRegister,
		readRanges:  append([]config.RegRange{}, readRanges...),
		writeRanges: append([]config.RegRange{}, writeRanges...),
	}, nil
}

func validateRanges(kind string, ranges []config.RegRange, maxRegister uint8) error {
	if len(ranges) == 0 {
		return errors.Errorf("%s ranges must not be empty", kind)
	}
	for i, r := range ranges {
		if r.First > r.Last {
			return errors.Errorf("%s range 0x%02X..0x%02X is reversed", kind, r.First, r.Last)
		}
		if r.Last > maxRegister {
			return errors.Errorf("%s range 0x%02X..0x%02X exceeds max register 0x%02X",
				kind, r.First, r.Last, maxRegister)
		}
		if i > 0 && ranges[i-1].Last >= r.First {
			return errors.Errorf("%s ranges 0x%02X..0x%02X and 0x%02X..0x%02X overlap or are out of order",
				kind, ranges[i-1].First, ranges[i-1].Last, r.First, r.Last)
		}
	}
	return nil
}

// IsReadable returns true when the register is legal to read.
func (t *AccessTable) IsReadable(reg uint8) bool {
	return contains(t.readRanges, reg)
}

// IsWritable returns true when the register is legal to write.
func (t *AccessTable) IsWritable(reg uint8) bool {
	return contains(t.writeRanges, reg)
}

// MaxRegister returns the highest address the table covers.
func (t *AccessTable) MaxRegister() uint8 {
	return t.maxRegister
}

func contains(ranges []config.RegRange, reg uint8) bool {
	for _, r := range ranges {
		if r.Contains(reg) {
			return true
		}
	}
	return false
}
