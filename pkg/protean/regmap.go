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

	"github.com/proteandev/proteanpwm/pkg/bridge"
)

// regmap couples the bus with the access table: every read or write is
// checked against the table before it may reach the transport. A denied
// access produces zero bus traffic.
type regmap struct {
	bus    bridge.RegisterBus
	access *AccessTable
}

func (r *regmap) read(reg uint8) (uint8, error) {
	if !r.access.IsReadable(reg) {
		accessDeniedTotal.WithLabelValues("read").Inc()
		return 0, errors.Wrapf(AccessDeniedError, "register 0x%02X is not readable", reg)
	}
	value, err := r.bus.ReadReg(reg)
	if err != nil {
		return 0, maskAny(err)
	}
	return value, nil
}

func (r *regmap) write(reg uint8, value uint8) error {
	if !r.access.IsWritable(reg) {
		accessDeniedTotal.WithLabelValues("write").Inc()
		return errors.Wrapf(AccessDeniedError, "register 0x%02X is not writable", reg)
	}
	if err := r.bus.WriteReg(reg, value); err != nil {
		return maskAny(err)
	}
	return nil
}

// channelReg resolves the duty register of a channel. The channel index is
// validated before any address arithmetic.
func channelReg(base uint8, channel, channels int) (uint8, error) {
	if channel < 0 || channel >= channels {
		return 0, errors.Wrapf(InvalidChannelError, "channel must be in 0..%d range, got %d",
			channels-1, channel)
	}
	return base + uint8(channel), nil
}
