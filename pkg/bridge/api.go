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

// Package bridge provides byte-level access to register-addressed devices.
package bridge

import "github.com/pkg/errors"

// RegisterBus is the transport used to reach a single register-addressed
// device: 8-bit register addresses, 8-bit values, one synchronous operation
// in flight per call. A controller owns its bus handle exclusively for its
// lifetime.
type RegisterBus interface {
	// ReadReg reads the value of the register at the given address.
	ReadReg(reg uint8) (uint8, error)
	// WriteReg writes a value to the register at the given address.
	WriteReg(reg uint8, value uint8) error
	// Close releases the bus handle.
	Close() error
}

var (
	// BusError is the cause of every transport-level failure reported by
	// this package. Callers must not interpret it beyond matching.
	BusError   = errors.New("bus failure")
	IsBusError = isErrorFunc(BusError)

	maskAny = errors.WithStack
)

func isErrorFunc(typeOfError error) func(err error) bool {
	return func(err error) bool {
		return err == typeOfError || errors.Cause(err) == typeOfError
	}
}
