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

package bridge

import (
	"sync"

	"github.com/pkg/errors"
)

// Op is one recorded bus operation.
type Op struct {
	Write bool
	Reg   uint8
	Value uint8
}

// Recorder is an in-memory RegisterBus that records every operation issued
// on it. It backs tests that need to count or replay bus traffic.
type Recorder struct {
	mutex  sync.Mutex
	regs   map[uint8]uint8
	ops    []Op
	fail   error
	closed bool
}

// NewRecorder creates an empty recording bus. All registers read as zero
// until written or preloaded.
func NewRecorder() *Recorder {
	return &Recorder{
		regs: make(map[uint8]uint8),
	}
}

// Preload sets a register value without recording an operation.
func (r *Recorder) Preload(reg, value uint8) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.regs[reg] = value
}

// FailWith makes every subsequent operation fail with the given error.
// Passing nil restores normal operation.
func (r *Recorder) FailWith(err error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.fail = err
}

// Ops returns a copy of all recorded operations in issue order.
func (r *Recorder) Ops() []Op {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return append([]Op{}, r.ops...)
}

// Reads returns the number of recorded read operations.
func (r *Recorder) Reads() int {
	return r.count(false)
}

// Writes returns the number of recorded write operations.
func (r *Recorder) Writes() int {
	return r.count(true)
}

func (r *Recorder) count(write bool) int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	n := 0
	for _, op := range r.ops {
		if op.Write == write {
			n++
		}
	}
	return n
}

// Value returns the current value of a register.
func (r *Recorder) Value(reg uint8) uint8 {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.regs[reg]
}

// Closed returns true when the bus handle has been closed.
func (r *Recorder) Closed() bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.closed
}

// ReadReg reads the value of the register at the given address.
func (r *Recorder) ReadReg(reg uint8) (uint8, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.fail != nil {
		return 0, maskAny(r.fail)
	}
	r.ops = append(r.ops, Op{Write: false, Reg: reg})
	return r.regs[reg], nil
}

// WriteReg writes a value to the register at the given address.
func (r *Recorder) WriteReg(reg uint8, value uint8) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.fail != nil {
		return maskAny(r.fail)
	}
	r.ops = append(r.ops, Op{Write: true, Reg: reg, Value: value})
	r.regs[reg] = value
	return nil
}

// Close marks the bus handle as closed.
func (r *Recorder) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.closed {
		return errors.Wrap(BusError, "bus already closed")
	}
	r.closed = true
	return nil
}
