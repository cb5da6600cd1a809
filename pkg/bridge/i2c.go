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
	"os"
	"sync"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

const (
	// From /usr/include/linux/i2c-dev.h:
	// ioctl signals
	i2cSlave = 0x0703
	i2cFuncs = 0x0705
	i2cSmbus = 0x0720

	// From /usr/include/linux/i2c.h:
	// Read/write markers
	i2cSmbusRead  = 1
	i2cSmbusWrite = 0
	// Adapter functionality
	i2cFuncSmbusReadByteData  = 0x00080000
	i2cFuncSmbusWriteByteData = 0x00100000
	// Transaction types
	i2cSmbusByteData = 2
)

type i2cSmbusIoctlData struct {
	readWrite byte
	command   byte
	size      uint32
	data      uintptr
}

// i2cBus talks SMBus byte-data transactions to a single slave on a Linux
// i2c-dev adapter. The mutex serializes access to the file handle.
type i2cBus struct {
	mutex   sync.Mutex
	log     zerolog.Logger
	file    *os.File
	address uint8
	funcs   uint64 // adapter functionality mask
}

// NewI2CBus opens the i2c-dev adapter at the given location and binds it to
// the slave at the given address.
func NewI2CBus(location string, address uint8, log zerolog.Logger) (RegisterBus, error) {
	b := &i2cBus{
		log:     log.With().Str("component", "i2c").Logger(),
		address: address,
	}

	var err error
	if b.file, err = os.OpenFile(location, os.O_RDWR, os.ModeDevice); err != nil {
		return nil, maskAny(err)
	}
	if err := b.queryFunctionality(); err != nil {
		b.file.Close()
		return nil, err
	}
	if b.funcs&i2cFuncSmbusReadByteData == 0 || b.funcs&i2cFuncSmbusWriteByteData == 0 {
		b.file.Close()
		return nil, errors.Wrapf(BusError, "adapter %s does not support SMBus byte data", location)
	}
	if err := b.setAddress(address); err != nil {
		b.file.Close()
		return nil, err
	}
	b.log.Debug().Str("location", location).Uint8("address", address).Msg("i2c bus opened")

	return b, nil
}

func (b *i2cBus) queryFunctionality() error {
	_, _, errno := unix.Syscall(
		unix.SYS_IOCTL,
		b.file.Fd(),
		i2cFuncs,
		uintptr(unsafe.Pointer(&b.funcs)),
	)
	if errno != 0 {
		return errors.Wrapf(BusError, "querying functionality failed with errno %v", errno)
	}
	return nil
}

func (b *i2cBus) setAddress(address uint8) error {
	_, _, errno := unix.Syscall(
		unix.SYS_IOCTL,
		b.file.Fd(),
		i2cSlave,
		uintptr(address),
	)
	if errno != 0 {
		return errors.Wrapf(BusError, "setting address 0x%02X failed with errno %v", address, errno)
	}
	return nil
}

func (b *i2cBus) smbusAccess(readWrite, command byte, size uint32, data uintptr) error {
	payload := i2cSmbusIoctlData{
		readWrite: readWrite,
		command:   command,
		size:      size,
		data:      data,
	}
	_, _, errno := unix.Syscall(
		unix.SYS_IOCTL,
		b.file.Fd(),
		i2cSmbus,
		uintptr(unsafe.Pointer(&payload)),
	)
	if errno != 0 {
		return errors.Wrapf(BusError, "smbus access failed with errno %v", errno)
	}
	return nil
}

// ReadReg reads the value of the register at the given address.
func (b *i2cBus) ReadReg(reg uint8) (uint8, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	var value uint8
	busReadsTotal.Inc()
	if err := b.smbusAccess(i2cSmbusRead, reg, i2cSmbusByteData, uintptr(unsafe.Pointer(&value))); err != nil {
		busErrorsTotal.Inc()
		return 0, errors.Wrapf(err, "reading register 0x%02X", reg)
	}
	return value, nil
}

// WriteReg writes a value to the register at the given address.
func (b *i2cBus) WriteReg(reg uint8, value uint8) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	busWritesTotal.Inc()
	if err := b.smbusAccess(i2cSmbusWrite, reg, i2cSmbusByteData, uintptr(unsafe.Pointer(&value))); err != nil {
		busErrorsTotal.Inc()
		return errors.Wrapf(err, "writing 0x%02X to register 0x%02X", value, reg)
	}
	return nil
}

// Close releases the adapter file handle.
func (b *i2cBus) Close() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	return maskAny(b.file.Close())
}
