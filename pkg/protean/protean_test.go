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
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/proteandev/proteanpwm/pkg/bridge"
	"github.com/proteandev/proteanpwm/pkg/config"
)

func newTestController(t *testing.T, cfg config.ChipConfig) (*Controller, *bridge.Recorder) {
	t.Helper()
	rec := bridge.NewRecorder()
	ctrl, err := Attach(rec, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	return ctrl, rec
}

func TestAttachValidation(t *testing.T) {
	cfg := config.NewDefaultChipConfig()
	cfg.ClockHz = 0
	if _, err := Attach(bridge.NewRecorder(), cfg, zerolog.Nop()); err == nil {
		t.Errorf("Attach with zero clock: expected error, got none")
	}

	cfg = config.NewDefaultChipConfig()
	cfg.ReadRanges = nil
	if _, err := Attach(bridge.NewRecorder(), cfg, zerolog.Nop()); err == nil {
		t.Errorf("Attach without read ranges: expected error, got none")
	}
}

func TestInvalidChannel(t *testing.T) {
	ctx := context.Background()
	ctrl, rec := newTestController(t, config.NewDefaultChipConfig())

	for _, channel := range []int{-1, 6, 100} {
		if err := ctrl.Configure(ctx, channel, 1500000, 0); !IsInvalidChannel(err) {
			t.Errorf("Configure(channel=%d): expected InvalidChannelError, got %v", channel, err)
		}
		if _, err := ctrl.Capture(ctx, channel, time.Second); !IsInvalidChannel(err) {
			t.Errorf("Capture(channel=%d): expected InvalidChannelError, got %v", channel, err)
		}
		if err := ctrl.Enable(ctx, channel); !IsInvalidChannel(err) {
			t.Errorf("Enable(channel=%d): expected InvalidChannelError, got %v", channel, err)
		}
		if err := ctrl.Disable(ctx, channel); !IsInvalidChannel(err) {
			t.Errorf("Disable(channel=%d): expected InvalidChannelError, got %v", channel, err)
		}
	}
	if got := len(rec.Ops()); got != 0 {
		t.Errorf("invalid channels caused %d bus operations, expected none", got)
	}
}

func TestSetPolarity(t *testing.T) {
	ctx := context.Background()
	ctrl, rec := newTestController(t, config.NewDefaultChipConfig())

	for _, polarity := range []Polarity{PolarityNormal, PolarityInverted} {
		for channel := 0; channel < ctrl.Channels(); channel++ {
			if err := ctrl.SetPolarity(ctx, channel, polarity); !IsUnsupported(err) {
				t.Errorf("SetPolarity(%d, %s): expected UnsupportedError, got %v", channel, polarity, err)
			}
		}
	}
	if got := len(rec.Ops()); got != 0 {
		t.Errorf("SetPolarity caused %d bus operations, expected none", got)
	}
}

func TestEnableIdempotent(t *testing.T) {
	ctx := context.Background()
	cfg := config.NewDefaultChipConfig()
	ctrl, rec := newTestController(t, cfg)

	if got := ctrl.Mode(); got != ModeMeasure {
		t.Fatalf("fresh controller mode %s, expected measure", got)
	}
	if err := ctrl.Enable(ctx, 0); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	ops := rec.Ops()
	if len(ops) != 1 || !ops[0].Write || ops[0].Reg != cfg.ModeReg || ops[0].Value != uint8(ModeGenerate) {
		t.Fatalf("Enable issued %v, expected one write of generate code to mode register", ops)
	}
	if got := ctrl.Mode(); got != ModeGenerate {
		t.Fatalf("mode after Enable is %s, expected generate", got)
	}

	// Re-enabling an already generating chip is a no-op success.
	if err := ctrl.Enable(ctx, 3); err != nil {
		t.Fatalf("second Enable failed: %v", err)
	}
	if got := rec.Writes(); got != 1 {
		t.Errorf("second Enable issued %d extra writes, expected none", got-1)
	}
	if got := ctrl.Mode(); got != ModeGenerate {
		t.Errorf("mode after second Enable is %s, expected generate", got)
	}
}

func TestDisableAlwaysWrites(t *testing.T) {
	ctx := context.Background()
	cfg := config.NewDefaultChipConfig()
	ctrl, rec := newTestController(t, cfg)

	// Disable forces the hardware to measure mode even when the tracked
	// state already is measure: a fresh attach cannot trust the chip.
	if err := ctrl.Disable(ctx, 0); err != nil {
		t.Fatalf("Disable failed: %v", err)
	}
	ops := rec.Ops()
	if len(ops) != 1 || !ops[0].Write || ops[0].Reg != cfg.ModeReg || ops[0].Value != uint8(ModeMeasure) {
		t.Fatalf("Disable issued %v, expected one write of measure code to mode register", ops)
	}

	if err := ctrl.Enable(ctx, 0); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	if err := ctrl.Disable(ctx, 0); err != nil {
		t.Fatalf("Disable after Enable failed: %v", err)
	}
	if got := ctrl.Mode(); got != ModeMeasure {
		t.Errorf("mode after Disable is %s, expected measure", got)
	}
	if got := rec.Writes(); got != 3 {
		t.Errorf("recorded %d writes, expected 3 (disable, enable, disable)", got)
	}
}

func TestConfigure(t *testing.T) {
	ctx := context.Background()
	cfg := config.NewDefaultChipConfig()
	ctrl, rec := newTestController(t, cfg)

	// Configure while measuring is rejected before any bus traffic.
	if err := ctrl.Configure(ctx, 0, 1500000, 0); !IsModeMismatch(err) {
		t.Fatalf("Configure in measure mode: expected ModeMismatchError, got %v", err)
	}
	if got := len(rec.Ops()); got != 0 {
		t.Fatalf("rejected Configure caused %d bus operations, expected none", got)
	}

	if err := ctrl.Enable(ctx, 0); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	if err := ctrl.Configure(ctx, 2, 1280000, 0); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	ops := rec.Ops()
	last := ops[len(ops)-1]
	if !last.Write || last.Reg != 0x03 || last.Value != 100 {
		t.Fatalf("Configure issued %+v, expected write of unit 100 to register 0x03", last)
	}

	// The explicit frame period is accepted, anything else is not.
	if err := ctrl.Configure(ctx, 2, 1280000, cfg.FramePeriodNs); err != nil {
		t.Errorf("Configure with frame period: unexpected error: %v", err)
	}
	if err := ctrl.Configure(ctx, 2, 1280000, 10000000); !IsUnsupported(err) {
		t.Errorf("Configure with foreign period: expected UnsupportedError, got %v", err)
	}

	// An out of range duty cycle is rejected, never clamped.
	writes := rec.Writes()
	if err := ctrl.Configure(ctx, 2, 50000000, 0); !IsOutOfRange(err) {
		t.Errorf("Configure with huge duty: expected OutOfRangeError, got %v", err)
	}
	if got := rec.Writes(); got != writes {
		t.Errorf("rejected Configure caused %d extra writes, expected none", got-writes)
	}
}

func TestConfigureAccessDenied(t *testing.T) {
	ctx := context.Background()
	cfg := config.NewDefaultChipConfig()
	// A table that only permits the mode register: channel writes must be
	// rejected before they reach the bus.
	cfg.WriteRanges = []config.RegRange{{First: 0x00, Last: 0x00}}
	ctrl, rec := newTestController(t, cfg)

	if err := ctrl.Enable(ctx, 0); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	writes := rec.Writes()
	if err := ctrl.Configure(ctx, 0, 1500000, 0); !IsAccessDenied(err) {
		t.Fatalf("Configure: expected AccessDeniedError, got %v", err)
	}
	if got := rec.Writes(); got != writes {
		t.Errorf("denied Configure caused %d extra writes, expected none", got-writes)
	}
}

func TestCapture(t *testing.T) {
	ctx := context.Background()
	cfg := config.NewDefaultChipConfig()
	ctrl, rec := newTestController(t, cfg)

	rec.Preload(0x01, 117)
	result, err := ctrl.Capture(ctx, 0, time.Second)
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if result.DutyNs != 1497600 {
		t.Errorf("Capture duty %d ns, expected 1497600", result.DutyNs)
	}
	if result.PeriodNs != cfg.FramePeriodNs {
		t.Errorf("Capture period %d ns, expected the fixed frame period %d", result.PeriodNs, cfg.FramePeriodNs)
	}
	if got := rec.Reads(); got != 1 {
		t.Errorf("Capture issued %d reads, expected exactly one", got)
	}

	// The assumed period is attached regardless of the raw register value.
	rec.Preload(0x02, 0)
	result, err = ctrl.Capture(ctx, 1, time.Second)
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if result.DutyNs != 0 || result.PeriodNs != cfg.FramePeriodNs {
		t.Errorf("Capture got (%d, %d), expected (0, %d)", result.DutyNs, result.PeriodNs, cfg.FramePeriodNs)
	}

	// Capturing while generating is rejected before any bus traffic.
	if err := ctrl.Enable(ctx, 0); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	reads := rec.Reads()
	if _, err := ctrl.Capture(ctx, 0, time.Second); !IsModeMismatch(err) {
		t.Errorf("Capture in generate mode: expected ModeMismatchError, got %v", err)
	}
	if got := rec.Reads(); got != reads {
		t.Errorf("rejected Capture caused %d extra reads, expected none", got-reads)
	}
}

func TestCaptureAccessDenied(t *testing.T) {
	ctx := context.Background()
	cfg := config.NewDefaultChipConfig()
	// A table without the channel registers in the read set.
	cfg.ReadRanges = []config.RegRange{{First: 0x0A, Last: 0x0A}}
	ctrl, rec := newTestController(t, cfg)

	if _, err := ctrl.Capture(ctx, 0, time.Second); !IsAccessDenied(err) {
		t.Fatalf("Capture: expected AccessDeniedError, got %v", err)
	}
	if got := rec.Reads(); got != 0 {
		t.Errorf("denied Capture caused %d reads, expected none", got)
	}
}

func TestFirmwareResetEncoder(t *testing.T) {
	ctx := context.Background()
	cfg := config.NewDefaultChipConfig()
	ctrl, rec := newTestController(t, cfg)

	rec.Preload(cfg.FirmwareReg, 0x21)
	version, err := ctrl.FirmwareVersion(ctx)
	if err != nil {
		t.Fatalf("FirmwareVersion failed: %v", err)
	}
	if version != 0x21 {
		t.Errorf("FirmwareVersion got 0x%02X, expected 0x21", version)
	}

	rec.Preload(cfg.EncoderReg, 42)
	count, err := ctrl.ReadEncoder(ctx)
	if err != nil {
		t.Fatalf("ReadEncoder failed: %v", err)
	}
	if count != 42 {
		t.Errorf("ReadEncoder got %d, expected 42", count)
	}

	// Reset reverts the chip to measure mode; the tracked state follows.
	if err := ctrl.Enable(ctx, 0); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	if err := ctrl.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	ops := rec.Ops()
	last := ops[len(ops)-1]
	if !last.Write || last.Reg != cfg.ResetReg {
		t.Errorf("Reset issued %+v, expected a write to the reset register", last)
	}
	if got := ctrl.Mode(); got != ModeMeasure {
		t.Errorf("mode after Reset is %s, expected measure", got)
	}
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	cfg := config.NewDefaultChipConfig()
	ctrl, rec := newTestController(t, cfg)

	if err := ctrl.Enable(ctx, 0); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	if err := ctrl.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	ops := rec.Ops()
	last := ops[len(ops)-1]
	if !last.Write || last.Reg != cfg.ModeReg || last.Value != uint8(ModeMeasure) {
		t.Errorf("Close issued %+v as final op, expected the measure code on the mode register", last)
	}
	if !rec.Closed() {
		t.Errorf("Close did not release the bus handle")
	}
}

func TestBusErrorPropagation(t *testing.T) {
	ctx := context.Background()
	ctrl, rec := newTestController(t, config.NewDefaultChipConfig())

	rec.FailWith(bridge.BusError)
	if err := ctrl.Enable(ctx, 0); !bridge.IsBusError(err) {
		t.Fatalf("Enable: expected bus error to propagate, got %v", err)
	}
	// A failed transition leaves the tracked mode untouched.
	if got := ctrl.Mode(); got != ModeMeasure {
		t.Errorf("mode after failed Enable is %s, expected measure", got)
	}

	if _, err := ctrl.Capture(ctx, 0, time.Second); !bridge.IsBusError(err) {
		t.Errorf("Capture: expected bus error to propagate, got %v", err)
	}

	rec.FailWith(nil)
	if err := ctrl.Enable(ctx, 0); err != nil {
		t.Errorf("Enable after bus recovery failed: %v", err)
	}
}
