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

// Package proteanctl implements the operator CLI for the protean-pwm chip.
package proteanctl

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/proteandev/proteanpwm/pkg/bridge"
	"github.com/proteandev/proteanpwm/pkg/config"
	"github.com/proteandev/proteanpwm/pkg/protean"
	"github.com/proteandev/proteanpwm/pkg/simulator"
)

type rootOptions struct {
	cfg        config.Config
	configPath string
	simulate   bool
	logLevel   string
	log        zerolog.Logger
}

// NewRootCommand builds the proteanctl command tree.
func NewRootCommand(out io.Writer) *cobra.Command {
	opts := &rootOptions{
		cfg: config.NewDefaultConfig(),
	}
	cmd := &cobra.Command{
		Use:           "proteanctl",
		Short:         "Control protean-pwm logger chips",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := zerolog.ParseLevel(opts.logLevel)
			if err != nil {
				return err
			}
			opts.log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).
				With().Timestamp().Logger()
			if opts.configPath != "" {
				if err := opts.cfg.Load(opts.configPath); err != nil {
					return err
				}
			}
			return opts.cfg.Validate()
		},
	}
	cmd.SetOut(out)

	f := cmd.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "Path to a YAML configuration file")
	f.StringVar(&opts.cfg.Bus.Device, "device", opts.cfg.Bus.Device, "i2c-dev path of the bus")
	f.Uint8Var(&opts.cfg.Bus.Address, "addr", opts.cfg.Bus.Address, "i2c slave address of the chip")
	f.BoolVar(&opts.simulate, "simulate", false, "Use a simulated chip instead of hardware")
	f.StringVar(&opts.logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")

	cmd.AddCommand(newConfigureCommand(opts))
	cmd.AddCommand(newCaptureCommand(opts))
	cmd.AddCommand(newEnableCommand(opts))
	cmd.AddCommand(newDisableCommand(opts))
	cmd.AddCommand(newVersionCommand(opts))
	cmd.AddCommand(newResetCommand(opts))
	cmd.AddCommand(newEncoderCommand(opts))
	return cmd
}

// openController attaches a controller to the configured bus, or to a fresh
// simulated chip when --simulate is given. The caller must Close it.
func (o *rootOptions) openController() (*protean.Controller, error) {
	var bus bridge.RegisterBus
	if o.simulate {
		bus = simulator.New(o.cfg.Chip)
	} else {
		var err error
		bus, err = bridge.NewI2CBus(o.cfg.Bus.Device, o.cfg.Bus.Address, o.log)
		if err != nil {
			return nil, err
		}
	}
	ctrl, err := protean.Attach(bus, o.cfg.Chip, o.log)
	if err != nil {
		bus.Close()
		return nil, err
	}
	return ctrl, nil
}
