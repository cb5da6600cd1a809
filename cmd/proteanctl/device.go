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

package proteanctl

import (
	"github.com/spf13/cobra"
)

func newVersionCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Read the firmware version of the chip",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := opts.openController()
			if err != nil {
				return err
			}
			defer ctrl.Release()
			version, err := ctrl.FirmwareVersion(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Printf("firmware version 0x%02X\n", version)
			return nil
		},
	}
	return cmd
}

func newResetCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the chip (clears duty registers, reverts to measure mode)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := opts.openController()
			if err != nil {
				return err
			}
			defer ctrl.Release()
			if err := ctrl.Reset(cmd.Context()); err != nil {
				return err
			}
			cmd.Println("chip reset")
			return nil
		},
	}
	return cmd
}

func newEncoderCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encoder",
		Short: "Read the rotary encoder count of the chip",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := opts.openController()
			if err != nil {
				return err
			}
			defer ctrl.Release()
			count, err := ctrl.ReadEncoder(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Printf("encoder count %d\n", count)
			return nil
		},
	}
	return cmd
}
