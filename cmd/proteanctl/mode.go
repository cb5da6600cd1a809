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

func newEnableCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enable",
		Short: "Switch the chip to generate mode (chip-global)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := opts.openController()
			if err != nil {
				return err
			}
			defer ctrl.Release()
			if err := ctrl.Enable(cmd.Context(), 0); err != nil {
				return err
			}
			cmd.Println("generate mode enabled")
			return nil
		},
	}
	return cmd
}

func newDisableCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disable",
		Short: "Switch the chip back to measure mode (chip-global)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := opts.openController()
			if err != nil {
				return err
			}
			// Close also disables, making detach safe even if the
			// explicit call below fails.
			defer ctrl.Close()
			if err := ctrl.Disable(cmd.Context(), 0); err != nil {
				return err
			}
			cmd.Println("measure mode restored")
			return nil
		},
	}
	return cmd
}
