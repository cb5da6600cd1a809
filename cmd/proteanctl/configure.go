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

func newConfigureCommand(opts *rootOptions) *cobra.Command {
	var channel int
	var dutyNs, periodNs int64
	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Set the duty cycle of a channel (enables generation)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := opts.openController()
			if err != nil {
				return err
			}
			// Keep the chip generating after exit.
			defer ctrl.Release()
			if err := ctrl.Enable(cmd.Context(), channel); err != nil {
				return err
			}
			if err := ctrl.Configure(cmd.Context(), channel, dutyNs, periodNs); err != nil {
				return err
			}
			cmd.Printf("channel %d driving %d ns\n", channel, dutyNs)
			return nil
		},
	}
	cmd.Flags().IntVar(&channel, "channel", 0, "Channel index")
	cmd.Flags().Int64Var(&dutyNs, "duty-ns", 0, "Duty cycle in nanoseconds")
	cmd.Flags().Int64Var(&periodNs, "period-ns", 0, "Period in nanoseconds (0 or the fixed frame period)")
	return cmd
}
