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
	"time"

	"github.com/spf13/cobra"
)

func newCaptureCommand(opts *rootOptions) *cobra.Command {
	var channel int
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Measure the duty cycle applied to a channel (disables generation)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := opts.openController()
			if err != nil {
				return err
			}
			defer ctrl.Close()
			// Force measure mode; an earlier owner may have left the
			// chip generating.
			if err := ctrl.Disable(cmd.Context(), channel); err != nil {
				return err
			}
			result, err := ctrl.Capture(cmd.Context(), channel, timeout)
			if err != nil {
				return err
			}
			cmd.Printf("channel %d duty %d ns period %d ns\n", channel, result.DutyNs, result.PeriodNs)
			return nil
		},
	}
	cmd.Flags().IntVar(&channel, "channel", 0, "Channel index")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Second, "Capture timeout (interface uniformity, the read is immediate)")
	return cmd
}
