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
	"github.com/proteandev/proteanpwm/pkg/metrics"
)

const (
	subSystem = "controller"
)

var (
	// Number of register accesses rejected by the access table
	accessDeniedTotal = metrics.MustRegisterCounterVec(subSystem,
		"access_denied_total",
		"Number of register accesses rejected by the access table",
		"direction")
	// Number of mode transitions written to the chip
	modeTransitionsTotal = metrics.MustRegisterCounterVec(subSystem,
		"mode_transitions_total",
		"Number of mode transitions written to the chip",
		"mode")
	// Number of successful channel configurations
	configuresTotal = metrics.MustRegisterCounter(subSystem,
		"configures_total",
		"Number of successful channel configurations")
	// Number of successful duty cycle captures
	capturesTotal = metrics.MustRegisterCounter(subSystem,
		"captures_total",
		"Number of successful duty cycle captures")
)
