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
	"github.com/proteandev/proteanpwm/pkg/metrics"
)

const (
	subSystem = "bridge"
)

var (
	// Total number of register reads issued on the bus
	busReadsTotal = metrics.MustRegisterCounter(subSystem,
		"reads_total",
		"Total number of register reads issued on the bus")
	// Total number of register writes issued on the bus
	busWritesTotal = metrics.MustRegisterCounter(subSystem,
		"writes_total",
		"Total number of register writes issued on the bus")
	// Total number of failed bus operations
	busErrorsTotal = metrics.MustRegisterCounter(subSystem,
		"errors_total",
		"Total number of failed bus operations")
)
