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

import "github.com/pkg/errors"

var (
	// AccessDeniedError: the register is not legal for the requested
	// direction. Reported before any bus traffic.
	AccessDeniedError = errors.New("access denied")
	IsAccessDenied    = isErrorFunc(AccessDeniedError)
	// InvalidChannelError: channel index outside the declared range.
	InvalidChannelError = errors.New("invalid channel")
	IsInvalidChannel    = isErrorFunc(InvalidChannelError)
	// OutOfRangeError: value does not fit the register encoding.
	OutOfRangeError = errors.New("out of range")
	IsOutOfRange    = isErrorFunc(OutOfRangeError)
	// UnsupportedError: the hardware has no such capability.
	UnsupportedError = errors.New("unsupported")
	IsUnsupported    = isErrorFunc(UnsupportedError)
	// ModeMismatchError: operation is invalid for the current mode.
	ModeMismatchError = errors.New("mode mismatch")
	IsModeMismatch    = isErrorFunc(ModeMismatchError)

	maskAny = errors.WithStack
)

func isErrorFunc(typeOfError error) func(err error) bool {
	return func(err error) bool {
		return err == typeOfError || errors.Cause(err) == typeOfError
	}
}
