// SPDX-License-Identifier: EPL-2.0

package audxtract

import "errors"

// ErrInvalidConfig is wrapped by every Config validation failure.
var ErrInvalidConfig = errors.New("invalid config")
