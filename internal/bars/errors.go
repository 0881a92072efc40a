// SPDX-License-Identifier: MIT
package bars

import "errors"

// ErrInvalidGeometry is returned when a bar cannot be built for the surface.
var ErrInvalidGeometry = errors.New("invalid bar geometry")
