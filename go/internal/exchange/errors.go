package exchange

import "errors"

// ErrInvalidImport is returned when an imported document lacks required structure.
var ErrInvalidImport = errors.New("invalid import")
