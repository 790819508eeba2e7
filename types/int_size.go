package types

import "github.com/emberdb/ember/utils"

// IntSize is the platform-dependent size of a Go int, used throughout the
// wire format for page and log record layout.
var IntSize = utils.IntSize
