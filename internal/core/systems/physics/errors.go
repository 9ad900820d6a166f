package physics

import "errors"

var ErrUnknownPolicy = errors.New("unknown zero distance policy")
