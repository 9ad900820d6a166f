package scene

import "errors"

var (
	ErrObserverRequired = errors.New("session observer is required")
	ErrPhysicsRequired  = errors.New("physics engine is required")
	ErrSceneNotRunning  = errors.New("scene is not running")
	ErrSessionFailed    = errors.New("ar session failed")
)
