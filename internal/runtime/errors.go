package runtime

import "errors"

// ErrProcessorNotRegistered is returned when a dispatch names a processor
// with no registered body. The registry is explicit and restrict+error-loud
// (§4.3.S): an unknown name is a configuration bug, never silently skipped.
var ErrProcessorNotRegistered = errors.New("runtime: processor not registered")

// ErrFlowHydrationFailed is returned when the owning Flow row is still not
// visible after exhausting the hydration retry budget.
var ErrFlowHydrationFailed = errors.New("runtime: flow hydration failed")
