package service

import "errors"

// ErrProviderUnavailable marks failures reaching the stats API, so
// handlers can distinguish upstream outages from local storage faults.
var ErrProviderUnavailable = errors.New("stats provider unavailable")
