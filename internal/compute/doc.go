// Package compute provides the backends that drive a full-raster render.
//
// Pixels of an escape-time render are independent, so a backend only has to visit
// every row exactly once:
//
//   - cpu: rows dealt round-robin to a bounded set of goroutines (errgroup)
//   - serial: one pass on the calling goroutine
//
// # Selecting a Backend
//
//	backend, err := compute.GetBackend("cpu", 0) // one worker per CPU
//	err = backend.Rows(ctx, height, func(y int) { ... })
//
// Both backends check ctx between rows and return its error when it is done.
package compute
