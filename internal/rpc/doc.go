// Package rpc correlates JSON-RPC requests with their responses.
//
// A Correlator allocates request ids, registers each request in the
// transport's pending table before writing it, and waits for the matching
// response, a timeout, or context cancellation. Responses may arrive in any
// order; each caller receives exactly the outcome for its own id.
//
// Example usage:
//
//	sup := subprocess.NewSupervisor(log, options)
//	sup.Start(ctx)
//
//	correlator := rpc.NewCorrelator(log, sup, 10*time.Second)
//	result, err := correlator.Send(ctx, "tools/list", nil)
package rpc
