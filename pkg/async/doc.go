// Package async runs independent calls concurrently and collects their
// results as typed futures.
//
//	health := async.Go(ctx, client.Health)
//	total := async.Go(ctx, countAttendees)
//	h, herr := health.Await(ctx)
//	n, nerr := total.Await(ctx)
//
// Each future reports its own error; one failing call does not cancel the
// others. Await returns early with ctx.Err() when the caller's context ends.
package async
