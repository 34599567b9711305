// Package requestid carries a per-call correlation id through context.Context.
//
// The id is set by the caller (typically inbound server middleware) and read by
// outbound clients that propagate it as the X-Request-Id header:
//
//	ctx = requestid.WithRequestID(ctx, requestid.New())
//	id, ok := requestid.FromContext(ctx)
package requestid
