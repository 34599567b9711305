// Package observability instruments apikit requests.
//
// Every request a client sends produces an Event which is passed to a Hook
// before the request goes out and after the response is classified. The
// package ships hooks for structured logs, OpenTelemetry metrics and
// OpenTelemetry traces:
//
//	hook := observability.Hooks{
//	    observability.NewLogHook(log),
//	    observability.NewTracingHook(nil),
//	}
//	client, err := httpclient.New(cfg, httpclient.WithHook(hook))
//
// Exporters:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("my-service"), log)
//	defer tp.Shutdown(ctx)
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("my-service"), log)
//	defer mp.Shutdown(ctx)
package observability
