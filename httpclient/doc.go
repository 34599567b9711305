// Package httpclient is a JSON API client bound to one configured service.
//
// A Client is built from a Config, usually loaded from the environment
// section of config/api_clients.yml:
//
//	development:
//	  billing:
//	    protocol: https
//	    server: billing.internal
//	    base_uri: /api/v2
//	    include_request_id_header: true
//
//	client, err := httpclient.NewFromConfigFile("billing", "",
//	    httpclient.WithLogger(log),
//	    httpclient.WithHook(observability.NewLogHook(log)),
//	)
//
// Requests are resource oriented:
//
//	invoice, err := client.Find(ctx, "/invoices", 42, nil)
//	created, err := client.Create(ctx, "/invoices", map[string]any{"amount": 10}, nil)
//
// Successful responses are decoded literally into generic JSON values, an
// empty body yields true, and every other status returns an
// *errors.APIError whose Kind identifies the status class:
//
//	if apierrors.IsNotFound(err) { ... }
//
// The rest subpackage decodes into typed values instead.
package httpclient
