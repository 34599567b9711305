// Package rest decodes httpclient responses into typed values.
//
// The functions mirror the Client operations and share its request
// building, instrumentation and status classification:
//
//	type Invoice struct {
//	    ID     int    `json:"id"`
//	    Status string `json:"status"`
//	}
//
//	resp, err := rest.Find[Invoice](ctx, client, "/invoices", 42, nil)
//	if rest.IsNotFound(err) { ... }
//
//	created, err := rest.Create[Invoice](ctx, client, "/invoices", NewInvoice{Amount: 10}, nil)
package rest
