// Package testutil provides test doubles for code that talks to remote APIs.
//
// APIServer is a gin-backed httptest server that records every request and
// answers with canned replies. RoundTripFunc replaces the transport of a
// client without any network at all.
//
//	srv := testutil.NewAPIServer()
//	testutil.T(t).Setup(srv)
//	srv.On(http.MethodGet, "/v1/users/1", testutil.JSON(http.StatusOK, `{"id": 1}`))
//
// Both APIServer and any other TestComponent can be grouped in a Manager and
// reset between test cases.
package testutil
