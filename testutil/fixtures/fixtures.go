// Package fixtures holds client documents shared by test suites.
package fixtures

import (
	"os"
	"path/filepath"
	"testing"
)

// ClientsYAML is a client document with two environments.
const ClientsYAML = `
development:
  billing:
    protocol: http
    server: billing.internal
    port: 8080
    base_uri: /api/v2
    include_request_id_header: true
    timeout: 5s
    headers:
      x-tenant: acme
  crm:
    protocol: https
    server: crm.example.com
    http_basic_username: crm-user
    http_basic_password: crm-pass
    unprocessable_entity: decode
production:
  billing:
    protocol: https
    server: billing.example.com
`

// WriteClientsFile writes content as api_clients.yml in a temp directory and
// returns its path.
func WriteClientsFile(t testing.TB, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "api_clients.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write client document: %v", err)
	}
	return path
}
