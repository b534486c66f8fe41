//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "foodshop-backend"
	ConsumerName = "foodshop-web-client"

	StateUsersSeeded   = "default users are seeded"
	StateCatalogSeeded = "menus and categories are seeded"
	StateSessionValid  = "a valid session token exists"
	StateOrderMissing  = "no order exists for the dispatch date"
)

const (
	SessionToken = "pact-session-token"

	UserEmail    = "admin@foodshop.cl"
	UserPassword = "admin1234"

	MissingOrderDate = "2026-12-24"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the web client consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleMenuPayload provides stable menu data for pact interactions.
func ExampleMenuPayload() map[string]any {
	return map[string]any{
		"id":               1,
		"title":            "Menú lunes 31 de agosto",
		"description":      "Menú del día",
		"publication_date": "2026-08-31",
		"has_order":        0,
	}
}

// ExampleUserPayload provides the profile the login interaction returns.
func ExampleUserPayload() map[string]any {
	return map[string]any{
		"id":         1,
		"name":       "Administrador",
		"email":      UserEmail,
		"role":       "Admin",
		"permission": "Consolidado",
		"is_master":  true,
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
