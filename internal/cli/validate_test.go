package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestRunValidationsBothValid(t *testing.T) {
	collFile := writeTestFile(t, "orders.json", `{
		"name": "orders-smoke",
		"items": [{"name": "Ping", "method": "GET", "url": "https://x.test/ping"}]
	}`)
	dataFile := writeTestFile(t, "bodies.json", `{
		"entries": [{"name": "Ping", "bodies": ["{}"]}]
	}`)

	var buf bytes.Buffer
	if !runValidations(&buf, true, collFile, dataFile) {
		t.Fatalf("Expected validation to pass, output:\n%s", buf.String())
	}

	out := buf.String()
	if !strings.Contains(out, `collection "orders-smoke", 1 items`) {
		t.Errorf("Expected collection summary line, got:\n%s", out)
	}
	if !strings.Contains(out, "1 entries") {
		t.Errorf("Expected data summary line, got:\n%s", out)
	}
	if strings.Count(out, "✓") != 2 {
		t.Errorf("Expected two success icons, got:\n%s", out)
	}
}

func TestRunValidationsBadCollection(t *testing.T) {
	collFile := writeTestFile(t, "orders.json", `{"items": []}`)

	var buf bytes.Buffer
	if runValidations(&buf, true, collFile, "") {
		t.Fatalf("Expected validation to fail, output:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "✗") {
		t.Errorf("Expected an error icon, got:\n%s", buf.String())
	}
}

func TestRunValidationsBadDataPassesCollection(t *testing.T) {
	collFile := writeTestFile(t, "orders.json", `{
		"name": "orders-smoke",
		"items": [{"name": "Ping", "method": "GET", "url": "https://x.test/ping"}]
	}`)
	dataFile := writeTestFile(t, "bodies.json", `{"entries": [{"name": "Ping"}]}`)

	var buf bytes.Buffer
	if runValidations(&buf, true, collFile, dataFile) {
		t.Fatalf("Expected validation to fail, output:\n%s", buf.String())
	}

	out := buf.String()
	if !strings.Contains(out, "✓") || !strings.Contains(out, "✗") {
		t.Errorf("Expected one pass and one failure, got:\n%s", out)
	}
}

func TestRunValidationsMissingFile(t *testing.T) {
	var buf bytes.Buffer
	if runValidations(&buf, true, filepath.Join(t.TempDir(), "nope.json"), "") {
		t.Fatalf("Expected validation to fail for a missing file")
	}
}
