package payload

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validJSON = `{
	"entries": [
		{
			"name": "Create",
			"bodies": ["{\"qty\":1}", "{\"qty\":2}"]
		},
		{
			"name": "Update",
			"bodies": ["{\"status\":\"open\"}"]
		}
	]
}`

func TestSelectBodyRotation(t *testing.T) {
	entry := Entry{
		Name:   "Create",
		Bodies: []string{"first", "second"},
	}

	// Rotation is (userIndex-1) mod bodyCount: users 1 and 3 share the
	// first body, user 2 gets the second.
	tests := []struct {
		userIndex int
		want      string
	}{
		{userIndex: 1, want: "first"},
		{userIndex: 2, want: "second"},
		{userIndex: 3, want: "first"},
		{userIndex: 4, want: "second"},
		{userIndex: 7, want: "first"},
	}

	for _, tt := range tests {
		if got := entry.SelectBody(tt.userIndex); got != tt.want {
			t.Errorf("SelectBody(%d) = %q, want %q", tt.userIndex, got, tt.want)
		}
	}
}

func TestSelectBodySingleCandidate(t *testing.T) {
	entry := Entry{Name: "Update", Bodies: []string{"only"}}
	for user := 1; user <= 5; user++ {
		if got := entry.SelectBody(user); got != "only" {
			t.Errorf("SelectBody(%d) = %q, want only", user, got)
		}
	}

	empty := Entry{Name: "Empty"}
	if got := empty.SelectBody(1); got != "" {
		t.Errorf("SelectBody on empty entry = %q, want empty string", got)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		data    string
		wantErr string
	}{
		{
			name: "valid JSON set",
			path: "data.json",
			data: validJSON,
		},
		{
			name: "valid YAML set",
			path: "data.yaml",
			data: "entries:\n  - name: Create\n    bodies:\n      - '{\"qty\":1}'\n",
		},
		{
			name: "empty entries allowed",
			path: "data.json",
			data: `{"entries": []}`,
		},
		{
			name:    "missing entries",
			path:    "data.json",
			data:    `{}`,
			wantErr: "entries",
		},
		{
			name:    "entry without bodies",
			path:    "data.json",
			data:    `{"entries": [{"name": "Create", "bodies": []}]}`,
			wantErr: "bodies",
		},
		{
			name:    "non-string body",
			path:    "data.json",
			data:    `{"entries": [{"name": "Create", "bodies": [42]}]}`,
			wantErr: "string",
		},
		{
			name: "duplicate entry names",
			path: "data.json",
			data: `{"entries": [
				{"name": "Create", "bodies": ["a"]},
				{"name": "Create", "bodies": ["b"]}
			]}`,
			wantErr: "duplicate entry",
		},
		{
			name:    "malformed JSON",
			path:    "data.json",
			data:    `{ nope }`,
			wantErr: "failed to parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse([]byte(tt.data), tt.path)

			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("Expected error containing %q, got nil", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("Expected error containing %q, got %q", tt.wantErr, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if s == nil {
				t.Fatalf("Expected parsed set, got nil")
			}
		})
	}
}

func TestLookup(t *testing.T) {
	s, err := Parse([]byte(validJSON), "data.json")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	entry, ok := s.Lookup("Create")
	if !ok {
		t.Fatalf("Expected to find entry Create")
	}
	if len(entry.Bodies) != 2 {
		t.Errorf("Expected 2 bodies for Create, got %d", len(entry.Bodies))
	}

	if _, ok := s.Lookup("Delete"); ok {
		t.Errorf("Expected no entry for Delete")
	}

	if s.Len() != 2 {
		t.Errorf("Expected 2 entries, got %d", s.Len())
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "data.json")
	if err := os.WriteFile(path, []byte(validJSON), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("Expected 2 entries, got %d", s.Len())
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Errorf("Expected error for missing file, got nil")
	}
}
