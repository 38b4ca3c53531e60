package jsonpath

import (
	"testing"
)

const sessionResponse = `{
	"token": "abc123",
	"expires_in": 3600,
	"refresh": null,
	"verified": true,
	"user": {
		"id": "u-42",
		"roles": ["admin", "editor"]
	},
	"sessions": [
		{"device": "laptop", "ip": "10.0.0.1"},
		{"device": "phone", "ip": "10.0.0.2"}
	]
}`

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{
			name: "root path",
			path: "$",
			want: sessionResponse,
		},
		{
			name: "simple property",
			path: "$.token",
			want: "abc123",
		},
		{
			name: "numeric property",
			path: "$.expires_in",
			want: "3600",
		},
		{
			name: "boolean property",
			path: "$.verified",
			want: "true",
		},
		{
			name: "nested property",
			path: "$.user.id",
			want: "u-42",
		},
		{
			name: "array element",
			path: "$.user.roles[1]",
			want: "editor",
		},
		{
			name: "object in array",
			path: "$.sessions[0].ip",
			want: "10.0.0.1",
		},
		{
			name: "bare gjson path",
			path: "sessions.1.device",
			want: "phone",
		},
		{
			name: "null value",
			path: "$.refresh",
			want: "null",
		},
		{
			name:    "missing property",
			path:    "$.nonexistent",
			wantErr: true,
		},
		{
			name:    "missing nested property",
			path:    "$.user.email",
			wantErr: true,
		},
		{
			name:    "index out of bounds",
			path:    "$.sessions[9]",
			wantErr: true,
		},
		{
			name:    "empty path",
			path:    "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(sessionResponse, tt.path)

			if tt.wantErr && err == nil {
				t.Errorf("Expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}

	if _, err := Extract("", "$.token"); err == nil {
		t.Errorf("Expected error for empty document, got nil")
	}
}

func TestLookup(t *testing.T) {
	if got, ok := Lookup(sessionResponse, "$.token"); !ok || got != "abc123" {
		t.Errorf("Lookup($.token) = (%q, %v), want (abc123, true)", got, ok)
	}

	if got, ok := Lookup(sessionResponse, "$.missing.path"); ok || got != "" {
		t.Errorf("Lookup on missing path = (%q, %v), want empty and false", got, ok)
	}

	if _, ok := Lookup("", "$.token"); ok {
		t.Errorf("Lookup on empty document should report not found")
	}
}

func TestToGjsonPath(t *testing.T) {
	tests := []struct {
		jsonPath  string
		gjsonPath string
	}{
		{"$.name", "name"},
		{"$['name']", "name"},
		{"$.user.name", "user.name"},
		{"$.items[0]", "items.0"},
		{"$.items[0].name", "items.0.name"},
		{"$.deeply.nested[0].array[1].value", "deeply.nested.0.array.1.value"},
		{"$", "@this"},
		{"$[0]", "0"},
		{"$[0].name", "0.name"},
	}

	for _, tt := range tests {
		t.Run(tt.jsonPath, func(t *testing.T) {
			got := toGjsonPath(tt.jsonPath)
			if got != tt.gjsonPath {
				t.Errorf("toGjsonPath(%q) = %q, want %q", tt.jsonPath, got, tt.gjsonPath)
			}
		})
	}
}
