package engine

import "testing"

func TestScopeExpand(t *testing.T) {
	sc := newScope([]EnvVar{
		{Key: "host", Value: "api.example.com"},
		{Key: "token", Value: "abc123"},
	})

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "no placeholders",
			input: "https://plain.example.com",
			want:  "https://plain.example.com",
		},
		{
			name:  "single placeholder",
			input: "https://{{host}}/orders",
			want:  "https://api.example.com/orders",
		},
		{
			name:  "repeated placeholder",
			input: "{{token}}:{{token}}",
			want:  "abc123:abc123",
		},
		{
			name:  "multiple keys",
			input: "https://{{host}}?t={{token}}",
			want:  "https://api.example.com?t=abc123",
		},
		{
			name:  "unknown placeholder passes through",
			input: "https://{{host}}/{{unknown}}",
			want:  "https://api.example.com/{{unknown}}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sc.expand(tt.input); got != tt.want {
				t.Errorf("expand(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestScopeLaterEnvWins(t *testing.T) {
	sc := newScope([]EnvVar{
		{Key: "requestBody1", Value: "old"},
		{Key: "requestBody1", Value: "new"},
	})

	if got := sc.expand("{{requestBody1}}"); got != "new" {
		t.Errorf("expand = %q, want %q", got, "new")
	}
}

func TestScopeSetOverridesEnv(t *testing.T) {
	sc := newScope([]EnvVar{{Key: "token", Value: "from-env"}})
	sc.set("token", "captured")

	if got := sc.expand("{{token}}"); got != "captured" {
		t.Errorf("expand = %q, want %q", got, "captured")
	}
}
