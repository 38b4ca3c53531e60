package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() RunConfig {
	return RunConfig{
		File:     "collection.json",
		Users:    5,
		Interval: 2 * time.Second,
		Total:    30 * time.Second,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*RunConfig)
		wantFields []string
	}{
		{
			name:   "valid config",
			mutate: func(c *RunConfig) {},
		},
		{
			name:       "missing file",
			mutate:     func(c *RunConfig) { c.File = "" },
			wantFields: []string{"file"},
		},
		{
			name:       "zero users",
			mutate:     func(c *RunConfig) { c.Users = 0 },
			wantFields: []string{"users"},
		},
		{
			name:       "negative users",
			mutate:     func(c *RunConfig) { c.Users = -3 },
			wantFields: []string{"users"},
		},
		{
			name:       "zero interval",
			mutate:     func(c *RunConfig) { c.Interval = 0 },
			wantFields: []string{"interval"},
		},
		{
			name:       "zero total",
			mutate:     func(c *RunConfig) { c.Total = 0 },
			wantFields: []string{"total"},
		},
		{
			name:       "negative timeout",
			mutate:     func(c *RunConfig) { c.Timeout = -time.Second },
			wantFields: []string{"timeout"},
		},
		{
			name: "multiple violations reported together",
			mutate: func(c *RunConfig) {
				c.File = ""
				c.Users = 0
				c.Interval = 0
			},
			wantFields: []string{"file", "users", "interval"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			errors := cfg.Validate()
			if len(errors) != len(tt.wantFields) {
				t.Fatalf("Expected %d errors, got %d: %v", len(tt.wantFields), len(errors), errors)
			}

			for i, field := range tt.wantFields {
				if errors[i].Field != field {
					t.Errorf("Expected error %d on field %q, got %q", i, field, errors[i].Field)
				}
				if !strings.Contains(errors[i].Error(), field) {
					t.Errorf("Expected message to name the field, got %q", errors[i].Error())
				}
			}
		})
	}
}

func TestRequestTimeout(t *testing.T) {
	cfg := validConfig()
	if got := cfg.RequestTimeout(); got != DefaultTimeout {
		t.Errorf("Expected default timeout %v, got %v", DefaultTimeout, got)
	}

	cfg.Timeout = 5 * time.Second
	if got := cfg.RequestTimeout(); got != 5*time.Second {
		t.Errorf("Expected configured timeout 5s, got %v", got)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{input: "", want: 0},
		{input: "30s", want: 30 * time.Second},
		{input: "2m", want: 2 * time.Minute},
		{input: "1h30m", want: 90 * time.Minute},
		{input: "500ms", want: 500 * time.Millisecond},
		{input: "30", want: 30 * time.Second},
		{input: "0", want: 0},
		{input: "not-a-duration", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDuration(tt.input)

			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Errorf("Expected no error for %q, got %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDuration(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
