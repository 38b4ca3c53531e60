// Package collection loads and validates the request-collection definitions
// volley replays. A collection is an ordered sequence of named request
// items; each tick of a simulated user executes the full sequence once.
package collection

// Collection is one replayable set of request definitions.
type Collection struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Items []Item `json:"items" yaml:"items"`
}

// Item is a single request definition within a collection. Items execute
// in declaration order; Capture rules feed values extracted from the
// response into the variable scope used by later items in the same run.
type Item struct {
	Name    string        `json:"name" yaml:"name"`
	Method  string        `json:"method" yaml:"method"`
	URL     string        `json:"url" yaml:"url"`
	Headers []Header      `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body    string        `json:"body,omitempty" yaml:"body,omitempty"`
	Capture []CaptureRule `json:"capture,omitempty" yaml:"capture,omitempty"`
}

// Header is one request header. Headers keep their declaration order.
type Header struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// CaptureRule extracts a value from a JSON response body at Path and binds
// it to Name in the run's variable scope.
type CaptureRule struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
}
