package convert

import "testing"

func TestParseProgressLine(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		outDur float64
		want   int
		ok     bool
	}{
		{"start of encode", "out_time_us=0", 10, 80, true},
		{"halfway", "out_time_us=5000000", 10, 89, true},
		{"at end", "out_time_us=10000000", 10, 99, true},
		{"past end clamped", "out_time_us=20000000", 10, 99, true},
		{"unrelated key", "frame=42", 10, 0, false},
		{"progress terminator", "progress=end", 10, 0, false},
		{"zero duration", "out_time_us=5000000", 0, 0, false},
		{"garbage value", "out_time_us=abc", 10, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseProgressLine(tt.line, tt.outDur)
			if got != tt.want || ok != tt.ok {
				t.Fatalf("parseProgressLine(%q, %v) = (%d, %v), want (%d, %v)",
					tt.line, tt.outDur, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestLastStderrLine(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"\n\n", ""},
		{"single error", "single error"},
		{"first line\nactual error\n", "actual error"},
		{"real detail\n   \n\n", "real detail"},
	}

	for _, tt := range tests {
		if got := lastStderrLine(tt.in); got != tt.want {
			t.Fatalf("lastStderrLine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestSafeSink: nil and panicking sinks must never abort the conversion.
func TestSafeSink(t *testing.T) {
	safeSink(nil)(50)

	safeSink(func(int) { panic("listener gone") })(50)

	var got int
	safeSink(func(p int) { got = p })(73)
	if got != 73 {
		t.Fatalf("got %d, want 73", got)
	}
}
