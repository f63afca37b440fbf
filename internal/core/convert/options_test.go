package convert

import (
	"strings"
	"testing"
)

// TestClipWindow covers the start/duration truncation policy.
func TestClipWindow(t *testing.T) {
	tests := []struct {
		name      string
		start     float64
		duration  float64
		sourceDur float64
		wantSS    float64
		wantT     float64
	}{
		{"full source", 0, 0, 10, 0, 0},
		{"start only", 3, 0, 10, 3, 0},
		{"window fits", 2, 5, 10, 2, 5},
		{"window past end truncated", 8, 5, 10, 8, 2},
		{"duration alone past end", 0, 15, 10, 0, 10},
		{"negative start clamped", -1, 5, 10, 0, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ss, dur := clipWindow(tt.start, tt.duration, tt.sourceDur)
			if ss != tt.wantSS || dur != tt.wantT {
				t.Fatalf("clipWindow(%v, %v, %v) = (%v, %v), want (%v, %v)",
					tt.start, tt.duration, tt.sourceDur, ss, dur, tt.wantSS, tt.wantT)
			}
		})
	}
}

// TestNormalizedSpeed: non-positive speed is a no-op, not an error.
func TestNormalizedSpeed(t *testing.T) {
	o := Options{FPS: 10, Scale: 0.5, Speed: -2.0}
	if got := o.normalized().Speed; got != 1.0 {
		t.Fatalf("speed = %v, want 1.0", got)
	}

	o.Speed = 0
	if got := o.normalized().Speed; got != 1.0 {
		t.Fatalf("speed = %v, want 1.0", got)
	}

	o.Speed = 2.5
	if got := o.normalized().Speed; got != 2.5 {
		t.Fatalf("speed = %v, want unchanged 2.5", got)
	}
}

// TestFilterGraphOrder: setpts before scale, fps always last.
func TestFilterGraphOrder(t *testing.T) {
	graph := filterGraph(Options{FPS: 12, Scale: 0.5, Speed: 2.0})

	setpts := strings.Index(graph, "setpts=")
	scale := strings.Index(graph, "scale=")
	fps := strings.Index(graph, "fps=")
	if setpts == -1 || scale == -1 || fps == -1 {
		t.Fatalf("missing stages in graph: %s", graph)
	}
	if !(setpts < scale && scale < fps) {
		t.Fatalf("wrong stage order: %s", graph)
	}
	if !strings.Contains(graph, "palettegen") || !strings.Contains(graph, "paletteuse") {
		t.Fatalf("missing palette stages: %s", graph)
	}
}

// TestFilterGraphIdentity: scale 1.0 and speed 1.0 skip their stages.
func TestFilterGraphIdentity(t *testing.T) {
	graph := filterGraph(Options{FPS: 10, Scale: 1.0, Speed: 1.0})
	if strings.Contains(graph, "scale=") {
		t.Fatalf("scale 1.0 must skip resize: %s", graph)
	}
	if strings.Contains(graph, "setpts=") {
		t.Fatalf("speed 1.0 must skip setpts: %s", graph)
	}
	if !strings.Contains(graph, "fps=10") {
		t.Fatalf("fps stage missing: %s", graph)
	}
}

// TestFilterGraphScaleTruncation: scaling uses pixel truncation expressions.
func TestFilterGraphScaleTruncation(t *testing.T) {
	graph := filterGraph(Options{FPS: 10, Scale: 0.75, Speed: 1.0})
	if !strings.Contains(graph, "scale=trunc(iw*0.75):trunc(ih*0.75)") {
		t.Fatalf("unexpected scale expression: %s", graph)
	}
}

// TestBuildArgs checks seek/duration flags and loop passthrough.
func TestBuildArgs(t *testing.T) {
	o := Options{FPS: 10, Scale: 0.5, Speed: 1.0, Loops: 3}
	args := strings.Join(buildArgs("in.mp4", "out.gif", o, 2, 4), " ")

	for _, want := range []string{"-ss 2", "-t 4", "-i in.mp4", "-loop 3", "-f gif", "out.gif", "-progress pipe:1"} {
		if !strings.Contains(args, want) {
			t.Fatalf("args missing %q: %s", want, args)
		}
	}

	// Full source: no seek or duration flags.
	args = strings.Join(buildArgs("in.mp4", "out.gif", o, 0, 0), " ")
	if strings.Contains(args, "-ss") || strings.Contains(args, "-t ") {
		t.Fatalf("unexpected window flags: %s", args)
	}
}
