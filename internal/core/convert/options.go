package convert

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Options are the conversion parameters accepted at submission time.
// Duration <= 0 means "until the end of the source".
type Options struct {
	FPS       int
	Scale     float64
	StartTime float64
	Duration  float64
	Loops     int
	Speed     float64
}

// DefaultOptions mirrors the service's documented parameter defaults.
func DefaultOptions() Options {
	return Options{
		FPS:   10,
		Scale: 0.5,
		Speed: 1.0,
	}
}

// normalized applies the parameter policy that is not an error: a
// non-positive speed is treated as 1.0 (no temporal scaling).
func (o Options) normalized() Options {
	if o.Speed <= 0 {
		log.Warn().Float64("speed", o.Speed).Msg("invalid speed value, using 1.0")
		o.Speed = 1.0
	}
	return o
}

// clipWindow computes the effective seek offset and read duration for a
// source of sourceDur seconds. A requested window reaching past the end of
// the source is truncated to the remaining length. The returned duration is
// 0 when the clip should run to the end of the source.
func clipWindow(start, duration, sourceDur float64) (ss, t float64) {
	if start < 0 {
		start = 0
	}
	ss = start
	if duration > 0 {
		t = duration
		if start+duration > sourceDur {
			t = sourceDur - start
		}
	}
	return ss, t
}

// filterGraph builds the ffmpeg filter_complex chain. Transform order is
// fixed: temporal (setpts) first, then spatial (scale), frame rate last.
// Scale 1.0 is identity and skips the resize entirely. The palettegen /
// paletteuse split keeps GIF output from dithering against the generic
// 256-color palette.
func filterGraph(o Options) string {
	var stages []string
	if o.Speed != 1.0 {
		stages = append(stages, fmt.Sprintf("setpts=PTS/%s", formatFloat(o.Speed)))
	}
	if o.Scale != 1.0 {
		s := formatFloat(o.Scale)
		stages = append(stages, fmt.Sprintf("scale=trunc(iw*%s):trunc(ih*%s)", s, s))
	}
	stages = append(stages, fmt.Sprintf("fps=%d", o.FPS))

	chain := strings.Join(stages, ",")
	return fmt.Sprintf("[0:v]%s,split[a][b];[a]palettegen[p];[b][p]paletteuse", chain)
}

// buildArgs assembles the full ffmpeg argument list for one conversion.
func buildArgs(inputPath, outputPath string, o Options, ss, t float64) []string {
	args := []string{"-y", "-v", "error", "-progress", "pipe:1"}
	if ss > 0 {
		args = append(args, "-ss", formatFloat(ss))
	}
	if t > 0 {
		args = append(args, "-t", formatFloat(t))
	}
	args = append(args,
		"-i", inputPath,
		"-filter_complex", filterGraph(o),
		"-loop", strconv.Itoa(o.Loops),
		"-f", "gif",
		outputPath,
	)
	return args
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
