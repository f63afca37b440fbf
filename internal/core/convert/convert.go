package convert

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Converter turns a source video into an animated GIF, reporting coarse
// progress percentages through the sink (100 on success, -1 on any failure
// path).
type Converter interface {
	Convert(ctx context.Context, inputPath, outputPath string, opts Options, progress func(int)) error
}

// FFmpeg is the Converter backed by the external ffmpeg/ffprobe binaries.
type FFmpeg struct {
	ffmpegBin  string
	ffprobeBin string
}

func NewFFmpeg(ffmpegBin, ffprobeBin string) *FFmpeg {
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	if ffprobeBin == "" {
		ffprobeBin = "ffprobe"
	}
	return &FFmpeg{ffmpegBin: ffmpegBin, ffprobeBin: ffprobeBin}
}

// ProgressError is the sentinel reported through the progress sink on any
// failure path. It may arrive before the terminal failed state is recorded.
const ProgressError = -1

var outTimeRe = regexp.MustCompile(`^out_time_us=(\d+)`)

// Convert runs the conversion in one ffmpeg pass. Progress milestones mirror
// the pipeline stages (probe, clip window, speed, scale, encode); during the
// encode, ffmpeg's -progress stream is mapped into the 80-99 band.
func (f *FFmpeg) Convert(ctx context.Context, inputPath, outputPath string, opts Options, progress func(int)) error {
	report := safeSink(progress)

	report(5) // loading source
	sourceDur, err := probeDuration(ctx, f.ffprobeBin, inputPath)
	if err != nil {
		report(ProgressError)
		return fmt.Errorf("probe source: %w", err)
	}
	report(20) // source probed

	opts = opts.normalized()
	ss, t := clipWindow(opts.StartTime, opts.Duration, sourceDur)
	report(40) // clip window applied
	report(50) // speed applied
	report(70) // scaling applied

	args := buildArgs(inputPath, outputPath, opts, ss, t)
	cmd := exec.CommandContext(ctx, f.ffmpegBin, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		report(ProgressError)
		return fmt.Errorf("pipe: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	log.Debug().Str("input", inputPath).Str("output", outputPath).
		Strs("args", args).Msg("starting ffmpeg")

	if err := cmd.Start(); err != nil {
		report(ProgressError)
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	report(80) // encode started

	// Length of the encoded clip in source seconds, adjusted for speed.
	outDur := sourceDur - ss
	if t > 0 {
		outDur = t
	}
	if opts.Speed != 1.0 {
		outDur /= opts.Speed
	}

	last := 80
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		pct, ok := parseProgressLine(scanner.Text(), outDur)
		if ok && pct > last {
			last = pct
			report(pct)
		}
	}

	// Wait always runs so the process and its pipes are released on every
	// exit path.
	if err := cmd.Wait(); err != nil {
		report(ProgressError)
		if detail := lastStderrLine(stderr.String()); detail != "" {
			return fmt.Errorf("ffmpeg: %s", detail)
		}
		return fmt.Errorf("ffmpeg: %w", err)
	}

	report(100)
	return nil
}

// parseProgressLine maps an out_time_us line from ffmpeg's -progress stream
// into a percentage within (80, 99].
func parseProgressLine(line string, outDur float64) (int, bool) {
	matches := outTimeRe.FindStringSubmatch(line)
	if len(matches) < 2 || outDur <= 0 {
		return 0, false
	}
	us, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		return 0, false
	}

	frac := (float64(us) / 1e6) / outDur
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return 80 + int(frac*19), true
}

func lastStderrLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}

// safeSink wraps a progress callback so a nil or panicking sink never aborts
// the conversion.
func safeSink(progress func(int)) func(int) {
	return func(percent int) {
		if progress == nil {
			return
		}
		defer func() {
			if r := recover(); r != nil {
				log.Warn().Interface("panic", r).Msg("progress sink panicked")
			}
		}()
		progress(percent)
	}
}
