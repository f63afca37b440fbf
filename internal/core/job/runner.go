package job

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/viperadnan-git/gifforge/internal/core/artifact"
	"github.com/viperadnan-git/gifforge/internal/core/convert"
)

// Runner owns job submission: it assigns identity, persists the upload,
// registers the job, and hands the conversion to a background goroutine.
type Runner struct {
	registry  *Registry
	store     *artifact.Store
	converter convert.Converter
}

func NewRunner(registry *Registry, store *artifact.Store, converter convert.Converter) *Runner {
	return &Runner{
		registry:  registry,
		store:     store,
		converter: converter,
	}
}

// Submit stores the uploaded source, creates the registry entry, and starts
// exactly one conversion goroutine. It returns as soon as the job id is
// issued; errors here surface synchronously and leave no registry entry.
func (r *Runner) Submit(src io.Reader, originalName string, opts convert.Options) (string, error) {
	id := uuid.New().String()
	inputPath := r.store.ReserveInput(id, originalName)
	outputPath := r.store.ReserveOutput(id)

	if err := r.store.Save(inputPath, src); err != nil {
		r.store.Delete(inputPath)
		return "", fmt.Errorf("save upload: %w", err)
	}

	if err := r.registry.Create(id, outputPath); err != nil {
		r.store.Delete(inputPath)
		return "", err
	}

	go r.run(id, inputPath, outputPath, opts)

	return id, nil
}

// run executes one conversion on its own goroutine. Faults from the converter
// never propagate past this boundary, and the input artifact is deleted no
// matter how the attempt ends.
func (r *Runner) run(id, inputPath, outputPath string, opts convert.Options) {
	defer r.store.Delete(inputPath)
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Str("job_id", id).Interface("panic", rec).Msg("conversion panicked")
			r.registry.Fail(id, fmt.Sprintf("conversion panic: %v", rec))
		}
	}()

	log.Info().Str("job_id", id).Str("input", inputPath).Msg("conversion started")

	// Conversions run detached from the submitting request and are never
	// cancelled or timed out; failure is the converter's own error.
	err := r.converter.Convert(context.Background(), inputPath, outputPath, opts, func(percent int) {
		r.registry.UpdateProgress(id, percent)
	})
	if err != nil {
		log.Error().Err(err).Str("job_id", id).Msg("conversion failed")
		r.registry.Fail(id, err.Error())
		return
	}

	if _, err := os.Stat(outputPath); err != nil {
		log.Error().Str("job_id", id).Str("output", outputPath).Msg("conversion reported success but output is missing")
		r.registry.Fail(id, "output file missing")
		return
	}

	r.registry.Complete(id)
	log.Info().Str("job_id", id).Str("output", outputPath).Msg("conversion completed")
}
