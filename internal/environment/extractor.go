package environment

import (
	"context"

	"github.com/losb/stackcheck/internal/environment/extractors"
	"github.com/losb/stackcheck/internal/environment/types"
	"github.com/sirupsen/logrus"
)

type Extractor struct {
	extractors []extractors.ContentExtractor
	log        logrus.FieldLogger
}

func NewExtractor(log logrus.FieldLogger) *Extractor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Extractor{
		log: log,
		extractors: []extractors.ContentExtractor{
			extractors.NewDockerComposeExtractor(),
			extractors.NewDockerfileExtractor(),
			extractors.NewDotEnvExtractor(),
			extractors.NewLibraryCallExtractor(),
		},
	}
}

// Extract streams the variables every applicable extractor finds in content.
// Extractor failures are logged and skipped.
func (e *Extractor) Extract(ctx context.Context, filename string, content []byte) <-chan types.EnvResult {
	results := make(chan types.EnvResult, 32)

	go func() {
		defer close(results)

		for _, extractor := range e.extractors {
			if !extractor.CanHandle(filename) {
				continue
			}

			envResults, err := extractor.Extract(ctx, filename, content)
			if err != nil {
				e.log.WithError(err).WithField("file", filename).Debug("extractor failed")
				continue
			}

			for _, result := range envResults {
				select {
				case results <- result:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return results
}

// ExtractAll drains Extract into a slice.
func (e *Extractor) ExtractAll(ctx context.Context, filename string, content []byte) []types.EnvResult {
	var all []types.EnvResult
	for r := range e.Extract(ctx, filename, content) {
		all = append(all, r)
	}
	return all
}
