package classifier

import (
	"context"
	"errors"

	"github.com/justestif/go-spotify-vibe-switcher/internal/features"
)

// Sentinel errors.
var (
	// ErrInvalidModel is returned when a model artifact cannot be used.
	ErrInvalidModel = errors.New("invalid classifier model")

	// ErrNoModel is returned when no classifier is configured.
	ErrNoModel = errors.New("no classifier model loaded")

	// ErrInference is returned when a prediction cannot be produced.
	ErrInference = errors.New("inference failed")
)

// Classifier predicts an activity from a feature vector.
type Classifier interface {
	Classify(ctx context.Context, v features.Vector) (Activity, error)
}
