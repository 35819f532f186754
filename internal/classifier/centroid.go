package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/muesli/clusters"

	"github.com/justestif/go-spotify-vibe-switcher/internal/features"
)

// Class is one labelled centroid in a model file.
type Class struct {
	Label    string    `json:"label"`
	Centroid []float64 `json:"centroid"`
}

// ModelFile is the on-disk model format.
//
//	{"classes": [{"label": "running", "centroid": [12 values]}, ...]}
//
// Centroid values follow features.Names order.
type ModelFile struct {
	Classes []Class `json:"classes"`
}

type centroid struct {
	activity Activity
	coords   clusters.Coordinates
}

// Centroid is a nearest-centroid classifier over the 12 feature values.
type Centroid struct {
	centroids []centroid
}

// LoadCentroid reads and validates a model file.
func LoadCentroid(path string) (*Centroid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model file: %w", err)
	}

	var mf ModelFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("%w: parsing model file: %v", ErrInvalidModel, err)
	}
	return NewCentroid(mf.Classes)
}

// NewCentroid builds a classifier from labelled centroids.
func NewCentroid(classes []Class) (*Centroid, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("%w: no classes", ErrInvalidModel)
	}

	c := &Centroid{centroids: make([]centroid, 0, len(classes))}
	for i, cl := range classes {
		act := ParseActivity(cl.Label)
		if act == Unknown {
			return nil, fmt.Errorf("%w: class %d has unknown label %q", ErrInvalidModel, i, cl.Label)
		}
		if len(cl.Centroid) != features.Size {
			return nil, fmt.Errorf("%w: class %q has %d values, want %d", ErrInvalidModel, cl.Label, len(cl.Centroid), features.Size)
		}
		c.centroids = append(c.centroids, centroid{
			activity: act,
			coords:   clusters.Coordinates(cl.Centroid),
		})
	}
	return c, nil
}

// Classify returns the activity of the closest centroid.
func (c *Centroid) Classify(_ context.Context, v features.Vector) (Activity, error) {
	point := clusters.Coordinates(v.Values())
	for _, x := range point {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return Unknown, fmt.Errorf("%w: non-finite feature value", ErrInference)
		}
	}

	best := Unknown
	bestDist := math.Inf(1)
	for _, ct := range c.centroids {
		if d := ct.coords.Distance(point); d < bestDist {
			best, bestDist = ct.activity, d
		}
	}
	return best, nil
}

var _ Classifier = (*Centroid)(nil)
