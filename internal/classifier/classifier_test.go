package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/justestif/go-spotify-vibe-switcher/internal/features"
)

func TestParseActivity(t *testing.T) {
	tests := []struct {
		label string
		want  Activity
	}{
		{"running", Running},
		{"Walking", Walking},
		{"  stationary\n", Stationary},
		{"cycling", Unknown},
		{"", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := ParseActivity(tt.label); got != tt.want {
				t.Errorf("ParseActivity(%q) = %v, want %v", tt.label, got, tt.want)
			}
		})
	}
}

func TestActivityString_RoundTrips(t *testing.T) {
	for _, a := range []Activity{Stationary, Walking, Running} {
		if got := ParseActivity(a.String()); got != a {
			t.Errorf("ParseActivity(%q) = %v, want %v", a.String(), got, a)
		}
	}
	if Activity(42).String() != "unknown" {
		t.Errorf("out of range activity String() = %q", Activity(42).String())
	}
}

func filled(mean, variance float64) []float64 {
	vals := make([]float64, features.Size)
	for i := range vals {
		if i%2 == 0 {
			vals[i] = mean
		} else {
			vals[i] = variance
		}
	}
	return vals
}

func vectorOf(mean, variance float64) features.Vector {
	return features.Vector{
		MeanAccelX: mean, VarAccelX: variance,
		MeanAccelY: mean, VarAccelY: variance,
		MeanAccelZ: mean, VarAccelZ: variance,
		MeanGyroX: mean, VarGyroX: variance,
		MeanGyroY: mean, VarGyroY: variance,
		MeanGyroZ: mean, VarGyroZ: variance,
	}
}

func testClasses() []Class {
	return []Class{
		{Label: "stationary", Centroid: filled(0, 0.001)},
		{Label: "walking", Centroid: filled(0.1, 0.2)},
		{Label: "running", Centroid: filled(0.3, 1.5)},
	}
}

func TestCentroid_Classify(t *testing.T) {
	c, err := NewCentroid(testClasses())
	if err != nil {
		t.Fatalf("NewCentroid() error = %v", err)
	}

	tests := []struct {
		name string
		v    features.Vector
		want Activity
	}{
		{"still phone", vectorOf(0, 0), Stationary},
		{"gentle motion", vectorOf(0.09, 0.25), Walking},
		{"vigorous motion", vectorOf(0.35, 1.2), Running},
		{"beyond running", vectorOf(1, 5), Running},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Classify(context.Background(), tt.v)
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCentroid_ClassifyRejectsNaN(t *testing.T) {
	c, err := NewCentroid(testClasses())
	if err != nil {
		t.Fatalf("NewCentroid() error = %v", err)
	}

	_, err = c.Classify(context.Background(), vectorOf(math.NaN(), 0))
	if !errors.Is(err, ErrInference) {
		t.Errorf("Classify() error = %v, want ErrInference", err)
	}
}

func TestNewCentroid_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		classes []Class
	}{
		{"no classes", nil},
		{"unknown label", []Class{{Label: "cycling", Centroid: filled(0, 0)}}},
		{"short centroid", []Class{{Label: "walking", Centroid: []float64{1, 2, 3}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewCentroid(tt.classes); !errors.Is(err, ErrInvalidModel) {
				t.Errorf("NewCentroid() error = %v, want ErrInvalidModel", err)
			}
		})
	}
}

func TestLoadCentroid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.json")

	data, err := json.Marshal(ModelFile{Classes: testClasses()})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := LoadCentroid(path)
	if err != nil {
		t.Fatalf("LoadCentroid() error = %v", err)
	}
	if got, _ := c.Classify(context.Background(), vectorOf(0, 0)); got != Stationary {
		t.Errorf("Classify() = %v, want stationary", got)
	}
}

func TestLoadCentroid_Failures(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadCentroid(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("LoadCentroid() on missing file should fail")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCentroid(bad); !errors.Is(err, ErrInvalidModel) {
		t.Errorf("LoadCentroid() error = %v, want ErrInvalidModel", err)
	}
}

func TestRemote_Classify(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    Activity
		wantErr error
	}{
		{"walking", http.StatusOK, `{"label":"walking"}`, Walking, nil},
		{"unrecognized label", http.StatusOK, `{"label":"swimming"}`, Unknown, nil},
		{"server error", http.StatusInternalServerError, `oops`, Unknown, ErrInference},
		{"bad json", http.StatusOK, `{"label":`, Unknown, ErrInference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("method = %s, want POST", r.Method)
				}
				var payload map[string]float64
				if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
					t.Errorf("decoding request: %v", err)
				}
				if len(payload) != features.Size {
					t.Errorf("request has %d features, want %d", len(payload), features.Size)
				}
				if _, ok := payload["var_GyroZ"]; !ok {
					t.Error("request missing var_GyroZ")
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			r := NewRemote(server.URL, server.Client())
			got, err := r.Classify(context.Background(), vectorOf(0.1, 0.2))

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Classify() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}
