// Package features turns sliding windows of inertial samples into the
// summary statistics fed to the activity classifier.
package features

// Size is the number of values in a Vector.
const Size = 12

// Vector holds the mean and population variance of each of the six
// inertial axes over the current window.
type Vector struct {
	MeanAccelX float64 `json:"mean_AccelX"`
	VarAccelX  float64 `json:"var_AccelX"`
	MeanAccelY float64 `json:"mean_AccelY"`
	VarAccelY  float64 `json:"var_AccelY"`
	MeanAccelZ float64 `json:"mean_AccelZ"`
	VarAccelZ  float64 `json:"var_AccelZ"`
	MeanGyroX  float64 `json:"mean_GyroX"`
	VarGyroX   float64 `json:"var_GyroX"`
	MeanGyroY  float64 `json:"mean_GyroY"`
	VarGyroY   float64 `json:"var_GyroY"`
	MeanGyroZ  float64 `json:"mean_GyroZ"`
	VarGyroZ   float64 `json:"var_GyroZ"`
}

// Names lists the model input names in the order Values returns them.
var Names = [Size]string{
	"mean_AccelX", "var_AccelX",
	"mean_AccelY", "var_AccelY",
	"mean_AccelZ", "var_AccelZ",
	"mean_GyroX", "var_GyroX",
	"mean_GyroY", "var_GyroY",
	"mean_GyroZ", "var_GyroZ",
}

// Values returns the vector as a slice in model input order.
func (v Vector) Values() []float64 {
	return []float64{
		v.MeanAccelX, v.VarAccelX,
		v.MeanAccelY, v.VarAccelY,
		v.MeanAccelZ, v.VarAccelZ,
		v.MeanGyroX, v.VarGyroX,
		v.MeanGyroY, v.VarGyroY,
		v.MeanGyroZ, v.VarGyroZ,
	}
}
