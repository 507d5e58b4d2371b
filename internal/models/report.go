package models

import "time"

// Measurement holds the 8 clinical input features of one prediction request,
// in the order the classifier was trained on. All fields are float64: the
// JSON API passes client values through to the classifier untouched, while
// the browser form constrains the count-like fields to whole numbers at
// parse time.
type Measurement struct {
	Pregnancies              float64 `json:"pregnancies"`
	Glucose                  float64 `json:"glucose"`
	BloodPressure            float64 `json:"blood_pressure"`
	SkinThickness            float64 `json:"skin_thickness"`
	Insulin                  float64 `json:"insulin"`
	BMI                      float64 `json:"bmi"`
	DiabetesPedigreeFunction float64 `json:"diabetes_pedigree_function"`
	Age                      float64 `json:"age"`
}

// Vector returns the feature values as the fixed-order slice the classifier expects.
func (m Measurement) Vector() []float64 {
	return []float64{
		m.Pregnancies,
		m.Glucose,
		m.BloodPressure,
		m.SkinThickness,
		m.Insulin,
		m.BMI,
		m.DiabetesPedigreeFunction,
		m.Age,
	}
}

// Report is one persisted prediction outcome tied to the user who requested it.
type Report struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Measurement
	PredictionResult string    `json:"prediction_result"`
	Probability      float64   `json:"probability"` // confidence, 0-100
	CreatedAt        time.Time `json:"createdAt"`

	// Email of the owning user, populated only by the admin listing join.
	Email string `json:"email,omitempty"`
}

// Stats are the aggregate counts shown on the admin dashboard.
type Stats struct {
	TotalUsers    int `json:"total_users"`
	TotalReports  int `json:"total_reports"`
	PositiveCases int `json:"positive_cases"`
	NegativeCases int `json:"negative_cases"`
}
