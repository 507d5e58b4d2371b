package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/isdelr/medpredict-be/internal/api/flash"
	"github.com/isdelr/medpredict-be/internal/auth"
	"github.com/isdelr/medpredict-be/internal/models"
	"github.com/isdelr/medpredict-be/internal/predictor"
	"github.com/isdelr/medpredict-be/internal/services"
	"github.com/rs/zerolog/log"
)

// Classifier evaluates the loaded model against one feature vector.
type Classifier interface {
	Predict(features []float64) (predictor.Outcome, error)
}

// PredictHandler handles prediction requests from the browser form and the
// JSON API.
type PredictHandler struct {
	classifier Classifier
	reports    services.ReportServiceProvider
}

// NewPredictHandler creates a new PredictHandler.
func NewPredictHandler(classifier Classifier, reports services.ReportServiceProvider) *PredictHandler {
	return &PredictHandler{classifier: classifier, reports: reports}
}

// PredictForm handles the form-encoded prediction request. Both outcomes
// redirect back to the dashboard with a flash message; nothing is persisted
// on failure.
func (h *PredictHandler) PredictForm(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	m, err := measurementFromForm(r)
	if err != nil {
		flash.Set(w, "danger", "Error making prediction: "+err.Error())
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	outcome, err := h.classifier.Predict(m.Vector())
	if err != nil {
		flash.Set(w, "danger", "Error making prediction: "+err.Error())
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	if _, err := h.reports.Save(claims.UserID, claims.Username, m, outcome.Result, outcome.Probability); err != nil {
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to save prediction report")
		flash.Set(w, "danger", "Error saving prediction, please try again")
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	flash.Set(w, "success", fmt.Sprintf("Prediction completed: %s (Confidence: %.2f%%)", outcome.Result, outcome.Probability))
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// predictPayload uses pointers so a missing field is distinguishable from a
// zero value.
type predictPayload struct {
	Pregnancies              *float64 `json:"pregnancies"`
	Glucose                  *float64 `json:"glucose"`
	BloodPressure            *float64 `json:"blood_pressure"`
	SkinThickness            *float64 `json:"skin_thickness"`
	Insulin                  *float64 `json:"insulin"`
	BMI                      *float64 `json:"bmi"`
	DiabetesPedigreeFunction *float64 `json:"diabetes_pedigree_function"`
	Age                      *float64 `json:"age"`
}

// PredictAPI handles the JSON prediction request.
func (h *PredictHandler) PredictAPI(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var payload predictPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body: all 8 fields must be numeric")
		return
	}

	m, err := payload.toMeasurement()
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome, err := h.classifier.Predict(m.Vector())
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.reports.Save(claims.UserID, claims.Username, m, outcome.Result, outcome.Probability); err != nil {
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to save prediction report")
		writeJSONError(w, http.StatusBadRequest, "failed to save prediction")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"result":      outcome.Result,
		"probability": outcome.Probability,
	})
}

func (p predictPayload) toMeasurement() (models.Measurement, error) {
	fields := map[string]*float64{
		"pregnancies":                p.Pregnancies,
		"glucose":                    p.Glucose,
		"blood_pressure":             p.BloodPressure,
		"skin_thickness":             p.SkinThickness,
		"insulin":                    p.Insulin,
		"bmi":                        p.BMI,
		"diabetes_pedigree_function": p.DiabetesPedigreeFunction,
		"age":                        p.Age,
	}
	for name, value := range fields {
		if value == nil {
			return models.Measurement{}, fmt.Errorf("missing field: %s", name)
		}
	}
	// Values flow to the classifier exactly as the client sent them; no
	// truncation happens on the API path.
	return models.Measurement{
		Pregnancies:              *p.Pregnancies,
		Glucose:                  *p.Glucose,
		BloodPressure:            *p.BloodPressure,
		SkinThickness:            *p.SkinThickness,
		Insulin:                  *p.Insulin,
		BMI:                      *p.BMI,
		DiabetesPedigreeFunction: *p.DiabetesPedigreeFunction,
		Age:                      *p.Age,
	}, nil
}

func measurementFromForm(r *http.Request) (models.Measurement, error) {
	if err := r.ParseForm(); err != nil {
		return models.Measurement{}, fmt.Errorf("invalid form data")
	}

	var m models.Measurement

	// The count-like form fields accept whole numbers only.
	intFields := []struct {
		name string
		dest *float64
	}{
		{"pregnancies", &m.Pregnancies},
		{"glucose", &m.Glucose},
		{"blood_pressure", &m.BloodPressure},
		{"skin_thickness", &m.SkinThickness},
		{"insulin", &m.Insulin},
		{"age", &m.Age},
	}
	for _, f := range intFields {
		v, err := strconv.Atoi(r.PostFormValue(f.name))
		if err != nil {
			return models.Measurement{}, fmt.Errorf("missing or invalid field: %s", f.name)
		}
		*f.dest = float64(v)
	}

	floatFields := []struct {
		name string
		dest *float64
	}{
		{"bmi", &m.BMI},
		{"diabetes_pedigree_function", &m.DiabetesPedigreeFunction},
	}
	for _, f := range floatFields {
		v, err := strconv.ParseFloat(r.PostFormValue(f.name), 64)
		if err != nil {
			return models.Measurement{}, fmt.Errorf("missing or invalid field: %s", f.name)
		}
		*f.dest = v
	}

	return m, nil
}
