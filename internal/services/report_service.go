package services

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/medpredict-be/internal/models"
	"github.com/isdelr/medpredict-be/internal/predictor"
)

// ReportServiceProvider defines the interface for report services.
type ReportServiceProvider interface {
	Save(userID, username string, m models.Measurement, result string, probability float64) (models.Report, error)
	ListForUser(userID string) ([]models.Report, error)
	ListAll() ([]models.Report, error)
	Delete(id string) error
	Stats() (models.Stats, error)
}

// ReportService provides business logic for prediction report management.
// Reports are insert-only; the only lifecycle transition is deletion.
type ReportService struct {
	db *sql.DB
}

// NewReportService creates a new ReportService.
func NewReportService(db *sql.DB) *ReportService {
	return &ReportService{db: db}
}

// Save persists one prediction report. The username is denormalized at
// creation time so reports keep their label even in admin listings.
func (s *ReportService) Save(userID, username string, m models.Measurement, result string, probability float64) (models.Report, error) {
	report := models.Report{
		ID:               uuid.New().String(),
		UserID:           userID,
		Username:         username,
		Measurement:      m,
		PredictionResult: result,
		Probability:      probability,
		CreatedAt:        time.Now().UTC(),
	}

	_, err := s.db.Exec(`INSERT INTO reports (
			id, user_id, username, pregnancies, glucose, blood_pressure,
			skin_thickness, insulin, bmi, diabetes_pedigree_function,
			age, prediction_result, probability, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID, report.UserID, report.Username,
		m.Pregnancies, m.Glucose, m.BloodPressure, m.SkinThickness, m.Insulin,
		m.BMI, m.DiabetesPedigreeFunction, m.Age,
		report.PredictionResult, report.Probability, report.CreatedAt,
	)
	if err != nil {
		return models.Report{}, err
	}
	return report, nil
}

// ListForUser retrieves all reports owned by a user, newest first.
func (s *ReportService) ListForUser(userID string) ([]models.Report, error) {
	rows, err := s.db.Query(`SELECT
			id, user_id, username, pregnancies, glucose, blood_pressure,
			skin_thickness, insulin, bmi, diabetes_pedigree_function,
			age, prediction_result, probability, created_at
		FROM reports WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return scanReports(rows, false)
}

// ListAll retrieves every report joined with the owning user's email, newest
// first.
func (s *ReportService) ListAll() ([]models.Report, error) {
	rows, err := s.db.Query(`SELECT
			r.id, r.user_id, r.username, r.pregnancies, r.glucose, r.blood_pressure,
			r.skin_thickness, r.insulin, r.bmi, r.diabetes_pedigree_function,
			r.age, r.prediction_result, r.probability, r.created_at, u.email
		FROM reports r
		JOIN users u ON r.user_id = u.id
		ORDER BY r.created_at DESC`)
	if err != nil {
		return nil, err
	}
	return scanReports(rows, true)
}

// Delete removes a single report. Returns ErrNotFound if no such report
// exists.
func (s *ReportService) Delete(id string) error {
	res, err := s.db.Exec("DELETE FROM reports WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats computes the aggregate counts for the admin dashboard.
func (s *ReportService) Stats() (models.Stats, error) {
	var stats models.Stats
	err := s.db.QueryRow(`SELECT
			(SELECT COUNT(1) FROM users),
			(SELECT COUNT(1) FROM reports),
			(SELECT COUNT(1) FROM reports WHERE prediction_result = ?)`,
		predictor.ResultPositive,
	).Scan(&stats.TotalUsers, &stats.TotalReports, &stats.PositiveCases)
	if err != nil {
		return models.Stats{}, err
	}
	stats.NegativeCases = stats.TotalReports - stats.PositiveCases
	return stats, nil
}

func scanReports(rows *sql.Rows, withEmail bool) ([]models.Report, error) {
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		var r models.Report
		dest := []interface{}{
			&r.ID, &r.UserID, &r.Username, &r.Pregnancies, &r.Glucose, &r.BloodPressure,
			&r.SkinThickness, &r.Insulin, &r.BMI, &r.DiabetesPedigreeFunction,
			&r.Age, &r.PredictionResult, &r.Probability, &r.CreatedAt,
		}
		if withEmail {
			dest = append(dest, &r.Email)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}
