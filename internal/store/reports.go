package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"inspectroom/internal/inspection"
	"inspectroom/internal/models"
)

var (
	ErrReportNotFound = errors.New("inspection not found")
	ErrTitleRequired  = errors.New("title required")
)

// ReportStore is the canonical inspection repository.
type ReportStore struct {
	db *gorm.DB
}

func NewReportStore(db *gorm.DB) *ReportStore {
	return &ReportStore{db: db}
}

// Create schedules a new inspection owned by inspectorID.
func (s *ReportStore) Create(ctx context.Context, title, inspectorID string) (inspection.Report, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return inspection.Report{}, ErrTitleRequired
	}
	r := inspection.NewReport(uuid.NewString(), title, inspectorID)
	rec, err := toRecord(r)
	if err != nil {
		return inspection.Report{}, err
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return inspection.Report{}, fmt.Errorf("create inspection: %w", err)
	}
	return r, nil
}

func (s *ReportStore) ListByInspector(ctx context.Context, inspectorID string) ([]inspection.Report, error) {
	return s.list(s.db.WithContext(ctx).Where("scheduled_by_id = ?", inspectorID))
}

func (s *ReportStore) ListAll(ctx context.Context) ([]inspection.Report, error) {
	return s.list(s.db.WithContext(ctx))
}

func (s *ReportStore) list(q *gorm.DB) ([]inspection.Report, error) {
	var recs []models.InspectionRecord
	if err := q.Order("created_at desc, id desc").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list inspections: %w", err)
	}
	out := make([]inspection.Report, 0, len(recs))
	for _, rec := range recs {
		r, err := fromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *ReportStore) Get(ctx context.Context, id string) (inspection.Report, error) {
	var rec models.InspectionRecord
	err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return inspection.Report{}, ErrReportNotFound
	}
	if err != nil {
		return inspection.Report{}, fmt.Errorf("get inspection: %w", err)
	}
	return fromRecord(rec)
}

// Save overwrites the canonical copy of an existing report.
func (s *ReportStore) Save(ctx context.Context, r inspection.Report) error {
	rec, err := toRecord(r)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&models.InspectionRecord{}).Where("id = ?", r.ID).Updates(map[string]any{
		"title":        rec.Title,
		"is_complete":  rec.IsComplete,
		"final_status": rec.FinalStatus,
		"body":         rec.Body,
	})
	if res.Error != nil {
		return fmt.Errorf("save inspection: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrReportNotFound
	}
	return nil
}

func toRecord(r inspection.Report) (models.InspectionRecord, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return models.InspectionRecord{}, fmt.Errorf("encode inspection %s: %w", r.ID, err)
	}
	rec := models.InspectionRecord{
		ID:            r.ID,
		Title:         r.Title,
		ScheduledByID: r.ScheduledByID,
		IsComplete:    r.IsComplete,
		Body:          models.JSONB(body),
	}
	if r.FinalStatus != nil {
		s := string(*r.FinalStatus)
		rec.FinalStatus = &s
	}
	return rec, nil
}

func fromRecord(rec models.InspectionRecord) (inspection.Report, error) {
	var r inspection.Report
	if err := json.Unmarshal(rec.Body, &r); err != nil {
		return inspection.Report{}, fmt.Errorf("decode inspection %s: %w", rec.ID, err)
	}
	return r, nil
}
