package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/entity"
	"gorm.io/gorm"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) GetByID(ctx context.Context, id string) (*entity.ProductionReport, error) {
	var report entity.ProductionReport
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &report, nil
}

func (r *ReportRepository) ListByOrder(ctx context.Context, orderID string) ([]entity.ProductionReport, error) {
	var reports []entity.ProductionReport
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("reported_at ASC").
		Find(&reports).Error
	return reports, err
}

// ProductionStats aggregates reporting activity over a date range.
type ProductionStats struct {
	OrdersTouched int64   `json:"orders_touched"`
	TotalReports  int64   `json:"total_reports"`
	TotalProduced float64 `json:"total_produced"`
	TotalScrap    float64 `json:"total_scrap"`
	AvgPerReport  float64 `json:"avg_per_report"`
	ScrapRate     float64 `json:"scrap_rate"`
}

func (r *ReportRepository) Stats(ctx context.Context, from, to time.Time) (*ProductionStats, error) {
	var stats ProductionStats
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(DISTINCT order_id)       AS orders_touched,
			COUNT(*)                       AS total_reports,
			COALESCE(SUM(produced_qty), 0) AS total_produced,
			COALESCE(SUM(scrap_qty), 0)    AS total_scrap
		FROM production_reports
		WHERE reported_at >= ? AND reported_at < ?
	`, from, to).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	if stats.TotalReports > 0 {
		stats.AvgPerReport = stats.TotalProduced / float64(stats.TotalReports)
	}
	if total := stats.TotalProduced + stats.TotalScrap; total > 0 {
		stats.ScrapRate = stats.TotalScrap / total
	}
	return &stats, nil
}

// DB exposes the underlying handle for transactional callers.
func (r *ReportRepository) DB() *gorm.DB {
	return r.db
}
