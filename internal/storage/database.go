package storage

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(path string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&MoonReport{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Database{db: db}, nil
}

// SaveReport upserts by date: a second run for the same day overwrites the
// stored figures instead of adding a duplicate row.
func (d *Database) SaveReport(report *MoonReport) error {
	var existing MoonReport
	result := d.db.Where("date = ?", report.Date).First(&existing)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return d.db.Create(report).Error
		}
		return result.Error
	}

	report.ID = existing.ID
	report.CreatedAt = existing.CreatedAt
	return d.db.Save(report).Error
}

func (d *Database) GetLatestReport() (*MoonReport, error) {
	var report MoonReport
	result := d.db.Order("date desc").First(&report)
	if result.Error != nil {
		return nil, result.Error
	}
	return &report, nil
}

func (d *Database) GetReportByDate(date time.Time) (*MoonReport, error) {
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	var report MoonReport
	result := d.db.Where("date >= ? AND date < ?", startOfDay, endOfDay).
		Order("date desc").
		First(&report)
	if result.Error != nil {
		return nil, result.Error
	}
	return &report, nil
}

func (d *Database) GetReportsByRange(from, to time.Time) ([]MoonReport, error) {
	var reports []MoonReport
	result := d.db.Where("date BETWEEN ? AND ?", from, to).
		Order("date desc").
		Find(&reports)
	if result.Error != nil {
		return nil, result.Error
	}
	return reports, nil
}

func (d *Database) GetReportsWithLimit(limit int) ([]MoonReport, error) {
	var reports []MoonReport
	result := d.db.Order("date desc").Limit(limit).Find(&reports)
	if result.Error != nil {
		return nil, result.Error
	}
	return reports, nil
}

func (d *Database) GetMonthlySummary(year int, month time.Month) (*MonthlySummary, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	summary := &MonthlySummary{Year: year, Month: int(month)}

	d.db.Model(&MoonReport{}).
		Where("date >= ? AND date < ?", start, end).
		Count(&summary.ReportCount)

	d.db.Model(&MoonReport{}).
		Where("date >= ? AND date < ? AND computable = ?", start, end, true).
		Count(&summary.ComputableDays)

	var avgNight float64
	d.db.Model(&MoonReport{}).
		Where("date >= ? AND date < ? AND computable = ?", start, end, true).
		Select("AVG(night_hours)").
		Scan(&avgNight)
	summary.AvgNightHours = avgNight

	var maxTotal float64
	d.db.Model(&MoonReport{}).
		Where("date >= ? AND date < ? AND computable = ?", start, end, true).
		Select("MAX(total_hours)").
		Scan(&maxTotal)
	summary.MaxTotalHours = maxTotal

	return summary, nil
}

func (d *Database) CleanOldReports(olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	return d.db.Where("date < ?", cutoff).Delete(&MoonReport{}).Error
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
