package datastore

import "time"

// PlateRecord is one recognized plate persisted for a Frigate event. The
// unique index on FrigateEvent enforces at-most-once persistence per event.
type PlateRecord struct {
	ID            uint      `gorm:"primaryKey"`
	DetectionTime time.Time `gorm:"column:detection_time;index"`
	Score         float64   `gorm:"column:score"`
	PlateNumber   string    `gorm:"column:plate_number;index"`
	FrigateEvent  string    `gorm:"column:frigate_event;uniqueIndex"`
	CameraName    string    `gorm:"column:camera_name"`
}

// TableName overrides the default gorm pluralization.
func (PlateRecord) TableName() string {
	return "plates"
}
