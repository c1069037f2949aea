package model

type DailyStat struct {
	BaseModel
	Slug      string `gorm:"size:128;index" json:"slug"`
	Date      string `gorm:"type:date;index" json:"date"` // YYYY-MM-DD
	Downloads int64  `gorm:"default:0" json:"downloads"`
	Streams   int64  `gorm:"default:0" json:"streams"`
}
