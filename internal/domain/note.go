package domain

import "time"

// Note 旧版笔记实体，已被 Ad 取代，保留兼容 /api/notes
type Note struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Content   string    `gorm:"type:text" json:"content"`
	Tags      []string  `gorm:"serializer:json;type:text" json:"tags"`
	OwnerID   string    `gorm:"size:36;not null;index" json:"owner"`
	IsPublic  *bool     `gorm:"not null;default:false;index" json:"isPublic"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Note) TableName() string { return "notes" }
