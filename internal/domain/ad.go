package domain

import (
	"strings"
	"time"
)

type Ad struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	Price       float64   `gorm:"not null;default:0" json:"price"`
	Location    string    `gorm:"size:255" json:"location"`
	LocationID  *string   `gorm:"size:36;index" json:"locationId"`
	Category    *string   `gorm:"column:category_id;size:36;index" json:"category"`
	Subcategory *string   `gorm:"column:subcategory_id;size:36;index" json:"subcategory"`
	ImageURL    string    `gorm:"size:512" json:"imageUrl"`
	Tags        []string  `gorm:"serializer:json;type:text" json:"tags"`
	OwnerID     string    `gorm:"size:36;not null;index" json:"owner"`
	IsDraft     bool      `gorm:"not null;default:false;index" json:"isDraft"`
	SearchText  string    `gorm:"type:text" json:"-"` // 标题+正文的小写形式，供 q 检索
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Ad) TableName() string { return "ads" }

// RefreshSearchText 大小写在 Go 里折叠，各数据库的 LOWER() 对非 ASCII 字符行为不一
func (a *Ad) RefreshSearchText() {
	a.SearchText = strings.ToLower(a.Title + "\n" + a.Content)
}

// VisibleTo 草稿只有作者可见
func (a *Ad) VisibleTo(requesterID string) bool {
	return !a.IsDraft || (requesterID != "" && requesterID == a.OwnerID)
}

// FeedFilter 公共信息流筛选条件
type FeedFilter struct {
	Category    string
	Subcategory string
	Query       string
	Limit       int
}
