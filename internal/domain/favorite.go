package domain

import "time"

type Favorite struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_favorites_user_ad" json:"userId"`
	AdID      string    `gorm:"size:36;not null;uniqueIndex:idx_favorites_user_ad;index" json:"adId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Favorite) TableName() string { return "favorites" }

const (
	ToggleAdded   = "added"
	ToggleRemoved = "removed"
)

// Seller 信息合并了 profile 与 user，profile 优先
type Seller struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Image       string `json:"image,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Website     string `json:"website,omitempty"`
}

type FavoriteItem struct {
	FavoriteID  string    `json:"favoriteId"`
	FavoritedAt time.Time `json:"favoritedAt"`
	Ad          AdPublic  `json:"ad"`
	Seller      Seller    `json:"seller"`
}

// AdPublic 对外展示字段（不含 isDraft）
type AdPublic struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Price       float64   `json:"price"`
	Location    string    `json:"location"`
	LocationID  *string   `json:"locationId"`
	Category    *string   `json:"category"`
	Subcategory *string   `json:"subcategory"`
	ImageURL    string    `json:"imageUrl"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (a *Ad) Public() AdPublic {
	return AdPublic{
		ID:          a.ID,
		Title:       a.Title,
		Content:     a.Content,
		Price:       a.Price,
		Location:    a.Location,
		LocationID:  a.LocationID,
		Category:    a.Category,
		Subcategory: a.Subcategory,
		ImageURL:    a.ImageURL,
		Tags:        a.Tags,
		CreatedAt:   a.CreatedAt,
	}
}
