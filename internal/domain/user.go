package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	Name         string    `gorm:"size:64;not null" json:"name"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	Role         string    `gorm:"size:16;not null;default:user" json:"role"`
	Phone        string    `gorm:"size:32" json:"phone"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

// Profile 用户展示信息，1:1 挂在 User 上，首次读取时懒创建
type Profile struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	UserID      string    `gorm:"uniqueIndex;size:36;not null" json:"userId"`
	DisplayName string    `gorm:"size:64" json:"displayName"`
	About       string    `gorm:"size:1000" json:"about"`
	Image       string    `gorm:"size:512" json:"image"`
	Website     string    `gorm:"size:255" json:"website"`
	Phone       string    `gorm:"size:32" json:"phone"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Profile) TableName() string { return "profiles" }
