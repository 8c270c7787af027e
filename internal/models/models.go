package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID        int             `gorm:"primaryKey;autoIncrement"    json:"id"`
	Name      string          `gorm:"size:120;not null;index"     json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	ImageURL  string          `gorm:"not null;default:''"         json:"image_url"`
	CreatedAt time.Time       `json:"-"`
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	IsStaff      bool   `gorm:"not null;default:false"   json:"is_staff"`
}

type Session struct {
	ID        uint      `gorm:"primaryKey"      json:"id"`
	Token     string    `gorm:"unique;not null" json:"token"`
	UserID    uint      `gorm:"index;not null"  json:"user_id"`
	ExpiresAt time.Time `gorm:"not null"        json:"expires_at"`
	Revoked   bool      `gorm:"default:false"   json:"revoked"`
}

type Cart struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"index"                    json:"created_at"`
}

type CartItem struct {
	ID        uint `gorm:"primaryKey"                json:"id"`
	CartID    int  `gorm:"index;not null"            json:"cart_id"`
	ProductID int  `gorm:"index;not null"            json:"product_id"`
	Quantity  int  `gorm:"not null;check:quantity>0" json:"quantity"`
}
