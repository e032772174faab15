package models

import (
	"time"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	Email        string `gorm:"unique;not null"          json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Address      string `gorm:"default:''"               json:"address"`
	City         string `gorm:"default:''"               json:"city"`
	Country      string `gorm:"default:''"               json:"country"`
	PostalCode   int    `gorm:"default:0"                json:"postal_code"`
}

// AuthToken is the opaque credential issued at login. One row per user,
// the key is reused verbatim on every later login.
type AuthToken struct {
	ID        uint      `gorm:"primaryKey"           json:"id"`
	Key       string    `gorm:"unique;not null"      json:"key"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Category struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"not null"                 json:"name"`
}

type Franchise struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string    `gorm:"not null"                 json:"name"`
	CategoryID uint      `gorm:"index;not null"           json:"category_id"`
	Category   *Category `json:"category,omitempty"`
}

type Product struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string     `gorm:"not null"                 json:"name"`
	Description string     `gorm:"default:''"               json:"description"`
	Price       float64    `gorm:"not null"                 json:"price"`
	Count       uint       `json:"count"`
	FranchiseID uint       `gorm:"index;not null"           json:"franchise_id"`
	Franchise   *Franchise `json:"franchise,omitempty"`
}

// Favorite is the user<->product many-to-many membership, no extra attributes.
type Favorite struct {
	UserID    uint `gorm:"primaryKey" json:"user_id"`
	ProductID uint `gorm:"primaryKey" json:"product_id"`
}

type Review struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"               json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:uniq_user_product" json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:uniq_user_product" json:"product_id"`
	Rating    uint      `gorm:"not null"                               json:"rating"`
	Text      string    `gorm:"default:''"                             json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type Order struct {
	ID        uint        `gorm:"primaryKey"         json:"id"`
	UserID    uint        `gorm:"index;not null"     json:"user_id"`
	Total     float64     `json:"total"`
	Status    string      `json:"status"`
	CreatedAt int64       `json:"created_at"`
	Items     []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// OrderItem with a null OrderID is a cart line. The partial unique index
// makes the cart upsert atomic: one open line per (user, product).
type OrderItem struct {
	ID        uint  `gorm:"primaryKey"                                                 json:"id"`
	OrderID   *uint `gorm:"index"                                                      json:"order_id"`
	UserID    uint  `gorm:"not null;uniqueIndex:uniq_open_line,where:order_id IS NULL" json:"user_id"`
	ProductID uint  `gorm:"not null;uniqueIndex:uniq_open_line,where:order_id IS NULL" json:"product_id"`
	Quantity  uint  `gorm:"default:1;check:quantity>0"                                 json:"quantity"`
}
