package models

import "time"

// User is an identity record. Username and email are case-sensitive unique keys.
type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Calculation is one evaluated expression. Rows are only ever inserted or
// deleted in bulk per user.
type Calculation struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID     *int64    `gorm:"index" json:"-"`
	User       *User     `gorm:"constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT" json:"-"`
	Expression string    `gorm:"not null" json:"expression"`
	Result     string    `gorm:"not null" json:"result"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}
