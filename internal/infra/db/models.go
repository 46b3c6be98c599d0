package db

import "time"

type UserModel struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	Identity  string `gorm:"uniqueIndex;not null"`
	Email     string
	Phone     string
	Roles     string    `gorm:"not null;default:''"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (UserModel) TableName() string {
	return "users"
}

type DeliveryLogModel struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	Medium    string `gorm:"index;not null"`
	Archetype string `gorm:"not null"`
	Recipient string `gorm:"not null"`
	Provider  string `gorm:"not null"`
	Attempts  int    `gorm:"not null"`
	Success   bool   `gorm:"not null"`
	ErrorCode string
	CreatedAt time.Time `gorm:"index;not null"`
}

func (DeliveryLogModel) TableName() string {
	return "delivery_log"
}
