package model

import "time"

// PushSubscription holds a caregiver's browser push subscription for one baby.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	BabyID    string    `gorm:"index;size:128;not null"`
	CreatedAt time.Time `gorm:"not null"`
}
