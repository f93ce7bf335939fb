package model

import "time"

// KVEntry is a row of the generic key-value table backing the gorm storage backend.
type KVEntry struct {
	Key       string    `gorm:"column:entry_key;primaryKey;size:512"`
	Value     []byte    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName pins the table name.
func (KVEntry) TableName() string {
	return "kv_entries"
}
