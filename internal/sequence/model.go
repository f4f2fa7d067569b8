package sequence

import "time"

// Counter is the durable high-water mark for one invoice number prefix.
type Counter struct {
	Prefix    string    `gorm:"primaryKey;type:varchar(32)"`
	Value     int64     `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Counter) TableName() string { return "invoice_sequences" }
