package models

import "time"

// ActivityLog records one human-readable feed line per state-machine
// transition or credit event. Display only; never part of balance math.
type ActivityLog struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Verb        string    `gorm:"type:varchar(20);not null;index" json:"verb"`
	ActorRole   string    `gorm:"type:varchar(20);not null;index" json:"actor_role"`
	ActorID     uint      `gorm:"not null;index" json:"actor_id"`
	ActorName   string    `gorm:"type:varchar(120);not null" json:"actor_name"`
	Amount      Money     `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`
	Description string    `gorm:"type:varchar(255);not null" json:"description"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// TableName sets the table name.
func (ActivityLog) TableName() string {
	return "activity_logs"
}
