package domain

// Sequence is a named monotonic counter. Rows are created lazily the first
// time a scope is used.
type Sequence struct {
	Scope string `gorm:"primaryKey" json:"scope"`
	Value int64  `gorm:"not null" json:"value"`
}

func (Sequence) TableName() string {
	return "sequences"
}
