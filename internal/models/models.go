package models

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"unique;not null"          json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	IsAdmin      bool   `gorm:"not null;default:false"   json:"is_admin"`
}

type Sweet struct {
	ID       uint    `gorm:"primaryKey;autoIncrement"               json:"id"`
	Name     string  `gorm:"not null"                               json:"name"`
	Category string  `gorm:"not null"                               json:"category"`
	Price    float64 `gorm:"not null"                               json:"price"`
	Quantity int     `gorm:"not null;default:0;check:quantity >= 0" json:"quantity"`
}
