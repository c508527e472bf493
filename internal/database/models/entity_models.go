package models

import "time"

type EntityStatus string

const (
	EntityActive   EntityStatus = "ACTIVE"
	EntityInactive EntityStatus = "INACTIVE"
)

type User struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Username  string `gorm:"uniqueIndex;not null"`
	Email     string `gorm:"uniqueIndex;not null"`
	Password  string `gorm:"not null"`
	Firstname string `gorm:"not null"`
	Lastname  string `gorm:"not null"`
	IsActive  bool   `gorm:"default:true"`
	LastLogin *time.Time
	CreatedAt *time.Time `gorm:"autoCreateTime"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime"`
}

type Salesperson struct {
	ID        int64        `gorm:"primaryKey;autoIncrement"`
	Name      string       `gorm:"type:varchar(100);not null"`
	Email     string       `gorm:"uniqueIndex;not null"`
	Status    EntityStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	CreatedAt *time.Time   `gorm:"autoCreateTime"`
	UpdatedAt *time.Time   `gorm:"autoUpdateTime"`
}

type Client struct {
	ID            int64        `gorm:"primaryKey;autoIncrement"`
	Name          string       `gorm:"type:varchar(100);not null"`
	ContactPerson string       `gorm:"type:varchar(100)"`
	Email         string       `gorm:"type:varchar(255)"`
	Phone         string       `gorm:"type:varchar(20)"`
	Address       string       `gorm:"type:text"`
	Status        EntityStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	CreatedAt     *time.Time   `gorm:"autoCreateTime"`
	UpdatedAt     *time.Time   `gorm:"autoUpdateTime"`
}

type ContractorType string

const (
	ContractorTypeContractor ContractorType = "CONTRACTOR"
	ContractorTypePermanent  ContractorType = "PERMANENT"
)

type Contractor struct {
	ID        int64          `gorm:"primaryKey;autoIncrement"`
	Name      string         `gorm:"type:varchar(100);not null"`
	Email     string         `gorm:"uniqueIndex;type:varchar(255)"`
	Phone     string         `gorm:"type:varchar(20)"`
	Type      ContractorType `gorm:"type:varchar(20);not null"`
	Status    EntityStatus   `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	CreatedAt *time.Time     `gorm:"autoCreateTime"`
	UpdatedAt *time.Time     `gorm:"autoUpdateTime"`
}
