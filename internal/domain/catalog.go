package domain

import (
	"time"

	"gorm.io/gorm"
)

// Product 生产者在售商品（Market 侧）
type Product struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	ProducerID  string         `gorm:"size:36;index" json:"producerId"`
	Name        string         `gorm:"size:128" json:"name"`
	Description string         `gorm:"size:1024" json:"description"`
	PriceCents  int64          `json:"priceCents"`
	ZipCode     string         `gorm:"size:10;index" json:"zipCode"`
	Available   bool           `gorm:"default:true" json:"available"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Product) TableName() string { return "products" }

// Event 生产者发布的线下活动（农夫市集等）
type Event struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	ProducerID  string    `gorm:"size:36;index" json:"producerId"`
	Title       string    `gorm:"size:128" json:"title"`
	Description string    `gorm:"size:1024" json:"description"`
	ZipCode     string    `gorm:"size:10;index" json:"zipCode"`
	StartsAt    time.Time `gorm:"index" json:"startsAt"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Event) TableName() string { return "events" }

// HelpPostingStatus 互助帖状态
type HelpPostingStatus string

const (
	HelpPostingOpen    HelpPostingStatus = "OPEN"
	HelpPostingClaimed HelpPostingStatus = "CLAIMED"
	HelpPostingClosed  HelpPostingStatus = "CLOSED"
)

// HelpPosting 互助/换工帖子（Care 侧），只有 OPEN 的进入 feed
type HelpPosting struct {
	ID        string            `gorm:"primaryKey;size:36" json:"id"`
	AuthorID  string            `gorm:"size:36;index" json:"authorId"`
	Title     string            `gorm:"size:128" json:"title"`
	Body      string            `gorm:"size:2048" json:"body"`
	ZipCode   string            `gorm:"size:10;index" json:"zipCode"`
	Status    HelpPostingStatus `gorm:"size:16;default:'OPEN';index" json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func (HelpPosting) TableName() string { return "help_postings" }

// CareBookingStatus 托管预约状态
type CareBookingStatus string

const (
	CareBookingRequested CareBookingStatus = "REQUESTED"
	CareBookingConfirmed CareBookingStatus = "CONFIRMED"
	CareBookingCompleted CareBookingStatus = "COMPLETED"
	CareBookingCanceled  CareBookingStatus = "CANCELED"
)

// CareBooking 动物托管预约；COMPLETED 之后买家才能评价
type CareBooking struct {
	ID          string            `gorm:"primaryKey;size:36" json:"id"`
	OwnerID     string            `gorm:"size:36;index" json:"ownerId"`
	CaregiverID string            `gorm:"size:36;index" json:"caregiverId"`
	AnimalDesc  string            `gorm:"size:256" json:"animalDesc"`
	StartDate   time.Time         `json:"startDate"`
	EndDate     time.Time         `json:"endDate"`
	Status      CareBookingStatus `gorm:"size:16;default:'REQUESTED';index" json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func (CareBooking) TableName() string { return "care_bookings" }

// ZipCentroid 邮编质心，feed 的距离计算数据源
type ZipCentroid struct {
	Zip string  `gorm:"primaryKey;size:10" json:"zip"`
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (ZipCentroid) TableName() string { return "zip_centroids" }
