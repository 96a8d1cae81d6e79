package models

import (
	"time"

	"gorm.io/gorm"
)

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusAccepted RequestStatus = "accepted"
	RequestStatusRejected RequestStatus = "rejected"
)

// Pool is a single proposed shared ride. CurrentPersons starts at 1 (the
// creator) and must equal the number of PoolMember rows at all times; it is
// only ever mutated through the seat reservation inside the pools package.
type Pool struct {
	gorm.Model
	StartPoint     string       `json:"startPoint" gorm:"not null"`
	EndPoint       string       `json:"endPoint" gorm:"not null"`
	DepartureTime  time.Time    `json:"departureTime" gorm:"not null"`
	ArrivalTime    time.Time    `json:"arrivalTime" gorm:"not null"`
	TransportMode  string       `json:"transportMode" gorm:"not null"`
	TotalPersons   int          `json:"totalPersons" gorm:"not null"`
	CurrentPersons int          `json:"currentPersons" gorm:"not null;default:1"`
	FarePerHead    *float64     `json:"farePerHead"`
	CreatedByID    uint         `json:"createdById" gorm:"not null;index"`
	CreatedBy      User         `json:"createdBy"`
	Description    string       `json:"description" gorm:"size:400"`
	IsFemaleOnly   bool         `json:"isFemaleOnly" gorm:"not null;default:false"`
	Members        []PoolMember `json:"members"`
}

// PoolMember is a seat occupied in a pool. The composite unique index makes
// duplicate membership impossible at the store level, not just in handler
// checks. Rows are never updated in place.
type PoolMember struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PoolID    uint      `json:"poolId" gorm:"not null;uniqueIndex:idx_pool_members_pool_user"`
	UserID    uint      `json:"userId" gorm:"not null;uniqueIndex:idx_pool_members_pool_user"`
	User      User      `json:"user"`
	IsCreator bool      `json:"isCreator" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"createdAt"`
}

// PoolRequest is a pending ask to join a gated pool. Requests are removed on
// accept/reject, so the unique (pool, user) index enforces at most one
// outstanding request per user per pool. No soft delete: a rejected user may
// request again.
type PoolRequest struct {
	ID        uint          `json:"id" gorm:"primaryKey"`
	PoolID    uint          `json:"poolId" gorm:"not null;uniqueIndex:idx_pool_requests_pool_user"`
	Pool      Pool          `json:"-"`
	UserID    uint          `json:"userId" gorm:"not null;uniqueIndex:idx_pool_requests_pool_user"`
	User      User          `json:"user"`
	Status    RequestStatus `json:"status" gorm:"size:20;not null;default:'pending'"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}
