package domain

import (
	"time"

	"github.com/google/uuid"
)

type Profile struct {
	ID          uuid.UUID
	TelegramID  *int64
	Name        string
	Username    string
	Email       string
	Role        Role
	IsPremium   bool
	CurrentPlan Plan

	// Merchant fields
	StoreName     string
	StoreLocation string

	District  string
	City      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Profile) Actor() *Actor {
	return &Actor{UserID: p.ID, Role: p.Role}
}

func (p *Profile) IsMerchant() bool {
	return p.Role == RoleMerchant
}

// DisplayName prefers the store name for merchants.
func (p *Profile) DisplayName() string {
	if p.Role == RoleMerchant && p.StoreName != "" {
		return p.StoreName
	}
	if p.Name != "" {
		return p.Name
	}
	return p.Username
}
