package domain

import (
	"context"
	"errors"
)

type CreateVendorRequest struct {
	Name         string
	ABN          string
	ContactEmail string
	IsInternal   bool
}

type UpdateVendorRequest struct {
	ID           string
	Name         *string
	ABN          *string
	ContactEmail *string
	IsInternal   *bool
}

// RateCardInput is one card in an UpsertRateCards payload. A zero ID means
// a new card; cards absent from the payload are deleted.
type RateCardInput struct {
	ID        string
	RoleName  string
	RateCents int64
	Unit      RateUnit
}

type UpsertRateCardsRequest struct {
	VendorID string
	Cards    []RateCardInput
}

type CreateResourceRequest struct {
	VendorID           string
	AssignedRateCardID string
	Name               string
	Type               ResourceType
	Phone              string
	IsActive           bool
}

type UpdateResourceRequest struct {
	ID                 string
	VendorID           *string
	AssignedRateCardID *string
	Name               *string
	Type               *ResourceType
	Phone              *string
	IsActive           *bool
}

type Service interface {
	CreateVendor(ctx context.Context, req CreateVendorRequest) (Vendor, error)
	UpdateVendor(ctx context.Context, req UpdateVendorRequest) (Vendor, error)
	GetVendor(ctx context.Context, id string) (Vendor, error)
	ListVendors(ctx context.Context) ([]Vendor, error)
	ArchiveVendor(ctx context.Context, id string) error

	ListRateCards(ctx context.Context, vendorID string) ([]RateCard, error)
	UpsertRateCards(ctx context.Context, req UpsertRateCardsRequest) ([]RateCard, error)
	DeleteRateCard(ctx context.Context, id string) error

	CreateResource(ctx context.Context, req CreateResourceRequest) (Resource, error)
	UpdateResource(ctx context.Context, req UpdateResourceRequest) (Resource, error)
	GetResource(ctx context.Context, id string) (Resource, error)
	ListResources(ctx context.Context, activeOnly bool) ([]Resource, error)
	SetResourceActive(ctx context.Context, id string, active bool) error
}

var (
	ErrInvalidOrganization = errors.New("no organization resolved for request")
	ErrInvalidID           = errors.New("invalid id")
	ErrInvalidName         = errors.New("name is required")
	ErrInvalidRoleName     = errors.New("role name is required")
	ErrInvalidRate         = errors.New("rate must not be negative")
	ErrInvalidUnit         = errors.New("unknown rate unit")
	ErrInvalidResourceType = errors.New("resource type must be person or plant")

	ErrVendorNotFound   = errors.New("vendor not found")
	ErrRateCardNotFound = errors.New("rate card not found")
	ErrResourceNotFound = errors.New("resource not found")

	// ErrRateCardVendorMismatch is the cross-entity invariant: a resource's
	// assigned rate card must belong to the resource's vendor.
	ErrRateCardVendorMismatch = errors.New("rate card must belong to the selected vendor")

	// ErrRateCardInUse blocks deleting a card while a resource references it.
	ErrRateCardInUse = errors.New("cannot delete rate card that is assigned to resources")

	// ErrVendorHasActiveResources blocks archiving a vendor that still owns
	// active resources.
	ErrVendorHasActiveResources = errors.New("cannot archive vendor with active resources")
)
