package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/lotworks/internal/orgcontext"
	"github.com/smallbiznis/lotworks/internal/rateledger/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("rateledger.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) CreateVendor(ctx context.Context, req domain.CreateVendorRequest) (domain.Vendor, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Vendor{}, domain.ErrInvalidOrganization
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Vendor{}, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	vendor := domain.Vendor{
		ID:           s.genID.Generate(),
		OrgID:        orgID,
		Name:         name,
		ABN:          strings.TrimSpace(req.ABN),
		ContactEmail: strings.TrimSpace(req.ContactEmail),
		IsInternal:   req.IsInternal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.InsertVendor(ctx, s.db, &vendor); err != nil {
		return domain.Vendor{}, err
	}
	return vendor, nil
}

func (s *Service) UpdateVendor(ctx context.Context, req domain.UpdateVendorRequest) (domain.Vendor, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Vendor{}, domain.ErrInvalidOrganization
	}

	id, err := parseID(req.ID)
	if err != nil {
		return domain.Vendor{}, err
	}

	vendor, err := s.repo.FindVendorByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.Vendor{}, err
	}
	if vendor == nil {
		return domain.Vendor{}, domain.ErrVendorNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Vendor{}, domain.ErrInvalidName
		}
		vendor.Name = name
	}
	if req.ABN != nil {
		vendor.ABN = strings.TrimSpace(*req.ABN)
	}
	if req.ContactEmail != nil {
		vendor.ContactEmail = strings.TrimSpace(*req.ContactEmail)
	}
	if req.IsInternal != nil {
		vendor.IsInternal = *req.IsInternal
	}
	vendor.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateVendor(ctx, s.db, vendor); err != nil {
		return domain.Vendor{}, err
	}
	return *vendor, nil
}

func (s *Service) GetVendor(ctx context.Context, id string) (domain.Vendor, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Vendor{}, domain.ErrInvalidOrganization
	}

	vendorID, err := parseID(id)
	if err != nil {
		return domain.Vendor{}, err
	}

	vendor, err := s.repo.FindVendorByID(ctx, s.db, orgID, vendorID)
	if err != nil {
		return domain.Vendor{}, err
	}
	if vendor == nil {
		return domain.Vendor{}, domain.ErrVendorNotFound
	}
	return *vendor, nil
}

func (s *Service) ListVendors(ctx context.Context) ([]domain.Vendor, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	return s.repo.ListVendors(ctx, s.db, orgID)
}

// ArchiveVendor removes a vendor. It is blocked while the vendor still owns
// active resources.
func (s *Service) ArchiveVendor(ctx context.Context, id string) error {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ErrInvalidOrganization
	}

	vendorID, err := parseID(id)
	if err != nil {
		return err
	}

	vendor, err := s.repo.FindVendorByID(ctx, s.db, orgID, vendorID)
	if err != nil {
		return err
	}
	if vendor == nil {
		return domain.ErrVendorNotFound
	}

	active, err := s.repo.CountActiveResourcesByVendor(ctx, s.db, vendorID)
	if err != nil {
		return err
	}
	if active > 0 {
		return domain.ErrVendorHasActiveResources
	}

	return s.repo.DeleteVendor(ctx, s.db, orgID, vendorID)
}

func (s *Service) ListRateCards(ctx context.Context, vendorID string) ([]domain.RateCard, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	id, err := parseID(vendorID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListRateCardsByVendor(ctx, s.db, orgID, id)
}

// UpsertRateCards replaces a vendor's card set. Cards missing from the
// payload are deleted unless a resource still references one of them.
func (s *Service) UpsertRateCards(ctx context.Context, req domain.UpsertRateCardsRequest) ([]domain.RateCard, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	vendorID, err := parseID(req.VendorID)
	if err != nil {
		return nil, err
	}

	vendor, err := s.repo.FindVendorByID(ctx, s.db, orgID, vendorID)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, domain.ErrVendorNotFound
	}

	type validated struct {
		id        snowflake.ID
		roleName  string
		rateCents int64
		unit      domain.RateUnit
	}
	cards := make([]validated, 0, len(req.Cards))
	for _, card := range req.Cards {
		roleName := strings.TrimSpace(card.RoleName)
		if roleName == "" {
			return nil, domain.ErrInvalidRoleName
		}
		if card.RateCents < 0 {
			return nil, domain.ErrInvalidRate
		}
		unit := card.Unit
		if unit == "" {
			unit = domain.UnitHour
		}
		if !domain.ValidUnit(unit) {
			return nil, domain.ErrInvalidUnit
		}
		var id snowflake.ID
		if strings.TrimSpace(card.ID) != "" {
			id, err = parseID(card.ID)
			if err != nil {
				return nil, err
			}
		}
		cards = append(cards, validated{id: id, roleName: roleName, rateCents: card.RateCents, unit: unit})
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.ListRateCardsByVendor(ctx, tx, orgID, vendorID)
		if err != nil {
			return err
		}

		keep := make(map[snowflake.ID]bool, len(cards))
		for _, card := range cards {
			if card.id != 0 {
				keep[card.id] = true
			}
		}

		var toDelete []snowflake.ID
		byID := make(map[snowflake.ID]domain.RateCard, len(existing))
		for _, card := range existing {
			byID[card.ID] = card
			if !keep[card.ID] {
				toDelete = append(toDelete, card.ID)
			}
		}

		if len(toDelete) > 0 {
			assigned, err := s.repo.CountResourcesByRateCards(ctx, tx, toDelete)
			if err != nil {
				return err
			}
			if assigned > 0 {
				return domain.ErrRateCardInUse
			}
			if err := s.repo.DeleteRateCards(ctx, tx, toDelete); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		for _, card := range cards {
			if card.id == 0 {
				insert := domain.RateCard{
					ID:        s.genID.Generate(),
					OrgID:     orgID,
					VendorID:  vendorID,
					RoleName:  card.roleName,
					RateCents: card.rateCents,
					Unit:      card.unit,
					CreatedAt: now,
					UpdatedAt: now,
				}
				if err := s.repo.InsertRateCard(ctx, tx, &insert); err != nil {
					return err
				}
				continue
			}

			current, ok := byID[card.id]
			if !ok {
				return domain.ErrRateCardNotFound
			}
			current.RoleName = card.roleName
			current.RateCents = card.rateCents
			current.Unit = card.unit
			current.UpdatedAt = now
			if err := s.repo.UpdateRateCard(ctx, tx, &current); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.ListRateCardsByVendor(ctx, s.db, orgID, vendorID)
}

func (s *Service) DeleteRateCard(ctx context.Context, id string) error {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ErrInvalidOrganization
	}

	cardID, err := parseID(id)
	if err != nil {
		return err
	}

	card, err := s.repo.FindRateCardByID(ctx, s.db, orgID, cardID)
	if err != nil {
		return err
	}
	if card == nil {
		return domain.ErrRateCardNotFound
	}

	assigned, err := s.repo.CountResourcesByRateCards(ctx, s.db, []snowflake.ID{cardID})
	if err != nil {
		return err
	}
	if assigned > 0 {
		return domain.ErrRateCardInUse
	}

	return s.repo.DeleteRateCards(ctx, s.db, []snowflake.ID{cardID})
}

func (s *Service) CreateResource(ctx context.Context, req domain.CreateResourceRequest) (domain.Resource, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Resource{}, domain.ErrInvalidOrganization
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Resource{}, domain.ErrInvalidName
	}
	if !domain.ValidResourceType(req.Type) {
		return domain.Resource{}, domain.ErrInvalidResourceType
	}

	vendorID, err := parseID(req.VendorID)
	if err != nil {
		return domain.Resource{}, err
	}
	cardID, err := parseID(req.AssignedRateCardID)
	if err != nil {
		return domain.Resource{}, err
	}

	if err := s.verifyCardOwnership(ctx, orgID, vendorID, cardID); err != nil {
		return domain.Resource{}, err
	}

	now := time.Now().UTC()
	resource := domain.Resource{
		ID:                 s.genID.Generate(),
		OrgID:              orgID,
		VendorID:           vendorID,
		AssignedRateCardID: cardID,
		Name:               name,
		Type:               req.Type,
		Phone:              strings.TrimSpace(req.Phone),
		IsActive:           req.IsActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.InsertResource(ctx, s.db, &resource); err != nil {
		return domain.Resource{}, err
	}
	return resource, nil
}

func (s *Service) UpdateResource(ctx context.Context, req domain.UpdateResourceRequest) (domain.Resource, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Resource{}, domain.ErrInvalidOrganization
	}

	id, err := parseID(req.ID)
	if err != nil {
		return domain.Resource{}, err
	}

	resource, err := s.repo.FindResourceByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.Resource{}, err
	}
	if resource == nil {
		return domain.Resource{}, domain.ErrResourceNotFound
	}

	if req.VendorID != nil {
		vendorID, err := parseID(*req.VendorID)
		if err != nil {
			return domain.Resource{}, err
		}
		resource.VendorID = vendorID
	}
	if req.AssignedRateCardID != nil {
		cardID, err := parseID(*req.AssignedRateCardID)
		if err != nil {
			return domain.Resource{}, err
		}
		resource.AssignedRateCardID = cardID
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Resource{}, domain.ErrInvalidName
		}
		resource.Name = name
	}
	if req.Type != nil {
		if !domain.ValidResourceType(*req.Type) {
			return domain.Resource{}, domain.ErrInvalidResourceType
		}
		resource.Type = *req.Type
	}
	if req.Phone != nil {
		resource.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.IsActive != nil {
		resource.IsActive = *req.IsActive
	}

	// The vendor/card pairing is re-checked on every update, not only when
	// one side changes.
	if err := s.verifyCardOwnership(ctx, orgID, resource.VendorID, resource.AssignedRateCardID); err != nil {
		return domain.Resource{}, err
	}

	resource.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateResource(ctx, s.db, resource); err != nil {
		return domain.Resource{}, err
	}
	return *resource, nil
}

func (s *Service) GetResource(ctx context.Context, id string) (domain.Resource, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Resource{}, domain.ErrInvalidOrganization
	}

	resourceID, err := parseID(id)
	if err != nil {
		return domain.Resource{}, err
	}

	resource, err := s.repo.FindResourceByID(ctx, s.db, orgID, resourceID)
	if err != nil {
		return domain.Resource{}, err
	}
	if resource == nil {
		return domain.Resource{}, domain.ErrResourceNotFound
	}
	return *resource, nil
}

func (s *Service) ListResources(ctx context.Context, activeOnly bool) ([]domain.Resource, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	return s.repo.ListResources(ctx, s.db, orgID, activeOnly)
}

func (s *Service) SetResourceActive(ctx context.Context, id string, active bool) error {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ErrInvalidOrganization
	}

	resourceID, err := parseID(id)
	if err != nil {
		return err
	}

	resource, err := s.repo.FindResourceByID(ctx, s.db, orgID, resourceID)
	if err != nil {
		return err
	}
	if resource == nil {
		return domain.ErrResourceNotFound
	}

	resource.IsActive = active
	resource.UpdatedAt = time.Now().UTC()
	return s.repo.UpdateResource(ctx, s.db, resource)
}

func (s *Service) verifyCardOwnership(ctx context.Context, orgID, vendorID, cardID snowflake.ID) error {
	card, err := s.repo.FindRateCardByID(ctx, s.db, orgID, cardID)
	if err != nil {
		return err
	}
	if card == nil || card.VendorID != vendorID {
		return domain.ErrRateCardVendorMismatch
	}
	return nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
