package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/lotworks/internal/orgcontext"
	"github.com/smallbiznis/lotworks/internal/rateledger/domain"
	"github.com/smallbiznis/lotworks/internal/rateledger/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc  domain.Service
	db   *gorm.DB
	node *snowflake.Node
	ctx  context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&domain.Vendor{},
		&domain.RateCard{},
		&domain.Resource{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	ctx := orgcontext.WithOrgID(context.Background(), node.Generate().Int64())
	svc := New(Params{DB: conn, Log: zap.NewNop(), GenID: node, Repo: repository.Provide()})
	return &fixture{svc: svc, db: conn, node: node, ctx: ctx}
}

func (f *fixture) seedVendorWithCard(t *testing.T, name string, rateCents int64) (domain.Vendor, domain.RateCard) {
	t.Helper()

	vendor, err := f.svc.CreateVendor(f.ctx, domain.CreateVendorRequest{Name: name})
	require.NoError(t, err)
	cards, err := f.svc.UpsertRateCards(f.ctx, domain.UpsertRateCardsRequest{
		VendorID: vendor.ID.String(),
		Cards:    []domain.RateCardInput{{RoleName: "Operator", RateCents: rateCents}},
	})
	require.NoError(t, err)
	require.Len(t, cards, 1)
	return vendor, cards[0]
}

func TestCreateVendorValidation(t *testing.T) {
	f := newFixture(t)

	vendor, err := f.svc.CreateVendor(f.ctx, domain.CreateVendorRequest{Name: "  Apex Plant Hire  ", ABN: "12 345 678 901"})
	require.NoError(t, err)
	assert.Equal(t, "Apex Plant Hire", vendor.Name)

	_, err = f.svc.CreateVendor(f.ctx, domain.CreateVendorRequest{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = f.svc.CreateVendor(context.Background(), domain.CreateVendorRequest{Name: "No Org"})
	assert.ErrorIs(t, err, domain.ErrInvalidOrganization)
}

func TestResourceRateCardMustBelongToVendor(t *testing.T) {
	f := newFixture(t)
	vendorA, cardA := f.seedVendorWithCard(t, "Apex Plant Hire", 18000)
	vendorB, cardB := f.seedVendorWithCard(t, "Internal Crew", 8550)

	_, err := f.svc.CreateResource(f.ctx, domain.CreateResourceRequest{
		VendorID:           vendorA.ID.String(),
		AssignedRateCardID: cardB.ID.String(),
		Name:               "20t Excavator",
		Type:               domain.ResourcePlant,
		IsActive:           true,
	})
	assert.ErrorIs(t, err, domain.ErrRateCardVendorMismatch)

	resource, err := f.svc.CreateResource(f.ctx, domain.CreateResourceRequest{
		VendorID:           vendorA.ID.String(),
		AssignedRateCardID: cardA.ID.String(),
		Name:               "20t Excavator",
		Type:               domain.ResourcePlant,
		IsActive:           true,
	})
	require.NoError(t, err)

	// Moving the resource to another vendor's card is checked on update too.
	cardBID := cardB.ID.String()
	_, err = f.svc.UpdateResource(f.ctx, domain.UpdateResourceRequest{
		ID:                 resource.ID.String(),
		AssignedRateCardID: &cardBID,
	})
	assert.ErrorIs(t, err, domain.ErrRateCardVendorMismatch)

	// Moving vendor and card together is allowed.
	vendorBID := vendorB.ID.String()
	updated, err := f.svc.UpdateResource(f.ctx, domain.UpdateResourceRequest{
		ID:                 resource.ID.String(),
		VendorID:           &vendorBID,
		AssignedRateCardID: &cardBID,
	})
	require.NoError(t, err)
	assert.Equal(t, vendorB.ID, updated.VendorID)
}

func TestUpsertRateCardsReplacesSet(t *testing.T) {
	f := newFixture(t)
	vendor, card := f.seedVendorWithCard(t, "Apex Plant Hire", 18000)

	cards, err := f.svc.UpsertRateCards(f.ctx, domain.UpsertRateCardsRequest{
		VendorID: vendor.ID.String(),
		Cards: []domain.RateCardInput{
			{ID: card.ID.String(), RoleName: "Senior Operator", RateCents: 21000},
			{RoleName: "Labourer", RateCents: 7500, Unit: domain.UnitHour},
		},
	})
	require.NoError(t, err)
	require.Len(t, cards, 2)

	byRole := map[string]domain.RateCard{}
	for _, c := range cards {
		byRole[c.RoleName] = c
	}
	assert.Equal(t, int64(21000), byRole["Senior Operator"].RateCents)
	assert.Equal(t, card.ID, byRole["Senior Operator"].ID)

	// Dropping a card from the payload deletes it.
	cards, err = f.svc.UpsertRateCards(f.ctx, domain.UpsertRateCardsRequest{
		VendorID: vendor.ID.String(),
		Cards:    []domain.RateCardInput{{ID: card.ID.String(), RoleName: "Senior Operator", RateCents: 21000}},
	})
	require.NoError(t, err)
	assert.Len(t, cards, 1)

	_, err = f.svc.UpsertRateCards(f.ctx, domain.UpsertRateCardsRequest{
		VendorID: vendor.ID.String(),
		Cards:    []domain.RateCardInput{{RoleName: "Operator", RateCents: -5}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRate)

	_, err = f.svc.UpsertRateCards(f.ctx, domain.UpsertRateCardsRequest{
		VendorID: vendor.ID.String(),
		Cards:    []domain.RateCardInput{{RoleName: "Operator", RateCents: 100, Unit: "fortnight"}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidUnit)
}

func TestRateCardDeleteGuardedByResources(t *testing.T) {
	f := newFixture(t)
	vendor, card := f.seedVendorWithCard(t, "Apex Plant Hire", 18000)

	_, err := f.svc.CreateResource(f.ctx, domain.CreateResourceRequest{
		VendorID:           vendor.ID.String(),
		AssignedRateCardID: card.ID.String(),
		Name:               "20t Excavator",
		Type:               domain.ResourcePlant,
		IsActive:           true,
	})
	require.NoError(t, err)

	err = f.svc.DeleteRateCard(f.ctx, card.ID.String())
	assert.ErrorIs(t, err, domain.ErrRateCardInUse)

	// Dropping it via upsert hits the same guard.
	_, err = f.svc.UpsertRateCards(f.ctx, domain.UpsertRateCardsRequest{
		VendorID: vendor.ID.String(),
		Cards:    []domain.RateCardInput{{RoleName: "Fresh Card", RateCents: 100}},
	})
	assert.ErrorIs(t, err, domain.ErrRateCardInUse)
}

func TestArchiveVendorGuardedByActiveResources(t *testing.T) {
	f := newFixture(t)
	vendor, card := f.seedVendorWithCard(t, "Apex Plant Hire", 18000)

	resource, err := f.svc.CreateResource(f.ctx, domain.CreateResourceRequest{
		VendorID:           vendor.ID.String(),
		AssignedRateCardID: card.ID.String(),
		Name:               "20t Excavator",
		Type:               domain.ResourcePlant,
		IsActive:           true,
	})
	require.NoError(t, err)

	err = f.svc.ArchiveVendor(f.ctx, vendor.ID.String())
	assert.ErrorIs(t, err, domain.ErrVendorHasActiveResources)

	require.NoError(t, f.svc.SetResourceActive(f.ctx, resource.ID.String(), false))
	require.NoError(t, f.svc.ArchiveVendor(f.ctx, vendor.ID.String()))

	_, err = f.svc.GetVendor(f.ctx, vendor.ID.String())
	assert.ErrorIs(t, err, domain.ErrVendorNotFound)
}

func TestListResourcesActiveFilterAndOrgScope(t *testing.T) {
	f := newFixture(t)
	vendor, card := f.seedVendorWithCard(t, "Apex Plant Hire", 18000)

	active, err := f.svc.CreateResource(f.ctx, domain.CreateResourceRequest{
		VendorID:           vendor.ID.String(),
		AssignedRateCardID: card.ID.String(),
		Name:               "20t Excavator",
		Type:               domain.ResourcePlant,
		IsActive:           true,
	})
	require.NoError(t, err)
	_, err = f.svc.CreateResource(f.ctx, domain.CreateResourceRequest{
		VendorID:           vendor.ID.String(),
		AssignedRateCardID: card.ID.String(),
		Name:               "Broken Dozer",
		Type:               domain.ResourcePlant,
		IsActive:           false,
	})
	require.NoError(t, err)

	all, err := f.svc.ListResources(f.ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyActive, err := f.svc.ListResources(f.ctx, true)
	require.NoError(t, err)
	require.Len(t, onlyActive, 1)
	assert.Equal(t, active.ID, onlyActive[0].ID)

	otherOrg := orgcontext.WithOrgID(context.Background(), f.node.Generate().Int64())
	foreign, err := f.svc.ListResources(otherOrg, false)
	require.NoError(t, err)
	assert.Empty(t, foreign)
}
