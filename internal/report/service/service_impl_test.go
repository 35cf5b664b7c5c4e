package service

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/lotworks/internal/clock"
	diarydomain "github.com/smallbiznis/lotworks/internal/diary/domain"
	"github.com/smallbiznis/lotworks/internal/orgcontext"
	projectdomain "github.com/smallbiznis/lotworks/internal/project/domain"
	rateledgerdomain "github.com/smallbiznis/lotworks/internal/rateledger/domain"
	"github.com/smallbiznis/lotworks/internal/report/domain"
	"github.com/smallbiznis/lotworks/internal/report/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc     domain.Service
	db      *gorm.DB
	node    *snowflake.Node
	ctx     context.Context
	orgID   snowflake.ID
	project projectdomain.Project
	lot     projectdomain.Lot
	clock   *clock.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&rateledgerdomain.Vendor{},
		&rateledgerdomain.RateCard{},
		&rateledgerdomain.Resource{},
		&projectdomain.Project{},
		&projectdomain.Lot{},
		&diarydomain.Diary{},
		&diarydomain.DiaryEntry{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	orgID := node.Generate()
	ctx := orgcontext.WithOrgID(context.Background(), orgID.Int64())

	project := projectdomain.Project{ID: node.Generate(), OrgID: orgID, Name: "Bypass Stage 2", Code: "BP2"}
	require.NoError(t, conn.Create(&project).Error)
	lot := projectdomain.Lot{ID: node.Generate(), OrgID: orgID, ProjectID: project.ID, LotNumber: "LOT-014", Status: projectdomain.LotOpen}
	require.NoError(t, conn.Create(&lot).Error)

	// Wednesday 2026-08-26; the surrounding week is Mon 24th to Sun 30th.
	fake := clock.NewFakeClock(time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC))
	svc := New(Params{DB: conn, Log: zap.NewNop(), Clock: fake, Repo: repository.Provide()})
	return &fixture{svc: svc, db: conn, node: node, ctx: ctx, orgID: orgID, project: project, lot: lot, clock: fake}
}

func (f *fixture) seedResource(t *testing.T, vendorName, resourceName string) rateledgerdomain.Resource {
	t.Helper()

	var vendor rateledgerdomain.Vendor
	err := f.db.Where("org_id = ? AND name = ?", f.orgID, vendorName).First(&vendor).Error
	if err == gorm.ErrRecordNotFound {
		vendor = rateledgerdomain.Vendor{ID: f.node.Generate(), OrgID: f.orgID, Name: vendorName}
		require.NoError(t, f.db.Create(&vendor).Error)
	} else {
		require.NoError(t, err)
	}

	card := rateledgerdomain.RateCard{ID: f.node.Generate(), OrgID: f.orgID, VendorID: vendor.ID, RoleName: "Operator", RateCents: 10000, Unit: rateledgerdomain.UnitHour}
	require.NoError(t, f.db.Create(&card).Error)
	resource := rateledgerdomain.Resource{ID: f.node.Generate(), OrgID: f.orgID, VendorID: vendor.ID, AssignedRateCardID: card.ID, Name: resourceName, Type: rateledgerdomain.ResourcePlant, IsActive: true}
	require.NoError(t, f.db.Create(&resource).Error)
	return resource
}

// seedEntry writes a diary (creating it for the date if needed) and one
// entry with pre-computed stored totals, the way the diary service leaves
// them.
func (f *fixture) seedEntry(t *testing.T, resource rateledgerdomain.Resource, date string, hours float64, cents int64) {
	t.Helper()

	var diary diarydomain.Diary
	err := f.db.Where("org_id = ? AND lot_id = ? AND date = ?", f.orgID, f.lot.ID, date).First(&diary).Error
	if err == gorm.ErrRecordNotFound {
		diary = diarydomain.Diary{
			ID: f.node.Generate(), OrgID: f.orgID, ProjectID: f.project.ID,
			LotID: f.lot.ID, Date: date, ForemanID: f.node.Generate(), Status: diarydomain.DiarySubmitted,
		}
		require.NoError(t, f.db.Create(&diary).Error)
	} else {
		require.NoError(t, err)
	}

	rate := int64(10000)
	entry := diarydomain.DiaryEntry{
		ID: f.node.Generate(), OrgID: f.orgID, DiaryID: diary.ID, ResourceID: resource.ID,
		FrozenRateCents: &rate, TotalHours: &hours, TotalCostCents: &cents,
	}
	require.NoError(t, f.db.Create(&entry).Error)
}

func TestWeeklyGroupsByVendorAndResource(t *testing.T) {
	f := newFixture(t)
	digger := f.seedResource(t, "Apex Plant Hire", "20t Excavator")
	dozer := f.seedResource(t, "Apex Plant Hire", "D6 Dozer")
	crew := f.seedResource(t, "Internal Crew", "J. Smith")

	// Digger works two days, two entries on the first day.
	f.seedEntry(t, digger, "2026-08-24", 4, 40000)
	f.seedEntry(t, digger, "2026-08-24", 3.5, 35000)
	f.seedEntry(t, digger, "2026-08-25", 8, 80000)
	f.seedEntry(t, dozer, "2026-08-25", 6, 60000)
	f.seedEntry(t, crew, "2026-08-26", 8, 68400)

	report, err := f.svc.Weekly(f.ctx, domain.WeeklyRequest{Start: "2026-08-24", End: "2026-08-30"})
	require.NoError(t, err)

	require.Len(t, report.Vendors, 2)
	apex := report.Vendors[0]
	assert.Equal(t, "Apex Plant Hire", apex.VendorName)
	require.Len(t, apex.Resources, 2)

	diggerLine := apex.Resources[0]
	assert.Equal(t, "20t Excavator", diggerLine.ResourceName)
	assert.Equal(t, 2, diggerLine.DaysWorked)
	assert.InDelta(t, 15.5, diggerLine.TotalHours, 1e-9)
	assert.Equal(t, int64(155000), diggerLine.TotalCents)

	assert.InDelta(t, 21.5, apex.TotalHours, 1e-9)
	assert.Equal(t, int64(215000), apex.TotalCents)

	assert.InDelta(t, 29.5, report.TotalHours, 1e-9)
	assert.Equal(t, int64(283400), report.TotalCents)
	assert.Equal(t, 3, report.ActiveResources)
}

func TestWeeklyFilters(t *testing.T) {
	f := newFixture(t)
	digger := f.seedResource(t, "Apex Plant Hire", "20t Excavator")
	crew := f.seedResource(t, "Internal Crew", "J. Smith")
	f.seedEntry(t, digger, "2026-08-24", 8, 80000)
	f.seedEntry(t, crew, "2026-08-24", 8, 68400)

	var apex rateledgerdomain.Vendor
	require.NoError(t, f.db.Where("name = ?", "Apex Plant Hire").First(&apex).Error)

	report, err := f.svc.Weekly(f.ctx, domain.WeeklyRequest{
		Start: "2026-08-24", End: "2026-08-30", VendorID: apex.ID.String(),
	})
	require.NoError(t, err)
	require.Len(t, report.Vendors, 1)
	assert.Equal(t, "Apex Plant Hire", report.Vendors[0].VendorName)
	assert.Equal(t, 1, report.ActiveResources)

	// A window outside the entries is empty.
	report, err = f.svc.Weekly(f.ctx, domain.WeeklyRequest{Start: "2026-09-07", End: "2026-09-13"})
	require.NoError(t, err)
	assert.Empty(t, report.Vendors)
	assert.Equal(t, int64(0), report.TotalCents)

	// Another project filters everything out.
	report, err = f.svc.Weekly(f.ctx, domain.WeeklyRequest{
		Start: "2026-08-24", End: "2026-08-30", ProjectID: f.node.Generate().String(),
	})
	require.NoError(t, err)
	assert.Empty(t, report.Vendors)
}

func TestWeeklyValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Weekly(f.ctx, domain.WeeklyRequest{Start: "24-08-2026", End: "2026-08-30"})
	assert.ErrorIs(t, err, domain.ErrInvalidDate)

	_, err = f.svc.Weekly(f.ctx, domain.WeeklyRequest{Start: "2026-08-30", End: "2026-08-24"})
	assert.ErrorIs(t, err, domain.ErrInvalidRange)

	_, err = f.svc.Weekly(f.ctx, domain.WeeklyRequest{Start: "2026-08-24", End: "2026-08-30", VendorID: "not-a-number"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = f.svc.Weekly(context.Background(), domain.WeeklyRequest{Start: "2026-08-24", End: "2026-08-30"})
	assert.ErrorIs(t, err, domain.ErrInvalidOrganization)
}

func TestSummaryUsesClockWeek(t *testing.T) {
	f := newFixture(t)
	digger := f.seedResource(t, "Apex Plant Hire", "20t Excavator")
	f.seedEntry(t, digger, "2026-08-24", 8, 80000)
	f.seedEntry(t, digger, "2026-08-23", 8, 80000) // previous Sunday, out of window

	summary, err := f.svc.Summary(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-08-24", summary.WeekStart)
	assert.Equal(t, "2026-08-30", summary.WeekEnd)
	assert.InDelta(t, 8.0, summary.TotalHours, 1e-9)
	assert.Equal(t, int64(80000), summary.TotalCents)
	assert.Equal(t, 1, summary.ActiveResources)
	assert.Equal(t, 1, summary.DiaryCount)

	// A week later the window has moved past the entries.
	f.clock.Advance(7 * 24 * time.Hour)
	summary, err = f.svc.Summary(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-08-31", summary.WeekStart)
	assert.Equal(t, int64(0), summary.TotalCents)
}

func TestExportXLSX(t *testing.T) {
	f := newFixture(t)
	digger := f.seedResource(t, "Apex Plant Hire", "20t Excavator")
	f.seedEntry(t, digger, "2026-08-24", 8, 80000)

	data, err := f.svc.ExportXLSX(f.ctx, domain.WeeklyRequest{Start: "2026-08-24", End: "2026-08-30"})
	require.NoError(t, err)
	require.NotEmpty(t, data)
	// xlsx files are zip archives.
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))
}
