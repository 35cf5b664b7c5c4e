package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/lotworks/internal/actorcontext"
	"github.com/smallbiznis/lotworks/internal/diary/domain"
	"github.com/smallbiznis/lotworks/internal/diary/repository"
	"github.com/smallbiznis/lotworks/internal/orgcontext"
	projectdomain "github.com/smallbiznis/lotworks/internal/project/domain"
	rateledgerdomain "github.com/smallbiznis/lotworks/internal/rateledger/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc   domain.Service
	db    *gorm.DB
	node  *snowflake.Node
	ctx   context.Context
	orgID snowflake.ID
	lot   projectdomain.Lot
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
		&domain.Diary{},
		&domain.DiaryEntry{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	orgID := node.Generate()
	userID := node.Generate()
	ctx := orgcontext.WithOrgID(context.Background(), orgID.Int64())
	ctx = actorcontext.WithUserID(ctx, userID.Int64())

	project := projectdomain.Project{ID: node.Generate(), OrgID: orgID, Name: "Bypass Stage 2", Code: "BP2"}
	require.NoError(t, conn.Create(&project).Error)
	lot := projectdomain.Lot{ID: node.Generate(), OrgID: orgID, ProjectID: project.ID, LotNumber: "LOT-014", Status: projectdomain.LotOpen}
	require.NoError(t, conn.Create(&lot).Error)

	svc := New(Params{DB: conn, Log: zap.NewNop(), GenID: node, Repo: repository.Provide()})
	return &fixture{svc: svc, db: conn, node: node, ctx: ctx, orgID: orgID, lot: lot}
}

func (f *fixture) seedResource(t *testing.T, name string, rateCents int64) rateledgerdomain.Resource {
	t.Helper()

	vendor := rateledgerdomain.Vendor{ID: f.node.Generate(), OrgID: f.orgID, Name: name + " Vendor"}
	require.NoError(t, f.db.Create(&vendor).Error)
	card := rateledgerdomain.RateCard{ID: f.node.Generate(), OrgID: f.orgID, VendorID: vendor.ID, RoleName: "Operator", RateCents: rateCents, Unit: rateledgerdomain.UnitHour}
	require.NoError(t, f.db.Create(&card).Error)
	resource := rateledgerdomain.Resource{ID: f.node.Generate(), OrgID: f.orgID, VendorID: vendor.ID, AssignedRateCardID: card.ID, Name: name, Type: rateledgerdomain.ResourcePerson, IsActive: true}
	require.NoError(t, f.db.Create(&resource).Error)
	return resource
}

func clock(v string) *string { return &v }

func TestInitializeIsIdempotent(t *testing.T) {
	f := newFixture(t)

	first, err := f.svc.Initialize(f.ctx, domain.InitializeDiaryRequest{LotID: f.lot.ID.String(), Date: "2026-08-24"})
	require.NoError(t, err)
	assert.False(t, first.Existing)
	assert.Equal(t, domain.DiaryDraft, first.Diary.Status)

	second, err := f.svc.Initialize(f.ctx, domain.InitializeDiaryRequest{LotID: f.lot.ID.String(), Date: "2026-08-24"})
	require.NoError(t, err)
	assert.True(t, second.Existing)
	assert.Equal(t, first.Diary.ID, second.Diary.ID)

	var count int64
	require.NoError(t, f.db.Model(&domain.Diary{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestInitializeRejectsBadInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Initialize(f.ctx, domain.InitializeDiaryRequest{LotID: f.lot.ID.String(), Date: "24/08/2026"})
	assert.ErrorIs(t, err, domain.ErrInvalidDate)

	_, err = f.svc.Initialize(f.ctx, domain.InitializeDiaryRequest{LotID: f.node.Generate().String(), Date: "2026-08-24"})
	assert.ErrorIs(t, err, domain.ErrLotNotFound)

	_, err = f.svc.Initialize(f.ctx, domain.InitializeDiaryRequest{
		LotID:     f.lot.ID.String(),
		ProjectID: f.node.Generate().String(),
		Date:      "2026-08-24",
	})
	assert.ErrorIs(t, err, domain.ErrLotNotFound)

	_, err = f.svc.Initialize(context.Background(), domain.InitializeDiaryRequest{LotID: f.lot.ID.String(), Date: "2026-08-24"})
	assert.ErrorIs(t, err, domain.ErrInvalidOrganization)
}

func TestAddEntriesFreezesRateAndSkipsDuplicates(t *testing.T) {
	f := newFixture(t)
	resource := f.seedResource(t, "Excavator", 18000)

	result, err := f.svc.Initialize(f.ctx, domain.InitializeDiaryRequest{LotID: f.lot.ID.String(), Date: "2026-08-24"})
	require.NoError(t, err)
	diaryID := result.Diary.ID.String()

	added, err := f.svc.AddEntries(f.ctx, domain.AddEntriesRequest{DiaryID: diaryID, ResourceIDs: []string{resource.ID.String()}})
	require.NoError(t, err)
	assert.Equal(t, 1, added.Added)
	assert.Equal(t, 0, added.Skipped)

	// The live rate changes after the entry is created.
	require.NoError(t, f.db.Model(&rateledgerdomain.RateCard{}).
		Where("id = ?", resource.AssignedRateCardID).
		Update("rate_cents", 25000).Error)

	detail, err := f.svc.Get(f.ctx, diaryID)
	require.NoError(t, err)
	require.Len(t, detail.Entries, 1)
	require.NotNil(t, detail.Entries[0].FrozenRateCents)
	assert.Equal(t, int64(18000), *detail.Entries[0].FrozenRateCents)

	// Re-adding the same resource is a no-op.
	again, err := f.svc.AddEntries(f.ctx, domain.AddEntriesRequest{DiaryID: diaryID, ResourceIDs: []string{resource.ID.String()}})
	require.NoError(t, err)
	assert.Equal(t, 0, again.Added)
	assert.Equal(t, 1, again.Skipped)

	_, err = f.svc.AddEntries(f.ctx, domain.AddEntriesRequest{DiaryID: diaryID, ResourceIDs: []string{f.node.Generate().String()}})
	assert.ErrorIs(t, err, domain.ErrResourceNotFound)
}

func TestSetEntryTimeComputesTotalsFromFrozenRate(t *testing.T) {
	f := newFixture(t)
	resource := f.seedResource(t, "Dozer", 8550)

	result, err := f.svc.Initialize(f.ctx, domain.InitializeDiaryRequest{LotID: f.lot.ID.String(), Date: "2026-08-24"})
	require.NoError(t, err)
	diaryID := result.Diary.ID.String()

	_, err = f.svc.AddEntries(f.ctx, domain.AddEntriesRequest{DiaryID: diaryID, ResourceIDs: []string{resource.ID.String()}})
	require.NoError(t, err)
	detail, err := f.svc.Get(f.ctx, diaryID)
	require.NoError(t, err)
	entryID := detail.Entries[0].ID.String()

	entry, err := f.svc.SetEntryTime(f.ctx, domain.SetEntryTimeRequest{
		EntryID:    entryID,
		StartTime:  clock("07:00"),
		FinishTime: clock("15:00"),
		BreakHours: 0.5,
	})
	require.NoError(t, err)
	require.NotNil(t, entry.TotalHours)
	assert.InDelta(t, 7.5, *entry.TotalHours, 1e-9)
	require.NotNil(t, entry.TotalCostCents)
	assert.Equal(t, int64(64125), *entry.TotalCostCents)

	// Night shift wraps past midnight.
	entry, err = f.svc.SetEntryTime(f.ctx, domain.SetEntryTimeRequest{
		EntryID:    entryID,
		StartTime:  clock("22:00"),
		FinishTime: clock("06:00"),
		BreakHours: 0,
	})
	require.NoError(t, err)
	assert.InDelta(t, 8.0, *entry.TotalHours, 1e-9)
	assert.Equal(t, int64(68400), *entry.TotalCostCents)

	_, err = f.svc.SetEntryTime(f.ctx, domain.SetEntryTimeRequest{EntryID: entryID, StartTime: clock("07:00"), FinishTime: clock("15:00"), BreakHours: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidBreak)

	_, err = f.svc.SetEntryTime(f.ctx, domain.SetEntryTimeRequest{EntryID: entryID, StartTime: clock("7am"), FinishTime: clock("15:00")})
	assert.ErrorIs(t, err, domain.ErrInvalidClock)
}

func TestSetEntryTimeClearsToNull(t *testing.T) {
	f := newFixture(t)
	resource := f.seedResource(t, "Excavator", 18000)

	result, err := f.svc.Initialize(f.ctx, domain.InitializeDiaryRequest{LotID: f.lot.ID.String(), Date: "2026-08-24"})
	require.NoError(t, err)
	diaryID := result.Diary.ID.String()

	_, err = f.svc.AddEntries(f.ctx, domain.AddEntriesRequest{DiaryID: diaryID, ResourceIDs: []string{resource.ID.String()}})
	require.NoError(t, err)
	detail, err := f.svc.Get(f.ctx, diaryID)
	require.NoError(t, err)
	entryID := detail.Entries[0].ID.String()

	entry, err := f.svc.SetEntryTime(f.ctx, domain.SetEntryTimeRequest{EntryID: entryID, StartTime: clock("07:00"), FinishTime: clock("15:00")})
	require.NoError(t, err)
	require.NotNil(t, entry.TotalCostCents)

	// A mistaken finish time can be cleared back to null without dropping
	// and re-adding the entry, so the frozen rate is untouched.
	entry, err = f.svc.SetEntryTime(f.ctx, domain.SetEntryTimeRequest{EntryID: entryID, StartTime: clock("07:00"), FinishTime: clock("")})
	require.NoError(t, err)
	require.NotNil(t, entry.StartTime)
	assert.Equal(t, "07:00", *entry.StartTime)
	assert.Nil(t, entry.FinishTime)
	assert.Nil(t, entry.TotalHours)
	assert.Nil(t, entry.TotalCostCents)
	require.NotNil(t, entry.FrozenRateCents)
	assert.Equal(t, int64(18000), *entry.FrozenRateCents)

	entry, err = f.svc.SetEntryTime(f.ctx, domain.SetEntryTimeRequest{EntryID: entryID})
	require.NoError(t, err)
	assert.Nil(t, entry.StartTime)
	assert.Nil(t, entry.FinishTime)
	assert.Nil(t, entry.TotalHours)

	// Stored row matches what the call returned.
	detail, err = f.svc.Get(f.ctx, diaryID)
	require.NoError(t, err)
	assert.Nil(t, detail.Entries[0].StartTime)
	assert.Nil(t, detail.Entries[0].TotalCostCents)
}

func TestSubmitGates(t *testing.T) {
	f := newFixture(t)
	resource := f.seedResource(t, "Grader", 12000)

	result, err := f.svc.Initialize(f.ctx, domain.InitializeDiaryRequest{LotID: f.lot.ID.String(), Date: "2026-08-24"})
	require.NoError(t, err)
	diaryID := result.Diary.ID.String()

	_, err = f.svc.Submit(f.ctx, diaryID)
	assert.ErrorIs(t, err, domain.ErrDiaryEmpty)

	_, err = f.svc.AddEntries(f.ctx, domain.AddEntriesRequest{DiaryID: diaryID, ResourceIDs: []string{resource.ID.String()}})
	require.NoError(t, err)

	_, err = f.svc.Submit(f.ctx, diaryID)
	assert.ErrorIs(t, err, domain.ErrEntriesIncomplete)

	detail, err := f.svc.Get(f.ctx, diaryID)
	require.NoError(t, err)
	_, err = f.svc.SetEntryTime(f.ctx, domain.SetEntryTimeRequest{
		EntryID:    detail.Entries[0].ID.String(),
		StartTime:  clock("07:00"),
		FinishTime: clock("15:00"),
	})
	require.NoError(t, err)

	diary, err := f.svc.Submit(f.ctx, diaryID)
	require.NoError(t, err)
	assert.Equal(t, domain.DiarySubmitted, diary.Status)
}

func TestSubmittedDiaryIsImmutable(t *testing.T) {
	f := newFixture(t)
	resource := f.seedResource(t, "Roller", 9000)

	result, err := f.svc.Initialize(f.ctx, domain.InitializeDiaryRequest{LotID: f.lot.ID.String(), Date: "2026-08-24"})
	require.NoError(t, err)
	diaryID := result.Diary.ID.String()

	_, err = f.svc.AddEntries(f.ctx, domain.AddEntriesRequest{DiaryID: diaryID, ResourceIDs: []string{resource.ID.String()}})
	require.NoError(t, err)
	detail, err := f.svc.Get(f.ctx, diaryID)
	require.NoError(t, err)
	entryID := detail.Entries[0].ID.String()

	_, err = f.svc.SetEntryTime(f.ctx, domain.SetEntryTimeRequest{EntryID: entryID, StartTime: clock("07:00"), FinishTime: clock("15:00")})
	require.NoError(t, err)
	_, err = f.svc.Submit(f.ctx, diaryID)
	require.NoError(t, err)

	_, err = f.svc.AddEntries(f.ctx, domain.AddEntriesRequest{DiaryID: diaryID, ResourceIDs: []string{resource.ID.String()}})
	assert.ErrorIs(t, err, domain.ErrDiarySubmitted)

	_, err = f.svc.SetEntryTime(f.ctx, domain.SetEntryTimeRequest{EntryID: entryID, StartTime: clock("08:00"), FinishTime: clock("16:00")})
	assert.ErrorIs(t, err, domain.ErrDiarySubmitted)

	err = f.svc.RemoveEntry(f.ctx, entryID)
	assert.ErrorIs(t, err, domain.ErrDiarySubmitted)

	_, err = f.svc.UpdateNotes(f.ctx, domain.UpdateNotesRequest{DiaryID: diaryID, Notes: "late edit"})
	assert.ErrorIs(t, err, domain.ErrDiarySubmitted)

	_, err = f.svc.Submit(f.ctx, diaryID)
	assert.ErrorIs(t, err, domain.ErrDiarySubmitted)
}

func TestNotesAndRemoveEntryOnDraft(t *testing.T) {
	f := newFixture(t)
	resource := f.seedResource(t, "Paver", 20000)

	result, err := f.svc.Initialize(f.ctx, domain.InitializeDiaryRequest{LotID: f.lot.ID.String(), Date: "2026-08-24"})
	require.NoError(t, err)
	diaryID := result.Diary.ID.String()

	diary, err := f.svc.UpdateNotes(f.ctx, domain.UpdateNotesRequest{DiaryID: diaryID, Notes: "rain delay until 10am"})
	require.NoError(t, err)
	assert.Equal(t, "rain delay until 10am", diary.Notes)

	_, err = f.svc.AddEntries(f.ctx, domain.AddEntriesRequest{DiaryID: diaryID, ResourceIDs: []string{resource.ID.String()}})
	require.NoError(t, err)
	detail, err := f.svc.Get(f.ctx, diaryID)
	require.NoError(t, err)
	require.Len(t, detail.Entries, 1)

	require.NoError(t, f.svc.RemoveEntry(f.ctx, detail.Entries[0].ID.String()))
	detail, err = f.svc.Get(f.ctx, diaryID)
	require.NoError(t, err)
	assert.Empty(t, detail.Entries)
}

func TestListForDateScopesByProjectAndOrg(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Initialize(f.ctx, domain.InitializeDiaryRequest{LotID: f.lot.ID.String(), Date: "2026-08-24"})
	require.NoError(t, err)

	diaries, err := f.svc.ListForDate(f.ctx, f.lot.ProjectID.String(), "2026-08-24")
	require.NoError(t, err)
	assert.Len(t, diaries, 1)

	diaries, err = f.svc.ListForDate(f.ctx, "", "2026-08-25")
	require.NoError(t, err)
	assert.Empty(t, diaries)

	otherOrg := orgcontext.WithOrgID(context.Background(), f.node.Generate().Int64())
	diaries, err = f.svc.ListForDate(otherOrg, "", "2026-08-24")
	require.NoError(t, err)
	assert.Empty(t, diaries)
}
