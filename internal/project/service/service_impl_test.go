package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	diarydomain "github.com/smallbiznis/lotworks/internal/diary/domain"
	itpdomain "github.com/smallbiznis/lotworks/internal/itp/domain"
	"github.com/smallbiznis/lotworks/internal/orgcontext"
	"github.com/smallbiznis/lotworks/internal/project/domain"
	"github.com/smallbiznis/lotworks/internal/project/repository"
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
	orgID int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&domain.Project{},
		&domain.Lot{},
		&diarydomain.Diary{},
		&itpdomain.LotItp{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	orgID := node.Generate().Int64()
	ctx := orgcontext.WithOrgID(context.Background(), orgID)
	svc := New(Params{DB: conn, Log: zap.NewNop(), GenID: node, Repo: repository.Provide()})
	return &fixture{svc: svc, db: conn, node: node, ctx: ctx, orgID: orgID}
}

func (f *fixture) seedProject(t *testing.T, name, code string) domain.Project {
	t.Helper()

	project, err := f.svc.CreateProject(f.ctx, domain.CreateProjectRequest{Name: name, Code: code})
	require.NoError(t, err)
	return project
}

func TestCreateProjectRejectsDuplicateCode(t *testing.T) {
	f := newFixture(t)

	project := f.seedProject(t, "  Bypass Stage 2  ", " BP2 ")
	assert.Equal(t, "Bypass Stage 2", project.Name)
	assert.Equal(t, "BP2", project.Code)
	assert.Equal(t, domain.ProjectActive, project.Status)

	_, err := f.svc.CreateProject(f.ctx, domain.CreateProjectRequest{Name: "Other", Code: "BP2"})
	assert.ErrorIs(t, err, domain.ErrDuplicateProjectCode)

	_, err = f.svc.CreateProject(f.ctx, domain.CreateProjectRequest{Name: "", Code: "X1"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
	_, err = f.svc.CreateProject(f.ctx, domain.CreateProjectRequest{Name: "No Code", Code: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidCode)
	_, err = f.svc.CreateProject(context.Background(), domain.CreateProjectRequest{Name: "No Org", Code: "NO1"})
	assert.ErrorIs(t, err, domain.ErrInvalidOrganization)
}

func TestUpdateProjectChecksCodeCollision(t *testing.T) {
	f := newFixture(t)
	a := f.seedProject(t, "Bypass Stage 2", "BP2")
	b := f.seedProject(t, "Interchange Upgrade", "IC1")

	taken := "BP2"
	_, err := f.svc.UpdateProject(f.ctx, domain.UpdateProjectRequest{ID: b.ID.String(), Code: &taken})
	assert.ErrorIs(t, err, domain.ErrDuplicateProjectCode)

	// Re-submitting a project's own code is not a collision.
	own := "BP2"
	name := "Bypass Stage 2B"
	updated, err := f.svc.UpdateProject(f.ctx, domain.UpdateProjectRequest{ID: a.ID.String(), Name: &name, Code: &own})
	require.NoError(t, err)
	assert.Equal(t, "Bypass Stage 2B", updated.Name)

	archived := domain.ProjectArchived
	updated, err = f.svc.UpdateProject(f.ctx, domain.UpdateProjectRequest{ID: b.ID.String(), Status: &archived})
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectArchived, updated.Status)
}

func TestCreateLotRejectsDuplicateNumberWithinProject(t *testing.T) {
	f := newFixture(t)
	project := f.seedProject(t, "Bypass Stage 2", "BP2")
	other := f.seedProject(t, "Interchange Upgrade", "IC1")

	lot, err := f.svc.CreateLot(f.ctx, domain.CreateLotRequest{
		ProjectID:   project.ID.String(),
		LotNumber:   " LOT-001 ",
		Description: "Strip topsoil ch 0-250",
	})
	require.NoError(t, err)
	assert.Equal(t, "LOT-001", lot.LotNumber)
	assert.Equal(t, domain.LotOpen, lot.Status)

	_, err = f.svc.CreateLot(f.ctx, domain.CreateLotRequest{ProjectID: project.ID.String(), LotNumber: "LOT-001"})
	assert.ErrorIs(t, err, domain.ErrDuplicateLotNumber)

	// Same number under a different project is fine.
	_, err = f.svc.CreateLot(f.ctx, domain.CreateLotRequest{ProjectID: other.ID.String(), LotNumber: "LOT-001"})
	require.NoError(t, err)

	_, err = f.svc.CreateLot(f.ctx, domain.CreateLotRequest{ProjectID: project.ID.String(), LotNumber: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidLotNumber)
	_, err = f.svc.CreateLot(f.ctx, domain.CreateLotRequest{ProjectID: f.node.Generate().String(), LotNumber: "LOT-009"})
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}

func TestBulkImportDeduplicatesAndReportsSkips(t *testing.T) {
	f := newFixture(t)
	project := f.seedProject(t, "Bypass Stage 2", "BP2")

	_, err := f.svc.CreateLot(f.ctx, domain.CreateLotRequest{ProjectID: project.ID.String(), LotNumber: "LOT-001"})
	require.NoError(t, err)

	csv := "LOT-001\tAlready there\n" +
		"LOT-002\tCut to fill, zone 3\n" +
		"\n" +
		"LOT-003,Drainage line A\n" +
		"LOT-003\tRepeated in batch\n" +
		",line with no lot number\n" +
		"   \n" +
		"LOT-004\n"

	result, err := f.svc.BulkImportLots(f.ctx, project.ID.String(), csv)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Created)
	assert.Equal(t, []string{"LOT-001", "LOT-003"}, result.Duplicates)
	assert.Equal(t, []string{",line with no lot number"}, result.SkippedLines)
	assert.Equal(t, 1, result.Skipped)

	lots, err := f.svc.ListLots(f.ctx, project.ID.String())
	require.NoError(t, err)
	assert.Len(t, lots, 4)

	numbers := make(map[string]string)
	for _, lot := range lots {
		numbers[lot.LotNumber] = lot.Description
	}
	assert.Equal(t, "Cut to fill, zone 3", numbers["LOT-002"])
	assert.Equal(t, "Drainage line A", numbers["LOT-003"])
	assert.Contains(t, numbers, "LOT-004")
}

func TestDeleteLotGuardedByLinkedRecords(t *testing.T) {
	f := newFixture(t)
	project := f.seedProject(t, "Bypass Stage 2", "BP2")

	withDiary, err := f.svc.CreateLot(f.ctx, domain.CreateLotRequest{ProjectID: project.ID.String(), LotNumber: "LOT-001"})
	require.NoError(t, err)
	withItp, err := f.svc.CreateLot(f.ctx, domain.CreateLotRequest{ProjectID: project.ID.String(), LotNumber: "LOT-002"})
	require.NoError(t, err)
	clean, err := f.svc.CreateLot(f.ctx, domain.CreateLotRequest{ProjectID: project.ID.String(), LotNumber: "LOT-003"})
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, f.db.Create(&diarydomain.Diary{
		ID:        f.node.Generate(),
		OrgID:     withDiary.OrgID,
		ProjectID: withDiary.ProjectID,
		LotID:     withDiary.ID,
		Date:      "2026-08-24",
		ForemanID: f.node.Generate(),
		Status:    diarydomain.DiaryDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}).Error)
	require.NoError(t, f.db.Create(&itpdomain.LotItp{
		ID:            f.node.Generate(),
		OrgID:         withItp.OrgID,
		LotID:         withItp.ID,
		TemplateID:    f.node.Generate(),
		TemplateTitle: "Earthworks Conformance",
		Status:        itpdomain.LotItpInProgress,
		CreatedAt:     now,
		UpdatedAt:     now,
	}).Error)

	assert.ErrorIs(t, f.svc.DeleteLot(f.ctx, withDiary.ID.String()), domain.ErrLotHasDiaries)
	assert.ErrorIs(t, f.svc.DeleteLot(f.ctx, withItp.ID.String()), domain.ErrLotHasItps)

	require.NoError(t, f.svc.DeleteLot(f.ctx, clean.ID.String()))
	lots, err := f.svc.ListLots(f.ctx, project.ID.String())
	require.NoError(t, err)
	assert.Len(t, lots, 2)

	assert.ErrorIs(t, f.svc.DeleteLot(f.ctx, clean.ID.String()), domain.ErrLotNotFound)
}

func TestUpdateLotStatus(t *testing.T) {
	f := newFixture(t)
	project := f.seedProject(t, "Bypass Stage 2", "BP2")
	lot, err := f.svc.CreateLot(f.ctx, domain.CreateLotRequest{ProjectID: project.ID.String(), LotNumber: "LOT-001"})
	require.NoError(t, err)

	updated, err := f.svc.UpdateLotStatus(f.ctx, lot.ID.String(), domain.LotConformed)
	require.NoError(t, err)
	assert.Equal(t, domain.LotConformed, updated.Status)

	_, err = f.svc.UpdateLotStatus(f.ctx, lot.ID.String(), domain.LotStatus("demolished"))
	assert.ErrorIs(t, err, domain.ErrInvalidLotStatus)
	_, err = f.svc.UpdateLotStatus(f.ctx, f.node.Generate().String(), domain.LotClosed)
	assert.ErrorIs(t, err, domain.ErrLotNotFound)
}

func TestProjectSummariesCountLots(t *testing.T) {
	f := newFixture(t)
	project := f.seedProject(t, "Bypass Stage 2", "BP2")
	archived := f.seedProject(t, "Old Job", "OLD1")

	status := domain.ProjectArchived
	_, err := f.svc.UpdateProject(f.ctx, domain.UpdateProjectRequest{ID: archived.ID.String(), Status: &status})
	require.NoError(t, err)

	for _, number := range []string{"LOT-001", "LOT-002", "LOT-003"} {
		_, err := f.svc.CreateLot(f.ctx, domain.CreateLotRequest{ProjectID: project.ID.String(), LotNumber: number})
		require.NoError(t, err)
	}
	lot, err := f.svc.CreateLot(f.ctx, domain.CreateLotRequest{ProjectID: project.ID.String(), LotNumber: "LOT-004"})
	require.NoError(t, err)
	_, err = f.svc.UpdateLotStatus(f.ctx, lot.ID.String(), domain.LotConformed)
	require.NoError(t, err)

	summary, err := f.svc.GetProject(f.ctx, project.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 4, summary.TotalLotCount)
	assert.Equal(t, 3, summary.OpenLotCount)

	active, err := f.svc.ListProjects(f.ctx, false)
	require.NoError(t, err)
	assert.Len(t, active, 1)
	assert.Equal(t, project.ID, active[0].ID)

	all, err := f.svc.ListProjects(f.ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// Another organization sees nothing.
	foreign := orgcontext.WithOrgID(context.Background(), f.node.Generate().Int64())
	none, err := f.svc.ListProjects(foreign, true)
	require.NoError(t, err)
	assert.Empty(t, none)
	_, err = f.svc.GetProject(foreign, project.ID.String())
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}
