package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/smallbiznis/lotworks/internal/actorcontext"
	"github.com/smallbiznis/lotworks/internal/itp/domain"
	"github.com/smallbiznis/lotworks/internal/orgcontext"
	"github.com/smallbiznis/lotworks/internal/photostore"
	"github.com/smallbiznis/lotworks/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   domain.Repository
	Photos photostore.Store
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	repo   domain.Repository
	photos photostore.Store
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("itp.service"),
		genID:  p.GenID,
		repo:   p.Repo,
		photos: p.Photos,
	}
}

// normalizeItems validates questions, assigns IDs to new items and
// re-sequences order from zero. Caller-supplied order values are ignored;
// array position wins.
func normalizeItems(inputs []domain.TemplateItemInput) ([]domain.TemplateItem, error) {
	items := make([]domain.TemplateItem, 0, len(inputs))
	for i, in := range inputs {
		question := strings.TrimSpace(in.Question)
		if question == "" {
			return nil, domain.ErrInvalidQuestion
		}
		id := in.ID
		if id == "" {
			id = uuid.NewString()
		}
		items = append(items, domain.TemplateItem{
			ID:          id,
			Question:    question,
			IsHoldPoint: in.IsHoldPoint,
			Order:       i,
		})
	}
	return items, nil
}

func (s *Service) CreateTemplate(ctx context.Context, req domain.CreateTemplateRequest) (domain.Template, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Template{}, domain.ErrInvalidOrganization
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Template{}, domain.ErrInvalidTitle
	}
	items, err := normalizeItems(req.Items)
	if err != nil {
		return domain.Template{}, err
	}

	now := time.Now().UTC()
	template := domain.Template{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		Title:     title,
		Items:     datatypes.NewJSONSlice(items),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.SaveTemplate(ctx, s.db, &template); err != nil {
		return domain.Template{}, err
	}
	return template, nil
}

func (s *Service) UpdateTemplateTitle(ctx context.Context, req domain.UpdateTemplateTitleRequest) (domain.Template, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Template{}, domain.ErrInvalidOrganization
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Template{}, domain.ErrInvalidTitle
	}

	template, err := s.findTemplate(ctx, orgID, req.TemplateID)
	if err != nil {
		return domain.Template{}, err
	}
	template.Title = title
	template.UpdatedAt = time.Now().UTC()
	if err := s.repo.SaveTemplate(ctx, s.db, template); err != nil {
		return domain.Template{}, err
	}
	return *template, nil
}

// ReplaceTemplateItems swaps the template's question list wholesale.
// Inspections already attached to lots keep their copied checks untouched.
func (s *Service) ReplaceTemplateItems(ctx context.Context, req domain.ReplaceTemplateItemsRequest) (domain.Template, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Template{}, domain.ErrInvalidOrganization
	}

	items, err := normalizeItems(req.Items)
	if err != nil {
		return domain.Template{}, err
	}

	template, err := s.findTemplate(ctx, orgID, req.TemplateID)
	if err != nil {
		return domain.Template{}, err
	}
	template.Items = datatypes.NewJSONSlice(items)
	template.UpdatedAt = time.Now().UTC()
	if err := s.repo.SaveTemplate(ctx, s.db, template); err != nil {
		return domain.Template{}, err
	}
	return *template, nil
}

func (s *Service) DeleteTemplate(ctx context.Context, templateID string) error {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ErrInvalidOrganization
	}

	template, err := s.findTemplate(ctx, orgID, templateID)
	if err != nil {
		return err
	}
	attached, err := s.repo.CountLotItpsByTemplate(ctx, s.db, template.ID)
	if err != nil {
		return err
	}
	if attached > 0 {
		return domain.ErrTemplateInUse
	}
	return s.repo.DeleteTemplate(ctx, s.db, template)
}

func (s *Service) GetTemplate(ctx context.Context, templateID string) (domain.Template, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Template{}, domain.ErrInvalidOrganization
	}
	template, err := s.findTemplate(ctx, orgID, templateID)
	if err != nil {
		return domain.Template{}, err
	}
	return *template, nil
}

func (s *Service) ListTemplates(ctx context.Context) ([]domain.Template, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	return s.repo.ListTemplates(ctx, s.db, orgID)
}

// AvailableTemplatesForLot lists templates not yet attached to the lot.
func (s *Service) AvailableTemplatesForLot(ctx context.Context, lotID string) ([]domain.Template, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	id, err := parseID(lotID)
	if err != nil {
		return nil, err
	}

	lot, err := s.repo.FindLot(ctx, s.db, orgID, id)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, domain.ErrLotNotFound
	}

	attached, err := s.repo.ListAttachedTemplateIDs(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	taken := make(map[snowflake.ID]bool, len(attached))
	for _, tid := range attached {
		taken[tid] = true
	}

	templates, err := s.repo.ListTemplates(ctx, s.db, orgID)
	if err != nil {
		return nil, err
	}
	available := make([]domain.Template, 0, len(templates))
	for _, t := range templates {
		if !taken[t.ID] {
			available = append(available, t)
		}
	}
	return available, nil
}

// AttachToLot copies the template's items onto the lot as checks. The
// inspection row and its checks are written in one transaction; a
// duplicate attach trips the unique index and maps to a conflict.
func (s *Service) AttachToLot(ctx context.Context, req domain.AttachRequest) (domain.LotItpDetail, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.LotItpDetail{}, domain.ErrInvalidOrganization
	}

	lotID, err := parseID(req.LotID)
	if err != nil {
		return domain.LotItpDetail{}, err
	}
	templateID, err := parseID(req.TemplateID)
	if err != nil {
		return domain.LotItpDetail{}, err
	}

	lot, err := s.repo.FindLot(ctx, s.db, orgID, lotID)
	if err != nil {
		return domain.LotItpDetail{}, err
	}
	if lot == nil {
		return domain.LotItpDetail{}, domain.ErrLotNotFound
	}
	template, err := s.repo.FindTemplate(ctx, s.db, orgID, templateID)
	if err != nil {
		return domain.LotItpDetail{}, err
	}
	if template == nil {
		return domain.LotItpDetail{}, domain.ErrTemplateNotFound
	}
	if len(template.Items) == 0 {
		return domain.LotItpDetail{}, domain.ErrTemplateEmpty
	}

	items := make([]domain.TemplateItem, len(template.Items))
	copy(items, template.Items)
	sort.Slice(items, func(i, j int) bool { return items[i].Order < items[j].Order })

	now := time.Now().UTC()
	lotItp := domain.LotItp{
		ID:            s.genID.Generate(),
		OrgID:         orgID,
		LotID:         lotID,
		TemplateID:    templateID,
		TemplateTitle: template.Title,
		Status:        domain.LotItpInProgress,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	checks := make([]domain.Check, 0, len(items))
	for i, item := range items {
		checks = append(checks, domain.Check{
			ID:          s.genID.Generate(),
			OrgID:       orgID,
			LotItpID:    lotItp.ID,
			Question:    item.Question,
			IsHoldPoint: item.IsHoldPoint,
			Position:    i,
			Status:      domain.CheckPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.SaveLotItp(ctx, tx, &lotItp); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrTemplateAlreadyAttached
			}
			return err
		}
		return s.repo.CreateChecks(ctx, tx, checks)
	})
	if err != nil {
		return domain.LotItpDetail{}, err
	}

	s.log.Info("template attached to lot",
		zap.Int64("lot_id", lotID.Int64()),
		zap.Int64("template_id", templateID.Int64()),
		zap.Int("checks", len(checks)),
	)
	return domain.LotItpDetail{
		LotItp:   lotItp,
		Checks:   checks,
		Progress: domain.Progress{Total: len(checks), Pending: len(checks)},
	}, nil
}

func (s *Service) GetLotItp(ctx context.Context, lotItpID string) (domain.LotItpDetail, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.LotItpDetail{}, domain.ErrInvalidOrganization
	}
	id, err := parseID(lotItpID)
	if err != nil {
		return domain.LotItpDetail{}, err
	}

	lotItp, err := s.repo.FindLotItp(ctx, s.db, orgID, id)
	if err != nil {
		return domain.LotItpDetail{}, err
	}
	if lotItp == nil {
		return domain.LotItpDetail{}, domain.ErrLotItpNotFound
	}
	return s.detail(ctx, *lotItp)
}

func (s *Service) ListForLot(ctx context.Context, lotID string) ([]domain.LotItpDetail, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	id, err := parseID(lotID)
	if err != nil {
		return nil, err
	}

	lotItps, err := s.repo.ListLotItpsForLot(ctx, s.db, orgID, id)
	if err != nil {
		return nil, err
	}
	return s.details(ctx, lotItps)
}

func (s *Service) ListInProgress(ctx context.Context) ([]domain.LotItpDetail, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	lotItps, err := s.repo.ListLotItpsByStatus(ctx, s.db, orgID, domain.LotItpInProgress)
	if err != nil {
		return nil, err
	}
	return s.details(ctx, lotItps)
}

// UpdateCheck records an outcome. Marking a check failed without a photo
// already attached is rejected; failure must carry evidence.
func (s *Service) UpdateCheck(ctx context.Context, req domain.UpdateCheckRequest) (domain.Check, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Check{}, domain.ErrInvalidOrganization
	}
	if !domain.ValidCheckStatus(req.Status) {
		return domain.Check{}, domain.ErrInvalidCheckStatus
	}

	check, err := s.editableCheck(ctx, orgID, req.CheckID)
	if err != nil {
		return domain.Check{}, err
	}
	if req.Status == domain.CheckFail && check.PhotoURL == nil {
		return domain.Check{}, domain.ErrFailRequiresPhoto
	}

	check.Status = req.Status
	check.UpdatedAt = time.Now().UTC()
	if err := s.repo.SaveCheck(ctx, s.db, check); err != nil {
		return domain.Check{}, err
	}
	return *check, nil
}

func (s *Service) UploadCheckPhoto(ctx context.Context, req domain.UploadCheckPhotoRequest) (domain.Check, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Check{}, domain.ErrInvalidOrganization
	}

	check, err := s.editableCheck(ctx, orgID, req.CheckID)
	if err != nil {
		return domain.Check{}, err
	}

	url, err := s.photos.Save(ctx, fmt.Sprintf("check-%d", check.ID.Int64()), req.MimeType, req.Body)
	if err != nil {
		return domain.Check{}, err
	}
	if check.PhotoURL != nil {
		if derr := s.photos.Delete(ctx, *check.PhotoURL); derr != nil {
			s.log.Warn("failed to remove replaced check photo", zap.Error(derr))
		}
	}

	check.PhotoURL = &url
	check.UpdatedAt = time.Now().UTC()
	if err := s.repo.SaveCheck(ctx, s.db, check); err != nil {
		return domain.Check{}, err
	}
	return *check, nil
}

// ClearCheckPhoto removes a check's photo. A failed check loses its
// evidence with the photo, so its status reverts to pending.
func (s *Service) ClearCheckPhoto(ctx context.Context, checkID string) (domain.Check, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Check{}, domain.ErrInvalidOrganization
	}

	check, err := s.editableCheck(ctx, orgID, checkID)
	if err != nil {
		return domain.Check{}, err
	}
	if check.PhotoURL == nil {
		return domain.Check{}, domain.ErrNoPhoto
	}

	removed := *check.PhotoURL
	check.PhotoURL = nil
	if check.Status == domain.CheckFail {
		check.Status = domain.CheckPending
	}
	check.UpdatedAt = time.Now().UTC()
	if err := s.repo.SaveCheck(ctx, s.db, check); err != nil {
		return domain.Check{}, err
	}

	// Delete the blob only once the row no longer references it; a failed
	// save must not leave a check pointing at a missing file.
	if derr := s.photos.Delete(ctx, removed); derr != nil {
		s.log.Warn("failed to remove check photo", zap.Error(derr))
	}
	return *check, nil
}

// SignOff closes the inspection once every check is pass or na. The
// status flip is conditional, so a concurrent sign-off cannot apply twice.
func (s *Service) SignOff(ctx context.Context, lotItpID string) (domain.LotItp, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.LotItp{}, domain.ErrInvalidOrganization
	}
	userID, ok := actorcontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.LotItp{}, domain.ErrInvalidOrganization
	}

	id, err := parseID(lotItpID)
	if err != nil {
		return domain.LotItp{}, err
	}
	lotItp, err := s.repo.FindLotItp(ctx, s.db, orgID, id)
	if err != nil {
		return domain.LotItp{}, err
	}
	if lotItp == nil {
		return domain.LotItp{}, domain.ErrLotItpNotFound
	}
	if lotItp.Status != domain.LotItpInProgress {
		return domain.LotItp{}, domain.ErrItpSignedOff
	}

	counts, err := s.repo.CountChecksByStatus(ctx, s.db, lotItp.ID)
	if err != nil {
		return domain.LotItp{}, err
	}
	pending := counts[domain.CheckPending]
	failed := counts[domain.CheckFail]
	if pending > 0 || failed > 0 {
		return domain.LotItp{}, fmt.Errorf("%w: %d pending, %d failed", domain.ErrChecksOutstanding, pending, failed)
	}

	now := time.Now().UTC()
	lotItp.Status = domain.LotItpComplete
	lotItp.SignedOffAt = &now
	lotItp.SignedOffBy = &userID
	rows, err := s.repo.SignOffLotItp(ctx, s.db, lotItp)
	if err != nil {
		return domain.LotItp{}, err
	}
	if rows == 0 {
		return domain.LotItp{}, domain.ErrItpSignedOff
	}

	s.log.Info("inspection signed off",
		zap.Int64("lot_itp_id", lotItp.ID.Int64()),
		zap.Int64("signed_off_by", userID.Int64()),
	)
	return *lotItp, nil
}

func (s *Service) detail(ctx context.Context, lotItp domain.LotItp) (domain.LotItpDetail, error) {
	checks, err := s.repo.ListChecks(ctx, s.db, lotItp.ID)
	if err != nil {
		return domain.LotItpDetail{}, err
	}
	progress := domain.Progress{Total: len(checks)}
	for _, c := range checks {
		switch c.Status {
		case domain.CheckPass:
			progress.Pass++
		case domain.CheckFail:
			progress.Fail++
		case domain.CheckNA:
			progress.NA++
		default:
			progress.Pending++
		}
	}
	return domain.LotItpDetail{LotItp: lotItp, Checks: checks, Progress: progress}, nil
}

func (s *Service) details(ctx context.Context, lotItps []domain.LotItp) ([]domain.LotItpDetail, error) {
	details := make([]domain.LotItpDetail, 0, len(lotItps))
	for _, li := range lotItps {
		d, err := s.detail(ctx, li)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, nil
}

func (s *Service) findTemplate(ctx context.Context, orgID snowflake.ID, templateID string) (*domain.Template, error) {
	id, err := parseID(templateID)
	if err != nil {
		return nil, err
	}
	template, err := s.repo.FindTemplate(ctx, s.db, orgID, id)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, domain.ErrTemplateNotFound
	}
	return template, nil
}

// editableCheck loads a check and refuses writes once its inspection has
// been signed off.
func (s *Service) editableCheck(ctx context.Context, orgID snowflake.ID, checkID string) (*domain.Check, error) {
	id, err := parseID(checkID)
	if err != nil {
		return nil, err
	}
	check, err := s.repo.FindCheck(ctx, s.db, orgID, id)
	if err != nil {
		return nil, err
	}
	if check == nil {
		return nil, domain.ErrCheckNotFound
	}
	lotItp, err := s.repo.FindLotItp(ctx, s.db, orgID, check.LotItpID)
	if err != nil {
		return nil, err
	}
	if lotItp == nil {
		return nil, domain.ErrLotItpNotFound
	}
	if lotItp.Status != domain.LotItpInProgress {
		return nil, domain.ErrItpSignedOff
	}
	return check, nil
}

func parseID(v string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(v)
	if err != nil {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
