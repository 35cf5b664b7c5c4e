package domain

import (
	"context"
	"errors"
	"io"
)

// TemplateItemInput is one question in a template write. Items without an
// ID get one assigned; order is re-sequenced from zero regardless of what
// the caller sends.
type TemplateItemInput struct {
	ID          string `json:"id"`
	Question    string `json:"question" binding:"required"`
	IsHoldPoint bool   `json:"is_hold_point"`
}

// CreateTemplateRequest creates a checklist template.
type CreateTemplateRequest struct {
	Title string              `json:"title" binding:"required"`
	Items []TemplateItemInput `json:"items"`
}

// UpdateTemplateTitleRequest renames a template.
type UpdateTemplateTitleRequest struct {
	TemplateID string `json:"-"`
	Title      string `json:"title" binding:"required"`
}

// ReplaceTemplateItemsRequest replaces a template's items wholesale.
type ReplaceTemplateItemsRequest struct {
	TemplateID string              `json:"-"`
	Items      []TemplateItemInput `json:"items" binding:"required"`
}

// AttachRequest instantiates a template onto a lot.
type AttachRequest struct {
	LotID      string `json:"-"`
	TemplateID string `json:"template_id" binding:"required"`
}

// UpdateCheckRequest sets a check's outcome. Failing a check requires a
// photo to already be attached.
type UpdateCheckRequest struct {
	CheckID string      `json:"-"`
	Status  CheckStatus `json:"status" binding:"required"`
}

// UploadCheckPhotoRequest attaches photographic evidence to a check.
type UploadCheckPhotoRequest struct {
	CheckID  string
	MimeType string
	Body     io.Reader
}

// Service manages inspection templates and per-lot inspections.
type Service interface {
	CreateTemplate(ctx context.Context, req CreateTemplateRequest) (Template, error)
	UpdateTemplateTitle(ctx context.Context, req UpdateTemplateTitleRequest) (Template, error)
	ReplaceTemplateItems(ctx context.Context, req ReplaceTemplateItemsRequest) (Template, error)
	DeleteTemplate(ctx context.Context, templateID string) error
	GetTemplate(ctx context.Context, templateID string) (Template, error)
	ListTemplates(ctx context.Context) ([]Template, error)
	AvailableTemplatesForLot(ctx context.Context, lotID string) ([]Template, error)

	AttachToLot(ctx context.Context, req AttachRequest) (LotItpDetail, error)
	GetLotItp(ctx context.Context, lotItpID string) (LotItpDetail, error)
	ListForLot(ctx context.Context, lotID string) ([]LotItpDetail, error)
	ListInProgress(ctx context.Context) ([]LotItpDetail, error)

	UpdateCheck(ctx context.Context, req UpdateCheckRequest) (Check, error)
	UploadCheckPhoto(ctx context.Context, req UploadCheckPhotoRequest) (Check, error)
	ClearCheckPhoto(ctx context.Context, checkID string) (Check, error)

	SignOff(ctx context.Context, lotItpID string) (LotItp, error)
}

var (
	// ErrInvalidOrganization indicates the request carried no resolvable org.
	ErrInvalidOrganization = errors.New("no organization resolved for request")

	// ErrInvalidID indicates a malformed identifier.
	ErrInvalidID = errors.New("invalid id")

	// ErrTemplateNotFound indicates the template does not exist in this org.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrLotNotFound indicates the lot does not exist in this org.
	ErrLotNotFound = errors.New("lot not found")

	// ErrLotItpNotFound indicates the lot inspection does not exist in this org.
	ErrLotItpNotFound = errors.New("lot inspection not found")

	// ErrCheckNotFound indicates the check does not exist in this org.
	ErrCheckNotFound = errors.New("check not found")

	// ErrInvalidTitle rejects blank titles.
	ErrInvalidTitle = errors.New("title must not be empty")

	// ErrInvalidQuestion rejects blank questions.
	ErrInvalidQuestion = errors.New("question must not be empty")

	// ErrInvalidCheckStatus rejects unknown check outcomes.
	ErrInvalidCheckStatus = errors.New("invalid check status")

	// ErrTemplateInUse blocks deleting a template that lots still use.
	ErrTemplateInUse = errors.New("template is attached to one or more lots")

	// ErrTemplateEmpty blocks attaching a template with no items.
	ErrTemplateEmpty = errors.New("template has no items to attach")

	// ErrTemplateAlreadyAttached blocks attaching a template to the same
	// lot twice.
	ErrTemplateAlreadyAttached = errors.New("template is already attached to this lot")

	// ErrFailRequiresPhoto blocks failing a check with no evidence photo.
	ErrFailRequiresPhoto = errors.New("a photo is required before a check can be marked failed")

	// ErrItpSignedOff rejects writes to a signed-off inspection.
	ErrItpSignedOff = errors.New("inspection has been signed off and can no longer be edited")

	// ErrChecksOutstanding blocks sign-off while checks are pending or failed.
	ErrChecksOutstanding = errors.New("cannot sign off: checks are still pending or failed")

	// ErrNoPhoto indicates there is no photo to clear.
	ErrNoPhoto = errors.New("check has no photo")
)
