package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/outreach/internal/models"
	pgrepo "github.com/yoockh/outreach/internal/repositories/postgres"
	"github.com/yoockh/outreach/internal/storage"
	"github.com/yoockh/outreach/internal/utils"
)

type ProfileService interface {
	GetMe(ctx context.Context, userID string) (*models.UserProfile, error)
	Upsert(ctx context.Context, p *models.UserProfile) error
	// AttachResumePDF validates data and sets it as p's resume PDF. The
	// profile is not written; callers Upsert afterwards.
	AttachResumePDF(ctx context.Context, p *models.UserProfile, data []byte) error
	ResumePDF(ctx context.Context, p *models.UserProfile) ([]byte, error)
}

type profileService struct {
	profiles pgrepo.ProfileRepository
	// nil keeps PDFs inline in the profile row
	store storage.ObjectStore
	log   *logrus.Logger
}

func NewProfileService(profiles pgrepo.ProfileRepository, store storage.ObjectStore, l *logrus.Logger) ProfileService {
	return &profileService{profiles: profiles, store: store, log: l}
}

func (s *profileService) GetMe(ctx context.Context, userID string) (*models.UserProfile, error) {
	const op = "ProfileService.GetMe"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "profile not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get profile", err)
	}
	return p, nil
}

func (s *profileService) Upsert(ctx context.Context, p *models.UserProfile) error {
	const op = "ProfileService.Upsert"

	if p == nil || p.UserID == "" {
		return utils.E(utils.CodeInvalidArgument, op, "profile.user_id is required", nil)
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	if err := s.profiles.Upsert(ctx, p); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to upsert profile", err)
	}
	return nil
}

func (s *profileService) AttachResumePDF(ctx context.Context, p *models.UserProfile, data []byte) error {
	const op = "ProfileService.AttachResumePDF"

	if p == nil || p.UserID == "" {
		return utils.E(utils.CodeInvalidArgument, op, "profile.user_id is required", nil)
	}
	pages, err := ValidateResumePDF(data)
	if err != nil {
		return utils.E(utils.CodeInvalidArgument, op, "invalid resume pdf", err)
	}

	if s.store == nil {
		p.ResumePDFBase64 = base64.StdEncoding.EncodeToString(data)
		p.ResumePDFObject = ""
		return nil
	}

	objectName := "resumes/" + p.UserID + "/" + uuid.NewString() + ".pdf"
	stored, err := s.store.Upload(ctx, objectName, PDFContentType, bytes.NewReader(data))
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to upload resume", err)
	}
	p.ResumePDFObject = stored
	p.ResumePDFBase64 = ""

	s.log.WithFields(logrus.Fields{
		"user_id": p.UserID,
		"object":  stored,
		"pages":   pages,
		"bytes":   len(data),
	}).Info("resume pdf stored")
	return nil
}

// ResumePDF returns the profile's PDF bytes, or nil when it has none.
func (s *profileService) ResumePDF(ctx context.Context, p *models.UserProfile) ([]byte, error) {
	const op = "ProfileService.ResumePDF"

	switch {
	case p == nil:
		return nil, nil
	case p.ResumePDFObject != "":
		if s.store == nil {
			return nil, utils.E(utils.CodeUnavailable, op, "resume storage is not configured", nil)
		}
		b, err := s.store.Download(ctx, p.ResumePDFObject, MaxResumeBytes)
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to load resume pdf", err)
		}
		return b, nil
	case p.ResumePDFBase64 != "":
		b, err := utils.DecodeBase64Payload(p.ResumePDFBase64)
		if err != nil {
			return nil, utils.E(utils.CodeInvalidArgument, op, "stored resume pdf is not valid base64", err)
		}
		return b, nil
	default:
		return nil, nil
	}
}
