package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/outreach/internal/metrics"
	"github.com/yoockh/outreach/internal/models"
	"github.com/yoockh/outreach/internal/prompts"
	"github.com/yoockh/outreach/internal/providers/enrich"
	"github.com/yoockh/outreach/internal/providers/llm"
	mongorepo "github.com/yoockh/outreach/internal/repositories/mongo"
	"github.com/yoockh/outreach/internal/utils"
	"gorm.io/datatypes"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200

	saveFailedWarning = "message generated but could not be saved"
)

type GenerateInput struct {
	OwnerUserID    string
	JobData        models.JobData
	OutreachType   string
	MessageType    string
	ContactID      string
	SaveToDatabase bool
}

type GenerateResult struct {
	Message          string `json:"message"`
	OutreachRecordID string `json:"outreachRecordId,omitempty"`
	Saved            bool   `json:"saved"`
	Warning          string `json:"warning,omitempty"`
}

type SaveInput struct {
	OwnerUserID      string
	JobData          models.JobData
	OutreachType     string
	MessageType      string
	ContactID        string
	GeneratedMessage string
}

type OutreachService interface {
	Generate(ctx context.Context, in GenerateInput) (*GenerateResult, error)
	Save(ctx context.Context, in SaveInput) (string, error)
	ListHistory(ctx context.Context, ownerUserID string, limit int) ([]models.OutreachRecord, error)
}

type outreachService struct {
	profiles ProfileService
	history  mongorepo.OutreachRepository
	enricher enrich.Enricher
	model    llm.Provider
	log      *logrus.Logger
	now      func() time.Time
}

func NewOutreachService(
	profiles ProfileService,
	history mongorepo.OutreachRepository,
	enricher enrich.Enricher,
	model llm.Provider,
	l *logrus.Logger,
) OutreachService {
	return &outreachService{
		profiles: profiles,
		history:  history,
		enricher: enricher,
		model:    model,
		log:      l,
		now:      time.Now,
	}
}

// Generate runs the pipeline strictly in order: preconditions, enrichment,
// prompt, one model call, optional persistence. The model is never called
// for a user without a profile or resume.
func (s *outreachService) Generate(ctx context.Context, in GenerateInput) (*GenerateResult, error) {
	const op = "OutreachService.Generate"

	if err := validateOutreach(op, in.OwnerUserID, in.JobData, in.OutreachType, in.MessageType); err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetMe(ctx, in.OwnerUserID)
	if err != nil {
		s.count(in, "precondition")
		if utils.IsCode(err, utils.CodeNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "user profile not found, complete your profile first", err)
		}
		return nil, err
	}
	if !profile.HasResume() {
		s.count(in, "precondition")
		return nil, utils.E(utils.CodeInvalidArgument, op, "resume is required, add resume text or upload a pdf", nil)
	}

	pdf, err := s.profiles.ResumePDF(ctx, profile)
	if err != nil {
		s.count(in, "error")
		return nil, err
	}

	enrichment := s.enricher.Enrich(ctx, in.JobData)

	prompt, err := prompts.Compose(prompts.Data{
		OutreachType:   in.OutreachType,
		MessageType:    in.MessageType,
		Target:         in.JobData,
		Enrichment:     enrichment,
		Sender:         senderFromProfile(profile),
		ResumeText:     profile.ResumeText,
		ResumeAttached: len(pdf) > 0,
	})
	if err != nil {
		s.count(in, "error")
		return nil, utils.E(utils.CodeInternal, op, "failed to compose prompt", err)
	}

	req := llm.Request{Prompt: prompt}
	if len(pdf) > 0 {
		req.Attachments = []llm.Attachment{{MIMEType: PDFContentType, Data: pdf}}
	}

	started := s.now()
	message, err := s.model.Generate(ctx, req)
	if err != nil {
		s.count(in, "error")
		return nil, utils.E(utils.CodeInternal, op, "failed to generate outreach message", err)
	}
	message = strings.TrimSpace(message)
	if message == "" {
		s.count(in, "error")
		return nil, utils.E(utils.CodeInternal, op, "failed to generate outreach message", errors.New("model returned an empty message"))
	}
	s.count(in, "ok")

	s.log.WithFields(logrus.Fields{
		"user_id":       in.OwnerUserID,
		"outreach_type": in.OutreachType,
		"message_type":  in.MessageType,
		"pdf_attached":  len(pdf) > 0,
		"enriched":      enrichment.CompanyPage != "" || enrichment.LinkedInSearch != "",
		"latency_ms":    s.now().Sub(started).Milliseconds(),
	}).Info("outreach generated")

	res := &GenerateResult{Message: message}
	if !in.SaveToDatabase {
		return res, nil
	}

	id, err := s.insert(ctx, SaveInput{
		OwnerUserID:      in.OwnerUserID,
		JobData:          in.JobData,
		OutreachType:     in.OutreachType,
		MessageType:      in.MessageType,
		ContactID:        in.ContactID,
		GeneratedMessage: message,
	})
	if err != nil {
		s.log.WithError(err).WithField("user_id", in.OwnerUserID).Warn("outreach record not saved, returning message anyway")
		res.Warning = saveFailedWarning
		return res, nil
	}
	res.OutreachRecordID = id
	res.Saved = true
	return res, nil
}

func (s *outreachService) Save(ctx context.Context, in SaveInput) (string, error) {
	const op = "OutreachService.Save"

	if err := validateOutreach(op, in.OwnerUserID, in.JobData, in.OutreachType, in.MessageType); err != nil {
		return "", err
	}
	if strings.TrimSpace(in.GeneratedMessage) == "" {
		return "", utils.E(utils.CodeInvalidArgument, op, "generatedMessage is required", nil)
	}

	id, err := s.insert(ctx, in)
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to save outreach", err)
	}
	return id, nil
}

func (s *outreachService) ListHistory(ctx context.Context, ownerUserID string, limit int) ([]models.OutreachRecord, error) {
	const op = "OutreachService.ListHistory"

	if ownerUserID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	limit = utils.Clamp(limit, 1, MaxHistoryLimit)

	rows, err := s.history.ListByOwner(ctx, ownerUserID, int64(limit))
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list outreach history", err)
	}
	return rows, nil
}

func (s *outreachService) insert(ctx context.Context, in SaveInput) (string, error) {
	now := s.now().UTC()
	return s.history.Insert(ctx, &models.OutreachRecord{
		OwnerUserID:         in.OwnerUserID,
		ContactID:           in.ContactID,
		FounderName:         in.JobData.Name,
		Company:             in.JobData.Company,
		LinkedInURL:         in.JobData.LinkedInURL,
		Email:               in.JobData.Email,
		MessageType:         in.MessageType,
		OutreachType:        in.OutreachType,
		GeneratedMessage:    in.GeneratedMessage,
		Stage:               models.StageSent,
		CreatedAt:           now,
		UpdatedAt:           now,
		LastInteractionDate: now,
	})
}

func (s *outreachService) count(in GenerateInput, result string) {
	metrics.OutreachGenerations.WithLabelValues(in.OutreachType, in.MessageType, result).Inc()
}

func validateOutreach(op, owner string, job models.JobData, outreachType, messageType string) error {
	if owner == "" {
		return utils.E(utils.CodeUnauthorized, op, "authentication required", nil)
	}
	switch outreachType {
	case models.OutreachTypeJob, models.OutreachTypeCollaboration, models.OutreachTypeFriendship:
	default:
		return utils.E(utils.CodeInvalidArgument, op, "outreachType must be job, collaboration or friendship", nil)
	}
	if messageType != models.MessageTypeEmail && messageType != models.MessageTypeLinkedIn {
		return utils.E(utils.CodeInvalidArgument, op, "messageType must be email or linkedin", nil)
	}
	if strings.TrimSpace(job.Name) == "" && strings.TrimSpace(job.Company) == "" {
		return utils.E(utils.CodeInvalidArgument, op, "jobData needs a name or a company", nil)
	}
	return nil
}

func senderFromProfile(p *models.UserProfile) prompts.Sender {
	return prompts.Sender{
		Name:       p.Name,
		Title:      p.Title,
		Goals:      p.Goals,
		Skills:     strings.Join(p.Skills, ", "),
		Experience: jsonText(p.Experience),
		Projects:   jsonText(p.Projects),
	}
}

// jsonText renders a free-form JSON column for a prompt: strings are
// unquoted, null is empty and anything else is kept as compact JSON.
func jsonText(v datatypes.JSON) string {
	raw := strings.TrimSpace(string(v))
	if raw == "" || raw == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return raw
}
