package models

import "time"

const (
	OutreachTypeJob           = "job"
	OutreachTypeCollaboration = "collaboration"
	OutreachTypeFriendship    = "friendship"

	MessageTypeEmail    = "email"
	MessageTypeLinkedIn = "linkedin"

	StageSent = "sent"
)

// JobData is the target contact as posted by the outreach panel. It uses the
// same keys as Entry so a lead row can be posted as-is.
type JobData struct {
	Name        string `json:"name"`
	Company     string `json:"company"`
	Role        string `json:"role"`
	CompanyInfo string `json:"company_info"`
	LookingFor  string `json:"looking_for"`
	LinkedInURL string `json:"linkedinurl"`
	Email       string `json:"email"`
	CompanyURL  string `json:"company_url"`
	ApplyURL    string `json:"apply_url"`
	URL         string `json:"url"`
}

// Enrichment is best-effort context scraped for a target. Empty strings mean
// the corresponding fetch was skipped or failed.
type Enrichment struct {
	CompanyPage    string
	LinkedInSearch string
}

// OutreachRecord is written once per saved generation and never updated here.
type OutreachRecord struct {
	ID                  string    `bson:"_id,omitempty" json:"id"`
	OwnerUserID         string    `bson:"ownerUserId" json:"ownerUserId"`
	ContactID           string    `bson:"contactId,omitempty" json:"contactId,omitempty"`
	FounderName         string    `bson:"founderName" json:"founderName"`
	Company             string    `bson:"company" json:"company"`
	LinkedInURL         string    `bson:"linkedinUrl" json:"linkedinUrl"`
	Email               string    `bson:"email" json:"email"`
	MessageType         string    `bson:"messageType" json:"messageType"`
	OutreachType        string    `bson:"outreachType" json:"outreachType"`
	GeneratedMessage    string    `bson:"generatedMessage" json:"generatedMessage"`
	Stage               string    `bson:"stage" json:"stage"`
	CreatedAt           time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time `bson:"updatedAt" json:"updatedAt"`
	LastInteractionDate time.Time `bson:"lastInteractionDate" json:"lastInteractionDate"`
}
