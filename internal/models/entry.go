package models

// Entry is a lead document written by the ingestion pipeline. Missing fields
// decode to "". Published keeps whatever the store holds (BSON date, string
// or nothing) and is normalized into PublishedDisplay on read.
type Entry struct {
	ID          string `bson:"_id" json:"id"`
	Name        string `bson:"name" json:"name"`
	Company     string `bson:"company" json:"company"`
	Role        string `bson:"role" json:"role"`
	CompanyInfo string `bson:"company_info" json:"company_info"`
	LinkedInURL string `bson:"linkedinurl" json:"linkedinurl"`
	Email       string `bson:"email" json:"email"`
	CompanyURL  string `bson:"company_url" json:"company_url"`
	ApplyURL    string `bson:"apply_url" json:"apply_url"`
	URL         string `bson:"url" json:"url"`
	LookingFor  string `bson:"looking_for" json:"looking_for"`

	Published        any    `bson:"published" json:"-"`
	PublishedDisplay string `bson:"-" json:"published"`
}

// FilterStats are the data-quality counters shown on the admin review page.
// Each counter is independent of the others.
type FilterStats struct {
	Total             int `json:"total"`
	WithoutEmail      int `json:"withoutEmail"`
	WithoutLinkedIn   int `json:"withoutLinkedIn"`
	WithoutCompanyURL int `json:"withoutCompanyUrl"`
	InvalidNames      int `json:"invalidNames"`
	InvalidCompanies  int `json:"invalidCompanies"`
	InvalidRoles      int `json:"invalidRoles"`
}

type BatchDeleteResult struct {
	DeletedCount   int  `json:"deletedCount"`
	HasMoreEntries bool `json:"hasMoreEntries"`
	BatchSize      int  `json:"batchSize"`
}

type SelectiveDeleteResult struct {
	DeletedCount   int      `json:"deletedCount"`
	RequestedCount int      `json:"requestedCount"`
	Errors         []string `json:"errors,omitempty"`
}
