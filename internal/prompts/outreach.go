package prompts

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/yoockh/outreach/internal/models"
)

// Sender describes the user the message is written for.
type Sender struct {
	Name       string
	Title      string
	Goals      string
	Skills     string
	Experience string
	Projects   string
}

type Data struct {
	OutreachType string
	MessageType  string
	Target       models.JobData
	Enrichment   models.Enrichment
	Sender       Sender

	// ResumeText is interpolated only when no PDF is attached to the call.
	ResumeText     string
	ResumeAttached bool
}

func (d Data) IsEmail() bool { return d.MessageType == models.MessageTypeEmail }

const shared = `
{{define "target"}}TARGET CONTACT
- Name: {{or .Target.Name "Unknown"}}
- Company: {{or .Target.Company "Unknown"}}
{{- if .Target.Role}}
- Role: {{.Target.Role}}{{end}}
{{- if .Target.CompanyInfo}}
- Company description: {{.Target.CompanyInfo}}{{end}}
{{- if .Target.LookingFor}}
- Looking for: {{.Target.LookingFor}}{{end}}
{{end}}

{{define "context"}}
{{- if .Enrichment.CompanyPage}}
COMPANY WEBSITE (excerpt)
{{.Enrichment.CompanyPage}}
{{end}}
{{- if .Enrichment.LinkedInSearch}}
PUBLIC PROFILE SEARCH RESULTS (excerpt)
{{.Enrichment.LinkedInSearch}}
{{end}}
{{- end}}

{{define "sender"}}ABOUT ME
{{- if .Sender.Name}}
- Name: {{.Sender.Name}}{{end}}
{{- if .Sender.Title}}
- Current title: {{.Sender.Title}}{{end}}
{{- if .Sender.Goals}}
- Goals: {{.Sender.Goals}}{{end}}
{{- if .Sender.Skills}}
- Skills: {{.Sender.Skills}}{{end}}
{{- if .Sender.Experience}}
- Experience: {{.Sender.Experience}}{{end}}
{{- if .Sender.Projects}}
- Projects: {{.Sender.Projects}}{{end}}
{{if .ResumeAttached}}
My resume is attached as a PDF. Read it and use the most relevant details.
{{else}}
MY RESUME
{{.ResumeText}}
{{end}}
{{- end}}

{{define "format"}}
{{- if .IsEmail}}FORMAT
- Write an email of at most 200 words.
- Start with a line "Subject: ..." followed by a blank line and the body.
- End with a sign-off using my name.
{{- else}}FORMAT
- Write a LinkedIn message of 80 to 100 words.
- No subject line, no formal sign-off, no hashtags.
- Keep it conversational and easy to reply to.
{{- end}}
- Output only the message text.
{{- end}}
`

const jobTemplate = `You are helping me reach out about a job opportunity.
{{if .IsEmail}}Write a concise, professional cold email{{else}}Write a short, warm LinkedIn message{{end}} to the person below asking to be considered for a role at their company.

{{template "target" .}}
{{template "context" .}}
{{template "sender" .}}
INSTRUCTIONS
- Connect two or three concrete points from my background to what the company does{{if .Target.LookingFor}} and what they are looking for{{end}}.
- Mention something specific about the company when the context above allows it.
- Ask for a short call or for the right next step in the hiring process.
- Sound confident, not desperate. Do not invent facts about me or the company.
{{template "format" .}}
`

const collaborationTemplate = `You are helping me propose a collaboration.
{{if .IsEmail}}Write a focused, peer-to-peer email{{else}}Write a brief, friendly LinkedIn message{{end}} to the person below suggesting we work together.

{{template "target" .}}
{{template "context" .}}
{{template "sender" .}}
INSTRUCTIONS
- Propose one concrete collaboration idea that fits both their company and my skills.
- Explain in one sentence what each side gains.
- Keep the tone of an equal proposing a partnership, not a job applicant.
- Close with a low-commitment ask, such as a 15 minute chat.
- Do not invent facts about me or the company.
{{template "format" .}}
`

const friendshipTemplate = `You are helping me start a genuine professional friendship.
{{if .IsEmail}}Write a relaxed, personal email{{else}}Write a casual LinkedIn message{{end}} to the person below to introduce myself and connect.

{{template "target" .}}
{{template "context" .}}
{{template "sender" .}}
INSTRUCTIONS
- Lead with genuine curiosity about their work{{if .Target.Role}} as {{.Target.Role}}{{end}}.
- Mention one shared interest or overlap with my background.
- Do not ask for a job, a referral or a favor.
- End with an open question that invites a reply.
- Do not invent facts about me or the company.
{{template "format" .}}
`

var templates = map[string]*template.Template{
	models.OutreachTypeJob:           mustParse(models.OutreachTypeJob, jobTemplate),
	models.OutreachTypeCollaboration: mustParse(models.OutreachTypeCollaboration, collaborationTemplate),
	models.OutreachTypeFriendship:    mustParse(models.OutreachTypeFriendship, friendshipTemplate),
}

func mustParse(name, body string) *template.Template {
	return template.Must(template.Must(template.New(name).Parse(body)).Parse(shared))
}

// Compose renders the prompt for d.OutreachType. Unknown outreach or message
// types are rejected.
func Compose(d Data) (string, error) {
	t, ok := templates[d.OutreachType]
	if !ok {
		return "", fmt.Errorf("unknown outreach type %q", d.OutreachType)
	}
	if d.MessageType != models.MessageTypeEmail && d.MessageType != models.MessageTypeLinkedIn {
		return "", fmt.Errorf("unknown message type %q", d.MessageType)
	}

	var sb strings.Builder
	if err := t.Execute(&sb, d); err != nil {
		return "", err
	}
	return strings.TrimSpace(sb.String()), nil
}
