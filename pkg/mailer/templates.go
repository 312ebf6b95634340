package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"
)

// Template keys understood by Templates.Render.
const (
	TemplateLeaveApplied            = "LEAVE_APPLIED"
	TemplateLeaveApproved           = "LEAVE_APPROVED"
	TemplateLeaveRejected           = "LEAVE_REJECTED"
	TemplateClassAdjustmentRequest  = "CLASS_ADJUSTMENT_REQUEST"
	TemplateClassAdjustmentApproved = "CLASS_ADJUSTMENT_APPROVED"
	TemplateClassAdjustmentRejected = "CLASS_ADJUSTMENT_REJECTED"
	TemplatePasswordReset           = "PASSWORD_RESET"
)

// Data carries the values a template may reference.
type Data struct {
	RecipientName  string
	ApplicationID  string
	LeaveType      string
	StartDate      time.Time
	EndDate        time.Time
	Reason         string
	Remarks        string
	Approver       string
	IsPermission   bool
	PermissionSlot string
	ColleagueName  string
	ClassDate      time.Time
	ClassTime      string
	Subject        string
	ClassDetails   string
	Link           string
}

type entry struct {
	subject string
	body    *template.Template
}

// Templates renders subjects and HTML bodies by template key.
type Templates struct {
	baseURL string
	entries map[string]entry
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string { return t.Format("02-01-2006") },
	"sameDay": func(a, b time.Time) bool {
		return a.Format("2006-01-02") == b.Format("2006-01-02")
	},
	"kind": func(permission bool) string {
		if permission {
			return "Permission"
		}
		return "Leave"
	},
	"slot": SlotLabel,
}

const leaveDetails = `{{define "details"}}<ul>
<li><strong>{{kind .IsPermission}} Type:</strong> {{.LeaveType}}</li>
{{if .IsPermission}}<li><strong>Date:</strong> {{date .StartDate}}</li>
<li><strong>Time Slot:</strong> {{slot .PermissionSlot}}</li>
{{else}}<li><strong>Start Date:</strong> {{date .StartDate}}</li>
{{if not (sameDay .StartDate .EndDate)}}<li><strong>End Date:</strong> {{date .EndDate}}</li>
{{end}}{{end}}{{end}}`

const signature = `{{define "signature"}}{{if .Link}}<p><a href="{{.Link}}">View in Faculty Leave System</a></p>{{end}}
<p>Best regards,<br>Faculty Leave System</p>{{end}}`

var sources = map[string][2]string{
	TemplateLeaveApplied: {"Leave Application Received (ID: %s)", `<h2>{{kind .IsPermission}} Application Received</h2>
<p>Dear {{or .RecipientName "Faculty Member"}},</p>
<p>Your application has been submitted successfully. Here are the details:</p>
{{template "details" .}}<li><strong>Reason:</strong> {{.Reason}}</li>
</ul>
{{template "signature" .}}`},
	TemplateLeaveApproved: {"Leave Application Approved (ID: %s)", `<h2>{{kind .IsPermission}} Application Approved</h2>
<p>Dear {{or .RecipientName "Faculty Member"}},</p>
<p>Your application has been approved by {{.Approver}}. Here are the details:</p>
{{template "details" .}}{{if .Remarks}}<li><strong>Remarks:</strong> {{.Remarks}}</li>
{{end}}</ul>
{{template "signature" .}}`},
	TemplateLeaveRejected: {"Leave Application Rejected (ID: %s)", `<h2>{{kind .IsPermission}} Application Rejected</h2>
<p>Dear {{or .RecipientName "Faculty Member"}},</p>
<p>Your application has been rejected by {{.Approver}}. Here are the details:</p>
{{template "details" .}}<li><strong>Reason for Rejection:</strong> {{.Remarks}}</li>
</ul>
{{template "signature" .}}`},
	TemplateClassAdjustmentRequest: {"Class Adjustment Request", `<h2>Class Adjustment Request</h2>
<p>Dear {{or .RecipientName "Colleague"}},</p>
<p>{{.ColleagueName}} has requested you to take the following class while on leave:</p>
<ul>
<li><strong>Subject:</strong> {{.Subject}}</li>
<li><strong>Date:</strong> {{date .ClassDate}}</li>
<li><strong>Time:</strong> {{.ClassTime}}</li>
{{if .ClassDetails}}<li><strong>Details:</strong> {{.ClassDetails}}</li>
{{end}}</ul>
<p>Please accept or reject the request.</p>
{{template "signature" .}}`},
	TemplateClassAdjustmentApproved: {"Class Adjustment Approved", `<h2>Class Adjustment Accepted</h2>
<p>Dear {{or .RecipientName "Faculty Member"}},</p>
<p>{{.ColleagueName}} has accepted your class adjustment request for {{.Subject}} on {{date .ClassDate}} ({{.ClassTime}}).</p>
{{if .Remarks}}<p><strong>Remarks:</strong> {{.Remarks}}</p>
{{end}}{{template "signature" .}}`},
	TemplateClassAdjustmentRejected: {"Class Adjustment Rejected", `<h2>Class Adjustment Rejected</h2>
<p>Dear {{or .RecipientName "Faculty Member"}},</p>
<p>{{.ColleagueName}} has declined your class adjustment request for {{.Subject}} on {{date .ClassDate}} ({{.ClassTime}}).</p>
{{if .Remarks}}<p><strong>Remarks:</strong> {{.Remarks}}</p>
{{end}}{{template "signature" .}}`},
	TemplatePasswordReset: {"Password Reset Request", `<h2>Password Reset Request</h2>
<p>Dear {{or .RecipientName "User"}},</p>
<p>A password reset was requested for your account. Use the link below to choose a new password. If you did not request this, ignore this email.</p>
{{template "signature" .}}`},
}

// NewTemplates parses every known template. baseURL prefixes relative links.
func NewTemplates(baseURL string) (*Templates, error) {
	entries := make(map[string]entry, len(sources))
	for key, src := range sources {
		tmpl, err := template.New(key).Funcs(funcs).Parse(leaveDetails + signature + src[1])
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", key, err)
		}
		entries[key] = entry{subject: src[0], body: tmpl}
	}
	return &Templates{baseURL: baseURL, entries: entries}, nil
}

// Render returns the subject and HTML body for a template key.
func (t *Templates) Render(key string, data Data) (string, string, error) {
	e, ok := t.entries[key]
	if !ok {
		return "", "", fmt.Errorf("unknown mail template %q", key)
	}
	if strings.HasPrefix(data.Link, "/") {
		data.Link = t.baseURL + data.Link
	}
	var buf bytes.Buffer
	if err := e.body.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render template %s: %w", key, err)
	}
	subject := e.subject
	if strings.Contains(subject, "%s") {
		id := data.ApplicationID
		if id == "" {
			id = "-"
		}
		subject = fmt.Sprintf(subject, id)
	}
	return subject, buf.String(), nil
}

// SlotLabel renders the teaching period covered by a permission slot.
func SlotLabel(slot string) string {
	switch slot {
	case "morning":
		return "Morning (8:40 AM - 10:20 AM)"
	case "evening":
		return "Evening (3:20 PM - 5:00 PM)"
	default:
		return slot
	}
}
