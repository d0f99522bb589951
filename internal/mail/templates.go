// AngelaMos | 2026
// templates.go

package mail

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"
)

// Contact is the view of a submission that the templates render.
type Contact struct {
	Name        string
	Email       string
	Phone       string
	Company     string
	Message     string
	IPAddress   string
	UserAgent   string
	SubmittedAt time.Time
}

const (
	adminSubjectPrefix = "New Contact: "
	CustomerSubject    = "Thank you for contacting us"
	adminFromName      = "Website Contact"
)

const adminHTML = `<div style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; background: #f8f9fa; padding: 20px;">
  <div style="background: white; padding: 30px; border-radius: 12px;">
    <div style="text-align: center; margin-bottom: 30px;">
      <h1 style="color: #1a73e8; margin: 0; font-size: 24px;">New Contact Form Submission</h1>
      <p style="color: #666; margin: 10px 0 0 0;">{{.Company}} Website</p>
    </div>
    <div style="background: #f8f9fa; padding: 20px; border-radius: 8px; margin: 20px 0;">
      <div><strong>Name:</strong> {{or .C.Name "Not provided"}}</div>
      <div><strong>Email:</strong> <a href="mailto:{{.C.Email}}">{{or .C.Email "Not provided"}}</a></div>
      <div><strong>Phone:</strong> {{or .C.Phone "Not provided"}}</div>
      <div><strong>Company:</strong> {{or .C.Company "Not provided"}}</div>
    </div>
    <div style="margin: 25px 0;">
      <strong>Message:</strong>
      <div style="background: #fff; border: 1px solid #e0e0e0; padding: 15px; border-radius: 6px; margin-top: 10px; white-space: pre-wrap;">{{or .C.Message "No message provided"}}</div>
    </div>
    <div style="border-top: 1px solid #e0e0e0; padding-top: 15px; color: #666; font-size: 12px;">
      <p>Submitted: {{.Submitted}}</p>
      <p>IP: {{or .C.IPAddress "Unknown"}}</p>
      <p>User Agent: {{or .C.UserAgent "Not available"}}</p>
    </div>
  </div>
</div>`

const adminText = `New Contact Form Submission - {{.Company}}

Name: {{or .C.Name "Not provided"}}
Email: {{or .C.Email "Not provided"}}
Phone: {{or .C.Phone "Not provided"}}
Company: {{or .C.Company "Not provided"}}

Message:
{{or .C.Message "No message provided"}}

Submitted: {{.Submitted}}
IP: {{or .C.IPAddress "Unknown"}}

---
{{.Company}} Contact System`

const customerHTML = `<div style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; background: #f8f9fa; padding: 20px;">
  <div style="background: white; padding: 30px; border-radius: 12px;">
    <div style="text-align: center; margin-bottom: 30px;">
      <h1 style="color: #1a73e8; margin: 0; font-size: 24px;">Thank You!</h1>
      <p style="color: #666; margin: 10px 0 0 0;">We've received your message</p>
    </div>
    <p style="color: #333; font-size: 16px;">Dear {{or .C.Name "Valued Customer"}},</p>
    <p style="color: #333; line-height: 1.6;">Thank you for contacting {{.Company}}. We have received your inquiry and our team will respond within 24 hours.</p>
    <div style="background: #e8f4fd; padding: 20px; border-radius: 8px; margin: 25px 0;">
      <p style="color: #333; margin: 0 0 10px 0;"><strong>Your Message:</strong></p>
      <div style="background: white; padding: 15px; border-radius: 6px; color: #555; white-space: pre-wrap;">{{or .C.Message "No message provided"}}</div>
    </div>
    <div style="text-align: center; margin-top: 30px; padding: 20px; background: #f8f9fa; border-radius: 8px;">
      <p style="color: #333; margin: 0; font-weight: 500;">Best regards,<br>{{.Company}} Team</p>
    </div>
  </div>
</div>`

const customerText = `Dear {{or .C.Name "Customer"}},

Thank you for contacting {{.Company}}! We have received your message and will respond within 24 hours.

Your Message: {{or .C.Message "No message provided"}}

Best regards,
{{.Company}} Team

---
This is an automated confirmation. Please do not reply to this email.`

type templateData struct {
	Company   string
	C         Contact
	Submitted string
}

// Composer renders the admin notification and customer acknowledgement.
// Contact fields are escaped in the HTML bodies.
type Composer struct {
	company      string
	adminHTML    *htmltemplate.Template
	adminText    *texttemplate.Template
	customerHTML *htmltemplate.Template
	customerText *texttemplate.Template
}

func NewComposer(company string) *Composer {
	return &Composer{
		company:      company,
		adminHTML:    htmltemplate.Must(htmltemplate.New("admin").Parse(adminHTML)),
		adminText:    texttemplate.Must(texttemplate.New("admin").Parse(adminText)),
		customerHTML: htmltemplate.Must(htmltemplate.New("customer").Parse(customerHTML)),
		customerText: texttemplate.Must(texttemplate.New("customer").Parse(customerText)),
	}
}

func (c *Composer) AdminNotification(to string, contact Contact) (*Message, error) {
	data := c.data(contact)

	html, text, err := render(c.adminHTML, c.adminText, data)
	if err != nil {
		return nil, fmt.Errorf("render admin email: %w", err)
	}

	name := contact.Name
	if name == "" {
		name = "Unknown"
	}

	return &Message{
		FromName: adminFromName,
		To:       to,
		Subject:  adminSubjectPrefix + name,
		HTML:     html,
		Text:     text,
	}, nil
}

func (c *Composer) CustomerAcknowledgement(contact Contact) (*Message, error) {
	html, text, err := render(c.customerHTML, c.customerText, c.data(contact))
	if err != nil {
		return nil, fmt.Errorf("render customer email: %w", err)
	}

	return &Message{
		FromName: c.company,
		To:       contact.Email,
		Subject:  CustomerSubject,
		HTML:     html,
		Text:     text,
	}, nil
}

func (c *Composer) data(contact Contact) templateData {
	submitted := contact.SubmittedAt
	if submitted.IsZero() {
		submitted = time.Now()
	}
	return templateData{
		Company:   c.company,
		C:         contact,
		Submitted: submitted.UTC().Format("2006-01-02 15:04:05 MST"),
	}
}

func render(
	h *htmltemplate.Template,
	t *texttemplate.Template,
	data templateData,
) (string, string, error) {
	var hb, tb bytes.Buffer
	if err := h.Execute(&hb, data); err != nil {
		return "", "", err
	}
	if err := t.Execute(&tb, data); err != nil {
		return "", "", err
	}
	return hb.String(), tb.String(), nil
}
