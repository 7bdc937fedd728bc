package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const defaultCompanyName = "LeadHub"

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		Host:        host,
		Port:        port,
		User:        user,
		Password:    password,
		From:        from,
		CompanyName: defaultCompanyName,
		dialer:      gomail.NewDialer(host, port, user, password),
	}
}

func (s *EmailSender) SendWelcome(to, name, organization string) error {
	data := WelcomeEmailData{Name: name, Organization: organization, CompanyName: s.CompanyName}
	subject := fmt.Sprintf("Bem-vindo, %s! Recebemos seu contato 🚀", name)
	return s.send(to, subject, "welcome.html", data)
}

func (s *EmailSender) SendFollowUp(to, name string) error {
	data := FollowUpEmailData{Name: name, CompanyName: s.CompanyName}
	subject := fmt.Sprintf("%s, podemos ajudar?", name)
	return s.send(to, subject, "follow_up.html", data)
}

func (s *EmailSender) send(to, subject, tmpl string, data any) error {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, tmpl, data); err != nil {
		return fmt.Errorf("erro ao processar template %s: %w", tmpl, err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body.String())

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}
	return nil
}
