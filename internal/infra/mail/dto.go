package mail

import "gopkg.in/gomail.v2"

type WelcomeEmailData struct {
	Name         string
	Organization string
	CompanyName  string
}

type FollowUpEmailData struct {
	Name        string
	CompanyName string
}

// dialer é satisfeito por *gomail.Dialer.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailSender struct {
	Host        string
	Port        int
	User        string
	Password    string
	From        string
	CompanyName string

	dialer dialer
}
