package smtp

import (
	"fmt"
	smtpPkg "net/smtp"
	"os"
)

type ItfSmtp interface {
	Send(toAddress string, subject string, body string) error
	SendOTP(userEmail string, otp string) error
}

type smtp struct {
	auth smtpPkg.Auth
	mail string
	addr string
}

func New() ItfSmtp {
	mail := os.Getenv("SMTP_MAIL")
	password := os.Getenv("SMTP_PASSWORD")

	host := os.Getenv("SMTP_HOST")
	if host == "" {
		host = "smtp.gmail.com"
	}
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}

	auth := smtpPkg.PlainAuth("", mail, password, host)

	return &smtp{
		auth: auth,
		mail: mail,
		addr: fmt.Sprintf("%s:%s", host, port),
	}
}

func (s *smtp) Send(toAddress string, subject string, body string) error {
	to := []string{toAddress}

	message := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\n\r\n%s", toAddress, subject, body))

	if err := smtpPkg.SendMail(s.addr, s.auth, s.mail, to, message); err != nil {
		return err
	}

	return nil
}

func (s *smtp) SendOTP(userEmail string, otp string) error {
	body := fmt.Sprintf("Hola, este es tu código de verificación de VidaSegura: %s", otp)
	return s.Send(userEmail, "Código de verificación", body)
}
