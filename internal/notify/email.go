package notify

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"mime"
	"net/smtp"

	"restaurant-service/internal/config"
	"restaurant-service/internal/entity"
)

const NewRestaurantSubject = "Novo Estabelecimento Cadastrado!"

type Message struct {
	To      string
	Subject string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer delivers messages through an authenticated SMTP relay.
type SMTPMailer struct {
	cfg  config.SMTPConfig
	send sendFunc
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)
	if err := m.send(addr, auth, m.cfg.From, []string{msg.To}, m.render(msg)); err != nil {
		return fmt.Errorf("sending mail to %s: %w", msg.To, err)
	}
	return nil
}

func (m *SMTPMailer) render(msg Message) []byte {
	buf := bytes.Buffer{}
	buf.WriteString(fmt.Sprintf("From: %s <%s>\r\n", mime.QEncoding.Encode("utf-8", m.cfg.FromName), m.cfg.From))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", msg.To))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject)))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(msg.HTML)
	return buf.Bytes()
}

// Address formats the street number, city, state and postal code of r on one line.
func Address(r entity.Restaurant) string {
	return fmt.Sprintf("%s, %s - %s, CEP %s", r.StreetNumber, r.City, r.State, r.PostalCode)
}

// NewRestaurantMessage announces a newly registered restaurant to to.
func NewRestaurantMessage(to string, r entity.Restaurant) Message {
	return Message{
		To:      to,
		Subject: NewRestaurantSubject,
		HTML: fmt.Sprintf("<p><strong>Nome:</strong> %s</p>\r\n<p><strong>Endereço:</strong> %s</p>\r\n",
			html.EscapeString(r.Name), html.EscapeString(Address(r))),
	}
}
