package email

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/smtp"
	"time"

	"github.com/google/uuid"

	"volugram/internal/config"
)

// Attachment is a file attached to an outgoing email
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Service handles email operations
type Service struct {
	config *config.EmailConfig
}

// NewService creates a new email service
func NewService(cfg *config.EmailConfig) *Service {
	return &Service{
		config: cfg,
	}
}

// SendActivationEmail sends the account confirmation email
func (s *Service) SendActivationEmail(to, token string) error {
	subject := "Volugram account confirmation"
	activationURL := fmt.Sprintf("%s/%s", s.config.ActivationURL, token)

	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Account Confirmation</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #45a049;">Welcome to Volugram!</h2>
        <p>Thank you for registering with Volugram. Please confirm your account by clicking the button below:</p>
        <div style="text-align: center; margin: 30px 0;">
            <a href="%s" style="background-color: #45a049; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">Confirm Account</a>
        </div>
        <p>If the button doesn't work, you can also copy and paste the following link into your browser:</p>
        <p style="word-break: break-all; color: #45a049;">%s</p>
        <p>This link will expire in 24 hours.</p>
        <p>If you didn't create an account with Volugram, please ignore this email.</p>
        <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
        <p style="color: #999; font-size: 12px;">This is an automated email. Please do not reply.</p>
    </div>
</body>
</html>
`, activationURL, activationURL)

	return s.sendEmail(to, subject, body, nil)
}

// SendPasswordResetEmail sends a password reset email
func (s *Service) SendPasswordResetEmail(to, token string) error {
	subject := "Volugram password reset"
	resetURL := fmt.Sprintf("%s/%s", s.config.PasswordResetURL, token)

	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Password Reset</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #45a049;">Password Reset Request</h2>
        <p>We received a request to reset your Volugram password.</p>
        <p>Click the button below to reset your password:</p>
        <div style="text-align: center; margin: 30px 0;">
            <a href="%s" style="background-color: #45a049; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">Reset Password</a>
        </div>
        <p>If the button doesn't work, you can also copy and paste the following link into your browser:</p>
        <p style="word-break: break-all; color: #45a049;">%s</p>
        <p>This link will expire in 1 hour.</p>
        <p>If you did not request a password reset, please ignore this email.</p>
        <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
        <p style="color: #999; font-size: 12px;">This is an automated email. Please do not reply.</p>
    </div>
</body>
</html>
`, resetURL, resetURL)

	return s.sendEmail(to, subject, body, nil)
}

// SendSubmissionAcceptedEmail notifies a volunteer that their submission
// was confirmed and attaches the issued certificate
func (s *Service) SendSubmissionAcceptedEmail(to, language, who, comment string, certificate []byte) error {
	now := time.Now()
	dateStr := fmt.Sprintf("%d.%d.%d", now.Day(), int(now.Month()), now.Year())

	var subject, text string
	switch language {
	case "de":
		subject = fmt.Sprintf("Zertifikatausstellung (%s) durch %s", dateStr, who)
		text = fmt.Sprintf("Ihre Einreichung wurde akzeptiert. Kommentar: %s", comment)
	case "no":
		subject = fmt.Sprintf("Sertifikatutstedelse (%s) av %s", dateStr, who)
		text = fmt.Sprintf("Din innlevering har blitt akseptert. Kommentar: %s", comment)
	case "et":
		subject = fmt.Sprintf("Sertifikaadi väljastamine (%s) %s poolt", dateStr, who)
		text = fmt.Sprintf("Teie taotlus on vastu võetud. Kommentaar: %s", comment)
	default:
		subject = fmt.Sprintf("Certificate Issuance (%s) by %s", dateStr, who)
		text = fmt.Sprintf("Your submission has been accepted. Comment: %s", comment)
	}

	attachments := []Attachment{
		{Filename: "certificate.pdf", ContentType: "application/pdf", Content: certificate},
	}
	return s.sendEmail(to, subject, text, attachments)
}

// SendSubmissionRejectedEmail notifies a volunteer that their submission
// was rejected
func (s *Service) SendSubmissionRejectedEmail(to, language, who, comment string) error {
	now := time.Now()
	dateStr := fmt.Sprintf("%d.%d.%d", now.Day(), int(now.Month()), now.Year())

	var subject, text string
	switch language {
	case "de":
		subject = fmt.Sprintf("Abgelehnte Freiwilligen-Einreichung durch %s %s", who, dateStr)
		text = fmt.Sprintf("Ihre Einreichung wurde abgelehnt. Kommentar: %s", comment)
	case "no":
		subject = fmt.Sprintf("Avvist Frivillig Innsending av %s %s", who, dateStr)
		text = fmt.Sprintf("Din innlevering har blitt avvist. Kommentar: %s", comment)
	case "et":
		subject = fmt.Sprintf("Tagasi lükatud vabatahtliku esitlus %s poolt %s", who, dateStr)
		text = fmt.Sprintf("Teie esitlus on tagasi lükatud. Kommentaar: %s", comment)
	default:
		subject = fmt.Sprintf("Rejected Volunteering Submission by %s %s", who, dateStr)
		text = fmt.Sprintf("Your submission has been rejected. Comment: %s", comment)
	}

	return s.sendEmail(to, subject, text, nil)
}

// SendCertificateBundleEmail sends all of a volunteer's certificates as a
// single zip archive
func (s *Service) SendCertificateBundleEmail(to string, archive []byte) error {
	subjectID := uuid.NewString()[:8]
	subject := fmt.Sprintf("Certificates - %s - Volugram", subjectID)

	attachments := []Attachment{
		{Filename: "certificates.zip", ContentType: "application/zip", Content: archive},
	}
	return s.sendEmail(to, subject, "Your certificates are attached.", attachments)
}

// sendEmail sends an email using SMTP, optionally with attachments
func (s *Service) sendEmail(to, subject, body string, attachments []Attachment) error {
	message := buildMessage(s.config.SMTPFrom, to, subject, body, attachments)

	addr := net.JoinHostPort(s.config.SMTPHost, s.config.SMTPPort)
	slog.Debug("Attempting to connect to SMTP server",
		"address", addr,
		"host", s.config.SMTPHost,
		"port", s.config.SMTPPort,
	)

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		slog.Error("Failed to connect to SMTP server",
			"address", addr,
			"error", err,
		)
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func(conn net.Conn) {
		err := conn.Close()
		if err != nil {
			slog.Error("Failed to close SMTP connection", "error", err)
		}
	}(conn)

	client, err := smtp.NewClient(conn, s.config.SMTPHost)
	if err != nil {
		slog.Error("Failed to create SMTP client", "error", err)
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer func(client *smtp.Client) {
		err := client.Close()
		if err != nil {
			slog.Error("Failed to close SMTP client", "error", err)
		}
	}(client)

	// Authenticate only if credentials are provided and not empty
	// For development (e.g., Mailpit), no authentication is needed
	if s.config.SMTPUsername != "" && s.config.SMTPPassword != "" {
		auth := smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
		_ = client.Auth(auth)
	}

	if err := client.Mail(s.config.SMTPFrom); err != nil {
		slog.Error("Failed to set sender",
			"from", s.config.SMTPFrom,
			"error", err,
		)
		return fmt.Errorf("failed to set sender: %w", err)
	}

	if err := client.Rcpt(to); err != nil {
		slog.Error("Failed to set recipient",
			"to", to,
			"error", err,
		)
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	wc, err := client.Data()
	if err != nil {
		slog.Error("Failed to initiate data transfer", "error", err)
		return fmt.Errorf("failed to initiate data transfer: %w", err)
	}
	defer func(wc io.WriteCloser) {
		err := wc.Close()
		if err != nil {
			slog.Error("Failed to close write closer", "error", err)
		}
	}(wc)

	if _, err := wc.Write(message); err != nil {
		slog.Error("Failed to write message", "error", err)
		return fmt.Errorf("failed to write message: %w", err)
	}

	slog.Info("Email sent successfully", "to", to)

	return nil
}

// buildMessage assembles the raw RFC 2822 message. Without attachments a
// plain single-part message is built; with attachments a multipart/mixed
// message with base64 encoded parts.
func buildMessage(from, to, subject, body string, attachments []Attachment) []byte {
	var message bytes.Buffer

	message.WriteString(fmt.Sprintf("From: %s\r\n", from))
	message.WriteString(fmt.Sprintf("To: %s\r\n", to))
	message.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	message.WriteString("MIME-Version: 1.0\r\n")

	if len(attachments) == 0 {
		message.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
		message.WriteString("\r\n")
		message.WriteString(body)
		return message.Bytes()
	}

	boundary := "volugram-" + uuid.NewString()
	message.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=%q\r\n", boundary))
	message.WriteString("\r\n")

	message.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	message.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	message.WriteString("\r\n")
	message.WriteString(body)
	message.WriteString("\r\n")

	for _, attachment := range attachments {
		message.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		message.WriteString(fmt.Sprintf("Content-Type: %s\r\n", attachment.ContentType))
		message.WriteString("Content-Transfer-Encoding: base64\r\n")
		message.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=%q\r\n", attachment.Filename))
		message.WriteString("\r\n")

		encoded := base64.StdEncoding.EncodeToString(attachment.Content)
		// 76 character lines per RFC 2045
		for len(encoded) > 76 {
			message.WriteString(encoded[:76])
			message.WriteString("\r\n")
			encoded = encoded[76:]
		}
		message.WriteString(encoded)
		message.WriteString("\r\n")
	}

	message.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	return message.Bytes()
}
