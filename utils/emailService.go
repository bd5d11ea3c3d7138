package utils

import (
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"academy/config"
)

// SendEmail delivers a single HTML email through SendGrid. Missing API
// configuration downgrades to a log line so callers stay best-effort.
func SendEmail(to, subject, htmlBody string) error {
	cfg := config.AppConfig
	if cfg.SendGridKey == "" {
		log.Printf("[EMAIL] SENDGRID_API_KEY not set, skipping email %q to %s", subject, to)
		return nil
	}

	from := mail.NewEmail("Veeru's Pro Academy", cfg.EmailSender)
	message := mail.NewSingleEmail(from, subject, mail.NewEmail("", to), "", htmlBody)
	client := sendgrid.NewSendClient(cfg.SendGridKey)

	resp, err := client.Send(message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}

// getEmailTemplate wraps body content in the standard academy layout.
func getEmailTemplate(title, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #1E293B; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1E293B; line-height: 1.6; }
			.content h2 { color: #1E293B; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.btn { display: inline-block; padding: 12px 24px; background-color: #2563EB; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; margin-top: 20px; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #2563EB; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>VEERU'S PRO ACADEMY</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; 2026 Veeru's Pro Academy. All rights reserved.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// --- Triggers ---

// SendEnrollmentEmail confirms a fresh or reactivated enrollment.
func SendEnrollmentEmail(email, name, courseTitle, courseSlug string) error {
	if name == "" {
		name = "there"
	}
	subject := "Welcome to " + courseTitle + "!"
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>You've successfully enrolled in <strong>%s</strong>!</p>
		<a href="%s/courses/%s/" class="btn">Start Learning</a>
		<p>Happy learning!</p>
	`, name, courseTitle, config.AppConfig.SiteURL, courseSlug)

	return SendEmail(email, subject, getEmailTemplate("Enrollment Confirmed", body))
}

// SendPaymentApprovalEmail tells the user their course is unlocked.
func SendPaymentApprovalEmail(email, name, courseTitle, courseSlug string) error {
	if name == "" {
		name = "there"
	}
	subject := "Payment Approved - Course Unlocked!"
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Great news! Your payment for <strong>%s</strong> has been approved.</p>
		<div class="info-box">
			You can now start learning right away.
		</div>
		<a href="%s/courses/%s/" class="btn">Go to Course</a>
	`, name, courseTitle, config.AppConfig.SiteURL, courseSlug)

	return SendEmail(email, subject, getEmailTemplate("Course Unlocked", body))
}
