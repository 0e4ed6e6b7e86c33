// Package email envía los mails de verificación (magic link) de los providers
// de tipo email.
//
//	provider email ──► VerificationRequest ──► Render(html, txt) ──► Sender.Send
//
// SMTPSender es la implementación por defecto (go-mail). Cualquier otro transporte
// implementa Sender.
package email
