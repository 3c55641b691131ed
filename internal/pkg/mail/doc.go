// Package mail abstracts outbound email delivery.
//
// The Mail interface keeps business code independent of the transport; the
// concrete implementation here speaks SMTP via net/smtp.
package mail
