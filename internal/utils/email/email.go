package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/lending-office/backoffice/internal/config"
	"github.com/lending-office/backoffice/internal/engine"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendLTVBreachNotice sends a collateral cover breach notice to the risk desk
func (s *Sender) SendLTVBreachNotice(to string, need engine.RebalancingNeed) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("LTV Breach Alert: Loan %d (%s)", need.LoanID, need.Urgency)

	body := fmt.Sprintf(
		"Loan %d has breached its collateral cover.\n\n"+
			"Outstanding exposure: %s\n"+
			"Collateral value:     %s\n"+
			"Current LTV:          %s%% (target %s%%)\n"+
			"Shortfall:            %s\n"+
			"Urgency:              %s\n\n"+
			"Suggested actions:\n",
		need.LoanID, need.Outstanding.StringFixed(2), need.CollateralValue.StringFixed(2),
		need.CurrentLTV, need.TargetLTV, need.Shortfall.StringFixed(2), need.Urgency,
	)
	for _, a := range need.Actions {
		if a.Amount.IsZero() {
			body += fmt.Sprintf("- %s: %s\n", a.Type, a.Note)
		} else {
			body += fmt.Sprintf("- %s %s: %s\n", a.Type, a.Amount.StringFixed(2), a.Note)
		}
	}
	body += "\nBest regards,\nLending Office"
	e.Text = []byte(body)

	return s.send(e, to)
}

// SendOverdueNotice sends a payment overdue notice for a classified loan
func (s *Sender) SendOverdueNotice(to string, loanID int64, dueDate time.Time, dpd int, bucket engine.Bucket) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Overdue Installment Notification: Loan %d", loanID)

	body := fmt.Sprintf(
		"The oldest unpaid installment on loan %d was due on %s and is %d days past due.\n"+
			"The loan is currently classified %s.\n"+
			"Please follow up with the borrower to avoid further slippage.\n"+
			"\nBest regards,\nLending Office",
		loanID, dueDate.Format("2006-01-02"), dpd, bucket,
	)
	e.Text = []byte(body)

	return s.send(e, to)
}

func (s *Sender) send(e *email.Email, to string) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
