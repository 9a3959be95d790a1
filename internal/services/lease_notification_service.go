package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/models"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/repositories"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/utils"
)

// EmailSender is satisfied by *sendgrid.Client.
type EmailSender interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

// SMSSender is satisfied by the Api field of *twilio.RestClient.
type SMSSender interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

type NotificationConfig struct {
	OrgName         string
	FromEmail       string
	FromPhone       string
	SendgridSandbox bool
}

// Tenants are reminded when this many days remain.
var expiryNoticeDays = []int{30, 14, 7, 3, 1}

const expiryEmailHTML = `<!DOCTYPE html>
<html>
<body style="font-family:Arial,sans-serif;color:#333">
<h2>Your lease is ending soon</h2>
<p>Hello %s,</p>
<p>Your lease for <strong>%s</strong> at <strong>%s</strong> ends on <strong>%s</strong> (%d days from today).</p>
<p>Please contact your property manager to renew or arrange move-out.</p>
<p style="color:#888;font-size:12px">%s</p>
</body>
</html>`

type LeaseNotificationService struct {
	cfg      NotificationConfig
	rentRepo repositories.RentRepository
	propRepo repositories.PropertyRepository
	orgRepo  repositories.OrganizationRepository
	email    EmailSender
	sms      SMSSender
	now      func() time.Time
}

func NewLeaseNotificationService(
	cfg NotificationConfig,
	rentRepo repositories.RentRepository,
	propRepo repositories.PropertyRepository,
	orgRepo repositories.OrganizationRepository,
	email EmailSender,
	sms SMSSender,
) *LeaseNotificationService {
	return &LeaseNotificationService{
		cfg:      cfg,
		rentRepo: rentRepo,
		propRepo: propRepo,
		orgRepo:  orgRepo,
		email:    email,
		sms:      sms,
		now:      time.Now,
	}
}

// NotifyExpiringLeases emails and texts tenants whose lease ends in one of
// the reminder windows.
func (s *LeaseNotificationService) NotifyExpiringLeases(ctx context.Context, orgID string) (*Report, error) {
	records, err := s.rentRepo.ListActive(ctx, orgID)
	if err != nil {
		return nil, utils.StoreError("list active rent", orgID, err)
	}

	report := newReport(false)
	report.Checked = len(records)
	props := newPropertyCache(s.propRepo)
	orgs := map[string]*models.Organization{}
	now := s.now()

	for _, rec := range records {
		prop, err := props.get(ctx, rec.PropertyID)
		if err != nil {
			report.add(rec.ID, Failed, "property-fetch", err.Error())
			continue
		}
		org, ok := orgs[rec.OrganizationID]
		if !ok {
			org, _ = s.orgRepo.GetByID(ctx, rec.OrganizationID)
			orgs[rec.OrganizationID] = org
		}

		c := ClassifyLease(localToday(now, prop, org), rec.LeaseEnd)
		if !c.IsExpiringSoon || !slices.Contains(expiryNoticeDays, *c.DaysUntilExpiry) {
			continue
		}
		if rec.TenantEmail == "" && rec.TenantPhone == "" {
			report.add(rec.ID, Skipped, "no-contact", "")
			continue
		}

		propName := ""
		if prop != nil {
			propName = prop.Name
		}
		sent, errs := s.notify(rec, propName, *c.DaysUntilExpiry)
		switch {
		case sent > 0:
			report.add(rec.ID, WillUpdate, "notified", fmt.Sprintf("%d days left", *c.DaysUntilExpiry))
		case len(errs) > 0:
			report.add(rec.ID, Failed, "send-failed", strings.Join(errs, "; "))
		default:
			report.add(rec.ID, Skipped, "no-channel", "")
		}
	}

	utils.Logger.WithFields(logrus.Fields{
		"organization_id": orgID,
		"notified":        report.Count(WillUpdate),
		"failed":          report.Count(Failed),
	}).Info("lease expiry notices finished")
	return report, nil
}

func (s *LeaseNotificationService) notify(rec *models.RentRecord, propertyName string, days int) (sent int, errs []string) {
	subject := fmt.Sprintf("Lease ending in %d days", days)
	plain := fmt.Sprintf("Hello %s, your lease for %s at %s ends on %s (%d days). Contact your property manager to renew.",
		rec.TenantName, rec.SpaceName, propertyName, rec.LeaseEnd, days)

	// ---------- Twilio SMS ----------
	if rec.TenantPhone != "" {
		if s.sms != nil {
			params := &twilioApi.CreateMessageParams{}
			params.SetTo(rec.TenantPhone)
			params.SetFrom(s.cfg.FromPhone)
			params.SetBody(subject + " :: " + plain)
			if _, err := s.sms.CreateMessage(params); err != nil {
				utils.Logger.WithError(err).Warnf("Failed to send expiry SMS for rent %s", rec.ID)
				errs = append(errs, "sms: "+err.Error())
			} else {
				sent++
			}
		} else {
			utils.Logger.Warnf("Twilio client is nil, skipping SMS for rent %s", rec.ID)
		}
	}

	// ---------- SendGrid Email ----------
	if rec.TenantEmail != "" {
		if s.email != nil {
			from := mail.NewEmail(s.cfg.OrgName, s.cfg.FromEmail)
			to := mail.NewEmail(rec.TenantName, rec.TenantEmail)
			html := fmt.Sprintf(expiryEmailHTML, rec.TenantName, rec.SpaceName, propertyName, rec.LeaseEnd, days,
				s.now().UTC().Format(time.RFC1123Z))
			msg := mail.NewSingleEmail(from, subject, to, plain, html)
			msg.TrackingSettings = &mail.TrackingSettings{
				ClickTracking: &mail.ClickTrackingSetting{
					Enable: utils.Ptr(false),
				},
			}
			if s.cfg.SendgridSandbox {
				ms := mail.NewMailSettings()
				ms.SetSandboxMode(mail.NewSetting(true))
				msg.MailSettings = ms
			}
			if _, err := s.email.Send(msg); err != nil {
				utils.Logger.WithError(err).Warnf("Email send failure for rent %s", rec.ID)
				errs = append(errs, "email: "+err.Error())
			} else {
				sent++
			}
		} else {
			utils.Logger.Warnf("SendGrid client is nil, skipping email for rent %s", rec.ID)
		}
	}
	return sent, errs
}
