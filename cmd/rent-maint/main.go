package main

import (
	"context"
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/sendgrid/sendgrid-go"
	twilio "github.com/twilio/twilio-go"

	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/app"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/cli"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/config"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/services"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/utils"
)

func main() {
	if config.AppName == "" {
		config.AppName = "rent-maint"
	}
	utils.InitLoggerTo(config.AppName, os.Stderr)

	root := cli.NewRootCmd(func(ctx context.Context) (*cli.Deps, func(), error) {
		cfg := config.LoadConfig()
		application, err := app.NewApp(cfg)
		if err != nil {
			return nil, nil, err
		}
		deps := cli.NewDeps(application.Store)

		if cfg.SendGridAPIKey != "" || cfg.TwilioAccountSID != "" {
			var emailSender services.EmailSender
			if cfg.SendGridAPIKey != "" {
				emailSender = sendgrid.NewSendClient(cfg.SendGridAPIKey)
			}
			var smsSender services.SMSSender
			if cfg.TwilioAccountSID != "" {
				smsSender = twilio.NewRestClientWithParams(twilio.ClientParams{
					Username: cfg.TwilioAccountSID,
					Password: cfg.TwilioAuthToken,
				}).Api
			}
			deps.Notifier = services.NewLeaseNotificationService(services.NotificationConfig{
				OrgName:         cfg.OrganizationName,
				FromEmail:       cfg.LDFlag_SendgridFromEmail,
				FromPhone:       cfg.TwilioFromPhone,
				SendgridSandbox: cfg.LDFlag_SendgridSandboxMode,
			}, deps.Rents, deps.Props, deps.Orgs, emailSender, smsSender)
		}
		return deps, application.Close, nil
	})

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
