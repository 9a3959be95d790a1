package main

import (
	"context"
	"net/http"
	_ "time/tzdata"

	"github.com/gorilla/mux"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"
	"github.com/sendgrid/sendgrid-go"
	twilio "github.com/twilio/twilio-go"

	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/app"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/config"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/constants"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/controllers"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/middleware"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/repositories"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/routes"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/services"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/utils"
)

func main() {
	if config.AppName == "" {
		config.AppName = "rent-service"
	}
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()

	if cfg.RSAPublicKey == nil {
		utils.Logger.Fatal("RSA_PUBLIC_KEY_BASE64 env var is missing")
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize rent-service:", err)
	}
	defer application.Close()

	store := application.Store
	orgRepo := repositories.NewOrganizationRepository(store)
	userRepo := repositories.NewUserRepository(store)
	propRepo := repositories.NewPropertyRepository(store)
	rentRepo := repositories.NewRentRepository(store)
	invoiceRepo := repositories.NewInvoiceRepository(store)
	paymentRepo := repositories.NewPaymentRepository(store)

	if cfg.LDFlag_SeedDbWithTestData {
		if err := app.SeedAllTestData(context.Background(), store); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to seed test data")
		} else {
			utils.Logger.Info("Seeded test data successfully")
		}
	}

	rentService := services.NewRentService(store, rentRepo, propRepo, orgRepo, application.Cache)
	propertyService := services.NewPropertyService(propRepo)
	billingService := services.NewBillingService(store, rentRepo, invoiceRepo, paymentRepo)
	syncService := services.NewRentSyncService(store, rentRepo, propRepo)
	expiryService := services.NewLeaseExpiryService(store, rentRepo, propRepo, orgRepo)

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
	notifyService := services.NewLeaseNotificationService(services.NotificationConfig{
		OrgName:         cfg.OrganizationName,
		FromEmail:       cfg.LDFlag_SendgridFromEmail,
		FromPhone:       cfg.TwilioFromPhone,
		SendgridSandbox: cfg.LDFlag_SendgridSandboxMode,
	}, rentRepo, propRepo, orgRepo, emailSender, smsSender)

	rentController := controllers.NewRentController(rentService)
	propertyController := controllers.NewPropertyController(propertyService)
	billingController := controllers.NewBillingController(billingService)
	healthController := controllers.NewHealthController(application)

	router := mux.NewRouter()

	// Public
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)

	secured := router.NewRoute().Subrouter()
	secured.Use(middleware.AuthMiddleware(cfg.RSAPublicKey, userRepo))

	secured.HandleFunc(routes.Rent, rentController.ListHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.Rent, rentController.CreateHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.RentByID, rentController.GetHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.RentByID, rentController.UpdateHandler).Methods(http.MethodPatch, http.MethodPut)
	secured.HandleFunc(routes.RentRenew, rentController.RenewHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.RentTerminate, rentController.TerminateHandler).Methods(http.MethodPost)

	secured.HandleFunc(routes.Properties, propertyController.ListHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.PropertyByID, propertyController.GetHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.PropertyByID, propertyController.UpdateHandler).Methods(http.MethodPatch, http.MethodPut)
	secured.HandleFunc(routes.PropertySpace, propertyController.UpdateSpaceHandler).Methods(http.MethodPatch)

	secured.HandleFunc(routes.Invoices, billingController.ListInvoicesHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.Invoices, billingController.CreateInvoiceHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.Payments, billingController.ListPaymentsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.Payments, billingController.RecordPaymentHandler).Methods(http.MethodPost)

	c := cron.New()
	if cfg.LDFlag_NightlyRentSync {
		_, syncErr := c.AddFunc(constants.NightlyRentSyncSpec, func() {
			report, e := syncService.Sync(context.Background(), services.RentSyncOptions{})
			if e != nil {
				utils.Logger.WithError(e).Error("Scheduled rent sync failed")
				return
			}
			utils.Logger.Infof("Scheduled rent sync: %v", report.Summary())
		})
		if syncErr != nil {
			utils.Logger.WithError(syncErr).Fatal("Failed to schedule rent sync cron")
		}
	}

	_, expiryErr := c.AddFunc(constants.LeaseExpirySweepSpec, func() {
		if _, e := expiryService.ExpireLeases(context.Background(), "", false); e != nil {
			utils.Logger.WithError(e).Error("Scheduled lease expiry sweep failed")
		}
	})
	if expiryErr != nil {
		utils.Logger.WithError(expiryErr).Fatal("Failed to schedule lease expiry cron")
	}

	if cfg.LDFlag_NotifyExpiringLeases {
		_, notifyErr := c.AddFunc(constants.ExpiryNoticeSpec, func() {
			if _, e := notifyService.NotifyExpiringLeases(context.Background(), ""); e != nil {
				utils.Logger.WithError(e).Error("Scheduled lease expiry notices failed")
			}
		})
		if notifyErr != nil {
			utils.Logger.WithError(notifyErr).Fatal("Failed to schedule lease notice cron")
		}
	}
	c.Start()
	defer c.Stop()

	allowedOrigins := []string{cfg.AppUrl}
	if !cfg.LDFlag_CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, utils.CORSLowSecurityAllowedOriginLocalhost)
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("rent-service failed to start:", err)
	}
}
