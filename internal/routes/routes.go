package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/consultahub/consulta-scheduler/internal/audit"
	"github.com/consultahub/consulta-scheduler/internal/config"
	"github.com/consultahub/consulta-scheduler/internal/handlers"
	infraRepo "github.com/consultahub/consulta-scheduler/internal/infra/repository"
	"github.com/consultahub/consulta-scheduler/internal/ledger"
	"github.com/consultahub/consulta-scheduler/internal/middleware"
	"github.com/consultahub/consulta-scheduler/internal/models"
	"github.com/consultahub/consulta-scheduler/internal/notify"
	"github.com/consultahub/consulta-scheduler/internal/payment"
	"github.com/consultahub/consulta-scheduler/internal/schedule"
	ucBooking "github.com/consultahub/consulta-scheduler/internal/usecase/booking"
	ucSchedule "github.com/consultahub/consulta-scheduler/internal/usecase/schedule"
)

func RegisterRoutes(
	r *gin.Engine,
	db *gorm.DB,
	cfg *config.Config,
	logger zerolog.Logger,
) *ucBooking.Sweeper {

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(db)
	slotLedger := ledger.NewGormLedger(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger, logger)

	var sink notify.Sink = notify.NopSink{}
	if cfg.RedisAddr != "" {
		sink = notify.NewRedisSink(cfg.RedisAddr, cfg.RedisChannel, logger)
	}

	var gateway payment.Gateway
	if cfg.MPAccessToken != "" {
		mp, err := payment.NewMercadoPagoGateway(cfg.MPAccessToken, cfg.PaymentWebhookURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("mercado pago init failed")
		}
		gateway = mp
	} else {
		gateway = payment.NewNopGateway()
		logger.Warn().Msg("MP_ACCESS_TOKEN not set, checkouts are simulated")
	}

	materializer := schedule.NewMaterializer(logger)

	// ======================================================
	// USE CASES
	// ======================================================
	getSlotsUC := ucSchedule.NewGetSlots(bookingRepo, slotLedger, materializer)

	createBookingUC := ucBooking.NewCreateBooking(
		bookingRepo,
		slotLedger,
		gateway,
		sink,
		auditDispatcher,
	)

	confirmPaymentUC := ucBooking.NewConfirmPayment(
		bookingRepo,
		slotLedger,
		sink,
		auditDispatcher,
		logger,
		cfg.LedgerRetryAttempts,
	)

	postponeBookingUC := ucBooking.NewPostponeBooking(
		bookingRepo,
		slotLedger,
		sink,
		auditDispatcher,
		logger,
	)

	cancelBookingUC := ucBooking.NewCancelBooking(
		bookingRepo,
		slotLedger,
		sink,
		auditDispatcher,
		logger,
	)

	listBookingsUC := ucBooking.NewListBookings(bookingRepo)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db)

	rulesHandler := handlers.NewAvailabilityRulesHandler(db, auditDispatcher)
	customSlotsHandler := handlers.NewCustomSlotsHandler(db, auditDispatcher)

	publicHandler := handlers.NewPublicHandler(db, getSlotsUC)

	bookingHandler := handlers.NewBookingHandler(
		createBookingUC,
		postponeBookingUC,
		cancelBookingUC,
		listBookingsUC,
	)

	webhookHandler := handlers.NewPaymentWebhookHandler(db, confirmPaymentUC, logger)

	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/providers", publicHandler.ListProviders)
			publicAPI.GET("/providers/:id/slots", publicHandler.GetSlots)
		}

		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// WEBHOOKS
		// ------------------------------
		api.POST("/webhooks/payment", webhookHandler.Handle)

		// ------------------------------
		// PRIVATE
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", meHandler.GetMe)
			secured.PATCH("/me", meHandler.UpdateMe)

			secured.GET("/me/bookings", bookingHandler.List)
			secured.POST("/me/bookings", bookingHandler.Create)
			secured.PATCH("/me/bookings/:id/postpone", bookingHandler.Postpone)
			secured.PATCH("/me/bookings/:id/cancel", bookingHandler.Cancel)

			secured.GET("/me/audit-logs", auditLogsHandler.List)

			// ------------------------------
			// PROVIDER ONLY
			// ------------------------------
			provider := secured.Group("/")
			provider.Use(middleware.RequireRole(models.RoleProvider))
			{
				provider.GET("/me/availability-rules", rulesHandler.List)
				provider.POST("/me/availability-rules", rulesHandler.Create)
				provider.PUT("/me/availability-rules/:id", rulesHandler.Update)
				provider.DELETE("/me/availability-rules/:id", rulesHandler.Delete)

				provider.GET("/me/custom-slots", customSlotsHandler.List)
				provider.POST("/me/custom-slots", customSlotsHandler.Create)
				provider.DELETE("/me/custom-slots/:id", customSlotsHandler.Delete)
			}
		}
	}

	// The caller owns the sweeper's lifecycle.
	return ucBooking.NewSweeper(
		bookingRepo,
		slotLedger,
		auditDispatcher,
		logger,
		cfg.PendingSweepWindow(),
		cfg.PendingSweepTick(),
	)
}
