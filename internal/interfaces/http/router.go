package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Cotizaciones-api/internal/application/auth"
	"github.com/jhoicas/Cotizaciones-api/internal/application/award"
	"github.com/jhoicas/Cotizaciones-api/internal/application/bid"
	"github.com/jhoicas/Cotizaciones-api/internal/application/draft"
	"github.com/jhoicas/Cotizaciones-api/internal/application/notification"
	"github.com/jhoicas/Cotizaciones-api/internal/application/rfq"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	RfqUC          *rfq.UseCase
	BidUC          *bid.UseCase
	Coordinator    *award.Coordinator
	Letters        *award.LetterUseCase
	NotificationUC *notification.UseCase
	Drafts         *draft.Store
	// TokenUC solo se monta en desarrollo; nil deshabilita /api/auth/token.
	TokenUC   *auth.TokenUseCase
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	if deps.TokenUC != nil {
		authHandler := NewAuthHandler(deps.TokenUC)
		api.Post("/auth/token", authHandler.IssueToken)
	}

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	company := RequireRole(entity.RoleCompany)
	supplier := RequireRole(entity.RoleSupplier)
	companyOrSupplier := RequireRole(entity.RoleCompany, entity.RoleSupplier)

	rfqHandler := NewRfqHandler(deps.RfqUC, deps.Drafts)
	bidHandler := NewBidHandler(deps.BidUC, deps.Drafts)
	awardHandler := NewAwardHandler(deps.Coordinator, deps.Letters)

	rfqs := protected.Group("/rfqs")
	rfqs.Post("/", company, rfqHandler.Create)
	rfqs.Get("/", rfqHandler.List)
	rfqs.Get("/:id", rfqHandler.Get)
	rfqs.Put("/:id", company, rfqHandler.Update)
	rfqs.Patch("/:id/status", company, rfqHandler.UpdateStatus)
	rfqs.Delete("/:id", company, rfqHandler.Delete)
	rfqs.Post("/:id/close", company, awardHandler.Close)
	rfqs.Post("/:id/reconcile", company, awardHandler.Reconcile)
	rfqs.Get("/:id/award-letter", companyOrSupplier, awardHandler.AwardLetter)
	rfqs.Post("/:id/bids", supplier, bidHandler.Submit)
	rfqs.Get("/:id/bids", company, bidHandler.ListForRfq)

	bids := protected.Group("/bids")
	bids.Get("/:id", companyOrSupplier, bidHandler.Get)
	bids.Put("/:id", supplier, bidHandler.Update)
	bids.Post("/:id/accept", company, awardHandler.Accept)
	bids.Post("/:id/reject", company, awardHandler.Reject)

	protected.Get("/suppliers/:id/bids", supplier, bidHandler.ListForSupplier)

	notificationHandler := NewNotificationHandler(deps.NotificationUC)
	notifications := protected.Group("/notifications")
	notifications.Get("/", notificationHandler.List)
	notifications.Patch("/:id/read", notificationHandler.MarkRead)

	if deps.Drafts != nil {
		draftHandler := NewDraftHandler(deps.Drafts)
		drafts := protected.Group("/drafts")
		drafts.Put("/:session", draftHandler.Save)
		drafts.Get("/:session", draftHandler.Get)
		drafts.Delete("/:session", draftHandler.Discard)
	}
}
