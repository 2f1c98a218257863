package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/transfers-api/internal/application/approval"
	"github.com/tu-usuario/transfers-api/internal/application/auth"
	"github.com/tu-usuario/transfers-api/internal/application/ledger"
	"github.com/tu-usuario/transfers-api/internal/application/shipping"
	"github.com/tu-usuario/transfers-api/internal/application/transfer"
	"github.com/tu-usuario/transfers-api/internal/application/usecase"
	"github.com/tu-usuario/transfers-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	TransferUC *transfer.TransferUseCase
	ShippingUC *shipping.ShippingUseCase
	ApprovalUC *approval.ApprovalUseCase
	LedgerUC   *ledger.LedgerUseCase
	BranchUC   *usecase.BranchUseCase
	ProductUC  *usecase.ProductUseCase
	AuthUC     *auth.AuthUseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	read := RequirePermission(PermStockRead)
	write := RequirePermission(PermStockWrite)

	// Transfers (protegido)
	transfers := protected.Group("/transfers")
	transferHandler := NewTransferHandler(deps.TransferUC, deps.ShippingUC)
	transfers.Post("/", write, transferHandler.Create)
	transfers.Get("/", read, transferHandler.List)
	transfers.Get("/:id", read, transferHandler.GetByID)
	transfers.Post("/:id/approve", write, transferHandler.Approve)
	transfers.Post("/:id/reject", write, transferHandler.Reject)
	transfers.Post("/:id/cancel", write, transferHandler.Cancel)
	transfers.Patch("/:id/priority", write, transferHandler.UpdatePriority)
	transfers.Post("/:id/ship", write, transferHandler.Ship)
	transfers.Post("/:id/receive", write, transferHandler.Receive)
	transfers.Get("/:id/batches", read, transferHandler.ListBatches)

	// Approval progress y firma de niveles (protegido)
	approvalHandler := NewApprovalHandler(deps.ApprovalUC)
	transfers.Get("/:id/approval-progress", read, approvalHandler.GetProgress)
	transfers.Post("/:id/approvals", write, approvalHandler.SubmitApproval)

	// Approval rules (protegido, solo admin/supervisor)
	rules := protected.Group("/approval-rules", RequireRole(entity.RoleAdmin, entity.RoleSupervisor))
	rules.Post("/", approvalHandler.CreateRule)
	rules.Get("/", approvalHandler.ListRules)
	rules.Get("/:id", approvalHandler.GetRule)
	rules.Put("/:id", approvalHandler.UpdateRule)
	rules.Delete("/:id", approvalHandler.DeleteRule)
	rules.Post("/:id/restore", approvalHandler.RestoreRule)

	// Stock (protegido)
	stock := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.LedgerUC)
	stock.Post("/adjustments", write, stockHandler.Adjust)
	stock.Get("/on-hand", read, stockHandler.OnHand)
	stock.Get("/lots", read, stockHandler.ListLots)
	stock.Get("/entries", read, stockHandler.ListEntries)
	stock.Get("/reconciliation", read, stockHandler.Reconcile)

	// Branches (protegido)
	branches := protected.Group("/branches")
	branchHandler := NewBranchHandler(deps.BranchUC)
	branches.Post("/", write, branchHandler.Create)
	branches.Get("/", read, branchHandler.List)
	branches.Get("/:id", read, branchHandler.GetByID)
	branches.Post("/:id/members", write, branchHandler.AddMember)

	// Products (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", write, productHandler.Create)
	products.Get("/", read, productHandler.List)
	products.Get("/:id", read, productHandler.GetByID)
}
