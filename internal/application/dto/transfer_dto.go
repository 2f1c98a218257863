package dto

import "time"

// CreateTransferRequest entrada para crear un traslado.
type CreateTransferRequest struct {
	SourceBranchID      string                      `json:"source_branch_id" validate:"required"`
	DestinationBranchID string                      `json:"destination_branch_id" validate:"required"`
	Priority            string                      `json:"priority,omitempty"` // default NORMAL
	Items               []CreateTransferItemRequest `json:"items" validate:"required,min=1"`
}

// CreateTransferItemRequest línea solicitada.
type CreateTransferItemRequest struct {
	ProductID    string `json:"product_id" validate:"required"`
	QtyRequested int64  `json:"qty_requested" validate:"required,gt=0"`
}

// ApproveTransferRequest entrada para aprobar. Overrides permite aprobar menos
// de lo solicitado por línea (item_id -> cantidad); ausencia = aprobar todo.
type ApproveTransferRequest struct {
	EntityVersion int64            `json:"entity_version"`
	Overrides     map[string]int64 `json:"overrides,omitempty"`
}

// RejectTransferRequest entrada para rechazar.
type RejectTransferRequest struct {
	EntityVersion int64  `json:"entity_version"`
	Reason        string `json:"reason"`
}

// CancelTransferRequest entrada para cancelar.
type CancelTransferRequest struct {
	EntityVersion int64 `json:"entity_version"`
}

// UpdatePriorityRequest entrada para cambiar la prioridad.
type UpdatePriorityRequest struct {
	EntityVersion int64  `json:"entity_version"`
	Priority      string `json:"priority" validate:"required"`
}

// ShipTransferRequest entrada para despachar. Lines omitido = despacho total
// del remanente aprobado por línea.
type ShipTransferRequest struct {
	EntityVersion  int64              `json:"entity_version"`
	IdempotencyKey string             `json:"idempotency_key,omitempty"`
	Lines          []BatchLineRequest `json:"lines,omitempty"`
}

// ReceiveTransferRequest entrada para recibir. Lines omitido = recepción total
// del remanente despachado por línea.
type ReceiveTransferRequest struct {
	EntityVersion  int64              `json:"entity_version"`
	IdempotencyKey string             `json:"idempotency_key,omitempty"`
	Lines          []BatchLineRequest `json:"lines,omitempty"`
}

// BatchLineRequest cantidad a mover de una línea del traslado.
type BatchLineRequest struct {
	ItemID string `json:"item_id" validate:"required"`
	Qty    int64  `json:"qty" validate:"required,gt=0"`
}

// ListTransfersRequest filtros del listado.
type ListTransfersRequest struct {
	Status              string `query:"status"`
	Priority            string `query:"priority"`
	SourceBranchID      string `query:"source_branch_id"`
	DestinationBranchID string `query:"destination_branch_id"`
	PageRequest
}

// TransferItemResponse línea del traslado en respuestas.
type TransferItemResponse struct {
	ID           string `json:"id"`
	ProductID    string `json:"product_id"`
	QtyRequested int64  `json:"qty_requested"`
	QtyApproved  *int64 `json:"qty_approved,omitempty"`
	QtyShipped   int64  `json:"qty_shipped"`
	QtyReceived  int64  `json:"qty_received"`
}

// TransferResponse salida de un traslado.
type TransferResponse struct {
	ID                  string                 `json:"id"`
	TransferNumber      string                 `json:"transfer_number"`
	SourceBranchID      string                 `json:"source_branch_id"`
	DestinationBranchID string                 `json:"destination_branch_id"`
	Status              string                 `json:"status"`
	Priority            string                 `json:"priority"`
	RequestedByUserID   string                 `json:"requested_by_user_id"`
	RequestedAt         time.Time              `json:"requested_at"`
	ReviewedAt          *time.Time             `json:"reviewed_at,omitempty"`
	ShippedAt           *time.Time             `json:"shipped_at,omitempty"`
	CompletedAt         *time.Time             `json:"completed_at,omitempty"`
	RejectionReason     string                 `json:"rejection_reason,omitempty"`
	MatchedRuleID       string                 `json:"matched_rule_id,omitempty"`
	EntityVersion       int64                  `json:"entity_version"`
	Items               []TransferItemResponse `json:"items"`
}

// TransferListResponse lista paginada de traslados.
type TransferListResponse struct {
	Items []TransferResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// BatchLineResponse línea de un batch en respuestas.
type BatchLineResponse struct {
	ItemID             string `json:"item_id"`
	ProductID          string `json:"product_id"`
	Qty                int64  `json:"qty"`
	UnitCostMinorUnits int64  `json:"unit_cost_minor_units"`
}

// BatchResponse batch de despacho o recepción.
type BatchResponse struct {
	ID          string              `json:"id"`
	TransferID  string              `json:"transfer_id"`
	BatchNumber int                 `json:"batch_number"`
	Kind        string              `json:"kind"`
	OccurredAt  time.Time           `json:"occurred_at"`
	ActorUserID string              `json:"actor_user_id"`
	Lines       []BatchLineResponse `json:"lines"`
}

// ShipReceiveResponse resultado de un despacho/recepción: batch creado (o
// previamente creado, si la llave de idempotencia ya estaba registrada) y
// estado resultante del traslado.
type ShipReceiveResponse struct {
	Batch    *BatchResponse   `json:"batch,omitempty"`
	BatchID  string           `json:"batch_id"`
	Replayed bool             `json:"replayed"`
	Transfer TransferResponse `json:"transfer"`
}
