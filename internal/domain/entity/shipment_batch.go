package entity

import "time"

// Tipos de lote de fulfillment: despacho parcial o recepción parcial.
const (
	BatchKindShipment = "SHIPMENT"
	BatchKindReceipt  = "RECEIPT"
)

// ShipmentBatch es un evento discreto de despacho o recepción sobre un
// subconjunto de líneas del traslado. BatchNumber es estrictamente creciente
// por traslado y tipo, empezando en 1.
type ShipmentBatch struct {
	ID          string
	TransferID  string
	TenantID    string
	BatchNumber int
	Kind        string
	OccurredAt  time.Time
	ActorUserID string
	Lines       []*BatchLine
}

// BatchLine cantidad movida de una línea del traslado en este batch.
// UnitCostMinorUnits es el costo promedio ponderado de los lotes consumidos
// al despachar; en la recepción se reutiliza para crear el lote destino
// (el costo viaja con la mercancía).
type BatchLine struct {
	ID                 string
	BatchID            string
	ItemID             string
	ProductID          string
	Qty                int64
	UnitCostMinorUnits int64
}
