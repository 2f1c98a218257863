package entity

// TransferItem es una línea de un traslado.
// Invariantes: QtyApproved <= QtyRequested (una vez fijada);
// QtyShipped <= QtyApproved; QtyReceived <= QtyShipped.
// QtyShipped y QtyReceived solo crecen; QtyApproved se fija una única vez al aprobar.
type TransferItem struct {
	ID           string
	TransferID   string
	ProductID    string
	QtyRequested int64
	QtyApproved  *int64 // nil hasta la aprobación
	QtyShipped   int64
	QtyReceived  int64
}

// Approved devuelve la cantidad aprobada (0 si aún no se aprueba).
func (i *TransferItem) Approved() int64 {
	if i.QtyApproved == nil {
		return 0
	}
	return *i.QtyApproved
}

// RemainingToShip cantidad pendiente de despacho.
func (i *TransferItem) RemainingToShip() int64 {
	return i.Approved() - i.QtyShipped
}

// RemainingToReceive cantidad despachada aún no recibida.
func (i *TransferItem) RemainingToReceive() int64 {
	return i.QtyShipped - i.QtyReceived
}

// FullyShipped indica si la línea ya despachó todo lo aprobado.
func (i *TransferItem) FullyShipped() bool {
	return i.QtyApproved != nil && i.QtyShipped == *i.QtyApproved
}

// FullyReceived indica si la línea ya recibió todo lo despachado.
func (i *TransferItem) FullyReceived() bool {
	return i.QtyReceived == i.QtyShipped
}
