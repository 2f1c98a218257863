package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// Envelope respuesta estándar de la API: toda respuesta va envuelta.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody detalle de error dentro del envelope.
type ErrorBody struct {
	ErrorCode         string `json:"errorCode"`
	HTTPStatusCode    int    `json:"httpStatusCode"`
	UserFacingMessage string `json:"userFacingMessage"`
	DeveloperMessage  string `json:"developerMessage,omitempty"`
	CorrelationID     string `json:"correlationId"`
}
