package dto

// BulkOperationRequest body para POST /api/documents/bulk: contabilizar o
// descontabilizar un lote de documentos del mismo tipo.
type BulkOperationRequest struct {
	Action       string  `json:"action" validate:"required,oneof=post unpost"`
	DocumentType string  `json:"document_type" validate:"required"`
	IDs          []int64 `json:"ids" validate:"required,min=1,dive,gt=0"`
	Strict       bool    `json:"strict"`
}

// BulkOperationResponse resultado agregado del lote. errors conserva el orden
// de los ids enviados; la falla de un documento nunca aborta el resto.
type BulkOperationResponse struct {
	OperationID string   `json:"operation_id"`
	Processed   int      `json:"processed"`
	Errors      []string `json:"errors,omitempty"`
}
