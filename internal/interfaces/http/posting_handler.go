package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jsalazar/obracontrol-api/internal/application/dto"
	appregister "github.com/jsalazar/obracontrol-api/internal/application/register"
	"github.com/jsalazar/obracontrol-api/internal/domain/repository"
)

// PostingHandler maneja contabilizar, descontabilizar, operaciones masivas y la
// inspección de movimientos por documento.
type PostingHandler struct {
	poster        *appregister.Poster
	bulk          *appregister.BulkRunner
	registry      *appregister.HandlerRegistry
	movements     repository.RegisterMovementRepository
	validate      *Validator
	strictDefault bool
}

// NewPostingHandler construye el handler. movements va atado al pool (la
// inspección es de solo lectura, fuera de toda transacción).
func NewPostingHandler(
	poster *appregister.Poster,
	bulk *appregister.BulkRunner,
	registry *appregister.HandlerRegistry,
	movements repository.RegisterMovementRepository,
	validate *Validator,
	strictDefault bool,
) *PostingHandler {
	return &PostingHandler{
		poster:        poster,
		bulk:          bulk,
		registry:      registry,
		movements:     movements,
		validate:      validate,
		strictDefault: strictDefault,
	}
}

// Post godoc
// @Summary      Contabilizar documento
// @Description  Construye el juego de movimientos del documento y reemplaza de forma atómica cualquier juego anterior. Re-contabilizar es idempotente. El body es opcional; strict nulo usa el valor por defecto del servidor.
// @Tags         posting
// @Accept       json
// @Produce      json
// @Param        type  path  string  true  "Tipo de documento (estimate, daily_report, timesheet)"
// @Param        id    path  int     true  "ID del documento"
// @Param        body  body  dto.PostRequest  false  "Opciones de contabilización"
// @Success      200   {object}  dto.PostResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/documents/{type}/{id}/post [post]
func (h *PostingHandler) Post(c *fiber.Ctx) error {
	docType := c.Params("type")
	if _, ok := h.registry.Get(docType); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "UNKNOWN_DOCUMENT_TYPE", Message: "tipo de documento desconocido"})
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id debe ser un entero positivo"})
	}
	strict := h.strictDefault
	if len(c.Body()) > 0 {
		var in dto.PostRequest
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
		if in.Strict != nil {
			strict = *in.Strict
		}
	}
	res, err := h.poster.Post(c.Context(), docType, int64(id), appregister.PostOptions{Strict: strict})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.PostResponse{
		Movements: res.Movements,
		PostedAt:  res.PostedAt,
		Conflicts: toConflictResponses(res.Conflicts),
	})
}

// Unpost godoc
// @Summary      Descontabilizar documento
// @Description  Borra todos los movimientos del documento y limpia su estado de contabilización. Sobre un documento ya descontabilizado es éxito sin efecto.
// @Tags         posting
// @Produce      json
// @Param        type  path  string  true  "Tipo de documento"
// @Param        id    path  int     true  "ID del documento"
// @Success      200   {object}  dto.UnpostResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/documents/{type}/{id}/unpost [post]
func (h *PostingHandler) Unpost(c *fiber.Ctx) error {
	docType := c.Params("type")
	if _, ok := h.registry.Get(docType); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "UNKNOWN_DOCUMENT_TYPE", Message: "tipo de documento desconocido"})
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id debe ser un entero positivo"})
	}
	res, err := h.poster.Unpost(c.Context(), docType, int64(id))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.UnpostResponse{Removed: res.Removed, NoOp: res.NoOp})
}

// Movements godoc
// @Summary      Movimientos de un documento
// @Description  Lista los movimientos vigentes del documento en todos los registros, ordenados por registro y línea. Documento descontabilizado devuelve lista vacía.
// @Tags         posting
// @Produce      json
// @Param        type  path  string  true  "Tipo de documento"
// @Param        id    path  int     true  "ID del documento"
// @Success      200   {object}  dto.MovementListResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/documents/{type}/{id}/movements [get]
func (h *PostingHandler) Movements(c *fiber.Ctx) error {
	docType := c.Params("type")
	if _, ok := h.registry.Get(docType); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "UNKNOWN_DOCUMENT_TYPE", Message: "tipo de documento desconocido"})
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id debe ser un entero positivo"})
	}
	movements, err := h.movements.QueryByRecorder(c.Context(), docType, int64(id))
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		items = append(items, dto.MovementResponse{
			RegisterName:    m.RegisterName,
			RecorderType:    m.RecorderType,
			RecorderID:      m.RecorderID,
			LineNumber:      m.LineNumber,
			Period:          m.Period.Format("2006-01-02"),
			ObjectID:        m.ObjectID,
			EstimateID:      m.EstimateID,
			WorkID:          m.WorkID,
			EmployeeID:      m.EmployeeID,
			QuantityIncome:  m.QuantityIncome,
			QuantityExpense: m.QuantityExpense,
			SumIncome:       m.SumIncome,
			SumExpense:      m.SumExpense,
			CreatedAt:       m.CreatedAt,
		})
	}
	return c.JSON(dto.MovementListResponse{RecorderType: docType, RecorderID: int64(id), Items: items})
}

// Bulk godoc
// @Summary      Operación masiva
// @Description  Contabiliza o descontabiliza un lote de documentos del mismo tipo. Cada documento corre en su propia transacción; la falla de uno no aborta el resto.
// @Tags         posting
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkOperationRequest  true  "Acción, tipo e IDs"
// @Success      200   {object}  dto.BulkOperationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/documents/bulk [post]
func (h *PostingHandler) Bulk(c *fiber.Ctx) error {
	var in dto.BulkOperationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if msg, ok := h.validate.Check(in); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: msg})
	}
	res, err := h.bulk.Execute(c.Context(), appregister.BulkRequest{
		Action:  in.Action,
		DocType: in.DocumentType,
		IDs:     in.IDs,
		Strict:  in.Strict,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.BulkOperationResponse{
		OperationID: res.OperationID,
		Processed:   res.Processed,
		Errors:      res.Errors,
	})
}

// toConflictResponses proyecta los conflictos del detector al DTO de la API.
func toConflictResponses(conflicts []appregister.Conflict) []dto.ConflictResponse {
	if len(conflicts) == 0 {
		return nil
	}
	out := make([]dto.ConflictResponse, 0, len(conflicts))
	for _, cf := range conflicts {
		out = append(out, dto.ConflictResponse{
			RegisterName:         cf.Candidate.RegisterName,
			LineNumber:           cf.Candidate.LineNumber,
			Period:               cf.Candidate.Period.Format("2006-01-02"),
			ExistingDocumentType: cf.Existing.RecorderType,
			ExistingDocumentID:   cf.Existing.RecorderID,
			ExistingLineNumber:   cf.Existing.LineNumber,
		})
	}
	return out
}
