package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-ventas/internal/application/dto"
	"github.com/jhoicas/inventario-ventas/internal/application/inventory"
	"github.com/jhoicas/inventario-ventas/internal/domain/entity"
)

// MovementHandler registra y consulta el kardex (protegido).
type MovementHandler struct {
	ledger *inventory.Ledger
	log    zerolog.Logger
}

// NewMovementHandler construye el handler.
func NewMovementHandler(ledger *inventory.Ledger, log zerolog.Logger) *MovementHandler {
	return &MovementHandler{ledger: ledger, log: log}
}

func movementInput(c *fiber.Ctx, productID string, qty int64, reason, reference string, at *time.Time) inventory.MovementInput {
	in := inventory.MovementInput{
		ProductID: productID,
		Quantity:  qty,
		Reason:    reason,
		Actor:     GetUserID(c),
		Reference: reference,
	}
	if at != nil {
		in.OccurredAt = *at
	}
	return in
}

func (h *MovementHandler) created(c *fiber.Ctx, m *entity.Movement, err error) error {
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(m))
}

// Inbound godoc
// @Summary      Registrar entrada
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "Deduplica reintentos"
// @Param        body  body  dto.MovementRequest  true  "product_id, warehouse_id, quantity"
// @Success      201  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/movements/inbound [post]
func (h *MovementHandler) Inbound(c *fiber.Ctx) error {
	var in dto.MovementRequest
	if !bindJSON(c, &in) {
		return nil
	}
	m, err := h.ledger.RecordInbound(c.UserContext(), in.WarehouseID,
		movementInput(c, in.ProductID, in.Quantity, in.Reason, in.Reference, in.OccurredAt))
	return h.created(c, m, err)
}

// Outbound godoc
// @Summary      Registrar salida
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "Deduplica reintentos"
// @Param        body  body  dto.MovementRequest  true  "product_id, warehouse_id, quantity"
// @Success      201  {object}  dto.MovementResponse
// @Failure      409  {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK"
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/movements/outbound [post]
func (h *MovementHandler) Outbound(c *fiber.Ctx) error {
	var in dto.MovementRequest
	if !bindJSON(c, &in) {
		return nil
	}
	m, err := h.ledger.RecordOutbound(c.UserContext(), in.WarehouseID,
		movementInput(c, in.ProductID, in.Quantity, in.Reason, in.Reference, in.OccurredAt))
	return h.created(c, m, err)
}

// Transfer godoc
// @Summary      Registrar traslado entre bodegas
// @Description  Atómico: si el origen no alcanza ninguna bodega cambia.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "Deduplica reintentos"
// @Param        body  body  dto.TransferRequest  true  "product_id, origin_warehouse_id, dest_warehouse_id, quantity"
// @Success      201  {object}  dto.MovementResponse
// @Failure      409  {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK"
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/movements/transfer [post]
func (h *MovementHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if !bindJSON(c, &in) {
		return nil
	}
	m, err := h.ledger.RecordTransfer(c.UserContext(), in.OriginWarehouseID, in.DestWarehouseID,
		movementInput(c, in.ProductID, in.Quantity, in.Reason, in.Reference, in.OccurredAt))
	return h.created(c, m, err)
}

// Adjustment godoc
// @Summary      Registrar ajuste de inventario
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "Deduplica reintentos"
// @Param        body  body  dto.AdjustmentRequest  true  "direction INCREASE|DECREASE, quantity, reason"
// @Success      201  {object}  dto.MovementResponse
// @Failure      409  {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK"
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/movements/adjustment [post]
func (h *MovementHandler) Adjustment(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if !bindJSON(c, &in) {
		return nil
	}
	m, err := h.ledger.RecordAdjustment(c.UserContext(), in.WarehouseID, inventory.AdjustmentDirection(in.Direction),
		movementInput(c, in.ProductID, in.Quantity, in.Reason, in.Reference, in.OccurredAt))
	return h.created(c, m, err)
}

// GetByID godoc
// @Summary      Obtener movimiento
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [get]
func (h *MovementHandler) GetByID(c *fiber.Ctx) error {
	m, err := h.ledger.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toMovementResponse(m))
}

func (h *MovementHandler) listQuery(c *fiber.Ctx) (inventory.ListQuery, bool) {
	var q dto.MovementQuery
	if !bindQuery(c, &q) {
		return inventory.ListQuery{}, false
	}
	from, err := parseDate(q.From, false)
	if err != nil {
		_ = writeError(c, h.log, err)
		return inventory.ListQuery{}, false
	}
	to, err := parseDate(q.To, true)
	if err != nil {
		_ = writeError(c, h.log, err)
		return inventory.ListQuery{}, false
	}
	if q.Limit <= 0 {
		q.Limit = 50
	}
	return inventory.ListQuery{From: from, To: to, Limit: q.Limit, Offset: q.Offset}, true
}

func (h *MovementHandler) list(c *fiber.Ctx, q inventory.ListQuery, items []*entity.Movement, err error) error {
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.MovementListResponse{
		Items: toMovementList(items),
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset},
	})
}

// ByProduct godoc
// @Summary      Kardex de un producto
// @Description  Del más reciente al más antiguo.
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        product_id  path   string  true   "ID del producto"
// @Param        from        query  string  false  "Desde (RFC3339 o yyyy-MM-dd)"
// @Param        to          query  string  false  "Hasta (RFC3339 o yyyy-MM-dd)"
// @Param        limit       query  int     false  "Límite"  default(50)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/movements/product/{product_id} [get]
func (h *MovementHandler) ByProduct(c *fiber.Ctx) error {
	q, ok := h.listQuery(c)
	if !ok {
		return nil
	}
	items, err := h.ledger.ListByProduct(c.UserContext(), c.Params("product_id"), q)
	return h.list(c, q, items, err)
}

// ByWarehouse godoc
// @Summary      Movimientos de una bodega (como origen o destino)
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  path   string  true   "ID de la bodega"
// @Param        from          query  string  false  "Desde"
// @Param        to            query  string  false  "Hasta"
// @Param        limit         query  int     false  "Límite"  default(50)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/movements/warehouse/{warehouse_id} [get]
func (h *MovementHandler) ByWarehouse(c *fiber.Ctx) error {
	q, ok := h.listQuery(c)
	if !ok {
		return nil
	}
	items, err := h.ledger.ListByWarehouse(c.UserContext(), c.Params("warehouse_id"), q)
	return h.list(c, q, items, err)
}

// ByType godoc
// @Summary      Movimientos por tipo
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        type    path   string  true   "INBOUND | OUTBOUND | TRANSFER | ADJUSTMENT"
// @Param        from    query  string  false  "Desde"
// @Param        to      query  string  false  "Hasta"
// @Param        limit   query  int     false  "Límite"  default(50)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.MovementListResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/movements/type/{type} [get]
func (h *MovementHandler) ByType(c *fiber.Ctx) error {
	q, ok := h.listQuery(c)
	if !ok {
		return nil
	}
	items, err := h.ledger.ListByType(c.UserContext(), entity.MovementType(c.Params("type")), q)
	return h.list(c, q, items, err)
}

// ByReference godoc
// @Summary      Movimientos ligados a un documento (p. ej. una venta)
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        reference  path  string  true  "Referencia"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/movements/reference/{reference} [get]
func (h *MovementHandler) ByReference(c *fiber.Ctx) error {
	items, err := h.ledger.ListByReference(c.UserContext(), c.Params("reference"))
	return h.list(c, inventory.ListQuery{}, items, err)
}
