package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-ventas/internal/application/dto"
	"github.com/jhoicas/inventario-ventas/internal/application/sales"
	"github.com/jhoicas/inventario-ventas/internal/domain/entity"
	"github.com/jhoicas/inventario-ventas/internal/domain/repository"
)

// SalesHandler ciclo de vida de ventas, abonos y comprobante PDF (protegido).
type SalesHandler struct {
	engine  *sales.Engine
	receipt *sales.ReceiptUseCase
	log     zerolog.Logger
}

// NewSalesHandler construye el handler.
func NewSalesHandler(engine *sales.Engine, receipt *sales.ReceiptUseCase, log zerolog.Logger) *SalesHandler {
	return &SalesHandler{engine: engine, receipt: receipt, log: log}
}

// Create godoc
// @Summary      Crear venta en borrador
// @Description  No toca el stock. Los pagos iniciales quedan registrados y se validan al finalizar.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "Deduplica reintentos"
// @Param        body  body  dto.CreateSaleRequest  true  "Cabecera, líneas y pagos"
// @Success      201  {object}  dto.SaleResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SalesHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if !bindJSON(c, &in) {
		return nil
	}
	order := sales.CreateOrderInput{
		CustomerID:   in.CustomerID,
		Currency:     in.Currency,
		PaymentTerms: entity.PaymentTerms(in.PaymentTerms),
		Installments: in.Installments,
		WarehouseID:  in.WarehouseID,
		Lines:        toLineInputs(in.Lines),
		Actor:        GetUserID(c),
	}
	if in.Date != nil {
		order.Date = *in.Date
	}
	if in.ExchangeRate != nil {
		order.ExchangeRate = *in.ExchangeRate
	}
	for _, p := range in.Payments {
		order.Payments = append(order.Payments, toPaymentInput(p))
	}
	sale, err := h.engine.CreateOrder(c.UserContext(), order)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toSaleResponse(sale))
}

// List godoc
// @Summary      Listar ventas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        status       query  string  false  "DRAFT | PENDING_PAYMENT | COMPLETED | CANCELLED"
// @Param        customer_id  query  string  false  "Cliente"
// @Param        from         query  string  false  "Desde (RFC3339 o yyyy-MM-dd)"
// @Param        to           query  string  false  "Hasta (RFC3339 o yyyy-MM-dd)"
// @Param        limit        query  int     false  "Límite"  default(20)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.SaleListResponse
// @Router       /api/sales [get]
func (h *SalesHandler) List(c *fiber.Ctx) error {
	var q dto.SaleQuery
	if !bindQuery(c, &q) {
		return nil
	}
	from, err := parseDate(q.From, false)
	if err != nil {
		return writeError(c, h.log, err)
	}
	to, err := parseDate(q.To, true)
	if err != nil {
		return writeError(c, h.log, err)
	}
	page := dto.PageRequest{Limit: q.Limit, Offset: q.Offset}
	page.DefaultPage()
	list, err := h.engine.ListOrders(c.UserContext(), repository.SaleFilter{
		Status:     entity.SaleStatus(q.Status),
		CustomerID: q.CustomerID,
		From:       from,
		To:         to,
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	items := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toSaleResponse(s))
	}
	return c.JSON(dto.SaleListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}})
}

// GetByID godoc
// @Summary      Obtener venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SalesHandler) GetByID(c *fiber.Ctx) error {
	sale, err := h.engine.GetOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toSaleResponse(sale))
}

// ReplaceLines godoc
// @Summary      Reemplazar las líneas de un borrador
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID de la venta"
// @Param        body  body  dto.ReplaceLinesRequest  true  "Líneas nuevas"
// @Success      200  {object}  dto.SaleResponse
// @Failure      409  {object}  dto.ErrorResponse  "INVALID_STATE"
// @Router       /api/sales/{id}/lines [put]
func (h *SalesHandler) ReplaceLines(c *fiber.Ctx) error {
	var in dto.ReplaceLinesRequest
	if !bindJSON(c, &in) {
		return nil
	}
	sale, err := h.engine.ReplaceDraftLines(c.UserContext(), c.Params("id"), toLineInputs(in.Lines))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toSaleResponse(sale))
}

// Finalize godoc
// @Summary      Finalizar venta
// @Description  Descuenta el stock de cada línea. De contado exige el pago completo; a crédito queda pendiente.
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "Deduplica reintentos"
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      409  {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK | INVALID_STATE"
// @Failure      422  {object}  dto.ErrorResponse  "INCOMPLETE_PAYMENT"
// @Router       /api/sales/{id}/finalize [post]
func (h *SalesHandler) Finalize(c *fiber.Ctx) error {
	sale, err := h.engine.FinalizeOrder(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toSaleResponse(sale))
}

// Cancel godoc
// @Summary      Anular venta
// @Description  Un borrador se elimina. Una venta finalizada devuelve su stock y queda CANCELLED.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "Deduplica reintentos"
// @Param        id    path  string                 true   "ID de la venta"
// @Param        body  body  dto.CancelSaleRequest  false  "Motivo"
// @Success      200  {object}  dto.CancelSaleResponse
// @Failure      409  {object}  dto.ErrorResponse  "INVALID_STATE"
// @Router       /api/sales/{id}/cancel [post]
func (h *SalesHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelSaleRequest
	if len(c.Body()) > 0 && !bindJSON(c, &in) {
		return nil
	}
	res, err := h.engine.CancelOrder(c.UserContext(), c.Params("id"), GetUserID(c), in.Reason)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.CancelSaleResponse{Deleted: res.Deleted}
	if res.Sale != nil {
		out.Sale = toSaleResponse(res.Sale)
	}
	if len(res.Movements) > 0 {
		out.Movements = toMovementList(res.Movements)
	}
	return c.JSON(out)
}

// AddPayment godoc
// @Summary      Registrar abono
// @Description  Solo para ventas PENDING_PAYMENT. Al cubrir el total pasa a COMPLETED.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "Deduplica reintentos"
// @Param        id    path  string              true  "ID de la venta"
// @Param        body  body  dto.PaymentRequest  true  "Pago"
// @Success      201  {object}  dto.SaleResponse
// @Failure      409  {object}  dto.ErrorResponse  "INVALID_STATE"
// @Router       /api/sales/{id}/payments [post]
func (h *SalesHandler) AddPayment(c *fiber.Ctx) error {
	var in dto.PaymentRequest
	if !bindJSON(c, &in) {
		return nil
	}
	sale, err := h.engine.RegisterAmortization(c.UserContext(), c.Params("id"), toPaymentInput(in), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toSaleResponse(sale))
}

// Recompute godoc
// @Summary      Recalcular saldo desde los pagos
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      409  {object}  dto.ErrorResponse  "INVALID_STATE"
// @Router       /api/sales/{id}/recompute [post]
func (h *SalesHandler) Recompute(c *fiber.Ctx) error {
	sale, err := h.engine.RecomputeBalance(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toSaleResponse(sale))
}

// Receipt godoc
// @Summary      Descargar comprobante PDF
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/receipt [get]
func (h *SalesHandler) Receipt(c *fiber.Ctx) error {
	pdf, filename, err := h.receipt.Download(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(pdf)
}
