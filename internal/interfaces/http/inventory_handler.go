package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-ventas/internal/application/dto"
	"github.com/jhoicas/inventario-ventas/internal/application/inventory"
)

// InventoryHandler consultas de stock por bodega y ciclo de vida de ubicaciones (protegido).
type InventoryHandler struct {
	svc    *inventory.Service
	ledger *inventory.Ledger
	log    zerolog.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(svc *inventory.Service, ledger *inventory.Ledger, log zerolog.Logger) *InventoryHandler {
	return &InventoryHandler{svc: svc, ledger: ledger, log: log}
}

// ProductStock godoc
// @Summary      Stock total del producto y desglose por bodega
// @Description  El total suma solo las ubicaciones activas.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductStockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{product_id} [get]
func (h *InventoryHandler) ProductStock(c *fiber.Ctx) error {
	productID := c.Params("product_id")
	ctx := c.UserContext()
	total, err := h.svc.TotalStock(ctx, productID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	locs, err := h.svc.ListLocations(ctx, productID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ProductStockResponse{ProductID: productID, Total: total, Locations: toLocationList(locs)})
}

// LocationStock godoc
// @Summary      Stock de un producto en una bodega
// @Description  Devuelve 0 si el producto nunca tuvo stock en la bodega.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id    path  string  true  "ID del producto"
// @Param        warehouse_id  path  string  true  "ID de la bodega"
// @Success      200  {object}  dto.StockResponse
// @Router       /api/stock/{product_id}/{warehouse_id} [get]
func (h *InventoryHandler) LocationStock(c *fiber.Ctx) error {
	productID, warehouseID := c.Params("product_id"), c.Params("warehouse_id")
	stock, err := h.svc.GetStock(c.UserContext(), productID, warehouseID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.StockResponse{ProductID: productID, WarehouseID: warehouseID, Stock: stock})
}

// BelowMinimum godoc
// @Summary      Ubicaciones por debajo del mínimo
// @Description  Usa el mínimo propio de la ubicación o, si no tiene, el del producto.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id  path  string  true  "ID del producto"
// @Success      200  {array}   dto.StockLocationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{product_id}/below-minimum [get]
func (h *InventoryHandler) BelowMinimum(c *fiber.Ctx) error {
	locs, err := h.svc.BelowMinimum(c.UserContext(), c.Params("product_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toLocationList(locs))
}

// Reconcile godoc
// @Summary      Comparar stock guardado con el kardex
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.ReconcileResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{product_id}/reconcile [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	productID := c.Params("product_id")
	diffs, err := h.ledger.Reconcile(c.UserContext(), productID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ReconcileResponse{ProductID: productID, Consistent: len(diffs) == 0, Discrepancies: toDiscrepancies(diffs)})
}

// SetActive godoc
// @Summary      Activar o desactivar una ubicación
// @Description  Una ubicación inactiva no cuenta en el stock total ni admite movimientos.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        product_id    path  string  true  "ID del producto"
// @Param        warehouse_id  path  string  true  "ID de la bodega"
// @Param        body  body  dto.SetLocationActiveRequest  true  "active"
// @Success      200  {object}  dto.StockLocationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{product_id}/{warehouse_id}/active [patch]
func (h *InventoryHandler) SetActive(c *fiber.Ctx) error {
	var in dto.SetLocationActiveRequest
	if !bindJSON(c, &in) {
		return nil
	}
	loc, err := h.svc.SetLocationActive(c.UserContext(), c.Params("product_id"), c.Params("warehouse_id"), *in.Active)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toLocationResponse(loc))
}

// SetMinStock godoc
// @Summary      Fijar el mínimo propio de una ubicación
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        product_id    path  string  true  "ID del producto"
// @Param        warehouse_id  path  string  true  "ID de la bodega"
// @Param        body  body  dto.SetLocationMinStockRequest  true  "min_stock (null lo quita)"
// @Success      200  {object}  dto.StockLocationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{product_id}/{warehouse_id}/min-stock [patch]
func (h *InventoryHandler) SetMinStock(c *fiber.Ctx) error {
	var in dto.SetLocationMinStockRequest
	if !bindJSON(c, &in) {
		return nil
	}
	loc, err := h.svc.SetLocationMinStock(c.UserContext(), c.Params("product_id"), c.Params("warehouse_id"), in.MinStock)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toLocationResponse(loc))
}
