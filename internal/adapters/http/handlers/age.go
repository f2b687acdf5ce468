package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/age-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/age-service/internal/app"
)

// AgeHandler handles the age calculation endpoints.
type AgeHandler struct {
	service *app.AgeService
}

// NewAgeHandler creates a new age handler.
func NewAgeHandler(service *app.AgeService) *AgeHandler {
	return &AgeHandler{service: service}
}

// GetAge handles GET /api/v1/age with the dates in the query string.
func (h *AgeHandler) GetAge(c *gin.Context) {
	var q dto.AgeQuery
	if err := dto.BindQueryAndValidate(c, &q); err != nil {
		dto.HandleError(c, err)
		return
	}

	h.calculate(c, app.CalculateInput{
		Birth:     q.Birth(),
		Reference: q.Reference(),
		Strict:    q.Strict,
	})
}

// CalculateAge handles POST /api/v1/ages.
func (h *AgeHandler) CalculateAge(c *gin.Context) {
	var req dto.CalculateAgeRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	h.calculate(c, toInput(&req))
}

// CalculateBatch handles POST /api/v1/ages/batch. Item failures are
// reported inside the 200 response.
func (h *AgeHandler) CalculateBatch(c *gin.Context) {
	var req dto.BatchAgeRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	inputs := make([]app.CalculateInput, len(req.Items))
	for i := range req.Items {
		inputs[i] = toInput(&req.Items[i])
	}

	items, err := h.service.CalculateBatch(c.Request.Context(), inputs)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	resp := dto.BatchAgeResponse{Results: make([]dto.BatchAgeResult, len(items))}
	for i, item := range items {
		resp.Results[i] = dto.NewBatchAgeResult(item.Index, item.Calculation, item.Err)
	}

	c.JSON(http.StatusOK, resp)
}

// RegisterRoutes registers the age routes on rg. batch middleware runs
// only in front of the batch endpoint.
func (h *AgeHandler) RegisterRoutes(rg *gin.RouterGroup, batch ...gin.HandlerFunc) {
	rg.GET("/age", h.GetAge)
	rg.POST("/ages", h.CalculateAge)
	rg.POST("/ages/batch", append(batch, h.CalculateBatch)...)
}

func (h *AgeHandler) calculate(c *gin.Context, in app.CalculateInput) {
	calc, err := h.service.Calculate(c.Request.Context(), in)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAgeResponse(calc))
}

func toInput(req *dto.CalculateAgeRequest) app.CalculateInput {
	return app.CalculateInput{
		Birth:     req.BirthDate.ToDomain(),
		Reference: req.ReferenceDate.ToDomain(),
		Strict:    req.Strict,
	}
}
