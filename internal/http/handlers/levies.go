package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"jamii/internal/domain/models"
	"jamii/internal/http/middleware"
	"jamii/internal/repositories"
	"jamii/internal/services"
	"jamii/internal/utils"

	"github.com/gin-gonic/gin"
)

type createLevyRequest struct {
	UnitID      int64   `json:"unit_id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	DueDate     string  `json:"due_date"`
}

// POST /api/levies (officers only)
func CreateLevy(c *gin.Context) {
	var req createLevyRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.UnitID <= 0 {
		RespondError(c, http.StatusBadRequest, "unit_id is required", nil)
		return
	}
	if req.Amount <= 0 {
		RespondError(c, http.StatusBadRequest, "amount must be positive", nil)
		return
	}
	if _, err := utils.ParseDate(req.DueDate); err != nil {
		RespondError(c, http.StatusBadRequest, "due_date must be YYYY-MM-DD", err)
		return
	}

	rc := middleware.GetRequestContext(c)
	levy := models.Levy{
		CommunityID: rc.CommunityID,
		UnitID:      req.UnitID,
		Description: utils.NormalizeSpace(req.Description),
		Amount:      req.Amount,
		DueDate:     utils.TrimOrEmpty(req.DueDate),
	}
	if err := (repositories.LevyRepository{}).Create(&levy); err != nil {
		RespondDomainError(c, err)
		return
	}

	utils.LogEvent(middleware.GetRequestID(c), "levy", "create",
		fmt.Sprintf("levy_id=%d unit_id=%d", levy.ID, levy.UnitID))
	c.JSON(http.StatusCreated, gin.H{"levy": levy})
}

// GET /api/levies
func ListLevies(c *gin.Context) {
	rc := middleware.GetRequestContext(c)
	levies, err := repositories.LevyRepository{}.ListForResident(rc)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"levies": levies})
}

// GET /api/levies/:id
func GetLevy(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "invalid levy id", err)
		return
	}

	rc := middleware.GetRequestContext(c)
	levy, err := repositories.LevyRepository{}.GetForResident(id, rc)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"levy": levy})
}

// GET /api/levies/:id/receipt
func GetLevyReceipt(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "invalid levy id", err)
		return
	}

	rc := middleware.GetRequestContext(c)
	svc := services.ReceiptService{
		LevyRepo:  repositories.LevyRepository{},
		RequestID: middleware.GetRequestID(c),
	}

	pdf, filename, err := svc.GenerateReceipt(id, rc)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
