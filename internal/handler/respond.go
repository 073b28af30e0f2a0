package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/absensi-karyawan/internal/middleware"
	"github.com/noah-isme/absensi-karyawan/internal/models"
	appErrors "github.com/noah-isme/absensi-karyawan/pkg/errors"
	"github.com/noah-isme/absensi-karyawan/pkg/response"
)

func respondWithWarnings(c *gin.Context, status int, data interface{}, warnings []models.DataQualityWarning) {
	middleware.AddWarnings(c, warnings)
	response.JSON(c, status, data, middleware.ExtractMeta(c))
}

func badRequest(c *gin.Context, err error, message string) {
	response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message))
}
