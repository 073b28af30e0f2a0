package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/absensi-karyawan/internal/models"
	appErrors "github.com/noah-isme/absensi-karyawan/pkg/errors"
)

// withAttendanceRules registers the attendance_status and calendar_day tags.
func withAttendanceRules(validate *validator.Validate) *validator.Validate {
	if validate == nil {
		validate = validator.New()
	}
	_ = validate.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		return models.NormalizeStatus(fl.Field().String()).Valid()
	})
	_ = validate.RegisterValidation("calendar_day", func(fl validator.FieldLevel) bool {
		_, err := models.ParseDay(fl.Field().String())
		return err == nil
	})
	return validate
}

// invalidPayload converts validator output into a VALIDATION_ERROR naming the
// offending fields.
func invalidPayload(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload: "+strings.Join(parts, "; "))
}
