package attachment

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ehr/intake/internal/platform/apperr"
)

// FormField is the multipart field every upload endpoint reads.
const FormField = "file"

// FormFile extracts the uploaded file from a multipart request.
func FormFile(c echo.Context) (*multipart.FileHeader, error) {
	fh, err := c.FormFile(FormField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, apperr.Invalid(FormField, apperr.ConstraintRequired, "multipart field %q is required", FormField)
		}
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return nil, he
		}
		return nil, apperr.Invalid(FormField, apperr.ConstraintFormat, "read multipart form: %v", err)
	}
	return fh, nil
}
