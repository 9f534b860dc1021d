package echoapi

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/smpn3kaledupa/presensi-nilai/core"
	exportsvc "github.com/smpn3kaledupa/presensi-nilai/services/export"
)

func exportFormat(ctx echo.Context) (exportsvc.Format, error) {
	format, err := exportsvc.ParseFormat(ctx.QueryParam("format"))
	if err != nil {
		return "", core.NewValidationError(nil, core.FieldError{Field: "format", Error: err.Error()})
	}
	return format, nil
}

// sendExport renders the export in memory so a failure can still be reported as an error response.
func sendExport(ctx echo.Context, format exportsvc.Format, prefix string, write func(w io.Writer, now time.Time) error) error {
	now := time.Now()
	var buf bytes.Buffer
	if err := write(&buf, now); err != nil {
		return errors.Wrapf(err, "exporting %s", prefix)
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+format.Filename(prefix, now)+`"`)
	return ctx.Blob(http.StatusOK, format.ContentType(), buf.Bytes())
}
