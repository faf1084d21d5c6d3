package echoapi

import (
	"fmt"
	"net/http"
	"net/mail"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/logopedika/kabinet/core"
	"github.com/logopedika/kabinet/core/report"
)

type reportApi struct {
	svc      *report.Service
	validate *validator.Validate
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *report.Service, validate *validator.Validate) {
	api := reportApi{svc: svc, validate: validate}

	rg := g.Group("/reports", jwt)
	rg.GET("/schedule", api.schedule)
	rg.GET("/progress", api.progress)
	rg.POST("/schedule/email", api.emailSchedule)
	rg.POST("/progress/email", api.emailProgress)
}

func attachment(ctx echo.Context, filename, content string) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(content))
}

func atoiParam(raw, name string) (int, error) {
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, core.NewValidationError(
			errors.Errorf("invalid %s", name),
			core.FieldError{Field: name, Error: "must be an integer"},
		)
	}
	return val, nil
}

// yearMonth reads the year/month query params, defaulting to the current month.
func yearMonth(ctx echo.Context) (int, int, error) {
	now := time.Now()
	year, month := now.Year(), int(now.Month())

	var err error
	if raw := ctx.QueryParam("year"); raw != "" {
		if year, err = atoiParam(raw, "year"); err != nil {
			return 0, 0, err
		}
	}
	if raw := ctx.QueryParam("month"); raw != "" {
		if month, err = atoiParam(raw, "month"); err != nil {
			return 0, 0, err
		}
	}
	if month < 1 || month > 12 {
		return 0, 0, core.NewValidationError(
			errors.New("invalid month"),
			core.FieldError{Field: "month", Error: "must be between 1 and 12"},
		)
	}
	return year, month, nil
}

// Handlers

func (api *reportApi) schedule(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	content, err := api.svc.Schedule(ctx.Request().Context(), ownerID)
	if err != nil {
		return errors.Wrap(err, "rendering schedule report")
	}
	return attachment(ctx, report.ScheduleFilename, content)
}

func (api *reportApi) progress(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}
	year, month, err := yearMonth(ctx)
	if err != nil {
		return err
	}

	content, err := api.svc.Progress(ctx.Request().Context(), ownerID, year, month)
	if err != nil {
		return errors.Wrap(err, "rendering progress report")
	}
	return attachment(ctx, report.ProgressFilename, content)
}

func (api *reportApi) emailSchedule(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	var data EmailReportRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EmailReportRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	content, err := api.svc.Schedule(ctx.Request().Context(), ownerID)
	if err != nil {
		return errors.Wrap(err, "rendering schedule report")
	}
	if err := api.svc.Email(mail.Address{Address: data.To}, "Weekly schedule", report.ScheduleFilename, content); err != nil {
		return errors.Wrap(err, "emailing schedule report")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Report sent."})
}

func (api *reportApi) emailProgress(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}
	year, month, err := yearMonth(ctx)
	if err != nil {
		return err
	}

	var data EmailReportRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EmailReportRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	content, err := api.svc.Progress(ctx.Request().Context(), ownerID, year, month)
	if err != nil {
		return errors.Wrap(err, "rendering progress report")
	}
	subject := fmt.Sprintf("Progress report %d/%d", month, year)
	if err := api.svc.Email(mail.Address{Address: data.To}, subject, report.ProgressFilename, content); err != nil {
		return errors.Wrap(err, "emailing progress report")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Report sent."})
}

type EmailReportRequest struct {
	To string `json:"to" validate:"required,email"`
}

func (er *EmailReportRequest) Validate(validate *validator.Validate) error {
	er.To = core.CleanString(er.To, true /* lower */)
	return validate.Struct(er)
}
