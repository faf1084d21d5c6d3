package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/logopedika/kabinet/core/progress"
)

type progressApi struct {
	svc      *progress.Service
	validate *validator.Validate
}

func registerProgressAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *progress.Service, validate *validator.Validate) {
	api := progressApi{svc: svc, validate: validate}

	pg := g.Group("/progress", jwt)
	pg.POST("/completed", api.setCompleted)
	pg.POST("/date", api.setDate)
	pg.POST("/time", api.setTime)
	pg.GET("/monthly/:year/:month", api.monthly)
}

// Handlers

func (api *progressApi) setCompleted(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	var data SetCompletedRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetCompletedRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	rec, err := api.svc.SetCompleted(ctx.Request().Context(), ownerID, data.StudentID, data.ActivityIndex, data.Completed)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *progressApi) setDate(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	var data SetDateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetDateRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	rec, err := api.svc.SetDate(ctx.Request().Context(), ownerID, data.StudentID, data.ActivityIndex, data.Date)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *progressApi) setTime(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	var data SetTimeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetTimeRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	rec, err := api.svc.SetTime(ctx.Request().Context(), ownerID, data.StudentID, data.ActivityIndex, data.Time)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *progressApi) monthly(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}
	year, err := intParam(ctx, "year")
	if err != nil {
		return err
	}
	month, err := intParam(ctx, "month")
	if err != nil {
		return err
	}

	summary, err := api.svc.MonthlySummary(ctx.Request().Context(), ownerID, year, month)
	if err != nil {
		return errors.Wrap(err, "loading monthly summary")
	}
	return ctx.JSON(http.StatusOK, summary)
}

type (
	SetCompletedRequest struct {
		StudentID     string `json:"student_id" validate:"required"`
		ActivityIndex int    `json:"activity_index" validate:"min=0"`
		Completed     bool   `json:"completed"`
	}

	SetDateRequest struct {
		StudentID     string `json:"student_id" validate:"required"`
		ActivityIndex int    `json:"activity_index" validate:"min=0"`
		Date          string `json:"date"`
	}

	SetTimeRequest struct {
		StudentID     string `json:"student_id" validate:"required"`
		ActivityIndex int    `json:"activity_index" validate:"min=0"`
		Time          string `json:"time"`
	}
)
