package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/logopedika/kabinet/core/schedule"
)

type scheduleApi struct {
	svc      *schedule.Service
	validate *validator.Validate
}

func registerScheduleAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *schedule.Service, validate *validator.Validate) {
	api := scheduleApi{svc: svc, validate: validate}

	sg := g.Group("/schedule", jwt)
	sg.GET("", api.grid)
	sg.DELETE("", api.clear)
	sg.GET("/:day/:slot", api.cell)
	sg.PUT("/:day/:slot", api.assign)
	sg.DELETE("/:day/:slot/students/:id", api.remove)
}

// Handlers

func (api *scheduleApi) grid(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	grid, err := api.svc.Grid(ctx.Request().Context(), ownerID)
	if err != nil {
		return errors.Wrap(err, "loading grid")
	}
	return ctx.JSON(http.StatusOK, grid)
}

func (api *scheduleApi) cell(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}
	slot, err := intParam(ctx, "slot")
	if err != nil {
		return err
	}

	ids, err := api.svc.Cell(ctx.Request().Context(), ownerID, schedule.Day(ctx.Param("day")), slot)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ids)
}

func (api *scheduleApi) assign(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}
	slot, err := intParam(ctx, "slot")
	if err != nil {
		return err
	}

	var data AssignRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignRequest")
	}

	ids, err := api.svc.Assign(ctx.Request().Context(), ownerID, schedule.Day(ctx.Param("day")), slot, data.StudentIDs)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ids)
}

func (api *scheduleApi) remove(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}
	slot, err := intParam(ctx, "slot")
	if err != nil {
		return err
	}

	if err := api.svc.Remove(ctx.Request().Context(), ownerID, schedule.Day(ctx.Param("day")), slot, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *scheduleApi) clear(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.ClearAll(ctx.Request().Context(), ownerID); err != nil {
		return errors.Wrap(err, "clearing schedule")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type AssignRequest struct {
	StudentIDs []string `json:"student_ids"`
}
