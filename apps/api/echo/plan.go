package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/logopedika/kabinet/core"
	"github.com/logopedika/kabinet/core/plan"
	sheetsvc "github.com/logopedika/kabinet/services/spreadsheet"
)

type planApi struct {
	svc      *plan.Service
	validate *validator.Validate
}

func registerPlanAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *plan.Service, validate *validator.Validate) {
	api := planApi{svc: svc, validate: validate}

	pg := g.Group("/plans", jwt)
	pg.GET("", api.queryAll)
	pg.GET("/:planType", api.query)
	pg.POST("/:planType", api.add)
	pg.PUT("/:planType", api.replace)
	pg.DELETE("/:planType", api.clear)
	pg.DELETE("/:planType/activities/:index", api.destroyActivity)
	pg.POST("/:planType/import", api.importSheet)
}

func intParam(ctx echo.Context, name string) (int, error) {
	val, err := strconv.Atoi(ctx.Param(name))
	if err != nil {
		return 0, core.NewValidationError(
			errors.Errorf("invalid %s", name),
			core.FieldError{Field: name, Error: "must be an integer"},
		)
	}
	return val, nil
}

// Handlers

func (api *planApi) queryAll(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	all, err := api.svc.ListAll(ctx.Request().Context(), ownerID)
	if err != nil {
		return errors.Wrap(err, "listing plans")
	}
	return ctx.JSON(http.StatusOK, all)
}

func (api *planApi) query(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}
	planType, err := intParam(ctx, "planType")
	if err != nil {
		return err
	}

	activities, err := api.svc.List(ctx.Request().Context(), ownerID, planType)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, activities)
}

func (api *planApi) add(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}
	planType, err := intParam(ctx, "planType")
	if err != nil {
		return err
	}

	var data AddActivityRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AddActivityRequest")
	}

	activity, err := api.svc.Add(ctx.Request().Context(), ownerID, planType, data.Text)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, activity)
}

func (api *planApi) replace(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}
	planType, err := intParam(ctx, "planType")
	if err != nil {
		return err
	}

	var data ReplaceActivitiesRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReplaceActivitiesRequest")
	}

	activities, err := api.svc.Replace(ctx.Request().Context(), ownerID, planType, data.Activities)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, activities)
}

func (api *planApi) clear(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}
	planType, err := intParam(ctx, "planType")
	if err != nil {
		return err
	}

	if err := api.svc.Clear(ctx.Request().Context(), ownerID, planType); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *planApi) destroyActivity(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}
	planType, err := intParam(ctx, "planType")
	if err != nil {
		return err
	}
	index, err := intParam(ctx, "index")
	if err != nil {
		return err
	}

	if err := api.svc.DeleteAt(ctx.Request().Context(), ownerID, planType, index); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// importSheet replaces the slot's activities from an uploaded .xlsx file.
// The designated column defaults to the first one.
func (api *planApi) importSheet(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}
	planType, err := intParam(ctx, "planType")
	if err != nil {
		return err
	}

	column := 0
	if raw := ctx.QueryParam("column"); raw != "" {
		if column, err = strconv.Atoi(raw); err != nil || column < 0 {
			return core.NewValidationError(
				errors.New("invalid column"),
				core.FieldError{Field: "column", Error: "must be a non-negative integer"},
			)
		}
	}

	fh, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(
			errors.New("file is required"),
			core.FieldError{Field: "file", Error: "this field is required"},
		)
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening upload")
	}
	defer f.Close()

	rows, err := sheetsvc.Rows(f)
	if err != nil {
		return err
	}
	activities, err := api.svc.ImportRows(ctx.Request().Context(), ownerID, planType, rows, column)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, activities)
}

type (
	AddActivityRequest struct {
		Text string `json:"activity_text"`
	}

	ReplaceActivitiesRequest struct {
		Activities []string `json:"activities"`
	}
)
