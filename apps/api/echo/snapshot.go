package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/logopedika/kabinet/core/snapshot"
)

type snapshotApi struct {
	svc *snapshot.Service
}

func registerSnapshotAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *snapshot.Service) {
	api := snapshotApi{svc: svc}

	sg := g.Group("/snapshot", jwt)
	sg.GET("", api.export)
	sg.POST("", api.importDoc)
}

// Handlers

func (api *snapshotApi) export(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	doc, err := api.svc.Export(ctx.Request().Context(), ownerID)
	if err != nil {
		return errors.Wrap(err, "exporting snapshot")
	}
	return ctx.JSON(http.StatusOK, doc)
}

func (api *snapshotApi) importDoc(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	var doc snapshot.Document
	if err := ctx.Bind(&doc); err != nil {
		return errors.Wrap(err, "binding to Document")
	}

	if err := api.svc.Import(ctx.Request().Context(), ownerID, doc); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Snapshot imported."})
}
