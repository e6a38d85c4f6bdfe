package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/gradahq/grada/core/item"
	"github.com/gradahq/grada/core/user"
)

type itemApi struct {
	svc      item.ServiceInterface
	validate *validator.Validate
}

func registerItemAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc item.ServiceInterface,
	usrSvc user.ServiceInterface,
	validate *validator.Validate,
) {
	api := itemApi{
		svc:      svc,
		validate: validate,
	}

	// all item endpoints require auth and a completed onboarding
	ig := g.Group("/items", jwt, onboardingRequiredMiddleware(usrSvc))

	ig.POST("", api.create)
	ig.GET("", api.query)
	ig.GET("/dashboard", api.dashboard)
	ig.GET("/summary", api.summary)
	ig.GET("/goal-templates", api.goalTemplates)

	dg := ig.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.POST("/complete", api.complete)
	dg.GET("/sub-items", api.querySubItems)
	dg.POST("/sub-items", api.createSub)
}

// Handlers

func (api *itemApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data item.NewItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewItem")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	it, err := api.svc.Create(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating item")
	}
	return ctx.JSON(http.StatusCreated, it)
}

func (api *itemApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	filter := new(item.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []item.Item{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	items, err := api.svc.Query(ctx.Request().Context(), claims.Subject, *filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying items")
	}
	if items == nil {
		items = []item.Item{}
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *itemApi) dashboard(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	dash, err := api.svc.Dashboard(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "building dashboard")
	}
	return ctx.JSON(http.StatusOK, dash)
}

func (api *itemApi) summary(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	sum, err := api.svc.Summary(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "building summary")
	}
	return ctx.JSON(http.StatusOK, sum)
}

func (api *itemApi) goalTemplates(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, GoalTemplatesResponse{
		Item:    item.GoalTemplates,
		SubItem: item.SubItemGoalTemplates,
	})
}

func (api *itemApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	it, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"), claims.Subject)
	if err != nil {
		if errors.Cause(err) == item.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding item by ID")
	}
	return ctx.JSON(http.StatusOK, it)
}

func (api *itemApi) update(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data item.UpdateItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateItem")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	it, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), claims.Subject, data)
	if err != nil {
		if errors.Cause(err) == item.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating item")
	}
	return ctx.JSON(http.StatusOK, it)
}

func (api *itemApi) complete(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data item.CompleteItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CompleteItem")
	}

	it, err := api.svc.Complete(ctx.Request().Context(), ctx.Param("id"), claims.Subject, data)
	if err != nil {
		if errors.Cause(err) == item.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "completing item")
	}
	return ctx.JSON(http.StatusOK, it)
}

func (api *itemApi) querySubItems(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	items, err := api.svc.QuerySubItems(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == item.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "querying sub-items")
	}
	if items == nil {
		items = []item.Item{}
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *itemApi) createSub(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data item.NewSubItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubItem")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	it, err := api.svc.CreateSub(ctx.Request().Context(), claims.Subject, ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == item.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "creating sub-item")
	}
	return ctx.JSON(http.StatusCreated, it)
}

type GoalTemplatesResponse struct {
	Item    []string `json:"item"`
	SubItem []string `json:"sub_item"`
}
