package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/gradahq/grada/core"
)

type integrationApi struct {
	svc      core.IntegrationService
	validate *validator.Validate
}

func registerIntegrationAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc core.IntegrationService,
	validate *validator.Validate,
) {
	api := integrationApi{
		svc:      svc,
		validate: validate,
	}

	ig := g.Group("/integrations", jwt)
	ig.POST("/invoke-llm", api.invokeLLM)
	ig.POST("/upload-file", api.uploadFile)
	ig.POST("/generate-image", api.generateImage)
	ig.POST("/extract-data", api.extractData)
}

// Handlers

func (api *integrationApi) invokeLLM(ctx echo.Context) error {
	var data core.LLMRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LLMRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	res, err := api.svc.InvokeLLM(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "invoking LLM")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *integrationApi) uploadFile(ctx echo.Context) error {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "a file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer f.Close()

	res, err := api.svc.UploadFile(ctx.Request().Context(), core.FileUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Content:     f,
	})
	if err != nil {
		return errors.Wrap(err, "uploading file")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *integrationApi) generateImage(ctx echo.Context) error {
	var data core.ImageRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ImageRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	res, err := api.svc.GenerateImage(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "generating image")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *integrationApi) extractData(ctx echo.Context) error {
	var data core.ExtractRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ExtractRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	res, err := api.svc.ExtractDataFromUploadedFile(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "extracting data from file")
	}
	return ctx.JSON(http.StatusOK, res)
}
