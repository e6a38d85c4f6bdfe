// Package integrationsvc provides core.IntegrationService implementations.
// Only the dummy one exists for now; it keeps the API surface stable while
// the real providers are negotiated.
package integrationsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gradahq/grada/core"
)

type dummyService struct {
	conf *core.Config
}

var _ core.IntegrationService = (*dummyService)(nil)

func NewDummyService(conf *core.Config) *dummyService {
	return &dummyService{conf: conf}
}

func (svc dummyService) InvokeLLM(_ context.Context, req core.LLMRequest) (core.LLMResponse, error) {
	if req.ResponseJSONSchema != nil {
		data, err := json.Marshal(map[string]interface{}{})
		if err != nil {
			return core.LLMResponse{}, err
		}
		return core.LLMResponse{Content: string(data)}, nil
	}
	return core.LLMResponse{Content: "This capability is not configured yet."}, nil
}

func (svc dummyService) UploadFile(_ context.Context, up core.FileUpload) (core.FileUploadResult, error) {
	return core.FileUploadResult{
		FileURL: fmt.Sprintf("%s/files/%s/%s", svc.conf.FrontendBaseURL, uuid.New(), up.Filename),
	}, nil
}

func (svc dummyService) GenerateImage(_ context.Context, _ core.ImageRequest) (core.ImageResult, error) {
	return core.ImageResult{
		URL: fmt.Sprintf("%s/images/%s.png", svc.conf.FrontendBaseURL, uuid.New()),
	}, nil
}

func (svc dummyService) ExtractDataFromUploadedFile(_ context.Context, req core.ExtractRequest) (core.ExtractResult, error) {
	return core.ExtractResult{
		Status:  "success",
		Details: fmt.Sprintf("processed %s at %s", req.FileURL, time.Now().UTC().Format(time.RFC3339)),
		Output:  map[string]interface{}{},
	}, nil
}
