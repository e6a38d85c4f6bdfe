package core

import (
	"context"
	"io"
)

type (
	// LLMRequest is a single free-form prompt, optionally constrained
	// to a JSON schema the model response must satisfy.
	LLMRequest struct {
		Prompt             string                 `json:"prompt" validate:"required"`
		ResponseJSONSchema map[string]interface{} `json:"response_json_schema,omitempty"`
	}

	LLMResponse struct {
		Content string `json:"content"`
	}

	FileUpload struct {
		Filename    string
		ContentType string
		Content     io.Reader
	}

	FileUploadResult struct {
		FileURL string `json:"file_url"`
	}

	ImageRequest struct {
		Prompt string `json:"prompt" validate:"required"`
	}

	ImageResult struct {
		URL string `json:"url"`
	}

	ExtractRequest struct {
		FileURL    string                 `json:"file_url" validate:"required,url"`
		JSONSchema map[string]interface{} `json:"json_schema,omitempty"`
	}

	ExtractResult struct {
		Status  string      `json:"status"` // "success" or "error"
		Details string      `json:"details,omitempty"`
		Output  interface{} `json:"output,omitempty"`
	}

	// IntegrationService provides access to external AI and file services.
	IntegrationService interface {
		InvokeLLM(ctx context.Context, req LLMRequest) (LLMResponse, error)
		UploadFile(ctx context.Context, up FileUpload) (FileUploadResult, error)
		GenerateImage(ctx context.Context, req ImageRequest) (ImageResult, error)
		ExtractDataFromUploadedFile(ctx context.Context, req ExtractRequest) (ExtractResult, error)
	}
)
