package schemas

import (
	z "github.com/Oudwins/zog"
)

type TaskCreateRequest struct {
	SourceURL string `json:"source_url" zog:"source_url"`
}

var TaskCreateSchema = z.Struct(z.Shape{
	"SourceURL": z.String().Required().Trim().URL(),
})

type TranscribeURLRequest struct {
	AudioURL  string `json:"audio_url" zog:"audio_url"`
	Provider  string `json:"provider" zog:"provider"`
	ModelName string `json:"model_name,omitempty" zog:"model_name"`
	Prompt    string `json:"prompt,omitempty" zog:"prompt"`
}

var TranscribeURLSchema = z.Struct(z.Shape{
	"AudioURL":  z.String().Required().Trim().URL(),
	"Provider":  z.String().Required().Trim(),
	"ModelName": z.String().Optional().Trim(),
	"Prompt":    z.String().Optional().Trim(),
})

// TranscribeOptions are the per-job knobs forwarded to the ASR provider.
type TranscribeOptions struct {
	Provider  string `zog:"provider"`
	ModelName string `zog:"model_name"`
	Prompt    string `zog:"prompt"`
}

var TranscribeOptionsSchema = z.Struct(z.Shape{
	"Provider":  z.String().Default("whisper").Trim(),
	"ModelName": z.String().Optional().Trim(),
	"Prompt":    z.String().Optional().Trim(),
})

type LoginRequest struct {
	Email    string `json:"email" zog:"email"`
	Password string `json:"password" zog:"password"`
}

var LoginSchema = z.Struct(z.Shape{
	"Email":    z.String().Required().Trim().Email(),
	"Password": z.String().Required().Min(6),
})

type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

type BalanceResponse struct {
	Balance int `json:"balance"`
}
