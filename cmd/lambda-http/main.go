// Command lambda-http serves the API from AWS Lambda behind an HTTP API
// gateway. EventBridge scheduled events sent to the same function run one
// retention pass over the export root instead.
//
//	GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"gdpr-backend/internal/bootstrap"
	"gdpr-backend/internal/shared/config"
	"gdpr-backend/internal/shared/telemetry"
)

var (
	initOnce sync.Once
	initErr  error
	app      *bootstrap.App
	proxy    *ginadapter.GinLambdaV2
)

func initApp() {
	app, initErr = bootstrap.Build(config.Load())
	if initErr == nil {
		proxy = ginadapter.NewV2(app.Router)
	}
}

type pruneResponse struct {
	Files int   `json:"files"`
	Bytes int64 `json:"bytes"`
	Dirs  int   `json:"dirs"`
}

func handler(ctx context.Context, payload json.RawMessage) (any, error) {
	initOnce.Do(initApp)
	if initErr != nil {
		telemetry.Error("lambda.bootstrap_failed", map[string]any{"error": initErr})
		return jsonError(http.StatusInternalServerError, "bootstrap failed"), initErr
	}

	if isScheduledEvent(payload) {
		res, err := app.Janitor.Prune(ctx)
		if err != nil {
			return nil, fmt.Errorf("prune exports: %w", err)
		}
		return pruneResponse{Files: res.Files, Bytes: res.Bytes, Dirs: res.Dirs}, nil
	}

	var req events.APIGatewayV2HTTPRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return jsonError(http.StatusBadRequest, "unsupported event"), nil
	}
	return proxy.ProxyWithContext(ctx, req)
}

// isScheduledEvent reports whether payload came from an EventBridge rule.
func isScheduledEvent(payload json.RawMessage) bool {
	var ev events.CloudWatchEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return false
	}
	return ev.Source == "aws.events" && ev.DetailType == "Scheduled Event"
}

func jsonError(status int, msg string) events.APIGatewayV2HTTPResponse {
	body, _ := json.Marshal(map[string]any{"error": map[string]string{"code": "lambda_error", "message": msg}})
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Body:       string(body),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

func main() {
	lambda.Start(handler)
}
