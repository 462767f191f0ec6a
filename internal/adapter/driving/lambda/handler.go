// Package lambda adapts a monitoring pass to a scheduled Lambda invocation.
package lambda

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/diillson/aurora-logmon/internal/adapter/driving/bootstrap"
	"github.com/diillson/aurora-logmon/internal/application/usecase"
	"github.com/diillson/aurora-logmon/internal/domain/entity"
	"github.com/diillson/aurora-logmon/internal/domain/repository"
	"github.com/diillson/aurora-logmon/internal/shared/types"
	"github.com/diillson/aurora-logmon/pkg/console"
)

// Response is returned to the scheduler that invoked the function.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// Runner executes one pass for a validated configuration.
type Runner func(ctx context.Context, cfg *types.RunConfig, con types.ConsoleInterface) (*entity.RunReport, error)

// Handler serves Lambda invocations.
type Handler struct {
	configRepo repository.ConfigRepository
	console    types.ConsoleInterface
	run        Runner
}

// New returns a Handler that reads its settings from the environment.
func New(configRepo repository.ConfigRepository) *Handler {
	return &Handler{
		configRepo: configRepo,
		console:    console.NewConsole(console.WithPlain(true), console.WithWriter(os.Stdout)),
		run:        bootstrap.Run,
	}
}

// NewWithRunner is New with an explicit console and runner.
func NewWithRunner(configRepo repository.ConfigRepository, con types.ConsoleInterface, run Runner) *Handler {
	return &Handler{configRepo: configRepo, console: con, run: run}
}

// Handle runs one monitoring pass. The event payload is ignored unless it is
// a JSON object, in which case its fields override the environment.
// Failures are reported in the response, never as an invocation error.
func (h *Handler) Handle(ctx context.Context, event json.RawMessage) (Response, error) {
	args := &types.CLIArgs{}
	if overrides, ok := decodeOverrides(event); ok {
		args.Overrides = *overrides
	}
	// Lambda output always goes to CloudWatch Logs.
	args.Overrides.Plain = true

	cfg, err := usecase.ResolveConfig(h.configRepo, args)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		h.console.LogError("%v", err)
		return failure(err), nil
	}

	report, err := h.run(ctx, cfg, h.console)
	if err != nil {
		h.console.LogError("%v", err)
		return failure(err), nil
	}
	return Response{StatusCode: report.StatusCode(), Body: report.Summary()}, nil
}

func decodeOverrides(event json.RawMessage) (*types.RunConfig, bool) {
	trimmed := bytes.TrimSpace(event)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}
	var overrides types.RunConfig
	if err := json.Unmarshal(trimmed, &overrides); err != nil {
		return nil, false
	}
	return &overrides, true
}

func failure(err error) Response {
	return Response{
		StatusCode: http.StatusInternalServerError,
		Body:       fmt.Sprintf("Failure: %v", err),
	}
}
