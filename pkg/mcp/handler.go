package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nomagicln/seedgen/pkg/config"
	"github.com/nomagicln/seedgen/pkg/filter"
	"github.com/nomagicln/seedgen/pkg/sampler"
)

// Tool names.
const (
	ToolListGenerators = "list_generators"
	ToolGenerateSample = "generate_sample"
)

// Limits on a single generate_sample call.
const (
	DefaultMaxCount = 1000
	DefaultMaxSize  = 1000
)

// Handler serves the generator tools. The sampler can be replaced while the
// server runs, for example after the configuration was reloaded.
type Handler struct {
	mu       sync.RWMutex
	sampler  *sampler.Sampler
	defaults config.Defaults

	maxCount int
	maxSize  int
	logger   *slog.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithMaxCount sets the largest count a call may request.
func WithMaxCount(n int) HandlerOption {
	return func(h *Handler) {
		h.maxCount = n
	}
}

// WithMaxSize sets the largest size a call may request.
func WithMaxSize(n int) HandlerOption {
	return func(h *Handler) {
		h.maxSize = n
	}
}

// WithLogger sets the logger for tool calls.
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// NewHandler creates a handler that draws from s, filling omitted arguments
// from defaults.
func NewHandler(s *sampler.Sampler, defaults config.Defaults, opts ...HandlerOption) *Handler {
	h := &Handler{
		sampler:  s,
		defaults: defaults,
		maxCount: DefaultMaxCount,
		maxSize:  DefaultMaxSize,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SetSampler replaces the sampler and defaults used by subsequent calls.
func (h *Handler) SetSampler(s *sampler.Sampler, defaults config.Defaults) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sampler = s
	h.defaults = defaults
}

func (h *Handler) current() (*sampler.Sampler, config.Defaults) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sampler, h.defaults
}

// Register adds the tools to s.
func (h *Handler) Register(s *mcp.Server) {
	listTool := h.buildListToolDefinition()
	s.AddTool(&listTool, h.handleListGenerators)

	sampleTool := h.buildSampleToolDefinition()
	s.AddTool(&sampleTool, h.handleGenerateSample)
}

func (h *Handler) buildListToolDefinition() mcp.Tool {
	return mcp.Tool{
		Name: ToolListGenerators,
		Description: "List the generators available to generate_sample. " +
			"Builtin generators produce primitive values and example records; " +
			"schema generators are named <document>.<component> and produce values matching an OpenAPI component schema.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"prefix": map[string]any{
					"type":        "string",
					"description": "Only list generators whose name starts with this prefix.",
				},
			},
			"required": []string{},
		},
	}
}

func (h *Handler) buildSampleToolDefinition() mcp.Tool {
	_, defaults := h.current()
	return mcp.Tool{
		Name: ToolGenerateSample,
		Description: "Generate deterministic sample values from a named generator. " +
			"The same name, seed, size and count always return the same values. " +
			fmt.Sprintf("Filter expressions use the functions %s combined with &&, || and !, ",
				strings.Join(filter.Functions(), ", ")) +
			`for example Gt("age", 18) && HasPrefix("name", "A").`,
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name": map[string]any{
					"type":        "string",
					"description": "Generator name as returned by list_generators.",
				},
				"seed": map[string]any{
					"type":        "integer",
					"description": fmt.Sprintf("Seed of the run (default %d).", defaults.Seed),
				},
				"size": map[string]any{
					"type":        "integer",
					"minimum":     0,
					"maximum":     h.maxSize,
					"description": fmt.Sprintf("Upper bound on string and array lengths (default %d).", defaults.Size),
				},
				"count": map[string]any{
					"type":        "integer",
					"minimum":     0,
					"maximum":     h.maxCount,
					"description": fmt.Sprintf("Number of values (default %d).", defaults.Count),
				},
				"where": map[string]any{
					"type":        "string",
					"description": "Optional filter expression; only matching values are returned.",
				},
			},
			"required": []string{"name"},
		},
	}
}

type generatorInfo struct {
	Name        string `json:"name"`
	Source      string `json:"source"`
	Description string `json:"description"`
}

func (h *Handler) handleListGenerators(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Prefix string `json:"prefix"`
	}
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return errorResult("Invalid arguments: %v", err), nil
		}
	}

	s, _ := h.current()
	infos := make([]generatorInfo, 0)
	for _, e := range s.Registry().List() {
		if !strings.HasPrefix(e.Name, args.Prefix) {
			continue
		}
		infos = append(infos, generatorInfo{Name: e.Name, Source: e.Source, Description: e.Description})
	}

	return formatJSONResult(infos, false), nil
}

func (h *Handler) handleGenerateSample(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Name  string `json:"name"`
		Seed  *int64 `json:"seed"`
		Size  *int   `json:"size"`
		Count *int   `json:"count"`
		Where string `json:"where"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return errorResult("Invalid arguments: %v", err), nil
	}
	if args.Name == "" {
		return errorResult("Missing required argument: name"), nil
	}

	s, defaults := h.current()
	sreq := sampler.Request{
		Name:  args.Name,
		Seed:  defaults.Seed,
		Size:  defaults.Size,
		Count: defaults.Count,
		Where: args.Where,
	}
	if args.Seed != nil {
		sreq.Seed = *args.Seed
	}
	if args.Size != nil {
		sreq.Size = *args.Size
	}
	if args.Count != nil {
		sreq.Count = *args.Count
	}
	if sreq.Count > h.maxCount {
		return errorResult("count %d exceeds the limit of %d", sreq.Count, h.maxCount), nil
	}
	if sreq.Size > h.maxSize {
		return errorResult("size %d exceeds the limit of %d", sreq.Size, h.maxSize), nil
	}

	h.logger.Debug("tool call", "tool", ToolGenerateSample, "generator", sreq.Name, "seed", sreq.Seed)

	result, err := s.Sample(ctx, sreq)
	if err != nil {
		return errorResult("Generation failed: %v", err), nil
	}

	return formatJSONResult(result, false), nil
}

// formatJSONResult formats data into an MCP result.
func formatJSONResult(data any, isError bool) *mcp.CallToolResult {
	pretty, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errorResult("Failed to encode result: %v", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(pretty)},
		},
		IsError: isError,
	}
}

func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
		IsError: true,
	}
}
