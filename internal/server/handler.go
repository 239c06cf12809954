package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jward/sassdef"
	"github.com/jward/sassdef/internal/logging"
)

// CorpusFunc returns the current corpus for a request.
type CorpusFunc func(ctx context.Context) ([]sassdef.FileHandle, error)

// Handler adapts MCP tool calls to the resolution engine.
type Handler struct {
	engine *sassdef.Engine
	corpus CorpusFunc
	logger *slog.Logger
	newID  func() string
}

// NewHandler creates a Handler. A nil logger discards output.
func NewHandler(engine *sassdef.Engine, corpus CorpusFunc, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Handler{
		engine: engine,
		corpus: corpus,
		logger: logger,
		newID:  uuid.NewString,
	}
}

// Declaration is one location in a find_definition response. Line and
// columns are 0-based.
type Declaration struct {
	File        string `json:"file"`
	Line        uint32 `json:"line"`
	ColumnStart uint32 `json:"column_start"`
	ColumnEnd   uint32 `json:"column_end"`
	Description string `json:"description"`
}

// DefinitionResponse is the JSON body of a successful find_definition call.
type DefinitionResponse struct {
	Reference    string        `json:"reference"`
	Kind         string        `json:"kind"`
	Policy       string        `json:"policy"`
	Declarations []Declaration `json:"declarations"`
}

// FindDefinition handles the find_definition tool. It resolves either a raw
// query or the reference at line/column of file.
func (h *Handler) FindDefinition(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := h.newID()
	logger := h.logger.With("request_id", id, "tool", "find_definition")

	rawFile, err := req.RequireString("file")
	if err != nil {
		return mcp.NewToolResultError("file is required"), nil
	}
	origin := h.fileHandle(rawFile)

	corpus, err := h.corpus(ctx)
	if err != nil {
		logger.Error("list corpus", "error", err)
		return mcp.NewToolResultError("failed to list workspace files"), nil
	}

	var res *sassdef.Result
	if query := req.GetString("query", ""); query != "" {
		res, err = h.engine.ResolveQuery(ctx, query, origin, corpus)
	} else {
		line, lerr := req.RequireInt("line")
		col, cerr := req.RequireInt("column")
		if lerr != nil || cerr != nil {
			return mcp.NewToolResultError("either query or line and column are required"), nil
		}
		res, err = h.engine.ResolveAt(ctx, origin, line, col, corpus)
	}

	if err != nil {
		return h.failure(logger, err), nil
	}

	out := DefinitionResponse{
		Reference: res.Reference.Text,
		Kind:      res.Reference.Kind.String(),
		Policy:    h.engine.Policy().String(),
	}
	for _, d := range res.Declarations {
		out.Declarations = append(out.Declarations, Declaration{
			File:        d.File.Path,
			Line:        d.Line,
			ColumnStart: d.ColumnStart,
			ColumnEnd:   d.ColumnEnd,
			Description: d.Description,
		})
	}
	body, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}
	logger.Debug("resolved", "reference", res.Reference.String(), "declarations", len(out.Declarations))
	return mcp.NewToolResultText(string(body)), nil
}

// Hover handles the hover tool: it returns the go-to-definition hint when
// the position rests on a variable, and empty text otherwise.
func (h *Handler) Hover(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawFile, err := req.RequireString("file")
	if err != nil {
		return mcp.NewToolResultError("file is required"), nil
	}
	line, err := req.RequireInt("line")
	if err != nil {
		return mcp.NewToolResultError("line is required"), nil
	}
	col, err := req.RequireInt("column")
	if err != nil {
		return mcp.NewToolResultError("column is required"), nil
	}

	text, err := h.engine.LineAt(ctx, h.fileHandle(rawFile), line)
	if err != nil {
		if errors.Is(err, sassdef.ErrMalformedQuery) {
			return mcp.NewToolResultText(""), nil
		}
		return h.failure(h.logger.With("request_id", h.newID(), "tool", "hover"), err), nil
	}
	hint, _ := sassdef.HoverHint(text, col)
	return mcp.NewToolResultText(hint), nil
}

// failure maps engine errors to tool results. A missing definition is an
// informational answer, not a tool error.
func (h *Handler) failure(logger *slog.Logger, err error) *mcp.CallToolResult {
	var nd *sassdef.NoDefinitionError
	switch {
	case errors.As(err, &nd):
		logger.Info("no definition", "reference", nd.Reference.String())
		return mcp.NewToolResultText(fmt.Sprintf("No definition found for %s", nd.Reference.Text))
	case errors.Is(err, sassdef.ErrMalformedQuery):
		return mcp.NewToolResultError("no variable, mixin or function at that position")
	case errors.Is(err, sassdef.ErrCancelled):
		return mcp.NewToolResultError("request cancelled")
	case errors.Is(err, sassdef.ErrNotReadable):
		logger.Warn("origin unreadable", "error", err)
		return mcp.NewToolResultError("file could not be read")
	default:
		logger.Error("definition lookup failed", "error", err)
		return mcp.NewToolResultError("definition lookup failed")
	}
}

func (h *Handler) fileHandle(raw string) sassdef.FileHandle {
	if !filepath.IsAbs(raw) {
		raw = filepath.Join(h.engine.Root(), raw)
	}
	return sassdef.NewFile(raw)
}
