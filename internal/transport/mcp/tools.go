package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sandevgo/tuskmem/internal/core"
	"github.com/sandevgo/tuskmem/internal/service/memory"
	"github.com/sandevgo/tuskmem/pkg/log"
)

func kindNames() []string {
	kinds := core.Kinds()
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = k.String()
	}
	return out
}

func relTypeNames() []string {
	types := core.RelTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}

func storeTool() mcp.Tool {
	return mcp.NewTool(
		"memory_store",
		mcp.WithDescription("Stores a lesson. Near-duplicates of an existing memory of the same kind are merged into it instead of being added."),
		mcp.WithString("trigger",
			mcp.Description("When this memory applies, e.g. the error message or situation"),
			mcp.Required(),
		),
		mcp.WithString("resolution",
			mcp.Description("What to do when the trigger matches"),
			mcp.Required(),
		),
		mcp.WithString("kind",
			mcp.Description("Memory kind (default 'failure')"),
			mcp.Enum(kindNames()...),
		),
		mcp.WithString("name",
			mcp.Description("Explicit name; derived from the trigger when omitted"),
		),
		mcp.WithString("source",
			mcp.Description("Where the lesson came from, e.g. a task id"),
		),
		mcp.WithNumber("cost",
			mcp.Description("How expensive the lesson was to learn, used by the cost scorer"),
		),
	)
}

func queryTool() mcp.Tool {
	return mcp.NewTool(
		"memory_query",
		mcp.WithDescription("Returns the stored memories most relevant to the text, ranked by relevance and past effectiveness."),
		mcp.WithString("text",
			mcp.Description("Task or error description to match against"),
			mcp.Required(),
		),
		mcp.WithString("kind",
			mcp.Description("Restrict results to one kind"),
			mcp.Enum(kindNames()...),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (default 5)"),
		),
		mcp.WithNumber("min_effectiveness",
			mcp.Description("Skip memories whose effectiveness is below this value"),
		),
	)
}

func feedbackTool() mcp.Tool {
	return mcp.NewTool(
		"memory_feedback",
		mcp.WithDescription("Reports which injected memories were actually used. Call once per unit of work."),
		mcp.WithArray("injected",
			mcp.Description("Names of every memory that was offered"),
			mcp.WithStringItems(),
			mcp.Required(),
		),
		mcp.WithArray("utilized",
			mcp.Description("Subset of injected names that helped"),
			mcp.WithStringItems(),
		),
	)
}

func relateTool() mcp.Tool {
	return mcp.NewTool(
		"memory_relate",
		mcp.WithDescription("Adds a directed, typed edge between two existing memories. Re-adding an edge is a no-op."),
		mcp.WithString("from", mcp.Description("Source memory name"), mcp.Required()),
		mcp.WithString("to", mcp.Description("Target memory name"), mcp.Required()),
		mcp.WithString("rel_type",
			mcp.Description("Relationship type"),
			mcp.Enum(relTypeNames()...),
			mcp.Required(),
		),
		mcp.WithNumber("weight", mcp.Description("Edge weight (default 1.0)")),
	)
}

func relatedTool() mcp.Tool {
	return mcp.NewTool(
		"memory_related",
		mcp.WithDescription("Lists memories reachable from a memory through relationships, nearest first."),
		mcp.WithString("name", mcp.Description("Start memory name"), mcp.Required()),
		mcp.WithNumber("max_hops", mcp.Description("Traversal depth (default 2)")),
	)
}

func pruneTool() mcp.Tool {
	return mcp.NewTool(
		"memory_prune",
		mcp.WithDescription("Deletes well-exercised memories that keep failing, together with their relationships."),
		mcp.WithNumber("min_effectiveness", mcp.Description("Effectiveness below which a memory is pruned; omit for the configured default")),
		mcp.WithNumber("min_uses", mcp.Description("Feedback events required before a memory can be pruned; omit for the configured default")),
		mcp.WithBoolean("dry_run", mcp.Description("Report what would be pruned without deleting")),
	)
}

func healthTool() mcp.Tool {
	return mcp.NewTool(
		"memory_health",
		mcp.WithDescription("Reports store statistics and whether the feedback loop is closed."),
	)
}

const defaultMaxHops = 2

func (s *Server) handleStore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.svc.Store(ctx, memory.StoreRequest{
		Trigger:    req.GetString("trigger", ""),
		Resolution: req.GetString("resolution", ""),
		Kind:       req.GetString("kind", core.KindFailure.String()),
		Name:       req.GetString("name", ""),
		Source:     req.GetString("source", ""),
		Cost:       req.GetFloat("cost", 0),
	})
	return result(ctx, req, res, err)
}

func (s *Server) handleQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := memory.QueryRequest{
		Text:             req.GetString("text", ""),
		Limit:            req.GetInt("limit", 0),
		MinEffectiveness: req.GetFloat("min_effectiveness", 0),
	}
	if raw := req.GetString("kind", ""); raw != "" {
		kind, ok := core.ParseKind(raw)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown kind %q", raw)), nil
		}
		q.Kind = &kind
	}
	if q.Text == "" {
		return mcp.NewToolResultError("text is required"), nil
	}

	res, err := s.svc.Query(ctx, q)
	return result(ctx, req, res, err)
}

func (s *Server) handleFeedback(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.svc.Feedback(ctx,
		req.GetStringSlice("utilized", nil),
		req.GetStringSlice("injected", nil),
	)
	return result(ctx, req, res, err)
}

func (s *Server) handleRelate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.svc.Relate(ctx, memory.RelateRequest{
		From:    req.GetString("from", ""),
		To:      req.GetString("to", ""),
		RelType: req.GetString("rel_type", ""),
		Weight:  req.GetFloat("weight", 0),
	})
	return result(ctx, req, res, err)
}

func (s *Server) handleRelated(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.svc.Related(ctx, req.GetString("name", ""), req.GetInt("max_hops", defaultMaxHops))
	return result(ctx, req, res, err)
}

func (s *Server) handlePrune(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pr := memory.PruneRequest{DryRun: req.GetBool("dry_run", false)}
	args := req.GetArguments()
	if _, ok := args["min_effectiveness"]; ok {
		v := req.GetFloat("min_effectiveness", 0)
		pr.MinEffectiveness = &v
	}
	if _, ok := args["min_uses"]; ok {
		v := req.GetInt("min_uses", 0)
		pr.MinUses = &v
	}
	res, err := s.svc.Prune(ctx, pr)
	return result(ctx, req, res, err)
}

func (s *Server) handleHealth(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.svc.Verify(ctx)
	return result(ctx, req, res, err)
}

// result renders v as JSON. Service errors become tool errors so the agent
// sees them instead of a transport failure.
func result(ctx context.Context, req mcp.CallToolRequest, v any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Str("tool", req.Params.Name).Msg("tool call failed")
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s result: %w", req.Params.Name, err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
