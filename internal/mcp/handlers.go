package mcp

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/sweep/internal/constants"
	"github.com/nvandessel/sweep/internal/experiment"
	"github.com/nvandessel/sweep/internal/relation"
	"github.com/nvandessel/sweep/internal/simulation"
	"github.com/nvandessel/sweep/internal/store"
	"github.com/nvandessel/sweep/internal/visualization"
)

const (
	latestRunURI = "sweep://runs/latest"
	runURIPrefix = "sweep://runs/"
)

// registerTools registers all sweep MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "sweep_simulate",
		Description: "Run one cleaning simulation: agents start at (0,0) and clean then move each tick until the grid is clean or the tick budget runs out",
	}, s.handleSweepSimulate)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "sweep_experiment",
		Description: "Sweep the simulation over several agent counts and report average ticks, cleaned percentage, and moves",
	}, s.handleSweepExperiment)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "sweep_relation",
		Description: "Check whether a finite binary relation is reflexive, symmetric, transitive, and an equivalence relation, and render its graph",
	}, s.handleSweepRelation)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "sweep_history",
		Description: "List stored experiment runs or load one run in full",
	}, s.handleSweepHistory)
}

// registerResources registers MCP resources for stored runs.
func (s *Server) registerResources() {
	s.server.AddResource(&sdk.Resource{
		URI:         latestRunURI,
		Name:        "sweep-latest-run",
		Description: "Results table of the most recent stored experiment.",
		MIMEType:    "text/markdown",
	}, s.handleRunResource)

	s.server.AddResourceTemplate(&sdk.ResourceTemplate{
		URITemplate: runURIPrefix + "{id}",
		Name:        "sweep-run",
		Description: "Results table of a stored experiment by ID.",
		MIMEType:    "text/markdown",
	}, s.handleRunResource)
}

// handleRunResource renders a stored run as markdown. The latest URI
// resolves to the newest run.
func (s *Server) handleRunResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	uri := req.Params.URI
	if !strings.HasPrefix(uri, runURIPrefix) {
		return nil, fmt.Errorf("invalid URI format: %s", uri)
	}
	id := strings.TrimPrefix(uri, runURIPrefix)

	text := "# Sweep Results\n\nNo experiments stored yet. Run `sweep_experiment` with `save: true`.\n"
	if id == "latest" {
		runs, err := s.store.ListRuns(ctx, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to list runs: %w", err)
		}
		id = ""
		if len(runs) > 0 {
			id = runs[0].ID
		}
	}

	if id != "" {
		report, err := s.store.GetReport(ctx, id)
		if err != nil {
			return nil, err
		}
		text = reportMarkdown(report)
	}

	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{
				URI:      uri,
				MIMEType: "text/markdown",
				Text:     text,
			},
		},
	}, nil
}

func reportMarkdown(r *experiment.Report) string {
	sc := r.Config.Scenario
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Sweep Results: %s\n\n", r.ID)
	fmt.Fprintf(&sb, "- Grid: %dx%d, %.0f%% dirty, %d ticks max\n", sc.Rows, sc.Cols, sc.DirtyFraction*100, sc.MaxTicks)
	fmt.Fprintf(&sb, "- Trials per agent count: %d\n", r.Config.Trials)
	fmt.Fprintf(&sb, "- Seed: %d\n", r.Seed)
	fmt.Fprintf(&sb, "- Started: %s\n\n", r.StartedAt.Format(time.RFC3339))
	sb.WriteString("```\n")
	sb.WriteString(experiment.Table(r))
	sb.WriteString("```\n")
	return sb.String()
}

// scenario fills omitted room settings from the server config and enforces
// the request caps before validating.
func (s *Server) scenario(rows, cols int, dirty *float64, maxTicks, agents int) (simulation.Scenario, error) {
	sc := s.settings.Scenario(agents)
	if rows != 0 {
		sc.Rows = rows
	}
	if cols != 0 {
		sc.Cols = cols
	}
	if dirty != nil {
		sc.DirtyFraction = *dirty
	}
	if maxTicks != 0 {
		sc.MaxTicks = maxTicks
	}
	if sc.Agents == 0 {
		sc.Agents = 1
	}

	if sc.Rows > constants.MaxGridCells || sc.Cols > constants.MaxGridCells ||
		sc.Rows*sc.Cols > constants.MaxGridCells {
		return sc, fmt.Errorf("grid %dx%d exceeds %d cells", sc.Rows, sc.Cols, constants.MaxGridCells)
	}
	if sc.MaxTicks > constants.MaxTickBudget {
		return sc, fmt.Errorf("max_ticks must be at most %d, got %d", constants.MaxTickBudget, sc.MaxTicks)
	}
	if sc.Agents > constants.MaxAgents {
		return sc, fmt.Errorf("agents must be at most %d, got %d", constants.MaxAgents, sc.Agents)
	}
	if err := sc.Validate(); err != nil {
		return sc, err
	}
	return sc, nil
}

func freshSeed(seed uint64) uint64 {
	for seed == 0 {
		seed = rand.Uint64()
	}
	return seed
}

// handleSweepSimulate implements the sweep_simulate tool.
func (s *Server) handleSweepSimulate(ctx context.Context, req *sdk.CallToolRequest, args SweepSimulateInput) (_ *sdk.CallToolResult, _ SweepSimulateOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("sweep_simulate", start, retErr, sanitizeToolParams(map[string]interface{}{
			"rows":      args.Rows,
			"cols":      args.Cols,
			"agents":    args.Agents,
			"max_ticks": args.MaxTicks,
			"seed":      args.Seed,
		}))
	}()

	if err := s.toolLimiters.Check("sweep_simulate"); err != nil {
		return nil, SweepSimulateOutput{}, err
	}

	sc, err := s.scenario(args.Rows, args.Cols, args.DirtyFraction, args.MaxTicks, args.Agents)
	if err != nil {
		return nil, SweepSimulateOutput{}, err
	}

	// Trial 0 of an experiment with the same seed replays this run.
	seed := freshSeed(args.Seed)
	runner := simulation.NewRunner(experiment.TrialRNG(seed, sc.Agents, 0), simulation.WithLogger(s.logger))
	out, err := runner.Run(sc)
	if err != nil {
		return nil, SweepSimulateOutput{}, err
	}

	verb := "timed out after"
	if out.Completed {
		verb = "finished in"
	}
	return nil, SweepSimulateOutput{
		Scenario: sc,
		Seed:     seed,
		Outcome:  out,
		Message: fmt.Sprintf("%d agent(s) %s %d ticks: %.2f%% clean, %d moves",
			sc.Agents, verb, out.Ticks, out.CleanedPercent, out.Moves),
	}, nil
}

// handleSweepExperiment implements the sweep_experiment tool.
func (s *Server) handleSweepExperiment(ctx context.Context, req *sdk.CallToolRequest, args SweepExperimentInput) (_ *sdk.CallToolResult, _ SweepExperimentOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("sweep_experiment", start, retErr, sanitizeToolParams(map[string]interface{}{
			"rows":         args.Rows,
			"cols":         args.Cols,
			"agent_counts": args.AgentCounts,
			"trials":       args.Trials,
			"max_ticks":    args.MaxTicks,
			"seed":         args.Seed,
			"save":         args.Save,
		}))
	}()

	if err := s.toolLimiters.Check("sweep_experiment"); err != nil {
		return nil, SweepExperimentOutput{}, err
	}

	cfg := s.settings.ExperimentConfig()
	if len(args.AgentCounts) > 0 {
		cfg.AgentCounts = args.AgentCounts
	}
	if args.Trials != 0 {
		cfg.Trials = args.Trials
	}
	if args.Seed != 0 {
		cfg.Seed = args.Seed
	}

	if cfg.Trials > constants.MaxTrials {
		return nil, SweepExperimentOutput{}, fmt.Errorf("trials must be at most %d, got %d", constants.MaxTrials, cfg.Trials)
	}
	totalAgents := 0
	for _, n := range cfg.AgentCounts {
		if n > constants.MaxAgents {
			return nil, SweepExperimentOutput{}, fmt.Errorf("agent counts must be at most %d, got %d", constants.MaxAgents, n)
		}
		totalAgents += n
	}

	sc, err := s.scenario(args.Rows, args.Cols, args.DirtyFraction, args.MaxTicks, 1)
	if err != nil {
		return nil, SweepExperimentOutput{}, err
	}
	cfg.Scenario = sc

	if moves := int64(cfg.Trials) * int64(sc.MaxTicks) * int64(totalAgents); moves > constants.MaxExperimentMoves {
		return nil, SweepExperimentOutput{}, fmt.Errorf("experiment too large: up to %d moves (limit %d)", moves, constants.MaxExperimentMoves)
	}

	report, err := experiment.Run(ctx, cfg,
		experiment.WithLogger(s.logger),
		experiment.WithEventLog(s.events))
	if err != nil {
		return nil, SweepExperimentOutput{}, err
	}

	saved := false
	if args.Save || s.settings.Store.Enabled {
		if err := s.store.SaveReport(ctx, report); err != nil {
			return nil, SweepExperimentOutput{}, fmt.Errorf("failed to save run: %w", err)
		}
		saved = true
	}

	rows := make([]ExperimentRow, 0, len(report.Rows))
	for _, r := range report.Rows {
		rows = append(rows, ExperimentRow{
			Agents:            r.Agents,
			AvgTicks:          r.AvgTicks,
			AvgCleanedPercent: r.AvgCleanedPercent,
			AvgMoves:          r.AvgMoves,
			CompletedTrials:   r.CompletedTrials,
		})
	}

	msg := fmt.Sprintf("Ran %d trials for each of %d agent counts", cfg.Trials, len(rows))
	if saved {
		msg += "; saved as " + report.ID
	}

	return nil, SweepExperimentOutput{
		ID:      report.ID,
		Seed:    report.Seed,
		Trials:  cfg.Trials,
		Rows:    rows,
		Saved:   saved,
		Table:   experiment.Table(report),
		Message: msg,
	}, nil
}

// handleSweepRelation implements the sweep_relation tool.
func (s *Server) handleSweepRelation(ctx context.Context, req *sdk.CallToolRequest, args SweepRelationInput) (_ *sdk.CallToolResult, _ SweepRelationOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("sweep_relation", start, retErr, sanitizeToolParams(map[string]interface{}{
			"pairs":  args.Pairs,
			"format": args.Format,
		}))
	}()

	if err := s.toolLimiters.Check("sweep_relation"); err != nil {
		return nil, SweepRelationOutput{}, err
	}

	// Reject oversized input before parsing. Every pair opens with '('.
	if len(args.Pairs) > constants.MaxRelationInputBytes {
		return nil, SweepRelationOutput{}, fmt.Errorf("relation input is %d bytes (limit %d)", len(args.Pairs), constants.MaxRelationInputBytes)
	}
	if n := strings.Count(args.Pairs, "("); n > constants.MaxRelationPairs {
		return nil, SweepRelationOutput{}, fmt.Errorf("relation has %d pairs (limit %d)", n, constants.MaxRelationPairs)
	}

	rel := relation.Default()
	if strings.TrimSpace(args.Pairs) != "" {
		parsed, err := relation.Parse(args.Pairs)
		if err != nil {
			return nil, SweepRelationOutput{}, err
		}
		rel = parsed
	}
	if rel.Len() > constants.MaxRelationPairs {
		return nil, SweepRelationOutput{}, fmt.Errorf("relation has %d pairs (limit %d)", rel.Len(), constants.MaxRelationPairs)
	}

	report := rel.Check()
	out := SweepRelationOutput{
		Relation:   rel.String(),
		Properties: report,
		Verdicts:   report.Lines(),
	}
	if classes, err := rel.Classes(); err == nil {
		out.Classes = classes
	}

	format := args.Format
	if format == "" {
		format = string(visualization.FormatJSON)
	}
	switch visualization.Format(format) {
	case visualization.FormatDOT:
		out.Graph = visualization.RenderDOT(rel)
	case visualization.FormatJSON:
		out.Graph = visualization.RenderJSON(rel)
	default:
		return nil, SweepRelationOutput{}, fmt.Errorf("unsupported format %q (use 'dot' or 'json')", format)
	}
	out.Format = format

	return nil, out, nil
}

// handleSweepHistory implements the sweep_history tool.
func (s *Server) handleSweepHistory(ctx context.Context, req *sdk.CallToolRequest, args SweepHistoryInput) (_ *sdk.CallToolResult, _ SweepHistoryOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("sweep_history", start, retErr, sanitizeToolParams(map[string]interface{}{
			"id":    args.ID,
			"limit": args.Limit,
		}))
	}()

	if err := s.toolLimiters.Check("sweep_history"); err != nil {
		return nil, SweepHistoryOutput{}, err
	}

	if args.ID != "" {
		report, err := s.store.GetReport(ctx, args.ID)
		if errors.Is(err, store.ErrRunNotFound) {
			return nil, SweepHistoryOutput{}, fmt.Errorf("no stored run with ID %q", args.ID)
		}
		if err != nil {
			return nil, SweepHistoryOutput{}, err
		}
		return nil, SweepHistoryOutput{Report: report, Count: 1}, nil
	}

	limit := args.Limit
	if limit <= 0 {
		limit = constants.DefaultHistoryLimit
	}
	limit = min(limit, constants.MaxHistoryLimit)

	runs, err := s.store.ListRuns(ctx, limit)
	if err != nil {
		return nil, SweepHistoryOutput{}, fmt.Errorf("failed to list runs: %w", err)
	}
	return nil, SweepHistoryOutput{Runs: runs, Count: len(runs)}, nil
}
