package engine

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/vira-assistant/server/internal/assistant/model"
	logx "github.com/vira-assistant/server/pkg/logger"
)

const maxRunSteps = 20

// buildGraph wires
//
//	prepare -> resolve_employee -+-> finish
//	                             +-> extract_slots -+-> confirm  -> finish
//	                                                +-> book     -> finish
//	                                                +-> generate -> finish
func (e *Engine) buildGraph(ctx context.Context) (compose.Runnable[model.TurnInput, *model.TurnResult], error) {
	g := compose.NewGraph[model.TurnInput, *model.TurnResult](
		compose.WithGenLocalState(func(ctx context.Context) *turnState {
			return &turnState{}
		}),
	)

	nodes := []struct {
		key  string
		node *compose.Lambda
		opts []compose.GraphAddNodeOpt
	}{
		{key: NodePrepare, node: e.newPrepareNode()},
		{key: NodeResolve, node: e.newResolveNode(), opts: []compose.GraphAddNodeOpt{compose.WithStatePostHandler(newUsagePostHandler())}},
		{key: NodeExtract, node: e.newExtractNode()},
		{key: NodeConfirm, node: newConfirmNode()},
		{key: NodeBook, node: e.newBookNode()},
		{key: NodeGenerate, node: e.newGenerateNode(), opts: []compose.GraphAddNodeOpt{compose.WithStatePostHandler(newUsagePostHandler())}},
		{key: NodeFinish, node: e.newFinishNode()},
	}
	for _, n := range nodes {
		if err := g.AddLambdaNode(n.key, n.node, n.opts...); err != nil {
			return nil, fmt.Errorf("add node %s: %w", n.key, err)
		}
	}

	edges := [][2]string{
		{compose.START, NodePrepare},
		{NodePrepare, NodeResolve},
		{NodeConfirm, NodeFinish},
		{NodeBook, NodeFinish},
		{NodeGenerate, NodeFinish},
		{NodeFinish, compose.END},
	}
	for _, edge := range edges {
		if err := g.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s -> %s: %w", edge[0], edge[1], err)
		}
	}

	resolvedBranch := compose.NewGraphBranch(newResolvedCondition(), map[string]bool{
		NodeFinish:  true,
		NodeExtract: true,
	})
	if err := g.AddBranch(NodeResolve, resolvedBranch); err != nil {
		return nil, fmt.Errorf("error adding resolved branch: %w", err)
	}

	decisionBranch := compose.NewGraphBranch(newDecisionCondition(), map[string]bool{
		NodeConfirm:  true,
		NodeBook:     true,
		NodeGenerate: true,
	})
	if err := g.AddBranch(NodeExtract, decisionBranch); err != nil {
		return nil, fmt.Errorf("error adding decision branch: %w", err)
	}

	runnable, err := g.Compile(ctx,
		compose.WithGraphName("booking_turn"),
		compose.WithMaxRunSteps(maxRunSteps),
	)
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Dialogue graph compiled successfully")
	return runnable, nil
}
