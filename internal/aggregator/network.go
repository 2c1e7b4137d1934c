// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregator

import (
	"context"
	"fmt"

	"github.com/pdiddy/academic-mcp/pkg/types"
)

// Directions a citation network can grow in.
const (
	DirectionCiting = "citing"
	DirectionCited  = "cited"
	DirectionBoth   = "both"
)

// neighborFetchCap bounds how many neighbors one side of the network
// pulls, independent of the caller's node budget.
const neighborFetchCap = 20

// GetCitationNetwork builds a one-hop citation graph around the
// identifier. The citing side lists papers citing the center via the
// citation index; the cited side resolves the center's reference list
// from OpenAlex. Growth stops at maxNodes; each side degrades to
// nothing when its backend fails, so a center that resolves always
// yields a network.
func (a *Aggregator) GetCitationNetwork(ctx context.Context, id string, maxNodes int, direction string) (*types.CitationNetwork, error) {
	center, err := a.GetPaper(ctx, id)
	if err != nil {
		return nil, err
	}
	if center == nil {
		return nil, fmt.Errorf("paper not found: %s", id)
	}

	network := &types.CitationNetwork{
		CenterPaperID: center.ID,
		Depth:         1,
		Nodes:         []types.NetworkNode{networkNode(center)},
		Edges:         []types.NetworkEdge{},
	}
	seen := map[string]bool{center.ID: true}

	if direction == DirectionCiting || direction == DirectionBoth {
		a.growCiting(ctx, center, network, seen, maxNodes)
	}
	if direction == DirectionCited || direction == DirectionBoth {
		a.growCited(ctx, center, network, seen, maxNodes)
	}

	network.Truncated = len(network.Nodes) >= maxNodes
	return network, nil
}

// growCiting adds papers that cite the center, with edges pointing at
// the center.
func (a *Aggregator) growCiting(ctx context.Context, center *types.Paper, network *types.CitationNetwork, seen map[string]bool, maxNodes int) {
	budget := sideBudget(maxNodes, len(network.Nodes))
	if budget <= 0 {
		return
	}
	citations, err := a.GetCitations(ctx, center.ID, budget, 0)
	if err != nil {
		a.log.Warn("citing side of network unavailable", "paper_id", center.ID, "error", err)
		return
	}
	for i := range citations.CitingPapers {
		p := &citations.CitingPapers[i]
		if seen[p.ID] || len(network.Nodes) >= maxNodes {
			continue
		}
		seen[p.ID] = true
		network.Nodes = append(network.Nodes, networkNode(p))
		network.Edges = append(network.Edges, types.NetworkEdge{Source: p.ID, Target: center.ID})
	}
}

// growCited adds papers the center references, with edges pointing
// away from the center. Reference ids are OpenAlex work ids, so each
// resolves through the OpenAlex adapter directly; ids that fail to
// resolve are skipped.
func (a *Aggregator) growCited(ctx context.Context, center *types.Paper, network *types.CitationNetwork, seen map[string]bool, maxNodes int) {
	budget := sideBudget(maxNodes, len(network.Nodes))
	if budget <= 0 {
		return
	}
	refs, err := a.openAlex.ReferencedWorks(ctx, center.ID)
	if err != nil {
		a.log.Warn("cited side of network unavailable", "paper_id", center.ID, "error", err)
		return
	}
	if len(refs) > budget {
		refs = refs[:budget]
	}
	for _, refID := range refs {
		if len(network.Nodes) >= maxNodes {
			return
		}
		ref, err := a.openAlex.GetPaper(ctx, refID)
		if err != nil {
			a.log.Debug("skipping unresolvable reference", "paper_id", refID, "error", err)
			continue
		}
		if ref == nil || seen[ref.ID] {
			continue
		}
		seen[ref.ID] = true
		network.Nodes = append(network.Nodes, networkNode(ref))
		network.Edges = append(network.Edges, types.NetworkEdge{Source: center.ID, Target: ref.ID})
	}
}

// sideBudget caps one side's pull at the remaining node budget.
func sideBudget(maxNodes, have int) int {
	budget := maxNodes - have
	if budget > neighborFetchCap {
		budget = neighborFetchCap
	}
	return budget
}

func networkNode(p *types.Paper) types.NetworkNode {
	return types.NetworkNode{
		PaperID:       p.ID,
		Title:         p.Title,
		Year:          p.Year,
		CitationCount: p.CitationCount,
	}
}
