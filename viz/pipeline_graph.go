// ABOUTME: Pipeline graph generation with graphviz
// ABOUTME: Renders stages as a chain with each deal hanging off its stage and linked to its contact
package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/harperreed/dealdesk/db"
)

type GraphGenerator struct {
	store *db.Store
}

func NewGraphGenerator(store *db.Store) *GraphGenerator {
	return &GraphGenerator{store: store}
}

// GeneratePipelineGraph returns DOT source for the whole pipeline.
func (g *GraphGenerator) GeneratePipelineGraph(ctx context.Context) (string, error) {
	stages, err := g.store.Stages.GetAll(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch stages: %w", err)
	}
	deals, err := g.store.Deals.GetAll(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch deals: %w", err)
	}
	contacts, err := g.store.Contacts.GetAll(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch contacts: %w", err)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz: %w", err)
	}
	defer func() { _ = gv.Close() }()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer func() { _ = graph.Close() }()

	graph.SetLabel("Sales Pipeline")
	graph.SetRankDir(cgraph.LRRank)

	stageNodes := make(map[string]*cgraph.Node)
	var prev *cgraph.Node
	for _, st := range stages {
		if _, dup := stageNodes[st.Name]; dup {
			continue
		}
		node, err := graph.CreateNodeByName(fmt.Sprintf("stage_%d", st.ID))
		if err != nil {
			return "", fmt.Errorf("failed to create stage node: %w", err)
		}
		node.SetLabel(st.Name)
		node.SetShape("box")
		node.SetStyle("filled")
		node.SetFillColor(stageColor(st.Color))
		stageNodes[st.Name] = node

		if prev != nil {
			edge, err := graph.CreateEdgeByName(fmt.Sprintf("next_%d", st.ID), prev, node)
			if err != nil {
				return "", fmt.Errorf("failed to create stage edge: %w", err)
			}
			edge.SetStyle("bold")
		}
		prev = node
	}

	contactNodes := make(map[int]*cgraph.Node)
	for _, c := range contacts {
		node, err := graph.CreateNodeByName(fmt.Sprintf("contact_%d", c.ID))
		if err != nil {
			return "", fmt.Errorf("failed to create contact node: %w", err)
		}
		label := c.Name
		if c.Company != "" {
			label = fmt.Sprintf("%s\n%s", c.Name, c.Company)
		}
		node.SetLabel(label)
		node.SetShape("ellipse")
		node.SetStyle("filled")
		node.SetFillColor("lightgreen")
		contactNodes[c.ID] = node
	}

	for _, d := range deals {
		node, err := graph.CreateNodeByName(fmt.Sprintf("deal_%d", d.ID))
		if err != nil {
			return "", fmt.Errorf("failed to create deal node: %w", err)
		}
		node.SetLabel(fmt.Sprintf("%s\n%s (%d%%)", d.Title, FormatMoney(d.Value), d.Probability))
		node.SetShape("diamond")
		node.SetStyle("filled")
		node.SetFillColor("lightyellow")

		stageNode, ok := stageNodes[d.Stage]
		if !ok {
			// deal in a stage with no Stage record
			stageNode, err = graph.CreateNodeByName("stage_" + d.Stage)
			if err != nil {
				return "", fmt.Errorf("failed to create stage node: %w", err)
			}
			stageNode.SetLabel(d.Stage)
			stageNode.SetShape("box")
			stageNode.SetStyle("dashed")
			stageNodes[d.Stage] = stageNode
		}
		edge, err := graph.CreateEdgeByName(fmt.Sprintf("in_%d", d.ID), stageNode, node)
		if err != nil {
			return "", fmt.Errorf("failed to create edge: %w", err)
		}
		edge.SetStyle("dotted")

		if contactNode, ok := contactNodes[d.ContactID]; ok {
			edge, err := graph.CreateEdgeByName(fmt.Sprintf("contact_for_%d", d.ID), contactNode, node)
			if err != nil {
				return "", fmt.Errorf("failed to create edge: %w", err)
			}
			edge.SetLabel("contact")
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}

	return buf.String(), nil
}

func stageColor(color string) string {
	if color == "" {
		return "lightgray"
	}
	return color
}
