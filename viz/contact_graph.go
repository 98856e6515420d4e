// ABOUTME: Single-contact graph generation with graphviz
// ABOUTME: Shows one contact with its deals and the activities logged against either
package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/harperreed/dealdesk/models"
)

func (g *GraphGenerator) GenerateContactGraph(ctx context.Context, contactID int) (string, error) {
	contact, err := g.store.Contacts.GetByID(ctx, contactID)
	if err != nil {
		return "", err
	}
	deals, err := g.store.Deals.GetByContactID(ctx, contactID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch deals: %w", err)
	}
	activities, err := g.store.Activities.GetByContactID(ctx, contactID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch activities: %w", err)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz instance: %w", err)
	}
	defer gv.Close()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer graph.Close()

	graph.SetRankDir(cgraph.LRRank)

	root, err := graph.CreateNodeByName(fmt.Sprintf("contact_%d", contact.ID))
	if err != nil {
		return "", fmt.Errorf("failed to create contact node: %w", err)
	}
	root.SetLabel(fmt.Sprintf("%s\n%s", contact.Name, contact.Email))
	root.SetShape("ellipse")
	root.SetStyle("filled")
	root.SetFillColor("lightgreen")

	dealNodes := make(map[int]*cgraph.Node)
	for _, d := range deals {
		node, err := graph.CreateNodeByName(fmt.Sprintf("deal_%d", d.ID))
		if err != nil {
			return "", fmt.Errorf("failed to create deal node: %w", err)
		}
		node.SetLabel(fmt.Sprintf("%s\n%s\n(%s)", d.Title, FormatMoney(d.Value), d.Stage))
		node.SetShape("diamond")
		node.SetStyle("filled")
		node.SetFillColor("lightyellow")
		dealNodes[d.ID] = node

		if _, err := graph.CreateEdgeByName(fmt.Sprintf("owns_%d", d.ID), root, node); err != nil {
			return "", fmt.Errorf("failed to create edge: %w", err)
		}
	}

	for _, a := range activities {
		node, err := graph.CreateNodeByName(fmt.Sprintf("activity_%d", a.ID))
		if err != nil {
			return "", fmt.Errorf("failed to create activity node: %w", err)
		}
		node.SetLabel(fmt.Sprintf("%s\n%s", a.Type, a.Timestamp.Format("Jan 2")))
		node.SetShape("note")
		node.SetFillColor(activityColor(a.Type))
		node.SetStyle("filled")

		parent := root
		if a.DealID != nil {
			if dn, ok := dealNodes[*a.DealID]; ok {
				parent = dn
			}
		}
		edge, err := graph.CreateEdgeByName(fmt.Sprintf("logged_%d", a.ID), parent, node)
		if err != nil {
			return "", fmt.Errorf("failed to create edge: %w", err)
		}
		edge.SetStyle("dashed")
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}

	return buf.String(), nil
}

func activityColor(t models.ActivityType) string {
	switch t {
	case models.ActivityCall:
		return "lightblue"
	case models.ActivityEmail:
		return "lavender"
	case models.ActivityMeeting:
		return "peachpuff"
	case models.ActivityDemo:
		return "khaki"
	case models.ActivityTask:
		return "mistyrose"
	default:
		return "white"
	}
}
