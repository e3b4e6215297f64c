package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/meikuraledutech/flow"
	"github.com/meikuraledutech/flow/internal/logging"
	"github.com/meikuraledutech/flow/memory"
)

func main() {
	ctx := context.Background()

	var store flow.Store = memory.New(flow.WithLogger(logging.NewNop()))

	// ── Bulk insert using refs ────────────────────────────────────────
	trigger := flow.Node{
		Ref:      "start",
		Type:     flow.NodeTrigger,
		Position: flow.Position{X: 300, Y: 100},
		Data:     flow.NodeData{Config: flow.TriggerConfig{TriggerType: "order_placed"}},
	}
	reply := flow.Node{
		Ref:      "sms",
		Type:     flow.NodeAction,
		Position: flow.Position{X: 300, Y: 250},
		Data:     flow.NodeData{Config: flow.ActionConfig{ActionType: "send_sms"}},
	}

	created, err := store.CreateFlow(ctx, &flow.Flow{
		ID: "order-reminder",
		Graph: flow.Graph{
			Nodes: []flow.Node{trigger, reply},
			Edges: []flow.Edge{{SourceRef: "start", TargetRef: "sms"}},
		},
	})
	if err != nil {
		log.Fatalf("create flow: %v", err)
	}
	fmt.Println("flow created (bulk with refs)")
	printJSON(created)

	// ── Insert a condition between trigger and SMS ────────────────────
	var condID string
	err = store.Edit(ctx, created.ID, func(s *flow.Session) error {
		var err error
		condID, err = s.InsertNodeOnEdge(created.Edges[0].ID, flow.NodeCondition)
		if err != nil {
			return err
		}
		if err := s.UpdateNodeConfig(condID, flow.ConfigPatch{"condition": "any_reply"}); err != nil {
			return err
		}

		// Give the "false" branch a delay followed by a follow-up SMS.
		delayID, err := s.AppendNode(condID, flow.NodeDelay, flow.HandleFalse)
		if err != nil {
			return err
		}
		if err := s.UpdateNodeConfig(delayID, flow.ConfigPatch{"delayAmount": 3, "delayUnit": "hours"}); err != nil {
			return err
		}
		_, err = s.AppendNode(delayID, flow.NodeAction, flow.HandleNone)
		return err
	})
	if err != nil {
		log.Fatalf("edit: %v", err)
	}

	result, err := store.GetFlow(ctx, created.ID)
	if err != nil {
		log.Fatalf("get flow: %v", err)
	}
	fmt.Println("\nflow after edits:")
	fmt.Print(flow.Mermaid(result.Graph))

	// ── Delete the condition, reconnecting its branches ───────────────
	err = store.Edit(ctx, created.ID, func(s *flow.Session) error {
		if err := s.Select(condID); err != nil {
			return err
		}
		d, cleared := s.DeleteNode(condID)
		fmt.Printf("\ndeleted %s: %d reconnected, selection cleared: %v\n", condID, len(d.Reconnected), cleared)
		return nil
	})
	if err != nil {
		log.Fatalf("delete node: %v", err)
	}

	result, err = store.GetFlow(ctx, created.ID)
	if err != nil {
		log.Fatalf("get flow: %v", err)
	}
	fmt.Print(flow.Mermaid(result.Graph))

	// ── Cleanup ───────────────────────────────────────────────────────
	if err := store.DeleteFlow(ctx, created.ID); err != nil {
		log.Fatalf("delete: %v", err)
	}
	fmt.Println("\nflow deleted")
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
