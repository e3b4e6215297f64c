package main

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/meikuraledutech/flow"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type api struct {
	store   flow.Store
	log     *slog.Logger
	metrics *metrics
}

type addNodeRequest struct {
	Type     flow.NodeType `json:"type"`
	Position flow.Position `json:"position"`
}

type appendNodeRequest struct {
	Type         flow.NodeType `json:"type"`
	SourceHandle flow.Handle   `json:"sourceHandle"`
}

type connectRequest struct {
	Source       string      `json:"source"`
	Target       string      `json:"target"`
	SourceHandle flow.Handle `json:"sourceHandle"`
}

type insertNodeRequest struct {
	Type flow.NodeType `json:"type"`
}

type deleteNodeResponse struct {
	flow.Deletion
	SelectionCleared bool `json:"selectionCleared"`
}

func newApp(store flow.Store, logger *slog.Logger, reg *prometheus.Registry) *fiber.App {
	a := &api{store: store, log: logger, metrics: newMetrics(reg)}

	app := fiber.New()
	app.Use(recoverer.New())
	app.Use(a.logRequests)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// ── Flows (bulk) ──────────────────────────────────────────────────
	app.Post("/flows", a.createFlow)
	app.Get("/flows", a.listFlows)
	app.Get("/flows/:id", a.getFlow)
	app.Get("/flows/:id/mermaid", a.getMermaid)
	app.Get("/flows/:id/ends", a.getEndNodes)
	app.Delete("/flows/:id", a.deleteFlow)

	// ── Nodes ─────────────────────────────────────────────────────────
	app.Post("/flows/:id/nodes", a.addNode)
	app.Patch("/flows/:id/nodes/:nodeId/config", a.updateNodeConfig)
	app.Put("/flows/:id/nodes/:nodeId/position", a.moveNode)
	app.Post("/flows/:id/nodes/:nodeId/append", a.appendNode)
	app.Post("/flows/:id/nodes/:nodeId/select", a.selectNode)
	app.Delete("/flows/:id/nodes/:nodeId", a.deleteNode)

	// ── Edges ─────────────────────────────────────────────────────────
	app.Post("/flows/:id/edges", a.connect)
	app.Post("/flows/:id/edges/:edgeId/insert", a.insertNode)
	app.Delete("/flows/:id/edges/:edgeId", a.removeEdge)

	return app
}

func (a *api) logRequests(c fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	status := c.Response().StatusCode()
	a.metrics.request(c.Method(), c.Route().Path, status)
	a.log.Debug("request",
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"duration", time.Since(start))
	return err
}

// fail writes err as a JSON error with the status matching its kind.
func (a *api) fail(c fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		a.log.Error("request failed", "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, flow.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, flow.ErrBranchTaken), errors.Is(err, flow.ErrDuplicateID):
		return fiber.StatusConflict
	case errors.Is(err, flow.ErrReference), errors.Is(err, flow.ErrInvalidConnection):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, flow.ErrInvalidNodeType),
		errors.Is(err, flow.ErrInvalidConfig),
		errors.Is(err, flow.ErrInvalidHandle):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// edit runs fn on the flow named by the :id param and records the mutation.
func (a *api) edit(c fiber.Ctx, op string, fn func(s *flow.Session) error) error {
	err := a.store.Edit(c.Context(), c.Params("id"), fn)
	a.metrics.observe(op, err)
	return err
}

func badBody(c fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body: " + err.Error()})
}

func (a *api) createFlow(c fiber.Ctx) error {
	var f flow.Flow
	if err := c.Bind().JSON(&f); err != nil {
		return badBody(c, err)
	}
	created, err := a.store.CreateFlow(c.Context(), &f)
	a.metrics.observe("create_flow", err)
	if err != nil {
		return a.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (a *api) listFlows(c fiber.Ctx) error {
	ids, err := a.store.ListFlows(c.Context())
	if err != nil {
		return a.fail(c, err)
	}
	return c.JSON(ids)
}

func (a *api) getFlow(c fiber.Ctx) error {
	f, err := a.store.GetFlow(c.Context(), c.Params("id"))
	if err != nil {
		return a.fail(c, err)
	}
	if f == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "flow not found"})
	}
	return c.JSON(f)
}

func (a *api) getMermaid(c fiber.Ctx) error {
	f, err := a.store.GetFlow(c.Context(), c.Params("id"))
	if err != nil {
		return a.fail(c, err)
	}
	if f == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "flow not found"})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(flow.Mermaid(f.Graph))
}

func (a *api) getEndNodes(c fiber.Ctx) error {
	var ends []flow.Node
	err := a.store.Edit(c.Context(), c.Params("id"), func(s *flow.Session) error {
		ends = s.EndNodes()
		return nil
	})
	if err != nil {
		return a.fail(c, err)
	}
	return c.JSON(ends)
}

func (a *api) deleteFlow(c fiber.Ctx) error {
	if err := a.store.DeleteFlow(c.Context(), c.Params("id")); err != nil {
		return a.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (a *api) addNode(c fiber.Ctx) error {
	var req addNodeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badBody(c, err)
	}
	var id string
	err := a.edit(c, "add_node", func(s *flow.Session) error {
		var err error
		id, err = s.AddNode(req.Type, req.Position)
		return err
	})
	if err != nil {
		return a.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

func (a *api) updateNodeConfig(c fiber.Ctx) error {
	var patch flow.ConfigPatch
	if err := c.Bind().JSON(&patch); err != nil {
		return badBody(c, err)
	}
	nodeID := c.Params("nodeId")
	var node flow.Node
	err := a.edit(c, "update_node_config", func(s *flow.Session) error {
		if err := s.UpdateNodeConfig(nodeID, patch); err != nil {
			return err
		}
		node, _ = s.Node(nodeID)
		return nil
	})
	if err != nil {
		return a.fail(c, err)
	}
	return c.JSON(node)
}

func (a *api) moveNode(c fiber.Ctx) error {
	var pos flow.Position
	if err := c.Bind().JSON(&pos); err != nil {
		return badBody(c, err)
	}
	err := a.edit(c, "move_node", func(s *flow.Session) error {
		return s.MoveNode(c.Params("nodeId"), pos)
	})
	if err != nil {
		return a.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (a *api) appendNode(c fiber.Ctx) error {
	var req appendNodeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badBody(c, err)
	}
	var id string
	err := a.edit(c, "append_node", func(s *flow.Session) error {
		var err error
		id, err = s.AppendNode(c.Params("nodeId"), req.Type, req.SourceHandle)
		return err
	})
	if err != nil {
		return a.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

func (a *api) selectNode(c fiber.Ctx) error {
	err := a.store.Edit(c.Context(), c.Params("id"), func(s *flow.Session) error {
		return s.Select(c.Params("nodeId"))
	})
	if err != nil {
		return a.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (a *api) deleteNode(c fiber.Ctx) error {
	var resp deleteNodeResponse
	err := a.edit(c, "delete_node", func(s *flow.Session) error {
		resp.Deletion, resp.SelectionCleared = s.DeleteNode(c.Params("nodeId"))
		return nil
	})
	if err != nil {
		return a.fail(c, err)
	}
	return c.JSON(resp)
}

func (a *api) connect(c fiber.Ctx) error {
	var req connectRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badBody(c, err)
	}
	var id string
	err := a.edit(c, "connect", func(s *flow.Session) error {
		var err error
		id, err = s.Connect(req.Source, req.Target, req.SourceHandle)
		return err
	})
	if err != nil {
		return a.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

func (a *api) insertNode(c fiber.Ctx) error {
	var req insertNodeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badBody(c, err)
	}
	var id string
	err := a.edit(c, "insert_node_on_edge", func(s *flow.Session) error {
		var err error
		id, err = s.InsertNodeOnEdge(c.Params("edgeId"), req.Type)
		return err
	})
	if err != nil {
		return a.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

func (a *api) removeEdge(c fiber.Ctx) error {
	err := a.edit(c, "remove_edge", func(s *flow.Session) error {
		s.RemoveEdge(c.Params("edgeId"))
		return nil
	})
	if err != nil {
		return a.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
