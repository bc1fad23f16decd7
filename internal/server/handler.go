package server

import (
	"context"

	"github.com/go-kratos/kratos/v2/errors"
	kratoshttp "github.com/go-kratos/kratos/v2/transport/http"
	"github.com/google/uuid"

	"github.com/go-tangra/go-tangra-tailscale-inventory/internal/collector"
	"github.com/go-tangra/go-tangra-tailscale-inventory/internal/convert"
	"github.com/go-tangra/go-tangra-tailscale-inventory/internal/inventory"
	"github.com/go-tangra/go-tangra-tailscale-inventory/internal/logging"
)

const (
	OperationListInventory = "/tailscale.inventory.v1.Inventory/List"
	OperationGetHostVars   = "/tailscale.inventory.v1.Inventory/HostVars"

	// ReasonStatusUnavailable is the error reason returned when tailscale
	// could not be queried.
	ReasonStatusUnavailable = "STATUS_UNAVAILABLE"

	requestIDHeader = "X-Request-Id"
)

// StatusSource provides a fresh tailscale status. *collector.Client
// satisfies it.
type StatusSource interface {
	Status(ctx context.Context) (*collector.Status, error)
}

// Handler serves inventories built from a StatusSource. Every call queries
// tailscale again; nothing is cached between requests.
type Handler struct {
	src    StatusSource
	logger *logging.Logger
}

// NewHandler creates a Handler backed by src.
func NewHandler(src StatusSource, logger *logging.Logger) *Handler {
	return &Handler{src: src, logger: logger}
}

// ListInventory returns the full Ansible `--list` document.
func (h *Handler) ListInventory(ctx context.Context, requestID string) (convert.Document, error) {
	inv, err := h.build(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return convert.ToAnsible(inv), nil
}

// GetHostVars returns the vars of one host, or an empty object for an
// unknown host, matching the Ansible `--host` protocol.
func (h *Handler) GetHostVars(ctx context.Context, requestID, host string) (any, error) {
	inv, err := h.build(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return convert.HostVars(inv, host), nil
}

func (h *Handler) build(ctx context.Context, requestID string) (*inventory.Inventory, error) {
	st, err := h.src.Status(ctx)
	if err != nil {
		h.logger.Error("tailscale status unavailable", "request_id", requestID, "error", err)
		return nil, errors.ServiceUnavailable(ReasonStatusUnavailable, err.Error())
	}

	inv := inventory.FromStatus(st)
	h.logger.Info("inventory built",
		"request_id", requestID,
		"backend_state", st.BackendState,
		"peers", len(st.Peer),
		"groups", inv.Groups.Len(),
		"hosts", len(inv.HostVars),
	)
	return inv, nil
}

// register wires the handler's routes into srv.
func (h *Handler) register(srv *kratoshttp.Server) {
	r := srv.Route("/")
	r.GET("/inventory", h.listInventoryHTTP)
	r.GET("/inventory/hosts/{host}", h.getHostVarsHTTP)
}

func (h *Handler) listInventoryHTTP(ctx kratoshttp.Context) error {
	requestID := newRequestID(ctx)
	kratoshttp.SetOperation(ctx, OperationListInventory)
	m := ctx.Middleware(func(ctx context.Context, _ interface{}) (interface{}, error) {
		return h.ListInventory(ctx, requestID)
	})
	out, err := m(ctx, nil)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

func (h *Handler) getHostVarsHTTP(ctx kratoshttp.Context) error {
	requestID := newRequestID(ctx)
	host := ctx.Vars().Get("host")
	kratoshttp.SetOperation(ctx, OperationGetHostVars)
	m := ctx.Middleware(func(ctx context.Context, _ interface{}) (interface{}, error) {
		return h.GetHostVars(ctx, requestID, host)
	})
	out, err := m(ctx, host)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

func newRequestID(ctx kratoshttp.Context) string {
	id := uuid.NewString()
	ctx.Response().Header().Set(requestIDHeader, id)
	return id
}
