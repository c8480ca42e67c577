// Package router re-exports the Tenant Router under the ingestion
// pipeline's vocabulary: RawEvent here is tenant/application.RawEvent, the
// subset of the inbound transport event that Service.Route needs.
package router

import (
	"context"

	tenantapp "github.com/doualaexpress/deligate/tenant/application"
)

type Router struct {
	svc *tenantapp.Service
}

func New(svc *tenantapp.Service) *Router {
	return &Router{svc: svc}
}

func (r *Router) Route(ctx context.Context, ev tenantapp.RawEvent) (tenantapp.Routed, error) {
	return r.svc.Route(ctx, ev)
}
