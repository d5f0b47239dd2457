/*-------------------------------------------------------------------------
 *
 * handlers.go
 *    API handlers for the Loanzaar workflow server
 *
 * Provides HTTP handlers for applications, status proposals, approval
 * decisions, remarks, and audit history.
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    internal/api/handlers.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Vivekray898/loanzaar-server/internal/audit"
	"github.com/Vivekray898/loanzaar-server/internal/auth"
	"github.com/Vivekray898/loanzaar-server/internal/catalog"
	"github.com/Vivekray898/loanzaar-server/internal/db"
	"github.com/Vivekray898/loanzaar-server/internal/metrics"
	"github.com/Vivekray898/loanzaar-server/internal/projection"
	"github.com/Vivekray898/loanzaar-server/internal/validation"
	"github.com/Vivekray898/loanzaar-server/internal/workflow"
)

/* Request bodies are small JSON documents */
const maxBodySize = 64 * 1024

/* Store is the storage surface the handlers need beyond the workflow
 * engine: intake, assignment, and dashboard listings. Both the Postgres
 * queries and the in-memory store satisfy it. */
type Store interface {
	workflow.Store
	CreateApplication(ctx context.Context, app *db.Application) error
	ListApplicationsForAgent(ctx context.Context, agentID uuid.UUID, limit, offset int) ([]db.Application, error)
	ListPendingApproval(ctx context.Context, limit, offset int) ([]db.Application, error)
	AssignAgent(ctx context.Context, appID, agentID uuid.UUID) (*db.Application, error)
}

type Handlers struct {
	store     Store
	engine    *workflow.Engine
	projector *projection.Projector
	idem      *InMemoryIdemStore
}

func NewHandlers(store Store, engine *workflow.Engine, projector *projection.Projector) *Handlers {
	return &Handlers{
		store:     store,
		engine:    engine,
		projector: projector,
		idem:      NewInMemoryIdemStore(),
	}
}

/* Applications */

func (h *Handlers) CreateApplication(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	actor, ok := requireRole(w, r, auth.RoleAdmin)
	if !ok {
		return
	}

	var req CreateApplicationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	req.BorrowerName = validation.SanitizeString(req.BorrowerName)
	if err := validation.ValidateRequired(req.BorrowerName, "borrower_name"); err != nil {
		respondError(w, WrapError(NewError(http.StatusBadRequest, "invalid application", err), requestID))
		return
	}
	if err := validation.ValidateMaxLength(req.BorrowerName, "borrower_name", 255); err != nil {
		respondError(w, WrapError(NewError(http.StatusBadRequest, "invalid application", err), requestID))
		return
	}
	if err := validation.ValidateRequired(req.LoanType, "loan_type"); err != nil {
		respondError(w, WrapError(NewError(http.StatusBadRequest, "invalid application", err), requestID))
		return
	}
	if req.LoanAmount != nil {
		if err := validation.ValidateLoanAmount(*req.LoanAmount); err != nil {
			respondError(w, WrapError(NewError(http.StatusBadRequest, "invalid application", err), requestID))
			return
		}
	}

	app := &db.Application{
		BorrowerName:    req.BorrowerName,
		LoanType:        req.LoanType,
		LoanAmount:      req.LoanAmount,
		Status:          catalog.StatusNew,
		AssignedAgentID: req.AgentID,
		Metadata:        db.FromMap(req.Metadata),
	}
	if req.BorrowerPhone != "" {
		phone := validation.SanitizePhone(req.BorrowerPhone)
		if err := validation.ValidatePhone(phone); err != nil {
			respondError(w, WrapError(NewError(http.StatusBadRequest, "invalid application", err), requestID))
			return
		}
		app.BorrowerPhone = &phone
	}

	if err := h.store.CreateApplication(r.Context(), app); err != nil {
		respondError(w, NewErrorWithContext(http.StatusInternalServerError, "application creation failed", err, requestID, r.URL.Path, r.Method, "application", map[string]interface{}{
			"borrower_name": req.BorrowerName,
			"loan_type":     req.LoanType,
		}))
		return
	}

	metrics.InfoWithContext(r.Context(), "Application created", map[string]interface{}{
		"application_id": app.ID.String(),
		"actor_id":       actor.ID.String(),
	})
	respondJSON(w, http.StatusCreated, toApplicationResponse(app))
}

func (h *Handlers) GetApplicationView(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	appID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	view, err := h.projector.GetView(r.Context(), appID)
	if err != nil {
		respondError(w, mapWorkflowError(err, requestID))
		return
	}

	respondJSON(w, http.StatusOK, toViewResponse(view))
}

func (h *Handlers) ListAgentApplications(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	agentID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	actor, err := auth.MustActorFromContext(r.Context())
	if err != nil {
		respondError(w, WrapError(ErrUnauthorized, requestID))
		return
	}
	/* Agents see only their own queue; admins can read any */
	if actor.Role == auth.RoleAgent && actor.ID != agentID {
		respondError(w, WrapError(ErrForbidden, requestID))
		return
	}

	limit, offset, ok := paginationParams(w, r)
	if !ok {
		return
	}

	apps, err := h.store.ListApplicationsForAgent(r.Context(), agentID, limit, offset)
	if err != nil {
		respondError(w, WrapError(NewError(http.StatusInternalServerError, "failed to list applications", err), requestID))
		return
	}

	responses := make([]ApplicationResponse, 0, len(apps))
	for i := range apps {
		responses = append(responses, toApplicationResponse(&apps[i]))
	}
	respondJSON(w, http.StatusOK, responses)
}

func (h *Handlers) ListPendingApplications(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	if _, ok := requireRole(w, r, auth.RoleAdmin); !ok {
		return
	}

	limit, offset, ok := paginationParams(w, r)
	if !ok {
		return
	}

	apps, err := h.store.ListPendingApproval(r.Context(), limit, offset)
	if err != nil {
		respondError(w, WrapError(NewError(http.StatusInternalServerError, "failed to list pending applications", err), requestID))
		return
	}

	responses := make([]ApplicationResponse, 0, len(apps))
	for i := range apps {
		responses = append(responses, toApplicationResponse(&apps[i]))
	}
	respondJSON(w, http.StatusOK, responses)
}

func (h *Handlers) AssignAgent(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	if _, ok := requireRole(w, r, auth.RoleAdmin); !ok {
		return
	}

	appID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req AssignAgentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.AgentID == uuid.Nil {
		respondError(w, WrapError(NewError(http.StatusBadRequest, "agent_id is required", nil), requestID))
		return
	}

	app, err := h.store.AssignAgent(r.Context(), appID, req.AgentID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, WrapError(ErrNotFound, requestID))
			return
		}
		respondError(w, WrapError(NewError(http.StatusInternalServerError, "failed to assign agent", err), requestID))
		return
	}

	respondJSON(w, http.StatusOK, toApplicationResponse(app))
}

/* Workflow */

func (h *Handlers) ProposeTransition(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	actor, err := auth.MustActorFromContext(r.Context())
	if err != nil {
		respondError(w, WrapError(ErrUnauthorized, requestID))
		return
	}

	appID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	/* A retried submission with the same key replays the first response */
	idemKey := r.Header.Get("Idempotency-Key")
	if idemKey != "" {
		if rec, found := h.idem.Get(idemKey); found {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(rec.StatusCode)
			w.Write(rec.Body)
			return
		}
	}

	var req ProposeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	app, err := h.engine.ProposeTransition(r.Context(), appID, actor, catalog.Status(req.ToStatus))
	if err != nil {
		respondError(w, mapWorkflowError(err, requestID))
		return
	}

	resp := toApplicationResponse(app)
	if idemKey != "" {
		body, marshalErr := json.Marshal(resp)
		if marshalErr == nil {
			h.idem.Put(IdemRecord{IdemKey: idemKey, StatusCode: http.StatusOK, Body: body})
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handlers) ResolveProposal(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	actor, err := auth.MustActorFromContext(r.Context())
	if err != nil {
		respondError(w, WrapError(ErrUnauthorized, requestID))
		return
	}

	appID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req ResolveRequest
	if !decodeBody(w, r, &req) {
		return
	}

	app, err := h.engine.ResolveProposal(r.Context(), appID, actor, workflow.Decision(req.Decision), req.Reason)
	if err != nil {
		respondError(w, mapWorkflowError(err, requestID))
		return
	}

	respondJSON(w, http.StatusOK, toApplicationResponse(app))
}

func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	appID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	entries, err := h.engine.GetHistory(r.Context(), appID)
	if err != nil {
		respondError(w, mapWorkflowError(err, requestID))
		return
	}

	responses := make([]TransitionResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, toTransitionResponse(&entries[i]))
	}
	respondJSON(w, http.StatusOK, responses)
}

/* VerifyAudit replays the transition log and reports whether it
 * reproduces the stored application state */
func (h *Handlers) VerifyAudit(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	if _, ok := requireRole(w, r, auth.RoleAdmin); !ok {
		return
	}

	appID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	app, err := h.store.GetApplicationByID(r.Context(), appID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, WrapError(ErrNotFound, requestID))
			return
		}
		respondError(w, WrapError(NewError(http.StatusInternalServerError, "failed to load application", err), requestID))
		return
	}

	entries, err := h.store.ListTransitions(r.Context(), appID)
	if err != nil {
		respondError(w, WrapError(NewError(http.StatusInternalServerError, "failed to load transitions", err), requestID))
		return
	}

	resp := VerifyResponse{ApplicationID: appID, Consistent: true}
	if err := audit.VerifyReplay(app, entries); err != nil {
		resp.Consistent = false
		resp.Detail = err.Error()
	}
	respondJSON(w, http.StatusOK, resp)
}

/* Remarks */

func (h *Handlers) AddRemark(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	actor, err := auth.MustActorFromContext(r.Context())
	if err != nil {
		respondError(w, WrapError(ErrUnauthorized, requestID))
		return
	}

	appID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req AddRemarkRequest
	if !decodeBody(w, r, &req) {
		return
	}

	remark, err := h.engine.AddRemark(r.Context(), appID, actor, req.Text)
	if err != nil {
		respondError(w, mapWorkflowError(err, requestID))
		return
	}

	respondJSON(w, http.StatusCreated, toRemarkResponse(remark))
}

func (h *Handlers) ListRemarks(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	appID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if _, err := h.store.GetApplicationByID(r.Context(), appID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, WrapError(ErrNotFound, requestID))
			return
		}
		respondError(w, WrapError(NewError(http.StatusInternalServerError, "failed to load application", err), requestID))
		return
	}

	remarks, err := h.store.ListRemarks(r.Context(), appID)
	if err != nil {
		respondError(w, WrapError(NewError(http.StatusInternalServerError, "failed to list remarks", err), requestID))
		return
	}

	responses := make([]RemarkResponse, 0, len(remarks))
	for i := range remarks {
		responses = append(responses, toRemarkResponse(&remarks[i]))
	}
	respondJSON(w, http.StatusOK, responses)
}

/* Helper functions */

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	requestID := GetRequestID(r.Context())

	bodyBytes, err := validation.ReadAndValidateBody(r, maxBodySize)
	if err != nil {
		respondError(w, NewErrorWithContext(http.StatusBadRequest, "request body validation failed", err, requestID, r.URL.Path, r.Method, "application", nil))
		return false
	}
	r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, NewErrorWithContext(http.StatusBadRequest, "request body parsing failed", err, requestID, r.URL.Path, r.Method, "application", map[string]interface{}{
			"body_size": len(bodyBytes),
		}))
		return false
	}
	return true
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	requestID := GetRequestID(r.Context())

	id, err := validation.ValidateUUID(mux.Vars(r)[name], name)
	if err != nil {
		respondError(w, WrapError(NewError(http.StatusBadRequest, "invalid path parameter", err), requestID))
		return uuid.Nil, false
	}
	return id, true
}

func requireRole(w http.ResponseWriter, r *http.Request, role auth.Role) (*auth.Actor, bool) {
	requestID := GetRequestID(r.Context())

	actor, err := auth.MustActorFromContext(r.Context())
	if err != nil {
		respondError(w, WrapError(ErrUnauthorized, requestID))
		return nil, false
	}
	if actor.Role != role {
		respondError(w, WrapError(ErrForbidden, requestID))
		return nil, false
	}
	return actor, true
}

func paginationParams(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	requestID := GetRequestID(r.Context())

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, WrapError(NewError(http.StatusBadRequest, "invalid limit parameter", err), requestID))
			return 0, 0, false
		}
		limit = parsed
	}
	if err := validation.ValidateLimit(limit); err != nil {
		respondError(w, WrapError(NewError(http.StatusBadRequest, "invalid limit parameter", err), requestID))
		return 0, 0, false
	}

	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, WrapError(NewError(http.StatusBadRequest, "invalid offset parameter", err), requestID))
			return 0, 0, false
		}
		offset = parsed
	}
	if err := validation.ValidateOffset(offset); err != nil {
		respondError(w, WrapError(NewError(http.StatusBadRequest, "invalid offset parameter", err), requestID))
		return 0, 0, false
	}

	return limit, offset, true
}
