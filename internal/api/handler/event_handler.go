package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	apimw "github.com/civicpulse/request-notifier/internal/api/middleware"
	"github.com/civicpulse/request-notifier/internal/domain"
)

// Notifier is satisfied by *service.StatusChangeNotifier.
type Notifier interface {
	Handle(ctx context.Context, ev domain.ChangeEvent) domain.Outcome
}

// EventHandler exposes the notifier to event systems that push change
// events over HTTP. Each request is one invocation, handled synchronously.
type EventHandler struct {
	notifier Notifier
	logger   *zap.Logger
}

func NewEventHandler(notifier Notifier, logger *zap.Logger) *EventHandler {
	return &EventHandler{notifier: notifier, logger: logger}
}

type outcomeResponse struct {
	Outcome domain.Outcome `json:"outcome"`
}

// RequestUpdated handles POST /api/v1/events/request-updated
//
// @Summary  Deliver one service-request update to the status notifier
// @Tags     events
// @Accept   json
// @Produce  json
// @Param    body  body      domain.ChangeEvent  true  "Before/after snapshots"
// @Success  200   {object}  outcomeResponse
// @Failure  400   {object}  map[string]string
// @Router   /api/v1/events/request-updated [post]
func (h *EventHandler) RequestUpdated(w http.ResponseWriter, r *http.Request) {
	var ev domain.ChangeEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	h.handle(w, r, ev)
}

// PushEnvelope is the body Google Pub/Sub posts to push subscriptions.
type PushEnvelope struct {
	Message struct {
		Data        string            `json:"data"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		MessageID   string            `json:"messageId"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// PubSubPush handles POST /api/v1/events/pubsub
//
// @Summary  Pub/Sub push endpoint carrying a base64 ChangeEvent
// @Tags     events
// @Accept   json
// @Produce  json
// @Param    body  body      PushEnvelope  true  "Pub/Sub push envelope"
// @Success  200   {object}  outcomeResponse
// @Failure  400   {object}  map[string]string
// @Router   /api/v1/events/pubsub [post]
func (h *EventHandler) PubSubPush(w http.ResponseWriter, r *http.Request) {
	var env PushEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ev, err := decodeEnvelope(env)
	if err != nil {
		h.logger.Warn("rejected pubsub push",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.String("subscription", env.Subscription),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}
	h.handle(w, r, ev)
}

func (h *EventHandler) handle(w http.ResponseWriter, r *http.Request, ev domain.ChangeEvent) {
	if err := ev.Validate(); err != nil {
		mapError(w, err)
		return
	}
	// A caller hanging up must not abort a delivery already underway.
	outcome := h.notifier.Handle(context.WithoutCancel(r.Context()), ev)
	respondJSON(w, http.StatusOK, outcomeResponse{Outcome: outcome})
}

func decodeEnvelope(env PushEnvelope) (domain.ChangeEvent, error) {
	var ev domain.ChangeEvent
	data, err := base64.StdEncoding.DecodeString(env.Message.Data)
	if err != nil || len(data) == 0 {
		return ev, fmt.Errorf("%w: message data is not base64", domain.ErrInvalidEnvelope)
	}
	if err := json.Unmarshal(data, &ev); err != nil {
		return ev, fmt.Errorf("%w: message data is not a change event", domain.ErrInvalidEnvelope)
	}
	if ev.EventID == "" {
		ev.EventID = env.Message.MessageID
	}
	return ev, nil
}
