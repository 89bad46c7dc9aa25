package broker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/crossstore/hub/internal/infrastructure/logging"
	"github.com/crossstore/hub/internal/infrastructure/monitoring"
	"github.com/crossstore/hub/internal/permissions"
	"github.com/crossstore/hub/internal/protocol"
	"github.com/crossstore/hub/internal/storage"
)

// Broker validates, authorizes, and executes storage requests. The
// permission table and adapter handle are fixed at construction; no other
// state carries across messages, so concurrent Handle calls are independent.
type Broker struct {
	auth    *permissions.Authorizer
	adapter storage.Adapter
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// Outbound is a frame to send back over the transport. Broadcast is set
// when the requesting origin is the non-addressable local-file sentinel.
type Outbound struct {
	Payload   []byte
	Broadcast bool
}

// New creates a broker over an authorizer and adapter.
func New(auth *permissions.Authorizer, adapter storage.Adapter) *Broker {
	return &Broker{
		auth:    auth,
		adapter: adapter,
		logger:  logging.NewNop(),
	}
}

// WithLogger attaches a logger.
func (b *Broker) WithLogger(logger *logging.Logger) *Broker {
	b.logger = logger
	return b
}

// WithMetrics attaches a metrics collector.
func (b *Broker) WithMetrics(metrics *monitoring.Metrics) *Broker {
	b.metrics = metrics
	return b
}

// Handle processes one inbound transport message and returns the frame to
// send back, or nil for silent drops. It runs to completion per message;
// the only suspension points are the adapter calls.
func (b *Broker) Handle(ctx context.Context, origin string, payload []byte) *Outbound {
	origin = protocol.NormalizeOrigin(origin)

	// Control strings live outside the request/reply envelope.
	switch string(payload) {
	case protocol.ControlPoll:
		return b.outbound(origin, []byte(protocol.ControlReady))
	case protocol.ControlReady:
		// The hub observing its own readiness broadcast.
		return nil
	}

	req, err := protocol.DecodeRequest(payload)
	if err != nil {
		// Expected noise on a shared channel; never answered.
		b.drop()
		b.logger.Debug("Dropping unparsable payload", zap.String("origin", origin))
		return nil
	}

	method, ok := protocol.ParseMethod(req.Method)
	if !ok {
		b.drop()
		b.logger.Debug("Dropping request with unrecognized method",
			zap.String("origin", origin),
			zap.String("method", req.Method),
		)
		return nil
	}

	start := time.Now()

	if !b.auth.Permitted(origin, method) {
		if b.metrics != nil {
			b.metrics.RecordDenial(method.Name())
			b.metrics.RecordRequest(method.Name(), monitoring.OutcomeDenied, time.Since(start))
		}
		b.logger.Warn("Denied storage request",
			zap.String("origin", origin),
			zap.String("method", method.Name()),
		)
		return b.reply(origin, protocol.Reply{
			ID:    req.ID,
			Error: "Invalid permissions for " + method.Name(),
		})
	}

	result, err := b.dispatch(ctx, method, req.Params)
	if err != nil {
		if b.metrics != nil {
			b.metrics.RecordRequest(method.Name(), monitoring.OutcomeError, time.Since(start))
		}
		b.logger.Warn("Storage operation failed",
			zap.String("origin", origin),
			zap.String("method", method.Name()),
			zap.Error(err),
		)
		return b.reply(origin, protocol.Reply{ID: req.ID, Error: err.Error()})
	}

	if b.metrics != nil {
		b.metrics.RecordRequest(method.Name(), monitoring.OutcomeOK, time.Since(start))
	}
	return b.reply(origin, protocol.Reply{ID: req.ID, Result: result})
}

func (b *Broker) reply(origin string, reply protocol.Reply) *Outbound {
	payload, err := protocol.EncodeReply(reply)
	if err != nil {
		b.logger.Error("Failed to encode reply", zap.Error(err))
		return nil
	}
	return b.outbound(origin, payload)
}

func (b *Broker) outbound(origin string, payload []byte) *Outbound {
	return &Outbound{
		Payload:   payload,
		Broadcast: origin == protocol.FileOrigin,
	}
}

func (b *Broker) drop() {
	if b.metrics != nil {
		b.metrics.RecordDrop()
	}
}
