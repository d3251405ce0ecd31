// Package fulfillment implements the smart-home intent state machine.
//
// A Dispatcher handles one intent per request and holds no state of its own
// between requests; device state lives in the device.Store it is given.
// QUERY and EXECUTE fan out one goroutine per device (or per device and
// execution pair) and only answer once every sub-operation has settled.
package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/homelink/pkg/device"
	"golang.org/x/sync/errgroup"
)

// Dispatcher routes fulfillment intents to the registry, store and executor.
type Dispatcher struct {
	agentUserID string
	registry    *device.Registry
	store       *device.Store
	executor    *device.Executor
}

// NewDispatcher creates a dispatcher serving the account agentUserID.
func NewDispatcher(agentUserID string, registry *device.Registry, store *device.Store, executor *device.Executor) *Dispatcher {
	return &Dispatcher{
		agentUserID: agentUserID,
		registry:    registry,
		store:       store,
		executor:    executor,
	}
}

// AgentUserID returns the account identifier reported in SYNC.
func (d *Dispatcher) AgentUserID() string {
	return d.agentUserID
}

// Handle processes the first input of req and returns the response to send.
// Protocol problems are reported in the payload, never as a Go error.
func (d *Dispatcher) Handle(ctx context.Context, req *Request) *Response {
	if len(req.Inputs) == 0 {
		return errorResponse(req.RequestID, fmt.Errorf("%w: request has no inputs", ErrProtocol))
	}

	input := req.Inputs[0]
	logger := log.With().Str("request_id", req.RequestID).Str("intent", input.Intent).Logger()
	logger.Debug().Msg("fulfillment intent")

	if input.decodeErr != nil {
		logger.Warn().Err(input.decodeErr).Msg("fulfillment intent rejected")
		return errorResponse(req.RequestID, input.decodeErr)
	}

	var (
		payload any
		err     error
	)

	switch input.Intent {
	case IntentSync:
		payload = d.Sync()
	case IntentQuery:
		q, _ := input.Payload.(*QueryRequest)
		payload, err = d.Query(ctx, q)
	case IntentExecute:
		e, _ := input.Payload.(*ExecuteRequest)
		payload, err = d.Execute(ctx, e)
	case IntentDisconnect:
		d.Disconnect()
		return &Response{}
	case "":
		err = fmt.Errorf("%w: input has no intent", ErrProtocol)
	default:
		err = fmt.Errorf("%w: %s", ErrNotSupported, input.Intent)
	}

	if err != nil {
		logger.Warn().Err(err).Msg("fulfillment intent rejected")
		return errorResponse(req.RequestID, err)
	}

	return &Response{RequestID: req.RequestID, Payload: payload}
}

// Sync renders the full registry as a discovery payload.
func (d *Dispatcher) Sync() *SyncResponse {
	return &SyncResponse{
		AgentUserID: d.agentUserID,
		Devices:     d.registry.List(),
	}
}

// Query fetches the state of every requested device concurrently. Unknown
// ids are reported per device and do not fail the request.
func (d *Dispatcher) Query(ctx context.Context, req *QueryRequest) (*QueryResponse, error) {
	if req == nil || len(req.Devices) == 0 {
		return nil, fmt.Errorf("%w: QUERY requires devices", ErrProtocol)
	}

	var mu sync.Mutex
	devices := make(map[string]any, len(req.Devices))

	var g errgroup.Group
	for _, ref := range req.Devices {
		g.Go(func() error {
			st, err := d.store.Get(ref.ID)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				log.Warn().Err(err).Str("device", ref.ID).Msg("QUERY")
				devices[ref.ID] = DeviceError{Status: StatusError, ErrorCode: errorCodeFor(err)}
				return nil
			}
			devices[ref.ID] = st
			return nil
		})
	}
	_ = g.Wait()

	return &QueryResponse{Devices: devices}, nil
}

// Execute applies every execution of every command group to each of its
// devices concurrently and folds the successes into a single result.
//
// Deltas are merged in completion order, so when two executions touch the
// same field the one that finishes last wins. Failed pairs are logged and
// left out of the id list; the status stays SUCCESS.
func (d *Dispatcher) Execute(ctx context.Context, req *ExecuteRequest) (*ExecuteResponse, error) {
	if req == nil || len(req.Commands) == 0 {
		return nil, fmt.Errorf("%w: EXECUTE requires commands", ErrProtocol)
	}
	for i, group := range req.Commands {
		if len(group.Devices) == 0 {
			return nil, fmt.Errorf("%w: command %d has no devices", ErrProtocol, i)
		}
		if len(group.Execution) == 0 {
			return nil, fmt.Errorf("%w: command %d has no execution", ErrProtocol, i)
		}
	}

	var mu sync.Mutex
	result := CommandResult{
		IDs:    []string{},
		Status: StatusSuccess,
		States: map[string]any{"online": true},
	}
	seen := make(map[string]struct{})

	var g errgroup.Group
	for _, group := range req.Commands {
		for _, ref := range group.Devices {
			for _, exec := range group.Execution {
				g.Go(func() error {
					delta, err := d.executor.Execute(ctx, ref.ID, exec.Command, exec.Params)
					if err != nil {
						log.Error().Err(err).
							Str("device", ref.ID).
							Str("command", string(exec.Command)).
							Msg("EXECUTE")
						return nil
					}

					mu.Lock()
					defer mu.Unlock()

					if _, ok := seen[ref.ID]; !ok {
						seen[ref.ID] = struct{}{}
						result.IDs = append(result.IDs, ref.ID)
					}
					for field, v := range delta {
						result.States[field] = v
					}
					return nil
				})
			}
		}
	}
	_ = g.Wait()

	return &ExecuteResponse{Commands: []CommandResult{result}}, nil
}

// Disconnect records that the account was unlinked from the assistant.
func (d *Dispatcher) Disconnect() {
	log.Info().Str("agent_user_id", d.agentUserID).Msg("User account unlinked from assistant")
}

func errorResponse(requestID string, err error) *Response {
	code := ErrorCodeProtocol
	if errors.Is(err, ErrNotSupported) {
		code = ErrorCodeNotSupported
	}
	return &Response{
		RequestID: requestID,
		Payload: ErrorResponse{
			ErrorCode:   code,
			DebugString: err.Error(),
		},
	}
}

func errorCodeFor(err error) string {
	if errors.Is(err, device.ErrNotFound) {
		return ErrorCodeDeviceNotFound
	}
	return ErrorCodeProtocol
}
