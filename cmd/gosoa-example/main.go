// Command gosoa-example wires an in-process client and server together over
// the in-memory transport to illustrate how the pieces in internal/ compose.
// It is not a supervised service: process management, daemonization, and
// signal handling are out of scope for this runtime (see SPEC_FULL.md §3).
// file: cmd/gosoa-example/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/dkoosis/gosoa/internal/config"
	"github.com/dkoosis/gosoa/internal/logging"
	"github.com/dkoosis/gosoa/internal/message"
	"github.com/dkoosis/gosoa/internal/serializer"
	"github.com/dkoosis/gosoa/internal/soaclient"
	"github.com/dkoosis/gosoa/internal/soaerrors"
	"github.com/dkoosis/gosoa/internal/soaserver"
	"github.com/dkoosis/gosoa/internal/transport"
)

const echoServiceName = "echo"

// echoAction is the simplest possible action: it returns whatever body it
// was given, unchanged, under a "body" key.
type echoAction struct{}

func (echoAction) Run(_ context.Context, request *soaserver.EnrichedActionRequest) (map[string]interface{}, error) {
	return map[string]interface{}{"body": request.Body}, nil
}

func main() {
	clientConfigPath := flag.String("client-config", "", "Path to a client settings YAML file. Empty uses the built-in demo wiring.")
	serverConfigPath := flag.String("server-config", "", "Path to a server settings YAML file. Empty uses the built-in demo wiring.")
	flag.Parse()

	logger := logging.GetLogger("gosoa-example")

	if *clientConfigPath != "" || *serverConfigPath != "" {
		if *clientConfigPath == "" || *serverConfigPath == "" {
			log.Fatal("gosoa-example: -client-config and -server-config must both be set to run from configuration")
		}
		runFromConfig(logger, *clientConfigPath, *serverConfigPath)
		return
	}

	clientTransport, serverTransport := transport.NewInMemoryTransportPair()
	jsonSerializer := serializer.NewJSONSerializer()

	server := soaserver.NewServer(
		echoServiceName,
		map[string]soaserver.Action{"echo": echoAction{}},
		nil,
		nil,
		logger,
	)

	go runServerLoop(context.Background(), server, serverTransport, jsonSerializer, logger)

	client := soaclient.NewClient(func(serviceName string) (*soaclient.ServiceHandler, error) {
		return soaclient.NewServiceHandler(serviceName, clientTransport, jsonSerializer, nil, nil, logger), nil
	}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	response, err := client.CallAction(ctx, echoServiceName, "echo", map[string]interface{}{"greeting": "hello"})
	if err != nil {
		logger.Error("call failed", "error", err)
		return
	}
	fmt.Printf("echo responded: %+v\n", response.Body)
}

// runFromConfig builds the client and server from YAML settings via
// internal/config instead of the hardcoded demo wiring above, then runs the
// same echo round trip against whatever service name the server settings name.
func runFromConfig(logger logging.Logger, clientConfigPath, serverConfigPath string) {
	clientSettings, err := config.LoadClientSettings(clientConfigPath)
	if err != nil {
		log.Fatalf("gosoa-example: %+v", err)
	}
	serverSettings, err := config.LoadServerSettings(serverConfigPath)
	if err != nil {
		log.Fatalf("gosoa-example: %+v", err)
	}

	client, serverEnds, err := config.BuildClient(clientSettings, logger)
	if err != nil {
		log.Fatalf("gosoa-example: %+v", err)
	}
	server := config.BuildServer(serverSettings, map[string]soaserver.Action{"echo": echoAction{}}, logger)

	serverEnd, ok := serverEnds[serverSettings.ServiceName]
	if !ok {
		log.Fatalf("gosoa-example: client settings have no service named %q", serverSettings.ServiceName)
	}
	jsonSerializer := serializer.NewJSONSerializer()
	go runServerLoop(context.Background(), server, serverEnd, jsonSerializer, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	response, err := client.CallAction(ctx, serverSettings.ServiceName, "echo", map[string]interface{}{"greeting": "hello"})
	if err != nil {
		logger.Error("call failed", "error", err)
		return
	}
	fmt.Printf("echo responded: %+v\n", response.Body)
}

// runServerLoop is a minimal request-serving loop: receive a request,
// decode it, dispatch it, encode and send the response. A production
// deployment would run many of these per process and handle shutdown
// signals; that supervision layer is explicitly out of scope here.
func runServerLoop(ctx context.Context, server *soaserver.Server, t transport.ServerTransport, s serializer.Serializer, logger logging.Logger) {
	for {
		requestID, _, body, err := t.ReceiveRequestMessage(ctx)
		if err != nil {
			logger.Error("receive failed", "error", err)
			return
		}
		payload, err := s.Decode(body)
		if err != nil {
			logger.Error("decode failed", "error", err)
			continue
		}
		job := decodeJobRequest(payload)
		response := server.ProcessJob(ctx, job)
		responsePayload := encodeJobResponse(response)
		responseBody, err := s.Encode(responsePayload)
		if err != nil {
			logger.Error("encode failed", "error", err)
			continue
		}
		meta := transport.Meta{"mime_type": s.MIMEType()}
		if err := t.SendResponseMessage(ctx, requestID, meta, responseBody); err != nil {
			logger.Error("send failed", "error", err)
			return
		}
	}
}

func decodeJobRequest(payload map[string]interface{}) message.JobRequest {
	var job message.JobRequest
	if actionsRaw, ok := payload["actions"].([]interface{}); ok {
		for _, raw := range actionsRaw {
			if m, ok := raw.(map[string]interface{}); ok {
				action, _ := m["action"].(string)
				body, _ := m["body"].(map[string]interface{})
				job.Actions = append(job.Actions, message.ActionRequest{Action: action, Body: body})
			}
		}
	}
	if ctl, ok := payload["control"].(map[string]interface{}); ok {
		job.Control.ContinueOnError, _ = ctl["continue_on_error"].(bool)
		job.Control.CorrelationID, _ = ctl["correlation_id"].(string)
		job.Control.SuppressResponse, _ = ctl["suppress_response"].(bool)
		if rawSwitches, ok := ctl["switches"].([]interface{}); ok {
			for _, rs := range rawSwitches {
				if f, ok := rs.(float64); ok {
					job.Control.Switches = append(job.Control.Switches, int(f))
				}
			}
		}
	}
	if ctx, ok := payload["context"].(map[string]interface{}); ok {
		job.Context = message.Context(ctx)
	}
	return job
}

func encodeSOAErrors(errs []soaerrors.Error) []map[string]interface{} {
	encoded := make([]map[string]interface{}, len(errs))
	for i, e := range errs {
		encoded[i] = map[string]interface{}{
			"code":            string(e.Code),
			"message":         e.Message,
			"field":           e.Field,
			"traceback":       e.Traceback,
			"is_caller_error": e.IsCallerError,
		}
	}
	return encoded
}

func encodeJobResponse(response message.JobResponse) map[string]interface{} {
	actions := make([]map[string]interface{}, len(response.Actions))
	for i, a := range response.Actions {
		actions[i] = map[string]interface{}{"action": a.Action, "body": a.Body, "errors": encodeSOAErrors(a.Errors)}
	}
	return map[string]interface{}{
		"actions": actions,
		"errors":  encodeSOAErrors(response.Errors),
		"context": map[string]interface{}(response.Context),
	}
}
