// file: internal/config/factory.go
package config

import (
	"github.com/cockroachdb/errors"

	"github.com/dkoosis/gosoa/internal/logging"
	"github.com/dkoosis/gosoa/internal/serializer"
	"github.com/dkoosis/gosoa/internal/soaclient"
	"github.com/dkoosis/gosoa/internal/soaserver"
	"github.com/dkoosis/gosoa/internal/transport"
)

// transportConstructor builds a connected client/server transport pair from
// a TransportConfig's kwargs. PySOA resolves Path as an importable dotted
// module path at runtime; Go has no equivalent dynamic symbol lookup, so
// Path is instead resolved against the static registry below. Unknown paths
// fail fast in BuildServiceEndpoints rather than at first use.
type transportConstructor func(kwargs map[string]interface{}) (transport.ClientTransport, transport.ServerTransport, error)

type serializerConstructor func(kwargs map[string]interface{}) (serializer.Serializer, error)

var transportRegistry = map[string]transportConstructor{
	"memory": newInMemoryTransportPair,
}

var serializerRegistry = map[string]serializerConstructor{
	"json": newJSONSerializer,
}

func newInMemoryTransportPair(_ map[string]interface{}) (transport.ClientTransport, transport.ServerTransport, error) {
	clientTransport, serverTransport := transport.NewInMemoryTransportPair()
	return clientTransport, serverTransport, nil
}

func newJSONSerializer(_ map[string]interface{}) (serializer.Serializer, error) {
	return serializer.NewJSONSerializer(), nil
}

// ServiceEndpoints is the constructed transport pair for one configured
// service: the client side is handed to a ServiceHandler, the server side is
// handed to whatever is running that service's receive loop.
type ServiceEndpoints struct {
	Client transport.ClientTransport
	Server transport.ServerTransport
}

// BuildServiceEndpoints constructs, for every service named in settings, the
// transport pair and serializer its configuration names.
func BuildServiceEndpoints(settings *ClientSettings) (map[string]ServiceEndpoints, map[string]serializer.Serializer, error) {
	endpoints := make(map[string]ServiceEndpoints, len(settings.Services))
	serializers := make(map[string]serializer.Serializer, len(settings.Services))

	for name, svc := range settings.Services {
		transportCtor, ok := transportRegistry[svc.Transport.Path]
		if !ok {
			return nil, nil, errors.Newf("config: service %q names unknown transport %q", name, svc.Transport.Path)
		}
		clientTransport, serverTransport, err := transportCtor(svc.Transport.Kwargs)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "config: constructing transport for service %q", name)
		}

		serializerCtor, ok := serializerRegistry[svc.Serializer.Path]
		if !ok {
			return nil, nil, errors.Newf("config: service %q names unknown serializer %q", name, svc.Serializer.Path)
		}
		s, err := serializerCtor(svc.Serializer.Kwargs)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "config: constructing serializer for service %q", name)
		}

		endpoints[name] = ServiceEndpoints{Client: clientTransport, Server: serverTransport}
		serializers[name] = s
	}
	return endpoints, serializers, nil
}

// BuildClient constructs a soaclient.Client with one ServiceHandler per
// service in settings, backed by the transport/serializer its configuration
// names. It also returns each service's server-side transport end, since the
// in-memory transport's client and server sides are created as a connected
// pair; the caller is responsible for running a receive loop against each one
// (see cmd/gosoa-example for the minimal shape of that loop).
//
// MiddlewareConfig entries are accepted but not yet resolved: this module
// carries no concrete ClientRequestMiddleware/ClientResponseMiddleware
// implementations to resolve a Path against (internal/middleware only
// exports the generic Compose* functions), so configured middleware chains
// are currently a no-op. Wiring a concrete middleware (e.g. the switches
// injection or correlation-id stamping PySOA's ClientMiddleware does) is the
// natural next registry entry once one exists.
func BuildClient(settings *ClientSettings, logger logging.Logger) (*soaclient.Client, map[string]transport.ServerTransport, error) {
	endpoints, serializers, err := BuildServiceEndpoints(settings)
	if err != nil {
		return nil, nil, err
	}

	serverEnds := make(map[string]transport.ServerTransport, len(endpoints))
	for name, ep := range endpoints {
		serverEnds[name] = ep.Server
	}

	client := soaclient.NewClient(func(serviceName string) (*soaclient.ServiceHandler, error) {
		ep, ok := endpoints[serviceName]
		if !ok {
			return nil, errors.Newf("config: service %q not present in client settings", serviceName)
		}
		return soaclient.NewServiceHandler(serviceName, ep.Client, serializers[serviceName], nil, nil, logger), nil
	}, logger)

	return client, serverEnds, nil
}

// BuildServer constructs a soaserver.Server named and dispatching per
// settings, serving actions. Like BuildClient's middleware handling, configured
// job/action middleware is accepted but not yet resolved against a concrete
// implementation registry.
func BuildServer(settings *ServerSettings, actions map[string]soaserver.Action, logger logging.Logger) *soaserver.Server {
	return soaserver.NewServer(settings.ServiceName, actions, nil, nil, logger)
}
