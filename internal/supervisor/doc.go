// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

/*
Package supervisor provides process supervision using suture v4.

The supervisor tree organizes the long-running services into two layers
for failure isolation:

	root ("civicmesh")
	├── realtime-layer
	│   └── WebSocketHubService
	└── api-layer
	    └── HTTPServerService

Crashed services are restarted automatically with exponential backoff.
Supervisor events are logged through sutureslog into the application's
structured logger.

Services implement the suture.Service interface: a single Serve(ctx)
method that blocks until the context is canceled or the service fails.
The wrappers in the services subpackage adapt the hub and HTTP server to
this pattern.
*/
package supervisor
