// Package services implements the business logic behind the HTTP
// handlers.
//
// DashboardService turns normalized observations into the macro view (one
// category compared across sources) and the micro view (subcategories of a
// macro category, faceted, focus source against comparison sources). Both
// views are returned as JSON-ready structs and can be rendered to PNG.
//
// HealthService answers liveness and readiness probes from the state of
// the data directory, the observation cache and the websocket hub.
//
// Services take their collaborators as small interfaces and a
// *slog.Logger, so tests drive them with the mocks in test_helpers.go:
//
//	source := &MockObservationSource{}
//	source.On("Normalize", mock.Anything, "Source").Return(rows, nil)
//	svc := NewDashboardService(source, dims, "old dominion u", nil, logger)
package services
