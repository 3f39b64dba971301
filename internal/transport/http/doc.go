// Package http implements the HTTP surface of the dashboard server: the
// dashboard page, the JSON and PNG view endpoints, health checks and the
// websocket endpoint that pushes data_update notifications.
//
// Handlers are thin. They bind query parameters into tagged structs,
// validate them with middleware.Validator and hand the result to a service
// interface. Every failure goes through errors.ErrorHandler and reaches the
// client as an RFC 7807 problem document:
//
//	{
//	    "type": "/errors/validation",
//	    "title": "Validation Failed",
//	    "status": 400,
//	    "detail": "One or more query parameters are invalid",
//	    "instance": "/api/v1/dimensions/weather/macro"
//	}
//
// # Routes
//
//	GET /                                    dashboard page
//	GET /api/v1/dimensions                   interactive domains and focus source
//	GET /api/v1/dimensions/{dim}/hierarchy   macro to subcategory mapping
//	GET /api/v1/dimensions/{dim}/sources     sources reporting the domain
//	GET /api/v1/dimensions/{dim}/macro       macro view (JSON)
//	GET /api/v1/dimensions/{dim}/micro       micro view (JSON)
//	GET /api/v1/dimensions/{dim}/macro.png   macro view chart
//	GET /api/v1/dimensions/{dim}/micro.png   micro view chart
//	GET /api/health[/ready|/live|/stats|/detailed]  health checks
//	GET /api/version                         build information
//	GET /ws                                  refresh notifications
//
// Repeated parameters (source, subcategory) select several
// entries. An absent parameter selects everything; a parameter present
// only with empty values is an explicit empty selection.
package http
