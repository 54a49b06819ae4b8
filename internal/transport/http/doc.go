// Package http implements the HTTP request handlers for the license
// server. It is a thin layer between transport and the service layer:
// handlers parse and validate requests, delegate to services, and format
// responses.
//
// Business outcomes, including lookup failures, are always encoded inside
// the JSON payload ({"success": false, "message": ...}) with a 200 status;
// HTTP error codes are reserved for malformed requests and infrastructure
// faults.
package http
