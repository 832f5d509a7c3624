package main

// General API documentation for swaggo. The generated document lives in
// internal/httpapi/docs and is served under /swagger/ in builds tagged swagger.
//
// @title           domaind API
// @version         1.0
// @description     HTTP API for registered domain models, their relations and change events.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
