// Package docs holds the OpenAPI document of the HTTP API and registers it
// with swag. Keep it in sync with the handler annotations in package httpapi.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/models": {
            "get": {
                "produces": ["application/json"],
                "tags": ["models"],
                "summary": "List registered model names",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ModelsResponse"}}
                }
            }
        },
        "/models/{model}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["models"],
                "summary": "List stored models of one kind",
                "parameters": [
                    {"type": "string", "description": "Model name", "name": "model", "in": "path", "required": true},
                    {"type": "boolean", "description": "Return every record instead of one page", "name": "all", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.RecordsResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["models"],
                "summary": "Create a model",
                "parameters": [
                    {"type": "string", "description": "Model name", "name": "model", "in": "path", "required": true},
                    {"description": "Factory arguments", "name": "args", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.Record"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/types.Record"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/models/{model}/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["models"],
                "summary": "Get a stored model",
                "parameters": [
                    {"type": "string", "description": "Model name", "name": "model", "in": "path", "required": true},
                    {"type": "string", "description": "Model id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Record"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            },
            "patch": {
                "description": "Merges the body into the stored model, validates, saves and publishes an UPDATE event.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["models"],
                "summary": "Edit a stored model",
                "parameters": [
                    {"type": "string", "description": "Model name", "name": "model", "in": "path", "required": true},
                    {"type": "string", "description": "Model id", "name": "id", "in": "path", "required": true},
                    {"description": "Changed fields", "name": "changes", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.Record"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Record"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["models"],
                "summary": "Delete a stored model",
                "parameters": [
                    {"type": "string", "description": "Model name", "name": "model", "in": "path", "required": true},
                    {"type": "string", "description": "Model id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Record"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/models/{model}/{id}/relations/{relation}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["models"],
                "summary": "Resolve a relation of a stored model",
                "parameters": [
                    {"type": "string", "description": "Model name", "name": "model", "in": "path", "required": true},
                    {"type": "string", "description": "Model id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Relation name", "name": "relation", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.RelatedResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/events": {
            "get": {
                "description": "Upgrades to a websocket and pushes every event published under the given names as JSON text messages.",
                "tags": ["events"],
                "summary": "Stream events",
                "parameters": [
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "description": "Event names, e.g. UPDATEMODEL1", "name": "name", "in": "query", "required": true}
                ],
                "responses": {
                    "101": {"description": "Switching Protocols"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 400},
                "error": {"type": "string", "example": "invalid JSON body"}
            }
        },
        "types.ModelsResponse": {
            "type": "object",
            "properties": {
                "models": {"type": "array", "items": {"type": "string"}, "example": ["MODEL1", "MODEL2"]}
            }
        },
        "types.Record": {
            "type": "object",
            "additionalProperties": true
        },
        "types.RecordsResponse": {
            "type": "object",
            "properties": {
                "model": {"type": "string", "example": "MODEL1"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/types.Record"}}
            }
        },
        "types.RelatedResponse": {
            "type": "object",
            "properties": {
                "model": {"type": "string", "example": "MODEL1"},
                "id": {"type": "string"},
                "relation": {"type": "string", "example": "model2s"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/types.Record"}}
            }
        },
        "types.EventMessage": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "eventType": {"type": "string", "example": "UPDATE"},
                "modelName": {"type": "string", "example": "MODEL1"},
                "eventName": {"type": "string", "example": "UPDATEMODEL1"},
                "eventTime": {"type": "string"},
                "payload": {"type": "object", "additionalProperties": true}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "domaind API",
	Description:      "HTTP API for registered domain models, their relations and change events.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
