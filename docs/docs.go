// Package docs registers the OpenAPI description of the HTTP API with swag.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "Bearer": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/offices": {
            "get": {
                "produces": ["application/json"],
                "tags": ["offices"],
                "summary": "List offices present in the case store",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "string"}}}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/sessions": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Open an office session with the office passphrase",
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.sessionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/offices/{office}/pending": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["offices"],
                "summary": "Pending cases of the session's office",
                "parameters": [
                    {"type": "string", "description": "Office", "name": "office", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.pendingResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/offices/{office}/pending.csv": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["text/csv"],
                "tags": ["offices"],
                "summary": "Download the pending cases of the session's office as CSV",
                "parameters": [
                    {"type": "string", "description": "Office", "name": "office", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}}
                }
            }
        },
        "/cases/{caseID}/forwarded-date": {
            "put": {
                "security": [{"Bearer": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["cases"],
                "summary": "Record the date a case was forwarded to DRCM",
                "parameters": [
                    {"type": "string", "description": "Case id", "name": "caseID", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.updateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.UpdateResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        }
    },
    "definitions": {
        "handler.errorPayload": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string"},
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "message": {"type": "string"}
                    }
                }
            }
        },
        "handler.sessionRequest": {
            "type": "object",
            "properties": {
                "office": {"type": "string"},
                "passphrase": {"type": "string"}
            }
        },
        "handler.sessionResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "office": {"type": "string"},
                "expires_at": {"type": "string"}
            }
        },
        "handler.updateRequest": {
            "type": "object",
            "properties": {
                "forwarded_date": {"type": "string", "example": "10/01/2025"}
            }
        },
        "handler.pendingResponse": {
            "type": "object",
            "properties": {
                "office": {"type": "string"},
                "count": {"type": "integer"},
                "message": {"type": "string"},
                "records": {"type": "array", "items": {"$ref": "#/definitions/handler.pendingRecord"}}
            }
        },
        "handler.pendingRecord": {
            "type": "object",
            "properties": {
                "case_id": {"type": "string"},
                "office": {"type": "string"},
                "origination_date": {"type": "string"},
                "days_remaining": {"type": "integer"},
                "process_type": {"type": "string"},
                "quality_type": {"type": "string"},
                "stage_start_date": {"type": "string"},
                "stage_end_date": {"type": "string"},
                "status": {"type": "string"},
                "forwarded_date": {"type": "string"},
                "at_risk": {"type": "boolean"}
            }
        },
        "service.UpdateResult": {
            "type": "object",
            "properties": {
                "entry": {"type": "object"},
                "record": {"$ref": "#/definitions/handler.pendingRecord"},
                "warning": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Expedientes API",
	Description:      "Pending case records per office and forwarded-date updates.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
