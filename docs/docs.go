// Package docs registers the OpenAPI description served under /swagger.
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
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a new user",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/types.TokenResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorEnvelope"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Log in",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.TokenResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/api.ErrorEnvelope"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Auth"],
                "summary": "Current user",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.User"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.ErrorEnvelope"}}
                }
            }
        },
        "/auth/logout": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Auth"],
                "summary": "Logout",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.SuccessEnvelope"}}
                }
            }
        },
        "/goals": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Goals"],
                "summary": "List goals",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "description": "Month 1-12, needs year", "name": "month", "in": "query"},
                    {"type": "integer", "description": "Year", "name": "year", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/types.Goal"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.ErrorEnvelope"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Goals"],
                "summary": "Create goal",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.CreateGoalRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/types.Goal"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorEnvelope"}}
                }
            }
        },
        "/goals/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Goals"],
                "summary": "Get goal",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Goal"}},
                    "401": {"description": "Not the owner", "schema": {"$ref": "#/definitions/api.ErrorEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorEnvelope"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["Goals"],
                "summary": "Update goal",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.UpdateGoalRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Goal"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorEnvelope"}},
                    "401": {"description": "Not the owner", "schema": {"$ref": "#/definitions/api.ErrorEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorEnvelope"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Goals"],
                "summary": "Delete goal",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.SuccessEnvelope"}},
                    "401": {"description": "Not the owner", "schema": {"$ref": "#/definitions/api.ErrorEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorEnvelope"}}
                }
            }
        },
        "/schedule": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Schedule"],
                "summary": "List schedule entries",
                "parameters": [{"type": "string", "description": "Day, YYYY-MM-DD", "name": "date", "in": "query"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/types.ScheduleEntry"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.ErrorEnvelope"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Schedule"],
                "summary": "Create schedule entry",
                "description": "Rejected with 400 when it overlaps another of the caller's entries that day.",
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.CreateScheduleEntryRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/types.ScheduleEntry"}},
                    "400": {"description": "Validation failed or time conflict", "schema": {"$ref": "#/definitions/api.ErrorEnvelope"}},
                    "503": {"description": "Server busy", "schema": {"$ref": "#/definitions/api.ErrorEnvelope"}}
                }
            }
        },
        "/schedule/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Schedule"],
                "summary": "Get schedule entry",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ScheduleEntry"}},
                    "401": {"description": "Not the owner", "schema": {"$ref": "#/definitions/api.ErrorEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorEnvelope"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["Schedule"],
                "summary": "Update schedule entry",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.UpdateScheduleEntryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ScheduleEntry"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorEnvelope"}},
                    "401": {"description": "Not the owner", "schema": {"$ref": "#/definitions/api.ErrorEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorEnvelope"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Schedule"],
                "summary": "Delete schedule entry",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.SuccessEnvelope"}},
                    "401": {"description": "Not the owner", "schema": {"$ref": "#/definitions/api.ErrorEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "api.SuccessEnvelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {},
                "count": {"type": "integer"}
            }
        },
        "api.ErrorEnvelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "error": {"type": "string"},
                "request_id": {"type": "string"},
                "errors": {"type": "array", "items": {"$ref": "#/definitions/types.FieldError"}}
            }
        },
        "types.FieldError": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "types.User": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "createdAt": {"type": "string"}
            }
        },
        "types.RegisterRequest": {
            "type": "object",
            "required": ["email", "name", "password"],
            "properties": {
                "name": {"type": "string", "maxLength": 100},
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 6},
                "confirmPassword": {"type": "string"}
            }
        },
        "types.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "types.TokenResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "expiresAt": {"type": "string"}
            }
        },
        "types.Goal": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "targetDate": {"type": "string"},
                "status": {"type": "string", "enum": ["not-started", "in-progress", "completed"]},
                "user": {"type": "string"},
                "createdAt": {"type": "string"}
            }
        },
        "types.CreateGoalRequest": {
            "type": "object",
            "required": ["description", "targetDate", "title"],
            "properties": {
                "title": {"type": "string", "maxLength": 100},
                "description": {"type": "string", "maxLength": 500},
                "targetDate": {"type": "string"},
                "status": {"type": "string", "enum": ["not-started", "in-progress", "completed"]}
            }
        },
        "types.UpdateGoalRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string", "maxLength": 100},
                "description": {"type": "string", "maxLength": 500},
                "targetDate": {"type": "string"},
                "status": {"type": "string", "enum": ["not-started", "in-progress", "completed"]}
            }
        },
        "types.ScheduleEntry": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "title": {"type": "string"},
                "date": {"type": "string"},
                "startTime": {"type": "string", "example": "09:00"},
                "endTime": {"type": "string", "example": "10:00"},
                "notes": {"type": "string"},
                "user": {"type": "string"},
                "createdAt": {"type": "string"}
            }
        },
        "types.CreateScheduleEntryRequest": {
            "type": "object",
            "required": ["date", "endTime", "startTime", "title"],
            "properties": {
                "title": {"type": "string", "maxLength": 100},
                "date": {"type": "string"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "notes": {"type": "string", "maxLength": 500}
            }
        },
        "types.UpdateScheduleEntryRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string", "maxLength": 100},
                "date": {"type": "string"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "notes": {"type": "string", "maxLength": 500}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "HabitNest API",
	Description:      "Goals and a conflict-free daily schedule behind bearer-token auth.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
