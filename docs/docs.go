// Package docs holds the Swagger document for the todo API.
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
        "/add": {
            "post": {
                "description": "Append a todo to a user's list, creating the user if needed.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["todos"],
                "summary": "Add a todo",
                "parameters": [
                    {
                        "description": "User name and todo",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.TodoRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/models.Response"}}
                }
            }
        },
        "/todos/{name}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["todos"],
                "summary": "List a user's todos",
                "parameters": [
                    {
                        "type": "string",
                        "example": "Jukka",
                        "description": "User name",
                        "name": "name",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"type": "string"}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/models.Response"}}
                }
            }
        },
        "/delete": {
            "delete": {
                "description": "Remove a user and all of their todos.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["todos"],
                "summary": "Delete a user",
                "parameters": [
                    {
                        "description": "User name",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.DeleteUserRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/models.Response"}}
                }
            }
        },
        "/update": {
            "put": {
                "description": "Remove the first todo equal to the given one from a user's list.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["todos"],
                "summary": "Delete a todo",
                "parameters": [
                    {
                        "description": "User name and todo",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.TodoRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/models.Response"}}
                }
            }
        }
    },
    "definitions": {
        "models.DeleteUserRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"}
            }
        },
        "models.Response": {
            "type": "object",
            "properties": {
                "data": {},
                "error_code": {"type": "string"},
                "error_details": {"type": "string"},
                "message": {"type": "string"},
                "success": {"type": "integer"}
            }
        },
        "models.TodoRequest": {
            "type": "object",
            "required": ["name", "todo"],
            "properties": {
                "name": {"type": "string"},
                "todo": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "v1",
	Host:             "",
	BasePath:         "",
	Schemes:          []string{},
	Title:            "EODHP Todo Services API",
	Description:      "Multi-user todo lists kept in a JSON data file.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
