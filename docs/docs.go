// Package docs holds the OpenAPI document served at /swagger.
// Regenerate with: swag init -g cmd/api/main.go
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
        "CronBearer": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/healthz": {"get": {"tags": ["System"], "summary": "Health check", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/readyz": {"get": {"tags": ["System"], "summary": "Readiness check", "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "503": {"description": "Database unreachable"}}}},
        "/api/v1/regions": {"get": {"tags": ["System"], "summary": "Selectable regions", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/api/v1/games/search": {"get": {"tags": ["Games"], "summary": "Search games", "produces": ["application/json"],
            "parameters": [{"type": "string", "name": "q", "in": "query", "required": true}, {"type": "integer", "name": "limit", "in": "query"}],
            "responses": {"200": {"description": "OK"}}}},
        "/api/v1/games/popular": {"get": {"tags": ["Games"], "summary": "Popular games on sale", "produces": ["application/json"],
            "parameters": [{"type": "integer", "name": "limit", "in": "query"}, {"type": "string", "name": "country_code", "in": "query"}],
            "responses": {"200": {"description": "OK"}}}},
        "/api/v1/games/{appId}": {"get": {"tags": ["Games"], "summary": "Get game by app id", "produces": ["application/json"],
            "parameters": [{"type": "integer", "name": "appId", "in": "path", "required": true}, {"type": "boolean", "name": "sync", "in": "query"}, {"type": "string", "name": "country_code", "in": "query"}],
            "responses": {"200": {"description": "OK"}}}},
        "/api/v1/games/{appId}/sync": {"post": {"tags": ["Games"], "summary": "Sync game", "produces": ["application/json"],
            "parameters": [{"type": "integer", "name": "appId", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK"}}}},
        "/api/v1/games/id/{gameId}/history": {"get": {"tags": ["Games"], "summary": "Price history", "produces": ["application/json"],
            "parameters": [{"type": "string", "name": "gameId", "in": "path", "required": true}, {"type": "integer", "name": "limit", "in": "query"}],
            "responses": {"200": {"description": "OK"}}}},
        "/api/v1/games/id/{gameId}/stats": {"get": {"tags": ["Games"], "summary": "Price statistics", "produces": ["application/json"],
            "parameters": [{"type": "string", "name": "gameId", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK"}}}},
        "/api/v1/watchlist": {
            "get": {"tags": ["Watchlist"], "summary": "List watched games", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "email", "in": "query", "required": true}],
                "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Watchlist"], "summary": "Watch a game", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Watchlist"], "summary": "Stop watching a game", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/watchlist/status": {"get": {"tags": ["Watchlist"], "summary": "Watch status", "produces": ["application/json"],
            "parameters": [{"type": "string", "name": "game_id", "in": "query", "required": true}, {"type": "string", "name": "email", "in": "query"}],
            "responses": {"200": {"description": "OK"}}}},
        "/api/v1/watchlist/unsubscribe": {"get": {"tags": ["Watchlist"], "summary": "One-click unsubscribe", "produces": ["application/json"],
            "parameters": [{"type": "string", "name": "token", "in": "query", "required": true}],
            "responses": {"200": {"description": "OK"}}}},
        "/api/v1/admin/list_watchlist": {"post": {"security": [{"CronBearer": []}], "tags": ["Admin"], "summary": "List watchlist entries (Admin)", "consumes": ["application/json"], "produces": ["application/json"],
            "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
            "responses": {"200": {"description": "OK"}}}},
        "/api/v1/admin/get_statistics": {"post": {"security": [{"CronBearer": []}], "tags": ["Admin"], "summary": "Get statistics (Admin)", "consumes": ["application/json"], "produces": ["application/json"],
            "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
            "responses": {"200": {"description": "OK"}}}},
        "/api/cron/sync-prices": {"post": {"security": [{"CronBearer": []}], "tags": ["Jobs"], "summary": "Sync prices", "produces": ["application/json"],
            "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "500": {"description": "Internal server error"}}}},
        "/api/cron/check-price-drops": {"post": {"security": [{"CronBearer": []}], "tags": ["Jobs"], "summary": "Check price drops", "produces": ["application/json"],
            "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "500": {"description": "Internal server error"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8888",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Steamwatch API",
	Description:      "Steam price tracking and sale alerts.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
