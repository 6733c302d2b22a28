// Package docs registers the BFF's OpenAPI description with swag so that
// echo-swagger can serve it under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/v1/session": {
            "get": {"tags": ["session"], "summary": "Current session", "responses": {"200": {"description": "OK"}}}
        },
        "/v1/session/login": {
            "post": {"tags": ["session"], "summary": "Login", "responses": {"200": {"description": "OK"}, "401": {"description": "Rejected"}, "422": {"description": "Invalid input"}}}
        },
        "/v1/session/register": {
            "post": {"tags": ["session"], "summary": "Register", "responses": {"201": {"description": "Created"}, "400": {"description": "Rejected input"}, "422": {"description": "Invalid input"}}}
        },
        "/v1/session/logout": {
            "post": {"tags": ["session"], "summary": "Logout", "responses": {"204": {"description": "Signed out"}}}
        },
        "/v1/session/refresh": {
            "post": {"tags": ["session"], "summary": "Refresh credential", "responses": {"200": {"description": "OK"}, "401": {"description": "Not signed in"}}}
        },
        "/v1/session/profile": {
            "put": {"tags": ["session"], "summary": "Update profile", "responses": {"200": {"description": "OK"}}}
        },
        "/v1/session/password": {
            "put": {"tags": ["session"], "summary": "Change password", "responses": {"204": {"description": "Changed"}}}
        },
        "/v1/restaurants": {
            "get": {"tags": ["restaurants"], "summary": "List restaurants", "responses": {"200": {"description": "OK"}}}
        },
        "/v1/cart": {
            "get": {"tags": ["cart"], "summary": "Current cart", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["cart"], "summary": "Clear cart", "responses": {"200": {"description": "OK"}}}
        },
        "/v1/cart/count": {
            "get": {"tags": ["cart"], "summary": "Cart item count", "responses": {"200": {"description": "OK"}}}
        },
        "/v1/cart/conflict/{restaurant_id}": {
            "get": {"tags": ["cart"], "summary": "Different restaurant check", "responses": {"200": {"description": "OK"}}}
        },
        "/v1/cart/items": {
            "post": {"tags": ["cart"], "summary": "Add to cart", "responses": {"200": {"description": "OK"}, "401": {"description": "Not signed in"}}}
        },
        "/v1/cart/items/{id}": {
            "put": {"tags": ["cart"], "summary": "Update quantity", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["cart"], "summary": "Remove item", "responses": {"200": {"description": "OK"}}}
        },
        "/v1/orders": {
            "post": {"tags": ["orders"], "summary": "Place order", "responses": {"201": {"description": "Created"}, "422": {"description": "Invalid input or below minimum"}}}
        },
        "/v1/orders/{id}/track": {
            "get": {"tags": ["orders"], "summary": "Order tracking WebSocket", "responses": {"101": {"description": "Switching protocols"}}}
        },
        "/v1/orders/{id}/history": {
            "get": {"tags": ["orders"], "summary": "Observed status history", "responses": {"200": {"description": "OK"}, "404": {"description": "Recording disabled"}}}
        },
        "/v1/orders/active/track": {
            "get": {"tags": ["orders"], "summary": "Active orders WebSocket", "responses": {"101": {"description": "Switching protocols"}}}
        },
        "/v1/notices": {
            "get": {"tags": ["notices"], "summary": "Drain pending notices", "responses": {"200": {"description": "OK"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Storefront BFF",
	Description:      "Session, cart, checkout and order tracking for the Super Delivery storefront.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
