// Package swagger registers the OpenAPI document served at /swagger/doc.json.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{escape .Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "JWT Bearer token. Format: Bearer {token}"
        }
    },
    "paths": {
        "/auth/login": {
            "post": {"tags": ["auth"], "summary": "Admin login"}
        },
        "/photos/presign": {
            "post": {"tags": ["photos"], "summary": "Create upload grant", "security": [{"BearerAuth": []}]}
        },
        "/photos/confirm": {
            "post": {"tags": ["photos"], "summary": "Confirm upload", "security": [{"BearerAuth": []}]}
        },
        "/photos": {
            "get": {"tags": ["photos"], "summary": "List photos (admin)", "security": [{"BearerAuth": []}]}
        },
        "/photos/public": {
            "get": {"tags": ["photos"], "summary": "List photos (public)"}
        },
        "/photos/{id}": {
            "delete": {"tags": ["photos"], "summary": "Delete photo", "security": [{"BearerAuth": []}]}
        },
        "/albums": {
            "get": {"tags": ["albums"], "summary": "List albums (admin)", "security": [{"BearerAuth": []}]},
            "post": {"tags": ["albums"], "summary": "Create album", "security": [{"BearerAuth": []}]}
        },
        "/albums/public": {
            "get": {"tags": ["albums"], "summary": "List albums (public)"}
        },
        "/albums/public/{slug}": {
            "get": {"tags": ["albums"], "summary": "View album (public)"}
        },
        "/albums/{id}": {
            "put": {"tags": ["albums"], "summary": "Update album", "security": [{"BearerAuth": []}]},
            "delete": {"tags": ["albums"], "summary": "Delete album", "security": [{"BearerAuth": []}]}
        },
        "/albums/{id}/photos": {
            "get": {"tags": ["albums"], "summary": "List album photos (admin)", "security": [{"BearerAuth": []}]},
            "post": {"tags": ["albums"], "summary": "Add photos to album", "security": [{"BearerAuth": []}]}
        },
        "/albums/{id}/photos/{photoId}": {
            "delete": {"tags": ["albums"], "summary": "Remove photo from album", "security": [{"BearerAuth": []}]}
        },
        "/albums/{id}/photos/reorder": {
            "put": {"tags": ["albums"], "summary": "Reorder album photos", "security": [{"BearerAuth": []}]}
        },
        "/albums/{id}/cover": {
            "put": {"tags": ["albums"], "summary": "Set or clear album cover", "security": [{"BearerAuth": []}]}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Gallery API",
	Description:      "Server-side API for the photo gallery: direct-to-storage uploads, albums, and curation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
