package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger serves the API description.
// - GET /swagger/index.html  -> swagger-ui page loading doc.json
// - GET /swagger/doc.json    -> OpenAPI document
func RegisterSwagger(rg gin.IRouter) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>restaurant functions · Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "restaurant functions", "version": "v1.0.0" },
  "components": {
    "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } },
    "parameters": {
      "restaurantId": { "name": "restaurantId", "in": "path", "required": true, "schema": { "type": "string" }, "description": "Matched verbatim against restaurant_id" }
    }
  },
  "paths": {
    "/": {
      "post": {
        "summary": "Create a restaurant document",
        "requestBody": { "required": true, "content": { "application/json": { "schema": { "type": "object" } } } },
        "responses": {
          "200": { "description": "created", "content": { "application/json": { "schema": { "type": "object", "properties": { "id": { "type": "string" } } } } } },
          "400": { "description": "body is not a JSON document" },
          "413": { "description": "body too large" },
          "502": { "description": "database failure" }
        }
      }
    },
    "/Restaurant/id/{restaurantId}": {
      "parameters": [ { "$ref": "#/components/parameters/restaurantId" } ],
      "get": {
        "summary": "Fetch the first restaurant with this restaurant_id",
        "responses": { "200": { "description": "document as relaxed Extended JSON" }, "404": { "description": "could not be found" } }
      },
      "patch": {
        "summary": "Set the given top-level fields",
        "requestBody": { "required": true, "content": { "application/json": { "schema": { "type": "object" } } } },
        "responses": {
          "200": { "description": "updated" },
          "304": { "description": "values unchanged; reason in X-Restaurant-Update" },
          "400": { "description": "malformed body or _id in change set" },
          "404": { "description": "could not be updated" }
        }
      },
      "delete": {
        "summary": "Delete the first restaurant with this restaurant_id",
        "responses": { "200": { "description": "the deleted document" }, "404": { "description": "could not be deleted" } }
      }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "database unreachable" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "text exposition format" } } } }
  }
}`
