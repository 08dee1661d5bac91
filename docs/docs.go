// Package docs registers the Swagger documents served by the HTTP services
// under /swagger/*any. Each service mounts its own instance.
package docs

import "github.com/swaggo/swag"

const (
	OrdersInstance   = "orders"
	ProductsInstance = "products"
)

const commonDefinitions = `
        "httpx.HTTPError": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "not found"},
                "fields": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "string"}}}
            }
        },
        "httpx.DetailResponse": {
            "type": "object",
            "properties": {"detail": {"type": "string", "example": "Order status set to packed"}}
        }`

const ordersTemplate = `{
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
        "/orders": {
            "get": {
                "tags": ["orders"],
                "summary": "List orders visible to the caller",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "X-User-ID", "in": "header", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/order.Response"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            },
            "post": {
                "tags": ["orders"],
                "summary": "Create an order",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "X-User-ID", "in": "header", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/order.CreateOrderRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/order.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpx.HTTPError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            }
        },
        "/orders/{id}": {
            "get": {
                "tags": ["orders"],
                "summary": "Get an order",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "X-User-ID", "in": "header", "required": true},
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/order.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            },
            "patch": {
                "tags": ["orders"],
                "summary": "Advance the order to its next status (staff only)",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "X-User-ID", "in": "header", "required": true},
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpx.DetailResponse"}},
                    "400": {"description": "Rejected", "schema": {"$ref": "#/definitions/httpx.DetailResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/httpx.HTTPError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            },
            "delete": {
                "tags": ["orders"],
                "summary": "Delete an order",
                "parameters": [
                    {"type": "string", "name": "X-User-ID", "in": "header", "required": true},
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            }
        },
        "/orders/{id}/payments": {
            "get": {
                "tags": ["payments"],
                "summary": "List payments recorded against an order",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "X-User-ID", "in": "header", "required": true},
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/payment.Response"}}}
                }
            }
        },
        "/payments": {
            "post": {
                "tags": ["payments"],
                "summary": "Record a payment",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "X-User-ID", "in": "header", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/payment.RecordPaymentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/payment.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpx.HTTPError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            }
        }
    },
    "definitions": {` + commonDefinitions + `,
        "order.CreateOrderItem": {
            "type": "object",
            "required": ["product_id", "unit_price", "quantity"],
            "properties": {
                "product_id": {"type": "string", "example": "4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"},
                "unit_price": {"type": "string", "example": "10.00"},
                "quantity": {"type": "string", "example": "2.000"}
            }
        },
        "order.CreateOrderRequest": {
            "type": "object",
            "properties": {"items": {"type": "array", "items": {"$ref": "#/definitions/order.CreateOrderItem"}}}
        },
        "order.ItemResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "product_id": {"type": "string"},
                "product": {"type": "string", "example": "Sukuma wiki"},
                "seller": {"type": "string"},
                "unit_price": {"type": "string", "example": "10.00"},
                "quantity": {"type": "string", "example": "2.000"},
                "item_total": {"type": "string", "example": "20.00"}
            }
        },
        "order.Response": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "buyer": {"type": "string"},
                "status": {"type": "string", "enum": ["pending", "confirmed", "packed", "shipped", "completed", "cancelled"]},
                "payment_status": {"type": "string", "enum": ["pending", "partial", "paid", "failed", "refunded"]},
                "total": {"type": "string", "example": "25.50"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/order.ItemResponse"}},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "payment.RecordPaymentRequest": {
            "type": "object",
            "required": ["order", "amount", "method"],
            "properties": {
                "order": {"type": "string"},
                "amount": {"type": "string", "example": "500.00"},
                "method": {"type": "string", "enum": ["cash", "mpesa", "card"]},
                "reference": {"type": "string", "maxLength": 255}
            }
        },
        "payment.Response": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "order": {"type": "string"},
                "amount": {"type": "string", "example": "500.00"},
                "method": {"type": "string"},
                "reference": {"type": "string"},
                "created_at": {"type": "string"}
            }
        }
    }
}`

const productsTemplate = `{
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
        "/products": {
            "get": {
                "tags": ["products"],
                "summary": "List products",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "q", "in": "query"},
                    {"type": "string", "name": "category", "in": "query"},
                    {"type": "string", "name": "seller", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/product.ListResponse"}}}
            },
            "post": {
                "tags": ["products"],
                "summary": "Create a product (farmers only)",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "X-User-ID", "in": "header", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/product.CreateProductRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/product.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpx.HTTPError"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            }
        },
        "/products/{id}": {
            "get": {
                "tags": ["products"],
                "summary": "Get a product",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/product.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            },
            "put": {
                "tags": ["products"],
                "summary": "Update a product (seller only)",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "X-User-ID", "in": "header", "required": true},
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/product.UpdateProductRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/product.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpx.HTTPError"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/httpx.HTTPError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            },
            "delete": {
                "tags": ["products"],
                "summary": "Delete a product (seller only)",
                "parameters": [
                    {"type": "string", "name": "X-User-ID", "in": "header", "required": true},
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/httpx.HTTPError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpx.HTTPError"}},
                    "409": {"description": "Referenced by orders", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            }
        }
    },
    "definitions": {` + commonDefinitions + `,
        "product.CreateProductRequest": {
            "type": "object",
            "required": ["name", "price", "description"],
            "properties": {
                "name": {"type": "string", "example": "Sukuma wiki"},
                "category": {"type": "string", "example": "vegetables"},
                "price": {"type": "string", "example": "120.00"},
                "stock": {"type": "string", "example": "50.000"},
                "unit": {"type": "string", "enum": ["g", "kg", "tonne", "ml", "l", "piece", "dozen", "bunch", "packet", "sack", "crate", "tray"]},
                "min_order": {"type": "integer", "example": 1},
                "description": {"type": "string"}
            }
        },
        "product.UpdateProductRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "category": {"type": "string"},
                "price": {"type": "string"},
                "stock": {"type": "string"},
                "unit": {"type": "string"},
                "min_order": {"type": "integer"},
                "description": {"type": "string"}
            }
        },
        "product.Response": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "seller_id": {"type": "string"},
                "name": {"type": "string"},
                "category": {"type": "string"},
                "price": {"type": "string", "example": "120.00"},
                "stock": {"type": "string", "example": "50.000"},
                "unit": {"type": "string", "example": "kg"},
                "min_order": {"type": "integer"},
                "description": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "product.ListResponse": {
            "type": "object",
            "properties": {
                "q": {"type": "string"},
                "limit": {"type": "integer"},
                "offset": {"type": "integer"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/product.Response"}}
            }
        }
    }
}`

// OrdersInfo holds exported Swagger Info so clients can modify it.
var OrdersInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "MavunoHub Orders API",
	Description:      "Orders and payments of the MavunoHub marketplace.",
	InfoInstanceName: OrdersInstance,
	SwaggerTemplate:  ordersTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

// ProductsInfo holds exported Swagger Info so clients can modify it.
var ProductsInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "MavunoHub Products API",
	Description:      "Product catalog of the MavunoHub marketplace.",
	InfoInstanceName: ProductsInstance,
	SwaggerTemplate:  productsTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(OrdersInfo.InstanceName(), OrdersInfo)
	swag.Register(ProductsInfo.InstanceName(), ProductsInfo)
}
