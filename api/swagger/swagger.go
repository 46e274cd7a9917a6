package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Academy Billing API",
        "description": "Payment confirmation reconciliation for course enrollments",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Payments", "description": "Payment confirmation reconciliation"},
        {"name": "Enrollments", "description": "Enrollment ledger reads and exports"},
        {"name": "Coupons", "description": "Discount coupon administration"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/api/v1/payments/confirmation/{enrollmentId}": {
            "get": {
                "tags": ["Payments"],
                "summary": "Reconcile a payment confirmation",
                "parameters": [
                    {"name": "enrollmentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Confirmation outcome", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown enrollment"},
                    "409": {"description": "Confirmation already in progress"},
                    "500": {"description": "Could not confirm the enrollment"}
                }
            }
        },
        "/api/v1/enrollments/{id}": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "Enrollment detail with its invoice ledger",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Enrollment ledger", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/enrollments/{id}/invoices/export": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "Export the invoice ledger as CSV",
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "CSV export"}
                }
            }
        },
        "/api/v1/enrollments/{id}/receipt": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "PDF receipt for paid invoices",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF receipt"},
                    "412": {"description": "No paid invoices"}
                }
            }
        },
        "/api/v1/coupons/{code}": {
            "get": {
                "tags": ["Coupons"],
                "summary": "Look a coupon up by code",
                "parameters": [
                    {"name": "code", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Coupon", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown coupon"}
                }
            }
        },
        "/api/v1/coupons": {
            "post": {
                "tags": ["Coupons"],
                "summary": "Create a coupon",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCouponRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created coupon", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Code already exists"}
                }
            }
        }
    },
    "definitions": {
        "CreateCouponRequest": {
            "type": "object",
            "required": ["code"],
            "properties": {
                "code": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
