package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Maatram Scholarship Review API",
        "description": "Multi-stage scholarship application review workflow",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Volunteer session issuance"},
        {"name": "TeleVerification", "description": "Phone verification stage"},
        {"name": "PhysicalVerification", "description": "Home visit stage"},
        {"name": "VirtualInterview", "description": "Remote interview stage"},
        {"name": "RealInterview", "description": "In-person interview stage"},
        {"name": "FinalDecision", "description": "Superadmin verdict"},
        {"name": "Educational", "description": "Post-selection records"},
        {"name": "Analytics", "description": "Dashboard analytics"},
        {"name": "Exports", "description": "Selection list exports"},
        {"name": "Media", "description": "Signed media downloads"}
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
        "/api/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate volunteer",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/api/assign-tv": {
            "post": {
                "tags": ["TeleVerification"],
                "summary": "Assign a batch of students to a TV volunteer",
                "description": "The batch is atomic: any invalid student rejects the whole request",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkAssignRequest"}}
                ],
                "responses": {
                    "200": {"description": "Assigned", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Stage conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/tv-volunteer/submit": {
            "post": {
                "tags": ["TeleVerification"],
                "summary": "Submit a tele-verification report",
                "responses": {
                    "200": {"description": "Submitted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not assigned", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/pv/final-upload-batch": {
            "post": {
                "tags": ["PhysicalVerification"],
                "summary": "Store the final image set for a student",
                "consumes": ["multipart/form-data"],
                "responses": {
                    "200": {"description": "Stored", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Image floor not met", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/pv/submit-pv": {
            "post": {
                "tags": ["PhysicalVerification"],
                "summary": "Submit the home-visit report",
                "responses": {
                    "202": {"description": "Queued for analysis", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/vi/api/submit-interview/{id}": {
            "post": {
                "tags": ["VirtualInterview"],
                "summary": "Record the interviewer's verdict",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Recorded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Remarks too short", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/superadmin/api/final-decision/{id}": {
            "post": {
                "tags": ["FinalDecision"],
                "summary": "Record the final scholarship decision",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Decided", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Real interview not assigned", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/educational/api/save-details": {
            "post": {
                "tags": ["Educational"],
                "summary": "Store the college placement for a selected student",
                "responses": {
                    "200": {"description": "Stored", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Student not selected", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/media/{token}": {
            "get": {
                "tags": ["Media"],
                "summary": "Download a stored image or voice note",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "401": {"description": "Invalid or expired token"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "volunteerId": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "BulkAssignRequest": {
            "type": "object",
            "properties": {
                "volunteerId": {"type": "string"},
                "studentIds": {"type": "array", "items": {"type": "string"}}
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
