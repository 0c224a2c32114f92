package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Admission API",
        "description": "Admission application synchronization engine",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Token issuance"},
        {"name": "Admissions", "description": "Admission application lifecycle"},
        {"name": "Classes", "description": "Class and grade reference data"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and receive an access token",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/admissions": {
            "get": {
                "tags": ["Admissions"],
                "summary": "List applications",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "classId", "in": "query", "type": "string"},
                    {"name": "minProgress", "in": "query", "type": "integer"},
                    {"name": "maxProgress", "in": "query", "type": "integer"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Admissions"],
                "summary": "Start an admission application (step 0)",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateApplicationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admissions/stats": {
            "get": {
                "tags": ["Admissions"],
                "summary": "Admission aggregates",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admissions/export": {
            "get": {
                "tags": ["Admissions"],
                "summary": "Export applications as CSV",
                "produces": ["text/csv"],
                "responses": {
                    "200": {"description": "CSV content"}
                }
            }
        },
        "/admissions/{id}": {
            "get": {
                "tags": ["Admissions"],
                "summary": "Get application",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Admissions"],
                "summary": "Submit one admission step",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStepRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Step validation failed"}
                }
            },
            "delete": {
                "tags": ["Admissions"],
                "summary": "Delete application",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/admissions/{id}/assignment": {
            "put": {
                "tags": ["Admissions"],
                "summary": "Assign class and grade",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Grade at capacity"}
                }
            }
        },
        "/admissions/{id}/submit": {
            "post": {
                "tags": ["Admissions"],
                "summary": "Finalize a complete draft",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Draft incomplete"}
                }
            }
        },
        "/admissions/{id}/decision": {
            "post": {
                "tags": ["Admissions"],
                "summary": "Accept or reject a submitted application",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DecisionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admissions/{id}/summary.pdf": {
            "get": {
                "tags": ["Admissions"],
                "summary": "Render a one-page application summary",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF content"}
                }
            }
        },
        "/classes": {
            "get": {
                "tags": ["Classes"],
                "summary": "List classes",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes/{id}/grades": {
            "get": {
                "tags": ["Classes"],
                "summary": "List grades with live enrollment counts",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "available", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "CreateApplicationRequest": {
            "type": "object",
            "properties": {
                "surname": {"type": "string"},
                "firstName": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "classId": {"type": "string"}
            },
            "required": ["surname", "firstName", "email", "password"]
        },
        "UpdateStepRequest": {
            "type": "object",
            "properties": {
                "step": {"type": "integer"},
                "surname": {"type": "string"},
                "firstName": {"type": "string"},
                "email": {"type": "string"},
                "dateOfBirth": {"type": "string"},
                "nationality": {"type": "string"},
                "sex": {"type": "string"},
                "languagesSpoken": {"type": "array", "items": {"type": "string"}},
                "religion": {"type": "string"},
                "livesWith": {"type": "string"},
                "guardianName": {"type": "string"},
                "guardianOccupation": {"type": "string"},
                "guardianPhone": {"type": "string"},
                "postalAddress": {"type": "string"},
                "residentialAddress": {"type": "string"},
                "phone": {"type": "string"},
                "emergencyContactName": {"type": "string"},
                "emergencyContactPhone": {"type": "string"},
                "bloodGroup": {"type": "string"},
                "allergies": {"type": "string"},
                "doctorName": {"type": "string"},
                "doctorPhone": {"type": "string"},
                "declarationAccepted": {"type": "boolean"},
                "feePaymentMethod": {"type": "string"},
                "classId": {"type": "string"},
                "previousSchools": {"type": "array", "items": {"$ref": "#/definitions/PreviousSchool"}},
                "familyMembers": {"type": "array", "items": {"$ref": "#/definitions/FamilyMember"}}
            },
            "required": ["step"]
        },
        "PreviousSchool": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "location": {"type": "string"},
                "startDate": {"type": "string"},
                "endDate": {"type": "string"}
            }
        },
        "FamilyMember": {
            "type": "object",
            "properties": {
                "relation": {"type": "string"},
                "name": {"type": "string"},
                "postalAddress": {"type": "string"},
                "residentialAddress": {"type": "string"}
            }
        },
        "AssignmentRequest": {
            "type": "object",
            "properties": {
                "classId": {"type": "string"},
                "gradeId": {"type": "string"}
            },
            "required": ["classId"]
        },
        "DecisionRequest": {
            "type": "object",
            "properties": {
                "decision": {"type": "string", "enum": ["ACCEPTED", "REJECTED"]}
            },
            "required": ["decision"]
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
                "status": {"type": "integer"},
                "details": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/FieldError"}
                }
            }
        },
        "FieldError": {
            "type": "object",
            "properties": {
                "path": {"type": "string"},
                "message": {"type": "string"}
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
