package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "School Gradebook API",
        "description": "Grade submission, report cards, weekly schedules and attendance for the school dashboard",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Results", "description": "Grade submission and report cards"},
        {"name": "Schedule", "description": "Weekly calendar and lesson pickers"},
        {"name": "Attendance", "description": "Lesson attendance sheets"},
        {"name": "Metrics", "description": "Instrumentation"}
    ],
    "paths": {
        "/results": {
            "post": {
                "tags": ["Results"],
                "summary": "Submit a student's grades",
                "description": "Creates missing subjects, lessons, exams and assignments, then upserts exam and assignment results per subject. Each subject is applied in its own transaction.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReconcileResultsRequest"}}
                ],
                "responses": {
                    "200": {"description": "Saved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Missing or invalid fields", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Concurrent submission for the same subject", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "A grade line failed; meta names the subject", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["Results"],
                "summary": "List results",
                "parameters": [
                    {"name": "studentId", "in": "query", "type": "string"},
                    {"name": "classId", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Neither studentId nor classId given", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/results/students/{id}/summary": {
            "get": {
                "tags": ["Results"],
                "summary": "Student report card",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown student", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/results/students/{id}/report": {
            "get": {
                "tags": ["Results"],
                "summary": "Download a student report card",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Report file", "schema": {"type": "file"}},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/results/subjects/averages": {
            "get": {
                "tags": ["Results"],
                "summary": "Per-subject mean exam and assignment scores",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Weekly schedule of a teacher or class",
                "parameters": [
                    {"name": "teacherId", "in": "query", "type": "string"},
                    {"name": "classId", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Neither teacherId nor classId given", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lessons": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Lessons of the signed-in teacher in a class",
                "parameters": [
                    {"name": "classId", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Record attendance for a lesson",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordAttendanceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid sheet", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Metrics"],
                "summary": "Instrumentation snapshot",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "GradeLine": {
            "type": "object",
            "required": ["subject"],
            "properties": {
                "subject": {"type": "string"},
                "examValue": {"type": "number"},
                "assignmentValue": {"type": "number"}
            }
        },
        "ReconcileResultsRequest": {
            "type": "object",
            "required": ["classId", "studentId", "grades"],
            "properties": {
                "classId": {"type": "integer"},
                "studentId": {"type": "string"},
                "grades": {"type": "array", "items": {"$ref": "#/definitions/GradeLine"}},
                "average": {"type": "number"}
            }
        },
        "AttendanceMark": {
            "type": "object",
            "required": ["studentId"],
            "properties": {
                "studentId": {"type": "string"},
                "present": {"type": "boolean"}
            }
        },
        "RecordAttendanceRequest": {
            "type": "object",
            "required": ["date", "lessonId", "attendances"],
            "properties": {
                "date": {"type": "string", "example": "2026-10-12"},
                "lessonId": {"type": "integer"},
                "attendances": {"type": "array", "items": {"$ref": "#/definitions/AttendanceMark"}}
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
