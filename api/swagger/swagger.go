package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Absensi Karyawan API",
        "description": "Employee attendance and production tracking on top of a spreadsheet backend",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Employees", "description": "Employee register"},
        {"name": "Attendance", "description": "Daily attendance capture, summaries and exports"}
    ],
    "paths": {
        "/employees": {
            "get": {
                "tags": ["Employees"],
                "summary": "List employees",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Employees"],
                "summary": "Register an employee",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateEmployeeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Name already registered", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Record one attendance entry",
                "description": "Appends a new row; the latest row of a day wins. Statuses other than masuk store zero production.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordAttendanceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown employee", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/day": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Current status of every employee on one day",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Attendance"],
                "summary": "Save a whole day at once",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveDayRequest"}}
                ],
                "responses": {
                    "200": {"description": "Per-item outcomes", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/daily": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Daily log",
                "parameters": [
                    {"name": "from", "in": "query", "type": "string", "format": "date"},
                    {"name": "to", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/daily/export": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Download the daily log",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "from", "in": "query", "type": "string", "format": "date"},
                    {"name": "to", "in": "query", "type": "string", "format": "date"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}}
                }
            }
        },
        "/attendance/monthly": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Monthly summary",
                "parameters": [
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "month", "in": "query", "type": "integer", "minimum": 1, "maximum": 12}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/monthly/export": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Download the monthly summary",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "month", "in": "query", "type": "integer", "minimum": 1, "maximum": 12},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}}
                }
            }
        }
    },
    "definitions": {
        "CreateEmployeeRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string", "maxLength": 100}
            }
        },
        "RecordAttendanceRequest": {
            "type": "object",
            "required": ["date", "employee_id", "status"],
            "properties": {
                "date": {"type": "string", "format": "date"},
                "employee_id": {"type": "integer"},
                "status": {"$ref": "#/definitions/AttendanceStatus"},
                "production": {"type": "integer", "minimum": 0}
            }
        },
        "SaveDayItem": {
            "type": "object",
            "required": ["employee_id", "status"],
            "properties": {
                "employee_id": {"type": "integer"},
                "status": {"$ref": "#/definitions/AttendanceStatus"},
                "production": {"type": "integer", "minimum": 0}
            }
        },
        "SaveDayRequest": {
            "type": "object",
            "required": ["date", "items"],
            "properties": {
                "date": {"type": "string", "format": "date"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/SaveDayItem"}}
            }
        },
        "AttendanceStatus": {
            "type": "string",
            "enum": ["masuk", "sakit", "izin", "alpha", "1/2 hari", "resign", "libur", "kosong"]
        },
        "DataQualityWarning": {
            "type": "object",
            "properties": {
                "kind": {"type": "string"},
                "sheet": {"type": "string"},
                "row": {"type": "integer"},
                "employee_id": {"type": "integer"},
                "value": {"type": "string"},
                "message": {"type": "string"}
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
                "meta": {
                    "type": "object",
                    "properties": {
                        "request_id": {"type": "string"},
                        "processing_time_ms": {"type": "integer"},
                        "warnings": {"type": "array", "items": {"$ref": "#/definitions/DataQualityWarning"}}
                    }
                }
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
