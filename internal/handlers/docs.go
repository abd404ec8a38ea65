package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

type schema = map[string]interface{}

func jsonContent(s schema) schema {
	return schema{"application/json": schema{"schema": s}}
}

func predictionFormSchema() schema {
	str := func(desc string) schema { return schema{"type": "string", "description": desc} }
	return schema{
		"type": "object",
		"required": []string{
			"tanggal_penerbangan", "maskapai", "asal", "tujuan", "deskripsi_cuaca",
			"suhu", "tekanan", "kecepatan_angin", "jam_keberangkatan",
		},
		"properties": schema{
			"tanggal_penerbangan": schema{"type": "string", "format": "date", "example": "2024-01-10"},
			"jam_keberangkatan":   schema{"type": "string", "example": "08:00", "description": "HH:MM"},
			"maskapai":            str("Airline, one of /api/options maskapai_list"),
			"asal":                str("Origin city"),
			"tujuan":              str("Destination city"),
			"deskripsi_cuaca":     str("Destination weather description"),
			"suhu":                schema{"oneOf": []schema{{"type": "number"}, {"type": "string"}}, "example": 27.5, "description": "Temperature, number or decimal string"},
			"tekanan":             schema{"oneOf": []schema{{"type": "number"}, {"type": "string"}}, "example": 1009, "description": "Pressure, number or decimal string"},
			"kecepatan_angin":     schema{"oneOf": []schema{{"type": "number"}, {"type": "string"}}, "example": 12, "description": "Wind speed, number or decimal string"},
		},
	}
}

func errorSchema() schema {
	return schema{
		"type": "object",
		"properties": schema{
			"error":   schema{"type": "string"},
			"message": schema{"type": "string"},
			"code":    schema{"type": "integer"},
			"kind": schema{
				"type": "string",
				"enum": []string{"route_unsupported", "category_unrecognized", "malformed_input", "inference_failure"},
			},
			"field": schema{"type": "string"},
		},
	}
}

// OpenAPISpec returns the OpenAPI 3.0 specification of the JSON API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	stringList := schema{"type": "array", "items": schema{"type": "string"}}

	doc := schema{
		"openapi": "3.0.0",
		"info": schema{
			"title":       "Flight Delay Predictor API",
			"description": "Arrival delay predictions from a pre-trained regression model",
			"version":     "1.0.0",
		},
		"servers": []map[string]string{
			{"url": "http://localhost:5000", "description": "Local development server"},
		},
		"paths": schema{
			"/api/summary": schema{
				"get": schema{
					"summary": "Dataset summary",
					"responses": schema{
						"200": schema{
							"description": "Counts over the evaluation dataset",
							"content": jsonContent(schema{
								"type": "object",
								"properties": schema{
									"total_penerbangan": schema{"type": "integer"},
									"rute_maskapai":     schema{"type": "integer"},
									"nama_maskapai":     schema{"type": "integer"},
									"bandara_asal":      schema{"type": "integer"},
									"bandara_tujuan":    schema{"type": "integer"},
								},
							}),
						},
					},
				},
			},
			"/api/options": schema{
				"get": schema{
					"summary": "Prediction form options",
					"responses": schema{
						"200": schema{
							"description": "Values accepted by the prediction encoders",
							"content": jsonContent(schema{
								"type": "object",
								"properties": schema{
									"maskapai_list":    stringList,
									"asal_list":        stringList,
									"tujuan_list":      stringList,
									"cuaca_list":       stringList,
									"available_routes": stringList,
								},
							}),
						},
					},
				},
			},
			"/api/predict": schema{
				"post": schema{
					"summary":     "Predict arrival delay",
					"requestBody": schema{"required": true, "content": jsonContent(predictionFormSchema())},
					"responses": schema{
						"200": schema{
							"description": "Prediction with derived arrival times",
							"content": jsonContent(schema{
								"type": "object",
								"properties": schema{
									"predicted_delay_minutes": schema{"type": "number"},
									"normal_arrival_time":     schema{"type": "string", "format": "date-time"},
									"predicted_arrival_time":  schema{"type": "string", "format": "date-time"},
									"message":                 schema{"type": "string"},
									"debug":                   schema{"type": "object"},
								},
							}),
						},
						"400": schema{"description": "Body is not valid JSON", "content": jsonContent(errorSchema())},
						"422": schema{"description": "Input rejected", "content": jsonContent(errorSchema())},
						"500": schema{"description": "Model failure", "content": jsonContent(errorSchema())},
					},
				},
			},
			"/health": schema{
				"get": schema{
					"summary": "Health check",
					"responses": schema{
						"200": schema{"description": "Service is healthy"},
						"503": schema{"description": "Dataset store unreachable"},
					},
				},
			},
			"/metrics": schema{
				"get": schema{
					"summary": "Prometheus metrics",
					"responses": schema{
						"200": schema{
							"description": "Prometheus metrics in text format",
							"content":     schema{"text/plain": schema{"schema": schema{"type": "string"}}},
						},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc)
}

// RegisterDocsRoutes registers the OpenAPI document and the Swagger UI page
func RegisterDocsRoutes(router *mux.Router) {
	router.HandleFunc("/api/docs/openapi.json", OpenAPISpec).Methods("GET")
	router.HandleFunc("/api/docs", SwaggerUI).Methods("GET")
}
