// Package transport defines the HTTP request and response shapes for the
// assistant module.
package transport

// AnalyzeSymptomsRequest is the body of POST /api/analyze-symptoms.
type AnalyzeSymptomsRequest struct {
	Symptoms           string `json:"symptoms" validate:"required,min=1,max=2000"`
	Age                int    `json:"age" validate:"required,gte=1,lte=120"`
	Gender             string `json:"gender" validate:"omitempty,max=40"`
	Duration           string `json:"duration" validate:"omitempty,max=200"`
	Severity           string `json:"severity" validate:"required,oneof=mild moderate severe"`
	ExistingConditions string `json:"existingConditions" validate:"omitempty,max=1000"`
}

// AnalyzeSymptomsResponse carries the guidance text plus the emergency flag.
// When Emergency is true the response was produced by the triage rules and no
// model call was made.
type AnalyzeSymptomsResponse struct {
	Emergency bool   `json:"emergency"`
	Response  string `json:"response"`
}

// MedicineInfoRequest is the body of POST /api/medicine-info.
type MedicineInfoRequest struct {
	MedicineName string `json:"medicineName" validate:"required,min=1,max=200"`
}

// SuggestMedicinesRequest is the body of POST /api/suggest-medicines.
type SuggestMedicinesRequest struct {
	Symptoms string `json:"symptoms" validate:"required,min=1,max=2000"`
}

// CheckSideEffectsRequest is the body of POST /api/check-side-effects.
type CheckSideEffectsRequest struct {
	MedicineName string `json:"medicineName" validate:"required,min=1,max=200"`
	SideEffects  string `json:"sideEffects" validate:"required,min=1,max=2000"`
}

// GuidanceResponse is the common response wrapper for text guidance endpoints.
type GuidanceResponse struct {
	Response string `json:"response"`
}

// ImageGuidanceResponse adds the optional archive reference for image uploads.
type ImageGuidanceResponse struct {
	Response    string `json:"response"`
	ArchivedKey string `json:"archivedKey,omitempty"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	GeminiAPIKey string `json:"gemini_api_key"`
}

// TestAIResponse is the body of GET /api/test-ai.
type TestAIResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Response string `json:"response"`
}
