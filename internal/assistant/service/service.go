// Package service implements the assistant operations: symptom analysis with
// emergency triage, medicine lookups by name or photo, OTC suggestions, side
// effect checks, and skin photo analysis. All guidance text comes from the AI
// completion client; triage is the one rule-based path.
package service

import (
	"bytes"
	"context"

	"medicare_backend/internal/adapters/storage"
	"medicare_backend/internal/assistant/transport"
	"medicare_backend/platform/apperr"
	"medicare_backend/platform/logger"
)

// AIClient is the completion surface the assistant depends on.
type AIClient interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateWithImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

// Service orchestrates assistant operations.
type Service struct {
	ai      AIClient
	storage storage.StorageService
	bucket  string
	log     *logger.Logger
}

// New creates the assistant service. storageSvc may be nil; image archiving
// is then skipped entirely.
func New(ai AIClient, storageSvc storage.StorageService, bucket string, log *logger.Logger) *Service {
	return &Service{ai: ai, storage: storageSvc, bucket: bucket, log: log}
}

// TestAI sends a fixed liveness prompt through the full completion pipeline.
func (s *Service) TestAI(ctx context.Context) (string, error) {
	return s.ai.GenerateText(ctx, testPrompt)
}

// AnalyzeSymptoms triages first, then asks the model for guidance. An
// emergency never reaches the model: the fixed urgent-care message is
// returned immediately.
func (s *Service) AnalyzeSymptoms(ctx context.Context, req transport.AnalyzeSymptomsRequest) (transport.AnalyzeSymptomsResponse, error) {
	if isEmergency(req.Symptoms, req.Age, req.Severity) {
		return transport.AnalyzeSymptomsResponse{Emergency: true, Response: emergencyResponse}, nil
	}

	prompt := symptomAnalysisPrompt(req.Symptoms, req.Age, req.Gender, req.Duration, req.Severity, req.ExistingConditions)
	response, err := s.ai.GenerateText(ctx, prompt)
	if err != nil {
		return transport.AnalyzeSymptomsResponse{}, err
	}
	return transport.AnalyzeSymptomsResponse{Emergency: false, Response: response}, nil
}

// MedicineInfo answers a medicine lookup by name.
func (s *Service) MedicineInfo(ctx context.Context, medicineName string) (string, error) {
	return s.ai.GenerateText(ctx, medicineInfoPrompt(medicineName))
}

// MedicineInfoImage identifies a medicine from a photo. The archived key is
// empty when no archive is configured or archiving failed; archiving never
// fails the request.
func (s *Service) MedicineInfoImage(ctx context.Context, image []byte, mimeType, fileName string) (string, string, error) {
	response, err := s.ai.GenerateWithImage(ctx, medicineImagePrompt, image, mimeType)
	if err != nil {
		return "", "", err
	}
	return response, s.archive(ctx, "medicines", fileName, mimeType, image), nil
}

// SuggestMedicines asks for OTC-only suggestions for the given symptoms.
func (s *Service) SuggestMedicines(ctx context.Context, symptoms string) (string, error) {
	return s.ai.GenerateText(ctx, suggestMedicinesPrompt(symptoms))
}

// CheckSideEffects classifies reported side effects for a medicine.
func (s *Service) CheckSideEffects(ctx context.Context, medicineName, sideEffects string) (string, error) {
	return s.ai.GenerateText(ctx, checkSideEffectsPrompt(medicineName, sideEffects))
}

// AnalyzeSkin analyzes a skin photo, with an optional user description.
func (s *Service) AnalyzeSkin(ctx context.Context, image []byte, mimeType, fileName, description string) (string, string, error) {
	response, err := s.ai.GenerateWithImage(ctx, analyzeSkinPrompt(description), image, mimeType)
	if err != nil {
		return "", "", err
	}
	return response, s.archive(ctx, "skin", fileName, mimeType, image), nil
}

// ArchivedImageURL returns a short-lived download link for an archived
// upload, identified by the key handed back from the original request.
func (s *Service) ArchivedImageURL(ctx context.Context, fileKey string) (*storage.PresignedURL, error) {
	if s.storage == nil {
		return nil, apperr.Unavailable("image archive is not configured")
	}
	link, err := s.storage.GenerateDownloadURL(ctx, s.bucket, fileKey)
	if err != nil {
		s.log.UpstreamError("minio", "presign download", err)
		return nil, apperr.Wrap(apperr.KindUnavailable, "could not generate download link", err)
	}
	return link, nil
}

// DeleteArchivedImage removes an archived upload, typically at the user's
// request after their consultation is done.
func (s *Service) DeleteArchivedImage(ctx context.Context, fileKey string) error {
	if s.storage == nil {
		return apperr.Unavailable("image archive is not configured")
	}
	if err := s.storage.DeleteObject(ctx, s.bucket, fileKey); err != nil {
		s.log.UpstreamError("minio", "delete object", err)
		return apperr.Wrap(apperr.KindUnavailable, "could not delete archived image", err)
	}
	return nil
}

func (s *Service) archive(ctx context.Context, folder, fileName, mimeType string, image []byte) string {
	if s.storage == nil {
		return ""
	}
	key, err := s.storage.UploadFile(ctx, s.bucket, folder, fileName, mimeType, bytes.NewReader(image), int64(len(image)))
	if err != nil {
		s.log.UpstreamError("minio", "archive upload", err)
		return ""
	}
	return key
}
