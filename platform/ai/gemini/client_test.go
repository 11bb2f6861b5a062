package gemini

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/genai"

	"medicare_backend/platform/apperr"
)

func TestBuildModelChainDeduplicatesAndKeepsOrder(t *testing.T) {
	chain := buildModelChain("models/gemini-1.5-flash", []string{
		"models/gemini-1.5-flash",
		"models/gemini-1.5-pro",
		"",
		"models/gemini-pro",
	})

	want := []string{"models/gemini-1.5-flash", "models/gemini-1.5-pro", "models/gemini-pro"}
	if len(chain) != len(want) {
		t.Fatalf("expected %d models, got %d (%v)", len(want), len(chain), chain)
	}
	for i, model := range want {
		if chain[i] != model {
			t.Fatalf("chain[%d] = %q, want %q", i, chain[i], model)
		}
	}
}

func TestIsRetryableClassifiesAPIErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", genai.APIError{Code: 429, Message: "resource exhausted"}, true},
		{"overloaded", genai.APIError{Code: 503, Message: "the model is overloaded"}, true},
		{"bad credentials", genai.APIError{Code: 401, Message: "invalid key"}, false},
		{"bad request", genai.APIError{Code: 400, Message: "invalid argument"}, false},
		{"quota message", errors.New("Gemini API error: quota exceeded"), true},
		{"timeout", context.DeadlineExceeded, true},
		{"cancelled", context.Canceled, false},
		{"unrelated", errors.New("no such host"), false},
	}

	for _, tc := range cases {
		if got := isRetryable(tc.err); got != tc.want {
			t.Errorf("%s: isRetryable = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsPermanentDetectsCredentialFailures(t *testing.T) {
	if !isPermanent(genai.APIError{Code: 403, Message: "permission denied"}) {
		t.Fatal("403 should be permanent")
	}
	if !isPermanent(errors.New("GEMINI API_KEY is not valid")) {
		t.Fatal("api key message should be permanent")
	}
	if isPermanent(genai.APIError{Code: 503, Message: "overloaded"}) {
		t.Fatal("overload should not be permanent")
	}
}

func TestClassifyMapsExhaustionToUnavailable(t *testing.T) {
	err := classify(genai.APIError{Code: 503, Message: "overloaded"})
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}

	err = classify(genai.APIError{Code: 401, Message: "bad key"})
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
