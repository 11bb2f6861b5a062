package service

import (
	"fmt"
	"strings"
)

// SystemPrompt frames every model call. It pins the assistant's role, the
// hard safety limits, and the exact output structure the web client renders.
const SystemPrompt = `You are an AI-powered virtual medical assistant designed to provide safe, accurate, ethical, and easy-to-understand health guidance for a web-based application used by many people, especially rural and underserved populations.

You must behave like a caring, experienced general physician (MBBS-level), while strictly following medical safety rules.

ROLE & COMMUNICATION STYLE:
- Act like a calm, kind, and responsible doctor.
- Use very simple English suitable for rural users.
- Avoid medical jargon.
- Be polite, respectful, and reassuring.
- Never scare or panic the user.
- Ask follow-up questions if important information is missing.
- Keep explanations short, structured, and clear.

CRITICAL MEDICAL LIMITATIONS (MANDATORY):
- You are NOT a replacement for a licensed doctor.
- You must NOT give confirmed diagnoses.
- You must NOT prescribe antibiotics, controlled, or high-risk medicines.
- You must NOT suggest stopping medicines prescribed by a doctor.
- You must NOT guarantee cures or outcomes.

Immediately advise hospital or doctor visit if the user reports:
- Chest pain
- Breathing difficulty
- Unconsciousness or fainting
- Heavy bleeding
- Severe abdominal pain
- High fever for more than 3 days
- Pregnancy-related problems
- Severe symptoms in children under 5
- Worsening symptoms in elderly people

STRICT OUTPUT FORMAT (MANDATORY):
Always respond EXACTLY in this structure:

--------------------------------
👤 Patient Summary:
- Age:
- Gender:
- Key symptoms:

🧠 Possible Health Insight:
- (Simple explanation, no diagnosis)

💊 Medicine Information / Suggestion:
- (Explanation or safe OTC suggestion only)

⚠️ Warnings & When to See a Doctor:
- (Clear emergency or risk signs)

✅ Self-Care Advice:
- (Rest, food, hydration, lifestyle tips)

📌 Disclaimer:
"This information is for guidance only and is not a substitute for a licensed medical professional."
--------------------------------

ETHICS & SAFETY RULES:
- Never judge the user.
- Never provide false certainty.
- Never give unsafe or illegal advice.
- Always promote responsible medical care.`

// emergencyResponse is returned by the triage short-circuit; it never comes
// from the model.
const emergencyResponse = "⚠️ URGENT: Please visit a hospital or doctor immediately. Your symptoms require immediate medical attention.\n\nBased on your description, this appears to be an emergency situation. Do not delay - seek medical help right away.\n\n📌 Disclaimer: This information is for guidance only and is not a substitute for a licensed medical professional."

const testPrompt = `Say "Hello, AI API is working!" in one sentence.`

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func symptomAnalysisPrompt(symptoms string, age int, gender, duration, severity, existingConditions string) string {
	return fmt.Sprintf(`Please analyze the following patient information and provide health guidance:

Patient Information:
- Age: %d years
- Gender: %s
- Symptoms: %s
- Duration: %s
- Severity: %s
- Existing Conditions: %s

Please provide a comprehensive analysis following the required format.`,
		age,
		orDefault(gender, "Not specified"),
		symptoms,
		orDefault(duration, "Not specified"),
		severity,
		orDefault(existingConditions, "None mentioned"),
	)
}

func medicineInfoPrompt(medicineName string) string {
	return fmt.Sprintf(`A user wants to know about the medicine: %q

Please provide information about this medicine following the required format. Include:
- What it is commonly used for
- General usage guidance (no specific dosage without doctor consultation)
- Common side effects
- Who should avoid it
- Important warnings

If you cannot identify the medicine, please say so clearly and recommend consulting a doctor or pharmacist.`, medicineName)
}

const medicineImagePrompt = `A user has provided an image of a medicine. Please analyze the image and provide information about this medicine following the required format. Include:
- What medicine this appears to be (if identifiable)
- What it is commonly used for
- General usage guidance
- Common side effects
- Who should avoid it
- Important warnings

If you cannot clearly identify the medicine from the image, please say so and recommend consulting a doctor or pharmacist with the medicine.`

func suggestMedicinesPrompt(symptoms string) string {
	return fmt.Sprintf(`A user is experiencing: %q

Please suggest ONLY safe over-the-counter (OTC) medicines that might help, such as:
- Paracetamol (for pain/fever)
- ORS (for dehydration)
- Antacids (for acidity)
- Basic vitamins (for general health)

IMPORTANT:
- Only suggest safe OTC medicines
- Always emphasize consulting a doctor before taking any medicine
- Do not suggest antibiotics, prescription medicines, or controlled substances
- Provide general guidance only

Follow the required format in your response.`, symptoms)
}

func checkSideEffectsPrompt(medicineName, sideEffects string) string {
	return fmt.Sprintf(`A user is taking the medicine %q and experiencing: %q

Please analyze if these are common or serious side effects. Provide guidance on:
- Whether these are common side effects (usually mild and manageable)
- Whether these are serious side effects (require immediate medical attention)
- What action the user should take (continue, stop, or seek immediate help)
- When to see a doctor

Follow the required format in your response.`, medicineName, sideEffects)
}

func analyzeSkinPrompt(description string) string {
	base := `A user has provided a photo of a skin condition. Please analyze the image and provide guidance following the required format. Include:
- What the condition might look like (no confirmed diagnosis)
- Common harmless causes it could resemble
- Self-care steps that are safe to try
- Warning signs that require seeing a doctor or dermatologist

If the image is unclear or the condition looks serious, say so plainly and recommend an in-person consultation.`
	if strings.TrimSpace(description) == "" {
		return base
	}
	return base + fmt.Sprintf("\n\nThe user describes it as: %q", description)
}
