package models

import "github.com/google/uuid"

// Profile is the per-user record in the profiles table. Exactly one exists
// per user; it is created lazily on first fetch if absent. The security
// answer is stored as a hash only, never as plaintext.
type Profile struct {
	ID                 *uuid.UUID `json:"id,omitempty"`
	UserID             uuid.UUID  `json:"user_id"`
	FullName           string     `json:"full_name"`
	Email              string     `json:"email"`
	SecurityQuestion   string     `json:"security_question"`
	SecurityAnswerHash string     `json:"security_answer_hash"`
}

// SecurityQuestions is the fixed catalog offered at registration.
var SecurityQuestions = []string{
	"What is your mother's maiden name?",
	"What was your childhood home street address?",
	"What was your first car's make and model?",
}
