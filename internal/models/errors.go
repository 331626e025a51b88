package models

import "errors"

// Application-wide standard errors
var (
	// Common Resource/DB Errors
	ErrNotFound       = errors.New("resource not found")
	ErrFunnelNotFound = errors.New("funnel not found")

	// Authentication / Authorization Errors
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrPermissionDenied = errors.New("permission denied by store rules")
	ErrUserNotFound     = errors.New("user not found")

	// Token Errors
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")
	ErrGatePassword   = errors.New("editor gate password is incorrect")

	// Validation Errors (блокируются до любой записи в хранилище)
	ErrInvalidInput         = errors.New("invalid input data")
	ErrEmptyFunnelName      = errors.New("funnel name must not be empty")
	ErrEmptyQuestionTitle   = errors.New("question title must not be empty")
	ErrNoValidAnswers       = errors.New("question must have at least one non-empty answer")
	ErrTooManyAnswers       = errors.New("question cannot have more than four answers")
	ErrQuestionLimitReached = errors.New("funnel already holds the maximum number of questions")
	ErrImportRejected       = errors.New("import payload rejected")

	// Play Session Errors
	ErrFunnelNotConfigured = errors.New("funnel has no questions to play")
	ErrSessionNotFound     = errors.New("play session not found or expired")
	ErrSessionFinished     = errors.New("play session already finished")
	ErrAnswerLocked        = errors.New("answer rejected: previous answer still advancing")
	ErrInvalidAnswerIndex  = errors.New("selected answer index is out of range")

	// Legacy Import Errors
	ErrAlreadyImported = errors.New("legacy funnels already imported for this owner")

	// General Request/Server Errors
	ErrInternalServer = errors.New("internal server error")
)
