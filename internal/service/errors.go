package service

import "errors"

var (
	// ErrEmailAlreadyExists indicates a registration reused an email.
	ErrEmailAlreadyExists = errors.New("email already exists")
	// ErrUserNotFound indicates no user matches the supplied email.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidPassword indicates the password does not match the stored hash.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrInvalidToken indicates a bearer token is unknown, inactive or expired.
	ErrInvalidToken = errors.New("invalid token")
)

var (
	// ErrChallengeNotFound indicates the challenge does not exist or was deleted.
	ErrChallengeNotFound = errors.New("challenge not found")
	// ErrChallengeExists indicates another live challenge already uses the description.
	ErrChallengeExists = errors.New("challenge already exists, please check existing challenge")
	// ErrStudentNotFound indicates the assignee is missing or is not a student.
	ErrStudentNotFound = errors.New("student not found")
	// ErrChallengeAlreadyAssigned indicates the student already holds this challenge.
	ErrChallengeAlreadyAssigned = errors.New("challenge already assigned to this student")
	// ErrStudentChallengeNotFound indicates the assignment is not visible to the caller.
	ErrStudentChallengeNotFound = errors.New("student challenge not found")
	// ErrChallengeAlreadySolved indicates a solution was already submitted.
	ErrChallengeAlreadySolved = errors.New("challenge already solved")
	// ErrChallengeNotSolved indicates a review was attempted before the student solved it.
	ErrChallengeNotSolved = errors.New("challenge not solved yet")
	// ErrChallengeAlreadyReviewed indicates the assignment already carries a grade.
	ErrChallengeAlreadyReviewed = errors.New("challenge already reviewed")
	// ErrInvalidStatus indicates an unknown status filter.
	ErrInvalidStatus = errors.New("invalid challenge status")
)

// ErrEmptyContent indicates a text field held nothing but whitespace.
var ErrEmptyContent = errors.New("content must not be empty")

// ErrMarkupNotAllowed indicates a text field carried HTML elements, comments or doctypes.
var ErrMarkupNotAllowed = errors.New("content must be plain text without HTML markup")

// ErrInvalidIdentifier indicates a path identifier that is not a positive integer.
var ErrInvalidIdentifier = errors.New("invalid identifier")
