package service

import "errors"

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidCaptcha     = errors.New("captcha verification failed")
	ErrFormNotFound       = errors.New("form not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrAlreadyDecided     = errors.New("submission already decided")
	ErrNoCertificates     = errors.New("no certificates found")
	ErrUserNotFound       = errors.New("user not found")
)
