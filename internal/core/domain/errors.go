package domain

import "errors"

// Enrollment-time image errors. These are surfaced precisely so the caller
// can correct the input photo.
var ErrInvalidImage = errors.New("invalid image payload")
var ErrNoFaceDetected = errors.New("no face detected")
var ErrMultipleFacesDetected = errors.New("multiple faces detected")

// Registration and password login.
var ErrInvalidRegistration = errors.New("username and password are required")
var ErrUsernameTaken = errors.New("username already taken")
var ErrPasswordMismatch = errors.New("password confirmation does not match")
var ErrAccountNotFound = errors.New("account not found")
var ErrWrongPassword = errors.New("wrong password")
var ErrTooManyAttempts = errors.New("too many failed attempts")

// Face login. Distinct from the enrollment errors above: a probe that
// extracts cleanly but matches nobody is a denial, not a capture problem.
var ErrNoMatch = errors.New("no matching face")

// External identity login.
var ErrInvalidToken = errors.New("invalid identity token")
var ErrIdentityProviderUnavailable = errors.New("identity provider unavailable")
var ErrProvisioningConflict = errors.New("auto-provisioning conflict")

// ErrStoreUnavailable wraps persistence failures that are not integrity
// violations.
var ErrStoreUnavailable = errors.New("account store unavailable")
