package domain

type ContextKey string

// ClaimsContextKey holds the *utils.Claims of an authenticated request.
const ClaimsContextKey ContextKey = "claims"
