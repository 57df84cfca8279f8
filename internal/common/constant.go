package common

// AuthHeaderName is the HTTP header used to carry the access token on
// inbound requests.
const AuthHeaderName = "Authorization"

// BearerScheme is the expected credential scheme in the auth header,
// i.e. "Bearer <token>".
const BearerScheme = "Bearer"
