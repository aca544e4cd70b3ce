// Package github is an HTTP client for the hosted source-control REST API.
//
// Every operation runs under the shared retry policy and rate-limit state
// from the httpx package: responses update the quota view, a low quota
// triggers a proactive wait, and server-specified Retry-After guidance
// overrides the local backoff. Credential values never appear in errors or
// logs.
package github
