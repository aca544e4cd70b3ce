package github

// userResponse is the payload of GET /users/{username}, reduced to the
// fields this client consumes.
type userResponse struct {
	Login string `json:"login"`
	Type  string `json:"type"`
}

// prCommit is one element of GET /repos/{owner}/{repo}/pulls/{number}/commits.
type prCommit struct {
	SHA    string `json:"sha"`
	Commit struct {
		Author struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"author"`
		Message string `json:"message"`
	} `json:"commit"`
}

// reviewCommentResponse is one element of
// GET /repos/{owner}/{repo}/pulls/{number}/comments.
type reviewCommentResponse struct {
	Body     string `json:"body"`
	Path     string `json:"path"`
	Line     int    `json:"line"`
	CommitID string `json:"commit_id"`
}

// apiErrorBody is the standard error envelope returned by the API.
type apiErrorBody struct {
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url"`
}
