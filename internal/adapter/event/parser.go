// Package event parses the hosting environment's trigger-event payload
// into an immutable EventContext. Parsing is typed: each event kind has a
// schema, and structural problems surface here as fatal errors rather than
// leaking into downstream code.
package event

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/bkyoung/secret-scout/internal/domain"
)

// pushPayload is the subset of a push event this tool consumes.
type pushPayload struct {
	Repository *repositoryPayload `json:"repository"`
	Commits    []commitPayload    `json:"commits"`
}

// pullRequestPayload is the subset of a pull_request event this tool
// consumes.
type pullRequestPayload struct {
	Repository  *repositoryPayload `json:"repository"`
	PullRequest *struct {
		Number int `json:"number"`
		Base   refPayload `json:"base"`
		Head   refPayload `json:"head"`
	} `json:"pull_request"`
}

// bareRepositoryPayload covers manual and scheduled events, where only the
// repository block may be present.
type bareRepositoryPayload struct {
	Repository *repositoryPayload `json:"repository"`
}

type repositoryPayload struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	HTMLURL  string `json:"html_url"`
	Owner    struct {
		Login string `json:"login"`
	} `json:"owner"`
}

type commitPayload struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Author  struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"author"`
}

type refPayload struct {
	SHA string `json:"sha"`
	Ref string `json:"ref"`
}

// Parser builds EventContexts from raw payloads.
type Parser struct {
	// fallback supplies repository identity when the payload omits the
	// repository block, which happens on scheduled events.
	fallback domain.Repository
}

// NewParser creates a Parser. fallbackRepo is "owner/name" from the
// environment, used only when the payload has no repository block.
func NewParser(fallbackRepo, fallbackOwner string) *Parser {
	name := fallbackRepo
	if owner := fallbackOwner + "/"; strings.HasPrefix(fallbackRepo, owner) {
		name = strings.TrimPrefix(fallbackRepo, owner)
	}
	return &Parser{
		fallback: domain.Repository{
			Owner:    fallbackOwner,
			Name:     name,
			FullName: fallbackRepo,
			HTMLURL:  "https://github.com/" + fallbackRepo,
		},
	}
}

// ParseFile reads the event payload file and parses it for the named kind.
func (p *Parser) ParseFile(path, kindName string) (*domain.EventContext, error) {
	kind, err := domain.ParseEventKind(kindName)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrMalformedEvent, path, err)
	}

	return p.Parse(data, kind)
}

// Parse builds the EventContext for an event kind from raw payload bytes.
func (p *Parser) Parse(data []byte, kind domain.EventKind) (*domain.EventContext, error) {
	switch kind {
	case domain.EventPush:
		return p.parsePush(data)
	case domain.EventPullRequest:
		return p.parsePullRequest(data)
	case domain.EventManualDispatch, domain.EventSchedule:
		return p.parseBare(data, kind)
	default:
		return nil, fmt.Errorf("%w: %v", domain.ErrUnsupportedEvent, kind)
	}
}

func (p *Parser) parsePush(data []byte) (*domain.EventContext, error) {
	var payload pushPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedEvent, err)
	}

	repo, err := p.repository(payload.Repository)
	if err != nil {
		return nil, err
	}

	commits := make([]domain.Commit, 0, len(payload.Commits))
	for _, c := range payload.Commits {
		if c.ID == "" {
			continue
		}
		commits = append(commits, domain.Commit{
			SHA:     c.ID,
			Author:  c.Author.Name,
			Email:   c.Author.Email,
			Message: c.Message,
		})
	}

	return &domain.EventContext{
		Kind:       domain.EventPush,
		Repository: repo,
		Commits:    commits,
	}, nil
}

func (p *Parser) parsePullRequest(data []byte) (*domain.EventContext, error) {
	var payload pullRequestPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedEvent, err)
	}

	repo, err := p.repository(payload.Repository)
	if err != nil {
		return nil, err
	}

	pr := payload.PullRequest
	if pr == nil {
		return nil, fmt.Errorf("%w: missing pull_request block", domain.ErrMalformedEvent)
	}
	if pr.Number <= 0 {
		return nil, fmt.Errorf("%w: missing pull_request.number", domain.ErrMalformedEvent)
	}
	if pr.Base.SHA == "" || pr.Head.SHA == "" {
		return nil, fmt.Errorf("%w: missing pull_request base/head sha", domain.ErrMalformedEvent)
	}

	return &domain.EventContext{
		Kind:       domain.EventPullRequest,
		Repository: repo,
		PullRequest: &domain.PullRequest{
			Number:  pr.Number,
			BaseSHA: pr.Base.SHA,
			BaseRef: pr.Base.Ref,
			HeadSHA: pr.Head.SHA,
			HeadRef: pr.Head.Ref,
		},
	}, nil
}

func (p *Parser) parseBare(data []byte, kind domain.EventKind) (*domain.EventContext, error) {
	var payload bareRepositoryPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedEvent, err)
	}

	repo, err := p.repository(payload.Repository)
	if err != nil {
		return nil, err
	}

	return &domain.EventContext{
		Kind:       kind,
		Repository: repo,
	}, nil
}

// repository converts the payload repository block, falling back to the
// environment-derived identity when the block is absent.
func (p *Parser) repository(payload *repositoryPayload) (domain.Repository, error) {
	if payload == nil {
		if p.fallback.FullName == "" {
			return domain.Repository{}, fmt.Errorf("%w: missing repository", domain.ErrMalformedEvent)
		}
		return p.fallback, nil
	}

	if payload.Owner.Login == "" || payload.Name == "" {
		return domain.Repository{}, fmt.Errorf("%w: incomplete repository block", domain.ErrMalformedEvent)
	}

	fullName := payload.FullName
	if fullName == "" {
		fullName = payload.Owner.Login + "/" + payload.Name
	}
	htmlURL := payload.HTMLURL
	if htmlURL == "" {
		htmlURL = "https://github.com/" + fullName
	}

	return domain.Repository{
		Owner:    payload.Owner.Login,
		Name:     payload.Name,
		FullName: fullName,
		HTMLURL:  htmlURL,
	}, nil
}
