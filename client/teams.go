package client

import (
	"context"
	"net/http"

	"github.com/ProsperCoded/Mini-Jira-Clone/models"
	"github.com/google/uuid"
)

type CreateTeamRequest struct {
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Type        models.TeamType `json:"type,omitempty"`
}

func (c *Client) CreateTeam(ctx context.Context, req CreateTeamRequest) (models.TeamResponse, error) {
	var team models.TeamResponse
	err := c.do(ctx, http.MethodPost, "/teams", nil, req, &team)
	return team, err
}

func (c *Client) MyTeams(ctx context.Context) (models.TeamList, error) {
	var list models.TeamList
	err := c.do(ctx, http.MethodGet, "/teams/my-teams", nil, nil, &list)
	return list, err
}

// JoinPublicTeam joins a PUBLIC team by id.
func (c *Client) JoinPublicTeam(ctx context.Context, teamID uuid.UUID) (models.TeamMemberResponse, error) {
	var member models.TeamMemberResponse
	err := c.do(ctx, http.MethodPost, "/teams/join", nil, map[string]string{"teamId": teamID.String()}, &member)
	return member, err
}

// JoinWithCode joins a PRIVATE team by its join code.
func (c *Client) JoinWithCode(ctx context.Context, code string) (models.TeamMemberResponse, error) {
	var member models.TeamMemberResponse
	err := c.do(ctx, http.MethodPost, "/teams/join", nil, map[string]string{"joinCode": code}, &member)
	return member, err
}

func (c *Client) TeamMembers(ctx context.Context, teamID uuid.UUID) ([]models.TeamMemberResponse, error) {
	var members []models.TeamMemberResponse
	err := c.do(ctx, http.MethodGet, "/teams/"+teamID.String()+"/members", nil, nil, &members)
	return members, err
}
