package services

import (
	"errors"
	"log"
	"math"
	"strings"
	"time"

	"github.com/ProsperCoded/Mini-Jira-Clone/authz"
	"github.com/ProsperCoded/Mini-Jira-Clone/broker"
	"github.com/ProsperCoded/Mini-Jira-Clone/database"
	"github.com/ProsperCoded/Mini-Jira-Clone/models"
	"github.com/ProsperCoded/Mini-Jira-Clone/utils/joincode"
	"github.com/google/uuid"

	"gorm.io/gorm"
)

const (
	defaultTeamLimit = 10
	maxTeamLimit     = 50
	recentDays       = 7
)

var (
	errTeamNoAccess      = NewError(ErrForbidden, "You do not have access to this team")
	errJoinTargetMissing = NewError(ErrBadRequest, "Either teamId or joinCode must be provided")
	errInvalidJoinCode   = NewError(ErrNotFound, "Invalid join code")
	errPrivateNeedsCode  = NewError(ErrForbidden, "Cannot join private team without join code")
	errAlreadyMember     = NewError(ErrConflict, "You are already a member of this team")
	errUserAlreadyMember = NewError(ErrConflict, "User is already a member of this team")
	errOwnerCannotLeave  = NewError(ErrForbidden, "Team owner cannot leave the team. Transfer ownership or delete the team instead.")
	errNotMemberToLeave  = NewError(ErrNotFound, "You are not a member of this team")
	errOnlyOwnerUpdate   = NewError(ErrForbidden, "Only team owner can update team settings")
	errOnlyOwnerRegen    = NewError(ErrForbidden, "Only team owner can regenerate join code")
	errOnlyOwnerDelete   = NewError(ErrForbidden, "Only team owner can delete the team")
	errRegenPublicTeam   = NewError(ErrBadRequest, "Join code can only be regenerated for private teams")
	errOnlyAdminsInvite  = NewError(ErrForbidden, "Only team admins can invite users")
	errOnlyAdminsRemove  = NewError(ErrForbidden, "Only team admins can remove users")
	errCannotRemoveOwner = NewError(ErrForbidden, "Cannot remove team owner")
	errTargetNotMember   = NewError(ErrNotFound, "User is not a member of this team")
)

type CreateTeamInput struct {
	Name        string          `json:"name" binding:"required,min=2,max=50"`
	Description *string         `json:"description" binding:"omitempty,max=500"`
	Type        models.TeamType `json:"type" binding:"omitempty,oneof=PUBLIC PRIVATE"`
}

type UpdateTeamInput struct {
	Name        *string          `json:"name" binding:"omitempty,min=2,max=50"`
	Description *string          `json:"description" binding:"omitempty,max=500"`
	Type        *models.TeamType `json:"type" binding:"omitempty,oneof=PUBLIC PRIVATE"`
}

// JoinTeamInput joins a public team by TeamID or a private one by JoinCode.
type JoinTeamInput struct {
	TeamID   *uuid.UUID `json:"teamId"`
	JoinCode string     `json:"joinCode"`
}

type InviteUserInput struct {
	Username string            `json:"username" binding:"required"`
	Role     models.MemberRole `json:"role" binding:"omitempty,oneof=ADMIN MEMBER"`
}

type TeamQuery struct {
	Search string `form:"search"`
	Type   string `form:"type"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

type TeamServiceInterface interface {
	CreateTeam(db *database.Database, userID uuid.UUID, input CreateTeamInput) (models.TeamResponse, error)
	GetPublicTeams(db *database.Database, query TeamQuery) (models.TeamList, error)
	GetUserTeams(db *database.Database, userID uuid.UUID, query TeamQuery) (models.TeamList, error)
	GetUserTeamIds(db *database.Database, userID uuid.UUID) ([]uuid.UUID, error)
	GetTeamById(db *database.Database, userID, teamID uuid.UUID) (models.TeamResponse, error)
	JoinTeam(db *database.Database, userID uuid.UUID, input JoinTeamInput) (models.TeamMemberResponse, error)
	LeaveTeam(db *database.Database, userID, teamID uuid.UUID) error
	UpdateTeam(db *database.Database, userID, teamID uuid.UUID, input UpdateTeamInput) (models.TeamResponse, error)
	RegenerateJoinCode(db *database.Database, userID, teamID uuid.UUID) (string, error)
	GetTeamMembers(db *database.Database, userID, teamID uuid.UUID) ([]models.TeamMemberResponse, error)
	InviteUser(db *database.Database, userID, teamID uuid.UUID, input InviteUserInput) (models.TeamMemberResponse, error)
	RemoveMember(db *database.Database, userID, teamID, memberUserID uuid.UUID) error
	DeleteTeam(db *database.Database, userID, teamID uuid.UUID) error
	GetTeamStats(db *database.Database, userID, teamID uuid.UUID) (models.TeamStats, error)
	IsMember(db *database.Database, userID, teamID uuid.UUID) (bool, error)
}

type TeamService struct{}

func validateTeamName(name string) (string, error) {
	name = sanitize(name)
	n := len([]rune(name))
	if n < 2 {
		return "", NewError(ErrValidation, "Team name must be at least 2 characters long")
	}
	if n > 50 {
		return "", NewError(ErrValidation, "Team name must be at most 50 characters long")
	}
	return name, nil
}

func validateTeamDescription(description *string) (*string, error) {
	description = sanitizePtr(description)
	if description != nil && len([]rune(*description)) > 500 {
		return nil, NewError(ErrValidation, "Description must be at most 500 characters long")
	}
	return description, nil
}

func newJoinCode() (*string, error) {
	code, err := joincode.New()
	if err != nil {
		return nil, err
	}
	return &code, nil
}

func findTeam(tx *gorm.DB, teamID uuid.UUID) (models.Team, error) {
	var team models.Team
	if err := tx.Preload("Owner").First(&team, "id = ?", teamID).Error; err != nil {
		return models.Team{}, translateNotFound(err, ErrTeamNotFound)
	}
	return team, nil
}

// countByTeam runs one grouped COUNT(*) for model over teamIDs.
func countByTeam(tx *gorm.DB, model interface{}, teamIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(teamIDs))
	if len(teamIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		TeamID uuid.UUID
		Count  int64
	}
	if err := tx.Model(model).
		Select("team_id, COUNT(*) AS count").
		Where("team_id IN ?", teamIDs).
		Group("team_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		counts[r.TeamID] = r.Count
	}
	return counts, nil
}

// teamResponses builds responses with member and task counts. The join code is
// kept only for teams listed in visibleCodes.
func teamResponses(tx *gorm.DB, teams []models.Team, visibleCodes map[uuid.UUID]bool) ([]models.TeamResponse, error) {
	ids := make([]uuid.UUID, len(teams))
	for i, t := range teams {
		ids[i] = t.ID
	}
	members, err := countByTeam(tx, &models.TeamMember{}, ids)
	if err != nil {
		return nil, err
	}
	tasks, err := countByTeam(tx, &models.Task{}, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.TeamResponse, 0, len(teams))
	for _, t := range teams {
		resp := models.TeamResponse{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			Type:        t.Type,
			OwnerID:     t.OwnerID,
			MemberCount: members[t.ID],
			TaskCount:   tasks[t.ID],
			CreatedAt:   t.CreatedAt,
			UpdatedAt:   t.UpdatedAt,
		}
		if t.Owner != nil {
			resp.Owner = t.Owner.Summary(false)
		}
		if visibleCodes[t.ID] {
			resp.JoinCode = t.JoinCode
		}
		out = append(out, resp)
	}
	return out, nil
}

func teamResponse(tx *gorm.DB, team models.Team, showCode bool) (models.TeamResponse, error) {
	out, err := teamResponses(tx, []models.Team{team}, map[uuid.UUID]bool{team.ID: showCode})
	if err != nil {
		return models.TeamResponse{}, err
	}
	return out[0], nil
}

func memberResponse(tx *gorm.DB, member models.TeamMember) (models.TeamMemberResponse, error) {
	if member.User == nil {
		var user models.User
		if err := tx.First(&user, "id = ?", member.UserID).Error; err != nil {
			return models.TeamMemberResponse{}, translateNotFound(err, ErrUserNotFound)
		}
		member.User = &user
	}
	return member.Response(), nil
}

func (s *TeamService) CreateTeam(db *database.Database, userID uuid.UUID, input CreateTeamInput) (models.TeamResponse, error) {
	name, err := validateTeamName(input.Name)
	if err != nil {
		return models.TeamResponse{}, err
	}
	description, err := validateTeamDescription(input.Description)
	if err != nil {
		return models.TeamResponse{}, err
	}
	teamType := models.PublicTeam
	if input.Type != "" {
		if teamType, err = models.TeamTypeFromString(string(input.Type)); err != nil {
			return models.TeamResponse{}, NewError(ErrValidation, "Type must be either PUBLIC or PRIVATE")
		}
	}

	team := models.Team{
		Name:        name,
		Description: description,
		Type:        teamType,
		OwnerID:     userID,
	}
	if teamType == models.PrivateTeam {
		if team.JoinCode, err = newJoinCode(); err != nil {
			return models.TeamResponse{}, err
		}
	}

	tx := db.DB.Begin()
	if tx.Error != nil {
		return models.TeamResponse{}, tx.Error
	}

	if err := tx.Create(&team).Error; err != nil {
		tx.Rollback()
		return models.TeamResponse{}, err
	}

	owner := models.TeamMember{UserID: userID, TeamID: team.ID, Role: models.RoleAdmin}
	if err := tx.Create(&owner).Error; err != nil {
		tx.Rollback()
		return models.TeamResponse{}, err
	}

	if err := recordEvent(tx, broker.TeamCreated, "team", "create", userID, team.ID, map[string]interface{}{
		"id":   team.ID.String(),
		"name": team.Name,
		"type": team.Type,
	}); err != nil {
		tx.Rollback()
		return models.TeamResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		return models.TeamResponse{}, err
	}

	log.Printf("Team %s (%s) created by %s", team.ID, team.Type, userID)
	created, err := findTeam(db.DB, team.ID)
	if err != nil {
		return models.TeamResponse{}, err
	}
	return teamResponse(db.DB, created, true)
}

func normalizeTeamQuery(query TeamQuery) (int, int, error) {
	page, limit := query.Page, query.Limit
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = defaultTeamLimit
	}
	if page < 1 {
		return 0, 0, NewError(ErrBadRequest, "Page must be at least 1")
	}
	if limit < 1 || limit > maxTeamLimit {
		return 0, 0, NewError(ErrBadRequest, "Limit must be between 1 and 50")
	}
	return page, limit, nil
}

func searchTeams(q *gorm.DB, search string) *gorm.DB {
	search = strings.TrimSpace(search)
	if search == "" {
		return q
	}
	pattern := containsPattern(search)
	return q.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(COALESCE(description, '')) LIKE ? ESCAPE '\')`, pattern, pattern)
}

func listTeams(db *database.Database, q *gorm.DB, page, limit int, visible func(models.Team) bool) (models.TeamList, error) {
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return models.TeamList{}, err
	}

	var teams []models.Team
	if err := q.Preload("Owner").
		Order("created_at DESC, id ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&teams).Error; err != nil {
		return models.TeamList{}, err
	}

	codes := make(map[uuid.UUID]bool, len(teams))
	for _, t := range teams {
		codes[t.ID] = visible(t)
	}
	responses, err := teamResponses(db.DB, teams, codes)
	if err != nil {
		return models.TeamList{}, err
	}

	return models.TeamList{
		Teams:      responses,
		Total:      total,
		Page:       page,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

func (s *TeamService) GetPublicTeams(db *database.Database, query TeamQuery) (models.TeamList, error) {
	page, limit, err := normalizeTeamQuery(query)
	if err != nil {
		return models.TeamList{}, err
	}
	q := searchTeams(db.DB.Model(&models.Team{}).Where("type = ?", models.PublicTeam), query.Search)
	return listTeams(db, q, page, limit, func(models.Team) bool { return false })
}

func (s *TeamService) GetUserTeams(db *database.Database, userID uuid.UUID, query TeamQuery) (models.TeamList, error) {
	page, limit, err := normalizeTeamQuery(query)
	if err != nil {
		return models.TeamList{}, err
	}
	q := db.DB.Model(&models.Team{}).
		Where("id IN (?)", db.DB.Model(&models.TeamMember{}).Select("team_id").Where("user_id = ?", userID))
	if query.Type != "" {
		teamType, err := models.TeamTypeFromString(query.Type)
		if err != nil {
			return models.TeamList{}, NewError(ErrBadRequest, "Type must be either PUBLIC or PRIVATE")
		}
		q = q.Where("type = ?", teamType)
	}
	q = searchTeams(q, query.Search)
	return listTeams(db, q, page, limit, func(models.Team) bool { return true })
}

func (s *TeamService) GetUserTeamIds(db *database.Database, userID uuid.UUID) ([]uuid.UUID, error) {
	ids, err := teamIDsOf(db.DB, userID)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return ids, nil
}

func (s *TeamService) GetTeamById(db *database.Database, userID, teamID uuid.UUID) (models.TeamResponse, error) {
	team, err := findTeam(db.DB, teamID)
	if err != nil {
		return models.TeamResponse{}, err
	}
	member, err := findMembership(db.DB, userID, teamID)
	if err != nil {
		return models.TeamResponse{}, err
	}
	if team.Type == models.PrivateTeam && !authz.CanViewTeam(member) {
		return models.TeamResponse{}, errTeamNoAccess
	}
	return teamResponse(db.DB, team, authz.CanSeeJoinCode(member))
}

func (s *TeamService) JoinTeam(db *database.Database, userID uuid.UUID, input JoinTeamInput) (models.TeamMemberResponse, error) {
	code := strings.TrimSpace(input.JoinCode)
	if code == "" && (input.TeamID == nil || *input.TeamID == uuid.Nil) {
		return models.TeamMemberResponse{}, errJoinTargetMissing
	}

	tx := db.DB.Begin()
	if tx.Error != nil {
		return models.TeamMemberResponse{}, tx.Error
	}

	var team models.Team
	if code != "" {
		if err := tx.Where("join_code = ?", code).First(&team).Error; err != nil {
			tx.Rollback()
			return models.TeamMemberResponse{}, translateNotFound(err, errInvalidJoinCode)
		}
	} else {
		if err := tx.First(&team, "id = ?", *input.TeamID).Error; err != nil {
			tx.Rollback()
			return models.TeamMemberResponse{}, translateNotFound(err, ErrTeamNotFound)
		}
		if team.Type == models.PrivateTeam {
			tx.Rollback()
			return models.TeamMemberResponse{}, errPrivateNeedsCode
		}
	}

	existing, err := findMembership(tx, userID, team.ID)
	if err != nil {
		tx.Rollback()
		return models.TeamMemberResponse{}, err
	}
	if existing != nil {
		tx.Rollback()
		return models.TeamMemberResponse{}, errAlreadyMember
	}

	member := models.TeamMember{UserID: userID, TeamID: team.ID, Role: models.RoleMember}
	if err := tx.Create(&member).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.TeamMemberResponse{}, errAlreadyMember
		}
		return models.TeamMemberResponse{}, err
	}

	if err := recordEvent(tx, broker.TeamMemberJoined, "team", "join", userID, team.ID, map[string]interface{}{
		"teamId": team.ID.String(),
		"userId": userID.String(),
	}); err != nil {
		tx.Rollback()
		return models.TeamMemberResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		return models.TeamMemberResponse{}, err
	}

	return memberResponse(db.DB, member)
}

func (s *TeamService) LeaveTeam(db *database.Database, userID, teamID uuid.UUID) error {
	tx := db.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	var team models.Team
	if err := tx.First(&team, "id = ?", teamID).Error; err != nil {
		tx.Rollback()
		return translateNotFound(err, ErrTeamNotFound)
	}

	member, err := findMembership(tx, userID, teamID)
	if err != nil {
		tx.Rollback()
		return err
	}
	if member == nil {
		tx.Rollback()
		return errNotMemberToLeave
	}
	if authz.IsTeamOwner(userID, &team) {
		tx.Rollback()
		return errOwnerCannotLeave
	}

	if err := tx.Delete(member).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := recordEvent(tx, broker.TeamMemberLeft, "team", "leave", userID, teamID, map[string]interface{}{
		"teamId": teamID.String(),
		"userId": userID.String(),
	}); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

func (s *TeamService) UpdateTeam(db *database.Database, userID, teamID uuid.UUID, input UpdateTeamInput) (models.TeamResponse, error) {
	updates := map[string]interface{}{}

	if input.Name != nil {
		name, err := validateTeamName(*input.Name)
		if err != nil {
			return models.TeamResponse{}, err
		}
		updates["name"] = name
	}
	if input.Description != nil {
		description, err := validateTeamDescription(input.Description)
		if err != nil {
			return models.TeamResponse{}, err
		}
		updates["description"] = description
	}

	tx := db.DB.Begin()
	if tx.Error != nil {
		return models.TeamResponse{}, tx.Error
	}

	var team models.Team
	if err := tx.First(&team, "id = ?", teamID).Error; err != nil {
		tx.Rollback()
		return models.TeamResponse{}, translateNotFound(err, ErrTeamNotFound)
	}
	if !authz.IsTeamOwner(userID, &team) {
		tx.Rollback()
		return models.TeamResponse{}, errOnlyOwnerUpdate
	}

	if input.Type != nil {
		teamType, err := models.TeamTypeFromString(string(*input.Type))
		if err != nil {
			tx.Rollback()
			return models.TeamResponse{}, NewError(ErrValidation, "Type must be either PUBLIC or PRIVATE")
		}
		updates["type"] = teamType
		switch teamType {
		case models.PrivateTeam:
			code, err := newJoinCode()
			if err != nil {
				tx.Rollback()
				return models.TeamResponse{}, err
			}
			updates["join_code"] = code
		case models.PublicTeam:
			updates["join_code"] = nil
		}
	}

	if len(updates) > 0 {
		if err := tx.Model(&team).Updates(updates).Error; err != nil {
			tx.Rollback()
			return models.TeamResponse{}, err
		}
	}

	if err := recordEvent(tx, broker.TeamUpdated, "team", "update", userID, teamID, map[string]interface{}{
		"id": teamID.String(),
	}); err != nil {
		tx.Rollback()
		return models.TeamResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		return models.TeamResponse{}, err
	}

	updated, err := findTeam(db.DB, teamID)
	if err != nil {
		return models.TeamResponse{}, err
	}
	return teamResponse(db.DB, updated, true)
}

func (s *TeamService) RegenerateJoinCode(db *database.Database, userID, teamID uuid.UUID) (string, error) {
	tx := db.DB.Begin()
	if tx.Error != nil {
		return "", tx.Error
	}

	var team models.Team
	if err := tx.First(&team, "id = ?", teamID).Error; err != nil {
		tx.Rollback()
		return "", translateNotFound(err, ErrTeamNotFound)
	}
	if !authz.IsTeamOwner(userID, &team) {
		tx.Rollback()
		return "", errOnlyOwnerRegen
	}
	if team.Type != models.PrivateTeam {
		tx.Rollback()
		return "", errRegenPublicTeam
	}

	code, err := newJoinCode()
	if err != nil {
		tx.Rollback()
		return "", err
	}
	if err := tx.Model(&team).Update("join_code", code).Error; err != nil {
		tx.Rollback()
		return "", err
	}

	if err := recordEvent(tx, broker.TeamJoinCodeRotated, "team", "regenerate_join_code", userID, teamID, map[string]interface{}{
		"id": teamID.String(),
	}); err != nil {
		tx.Rollback()
		return "", err
	}

	if err := tx.Commit().Error; err != nil {
		return "", err
	}
	return *code, nil
}

func (s *TeamService) GetTeamMembers(db *database.Database, userID, teamID uuid.UUID) ([]models.TeamMemberResponse, error) {
	if _, err := findTeam(db.DB, teamID); err != nil {
		return nil, err
	}
	member, err := findMembership(db.DB, userID, teamID)
	if err != nil {
		return nil, err
	}
	if !authz.CanViewTeam(member) {
		return nil, NewError(ErrForbidden, "You must be a team member to view member list")
	}

	var members []models.TeamMember
	if err := db.DB.Preload("User").
		Where("team_id = ?", teamID).
		Order("role ASC, joined_at ASC, id ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}

	out := make([]models.TeamMemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, m.Response())
	}
	return out, nil
}

func (s *TeamService) InviteUser(db *database.Database, userID, teamID uuid.UUID, input InviteUserInput) (models.TeamMemberResponse, error) {
	role := models.RoleMember
	if input.Role != "" {
		var err error
		if role, err = models.MemberRoleFromString(string(input.Role)); err != nil {
			return models.TeamMemberResponse{}, NewError(ErrValidation, "Role must be either ADMIN or MEMBER")
		}
	}

	tx := db.DB.Begin()
	if tx.Error != nil {
		return models.TeamMemberResponse{}, tx.Error
	}

	if _, err := findTeam(tx, teamID); err != nil {
		tx.Rollback()
		return models.TeamMemberResponse{}, err
	}

	inviter, err := findMembership(tx, userID, teamID)
	if err != nil {
		tx.Rollback()
		return models.TeamMemberResponse{}, err
	}
	if inviter == nil {
		tx.Rollback()
		return models.TeamMemberResponse{}, NewError(ErrForbidden, "You must be a team member to invite users")
	}
	if !authz.CanManageMembers(inviter) {
		tx.Rollback()
		return models.TeamMemberResponse{}, errOnlyAdminsInvite
	}

	var invitee models.User
	if err := tx.Where("username = ?", strings.TrimSpace(input.Username)).First(&invitee).Error; err != nil {
		tx.Rollback()
		return models.TeamMemberResponse{}, translateNotFound(err, ErrUserNotFound)
	}

	existing, err := findMembership(tx, invitee.ID, teamID)
	if err != nil {
		tx.Rollback()
		return models.TeamMemberResponse{}, err
	}
	if existing != nil {
		tx.Rollback()
		return models.TeamMemberResponse{}, errUserAlreadyMember
	}

	member := models.TeamMember{UserID: invitee.ID, TeamID: teamID, Role: role, User: &invitee}
	if err := tx.Omit("User").Create(&member).Error; err != nil {
		tx.Rollback()
		return models.TeamMemberResponse{}, err
	}

	if err := recordEvent(tx, broker.TeamMemberJoined, "team", "invite", userID, teamID, map[string]interface{}{
		"teamId": teamID.String(),
		"userId": invitee.ID.String(),
		"role":   role,
	}); err != nil {
		tx.Rollback()
		return models.TeamMemberResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		return models.TeamMemberResponse{}, err
	}
	return member.Response(), nil
}

func (s *TeamService) RemoveMember(db *database.Database, userID, teamID, memberUserID uuid.UUID) error {
	tx := db.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	var team models.Team
	if err := tx.First(&team, "id = ?", teamID).Error; err != nil {
		tx.Rollback()
		return translateNotFound(err, ErrTeamNotFound)
	}

	remover, err := findMembership(tx, userID, teamID)
	if err != nil {
		tx.Rollback()
		return err
	}
	if remover == nil {
		tx.Rollback()
		return NewError(ErrForbidden, "You must be a team member to remove users")
	}
	if !authz.CanManageMembers(remover) {
		tx.Rollback()
		return errOnlyAdminsRemove
	}
	if authz.IsTeamOwner(memberUserID, &team) {
		tx.Rollback()
		return errCannotRemoveOwner
	}

	target, err := findMembership(tx, memberUserID, teamID)
	if err != nil {
		tx.Rollback()
		return err
	}
	if target == nil {
		tx.Rollback()
		return errTargetNotMember
	}

	if err := tx.Delete(target).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := recordEvent(tx, broker.TeamMemberRemoved, "team", "remove_member", userID, teamID, map[string]interface{}{
		"teamId": teamID.String(),
		"userId": memberUserID.String(),
	}); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

func (s *TeamService) DeleteTeam(db *database.Database, userID, teamID uuid.UUID) error {
	tx := db.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	team, err := database.LockTeam(tx, teamID)
	if err != nil {
		tx.Rollback()
		return translateNotFound(err, ErrTeamNotFound)
	}
	if !authz.IsTeamOwner(userID, team) {
		tx.Rollback()
		return errOnlyOwnerDelete
	}

	if err := tx.Where("team_id = ?", teamID).Delete(&models.Task{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Where("team_id = ?", teamID).Delete(&models.TeamMember{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(team).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := recordEvent(tx, broker.TeamDeleted, "team", "delete", userID, teamID, map[string]interface{}{
		"id": teamID.String(),
	}); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}
	log.Printf("Team %s deleted by %s", teamID, userID)
	return nil
}

func (s *TeamService) GetTeamStats(db *database.Database, userID, teamID uuid.UUID) (models.TeamStats, error) {
	if _, err := findTeam(db.DB, teamID); err != nil {
		return models.TeamStats{}, err
	}
	member, err := findMembership(db.DB, userID, teamID)
	if err != nil {
		return models.TeamStats{}, err
	}
	if !authz.CanViewTeam(member) {
		return models.TeamStats{}, NewError(ErrForbidden, "You must be a team member to view team stats")
	}

	var stats models.TeamStats
	if err := db.DB.Model(&models.TeamMember{}).Where("team_id = ?", teamID).Count(&stats.TotalMembers).Error; err != nil {
		return models.TeamStats{}, err
	}

	var rows []struct {
		Status models.TaskStatus
		Count  int64
	}
	if err := db.DB.Model(&models.Task{}).
		Select("status, COUNT(*) AS count").
		Where("team_id = ?", teamID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return models.TeamStats{}, err
	}
	for _, r := range rows {
		switch r.Status {
		case models.StatusTodo:
			stats.TasksByStatus.Todo = r.Count
		case models.StatusInProgress:
			stats.TasksByStatus.InProgress = r.Count
		case models.StatusDone:
			stats.TasksByStatus.Done = r.Count
		}
	}
	stats.TotalTasks = stats.TasksByStatus.Todo + stats.TasksByStatus.InProgress + stats.TasksByStatus.Done

	since := time.Now().UTC().AddDate(0, 0, -recentDays)
	if err := db.DB.Model(&models.Task{}).
		Where("team_id = ? AND (created_at >= ? OR updated_at >= ?)", teamID, since, since).
		Count(&stats.RecentActivity).Error; err != nil {
		return models.TeamStats{}, err
	}
	return stats, nil
}

func (s *TeamService) IsMember(db *database.Database, userID, teamID uuid.UUID) (bool, error) {
	member, err := findMembership(db.DB, userID, teamID)
	if err != nil {
		return false, err
	}
	return member != nil, nil
}

var TeamServiceInstance TeamServiceInterface = &TeamService{}
