// Package room provisions LiveKit rooms for voice interviews, issues
// participant credentials and dispatches the voice agent.
package room

import (
	"context"

	"github.com/pkg/errors"

	"github.com/sandeep066/aceInterview/internal/domain"
)

// ErrNotConfigured is returned when LiveKit credentials are missing.
var ErrNotConfigured = errors.New("livekit is not configured")

// Room is a provisioned room with credentials for both sides.
type Room struct {
	Name                string
	SID                 string
	WSURL               string
	ParticipantToken    string
	InterviewerIdentity string
	InterviewerToken    string
}

// RoleMetadata is embedded in a credential so participants can tell the
// candidate from the interviewer.
type RoleMetadata struct {
	Role     string                  `json:"role"`
	Config   *domain.InterviewConfig `json:"config,omitempty"`
	JoinedAt string                  `json:"joined_at,omitempty"`
	IsBot    bool                    `json:"is_bot,omitempty"`
}

// DispatchContext is everything the voice agent needs to run an interview.
// It travels as the dispatch metadata.
type DispatchContext struct {
	WSURL      string                 `json:"livekit_ws_url"`
	Room       string                 `json:"livekit_room_name"`
	Token      string                 `json:"livekit_agent_token"`
	Technology string                 `json:"interview_technology"`
	Company    string                 `json:"interview_company"`
	Experience domain.ExperienceLevel `json:"interview_experience"`
	Duration   int                    `json:"interview_duration"`
	Style      domain.Style           `json:"interview_style"`
	Provider   string                 `json:"agent_provider,omitempty"`
}

// NewDispatchContext builds the agent context for a room.
func NewDispatchContext(r *Room, cfg domain.InterviewConfig, provider string) DispatchContext {
	return DispatchContext{
		WSURL:      r.WSURL,
		Room:       r.Name,
		Token:      r.InterviewerToken,
		Technology: cfg.Topic,
		Company:    cfg.CompanyName,
		Experience: cfg.ExperienceLevel,
		Duration:   cfg.Duration,
		Style:      cfg.Style,
		Provider:   provider,
	}
}

// Provisioner is the room and agent boundary used by the voice service.
type Provisioner interface {
	CreateRoom(ctx context.Context, cfg domain.InterviewConfig, participant string) (*Room, error)
	IssueCredential(roomName, identity string, meta RoleMetadata) (string, error)
	DeleteRoom(ctx context.Context, roomName string) error
	DispatchAgent(ctx context.Context, roomName string, dc DispatchContext) error
	Configured() bool
	WebSocketURL() string
}
