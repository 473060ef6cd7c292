package room

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/sandeep066/aceInterview/internal/domain"
	"github.com/sandeep066/aceInterview/internal/pkg/config"
)

const (
	roomService     = "livekit.RoomService"
	dispatchService = "livekit.AgentDispatchService"

	defaultAgentName = "voice-agent"
	defaultTokenTTL  = 6 * time.Hour

	// Seconds an empty room is kept before LiveKit closes it.
	emptyTimeout = 600

	roomSuffixLetters = "abcdefghijklmnopqrstuvwxyz"
	roomSuffixLength  = 9
)

// Option configures a LiveKit provisioner.
type Option func(*LiveKit)

// WithHTTPClient sets the client used for server API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(l *LiveKit) {
		l.httpClient = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *LiveKit) {
		l.logger = logger
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *LiveKit) {
		l.now = now
	}
}

// WithIntn replaces the random source used for room name suffixes.
func WithIntn(intn func(n int) int) Option {
	return func(l *LiveKit) {
		l.intn = intn
	}
}

// LiveKit provisions rooms through the LiveKit server API (Twirp over
// JSON) and signs access tokens locally.
type LiveKit struct {
	apiKey    string
	apiSecret string
	wsURL     string
	apiURL    string
	agentName string
	tokenTTL  time.Duration

	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
	intn       func(n int) int
	// credential signs participant tokens.
	credential func(apiKey, apiSecret, identity, name string, meta any, grant *VideoGrant, now time.Time, ttl time.Duration) (string, error)
}

// NewLiveKit creates a provisioner from configuration. The server API URL
// defaults to the WebSocket URL with an http(s) scheme.
func NewLiveKit(cfg config.LiveKitConfig, opts ...Option) *LiveKit {
	l := &LiveKit{
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		wsURL:      cfg.WSURL,
		apiURL:     strings.TrimSuffix(cfg.APIURL, "/"),
		agentName:  cfg.AgentName,
		tokenTTL:   cfg.TokenTTL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     slog.Default(),
		now:        time.Now,
		intn:       rand.IntN,
		credential: signToken,
	}
	if l.apiURL == "" {
		l.apiURL = APIURLFromWebSocket(cfg.WSURL)
	}
	if l.agentName == "" {
		l.agentName = defaultAgentName
	}
	if l.tokenTTL <= 0 {
		l.tokenTTL = defaultTokenTTL
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// APIURLFromWebSocket maps wss:// to https:// and ws:// to http://.
func APIURLFromWebSocket(wsURL string) string {
	switch {
	case strings.HasPrefix(wsURL, "wss://"):
		return "https://" + strings.TrimSuffix(strings.TrimPrefix(wsURL, "wss://"), "/")
	case strings.HasPrefix(wsURL, "ws://"):
		return "http://" + strings.TrimSuffix(strings.TrimPrefix(wsURL, "ws://"), "/")
	default:
		return strings.TrimSuffix(wsURL, "/")
	}
}

func (l *LiveKit) Configured() bool {
	return l.apiKey != "" && l.apiSecret != "" && l.wsURL != ""
}

func (l *LiveKit) WebSocketURL() string {
	return l.wsURL
}

// RoomName returns a fresh room name of the form interview-<unix>-<suffix>.
func (l *LiveKit) RoomName() string {
	var b strings.Builder
	b.Grow(roomSuffixLength)
	for range roomSuffixLength {
		b.WriteByte(roomSuffixLetters[l.intn(len(roomSuffixLetters))])
	}
	return fmt.Sprintf("interview-%d-%s", l.now().Unix(), b.String())
}

// CreateRoom creates the room and issues credentials for the candidate and
// the AI interviewer.
func (l *LiveKit) CreateRoom(ctx context.Context, cfg domain.InterviewConfig, participant string) (*Room, error) {
	if !l.Configured() {
		return nil, ErrNotConfigured
	}

	name := l.RoomName()
	meta, err := json.Marshal(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode room metadata")
	}

	var created struct {
		SID  string `json:"sid"`
		Name string `json:"name"`
	}
	req := map[string]any{
		"name":          name,
		"empty_timeout": emptyTimeout,
		"metadata":      string(meta),
	}
	if err := l.call(ctx, roomService, "CreateRoom", name, req, &created); err != nil {
		return nil, errors.Wrapf(err, "failed to create room %s", name)
	}

	participantToken, err := l.IssueCredential(name, participant, RoleMetadata{
		Role:     "candidate",
		Config:   &cfg,
		JoinedAt: l.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		l.discardRoom(ctx, name)
		return nil, err
	}

	interviewer := fmt.Sprintf("ai-interviewer-%d", l.now().Unix())
	interviewerToken, err := l.IssueCredential(name, interviewer, RoleMetadata{
		Role:   "interviewer",
		Config: &cfg,
		IsBot:  true,
	})
	if err != nil {
		l.discardRoom(ctx, name)
		return nil, err
	}

	l.logger.InfoContext(ctx, "room created", slog.String("room", name), slog.String("sid", created.SID))
	return &Room{
		Name:                name,
		SID:                 created.SID,
		WSURL:               l.wsURL,
		ParticipantToken:    participantToken,
		InterviewerIdentity: interviewer,
		InterviewerToken:    interviewerToken,
	}, nil
}

// discardRoom deletes a room that was created but cannot be handed out. A
// failure only leaves the room to LiveKit's empty timeout.
func (l *LiveKit) discardRoom(ctx context.Context, name string) {
	if err := l.DeleteRoom(context.WithoutCancel(ctx), name); err != nil {
		l.logger.WarnContext(ctx, "failed to delete unusable room",
			slog.String("room", name),
			slog.String("error", err.Error()),
		)
	}
}

// IssueCredential signs a join token for identity, scoped to roomName.
func (l *LiveKit) IssueCredential(roomName, identity string, meta RoleMetadata) (string, error) {
	if !l.Configured() {
		return "", ErrNotConfigured
	}
	token, err := l.credential(l.apiKey, l.apiSecret, identity, identity, meta, participantGrant(roomName), l.now(), l.tokenTTL)
	if err != nil {
		return "", errors.Wrapf(err, "failed to issue credential for %s", identity)
	}
	return token, nil
}

// DeleteRoom closes the room, disconnecting everyone in it.
func (l *LiveKit) DeleteRoom(ctx context.Context, roomName string) error {
	if !l.Configured() {
		return ErrNotConfigured
	}
	if err := l.call(ctx, roomService, "DeleteRoom", roomName, map[string]any{"room": roomName}, nil); err != nil {
		return errors.Wrapf(err, "failed to delete room %s", roomName)
	}
	l.logger.InfoContext(ctx, "room deleted", slog.String("room", roomName))
	return nil
}

// DispatchAgent asks LiveKit to start the named voice agent in roomName.
func (l *LiveKit) DispatchAgent(ctx context.Context, roomName string, dc DispatchContext) error {
	if !l.Configured() {
		return ErrNotConfigured
	}
	meta, err := json.Marshal(dc)
	if err != nil {
		return errors.Wrap(err, "failed to encode dispatch context")
	}

	var dispatch struct {
		ID string `json:"id"`
	}
	req := map[string]any{
		"agent_name": l.agentName,
		"room":       roomName,
		"metadata":   string(meta),
	}
	if err := l.call(ctx, dispatchService, "CreateDispatch", roomName, req, &dispatch); err != nil {
		return errors.Wrapf(err, "failed to dispatch agent %s to %s", l.agentName, roomName)
	}
	l.logger.InfoContext(ctx, "agent dispatched",
		slog.String("room", roomName),
		slog.String("agent", l.agentName),
		slog.String("dispatch_id", dispatch.ID),
	)
	return nil
}

// TwirpError is an error returned by the LiveKit server API.
type TwirpError struct {
	StatusCode int
	Code       string `json:"code"`
	Msg        string `json:"msg"`
}

func (e *TwirpError) Error() string {
	return fmt.Sprintf("livekit %s (status %d): %s", e.Code, e.StatusCode, e.Msg)
}

func (l *LiveKit) call(ctx context.Context, service, method, roomName string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return errors.Wrap(err, "failed to encode request")
	}

	token, err := signToken(l.apiKey, l.apiSecret, l.apiKey, "", nil, adminGrant(roomName), l.now(), 10*time.Minute)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/twirp/%s/%s", l.apiURL, service, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response")
	}

	if resp.StatusCode != http.StatusOK {
		twirpErr := &TwirpError{StatusCode: resp.StatusCode}
		if json.Unmarshal(data, twirpErr) != nil || twirpErr.Msg == "" {
			twirpErr.Msg = strings.TrimSpace(string(data))
		}
		return twirpErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, "failed to decode response")
	}
	return nil
}
