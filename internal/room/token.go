package room

import (
	"encoding/json"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// VideoGrant is the LiveKit "video" claim.
type VideoGrant struct {
	RoomCreate           bool   `json:"roomCreate,omitempty"`
	RoomList             bool   `json:"roomList,omitempty"`
	RoomAdmin            bool   `json:"roomAdmin,omitempty"`
	RoomJoin             bool   `json:"roomJoin,omitempty"`
	Room                 string `json:"room,omitempty"`
	CanPublish           bool   `json:"canPublish,omitempty"`
	CanSubscribe         bool   `json:"canSubscribe,omitempty"`
	CanPublishData       bool   `json:"canPublishData,omitempty"`
	CanUpdateOwnMetadata bool   `json:"canUpdateOwnMetadata,omitempty"`
}

// Claims is a LiveKit access token payload.
type Claims struct {
	Name     string      `json:"name,omitempty"`
	Metadata string      `json:"metadata,omitempty"`
	Video    *VideoGrant `json:"video,omitempty"`
	jwt.RegisteredClaims
}

func participantGrant(roomName string) *VideoGrant {
	return &VideoGrant{
		RoomJoin:             true,
		Room:                 roomName,
		CanPublish:           true,
		CanSubscribe:         true,
		CanPublishData:       true,
		CanUpdateOwnMetadata: true,
	}
}

func adminGrant(roomName string) *VideoGrant {
	return &VideoGrant{
		RoomCreate: true,
		RoomList:   true,
		RoomAdmin:  true,
		Room:       roomName,
	}
}

func signToken(apiKey, apiSecret, identity, name string, meta any, grant *VideoGrant, now time.Time, ttl time.Duration) (string, error) {
	claims := &Claims{
		Name:  name,
		Video: grant,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    apiKey,
			Subject:   identity,
			ID:        identity,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if meta != nil {
		data, err := json.Marshal(meta)
		if err != nil {
			return "", errors.Wrap(err, "failed to encode token metadata")
		}
		claims.Metadata = string(data)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(apiSecret))
	if err != nil {
		return "", errors.Wrap(err, "failed to sign access token")
	}
	return signed, nil
}

// ParseToken verifies a token signed with apiSecret and returns its claims.
func ParseToken(apiSecret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(apiSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrTokenUnverifiable
}
