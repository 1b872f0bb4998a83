// Package users reads profile and social metrics for the logged in user from the
// provider API. Bodies are passed through untouched.
package users

import (
	"context"
	"encoding/json"

	"github.com/jrsteele09/vkid-relay/internal/errors"
	"golang.org/x/sync/errgroup"
)

const (
	MethodProfileInfo = "account.getProfileInfo"
	MethodVideoGet    = "video.get"
	MethodWallGet     = "wall.get"
	MethodFollowers   = "users.getFollowers"
)

// APIClient calls a provider API method on behalf of a user.
type APIClient interface {
	CallMethod(ctx context.Context, method, accessToken string) (json.RawMessage, error)
}

type Service struct {
	api APIClient
}

func NewService(api APIClient) *Service {
	return &Service{api: api}
}

// AllInfo gathers the four metrics in one document.
type AllInfo struct {
	User      json.RawMessage `json:"user"`
	Posts     json.RawMessage `json:"posts"`
	Followers json.RawMessage `json:"followers"`
	Videos    json.RawMessage `json:"videos"`
}

// Profile returns the whole account.getProfileInfo body.
func (s *Service) Profile(ctx context.Context, accessToken string) (json.RawMessage, error) {
	if accessToken == "" {
		return nil, errors.ErrUnauthenticated
	}
	return s.api.CallMethod(ctx, MethodProfileInfo, accessToken)
}

func (s *Service) NameStatus(ctx context.Context, accessToken string) (json.RawMessage, error) {
	return s.response(ctx, MethodProfileInfo, accessToken)
}

func (s *Service) Videos(ctx context.Context, accessToken string) (json.RawMessage, error) {
	return s.response(ctx, MethodVideoGet, accessToken)
}

func (s *Service) FollowersCount(ctx context.Context, accessToken string) (json.RawMessage, error) {
	return s.response(ctx, MethodFollowers, accessToken)
}

func (s *Service) WallPostCount(ctx context.Context, accessToken string) (json.RawMessage, error) {
	return s.response(ctx, MethodWallGet, accessToken)
}

// AllInfo fetches the metrics concurrently. The first failure cancels the rest.
func (s *Service) AllInfo(ctx context.Context, accessToken string) (AllInfo, error) {
	if accessToken == "" {
		return AllInfo{}, errors.ErrUnauthenticated
	}

	var info AllInfo
	g, gctx := errgroup.WithContext(ctx)
	fetch := func(dst *json.RawMessage, get func(context.Context, string) (json.RawMessage, error)) {
		g.Go(func() error {
			body, err := get(gctx, accessToken)
			if err != nil {
				return err
			}
			*dst = body
			return nil
		})
	}
	fetch(&info.User, s.NameStatus)
	fetch(&info.Posts, s.WallPostCount)
	fetch(&info.Followers, s.FollowersCount)
	fetch(&info.Videos, s.Videos)

	if err := g.Wait(); err != nil {
		return AllInfo{}, err
	}
	return info, nil
}

// response returns the "response" member of a method body, or JSON null when absent.
func (s *Service) response(ctx context.Context, method, accessToken string) (json.RawMessage, error) {
	if accessToken == "" {
		return nil, errors.ErrUnauthenticated
	}
	body, err := s.api.CallMethod(ctx, method, accessToken)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Response json.RawMessage `json:"response"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errors.Wrapf(errors.ErrUpstreamUnavailable, "decoding %s", method)
	}
	if len(envelope.Response) == 0 {
		return json.RawMessage("null"), nil
	}
	return envelope.Response, nil
}
