package service

import (
	"context"

	"github.com/mmynk/memoria/internal/feed"
)

// FeedService implements the FeedService RPC interface.
type FeedService struct {
	feed *feed.Service
}

func NewFeedService(views *feed.Service) *FeedService {
	return &FeedService{feed: views}
}

func (s *FeedService) Timeline(ctx context.Context, _ *TimelineRequest) (*PhotosResponse, error) {
	user, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	photos, err := s.feed.Timeline(ctx, user)
	if err != nil {
		return nil, err
	}
	return &PhotosResponse{Photos: photos}, nil
}

func (s *FeedService) Map(ctx context.Context, _ *MapRequest) (*PhotosResponse, error) {
	user, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	photos, err := s.feed.Map(ctx, user)
	if err != nil {
		return nil, err
	}
	return &PhotosResponse{Photos: photos}, nil
}
