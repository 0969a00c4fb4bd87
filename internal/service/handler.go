package service

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/memoria/internal/apperr"
	"github.com/mmynk/memoria/internal/middleware"
	"github.com/mmynk/memoria/internal/models"
)

// Procedure paths.
const (
	AuthRegisterProcedure = "/memoria.v1.AuthService/Register"
	AuthLoginProcedure    = "/memoria.v1.AuthService/Login"
	AuthMeProcedure       = "/memoria.v1.AuthService/Me"

	FamilyGetProcedure               = "/memoria.v1.FamilyService/GetFamily"
	FamilyGetInvitationCodeProcedure = "/memoria.v1.FamilyService/GetInvitationCode"
	FamilySetMemberActiveProcedure   = "/memoria.v1.FamilyService/SetMemberActive"
	FamilyUpdateSettingsProcedure    = "/memoria.v1.FamilyService/UpdateSettings"

	AlbumCreateProcedure = "/memoria.v1.AlbumService/CreateAlbum"
	AlbumListProcedure   = "/memoria.v1.AlbumService/ListAlbums"
	AlbumGetProcedure    = "/memoria.v1.AlbumService/GetAlbum"

	PhotoUploadProcedure        = "/memoria.v1.PhotoService/UploadPhotos"
	PhotoGetProcedure           = "/memoria.v1.PhotoService/GetPhoto"
	PhotoAddCommentProcedure    = "/memoria.v1.PhotoService/AddComment"
	PhotoListCommentsProcedure  = "/memoria.v1.PhotoService/ListComments"
	PhotoReactProcedure         = "/memoria.v1.PhotoService/React"
	PhotoListReactionsProcedure = "/memoria.v1.PhotoService/ListReactions"

	FeedTimelineProcedure = "/memoria.v1.FeedService/Timeline"
	FeedMapProcedure      = "/memoria.v1.FeedService/Map"
)

// PublicProcedures can be called without a token.
var PublicProcedures = []string{AuthRegisterProcedure, AuthLoginProcedure}

// Services bundles the RPC implementations mounted by Register.
type Services struct {
	Auth   *AuthService
	Family *FamilyService
	Album  *AlbumService
	Photo  *PhotoService
	Feed   *FeedService
}

// Register mounts every procedure on mux. The JSON codec is always added.
func Register(mux *http.ServeMux, s Services, opts ...connect.HandlerOption) {
	opts = append([]connect.HandlerOption{Codec()}, opts...)

	mux.Handle(unary(AuthRegisterProcedure, s.Auth.Register, opts))
	mux.Handle(unary(AuthLoginProcedure, s.Auth.Login, opts))
	mux.Handle(unary(AuthMeProcedure, s.Auth.Me, opts))

	mux.Handle(unary(FamilyGetProcedure, s.Family.GetFamily, opts))
	mux.Handle(unary(FamilyGetInvitationCodeProcedure, s.Family.GetInvitationCode, opts))
	mux.Handle(unary(FamilySetMemberActiveProcedure, s.Family.SetMemberActive, opts))
	mux.Handle(unary(FamilyUpdateSettingsProcedure, s.Family.UpdateSettings, opts))

	mux.Handle(unary(AlbumCreateProcedure, s.Album.CreateAlbum, opts))
	mux.Handle(unary(AlbumListProcedure, s.Album.ListAlbums, opts))
	mux.Handle(unary(AlbumGetProcedure, s.Album.GetAlbum, opts))

	mux.Handle(unary(PhotoUploadProcedure, s.Photo.UploadPhotos, opts))
	mux.Handle(unary(PhotoGetProcedure, s.Photo.GetPhoto, opts))
	mux.Handle(unary(PhotoAddCommentProcedure, s.Photo.AddComment, opts))
	mux.Handle(unary(PhotoListCommentsProcedure, s.Photo.ListComments, opts))
	mux.Handle(unary(PhotoReactProcedure, s.Photo.React, opts))
	mux.Handle(unary(PhotoListReactionsProcedure, s.Photo.ListReactions, opts))

	mux.Handle(unary(FeedTimelineProcedure, s.Feed.Timeline, opts))
	mux.Handle(unary(FeedMapProcedure, s.Feed.Map, opts))
}

// unary adapts a plain request/response method to a Connect handler and maps
// application errors to Connect codes.
func unary[Req, Res any](procedure string, fn func(context.Context, *Req) (*Res, error), opts []connect.HandlerOption) (string, http.Handler) {
	return procedure, connect.NewUnaryHandler(
		procedure,
		func(ctx context.Context, req *connect.Request[Req]) (*connect.Response[Res], error) {
			res, err := fn(ctx, req.Msg)
			if err != nil {
				logInternal(ctx, procedure, err)
				return nil, toConnectError(err)
			}
			return connect.NewResponse(res), nil
		},
		opts...,
	)
}

// caller returns the authenticated user placed in ctx by the auth interceptor.
func caller(ctx context.Context) (*models.User, error) {
	user := middleware.User(ctx)
	if user == nil {
		return nil, apperr.Unauthorized("authentication required", nil)
	}
	return user, nil
}
