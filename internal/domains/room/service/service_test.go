package service_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"hotel/config"
	"hotel/infras/otel/mocks"
	s3Mocks "hotel/infras/s3/mocks"
	roomMocks "hotel/internal/domains/room/mocks"
	"hotel/internal/domains/room/model"
	"hotel/internal/domains/room/model/dto"
	"hotel/internal/domains/room/service"
	cacheMocks "hotel/shared/cache/mocks"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	"hotel/shared/failure"
)

const imageURL = "https://cdn.example.com/rooms/old.png"

type fixture struct {
	repo  *roomMocks.MockRoom
	cache *cacheMocks.MockRedisCache
	s3    *s3Mocks.MockS3
	svc   service.Room
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)

	f := &fixture{
		repo:  roomMocks.NewMockRoom(ctrl),
		cache: cacheMocks.NewMockRedisCache(ctrl),
		s3:    s3Mocks.NewMockS3(ctrl),
	}

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	f.svc = service.New(f.repo, cfg, f.cache, mocks.NewOtel(), f.s3)

	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	return f
}

func adminCtx() context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserID, "admin-1")
}

func room() model.Room {
	return model.Room{
		ID:           5,
		Name:         "Sea View Suite",
		Price:        decimal.RequireFromString("180"),
		MaxOccupancy: 3,
		Amenities:    pq.StringArray{"wifi", "balcony"},
		IsActive:     true,
		Image:        imageURL,
	}
}

func TestRoomService_Create(t *testing.T) {
	tests := []struct {
		name      string
		req       dto.CreateRoomRequest
		setupMock func(f *fixture)
		wantCode  int
	}{
		{
			name: "successful creation",
			req: dto.CreateRoomRequest{
				Name:         "Garden Twin",
				Price:        decimal.RequireFromString("75.5"),
				MaxOccupancy: 2,
			},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, room model.Room) (int64, error) {
						assert.Equal(t, "admin-1", room.CreatedBy)
						assert.True(t, room.IsActive)

						return 9, nil
					})
			},
		},
		{
			name: "duplicate name",
			req: dto.CreateRoomRequest{
				Name:         "Garden Twin",
				Price:        decimal.RequireFromString("75"),
				MaxOccupancy: 2,
			},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(int64(0), &pq.Error{Code: constant.PqErrorCodeUniqueViolation})
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "price with three decimals",
			req: dto.CreateRoomRequest{
				Name:         "Garden Twin",
				Price:        decimal.RequireFromString("75.555"),
				MaxOccupancy: 2,
			},
			setupMock: func(*fixture) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "repository error",
			req: dto.CreateRoomRequest{
				Name:         "Garden Twin",
				Price:        decimal.RequireFromString("75"),
				MaxOccupancy: 2,
			},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(int64(0), errors.New("database error"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.Create(adminCtx(), tt.req)

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, int64(9), res.ID)
			assert.Equal(t, "75.50", res.Price)
			assert.Empty(t, res.Amenities)
			assert.Nil(t, res.Image)
		})
	}
}

func TestRoomService_GetAll(t *testing.T) {
	f := newFixture(t)

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).Times(2)
	f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(11, nil)
	f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Room{room()}, nil)

	res, err := f.svc.GetAll(context.Background(), gDto.QueryParams{Page: 1, Limit: 10}, gDto.FilterGroup{})

	require.NoError(t, err)
	assert.Equal(t, 11, res.TotalData)
	assert.Equal(t, 2, res.TotalPage)
	require.Len(t, res.Rooms, 1)
	assert.Equal(t, "180.00", res.Rooms[0].Price)
	assert.Equal(t, []string{"wifi", "balcony"}, res.Rooms[0].Amenities)
}

func TestRoomService_Get(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(f *fixture)
		wantCode  int
	}{
		{
			name: "found",
			setupMock: func(f *fixture) {
				f.cache.EXPECT().Get(gomock.Any(), "room:get:5", gomock.Any()).Return(errors.New("cache miss"))
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(room(), nil)
			},
		},
		{
			name: "not found",
			setupMock: func(f *fixture) {
				f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.Get(context.Background(), 5)

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			require.NotNil(t, res.Image)
			assert.Equal(t, imageURL, *res.Image)
		})
	}
}

func TestRoomService_Update(t *testing.T) {
	name := "Sea View Deluxe"
	inactive := false
	negative := decimal.NewFromInt(-1)

	tests := []struct {
		name      string
		req       dto.UpdateRoomRequest
		setupMock func(f *fixture)
		wantCode  int
	}{
		{
			name: "partial update",
			req:  dto.UpdateRoomRequest{Name: &name, IsActive: &inactive},
			setupMock: func(f *fixture) {
				updated := room()
				updated.Name = name
				updated.IsActive = false

				gomock.InOrder(
					f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(room(), nil),
					f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(updated, nil),
				)
				f.repo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
						assert.Equal(t, name, fields[model.FieldName])
						assert.Equal(t, false, fields[model.FieldIsActive])
						assert.NotContains(t, fields, model.FieldPrice)
						assert.Equal(t, "admin-1", fields[constant.FieldModifiedBy])

						return nil
					})
			},
		},
		{
			name:      "negative price",
			req:       dto.UpdateRoomRequest{Price: &negative},
			setupMock: func(*fixture) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "unknown room",
			req:  dto.UpdateRoomRequest{Name: &name},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "name taken",
			req:  dto.UpdateRoomRequest{Name: &name},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(room(), nil)
				f.repo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(&pq.Error{Code: constant.PqErrorCodeUniqueViolation})
			},
			wantCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.Update(adminCtx(), tt.req, 5)

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, name, res.Name)
			assert.False(t, res.IsActive)
		})
	}
}

func TestRoomService_Delete(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(f *fixture)
		wantCode  int
	}{
		{
			name: "unbooked room",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(room(), nil)
				f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)
				f.s3.EXPECT().ObjectKeyFromURL(imageURL).Return("rooms/old.png")
				f.s3.EXPECT().Delete(gomock.Any(), "rooms/old.png").Return(nil)
			},
		},
		{
			name: "room with bookings",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(room(), nil)
				f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(&pq.Error{Code: constant.PqErrorCodeFkViolation})
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "unknown room",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			err := f.svc.Delete(adminCtx(), 5)

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestRoomService_UploadImage(t *testing.T) {
	const newURL = "https://cdn.example.com/rooms/new.png"

	validReq := func() dto.UploadImageRequest {
		return dto.UploadImageRequest{
			FileName:    "photo.PNG",
			ContentType: "image/png",
			Size:        4,
			Body:        bytes.NewReader([]byte{0x89, 0x50, 0x4e, 0x47}),
		}
	}

	tests := []struct {
		name      string
		req       dto.UploadImageRequest
		setupMock func(f *fixture)
		wantCode  int
	}{
		{
			name: "replaces previous image",
			req:  validReq(),
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(room(), nil)
				f.s3.EXPECT().
					Upload(gomock.Any(), "rooms", gomock.Any(), "image/png", gomock.Any(), int64(4)).
					DoAndReturn(func(_ context.Context, _, fileName, _ string, _ io.Reader, _ int64) (string, error) {
						assert.Regexp(t, `\.png$`, fileName)

						return newURL, nil
					})
				f.repo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
						assert.Equal(t, newURL, fields[model.FieldImage])

						return nil
					})
				f.s3.EXPECT().ObjectKeyFromURL(imageURL).Return("rooms/old.png")
				f.s3.EXPECT().Delete(gomock.Any(), "rooms/old.png").Return(nil)
			},
		},
		{
			name: "unsupported type",
			req: func() dto.UploadImageRequest {
				req := validReq()
				req.ContentType = "image/gif"

				return req
			}(),
			setupMock: func(*fixture) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "too large",
			req: func() dto.UploadImageRequest {
				req := validReq()
				req.Size = 3 * 1024 * 1024

				return req
			}(),
			setupMock: func(*fixture) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "store fails and upload is rolled back",
			req:  validReq(),
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(room(), nil)
				f.s3.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(newURL, nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("database error"))
				f.s3.EXPECT().ObjectKeyFromURL(newURL).Return("rooms/new.png")
				f.s3.EXPECT().Delete(gomock.Any(), "rooms/new.png").Return(nil)
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.UploadImage(adminCtx(), tt.req, 5)

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			require.NotNil(t, res.Image)
			assert.Equal(t, newURL, *res.Image)
		})
	}
}
