package helper_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"hotel/config"
	"hotel/helper"
	roomModel "hotel/internal/domains/room/model"
	roomMocks "hotel/internal/domains/room/mocks"
	userModel "hotel/internal/domains/user/model"
	userMocks "hotel/internal/domains/user/mocks"
	"hotel/shared/constant"
	"hotel/shared/password"
)

func seedConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Seed.AdminEmail = "Admin@Hotel.local"
	cfg.App.Seed.AdminPassword = "admin-secret"
	cfg.App.Seed.ReceptionistEmail = "desk@hotel.local"

	return cfg
}

func TestSeeder_Seed(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(users *userMocks.MockUser, rooms *roomMocks.MockRoom)
		wantErr   bool
	}{
		{
			name: "fresh database",
			setupMock: func(users *userMocks.MockUser, rooms *roomMocks.MockRoom) {
				rooms.EXPECT().NameExists(gomock.Any(), gomock.Any()).Return(false, nil).Times(len(helper.DefaultRooms))
				rooms.EXPECT().Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, room roomModel.Room) (int64, error) {
						assert.Equal(t, "seed", room.CreatedBy)
						assert.True(t, room.IsActive)

						return 1, nil
					}).Times(len(helper.DefaultRooms))

				users.EXPECT().EmailExists(gomock.Any(), gomock.Any()).Return(false, nil)
				users.EXPECT().Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, user userModel.User) error {
						assert.Equal(t, "admin@hotel.local", user.Email)
						assert.Equal(t, constant.RoleAdmin, user.Role)
						assert.True(t, user.IsStaff)
						assert.NoError(t, password.Verify("admin-secret", user.Password))

						return nil
					})
			},
		},
		{
			name: "already seeded",
			setupMock: func(users *userMocks.MockUser, rooms *roomMocks.MockRoom) {
				rooms.EXPECT().NameExists(gomock.Any(), gomock.Any()).Return(true, nil).Times(len(helper.DefaultRooms))
				users.EXPECT().EmailExists(gomock.Any(), gomock.Any()).Return(true, nil)
			},
		},
		{
			name: "room lookup fails",
			setupMock: func(_ *userMocks.MockUser, rooms *roomMocks.MockRoom) {
				rooms.EXPECT().NameExists(gomock.Any(), gomock.Any()).Return(false, errors.New("db down"))
			},
			wantErr: true,
		},
		{
			name: "user insert fails",
			setupMock: func(users *userMocks.MockUser, rooms *roomMocks.MockRoom) {
				rooms.EXPECT().NameExists(gomock.Any(), gomock.Any()).Return(true, nil).Times(len(helper.DefaultRooms))
				users.EXPECT().EmailExists(gomock.Any(), gomock.Any()).Return(false, nil)
				users.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("duplicate"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			users := userMocks.NewMockUser(ctrl)
			rooms := roomMocks.NewMockRoom(ctrl)
			tt.setupMock(users, rooms)

			err := helper.NewSeeder(seedConfig(), users, rooms).Seed(context.Background())

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			assert.NoError(t, err)
		})
	}
}
