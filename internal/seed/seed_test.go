package seed_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/muzz-chat/internal/account"
	"github.com/oggyb/muzz-chat/internal/db"
	"github.com/oggyb/muzz-chat/internal/logger"
	"github.com/oggyb/muzz-chat/internal/seed"
	"github.com/oggyb/muzz-chat/internal/session"
	"github.com/oggyb/muzz-chat/internal/testutil"
)

func TestRun(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	appCtx := env.AppContext(t)

	seeded, err := seed.IsSeeded(ctx, env.DB)
	require.NoError(t, err)
	assert.False(t, seeded)

	// everyone likes everyone, so every opposite-gender pair matches
	opt := seed.Options{Users: 4, LikePercent: 100, MessagesPerMatch: 2}
	require.NoError(t, seed.Run(ctx, appCtx, opt))

	seeded, err = seed.IsSeeded(ctx, env.DB)
	require.NoError(t, err)
	assert.True(t, seeded)

	var users []db.User
	require.NoError(t, env.DB.Find(&users).Error)
	require.Len(t, users, 4)

	var likes, messages int64
	require.NoError(t, env.DB.Model(&db.Like{}).Count(&likes).Error)
	require.NoError(t, env.DB.Model(&db.Message{}).Count(&messages).Error)
	// 2 men x 2 women, both directions
	assert.Equal(t, int64(8), likes)
	assert.Equal(t, int64(4*2), messages)

	// seeded users can sign in
	accounts := account.New(env.Gateway, appCtx.Hasher, logger.Discard())
	_, err = accounts.SignIn(ctx, session.New(), users[0].Username, seed.DemoPassword)
	assert.NoError(t, err)

	// running again starts from scratch
	require.NoError(t, seed.Run(ctx, appCtx, opt))
	require.NoError(t, env.DB.Model(&db.Like{}).Count(&likes).Error)
	assert.Equal(t, int64(8), likes)
}
