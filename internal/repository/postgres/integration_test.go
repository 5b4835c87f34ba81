//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/qivlabs/qiv-auth/internal/model"
	repo "github.com/qivlabs/qiv-auth/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "qiv_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/qiv_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func newLocalIdentity(email, username string) model.Identity {
	now := time.Now()
	return model.Identity{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		AuthType:     model.AuthTypeLocal,
		PasswordHash: "$2a$10$fakehashfakehashfakehash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestIdentityRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	identities := repo.NewIdentityRepository(conn)

	created, err := identities.Create(ctx, newLocalIdentity("alice@example.com", "alice"))
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", created.Email)
	assert.Nil(t, created.OTPCode)
	assert.Nil(t, created.OTPExpiry)

	byEmail, err := identities.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = identities.GetByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, model.ErrNotFound)

	taken, err := identities.UsernameTaken(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = identities.UsernameTaken(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestIdentityRepository_UniqueConstraints(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	identities := repo.NewIdentityRepository(conn)

	_, err = identities.Create(ctx, newLocalIdentity("carol@example.com", "carol"))
	require.NoError(t, err)

	_, err = identities.Create(ctx, newLocalIdentity("carol@example.com", "carol2"))
	require.Error(t, err)
	assert.Equal(t, model.KindConflict, model.KindOf(err))

	_, err = identities.Create(ctx, newLocalIdentity("carol2@example.com", "carol"))
	require.Error(t, err)
	assert.Equal(t, model.KindConflict, model.KindOf(err))
}

func TestIdentityRepository_LinkFederated(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	identities := repo.NewIdentityRepository(conn)

	created, err := identities.Create(ctx, newLocalIdentity("dave@example.com", "dave"))
	require.NoError(t, err)

	linked, err := identities.LinkFederated(ctx, created.ID, "google-sub-dave")
	require.NoError(t, err)
	assert.Equal(t, model.AuthTypeFederated, linked.AuthType)
	require.NotNil(t, linked.FederatedID)
	assert.Equal(t, "google-sub-dave", *linked.FederatedID)
	assert.Equal(t, created.Username, linked.Username)

	// second link must not rebind the federated id
	_, err = identities.LinkFederated(ctx, created.ID, "google-sub-other")
	assert.ErrorIs(t, err, model.ErrNotFound)

	byFederated, err := identities.GetByFederatedID(ctx, "google-sub-dave")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byFederated.ID)
}

func TestIdentityRepository_ConsumeResetOTP(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	identities := repo.NewIdentityRepository(conn)

	created, err := identities.Create(ctx, newLocalIdentity("erin@example.com", "erin"))
	require.NoError(t, err)

	expiry := time.Now().Add(15 * time.Minute)
	require.NoError(t, identities.SetResetOTP(ctx, created.ID, "482913", expiry))

	// wrong code matches nothing
	_, err = identities.ConsumeResetOTP(ctx, "erin@example.com", "000000", time.Now(), "newhash")
	assert.ErrorIs(t, err, model.ErrNotFound)

	updated, err := identities.ConsumeResetOTP(ctx, "erin@example.com", "482913", time.Now(), "newhash")
	require.NoError(t, err)
	assert.Equal(t, "newhash", updated.PasswordHash)
	assert.Nil(t, updated.OTPCode)
	assert.Nil(t, updated.OTPExpiry)

	// single use: the same code cannot be consumed twice
	_, err = identities.ConsumeResetOTP(ctx, "erin@example.com", "482913", time.Now(), "otherhash")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestIdentityRepository_ExpiredOTPNotConsumed(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	identities := repo.NewIdentityRepository(conn)

	created, err := identities.Create(ctx, newLocalIdentity("frank@example.com", "frank"))
	require.NoError(t, err)

	expiry := time.Now().Add(-time.Minute)
	require.NoError(t, identities.SetResetOTP(ctx, created.ID, "123456", expiry))

	_, err = identities.ConsumeResetOTP(ctx, "frank@example.com", "123456", time.Now(), "newhash")
	assert.ErrorIs(t, err, model.ErrNotFound)
}
