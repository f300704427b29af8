package user

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConsentSettingsRoundTrip(t *testing.T) {
	in := ConsentSettings{
		Analytics:    true,
		AIProcessing: false,
		Extensions:   map[string]bool{"wearableSync": true},
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out ConsentSettings
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

// Flags written by a newer deployment must survive a read-modify-write by
// this version.
func TestConsentSettingsUnknownKeysSurvive(t *testing.T) {
	stored := []byte(`{"analytics":true,"aiProcessing":true,"genomicSharing":false,"voiceAssistant":true}`)

	var c ConsentSettings
	require.NoError(t, json.Unmarshal(stored, &c))
	assert.True(t, c.Analytics)
	assert.True(t, c.AIProcessing)
	assert.Equal(t, map[string]bool{"genomicSharing": false, "voiceAssistant": true}, c.Extensions)

	c.Analytics = false

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var raw map[string]bool
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, map[string]bool{
		"analytics":      false,
		"aiProcessing":   true,
		"genomicSharing": false,
		"voiceAssistant": true,
	}, raw)
}

func TestConsentSettingsEmpty(t *testing.T) {
	var c ConsentSettings
	require.NoError(t, json.Unmarshal([]byte(`{}`), &c))
	assert.False(t, c.Analytics)
	assert.False(t, c.AIProcessing)
	assert.Nil(t, c.Extensions)
}

type mockUserDB struct {
	mock.Mock
}

func (m *mockUserDB) Create(ctx context.Context, u *User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserDB) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *mockUserDB) GetByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *mockUserDB) Update(ctx context.Context, u *User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func TestUpdateConsentPreservesUnsentExtensions(t *testing.T) {
	db := new(mockUserDB)
	svc := NewService(db, zap.NewNop())
	id := uuid.New()

	stored := NewUser("a@b.com", "A")
	stored.ID = id
	stored.Consent = ConsentSettings{
		Analytics:  true,
		Extensions: map[string]bool{"wearableSync": true},
	}

	db.On("GetByID", mock.Anything, id).Return(stored, nil)
	db.On("Update", mock.Anything, mock.Anything).Return(nil)

	u, err := svc.UpdateConsent(context.Background(), id, ConsentSettings{
		AIProcessing: true,
		Extensions:   map[string]bool{"voiceAssistant": false},
	})
	require.NoError(t, err)
	assert.False(t, u.Consent.Analytics)
	assert.True(t, u.Consent.AIProcessing)
	assert.Equal(t, map[string]bool{"wearableSync": true, "voiceAssistant": false}, u.Consent.Extensions)
}

func TestUpdateProfileValidatesName(t *testing.T) {
	svc := NewService(new(mockUserDB), zap.NewNop())
	_, err := svc.UpdateProfile(context.Background(), uuid.New(), "   ")
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestNewUserNormalizesEmail(t *testing.T) {
	u := NewUser(" Parent@Example.COM ", " Pat ")
	assert.Equal(t, "parent@example.com", u.Email)
	assert.Equal(t, "Pat", u.Name)
	assert.Equal(t, RoleStandard, u.Role)
}
