package family

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockEdgeDB struct {
	mock.Mock
}

func (m *mockEdgeDB) Create(ctx context.Context, member *Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *mockEdgeDB) Find(ctx context.Context, primaryUserID, memberUserID uuid.UUID) (*Member, error) {
	args := m.Called(ctx, primaryUserID, memberUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Member), args.Error(1)
}

func (m *mockEdgeDB) ListByPrimary(ctx context.Context, primaryUserID uuid.UUID) ([]*MemberWithUser, error) {
	args := m.Called(ctx, primaryUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*MemberWithUser), args.Error(1)
}

func (m *mockEdgeDB) ListByMember(ctx context.Context, memberUserID uuid.UUID) ([]*MemberWithUser, error) {
	args := m.Called(ctx, memberUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*MemberWithUser), args.Error(1)
}

func (m *mockEdgeDB) UpdatePermission(ctx context.Context, primaryUserID, memberUserID uuid.UUID, permission Permission) error {
	args := m.Called(ctx, primaryUserID, memberUserID, permission)
	return args.Error(0)
}

func (m *mockEdgeDB) Delete(ctx context.Context, primaryUserID, memberUserID uuid.UUID) error {
	args := m.Called(ctx, primaryUserID, memberUserID)
	return args.Error(0)
}

func edgeFixture(primary, member uuid.UUID, tier Permission) *Member {
	edge, err := NewMember(primary, member, tier)
	if err != nil {
		panic(err)
	}
	return edge
}

func TestResolverOwnerAlwaysPasses(t *testing.T) {
	edges := new(mockEdgeDB)
	resolver := NewResolver(edges)
	owner := uuid.New()

	for _, set := range []PermissionSet{ViewTiers, EditTiers, AdminTiers, NewPermissionSet()} {
		ok, err := resolver.CanAccess(context.Background(), owner, owner, set)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	edges.AssertNotCalled(t, "Find", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolverNoEdgeDeniesEverything(t *testing.T) {
	edges := new(mockEdgeDB)
	resolver := NewResolver(edges)
	owner, stranger := uuid.New(), uuid.New()

	edges.On("Find", mock.Anything, owner, stranger).Return(nil, ErrMemberNotFound)

	for _, set := range []PermissionSet{ViewTiers, EditTiers, AdminTiers} {
		ok, err := resolver.CanAccess(context.Background(), stranger, owner, set)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestResolverViewEdge(t *testing.T) {
	edges := new(mockEdgeDB)
	resolver := NewResolver(edges)
	owner, viewer := uuid.New(), uuid.New()

	edges.On("Find", mock.Anything, owner, viewer).Return(edgeFixture(owner, viewer, PermissionView), nil)

	ok, err := resolver.CanAccess(context.Background(), viewer, owner, ViewTiers)
	require.NoError(t, err)
	assert.True(t, ok, "view edge passes a view check")

	ok, err = resolver.CanAccess(context.Background(), viewer, owner, EditTiers)
	require.NoError(t, err)
	assert.False(t, ok, "view edge fails an edit check")

	ok, err = resolver.CanAccess(context.Background(), viewer, owner, AdminTiers)
	require.NoError(t, err)
	assert.False(t, ok, "view edge fails an admin check")
}

func TestResolverEditEdgeFailsAdminOnlyCheck(t *testing.T) {
	edges := new(mockEdgeDB)
	resolver := NewResolver(edges)
	owner, editor := uuid.New(), uuid.New()

	edges.On("Find", mock.Anything, owner, editor).Return(edgeFixture(owner, editor, PermissionEdit), nil)

	ok, err := resolver.CanAccess(context.Background(), editor, owner, EditTiers)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = resolver.CanAccess(context.Background(), editor, owner, AdminTiers)
	require.NoError(t, err)
	assert.False(t, ok, "edit edge must not satisfy admin-only operations")
}

// Tiers carry no implicit rank: an admin edge passes only checks whose set
// explicitly lists admin. A set written as {view, edit} must reject it.
func TestResolverTiersAreUnordered(t *testing.T) {
	edges := new(mockEdgeDB)
	resolver := NewResolver(edges)
	owner, admin := uuid.New(), uuid.New()

	edges.On("Find", mock.Anything, owner, admin).Return(edgeFixture(owner, admin, PermissionAdmin), nil)

	ok, err := resolver.CanAccess(context.Background(), admin, owner, AdminTiers)
	require.NoError(t, err)
	assert.True(t, ok)

	withoutAdmin := NewPermissionSet(PermissionView, PermissionEdit)
	ok, err = resolver.CanAccess(context.Background(), admin, owner, withoutAdmin)
	require.NoError(t, err)
	assert.False(t, ok, "admin edge must not pass a set that omits admin")
}

func TestResolverEdgeDirectionMatters(t *testing.T) {
	edges := new(mockEdgeDB)
	resolver := NewResolver(edges)
	owner, member := uuid.New(), uuid.New()

	// Edge runs owner → member only; the reverse lookup finds nothing.
	edges.On("Find", mock.Anything, member, owner).Return(nil, ErrMemberNotFound)

	ok, err := resolver.CanAccess(context.Background(), owner, member, ViewTiers)
	require.NoError(t, err)
	assert.False(t, ok, "a primary user has no implicit access to the member's own records")
}

func TestResolverStorageFailurePropagates(t *testing.T) {
	edges := new(mockEdgeDB)
	resolver := NewResolver(edges)
	owner, actor := uuid.New(), uuid.New()

	edges.On("Find", mock.Anything, owner, actor).Return(nil, errors.New("connection refused"))

	ok, err := resolver.CanAccess(context.Background(), actor, owner, ViewTiers)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestResolverRequire(t *testing.T) {
	edges := new(mockEdgeDB)
	resolver := NewResolver(edges)
	owner, stranger := uuid.New(), uuid.New()

	edges.On("Find", mock.Anything, owner, stranger).Return(nil, ErrMemberNotFound)

	assert.NoError(t, resolver.Require(context.Background(), owner, owner, AdminTiers))
	assert.ErrorIs(t, resolver.Require(context.Background(), stranger, owner, ViewTiers), ErrAccessDenied)
}

func TestParsePermission(t *testing.T) {
	for _, valid := range []string{"view", "edit", "admin"} {
		p, err := ParsePermission(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, p.String())
	}

	_, err := ParsePermission("owner")
	assert.ErrorIs(t, err, ErrInvalidPermission)
	_, err = ParsePermission("")
	assert.ErrorIs(t, err, ErrInvalidPermission)
}

func TestNewMemberRejectsSelfEdge(t *testing.T) {
	id := uuid.New()
	_, err := NewMember(id, id, PermissionView)
	assert.ErrorIs(t, err, ErrSelfEdge)
}
